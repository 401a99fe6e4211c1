// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"math"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/special/backends"
	"github.com/gomlx/special/pkg/core/ndarray"
	"github.com/gomlx/special/pkg/special/dispatch"
	"github.com/gomlx/special/pkg/special/kernels"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// specialValues are always part of the samples of each argument.
var specialValues = []float64{math.NaN(), math.Inf(-1), math.Inf(1), 0, 1, -1, 0.5}

// sampleValues returns the values sampled for each argument: specialValues, n points evenly spaced in
// [-2, 12] and n points in (0, 1), the domain of probabilities.
func sampleValues(n int) []float64 {
	values := make([]float64, 0, len(specialValues)+2*n)
	values = append(values, specialValues...)
	for ii := range n {
		values = append(values, -2+14*float64(ii)/float64(max(n-1, 1)))
	}
	for ii := range n {
		values = append(values, (float64(ii)+0.5)/float64(n))
	}
	return values
}

// sampleArgs returns native arguments for a function of the given arity: each argument varies along its
// own axis, so once broadcast together they cover the full grid of sampled values.
func sampleArgs(arity, n int) []*ndarray.Array {
	values := sampleValues(n)
	args := make([]*ndarray.Array, arity)
	for axis := range arity {
		dims := make([]int, arity)
		for ii := range dims {
			dims[ii] = 1
		}
		dims[axis] = len(values)
		args[axis] = ndarray.FromFlat(values, dims...)
	}
	return args
}

// comparison of a function evaluated on a back end against the native kernel.
type comparison struct {
	Function, Backend string
	Path              dispatch.Path
	NumValues         int
	NumMismatches     int
	MaxAbsErr         float64
	Err               error
}

// tolerance for values to be considered equal: |want-got| <= ATol + RTol·|want|.
type tolerance struct {
	RTol, ATol float64
}

// agree returns whether the values are equal within tolerance. NaNs agree with NaNs only, and infinities
// must be exactly equal.
func (tol tolerance) agree(want, got float64) bool {
	if math.IsNaN(want) || math.IsNaN(got) {
		return math.IsNaN(want) && math.IsNaN(got)
	}
	if want == got {
		return true
	}
	if math.IsInf(want, 0) || math.IsInf(got, 0) {
		return false
	}
	return math.Abs(want-got) <= tol.ATol+tol.RTol*math.Abs(want)
}

// evaluate the function on the back end, converting the native arguments to it and the result back.
// Panics are returned as errors.
func evaluate(name string, ns backends.Namespace, args []*ndarray.Array) (result *ndarray.Array, path dispatch.Path, err error) {
	err = exceptions.TryCatch[error](func() {
		resolution := dispatch.Default.Lookup(name, ns)
		path = resolution.Path
		nsArgs := make([]backends.Array, len(args))
		for ii, arg := range args {
			nsArgs[ii] = ns.FromNative(arg)
		}
		result = ns.ToNative(resolution.Func(nsArgs...))
	})
	if err != nil {
		err = errors.WithMessagef(err, "evaluating %q on back end %q", name, ns.Name())
	}
	return
}

// compare evaluates the named function on the back end, over a grid of n samples per argument, and
// compares it to the native kernel.
func compare(name string, ns backends.Namespace, n int, tol tolerance) comparison {
	c := comparison{Function: name, Backend: ns.Name()}
	kernel := kernels.MustGet(name)
	args := sampleArgs(kernel.Arity, n)
	want := kernel.Call(args...)
	got, path, err := evaluate(name, ns, args)
	c.Path = path
	c.NumValues = want.Size()
	if err != nil {
		c.Err = err
		return c
	}
	if !want.Shape().EqualDimensions(got.Shape()) {
		c.Err = errors.Errorf("%q on back end %q returned shape %s, wanted %s", name, ns.Name(), got.Shape(), want.Shape())
		return c
	}
	for ii, w := range want.Flat() {
		g := got.Flat()[ii]
		if !tol.agree(w, g) {
			c.NumMismatches++
			if klog.V(2).Enabled() {
				klog.Infof("%s on %s: element %d: want %g, got %g", name, ns.Name(), ii, w, g)
			}
		}
		if !math.IsInf(w, 0) && !math.IsNaN(w) && !math.IsNaN(g) && !math.IsInf(g, 0) {
			c.MaxAbsErr = max(c.MaxAbsErr, math.Abs(w-g))
		}
	}
	return c
}
