// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package elementwise

import (
	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/special/backends"
	"k8s.io/klog/v2"
)

// BracketOptions for BracketRoot.
type BracketOptions struct {
	// Factor by which the step grows at each iteration. It must be > 1.
	Factor float64

	// MaxIter is the maximum number of iterations.
	MaxIter int
}

const (
	// DefaultBracketFactor is the default growth factor of the search step of BracketRoot.
	DefaultBracketFactor = 2.0

	// DefaultBracketMaxIter is the default maximum number of iterations of BracketRoot.
	DefaultBracketMaxIter = 1000
)

// BracketResult of BracketRoot. All arrays have the broadcast shape of the problem.
type BracketResult struct {
	// Lower and Upper are the ends of the bracket found (Lower < Upper). For elements that failed, they
	// are the last abscissae evaluated.
	Lower, Upper backends.Array

	// FLower and FUpper are the function values at Lower and Upper.
	FLower, FUpper backends.Array

	// Status of each element, as Float64 codes. See Statuses.
	Status backends.Array

	// NumIter is the number of iterations executed, NumEval the number of function evaluations (each one
	// over the whole array).
	NumIter, NumEval int

	ns backends.Namespace
}

// Statuses returns the status of each element in row-major order.
func (r *BracketResult) Statuses() []Status { return statusesOf(r.ns, r.Status) }

// BracketRoot searches for an interval where f changes sign, starting from [x0, x0+1] and growing it
// geometrically in both directions.
//
// At each iteration the left end moves left and the right end moves right by a step that grows by
// opts.Factor. As soon as the function changes sign (or is zero) between an end and its new position, that
// segment is the bracket of the element.
//
// Elements where f is NaN on both initial ends fail with StatusValueError, elements whose ends both reach
// infinity fail with StatusLimitReached.
//
// If opts is nil, DefaultBracketFactor and DefaultBracketMaxIter are used.
func BracketRoot(ns backends.Namespace, f Func, x0 backends.Array, opts *BracketOptions) *BracketResult {
	if opts == nil {
		opts = &BracketOptions{Factor: DefaultBracketFactor, MaxIter: DefaultBracketMaxIter}
	}
	if opts.Factor <= 1 {
		exceptions.Panicf("elementwise.BracketRoot: Factor must be > 1, got %g", opts.Factor)
	}
	dtype := backends.PromotedDType(x0)
	xl := x0
	xr := backends.AddScalar(ns, x0, 1)
	fl, fr := f(xl), f(xr)
	o := newOps(ns, dtype, broadcastDims(xl, xr, fl, fr))
	xl, xr, fl, fr = o.broadcast(xl), o.broadcast(xr), o.broadcast(fl), o.broadcast(fr)
	numEval := 2

	// bracketed returns whether there is a root between two abscissae with function values fa and fb.
	bracketed := func(fa, fb backends.Array) backends.Array {
		signChange := o.and(o.not(o.sameSign(fa, fb)),
			o.not(o.or(backends.IsNaN(ns, fa), backends.IsNaN(ns, fb))))
		return o.or(signChange, o.or(backends.EqualScalar(ns, fa, 0), backends.EqualScalar(ns, fb, 0)))
	}

	lower, upper, fLower, fUpper := xl, xr, fl, fr
	status := o.full(dtypes.Float64, float64(StatusInProgress))
	found := bracketed(fl, fr)
	status = o.setStatus(status, found, StatusConverged)
	active := o.not(found)
	invalid := o.and(active, o.and(backends.IsNaN(ns, fl), backends.IsNaN(ns, fr)))
	status = o.setStatus(status, invalid, StatusValueError)
	active = o.and(active, o.not(invalid))

	step := 1.0
	numIter := 0
	for ; numIter < opts.MaxIter && ns.Any(active); numIter++ {
		newL := backends.AddScalar(ns, xl, -step)
		newR := backends.AddScalar(ns, xr, step)
		fNewL, fNewR := f(newL), f(newR)
		numEval += 2

		left := o.and(active, bracketed(fNewL, fl))
		lower, fLower = o.update(left, newL, lower), o.update(left, fNewL, fLower)
		upper, fUpper = o.update(left, xl, upper), o.update(left, fl, fUpper)
		right := o.and(o.and(active, o.not(left)), bracketed(fr, fNewR))
		lower, fLower = o.update(right, xr, lower), o.update(right, fr, fLower)
		upper, fUpper = o.update(right, newR, upper), o.update(right, fNewR, fUpper)
		found = o.or(left, right)
		status = o.setStatus(status, found, StatusConverged)
		active = o.and(active, o.not(found))

		xl, fl = o.update(active, newL, xl), o.update(active, fNewL, fl)
		xr, fr = o.update(active, newR, xr), o.update(active, fNewR, fr)
		limit := o.and(active, o.and(backends.IsInf(ns, xl), backends.IsInf(ns, xr)))
		status = o.setStatus(status, limit, StatusLimitReached)
		active = o.and(active, o.not(limit))
		step *= opts.Factor
	}
	status = o.setStatus(status, active, StatusIterationLimit)

	failed := o.not(backends.EqualScalar(ns, status, float64(StatusConverged)))
	lower, fLower = o.update(failed, xl, lower), o.update(failed, fl, fLower)
	upper, fUpper = o.update(failed, xr, upper), o.update(failed, fr, fUpper)
	klog.V(3).Infof("elementwise.BracketRoot: %d iterations, %d function evaluations", numIter, numEval)
	return &BracketResult{
		Lower: lower, Upper: upper,
		FLower: fLower, FUpper: fUpper,
		Status:  status,
		NumIter: numIter, NumEval: numEval,
		ns: ns,
	}
}
