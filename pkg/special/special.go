// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package special provides elementwise special functions (error function, Bessel functions, incomplete gamma
// and beta functions, statistical distributions, ...) over arrays of any registered back end.
//
// Each function takes arrays (or Go numbers and slices) and returns an array of the same back end as its
// arguments. The implementation is chosen at call time by package dispatch: the back end's own special
// function if it has one, a generic fallback, or a conversion to and from native arrays.
//
// Dispatching over back ends is enabled by setting the environment variable SPECIAL_ARRAY_API to true
// ("1", "true", ...) before the program starts. Otherwise all arguments are converted to native arrays
// (*ndarray.Array), and the native kernels are called directly.
//
// The functions panic on invalid arguments (wrong number of arguments, incompatible shapes), see Call for
// a version returning an error. Out-of-domain values are not errors: they produce NaN or the documented
// boundary value.
package special

import (
	"os"
	"strconv"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/special/backends"
	"github.com/gomlx/special/pkg/core/ndarray"
	"github.com/gomlx/special/pkg/special/dispatch"
	"github.com/gomlx/special/pkg/special/kernels"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	// Register the default back ends.
	_ "github.com/gomlx/special/backends/default"
)

// SPECIAL_ARRAY_API is the environment variable that enables dispatching over back ends, read when the
// package is loaded.
const SPECIAL_ARRAY_API = "SPECIAL_ARRAY_API"

// Wrapper is the public version of a special function: it accepts arrays of any back end or Go values.
type Wrapper func(args ...any) backends.Array

var (
	arrayAPIEnabled = parseToggle(os.Getenv(SPECIAL_ARRAY_API))
	wrappers        = buildWrappers(arrayAPIEnabled)
)

// parseToggle interprets the value of a boolean environment variable. Empty or invalid values are false.
func parseToggle(value string) bool {
	if value == "" {
		return false
	}
	enabled, err := strconv.ParseBool(value)
	if err != nil {
		klog.Warningf("invalid value %q for $%s, dispatching over back ends is disabled", value, SPECIAL_ARRAY_API)
		return false
	}
	return enabled
}

// ArrayAPIEnabled returns whether the functions dispatch over back ends (see SPECIAL_ARRAY_API).
func ArrayAPIEnabled() bool { return arrayAPIEnabled }

// buildWrappers creates the wrappers for all functions, dispatching over back ends or not.
func buildWrappers(dispatching bool) map[string]Wrapper {
	klog.V(1).Infof("special functions: dispatching over back ends=%v", dispatching)
	ws := make(map[string]Wrapper, len(kernels.Names))
	for _, name := range kernels.Names {
		kernel := kernels.MustGet(name)
		if dispatching {
			ws[name] = dispatchingWrapper(kernel)
		} else {
			ws[name] = nativeWrapper(kernel)
		}
	}
	return ws
}

func checkArity(kernel kernels.Kernel, args []any) {
	if len(args) != kernel.Arity {
		exceptions.Panicf("special function %q takes %d arguments, %d given", kernel.Name, kernel.Arity, len(args))
	}
}

// nativeWrapper converts all arguments to native arrays and calls the kernel.
func nativeWrapper(kernel kernels.Kernel) Wrapper {
	return func(args ...any) backends.Array {
		checkArity(kernel, args)
		nativeArgs := make([]*ndarray.Array, len(args))
		for ii, arg := range args {
			nativeArgs[ii] = backends.ToNativeAny(arg)
		}
		return kernel.Call(nativeArgs...)
	}
}

// dispatchingWrapper finds the back end of the arguments and calls the implementation for it.
func dispatchingWrapper(kernel kernels.Kernel) Wrapper {
	return func(args ...any) backends.Array {
		checkArity(kernel, args)
		ns := backends.Of(args...)
		arrays := make([]backends.Array, len(args))
		for ii, arg := range args {
			arrays[ii] = ns.Asarray(arg)
		}
		return dispatch.Default.Resolve(kernel.Name, ns)(arrays...)
	}
}

// Names returns the names of all special functions.
func Names() []string {
	names := make([]string, len(kernels.Names))
	copy(names, kernels.Names)
	return names
}

// Arity returns the number of arguments of the named function, or 0 if the name is unknown.
func Arity(name string) int {
	return kernels.Arity[name]
}

// Func returns the named special function, or nil if the name is unknown.
func Func(name string) Wrapper {
	return wrappers[name]
}

// Call the named special function with the given arguments. Errors (unknown function, wrong number of
// arguments, incompatible shapes, ...) are returned instead of panicking.
func Call(name string, args ...any) (result backends.Array, err error) {
	w, found := wrappers[name]
	if !found {
		return nil, errors.Errorf("unknown special function %q", name)
	}
	if len(args) != kernels.Arity[name] {
		return nil, errors.Errorf("special function %q takes %d arguments, %d given", name, kernels.Arity[name], len(args))
	}
	err = exceptions.TryCatch[error](func() { result = w(args...) })
	if err != nil {
		return nil, errors.WithMessagef(err, "special.Call(%q)", name)
	}
	return result, nil
}
