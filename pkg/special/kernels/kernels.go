// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package kernels holds the native implementations of the elementwise special functions.
//
// Each kernel is a scalar function lifted to operate on native arrays (*ndarray.Array) with
// broadcasting. They are the reference ("ground truth") implementations: every other back end
// either provides its own version, synthesizes one from a more primitive special function,
// or converts its arrays to native ones and calls the kernel here.
//
// Out-of-domain inputs never panic: they produce NaN or the documented boundary value.
package kernels

import (
	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/special/pkg/core/ndarray"
)

// Kernel is a native elementwise special function.
type Kernel struct {
	// Name of the function, e.g. "erf".
	Name string

	// Arity is the fixed number of positional arguments.
	Arity int

	// Scalar computes the function for one set of arguments. len(args) == Arity.
	Scalar func(args ...float64) float64
}

// Call applies the kernel elementwise to the given native arrays, broadcast together.
// The result takes the promoted floating dtype of the arguments.
//
// It panics if the number of arguments doesn't match the kernel's arity, or if their shapes
// can't be broadcast.
func (k Kernel) Call(args ...*ndarray.Array) *ndarray.Array {
	if len(args) != k.Arity {
		exceptions.Panicf("special function %q takes %d arguments, %d given", k.Name, k.Arity, len(args))
	}
	return ndarray.Map(dtypes.InvalidDType, k.Scalar, args...)
}

func unary(fn func(x float64) float64) func(args ...float64) float64 {
	return func(args ...float64) float64 { return fn(args[0]) }
}

func binary(fn func(x, y float64) float64) func(args ...float64) float64 {
	return func(args ...float64) float64 { return fn(args[0], args[1]) }
}

func ternary(fn func(x, y, z float64) float64) func(args ...float64) float64 {
	return func(args ...float64) float64 { return fn(args[0], args[1], args[2]) }
}

// Names lists all special functions with a native kernel, in a stable order.
var Names = []string{
	"log_ndtr", "ndtr", "ndtri", "erf", "erfc", "i0", "i0e", "i1", "i1e", "gammaln",
	"gammainc", "gammaincc", "logit", "expit", "entr", "rel_entr", "xlogy",
	"chdtr", "chdtrc", "betainc", "betaincc", "stdtr", "stdtrit",
}

var kernels = map[string]Kernel{
	"log_ndtr":  {Name: "log_ndtr", Arity: 1, Scalar: unary(LogNdtr)},
	"ndtr":      {Name: "ndtr", Arity: 1, Scalar: unary(Ndtr)},
	"ndtri":     {Name: "ndtri", Arity: 1, Scalar: unary(Ndtri)},
	"erf":       {Name: "erf", Arity: 1, Scalar: unary(Erf)},
	"erfc":      {Name: "erfc", Arity: 1, Scalar: unary(Erfc)},
	"i0":        {Name: "i0", Arity: 1, Scalar: unary(I0)},
	"i0e":       {Name: "i0e", Arity: 1, Scalar: unary(I0e)},
	"i1":        {Name: "i1", Arity: 1, Scalar: unary(I1)},
	"i1e":       {Name: "i1e", Arity: 1, Scalar: unary(I1e)},
	"gammaln":   {Name: "gammaln", Arity: 1, Scalar: unary(Gammaln)},
	"gammainc":  {Name: "gammainc", Arity: 2, Scalar: binary(Gammainc)},
	"gammaincc": {Name: "gammaincc", Arity: 2, Scalar: binary(Gammaincc)},
	"logit":     {Name: "logit", Arity: 1, Scalar: unary(Logit)},
	"expit":     {Name: "expit", Arity: 1, Scalar: unary(Expit)},
	"entr":      {Name: "entr", Arity: 1, Scalar: unary(Entr)},
	"rel_entr":  {Name: "rel_entr", Arity: 2, Scalar: binary(RelEntr)},
	"xlogy":     {Name: "xlogy", Arity: 2, Scalar: binary(Xlogy)},
	"chdtr":     {Name: "chdtr", Arity: 2, Scalar: binary(Chdtr)},
	"chdtrc":    {Name: "chdtrc", Arity: 2, Scalar: binary(Chdtrc)},
	"betainc":   {Name: "betainc", Arity: 3, Scalar: ternary(Betainc)},
	"betaincc":  {Name: "betaincc", Arity: 3, Scalar: ternary(Betaincc)},
	"stdtr":     {Name: "stdtr", Arity: 2, Scalar: binary(Stdtr)},
	"stdtrit":   {Name: "stdtrit", Arity: 2, Scalar: binary(Stdtrit)},
}

// Arity maps each function name to its number of positional arguments.
// It is meant for test generation and argument checking only.
var Arity = func() map[string]int {
	arity := make(map[string]int, len(kernels))
	for name, k := range kernels {
		arity[name] = k.Arity
	}
	return arity
}()

// Get returns the kernel for the given function name.
func Get(name string) (Kernel, bool) {
	k, found := kernels[name]
	return k, found
}

// MustGet returns the kernel for the given function name, and panics if there is none.
func MustGet(name string) Kernel {
	k, found := kernels[name]
	if !found {
		exceptions.Panicf("unknown special function %q", name)
	}
	return k
}
