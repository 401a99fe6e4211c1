// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package backends

import (
	"github.com/gomlx/exceptions"
	"github.com/gomlx/special/pkg/core/ndarray"
	"github.com/gomlx/special/pkg/core/shapes"
	"github.com/gomlx/special/pkg/special/kernels"
)

// Native is the namespace of the native arrays, *ndarray.Array.
//
// Its special namespace is NativeSpecial, the native kernels.
var Native Namespace = nativeNamespace{}

// NativeSpecial exposes the native kernels as a SpecialNamespace: every function takes and returns
// native arrays.
var NativeSpecial SpecialNamespace = nativeSpecial{}

func init() {
	Register("native", func(config string) Namespace {
		if config != "" {
			exceptions.Panicf("the native back end takes no configuration, got %q", config)
		}
		return Native
	})
}

type nativeNamespace struct{}

var (
	_ ApplyWherer = nativeNamespace{}
	_ SetWherer   = nativeNamespace{}
)

// Name implements Namespace.
func (nativeNamespace) Name() string { return "native" }

// Kind implements Namespace.
func (nativeNamespace) Kind() Kind { return KindNative }

// Special implements Namespace.
func (nativeNamespace) Special() SpecialNamespace { return NativeSpecial }

// Asarray implements Namespace.
func (nativeNamespace) Asarray(value any) Array { return ToNativeAny(value) }

// ToNative implements Namespace.
func (nativeNamespace) ToNative(x Array) *ndarray.Array { return asNative(x) }

// FromNative implements Namespace.
func (nativeNamespace) FromNative(x *ndarray.Array) Array { return x }

// Full implements Namespace.
func (nativeNamespace) Full(shape shapes.Shape, value float64) Array { return ndarray.Full(shape, value) }

// Unary implements Namespace.
func (nativeNamespace) Unary(op OpType, x Array) Array {
	if !op.IsUnary() {
		exceptions.Panicf("native.Unary: %s is not a unary operation", op)
	}
	nx := asNative(x)
	return ndarray.Map1(op.OutputDType(nx.DType()), func(v float64) float64 { return EvalUnary(op, v) }, nx)
}

// Binary implements Namespace.
func (nativeNamespace) Binary(op OpType, x, y Array) Array {
	if !op.IsBinary() {
		exceptions.Panicf("native.Binary: %s is not a binary operation", op)
	}
	nx, ny := asNative(x), asNative(y)
	return ndarray.Map2(op.OutputDType(nx.DType(), ny.DType()),
		func(a, b float64) float64 { return EvalBinary(op, a, b) }, nx, ny)
}

// Where implements Namespace.
func (nativeNamespace) Where(cond, onTrue, onFalse Array) Array {
	return ndarray.Where(asNative(cond), asNative(onTrue), asNative(onFalse))
}

// Any implements Namespace.
func (nativeNamespace) Any(x Array) bool { return ndarray.Any(asNative(x)) }

// ApplyWhere implements ApplyWherer: fn is called with 1D arrays holding only the selected elements.
func (nativeNamespace) ApplyWhere(cond Array, args []Array, fn Func, fill float64) Array {
	nativeArgs := make([]*ndarray.Array, len(args))
	argShapes := []shapes.Shape{cond.Shape()}
	for ii, arg := range args {
		nativeArgs[ii] = asNative(arg)
		argShapes = append(argShapes, arg.Shape())
	}
	dims, err := shapes.BroadcastDimensions(argShapes...)
	if err != nil {
		panic(err)
	}
	outputShape := shapes.Make(PromotedDType(args...), dims...)
	mask := ndarray.BroadcastTo(asNative(cond), outputShape.Dimensions)
	selected := make([]Array, len(nativeArgs))
	for ii, arg := range nativeArgs {
		selected[ii] = ndarray.Gather(arg, mask)
	}
	values := asNative(fn(selected...))
	return ndarray.Scatter(ndarray.Full(outputShape, fill), mask, values)
}

// SetWhere implements SetWherer.
func (nativeNamespace) SetWhere(x, mask Array, value float64) Array {
	nx := asNative(x)
	return ndarray.Scatter(nx, asNative(mask), ndarray.Full(shapes.Scalar(nx.DType()), value))
}

func asNative(x Array) *ndarray.Array {
	nx, ok := x.(*ndarray.Array)
	if !ok {
		exceptions.Panicf("native back end given an array of type %T, it only accepts *ndarray.Array", x)
	}
	return nx
}

type nativeSpecial struct{}

// Func implements SpecialNamespace.
func (nativeSpecial) Func(name string) (Func, bool) {
	k, found := kernels.Get(name)
	if !found {
		return nil, false
	}
	return NativeKernel(k), true
}

// NativeKernel adapts a native kernel to a Func on native arrays.
func NativeKernel(k kernels.Kernel) Func {
	return func(args ...Array) Array {
		nativeArgs := make([]*ndarray.Array, len(args))
		for ii, arg := range args {
			nativeArgs[ii] = asNative(arg)
		}
		return k.Call(nativeArgs...)
	}
}
