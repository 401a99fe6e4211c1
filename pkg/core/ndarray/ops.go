// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package ndarray

import (
	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/special/pkg/core/shapes"
)

// Map applies fn elementwise over the operands, broadcasting them to a common shape.
//
// The result has the broadcast shape with the given dtype. If dtype is dtypes.InvalidDType,
// the promoted floating dtype of the operands is used.
func Map(dtype dtypes.DType, fn func(values ...float64) float64, operands ...*Array) *Array {
	if len(operands) == 0 {
		exceptions.Panicf("ndarray.Map requires at least one operand")
	}
	operandShapes := make([]shapes.Shape, len(operands))
	for ii, operand := range operands {
		operandShapes[ii] = operand.shape
	}
	outputShape := shapes.Broadcast(operandShapes...)
	if dtype != dtypes.InvalidDType {
		outputShape.DType = dtype
	}
	output := make([]float64, outputShape.Size())
	values := make([]float64, len(operands))

	// Fast path: no broadcasting needed.
	sameShape := true
	for _, operand := range operands {
		if operand.Size() != len(output) {
			sameShape = false
			break
		}
	}
	if sameShape {
		for flatIdx := range output {
			for ii, operand := range operands {
				values[ii] = operand.flat[flatIdx]
			}
			output[flatIdx] = fn(values...)
		}
		return New(outputShape, output)
	}

	strides := make([][]int, len(operands))
	for ii, operand := range operands {
		strides[ii] = operand.shape.Strides()
	}
	for flatIdx, indices := range outputShape.Iter() {
		for ii, operand := range operands {
			values[ii] = operand.flat[operand.shape.BroadcastIndex(indices, strides[ii])]
		}
		output[flatIdx] = fn(values...)
	}
	return New(outputShape, output)
}

// Map1 applies a unary fn elementwise, keeping x's shape. The dtype follows the rules of Map.
func Map1(dtype dtypes.DType, fn func(x float64) float64, x *Array) *Array {
	return Map(dtype, func(values ...float64) float64 { return fn(values[0]) }, x)
}

// Map2 applies a binary fn elementwise with broadcasting. The dtype follows the rules of Map.
func Map2(dtype dtypes.DType, fn func(x, y float64) float64, x, y *Array) *Array {
	return Map(dtype, func(values ...float64) float64 { return fn(values[0], values[1]) }, x, y)
}

// BroadcastTo returns x broadcast to the given dimensions, keeping its dtype.
func BroadcastTo(x *Array, dimensions []int) *Array {
	target := shapes.Make(x.DType(), dimensions...)
	if x.shape.EqualDimensions(target) {
		return x
	}
	got := shapes.Broadcast(x.shape, target)
	if !got.EqualDimensions(target) {
		exceptions.Panicf("ndarray.BroadcastTo: cannot broadcast %s to %v", x.shape, dimensions)
	}
	return Map(x.DType(), func(values ...float64) float64 { return values[0] }, x, Full(target, 0))
}

// Where returns onTrue where cond is true (non-zero) and onFalse elsewhere, broadcasting all three.
// The dtype is the promotion of onTrue and onFalse.
func Where(cond, onTrue, onFalse *Array) *Array {
	dtype := shapes.PromoteDTypes(onTrue.DType(), onFalse.DType())
	if onTrue.DType() == dtypes.Bool && onFalse.DType() == dtypes.Bool {
		dtype = dtypes.Bool
	}
	return Map(dtype, func(values ...float64) float64 {
		if values[0] != 0 {
			return values[1]
		}
		return values[2]
	}, cond, onTrue, onFalse)
}

// Any returns whether any element of x is non-zero.
func Any(x *Array) bool {
	for _, v := range x.flat {
		if v != 0 {
			return true
		}
	}
	return false
}

// Gather returns a 1D array with the elements of x (broadcast to mask's shape) where mask is true,
// in row-major order.
func Gather(x, mask *Array) *Array {
	x = BroadcastTo(x, mask.shape.Dimensions)
	var gathered []float64
	for ii, m := range mask.flat {
		if m != 0 {
			gathered = append(gathered, x.flat[ii])
		}
	}
	if gathered == nil {
		gathered = []float64{}
	}
	return New(shapes.Make(x.DType(), len(gathered)), gathered)
}

// Scatter returns a copy of base (broadcast to the shape of mask) where the elements selected by mask are
// replaced, in row-major order, by the values in the 1D array values. values may also be a scalar, in which
// case it is used for every selected element.
func Scatter(base, mask, values *Array) *Array {
	dims, err := shapes.BroadcastDimensions(base.shape, mask.shape)
	if err != nil {
		panic(err)
	}
	base = BroadcastTo(base, dims)
	mask = BroadcastTo(mask, dims)
	dtype := shapes.PromoteDTypes(base.DType(), values.DType())
	output := make([]float64, len(base.flat))
	copy(output, base.flat)
	next := 0
	for ii, m := range mask.flat {
		if m == 0 {
			continue
		}
		if values.Size() == 1 {
			output[ii] = values.flat[0]
			continue
		}
		if next >= values.Size() {
			exceptions.Panicf("ndarray.Scatter: mask selects more elements than the %d values given", values.Size())
		}
		output[ii] = values.flat[next]
		next++
	}
	if values.Size() != 1 && next != values.Size() {
		exceptions.Panicf("ndarray.Scatter: mask selected %d elements, but %d values were given", next, values.Size())
	}
	return New(shapes.Make(dtype, dims...), output)
}

// AsType returns x converted to the given dtype (rounding values as needed).
func AsType(x *Array, dtype dtypes.DType) *Array {
	if x.DType() == dtype {
		return x
	}
	return New(x.shape.WithDType(dtype), x.Float64s())
}

// SliceAxis0 returns the sub-array x[start:end] along the first axis.
func SliceAxis0(x *Array, start, end int) *Array {
	if x.shape.Rank() == 0 {
		exceptions.Panicf("ndarray.SliceAxis0: cannot slice a scalar")
	}
	dim := x.shape.Dimensions[0]
	if start < 0 || end > dim || start > end {
		exceptions.Panicf("ndarray.SliceAxis0(%d, %d) out of bounds for shape %s", start, end, x.shape)
	}
	rowSize := 1
	if dim > 0 {
		rowSize = x.Size() / dim
	}
	dims := x.shape.Clone().Dimensions
	dims[0] = end - start
	flat := make([]float64, (end-start)*rowSize)
	copy(flat, x.flat[start*rowSize:end*rowSize])
	return &Array{shape: shapes.Make(x.DType(), dims...), flat: flat}
}

// ConcatenateAxis0 concatenates the arrays along the first axis. All other dimensions must match.
// The result dtype is the promotion of the parts' dtypes.
func ConcatenateAxis0(parts ...*Array) *Array {
	if len(parts) == 0 {
		exceptions.Panicf("ndarray.ConcatenateAxis0 requires at least one array")
	}
	first := parts[0].shape
	if first.Rank() == 0 {
		exceptions.Panicf("ndarray.ConcatenateAxis0: cannot concatenate scalars")
	}
	dims := first.Clone().Dimensions
	dims[0] = 0
	dtype := dtypes.InvalidDType
	allBool := true
	var flat []float64
	for _, part := range parts {
		if part.shape.Rank() != first.Rank() {
			exceptions.Panicf("ndarray.ConcatenateAxis0: ranks differ, %s and %s", first, part.shape)
		}
		for axis := 1; axis < first.Rank(); axis++ {
			if part.shape.Dimensions[axis] != first.Dimensions[axis] {
				exceptions.Panicf("ndarray.ConcatenateAxis0: incompatible shapes %s and %s", first, part.shape)
			}
		}
		dims[0] += part.shape.Dimensions[0]
		dtype = shapes.PromoteDTypes(dtype, part.DType())
		allBool = allBool && part.DType() == dtypes.Bool
		flat = append(flat, part.flat...)
	}
	if allBool {
		dtype = dtypes.Bool
	}
	if flat == nil {
		flat = []float64{}
	}
	return New(shapes.Make(dtype, dims...), flat)
}
