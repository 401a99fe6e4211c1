// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package generic

import (
	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/special/backends"
	"github.com/gomlx/special/pkg/core/ndarray"
	"github.com/gomlx/special/pkg/core/shapes"
)

// This file implements the elementwise operations.
// One optimization supported is specially handling the cases where one of the operands is a scalar (or of size 1),
// in which case it is read once, as a constant value.

// broadcastIterator allows one to iterate over the flat (column-major) indices of an array that is being
// broadcast (some dimensions will grow).
type broadcastIterator struct {
	flatIdx     int
	perAxesIdx  []int
	targetDims  []int
	isBroadcast []bool
	strides     []int
}

// newBroadcastIterator returns an iterator over the flat indices of an array of shape fromShape being broadcast
// to targetDims, in column-major order: the first axis changes fastest.
//
// fromShape can have a lower rank than the target, in which case it is aligned on the last axes.
func newBroadcastIterator(fromShape shapes.Shape, targetDims []int) *broadcastIterator {
	rank := len(targetDims)
	offset := rank - fromShape.Rank()
	if offset < 0 {
		exceptions.Panicf("broadcastIterator: rank mismatch fromShape=%s, target dimensions=%v", fromShape, targetDims)
	}
	bi := &broadcastIterator{
		perAxesIdx:  make([]int, rank),
		targetDims:  targetDims,
		isBroadcast: make([]bool, rank),
		strides:     make([]int, rank),
	}
	stride := 1
	for axis := 0; axis < rank; axis++ {
		fromDim := 1
		if axis >= offset {
			fromDim = fromShape.Dimensions[axis-offset]
		}
		bi.strides[axis] = stride
		stride *= fromDim
		bi.isBroadcast[axis] = fromDim != targetDims[axis]
	}
	return bi
}

// Next returns the current flat index and advances the iterator.
func (bi *broadcastIterator) Next() (flatIdx int) {
	flatIdx = bi.flatIdx
	bi.flatIdx++
	rank := len(bi.perAxesIdx)
	for axis := 0; axis < rank; axis++ {
		bi.perAxesIdx[axis]++
		if bi.perAxesIdx[axis] < bi.targetDims[axis] {
			if bi.isBroadcast[axis] {
				// If we are broadcasting on this axis, we need to go back and repeat the same slice of the array.
				bi.flatIdx -= bi.strides[axis]
			}
			break
		}
		bi.perAxesIdx[axis] = 0
	}
	return
}

// execElementwise applies fn elementwise over the broadcast operands, producing an array of the given dtype.
func (b *Backend) execElementwise(dtype dtypes.DType, fn func(values []float64) float64, operands ...*Array) *Array {
	operandShapes := make([]shapes.Shape, len(operands))
	for ii, operand := range operands {
		operandShapes[ii] = operand.shape
	}
	dims, err := shapes.BroadcastDimensions(operandShapes...)
	if err != nil {
		panic(err)
	}
	outputShape := shapes.Make(dtype, dims...)
	output := make([]float64, outputShape.Size())
	values := make([]float64, len(operands))
	iterators := make([]*broadcastIterator, len(operands))
	for ii, operand := range operands {
		switch {
		case operand.shape.Size() == 1:
			// Scalar (or of size 1): read once.
			values[ii] = operand.flat[0]
		case operand.shape.Size() == len(output):
			// Same shape: iterated directly.
		default:
			iterators[ii] = newBroadcastIterator(operand.shape, dims)
		}
	}
	for outputIdx := range output {
		for ii, operand := range operands {
			if operand.shape.Size() == 1 {
				continue
			}
			if iterators[ii] == nil {
				values[ii] = operand.flat[outputIdx]
			} else {
				values[ii] = operand.flat[iterators[ii].Next()]
			}
		}
		output[outputIdx] = ndarray.RoundTo(dtype, fn(values))
	}
	return b.newArray(outputShape, output)
}

// Unary implements backends.Namespace.
func (b *Backend) Unary(op backends.OpType, x backends.Array) backends.Array {
	if !op.IsUnary() {
		exceptions.Panicf("generic.Unary: %s is not a unary operation", op)
	}
	gx := b.cast(x)
	return b.execElementwise(op.OutputDType(gx.shape.DType), func(values []float64) float64 {
		return backends.EvalUnary(op, values[0])
	}, gx)
}

// Binary implements backends.Namespace.
func (b *Backend) Binary(op backends.OpType, x, y backends.Array) backends.Array {
	if !op.IsBinary() {
		exceptions.Panicf("generic.Binary: %s is not a binary operation", op)
	}
	gx, gy := b.cast(x), b.cast(y)
	return b.execElementwise(op.OutputDType(gx.shape.DType, gy.shape.DType), func(values []float64) float64 {
		return backends.EvalBinary(op, values[0], values[1])
	}, gx, gy)
}

// Where implements backends.Namespace.
func (b *Backend) Where(cond, onTrue, onFalse backends.Array) backends.Array {
	gc, gt, gf := b.cast(cond), b.cast(onTrue), b.cast(onFalse)
	dtype := shapes.PromoteDTypes(gt.shape.DType, gf.shape.DType)
	if gt.shape.DType == dtypes.Bool && gf.shape.DType == dtypes.Bool {
		dtype = dtypes.Bool
	}
	return b.execElementwise(dtype, func(values []float64) float64 {
		if values[0] != 0 {
			return values[1]
		}
		return values[2]
	}, gc, gt, gf)
}
