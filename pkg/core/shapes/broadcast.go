// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package shapes

import (
	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/pkg/errors"
)

// BroadcastDimensions returns the dimensions resulting from broadcasting all the given shapes together.
//
// Shapes are aligned on their last axis. For each axis the dimensions must either be equal, or one of them
// must be 1 (or missing, for lower rank shapes). It returns an error if the shapes are not compatible.
func BroadcastDimensions(shapes ...Shape) ([]int, error) {
	rank := 0
	for _, s := range shapes {
		rank = max(rank, s.Rank())
	}
	dims := make([]int, rank)
	for ii := range dims {
		dims[ii] = 1
	}
	for _, s := range shapes {
		offset := rank - s.Rank()
		for axis, dim := range s.Dimensions {
			current := dims[offset+axis]
			switch {
			case dim == current || dim == 1:
				// Nothing to change.
			case current == 1:
				dims[offset+axis] = dim
			default:
				return nil, errors.Errorf("shapes %v cannot be broadcast together: axis %d (from the end) has dimensions %d and %d",
					shapes, rank-offset-axis, current, dim)
			}
		}
	}
	return dims, nil
}

// Broadcast returns the shape resulting from broadcasting the given shapes together, with the
// promoted dtype of all operands (see PromoteDTypes).
//
// It panics if the shapes are incompatible.
func Broadcast(shapes ...Shape) Shape {
	dims, err := BroadcastDimensions(shapes...)
	if err != nil {
		panic(err)
	}
	dtype := dtypes.InvalidDType
	for _, s := range shapes {
		dtype = PromoteDTypes(dtype, s.DType)
	}
	return Shape{DType: dtype, Dimensions: dims}
}

// floatRank orders the floating point dtypes by precision, used for promotion.
var floatRank = map[dtypes.DType]int{
	dtypes.BFloat16: 1,
	dtypes.Float16:  2,
	dtypes.Float32:  3,
	dtypes.Float64:  4,
}

// PromoteDTypes returns the dtype of the result of an elementwise arithmetic operation
// between values of dtype a and b.
//
// Only floating point results are produced: anything that is not a float (bool, integers, invalid)
// counts as Float64, the default floating dtype. Between floats, the most precise one wins,
// except that mixing BFloat16 with Float16 promotes to Float32.
func PromoteDTypes(a, b dtypes.DType) dtypes.DType {
	if a == dtypes.InvalidDType {
		return asFloat(b)
	}
	if b == dtypes.InvalidDType {
		return asFloat(a)
	}
	a, b = asFloat(a), asFloat(b)
	if (a == dtypes.BFloat16 && b == dtypes.Float16) || (a == dtypes.Float16 && b == dtypes.BFloat16) {
		return dtypes.Float32
	}
	if floatRank[a] >= floatRank[b] {
		return a
	}
	return b
}

func asFloat(dtype dtypes.DType) dtypes.DType {
	if _, found := floatRank[dtype]; found {
		return dtype
	}
	return dtypes.Float64
}

// BroadcastIndex converts indices over the broadcast result shape to the flat index of an operand of shape s,
// given the operand's strides. Axes of the operand with dimension 1 are pinned to 0.
//
// It panics if len(resultIndices) < s.Rank().
func (s Shape) BroadcastIndex(resultIndices []int, strides []int) int {
	offset := len(resultIndices) - s.Rank()
	if offset < 0 {
		exceptions.Panicf("Shape.BroadcastIndex: operand shape %s has a larger rank than the result indices %v", s, resultIndices)
	}
	flatIdx := 0
	for axis, dim := range s.Dimensions {
		if dim == 1 {
			continue
		}
		flatIdx += resultIndices[offset+axis] * strides[axis]
	}
	return flatIdx
}
