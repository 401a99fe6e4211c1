// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package shapes

import (
	"fmt"
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/stretchr/testify/require"
)

func TestShape(t *testing.T) {
	invalidShape := Invalid()
	require.False(t, invalidShape.Ok())

	shape0 := Make(dtypes.Float64)
	require.True(t, shape0.Ok())
	require.True(t, shape0.IsScalar())
	require.Equal(t, 0, shape0.Rank())
	require.Len(t, shape0.Dimensions, 0)
	require.Equal(t, 1, shape0.Size())

	shape1 := Make(dtypes.Float32, 4, 3, 2)
	require.True(t, shape1.Ok())
	require.False(t, shape1.IsScalar())
	require.Equal(t, 3, shape1.Rank())
	require.Equal(t, 4*3*2, shape1.Size())
	require.Equal(t, fmt.Sprintf("(%s)[4 3 2]", dtypes.Float32), shape1.String())

	empty := Make(dtypes.Float64, 3, 0)
	require.Equal(t, 0, empty.Size())
	require.Panics(t, func() { _ = Make(dtypes.Float64, -1) })
}

func TestDim(t *testing.T) {
	shape := Make(dtypes.Float32, 4, 3, 2)
	require.Equal(t, 4, shape.Dim(0))
	require.Equal(t, 2, shape.Dim(-1))
	require.Equal(t, 4, shape.Dim(-3))
	require.Panics(t, func() { _ = shape.Dim(3) })
	require.Panics(t, func() { _ = shape.Dim(-4) })
}

func TestBroadcast(t *testing.T) {
	got := Broadcast(Make(dtypes.Float32, 3, 1), Make(dtypes.Float64, 4), Scalar(dtypes.Float32))
	require.Equal(t, []int{3, 4}, got.Dimensions)
	require.Equal(t, dtypes.Float64, got.DType)

	got = Broadcast(Make(dtypes.Float32, 2, 1, 5), Make(dtypes.Float32, 7, 1))
	require.Equal(t, []int{2, 7, 5}, got.Dimensions)
	require.Equal(t, dtypes.Float32, got.DType)

	_, err := BroadcastDimensions(Make(dtypes.Float32, 3), Make(dtypes.Float32, 4))
	require.Error(t, err)
	require.Panics(t, func() { _ = Broadcast(Make(dtypes.Float32, 2, 3), Make(dtypes.Float32, 3, 2)) })
}

func TestPromoteDTypes(t *testing.T) {
	require.Equal(t, dtypes.Float64, PromoteDTypes(dtypes.Int32, dtypes.Bool))
	require.Equal(t, dtypes.Float32, PromoteDTypes(dtypes.Float32, dtypes.Float16))
	require.Equal(t, dtypes.Float32, PromoteDTypes(dtypes.BFloat16, dtypes.Float16))
	require.Equal(t, dtypes.Float16, PromoteDTypes(dtypes.InvalidDType, dtypes.Float16))
	require.Equal(t, dtypes.Float64, PromoteDTypes(dtypes.Float32, dtypes.Int64))
}

func TestBroadcastIndex(t *testing.T) {
	operand := Make(dtypes.Float64, 3, 1)
	strides := operand.Strides()
	require.Equal(t, 2, operand.BroadcastIndex([]int{2, 3}, strides))
	require.Equal(t, 0, operand.BroadcastIndex([]int{0, 1}, strides))

	scalar := Scalar(dtypes.Float64)
	require.Equal(t, 0, scalar.BroadcastIndex([]int{5, 7}, nil))
	require.Panics(t, func() { _ = operand.BroadcastIndex([]int{1}, strides) })
}
