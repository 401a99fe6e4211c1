// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package shapes

import (
	"slices"
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/stretchr/testify/require"
)

func TestShape_Strides(t *testing.T) {
	shape := Make(dtypes.Float32, 2, 3, 4)
	require.Equal(t, []int{12, 4, 1}, shape.Strides())
	require.Equal(t, []int{1, 2, 6}, shape.ColumnMajorStrides())

	shape = Make(dtypes.Float32, 5)
	require.Equal(t, []int{1}, shape.Strides())

	shape = Make(dtypes.Float32, 3, 1, 2)
	require.Equal(t, []int{2, 2, 1}, shape.Strides())
	require.Nil(t, Scalar(dtypes.Float64).Strides())
}

func TestShape_Iter(t *testing.T) {
	// Only one value to iterate.
	shape := Make(dtypes.Float32, 1, 1, 1)
	collect := make([][]int, 0, shape.Size())
	for flatIdx, indices := range shape.Iter() {
		collect = append(collect, slices.Clone(indices))
		require.Equal(t, 0, flatIdx)
	}
	require.Equal(t, [][]int{{0, 0, 0}}, collect)

	shape = Make(dtypes.Float64, 3, 1, 2)
	collect = collect[:0]
	var flatIndices []int
	for flatIdx, indices := range shape.Iter() {
		collect = append(collect, slices.Clone(indices))
		flatIndices = append(flatIndices, flatIdx)
	}
	require.Equal(t, [][]int{{0, 0, 0}, {0, 0, 1}, {1, 0, 0}, {1, 0, 1}, {2, 0, 0}, {2, 0, 1}}, collect)
	require.Equal(t, []int{0, 1, 2, 3, 4, 5}, flatIndices)

	// Scalar.
	count := 0
	for _, indices := range Scalar(dtypes.Float64).Iter() {
		require.Empty(t, indices)
		count++
	}
	require.Equal(t, 1, count)

	// Empty.
	for range Make(dtypes.Float64, 2, 0).Iter() {
		t.Fatal("empty shape should not yield")
	}
}
