// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package ndarray

import (
	"math"
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/special/pkg/core/shapes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/x448/float16"
)

func TestFromAny(t *testing.T) {
	x := FromAny([][]float32{{1, 2, 3}, {4, 5, 6}})
	require.Equal(t, dtypes.Float32, x.DType())
	require.Equal(t, []int{2, 3}, x.Shape().Dimensions)
	require.Equal(t, []float64{1, 2, 3, 4, 5, 6}, x.Flat())
	require.Equal(t, 6.0, x.Item(1, 2))

	s := FromAny(3)
	require.True(t, s.Shape().IsScalar())
	require.Equal(t, dtypes.Float64, s.DType())
	require.Equal(t, 3.0, s.Item())
	require.Equal(t, 3.0, s.Value())

	b := FromAny([]bool{true, false})
	require.Equal(t, dtypes.Bool, b.DType())
	require.Equal(t, []bool{true, false}, b.Value())

	h := FromAny([]float16.Float16{float16.Fromfloat32(0.5)})
	require.Equal(t, dtypes.Float16, h.DType())
	require.Equal(t, 0.5, h.Item(0))

	require.Same(t, x, FromAny(x))
	require.Panics(t, func() { _ = FromAny([][]float64{{1, 2}, {3}}) })
	require.Panics(t, func() { _ = FromAny("not a number") })
	require.Panics(t, func() { _ = FromAny(nil) })

	empty := FromAny([]float64{})
	require.Equal(t, 0, empty.Size())
}

func TestRounding(t *testing.T) {
	x := New(shapes.Make(dtypes.Float32, 1), []float64{0.1})
	assert.Equal(t, float64(float32(0.1)), x.Item(0))
	assert.NotEqual(t, 0.1, x.Item(0))

	h := Full(shapes.Make(dtypes.Float16, 2), 1.0/3.0)
	assert.InDelta(t, 1.0/3.0, h.Item(0), 1e-3)
	assert.NotEqual(t, float64(float32(1.0/3.0)), h.Item(0))

	// Special values survive every precision.
	for _, dtype := range []dtypes.DType{dtypes.Float64, dtypes.Float32, dtypes.Float16, dtypes.BFloat16} {
		assert.True(t, math.IsNaN(RoundTo(dtype, math.NaN())), "dtype %s", dtype)
		assert.True(t, math.IsInf(RoundTo(dtype, math.Inf(-1)), -1), "dtype %s", dtype)
	}
	assert.Equal(t, 1.0, RoundTo(dtypes.Bool, math.NaN()))
	require.Panics(t, func() { _ = RoundTo(dtypes.Int32, 1) })
}

func TestMapBroadcast(t *testing.T) {
	x := FromAny([][]float64{{1}, {2}, {3}})
	y := FromAny([]float64{10, 20})
	got := Map2(dtypes.InvalidDType, func(a, b float64) float64 { return a + b }, x, y)
	require.Equal(t, []int{3, 2}, got.Shape().Dimensions)
	require.Equal(t, [][]float64{{11, 21}, {12, 22}, {13, 23}}, got.Value())

	// Float32 with a Float64 scalar promotes to Float64.
	f32 := FromFlat([]float32{1, 2})
	got = Map2(dtypes.InvalidDType, func(a, b float64) float64 { return a * b }, f32, Scalar(2))
	require.Equal(t, dtypes.Float64, got.DType())

	require.Panics(t, func() {
		_ = Map2(dtypes.InvalidDType, func(a, b float64) float64 { return a }, FromFlat([]float64{1, 2}), FromFlat([]float64{1, 2, 3}))
	})
}

func TestWhereGatherScatter(t *testing.T) {
	cond := FromBools([]bool{true, false, true, false})
	x := FromFlat([]float64{1, 2, 3, 4})
	got := Where(cond, x, Scalar(-1))
	require.Equal(t, []float64{1, -1, 3, -1}, got.Flat())
	require.True(t, Any(cond))
	require.False(t, Any(FromBools([]bool{false, false})))

	gathered := Gather(x, cond)
	require.Equal(t, []float64{1, 3}, gathered.Flat())
	gathered = Gather(Scalar(7), cond)
	require.Equal(t, []float64{7, 7}, gathered.Flat())
	require.Equal(t, 0, Gather(x, FromBools([]bool{false, false, false, false})).Size())

	scattered := Scatter(x, cond, FromFlat([]float64{10, 30}))
	require.Equal(t, []float64{10, 2, 30, 4}, scattered.Flat())
	scattered = Scatter(x, cond, Scalar(math.Inf(1)))
	require.Equal(t, []float64{math.Inf(1), 2, math.Inf(1), 4}, scattered.Flat())
	require.Panics(t, func() { _ = Scatter(x, cond, FromFlat([]float64{1, 2, 3})) })
}

func TestSliceAndConcatenate(t *testing.T) {
	x := FromAny([][]float64{{1, 2}, {3, 4}, {5, 6}})
	top := SliceAxis0(x, 0, 1)
	bottom := SliceAxis0(x, 1, 3)
	require.Equal(t, [][]float64{{1, 2}}, top.Value())
	require.Equal(t, [][]float64{{3, 4}, {5, 6}}, bottom.Value())
	require.Equal(t, x.Value(), ConcatenateAxis0(top, bottom).Value())
	require.Panics(t, func() { _ = SliceAxis0(x, 2, 4) })
	require.Panics(t, func() { _ = ConcatenateAxis0(top, FromFlat([]float64{1, 2, 3}, 1, 3)) })
}

func TestString(t *testing.T) {
	x := FromFlat([]float64{1, math.NaN()})
	require.Contains(t, x.String(), "[1 NaN]")
}
