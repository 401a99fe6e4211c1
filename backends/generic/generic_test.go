// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package generic

import (
	"math"
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/special/backends"
	"github.com/gomlx/special/pkg/core/ndarray"
	"github.com/gomlx/special/pkg/core/shapes"
	"github.com/gomlx/special/pkg/special/kernels"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sequence(dims ...int) *ndarray.Array {
	shape := shapes.Make(dtypes.Float64, dims...)
	flat := make([]float64, shape.Size())
	for ii := range flat {
		flat[ii] = float64(ii) - 2
	}
	return ndarray.New(shape, flat)
}

func TestParseConfig(t *testing.T) {
	assert.Nil(t, ParseConfig(""))
	assert.Nil(t, ParseConfig("none"))
	assert.Equal(t, kernels.Names, ParseConfig("all"))
	assert.Equal(t, []string{"erf", "gammainc"}, ParseConfig(" erf, gammainc,"))
	assert.Panics(t, func() { _ = ParseConfig("erf,digamma") })
}

func TestConversion(t *testing.T) {
	b := New()
	x := ndarray.FromAny([][]float64{{1, math.NaN(), 3}, {math.Inf(-1), 5, math.Inf(1)}})
	gx := b.FromNative(x).(*Array)
	// Column-major layout.
	assert.Equal(t, 1.0, gx.ColumnMajor()[0])
	assert.True(t, math.IsInf(gx.ColumnMajor()[1], -1))
	assert.True(t, math.IsNaN(gx.ColumnMajor()[2]))

	back := b.ToNative(gx)
	require.Equal(t, x.Shape(), back.Shape())
	for ii, v := range x.Flat() {
		assert.Equal(t, math.Float64bits(v), math.Float64bits(back.Flat()[ii]), "element %d", ii)
	}

	// Asarray of Go values and of native arrays.
	assert.Equal(t, []float64{1, 2}, b.ToNative(b.Asarray([]float64{1, 2})).Flat())
	assert.Same(t, gx, b.Asarray(gx))
	assert.Equal(t, b, gx.Namespace())
	other := New("erf")
	assert.Equal(t, other, other.Asarray(gx).(*Array).Namespace())
}

func TestElementwiseMatchesNative(t *testing.T) {
	b := New()
	testCases := []struct {
		name string
		x, y *ndarray.Array
	}{
		{"same shape", sequence(2, 3), sequence(2, 3)},
		{"trailing axis", sequence(2, 3), sequence(3)},
		{"outer product", sequence(2, 1), sequence(1, 3)},
		{"rank 3", sequence(4, 1, 2), sequence(3, 1)},
		{"scalar", sequence(2, 3), ndarray.Scalar(0.5)},
		{"empty", sequence(0, 3), sequence(3)},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gx, gy := b.FromNative(tc.x), b.FromNative(tc.y)
			for _, op := range []backends.OpType{backends.OpTypeAdd, backends.OpTypeMul, backends.OpTypePow,
				backends.OpTypeLessThan, backends.OpTypeMax} {
				want := backends.Native.Binary(op, tc.x, tc.y).(*ndarray.Array)
				got := b.ToNative(b.Binary(op, gx, gy))
				require.Equal(t, want.Shape(), got.Shape(), "op %s", op)
				assert.Equal(t, want.String(), got.String(), "op %s", op)
			}
			want := backends.Native.Unary(backends.OpTypeLog, tc.x).(*ndarray.Array)
			got := b.ToNative(b.Unary(backends.OpTypeLog, gx))
			assert.Equal(t, want.String(), got.String())

			cond := backends.Native.Binary(backends.OpTypeGreaterThan, tc.x, tc.y).(*ndarray.Array)
			want = backends.Native.Where(cond, tc.x, tc.y).(*ndarray.Array)
			got = b.ToNative(b.Where(b.FromNative(cond), gx, gy))
			assert.Equal(t, want.String(), got.String())
		})
	}
}

func TestOps(t *testing.T) {
	b := New()
	x := b.Asarray([]float32{-1, 0, 4})
	got := b.ToNative(backends.Sqrt(b, x))
	assert.Equal(t, dtypes.Float32, got.DType())
	assert.True(t, math.IsNaN(got.Flat()[0]))
	assert.Equal(t, []float64{0, 2}, got.Flat()[1:])
	assert.True(t, b.Any(backends.EqualScalar(b, x, 4)))
	assert.False(t, b.Any(backends.IsNaN(b, x)))
	assert.Equal(t, []float64{7, 7}, b.ToNative(b.Full(shapes.Make(dtypes.Float64, 2), 7)).Flat())
	assert.Panics(t, func() { _ = b.Unary(backends.OpTypeMul, x) })
}

func TestSpecial(t *testing.T) {
	assert.Nil(t, New().Special())

	b := New("gammainc", "gammaincc", "erf", "erf")
	assert.Equal(t, []string{"gammainc", "gammaincc", "erf"}, b.SpecialNames())
	assert.Equal(t, "generic:gammainc,gammaincc,erf", b.String())
	spx := b.Special()
	require.NotNil(t, spx)
	_, found := spx.Func("betainc")
	assert.False(t, found)

	gammainc, found := spx.Func("gammainc")
	require.True(t, found)
	a := b.Asarray([]float64{0, math.Inf(1), 1, 2})
	x := b.Asarray([]float64{1, math.Inf(1), 2, 0})
	got := b.ToNative(gammainc(a, x)).Flat()
	assert.True(t, math.IsNaN(got[0]), "gammainc(0, 1) quirk")
	assert.Equal(t, 1.0, got[1], "gammainc(inf, inf) quirk")
	assert.InDelta(t, 1-math.Exp(-2), got[2], 1e-14)
	assert.Equal(t, 0.0, got[3])

	gammaincc, _ := spx.Func("gammaincc")
	got = b.ToNative(gammaincc(a, x)).Flat()
	assert.True(t, math.IsNaN(got[0]))
	assert.Equal(t, 0.0, got[1])
	assert.InDelta(t, math.Exp(-2), got[2], 1e-14)

	erf, _ := spx.Func("erf")
	got32 := b.ToNative(erf(b.Asarray([]float32{0.5})))
	assert.Equal(t, dtypes.Float32, got32.DType())
	assert.Equal(t, float64(float32(math.Erf(0.5))), got32.Flat()[0])
	assert.Panics(t, func() { _ = erf(a, x) })
}

func TestRegistered(t *testing.T) {
	ns := backends.NewWithConfig("generic:erf,betainc")
	assert.Equal(t, backends.KindGeneric, ns.Kind())
	_, found := ns.Special().Func("betainc")
	assert.True(t, found)
	assert.Nil(t, backends.NewWithConfig("generic").Special())
	all := backends.NewWithConfig("generic:all").(*Backend)
	assert.Len(t, all.SpecialNames(), len(kernels.Names))
}
