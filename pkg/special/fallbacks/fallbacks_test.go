// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package fallbacks

import (
	"math"
	"testing"

	"github.com/gomlx/special/backends"
	"github.com/gomlx/special/backends/generic"
	"github.com/gomlx/special/backends/masked"
	"github.com/gomlx/special/pkg/optimize/elementwise"
	"github.com/gomlx/special/pkg/special/kernels"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	inf = math.Inf(1)
	nan = math.NaN()
)

// call builds the fallback for ns and calls it with the given Go values, returning the flat result.
func call(t *testing.T, factory Factory, ns backends.Namespace, args ...any) []float64 {
	f := factory(ns, nil, nil)
	require.NotNil(t, f)
	arrays := make([]backends.Array, len(args))
	for ii, arg := range args {
		arrays[ii] = ns.Asarray(arg)
	}
	return ns.ToNative(f(arrays...)).Flat()
}

// assertValues compares values, including NaN and infinities, with a tolerance for finite values.
func assertValues(t *testing.T, want, got []float64, delta float64, msgAndArgs ...any) {
	require.Len(t, got, len(want), msgAndArgs...)
	for ii := range want {
		switch {
		case math.IsNaN(want[ii]):
			assert.True(t, math.IsNaN(got[ii]), "element %d: want NaN, got %g", ii, got[ii])
		case math.IsInf(want[ii], 0):
			assert.Equal(t, want[ii], got[ii], "element %d", ii)
		default:
			assert.InDelta(t, want[ii], got[ii], delta, "element %d", ii)
		}
	}
}

func TestRegistry(t *testing.T) {
	assert.Equal(t, []string{"rel_entr", "xlogy", "chdtr", "chdtrc", "betaincc", "stdtr", "stdtrit"}, Registry.Names())
	assert.Equal(t, 7, Registry.Len())
	for _, name := range Registry.Names() {
		_, found := kernels.Get(name)
		assert.True(t, found, name)
	}
	_, found := Registry.Get("erf")
	assert.False(t, found)
	names := Registry.Names()
	names[0] = "changed"
	assert.Equal(t, "rel_entr", Registry.Names()[0])
}

func TestRelEntr(t *testing.T) {
	x := []float64{1, 0, 0, -1, nan, inf, inf, 2, 1, 0}
	y := []float64{2, 3, -1, 1, 1, inf, 1, 0, inf, nan}
	want := []float64{-math.Log(2), 0, inf, inf, nan, nan, inf, inf, math.Inf(-1), nan}
	// Native has the ApplyWhere capability, generic and masked use the default.
	for _, ns := range []backends.Namespace{backends.Native, generic.New(), masked.New(generic.New())} {
		assertValues(t, want, call(t, RelEntr, ns, x, y), 1e-15, ns.Name())
	}
	// Broadcasting.
	got := call(t, RelEntr, backends.Native, [][]float64{{1}, {2}}, []float64{1, 2})
	assertValues(t, []float64{0, -math.Log(2), 2 * math.Log(2), 0}, got, 1e-15)
}

func TestXlogy(t *testing.T) {
	x := []float64{0, 0, 0, 1, 2, 3}
	y := []float64{0, -1, nan, math.E, -1, 0}
	want := []float64{0, 0, 0, 1, nan, math.Inf(-1)}
	for _, ns := range []backends.Namespace{backends.Native, generic.New()} {
		assertValues(t, want, call(t, Xlogy, ns, x, y), 1e-15, ns.Name())
	}
}

func TestChdtr(t *testing.T) {
	assert.Nil(t, Chdtr(generic.New(), nil, nil))
	assert.Nil(t, Chdtr(generic.New("gammaincc"), nil, nil))

	// The generic back end's gammainc returns NaN for (0, x>0) and 1 for (inf, inf).
	ns := generic.New("gammainc")
	v := []float64{0, inf, 2, 4, 3}
	x := []float64{1, inf, 2, 0, 1.5}
	want := []float64{1, nan, 1 - math.Exp(-1), 0, kernels.Chdtr(3, 1.5)}
	assertValues(t, want, call(t, Chdtr, ns, v, x), 1e-14)
	assertValues(t, want, call(t, Chdtr, backends.Native, v, x), 1e-14)
}

func TestChdtrc(t *testing.T) {
	assert.Nil(t, Chdtrc(generic.New("gammainc"), nil, nil))
	ns := generic.New("gammaincc")
	v := []float64{0, 2, 2, -1, nan, 2, 0}
	x := []float64{0, 2, -1, 1, 1, nan, 1}
	want := []float64{nan, math.Exp(-1), 1, nan, nan, nan, nan}
	assertValues(t, want, call(t, Chdtrc, ns, v, x), 1e-14)
}

func TestBetaincc(t *testing.T) {
	assert.Nil(t, Betaincc(generic.New("gammainc"), nil, nil))
	ns := generic.New("betainc")
	a := []float64{0.5, 1, 2, 5}
	b := []float64{0.5, 3, 2, 1.5}
	x := []float64{0.3, 0.5, 0.9, 0.2}
	want := make([]float64, len(a))
	for ii := range a {
		want[ii] = 1 - kernels.Betainc(a[ii], b[ii], x[ii])
	}
	assertValues(t, want, call(t, Betaincc, ns, a, b, x), 1e-12)
}

func TestNativeFuncLookup(t *testing.T) {
	// spx is searched before the back end's own special functions.
	var calls int
	spx := backends.SpecialFuncs{"betainc": func(args ...backends.Array) backends.Array {
		calls++
		return backends.NativeKernel(kernels.MustGet("betainc"))(args...)
	}}
	f := Betaincc(backends.Native, spx, nil)
	require.NotNil(t, f)
	_ = f(backends.Native.Asarray(1.0), backends.Native.Asarray(2.0), backends.Native.Asarray(0.5))
	assert.Equal(t, 1, calls)

	assert.NotNil(t, NativeFunc(generic.New(), spx, "betainc"))
	assert.Nil(t, NativeFunc(generic.New(), nil, "betainc"))
	assert.NotNil(t, NativeFunc(generic.New("betainc"), nil, "betainc"))
	assert.Panics(t, func() { _ = f(backends.Native.Asarray(1.0)) })
}

func TestStdtr(t *testing.T) {
	ns := generic.New("betainc")
	df := []float64{1, 1, 3.5, 10, 10, 2}
	tt := []float64{0, 1, -2, 0.5, -0.5, 30}
	want := make([]float64, len(df))
	for ii := range df {
		want[ii] = kernels.Stdtr(df[ii], tt[ii])
	}
	got := call(t, Stdtr, ns, df, tt)
	assertValues(t, want, got, 1e-12)
	assert.Equal(t, 0.5, got[0])
	assert.InDelta(t, 0.75, got[1], 1e-15)

	// Antisymmetry: stdtr(df, -t) == 1 - stdtr(df, t).
	negT := make([]float64, len(tt))
	for ii, v := range tt {
		negT[ii] = -v
	}
	gotNeg := call(t, Stdtr, ns, df, negT)
	for ii := range got {
		assert.InDelta(t, 1-got[ii], gotNeg[ii], 1e-14, "element %d", ii)
	}
}

func TestStdtrit(t *testing.T) {
	for _, ns := range []backends.Namespace{generic.New("betainc"), backends.Native} {
		t.Run(ns.Name(), func(t *testing.T) {
			df := [][]float64{{1}, {3.5}, {10}}
			tt := []float64{-3, -0.7, 0, 0.25, 2.5}
			stdtr := Stdtr(ns, nil, nil)
			p := stdtr(ns.Asarray(df), ns.Asarray(tt))
			resolve := func(name string) backends.Func {
				require.Equal(t, "stdtr", name)
				return stdtr
			}
			stdtrit := Stdtrit(ns, nil, resolve)
			require.NotNil(t, stdtrit)
			got := ns.ToNative(stdtrit(ns.Asarray(df), p))
			require.Equal(t, []int{3, 5}, got.Shape().Dimensions)
			for row := range df {
				for col, want := range tt {
					assert.InDelta(t, want, got.Item(row, col), 1e-8, "df=%g, t=%g", df[row][0], want)
				}
			}
		})
	}

	// Out of domain p.
	ns := generic.New("betainc")
	got := call(t, Stdtrit, ns, []float64{3, 3, nan}, []float64{1.5, nan, 0.5})
	for _, v := range got {
		assert.True(t, math.IsNaN(v))
	}
}

func TestSetRootOptions(t *testing.T) {
	ns := generic.New("betainc")
	p := kernels.Stdtr(4, 1.3)
	precise := call(t, Stdtrit, ns, 4.0, p)[0]
	assert.InDelta(t, 1.3, precise, 1e-9)

	SetRootOptions(&elementwise.Options{XAtol: 0.5, XRtol: 0, FAtol: 0, FRtol: 0, MaxIter: 100})
	defer SetRootOptions(nil)
	coarse := call(t, Stdtrit, ns, 4.0, p)[0]
	assert.InDelta(t, 1.3, coarse, 0.5)
	assert.NotEqual(t, precise, coarse)
}

func TestUnavailableWithoutBetainc(t *testing.T) {
	for _, ns := range []backends.Namespace{generic.New(), generic.New("gammainc", "gammaincc", "erf")} {
		assert.Nil(t, Stdtr(ns, nil, nil), ns.Name())
		assert.Nil(t, Stdtrit(ns, nil, nil), ns.Name())
		assert.Nil(t, Betaincc(ns, nil, nil), ns.Name())
	}
	// Masked and chunked back ends have no special functions of their own.
	assert.Nil(t, Stdtrit(masked.New(backends.Native), nil, nil))
}
