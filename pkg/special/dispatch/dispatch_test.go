// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package dispatch

import (
	"math"
	"testing"

	"github.com/gomlx/special/backends"
	"github.com/gomlx/special/backends/chunked"
	"github.com/gomlx/special/backends/generic"
	"github.com/gomlx/special/backends/masked"
	"github.com/gomlx/special/pkg/core/ndarray"
	"github.com/gomlx/special/pkg/special/fallbacks"
	"github.com/gomlx/special/pkg/special/kernels"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testArgs returns native arguments for a special function with the given arity, with values in the
// domain of most functions.
func testArgs(arity int) []*ndarray.Array {
	switch arity {
	case 1:
		return []*ndarray.Array{ndarray.FromAny([]float64{-1.5, -0.2, 0, 0.3, 0.9, 2, 7, math.NaN()})}
	case 2:
		return []*ndarray.Array{
			ndarray.FromAny([][]float64{{0.5}, {3}}),
			ndarray.FromAny([]float64{0.1, 0.5, 1, 2.5, -1, 0}),
		}
	}
	return []*ndarray.Array{
		ndarray.FromAny([]float64{0.5, 1, 2.5}),
		ndarray.FromAny([][]float64{{0.5}, {4}}),
		ndarray.FromAny([]float64{0.2, 0.5, 0.99}),
	}
}

// convertArgs converts native arguments to the back end.
func convertArgs(ns backends.Namespace, args []*ndarray.Array) []backends.Array {
	converted := make([]backends.Array, len(args))
	for ii, arg := range args {
		converted[ii] = ns.FromNative(arg)
	}
	return converted
}

func assertBitsEqual(t *testing.T, want, got *ndarray.Array, msgAndArgs ...any) {
	require.Equal(t, want.Shape(), got.Shape(), msgAndArgs...)
	for ii, v := range want.Flat() {
		assert.Equal(t, math.Float64bits(v), math.Float64bits(got.Flat()[ii]), msgAndArgs...)
	}
}

func TestPathString(t *testing.T) {
	assert.Equal(t, "native", PathNative.String())
	assert.Equal(t, "convert", PathConvert.String())
	assert.Equal(t, "Path(9)", Path(9).String())
}

func TestResolvePaths(t *testing.T) {
	d := New(fallbacks.Registry)
	plain := generic.New()
	withBetainc := generic.New("betainc", "erf")
	for _, name := range kernels.Names {
		assert.Equal(t, PathNative, d.Lookup(name, backends.Native).Path, name)
		assert.Equal(t, PathSpecial, d.Lookup(name, generic.New(kernels.Names...)).Path, name)

		// rel_entr and xlogy only need the elementwise operations: they are always applicable.
		alwaysApplicable := name == "rel_entr" || name == "xlogy"
		want := func(otherwise Path) Path {
			if alwaysApplicable {
				return PathFallback
			}
			return otherwise
		}
		assert.Equal(t, want(PathConvert), d.Lookup(name, plain).Path, name)
		assert.Equal(t, want(PathMasked), d.Lookup(name, masked.New(plain)).Path, name)
		assert.Equal(t, want(PathChunked), d.Lookup(name, chunked.New(plain, 4)).Path, name)
	}
	assert.Equal(t, PathSpecial, d.Lookup("erf", withBetainc).Path)
	for _, name := range []string{"betaincc", "stdtr", "stdtrit", "rel_entr", "xlogy"} {
		assert.Equal(t, PathFallback, d.Lookup(name, withBetainc).Path, name)
	}
	for _, name := range []string{"chdtr", "chdtrc", "gammainc"} {
		assert.Equal(t, PathConvert, d.Lookup(name, withBetainc).Path, name)
	}

	// Without fallbacks everything converts.
	noFallbacks := New(nil)
	assert.Equal(t, PathConvert, noFallbacks.Lookup("rel_entr", plain).Path)

	assert.Panics(t, func() { _ = d.Resolve("digamma", plain) })
}

func TestConvertMatchesNative(t *testing.T) {
	plain := generic.New()
	noFallbacks := New(nil)
	for _, name := range kernels.Names {
		kernel := kernels.MustGet(name)
		args := testArgs(kernel.Arity)
		want := kernel.Call(args...)
		for _, ns := range []backends.Namespace{plain, chunked.New(backends.Native, 1), chunked.New(plain, 2)} {
			got := noFallbacks.Resolve(name, ns)(convertArgs(ns, args)...)
			assertBitsEqual(t, want, ns.ToNative(got), "%s on %s", name, ns.Name())
		}
	}
}

func TestNeverUnsupported(t *testing.T) {
	namespaces := []backends.Namespace{
		backends.Native,
		generic.New(),
		generic.New("gammainc"),
		generic.New("betainc"),
		masked.New(backends.Native),
		masked.New(masked.New(generic.New("betainc"))),
		chunked.New(generic.New("gammaincc"), 3),
	}
	for _, ns := range namespaces {
		for _, name := range kernels.Names {
			kernel := kernels.MustGet(name)
			f := Default.Resolve(name, ns)
			require.NotNil(t, f, "%s on %s", name, ns.Name())
			got := ns.ToNative(f(convertArgs(ns, testArgs(kernel.Arity))...))
			want := kernel.Call(testArgs(kernel.Arity)...)
			assert.Equal(t, want.Shape(), got.Shape(), "%s on %s", name, ns.Name())
			assert.Panics(t, func() { _ = f() }, "%s on %s", name, ns.Name())
		}
	}
}

func TestMasked(t *testing.T) {
	ns := masked.New(generic.New())
	x := ns.Masked([]float64{0.5, 1, 2}, []bool{false, true, false})
	y := ns.Masked([]float64{1, 2, 3}, []bool{false, false, true})
	got := Default.Resolve("gammainc", ns)(x, y).(*masked.Array)
	assert.Equal(t, []bool{false, true, true}, got.Mask().Bools())
	assert.Equal(t, kernels.Gammainc(0.5, 1), ns.ToNative(got).Flat()[0])

	// Nested masked arrays: each level combines its own masks.
	outer := masked.New(ns)
	ox := outer.Join(x, ndarray.FromAny([]bool{true, false, false}))
	res := Default.Resolve("erf", outer)(ox).(*masked.Array)
	assert.Equal(t, []bool{true, false, false}, res.Mask().Bools())
	inner := res.Data().(*masked.Array)
	assert.Equal(t, []bool{false, true, false}, inner.Mask().Bools())
	assert.Equal(t, math.Erf(2), outer.ToNative(res).Flat()[2])
}

func TestChunked(t *testing.T) {
	ns := chunked.New(generic.New("betainc"), 2)
	df := ns.Asarray([]float64{1, 2, 5, 10, 30})
	tt := ns.Asarray([]float64{-2, -0.5, 0, 1, 3})
	p := Default.Resolve("stdtr", ns)(df, tt)
	got := ns.ToNative(Default.Resolve("stdtrit", ns)(df, p)).Flat()
	for ii, want := range []float64{-2, -0.5, 0, 1, 3} {
		assert.InDelta(t, want, got[ii], 1e-8)
	}
	assert.Equal(t, PathFallback, Default.Lookup("stdtrit", generic.New("betainc")).Path)
}

func TestMemoized(t *testing.T) {
	d := New(fallbacks.Registry)
	ns := generic.New("erf")
	r1 := d.Lookup("erf", ns)
	r2 := d.Lookup("erf", ns)
	assert.Equal(t, r1.Path, r2.Path)
	// Equal configuration, but a different back end instance: resolved independently.
	r3 := d.Lookup("erf", generic.New())
	assert.Equal(t, PathConvert, r3.Path)
}
