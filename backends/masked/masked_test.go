// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package masked

import (
	"fmt"
	"math"
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/special/backends"
	"github.com/gomlx/special/backends/generic"
	"github.com/gomlx/special/pkg/core/ndarray"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaskedOps(t *testing.T) {
	ns := New(backends.Native)
	assert.Equal(t, "masked(native)", ns.Name())
	assert.Equal(t, backends.KindMasked, ns.Kind())
	assert.Nil(t, ns.Special())

	x := ns.Masked([][]float64{{1, 2, 3}, {4, 5, 6}}, []bool{false, true, false})
	assert.Equal(t, []bool{false, true, false, false, true, false}, x.Mask().Bools())

	y := ns.Masked([]float64{10, 20, 30}, []bool{true, false, false})
	sum := backends.Add(ns, x, y).(*Array)
	assert.Equal(t, []float64{11, 22, 33, 14, 25, 36}, ns.ToNative(sum).Flat())
	assert.Equal(t, []bool{true, true, false, true, true, false}, sum.Mask().Bools())

	// Go scalars and native arrays get an empty mask.
	neg := backends.MulScalar(ns, x, -1).(*Array)
	assert.Equal(t, x.Mask().Bools(), neg.Mask().Bools())
	plus := backends.Add(ns, x, ndarray.FromAny([]float64{1, 1, 1})).(*Array)
	assert.Equal(t, x.Mask().Bools(), plus.Mask().Bools())

	cmp := backends.GreaterThanScalar(ns, x, 4).(*Array)
	assert.Equal(t, dtypes.Bool, cmp.Shape().DType)
	assert.True(t, ns.Any(cmp))
	// The only element > 4 that is not masked is 6: masking it leaves nothing.
	onlyFive := ns.Join(cmp.Data(), ndarray.FromAny([][]bool{{false, true, false}, {false, true, true}}))
	assert.False(t, ns.Any(onlyFive))

	sel := ns.Where(cmp, x, ns.Full(x.Shape(), 0)).(*Array)
	assert.Equal(t, []float64{0, 0, 0, 0, 5, 6}, ns.ToNative(sel).Flat())
	assert.Equal(t, x.Mask().Bools(), sel.Mask().Bools())

	assert.Equal(t, fmt.Sprintf("masked(%s)[3]: [10 -- 30]", dtypes.Float64),
		ns.Masked([]float64{10, 20, 30}, []bool{false, true, false}).String())
}

func TestSplitJoin(t *testing.T) {
	ns := New(backends.Native)
	x := ns.Masked([]float64{1, math.NaN()}, []bool{false, true})
	data, mask := ns.Split(x)
	assert.IsType(t, &ndarray.Array{}, data)
	assert.Equal(t, []bool{false, true}, mask.Bools())

	joined := ns.Join(data, ndarray.FromAny(true)).(*Array)
	assert.Equal(t, []bool{true, true}, joined.Mask().Bools())

	// Non-masked values are split into their data with an empty mask.
	data, mask = ns.Split(ndarray.FromAny([]float64{3}))
	assert.Equal(t, []float64{3}, data.(*ndarray.Array).Flat())
	assert.Equal(t, []bool{false}, mask.Bools())

	assert.Panics(t, func() { _ = ns.Masked([]float64{1, 2}, []bool{true, false, true}) })
	assert.Panics(t, func() { _ = OrMasks() })
}

func TestNested(t *testing.T) {
	inner := New(generic.New("erf"))
	outer := New(inner)
	assert.Equal(t, "masked(masked(generic))", outer.Name())

	innerX := inner.Masked([]float64{1, 2}, []bool{true, false})
	outerX := outer.Asarray(innerX).(*Array)
	assert.Same(t, innerX, outerX.Data())
	assert.Equal(t, []bool{false, false}, outerX.Mask().Bools())

	y := outer.Join(inner.Masked([]float64{3, 4}, []bool{false, false}), ndarray.FromAny([]bool{false, true}))
	sum := backends.Add(outer, outerX, y).(*Array)
	assert.Equal(t, []bool{false, true}, sum.Mask().Bools())
	assert.Equal(t, []bool{true, false}, sum.Data().(*Array).Mask().Bools())
	assert.Equal(t, []float64{4, 6}, outer.ToNative(sum).Flat())
}

func TestRegistered(t *testing.T) {
	ns := backends.NewWithConfig("masked:generic:erf")
	mns, ok := ns.(backends.MaskedNamespace)
	require.True(t, ok)
	assert.Equal(t, backends.KindGeneric, mns.Inner().Kind())
	_, found := mns.Inner().Special().Func("erf")
	assert.True(t, found)

	ns = backends.NewWithConfig("masked")
	assert.Equal(t, backends.Native, ns.(backends.MaskedNamespace).Inner())
}
