// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/gomlx/special/backends"
	"github.com/gomlx/special/backends/generic"
	"github.com/gomlx/special/backends/masked"
	"github.com/gomlx/special/pkg/special/dispatch"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleArgs(t *testing.T) {
	values := sampleValues(4)
	require.Len(t, values, len(specialValues)+8)
	assert.Equal(t, -2.0, values[len(specialValues)])
	assert.Equal(t, 12.0, values[len(specialValues)+3])
	assert.Equal(t, 0.125, values[len(specialValues)+4])

	args := sampleArgs(3, 4)
	require.Len(t, args, 3)
	assert.Equal(t, []int{15, 1, 1}, args[0].Shape().Dimensions)
	assert.Equal(t, []int{1, 15, 1}, args[1].Shape().Dimensions)
	assert.Equal(t, []int{1, 1, 15}, args[2].Shape().Dimensions)
}

func TestTolerance(t *testing.T) {
	tol := tolerance{RTol: 1e-6, ATol: 1e-12}
	nan, inf := math.NaN(), math.Inf(1)
	assert.True(t, tol.agree(nan, nan))
	assert.False(t, tol.agree(nan, 0))
	assert.False(t, tol.agree(1, nan))
	assert.True(t, tol.agree(inf, inf))
	assert.False(t, tol.agree(inf, -inf))
	assert.False(t, tol.agree(1e300, inf))
	assert.True(t, tol.agree(1, 1+1e-7))
	assert.False(t, tol.agree(1, 1+1e-5))
	assert.True(t, tol.agree(0, 1e-13))
}

func TestCompare(t *testing.T) {
	tol := tolerance{RTol: 1e-12, ATol: 0}
	c := compare("erf", generic.New(), 4, tol)
	require.NoError(t, c.Err)
	assert.Equal(t, dispatch.PathConvert, c.Path)
	assert.Equal(t, 15, c.NumValues)
	assert.Zero(t, c.NumMismatches)
	assert.Zero(t, c.MaxAbsErr)

	c = compare("xlogy", masked.New(backends.Native), 4, tol)
	require.NoError(t, c.Err)
	assert.Equal(t, dispatch.PathFallback, c.Path)
	assert.Equal(t, 15*15, c.NumValues)
}

func TestParseBackends(t *testing.T) {
	namespaces := must.M1(parseBackends("generic:erf; masked:native;;"))
	require.Len(t, namespaces, 2)
	assert.Equal(t, backends.KindGeneric, namespaces[0].Kind())
	assert.Equal(t, backends.KindMasked, namespaces[1].Kind())

	_, err := parseBackends("unknown")
	require.Error(t, err)
	_, err = parseBackends(" ; ")
	require.Error(t, err)
}

func TestSelectFunctions(t *testing.T) {
	names := must.M1(selectFunctions(""))
	assert.Len(t, names, 23)
	names = must.M1(selectFunctions("stdtrit, erf,erf"))
	assert.Equal(t, []string{"erf", "stdtrit"}, names)
	_, err := selectFunctions("erf,digamma")
	require.ErrorContains(t, err, "digamma")
}

func TestParseFloats(t *testing.T) {
	values := must.M1(parseFloats("1, 2.5,-3"))
	assert.Equal(t, []float64{1, 2.5, -3}, values)
	values = must.M1(parseFloats(""))
	assert.Empty(t, values)
	_, err := parseFloats("1,x")
	require.Error(t, err)
}

func TestPlot(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "stdtr.png")
	spec := plotSpec{Function: "stdtr", Fixed: []float64{3}, Min: -4, Max: 4, NumSamples: 50}
	require.NoError(t, plotBackends(spec, []backends.Namespace{backends.Native, generic.New("betainc")}, filePath))
	info, err := os.Stat(filePath)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	spec.Fixed = nil
	require.Error(t, plotBackends(spec, []backends.Namespace{backends.Native}, filePath))
	spec = plotSpec{Function: "digamma", Min: 0, Max: 1, NumSamples: 10}
	require.Error(t, plotBackends(spec, []backends.Namespace{backends.Native}, filePath))
}
