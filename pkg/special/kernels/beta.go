// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package kernels

import (
	"math"

	"gonum.org/v1/gonum/mathext"
	"gonum.org/v1/gonum/stat/distuv"
)

// Betainc is the regularized incomplete beta function I_x(a, b).
//
// It requires a, b >= 0 (not both zero), finite, and 0 <= x <= 1, returning NaN otherwise.
// I_x(0, b) = 1 and I_x(a, 0) = 0.
func Betainc(a, b, x float64) float64 {
	switch {
	case math.IsNaN(a) || math.IsNaN(b) || math.IsNaN(x):
		return math.NaN()
	case a < 0 || b < 0 || x < 0 || x > 1:
		return math.NaN()
	case math.IsInf(a, 0) || math.IsInf(b, 0):
		return math.NaN()
	case a == 0 && b == 0:
		return math.NaN()
	case a == 0:
		return 1
	case b == 0:
		return 0
	case x == 0:
		return 0
	case x == 1:
		return 1
	}
	return mathext.RegIncBeta(a, b, x)
}

// Betaincc is the complemented regularized incomplete beta function, 1 - I_x(a, b).
//
// Whichever of I_x(a, b) or I_{1-x}(b, a) is smaller is computed directly, to avoid cancellation.
func Betaincc(a, b, x float64) float64 {
	switch {
	case math.IsNaN(a) || math.IsNaN(b) || math.IsNaN(x):
		return math.NaN()
	case a < 0 || b < 0 || x < 0 || x > 1:
		return math.NaN()
	case math.IsInf(a, 0) || math.IsInf(b, 0):
		return math.NaN()
	case a == 0 && b == 0:
		return math.NaN()
	case a == 0:
		return 0
	case b == 0:
		return 1
	case x == 0:
		return 1
	case x == 1:
		return 0
	}
	lower := mathext.RegIncBeta(a, b, x)
	if lower < 0.5 {
		return 1 - lower
	}
	return mathext.RegIncBeta(b, a, 1-x)
}

// Stdtr is the cumulative distribution function of Student's t distribution with df degrees of freedom.
func Stdtr(df, t float64) float64 {
	switch {
	case math.IsNaN(df) || math.IsNaN(t):
		return math.NaN()
	case df <= 0:
		return math.NaN()
	case math.IsInf(df, 1):
		return Ndtr(t)
	case t == 0:
		return 0.5
	case math.IsInf(t, 1):
		return 1
	case math.IsInf(t, -1):
		return 0
	}
	x := df / (df + t*t)
	tail := 0.5 * Betainc(0.5*df, 0.5, x)
	if t < 0 {
		return tail
	}
	return 1 - tail
}

// Stdtrit is the inverse of Stdtr with respect to t: the quantile function of Student's t distribution.
func Stdtrit(df, p float64) float64 {
	switch {
	case math.IsNaN(df) || math.IsNaN(p):
		return math.NaN()
	case df <= 0 || p < 0 || p > 1:
		return math.NaN()
	case p == 0:
		return math.Inf(-1)
	case p == 1:
		return math.Inf(1)
	case math.IsInf(df, 1):
		return Ndtri(p)
	}
	return distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}.Quantile(p)
}
