// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package kernels

import (
	"math"

	"gonum.org/v1/gonum/mathext"
)

// Gammaln is the log of the absolute value of the Gamma function.
func Gammaln(x float64) float64 {
	if math.IsNaN(x) {
		return math.NaN()
	}
	lg, _ := math.Lgamma(x)
	return lg
}

// Gammainc is the regularized lower incomplete gamma function P(a, x).
//
// Boundaries: P(0, x>0) = 1, P(a, 0) = 0, P(a, +Inf) = 1, P(+Inf, x) = 0 for finite x,
// and NaN for a < 0, x < 0, P(0, 0) and P(+Inf, +Inf).
func Gammainc(a, x float64) float64 {
	switch {
	case math.IsNaN(a) || math.IsNaN(x):
		return math.NaN()
	case a < 0 || x < 0:
		return math.NaN()
	case a == 0:
		if x > 0 {
			return 1
		}
		return math.NaN()
	case x == 0:
		return 0
	case math.IsInf(a, 1):
		if math.IsInf(x, 1) {
			return math.NaN()
		}
		return 0
	case math.IsInf(x, 1):
		return 1
	}
	return mathext.GammaIncReg(a, x)
}

// Gammaincc is the regularized upper incomplete gamma function Q(a, x) = 1 - P(a, x).
//
// Boundaries mirror Gammainc.
func Gammaincc(a, x float64) float64 {
	switch {
	case math.IsNaN(a) || math.IsNaN(x):
		return math.NaN()
	case a < 0 || x < 0:
		return math.NaN()
	case a == 0:
		if x > 0 {
			return 0
		}
		return math.NaN()
	case x == 0:
		return 1
	case math.IsInf(a, 1):
		if math.IsInf(x, 1) {
			return math.NaN()
		}
		return 1
	case math.IsInf(x, 1):
		return 0
	}
	return mathext.GammaIncRegComp(a, x)
}

// Chdtr is the chi-squared cumulative distribution function with v degrees of freedom, P(v/2, x/2).
func Chdtr(v, x float64) float64 {
	return Gammainc(v/2, x/2)
}

// Chdtrc is the chi-squared survival function with v degrees of freedom, Q(v/2, x/2).
// It is 1 for x < 0, and NaN for v <= 0.
func Chdtrc(v, x float64) float64 {
	switch {
	case math.IsNaN(v) || math.IsNaN(x):
		return math.NaN()
	case v <= 0:
		return math.NaN()
	case x < 0:
		return 1
	}
	return Gammaincc(v/2, x/2)
}
