// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package kernels

import "math"

// Erf is the error function.
func Erf(x float64) float64 { return math.Erf(x) }

// Erfc is the complementary error function, 1 - erf(x).
func Erfc(x float64) float64 { return math.Erfc(x) }

// Ndtr is the standard normal cumulative distribution function.
func Ndtr(x float64) float64 {
	if math.IsNaN(x) {
		return math.NaN()
	}
	return 0.5 * math.Erfc(-x/math.Sqrt2)
}

// LogNdtr is the log of the standard normal cumulative distribution function, accurate
// for large negative arguments, where Ndtr underflows.
func LogNdtr(x float64) float64 {
	switch {
	case math.IsNaN(x):
		return math.NaN()
	case x > 6:
		return math.Log1p(-Ndtr(-x))
	case x > -20:
		return math.Log(Ndtr(x))
	case math.IsInf(x, -1):
		return math.Inf(-1)
	}

	// Asymptotic expansion: ndtr(x) ~ phi(x)/(-x) * (1 - 1/x² + 3/x⁴ - 15/x⁶ + ...).
	z2 := 1 / (x * x)
	sum, term := 1.0, 1.0
	for k := 1; k < 12; k++ {
		term *= -float64(2*k-1) * z2
		sum += term
	}
	return -0.5*x*x - math.Log(-x) - 0.5*math.Log(2*math.Pi) + math.Log(sum)
}

// Ndtri is the inverse of Ndtr: the quantile function of the standard normal distribution.
func Ndtri(p float64) float64 {
	if math.IsNaN(p) || p < 0 || p > 1 {
		return math.NaN()
	}
	return -math.Sqrt2 * math.Erfcinv(2*p)
}
