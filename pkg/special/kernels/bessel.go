// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package kernels

import "math"

// besselSeriesLimit is the |x| up to which the power series is used; beyond it the asymptotic
// expansion converges to full float64 precision.
const besselSeriesLimit = 30.0

// besselSeries returns I_order(x) for order 0 or 1 and x >= 0 from the power series
// sum_k (x/2)^(2k+order) / (k! (k+order)!). All terms are positive, so there is no cancellation.
func besselSeries(order int, x float64) float64 {
	q := 0.25 * x * x
	term := 1.0
	if order == 1 {
		term = 0.5 * x
	}
	sum := term
	for k := 1; k < 500; k++ {
		term *= q / (float64(k) * float64(k+order))
		sum += term
		if term < 1e-17*sum {
			break
		}
	}
	return sum
}

// besselAsymptoticScaled returns exp(-x) * I_order(x) for order 0 or 1 and large x > 0, using
//
//	I_v(x) ~ e^x / sqrt(2 pi x) * sum_k (-1)^k prod_{j=1..k} (4v² - (2j-1)²) / (k! (8x)^k)
func besselAsymptoticScaled(order int, x float64) float64 {
	mu := 4 * float64(order*order)
	term, sum := 1.0, 1.0
	for k := 1; k < 100; k++ {
		odd := float64(2*k - 1)
		next := -term * (mu - odd*odd) / (float64(k) * 8 * x)
		if math.Abs(next) >= math.Abs(term) {
			// Series started diverging.
			break
		}
		term = next
		sum += term
		if math.Abs(term) < 1e-17*math.Abs(sum) {
			break
		}
	}
	return sum / math.Sqrt(2*math.Pi*x)
}

// I0 is the modified Bessel function of the first kind of order 0.
func I0(x float64) float64 {
	if math.IsNaN(x) {
		return math.NaN()
	}
	x = math.Abs(x)
	if x <= besselSeriesLimit {
		return besselSeries(0, x)
	}
	if math.IsInf(x, 1) {
		return math.Inf(1)
	}
	scaled := besselAsymptoticScaled(0, x)
	if x > 700 {
		// Avoid the intermediate overflow of exp(x) for as long as possible.
		half := math.Exp(0.5 * x)
		return scaled * half * half
	}
	return scaled * math.Exp(x)
}

// I0e is the exponentially scaled modified Bessel function of order 0, exp(-|x|) * I0(x).
func I0e(x float64) float64 {
	if math.IsNaN(x) {
		return math.NaN()
	}
	x = math.Abs(x)
	if x <= besselSeriesLimit {
		return math.Exp(-x) * besselSeries(0, x)
	}
	if math.IsInf(x, 1) {
		return 0
	}
	return besselAsymptoticScaled(0, x)
}

// I1 is the modified Bessel function of the first kind of order 1. It is an odd function.
func I1(x float64) float64 {
	if math.IsNaN(x) {
		return math.NaN()
	}
	sign := 1.0
	if x < 0 {
		sign, x = -1, -x
	}
	if x <= besselSeriesLimit {
		return sign * besselSeries(1, x)
	}
	if math.IsInf(x, 1) {
		return sign * math.Inf(1)
	}
	scaled := besselAsymptoticScaled(1, x)
	if x > 700 {
		half := math.Exp(0.5 * x)
		return sign * scaled * half * half
	}
	return sign * scaled * math.Exp(x)
}

// I1e is the exponentially scaled modified Bessel function of order 1, exp(-|x|) * I1(x).
func I1e(x float64) float64 {
	if math.IsNaN(x) {
		return math.NaN()
	}
	sign := 1.0
	if x < 0 {
		sign, x = -1, -x
	}
	if x <= besselSeriesLimit {
		return sign * math.Exp(-x) * besselSeries(1, x)
	}
	if math.IsInf(x, 1) {
		return 0
	}
	return sign * besselAsymptoticScaled(1, x)
}
