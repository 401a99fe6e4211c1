// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package kernels

import "math"

// Logit is the log-odds function log(p / (1-p)), the inverse of Expit.
func Logit(p float64) float64 {
	switch {
	case math.IsNaN(p) || p < 0 || p > 1:
		return math.NaN()
	case p == 0:
		return math.Inf(-1)
	case p == 1:
		return math.Inf(1)
	case p > 0.3 && p < 0.65:
		// Close to 1/2 the ratio is close to 1: use log1p to keep precision.
		return math.Log1p((2*p - 1) / (1 - p))
	}
	return math.Log(p / (1 - p))
}

// Expit is the logistic sigmoid 1 / (1 + exp(-x)).
func Expit(x float64) float64 {
	if math.IsNaN(x) {
		return math.NaN()
	}
	if x >= 0 {
		return 1 / (1 + math.Exp(-x))
	}
	e := math.Exp(x)
	return e / (1 + e)
}

// Entr is the elementwise entropy term: -x log(x) for x > 0, 0 for x == 0 and -Inf for x < 0.
func Entr(x float64) float64 {
	switch {
	case math.IsNaN(x):
		return math.NaN()
	case x > 0:
		return -x * math.Log(x)
	case x == 0:
		return 0
	}
	return math.Inf(-1)
}

// RelEntr is the elementwise relative entropy term: x log(x/y) for x, y > 0, 0 for x == 0 and y >= 0,
// and +Inf otherwise.
func RelEntr(x, y float64) float64 {
	switch {
	case math.IsNaN(x) || math.IsNaN(y):
		return math.NaN()
	case x > 0 && y > 0:
		return x * math.Log(x/y)
	case x == 0 && y >= 0:
		return 0
	}
	return math.Inf(1)
}

// Xlogy computes x * log(y), defined as 0 when x == 0 (unless y is NaN).
func Xlogy(x, y float64) float64 {
	if x == 0 && !math.IsNaN(y) {
		return 0
	}
	return x * math.Log(y)
}
