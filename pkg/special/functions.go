// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package special

import "github.com/gomlx/special/backends"

// LogNdtr returns the logarithm of the standard normal cumulative distribution function, accurate for
// large negative x.
func LogNdtr(x any) backends.Array { return wrappers["log_ndtr"](x) }

// Ndtr returns the standard normal cumulative distribution function.
func Ndtr(x any) backends.Array { return wrappers["ndtr"](x) }

// Ndtri returns the inverse of Ndtr: -inf at 0, +inf at 1 and NaN outside of [0, 1].
func Ndtri(p any) backends.Array { return wrappers["ndtri"](p) }

// Erf returns the error function.
func Erf(x any) backends.Array { return wrappers["erf"](x) }

// Erfc returns the complementary error function 1-erf(x).
func Erfc(x any) backends.Array { return wrappers["erfc"](x) }

// I0 returns the modified Bessel function of the first kind of order 0.
func I0(x any) backends.Array { return wrappers["i0"](x) }

// I0e returns the exponentially scaled I0: exp(-|x|)·i0(x).
func I0e(x any) backends.Array { return wrappers["i0e"](x) }

// I1 returns the modified Bessel function of the first kind of order 1.
func I1(x any) backends.Array { return wrappers["i1"](x) }

// I1e returns the exponentially scaled I1: exp(-|x|)·i1(x).
func I1e(x any) backends.Array { return wrappers["i1e"](x) }

// Gammaln returns the logarithm of the absolute value of the gamma function.
func Gammaln(x any) backends.Array { return wrappers["gammaln"](x) }

// Gammainc returns the regularized lower incomplete gamma function P(a, x).
func Gammainc(a, x any) backends.Array { return wrappers["gammainc"](a, x) }

// Gammaincc returns the regularized upper incomplete gamma function Q(a, x) = 1 - P(a, x).
func Gammaincc(a, x any) backends.Array { return wrappers["gammaincc"](a, x) }

// Logit returns log(p/(1-p)).
func Logit(p any) backends.Array { return wrappers["logit"](p) }

// Expit returns the logistic sigmoid 1/(1+exp(-x)), the inverse of Logit.
func Expit(x any) backends.Array { return wrappers["expit"](x) }

// Entr returns the elementwise entropy -x·log(x): 0 at 0 and -inf for x < 0.
func Entr(x any) backends.Array { return wrappers["entr"](x) }

// RelEntr returns the elementwise relative entropy x·log(x/y).
func RelEntr(x, y any) backends.Array { return wrappers["rel_entr"](x, y) }

// Xlogy returns x·log(y), 0 where x == 0.
func Xlogy(x, y any) backends.Array { return wrappers["xlogy"](x, y) }

// Chdtr returns the chi-squared cumulative distribution function with v degrees of freedom.
func Chdtr(v, x any) backends.Array { return wrappers["chdtr"](v, x) }

// Chdtrc returns the chi-squared survival function with v degrees of freedom.
func Chdtrc(v, x any) backends.Array { return wrappers["chdtrc"](v, x) }

// Betainc returns the regularized incomplete beta function I_x(a, b).
func Betainc(a, b, x any) backends.Array { return wrappers["betainc"](a, b, x) }

// Betaincc returns the complement 1 - I_x(a, b).
func Betaincc(a, b, x any) backends.Array { return wrappers["betaincc"](a, b, x) }

// Stdtr returns the cumulative distribution function of Student's t distribution with df degrees of freedom.
func Stdtr(df, t any) backends.Array { return wrappers["stdtr"](df, t) }

// Stdtrit returns the inverse of Stdtr in t: the quantile function of Student's t distribution.
func Stdtrit(df, p any) backends.Array { return wrappers["stdtrit"](df, p) }
