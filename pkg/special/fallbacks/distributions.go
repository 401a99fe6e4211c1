// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package fallbacks

import (
	"math"

	"github.com/gomlx/special/backends"
	"github.com/gomlx/special/pkg/optimize/elementwise"
	"k8s.io/klog/v2"
)

// Chdtr builds chdtr(v, x), the chi-squared cumulative distribution function with v degrees of freedom,
// as gammainc(v/2, x/2).
//
// It is 1 where v == 0 and x > 0, and NaN where both v and x are infinite: some native gammainc
// implementations return NaN and 1 respectively in those cases.
//
// It requires a native gammainc.
func Chdtr(ns backends.Namespace, spx backends.SpecialNamespace, _ Resolver) backends.Func {
	gammainc := NativeFunc(ns, spx, "gammainc")
	if gammainc == nil {
		return nil
	}
	return func(args ...backends.Array) backends.Array {
		checkArity("chdtr", 2, args)
		v, x := args[0], args[1]
		res := gammainc(backends.DivScalar(ns, v, 2), backends.DivScalar(ns, x, 2))
		res = backends.SetWhere(ns, res,
			backends.LogicalAnd(ns, backends.EqualScalar(ns, v, 0), backends.GreaterThanScalar(ns, x, 0)), 1)
		return backends.SetWhere(ns, res,
			backends.LogicalAnd(ns, backends.IsInf(ns, v), backends.IsInf(ns, x)), math.NaN())
	}
}

// Chdtrc builds chdtrc(v, x), the chi-squared survival function with v degrees of freedom, as
// gammaincc(v/2, x/2) for x >= 0 and 1 for x < 0.
//
// It is NaN where v <= 0 (including v == 0 and x == 0), or where either argument is NaN.
//
// It requires a native gammaincc.
func Chdtrc(ns backends.Namespace, spx backends.SpecialNamespace, _ Resolver) backends.Func {
	gammaincc := NativeFunc(ns, spx, "gammaincc")
	if gammaincc == nil {
		return nil
	}
	return func(args ...backends.Array) backends.Array {
		checkArity("chdtrc", 2, args)
		v, x := args[0], args[1]
		tail := gammaincc(backends.DivScalar(ns, v, 2), backends.DivScalar(ns, x, 2))
		res := ns.Where(backends.GreaterOrEqualScalar(ns, x, 0), tail, backends.Scalar(ns, tail.Shape().DType, 1))
		isNaN := backends.LogicalOr(ns,
			backends.LogicalAnd(ns, backends.EqualScalar(ns, x, 0), backends.EqualScalar(ns, v, 0)),
			backends.LogicalOr(ns,
				backends.LogicalOr(ns, backends.IsNaN(ns, x), backends.IsNaN(ns, v)),
				backends.LessOrEqualScalar(ns, v, 0)))
		return backends.SetWhere(ns, res, isNaN, math.NaN())
	}
}

// Betaincc builds betaincc(a, b, x), the complement of the regularized incomplete beta function, as
// betainc(b, a, 1-x).
//
// It is approximate: for x close to 0, 1-x loses precision.
//
// It requires a native betainc.
func Betaincc(ns backends.Namespace, spx backends.SpecialNamespace, _ Resolver) backends.Func {
	betainc := NativeFunc(ns, spx, "betainc")
	if betainc == nil {
		return nil
	}
	return func(args ...backends.Array) backends.Array {
		checkArity("betaincc", 3, args)
		a, b, x := args[0], args[1], args[2]
		return betainc(b, a, backends.OneMinus(ns, x))
	}
}

// Stdtr builds stdtr(df, t), the cumulative distribution function of Student's t distribution with df
// degrees of freedom:
//
//	tail = betainc(df/2, 1/2, df/(t²+df)) / 2
//	stdtr(df, t) = tail if t < 0, 1-tail otherwise.
//
// It requires a native betainc.
func Stdtr(ns backends.Namespace, spx backends.SpecialNamespace, _ Resolver) backends.Func {
	betainc := NativeFunc(ns, spx, "betainc")
	if betainc == nil {
		return nil
	}
	return func(args ...backends.Array) backends.Array {
		checkArity("stdtr", 2, args)
		df, t := args[0], args[1]
		x := backends.Div(ns, df, backends.Add(ns, backends.Square(ns, t), df))
		half := backends.Scalar(ns, backends.PromotedDType(df, t), 0.5)
		tail := backends.DivScalar(ns, betainc(backends.DivScalar(ns, df, 2), half, x), 2)
		return ns.Where(backends.LessThanScalar(ns, t, 0), tail, backends.OneMinus(ns, tail))
	}
}

// Stdtrit builds stdtrit(df, p), the inverse of stdtr(df, t) in t: the quantile function of Student's t
// distribution.
//
// It is the root in t of stdtr(df, t) - p, bracketed starting from zero and then refined. stdtr is
// resolved on the same back end, so both use the same arithmetic. The root finder's tolerances can be
// configured with SetRootOptions, and its result is returned as is: elements where it fails are NaN (e.g.
// p outside of (0, 1)).
//
// It requires a native betainc.
func Stdtrit(ns backends.Namespace, spx backends.SpecialNamespace, resolve Resolver) backends.Func {
	if NativeFunc(ns, spx, "betainc") == nil {
		return nil
	}
	return func(args ...backends.Array) backends.Array {
		checkArity("stdtrit", 2, args)
		df, p := args[0], args[1]
		var stdtr backends.Func
		if resolve != nil {
			stdtr = resolve("stdtr")
		} else {
			stdtr = Stdtr(ns, spx, nil)
		}
		f := func(t backends.Array) backends.Array {
			return backends.Sub(ns, stdtr(df, t), p)
		}
		bracket := elementwise.BracketRoot(ns, f, backends.ZerosLike(ns, p), nil)
		root := elementwise.FindRoot(ns, f, bracket.Lower, bracket.Upper, rootOptions.Load())
		if klog.V(3).Enabled() {
			klog.Infof("stdtrit: root found with %d bracket and %d refinement iterations", bracket.NumIter, root.NumIter)
		}
		return root.X
	}
}
