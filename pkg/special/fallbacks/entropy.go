// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package fallbacks

import (
	"math"

	"github.com/gomlx/special/backends"
)

// RelEntr builds rel_entr(x, y), the elementwise relative entropy:
//
//	x*log(x/y)  if x > 0 and y > 0
//	0           if x == 0 and y >= 0
//	+Inf        otherwise
//
// It is NaN if x or y is NaN, or if both are infinite.
//
// It is always applicable.
func RelEntr(ns backends.Namespace, _ backends.SpecialNamespace, _ Resolver) backends.Func {
	return func(args ...backends.Array) backends.Array {
		checkArity("rel_entr", 2, args)
		x, y := args[0], args[1]
		bothPositive := backends.LogicalAnd(ns, backends.GreaterThanScalar(ns, x, 0), backends.GreaterThanScalar(ns, y, 0))
		bothInf := backends.LogicalAnd(ns, backends.IsInf(ns, x), backends.IsInf(ns, y))
		res := backends.ApplyWhere(ns,
			backends.LogicalAnd(ns, bothPositive, backends.LogicalNot(ns, bothInf)),
			[]backends.Array{x, y},
			func(xy ...backends.Array) backends.Array {
				// For very large x this may overflow.
				return backends.Mul(ns, xy[0], backends.Sub(ns, backends.Log(ns, xy[0]), backends.Log(ns, xy[1])))
			},
			math.Inf(1))
		res = backends.SetWhere(ns, res,
			backends.LogicalAnd(ns, backends.EqualScalar(ns, x, 0), backends.GreaterOrEqualScalar(ns, y, 0)), 0)
		isNaN := backends.LogicalOr(ns,
			backends.LogicalOr(ns, backends.IsNaN(ns, x), backends.IsNaN(ns, y)),
			backends.LogicalAnd(ns, bothPositive, bothInf))
		return backends.SetWhere(ns, res, isNaN, math.NaN())
	}
}

// Xlogy builds xlogy(x, y) = x*log(y), defined as 0 where x == 0, even if y is 0, negative or NaN.
//
// It is always applicable.
func Xlogy(ns backends.Namespace, _ backends.SpecialNamespace, _ Resolver) backends.Func {
	return func(args ...backends.Array) backends.Array {
		checkArity("xlogy", 2, args)
		x, y := args[0], args[1]
		res := backends.Mul(ns, x, backends.Log(ns, y))
		return backends.SetWhere(ns, res, backends.EqualScalar(ns, x, 0), 0)
	}
}
