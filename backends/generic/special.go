// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package generic

import (
	"math"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/special/backends"
	"github.com/gomlx/special/pkg/special/kernels"
)

// gammaincQuirks reproduces the boundary values of gammainc in some accelerator libraries.
func gammaincQuirks(a, x float64) float64 {
	switch {
	case a == 0 && x > 0:
		return math.NaN()
	case math.IsInf(a, 1) && math.IsInf(x, 1):
		return 1
	}
	return kernels.Gammainc(a, x)
}

// gammainccQuirks is the complement of gammaincQuirks.
func gammainccQuirks(a, x float64) float64 {
	switch {
	case a == 0 && x > 0:
		return math.NaN()
	case math.IsInf(a, 1) && math.IsInf(x, 1):
		return 0
	}
	return kernels.Gammaincc(a, x)
}

// specialFunc returns the back end's own implementation of the special function k.
func (b *Backend) specialFunc(k kernels.Kernel) backends.Func {
	scalar := k.Scalar
	switch k.Name {
	case "gammainc":
		scalar = func(args ...float64) float64 { return gammaincQuirks(args[0], args[1]) }
	case "gammaincc":
		scalar = func(args ...float64) float64 { return gammainccQuirks(args[0], args[1]) }
	}
	return func(args ...backends.Array) backends.Array {
		if len(args) != k.Arity {
			exceptions.Panicf("generic special function %q takes %d arguments, %d given", k.Name, k.Arity, len(args))
		}
		operands := make([]*Array, len(args))
		for ii, arg := range args {
			operands[ii] = b.cast(arg)
		}
		return b.execElementwise(backends.PromotedDType(args...), func(values []float64) float64 { return scalar(values...) }, operands...)
	}
}
