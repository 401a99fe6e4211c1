// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package backends

import (
	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/special/pkg/core/shapes"
)

// Scalar returns a scalar array of the given dtype in the namespace.
func Scalar(ns Namespace, dtype dtypes.DType, value float64) Array {
	return ns.Full(shapes.Scalar(dtype), value)
}

// PromotedDType returns the floating dtype of the result of an arithmetic operation over the given arrays.
// It is Float64 if no arrays are given.
func PromotedDType(arrays ...Array) dtypes.DType {
	dtype := dtypes.InvalidDType
	for _, x := range arrays {
		dtype = shapes.PromoteDTypes(dtype, x.Shape().DType)
	}
	if dtype == dtypes.InvalidDType {
		return dtypes.Float64
	}
	return dtype
}

// ZerosLike returns an array of zeros with the shape of x.
func ZerosLike(ns Namespace, x Array) Array {
	return ns.Full(x.Shape(), 0)
}

// Neg returns -x.
func Neg(ns Namespace, x Array) Array { return ns.Unary(OpTypeNeg, x) }

// Abs returns |x|.
func Abs(ns Namespace, x Array) Array { return ns.Unary(OpTypeAbs, x) }

// Sign returns -1, 0 or 1 depending on the sign of x. NaN is preserved.
func Sign(ns Namespace, x Array) Array { return ns.Unary(OpTypeSign, x) }

// Log returns the natural logarithm of x.
func Log(ns Namespace, x Array) Array { return ns.Unary(OpTypeLog, x) }

// Log1p returns log(1+x).
func Log1p(ns Namespace, x Array) Array { return ns.Unary(OpTypeLog1p, x) }

// Exp returns e^x.
func Exp(ns Namespace, x Array) Array { return ns.Unary(OpTypeExp, x) }

// Sqrt returns the square root of x.
func Sqrt(ns Namespace, x Array) Array { return ns.Unary(OpTypeSqrt, x) }

// IsNaN returns a Bool array, true where x is NaN.
func IsNaN(ns Namespace, x Array) Array { return ns.Unary(OpTypeIsNaN, x) }

// IsInf returns a Bool array, true where x is +Inf or -Inf.
func IsInf(ns Namespace, x Array) Array { return ns.Unary(OpTypeIsInf, x) }

// IsFinite returns a Bool array, true where x is neither NaN nor infinite.
func IsFinite(ns Namespace, x Array) Array { return ns.Unary(OpTypeIsFinite, x) }

// LogicalNot returns the negation of the Bool array x.
func LogicalNot(ns Namespace, x Array) Array { return ns.Unary(OpTypeLogicalNot, x) }

// Add returns x + y.
func Add(ns Namespace, x, y Array) Array { return ns.Binary(OpTypeAdd, x, y) }

// Sub returns x - y.
func Sub(ns Namespace, x, y Array) Array { return ns.Binary(OpTypeSub, x, y) }

// Mul returns x * y.
func Mul(ns Namespace, x, y Array) Array { return ns.Binary(OpTypeMul, x, y) }

// Div returns x / y.
func Div(ns Namespace, x, y Array) Array { return ns.Binary(OpTypeDiv, x, y) }

// Pow returns x^y.
func Pow(ns Namespace, x, y Array) Array { return ns.Binary(OpTypePow, x, y) }

// Max returns the elementwise maximum of x and y.
func Max(ns Namespace, x, y Array) Array { return ns.Binary(OpTypeMax, x, y) }

// Min returns the elementwise minimum of x and y.
func Min(ns Namespace, x, y Array) Array { return ns.Binary(OpTypeMin, x, y) }

// Equal returns x == y.
func Equal(ns Namespace, x, y Array) Array { return ns.Binary(OpTypeEqual, x, y) }

// NotEqual returns x != y.
func NotEqual(ns Namespace, x, y Array) Array { return ns.Binary(OpTypeNotEqual, x, y) }

// LessThan returns x < y.
func LessThan(ns Namespace, x, y Array) Array { return ns.Binary(OpTypeLessThan, x, y) }

// LessOrEqual returns x <= y.
func LessOrEqual(ns Namespace, x, y Array) Array { return ns.Binary(OpTypeLessOrEqual, x, y) }

// GreaterThan returns x > y.
func GreaterThan(ns Namespace, x, y Array) Array { return ns.Binary(OpTypeGreaterThan, x, y) }

// GreaterOrEqual returns x >= y.
func GreaterOrEqual(ns Namespace, x, y Array) Array { return ns.Binary(OpTypeGreaterOrEqual, x, y) }

// LogicalAnd returns x && y, for Bool arrays.
func LogicalAnd(ns Namespace, x, y Array) Array { return ns.Binary(OpTypeLogicalAnd, x, y) }

// LogicalOr returns x || y, for Bool arrays.
func LogicalOr(ns Namespace, x, y Array) Array { return ns.Binary(OpTypeLogicalOr, x, y) }

// Square returns x*x.
func Square(ns Namespace, x Array) Array { return Mul(ns, x, x) }

// AddScalar converts scalar to a constant with x's DType and returns `x + scalar`
// with proper broadcasting.
func AddScalar(ns Namespace, x Array, scalar float64) Array {
	return Add(ns, x, Scalar(ns, x.Shape().DType, scalar))
}

// MulScalar converts scalar to a constant with x's DType and returns `x * scalar`
// with proper broadcasting.
func MulScalar(ns Namespace, x Array, scalar float64) Array {
	return Mul(ns, x, Scalar(ns, x.Shape().DType, scalar))
}

// DivScalar converts scalar to a constant with x's DType and returns `x / scalar`
// with proper broadcasting.
func DivScalar(ns Namespace, x Array, scalar float64) Array {
	if scalar == 0 {
		exceptions.Panicf("division by zero in DivScalar")
	}
	return Div(ns, x, Scalar(ns, x.Shape().DType, scalar))
}

// OneMinus returns (1-x).
func OneMinus(ns Namespace, x Array) Array {
	return Sub(ns, Scalar(ns, x.Shape().DType, 1), x)
}

// EqualScalar returns x == scalar.
func EqualScalar(ns Namespace, x Array, scalar float64) Array {
	return Equal(ns, x, Scalar(ns, x.Shape().DType, scalar))
}

// GreaterThanScalar returns x > scalar.
func GreaterThanScalar(ns Namespace, x Array, scalar float64) Array {
	return GreaterThan(ns, x, Scalar(ns, x.Shape().DType, scalar))
}

// GreaterOrEqualScalar returns x >= scalar.
func GreaterOrEqualScalar(ns Namespace, x Array, scalar float64) Array {
	return GreaterOrEqual(ns, x, Scalar(ns, x.Shape().DType, scalar))
}

// LessThanScalar returns x < scalar.
func LessThanScalar(ns Namespace, x Array, scalar float64) Array {
	return LessThan(ns, x, Scalar(ns, x.Shape().DType, scalar))
}

// LessOrEqualScalar returns x <= scalar.
func LessOrEqualScalar(ns Namespace, x Array, scalar float64) Array {
	return LessOrEqual(ns, x, Scalar(ns, x.Shape().DType, scalar))
}
