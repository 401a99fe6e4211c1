// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package backends

import (
	"fmt"
	"math"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/special/pkg/core/shapes"
)

// OpType is an enum of all elementwise operations a Namespace must support.
//
// The semantics of each operation, per element, are given by EvalUnary and EvalBinary: back ends are
// free to implement them however they want, as long as they produce the same values.
type OpType int

const (
	OpTypeInvalid OpType = iota

	// Unary arithmetic: the result has the dtype of the operand.

	OpTypeNeg
	OpTypeAbs
	OpTypeSign
	OpTypeLog
	OpTypeLog1p
	OpTypeExp
	OpTypeSqrt

	// Unary predicates: the result is Bool.

	OpTypeIsNaN
	OpTypeIsInf
	OpTypeIsFinite
	OpTypeLogicalNot

	// Binary arithmetic: the result has the promoted dtype of the operands.

	OpTypeAdd
	OpTypeSub
	OpTypeMul
	OpTypeDiv
	OpTypePow
	OpTypeMax
	OpTypeMin

	// Binary comparisons and logical operations: the result is Bool.

	OpTypeEqual
	OpTypeNotEqual
	OpTypeLessThan
	OpTypeLessOrEqual
	OpTypeGreaterThan
	OpTypeGreaterOrEqual
	OpTypeLogicalAnd
	OpTypeLogicalOr

	// OpTypeLast should always be kept the last, it is used as a counter/marker for OpType.
	OpTypeLast
)

var opTypeNames = [...]string{
	OpTypeInvalid:        "Invalid",
	OpTypeNeg:            "Neg",
	OpTypeAbs:            "Abs",
	OpTypeSign:           "Sign",
	OpTypeLog:            "Log",
	OpTypeLog1p:          "Log1p",
	OpTypeExp:            "Exp",
	OpTypeSqrt:           "Sqrt",
	OpTypeIsNaN:          "IsNaN",
	OpTypeIsInf:          "IsInf",
	OpTypeIsFinite:       "IsFinite",
	OpTypeLogicalNot:     "LogicalNot",
	OpTypeAdd:            "Add",
	OpTypeSub:            "Sub",
	OpTypeMul:            "Mul",
	OpTypeDiv:            "Div",
	OpTypePow:            "Pow",
	OpTypeMax:            "Max",
	OpTypeMin:            "Min",
	OpTypeEqual:          "Equal",
	OpTypeNotEqual:       "NotEqual",
	OpTypeLessThan:       "LessThan",
	OpTypeLessOrEqual:    "LessOrEqual",
	OpTypeGreaterThan:    "GreaterThan",
	OpTypeGreaterOrEqual: "GreaterOrEqual",
	OpTypeLogicalAnd:     "LogicalAnd",
	OpTypeLogicalOr:      "LogicalOr",
	OpTypeLast:           "Last",
}

// String implements fmt.Stringer.
func (op OpType) String() string {
	if op < 0 || int(op) >= len(opTypeNames) {
		return fmt.Sprintf("OpType(%d)", int(op))
	}
	return opTypeNames[op]
}

// IsUnary returns whether op takes one operand.
func (op OpType) IsUnary() bool {
	return op >= OpTypeNeg && op <= OpTypeLogicalNot
}

// IsBinary returns whether op takes two operands.
func (op OpType) IsBinary() bool {
	return op >= OpTypeAdd && op < OpTypeLast
}

// ReturnsBool returns whether the result of op is a Bool array: comparisons, predicates and logical operations.
func (op OpType) ReturnsBool() bool {
	return (op >= OpTypeIsNaN && op <= OpTypeLogicalNot) || (op >= OpTypeEqual && op <= OpTypeLogicalOr)
}

// OutputDType returns the dtype of the result of op applied to operands of the given dtypes.
func (op OpType) OutputDType(operands ...dtypes.DType) dtypes.DType {
	if op.ReturnsBool() {
		return dtypes.Bool
	}
	dtype := dtypes.InvalidDType
	for _, operand := range operands {
		dtype = shapes.PromoteDTypes(dtype, operand)
	}
	return dtype
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// EvalUnary evaluates the unary op on one value. Bool values are represented as 0 and 1.
//
// It panics if op is not unary.
func EvalUnary(op OpType, x float64) float64 {
	switch op {
	case OpTypeNeg:
		return -x
	case OpTypeAbs:
		return math.Abs(x)
	case OpTypeSign:
		switch {
		case x > 0:
			return 1
		case x < 0:
			return -1
		}
		// Keeps NaN and the sign of zero.
		return x
	case OpTypeLog:
		return math.Log(x)
	case OpTypeLog1p:
		return math.Log1p(x)
	case OpTypeExp:
		return math.Exp(x)
	case OpTypeSqrt:
		return math.Sqrt(x)
	case OpTypeIsNaN:
		return boolToFloat(math.IsNaN(x))
	case OpTypeIsInf:
		return boolToFloat(math.IsInf(x, 0))
	case OpTypeIsFinite:
		return boolToFloat(!math.IsNaN(x) && !math.IsInf(x, 0))
	case OpTypeLogicalNot:
		return boolToFloat(x == 0)
	default:
		exceptions.Panicf("EvalUnary: %s is not a unary operation", op)
	}
	return 0
}

// EvalBinary evaluates the binary op on one pair of values. Bool values are represented as 0 and 1.
//
// Max and Min propagate NaN. It panics if op is not binary.
func EvalBinary(op OpType, x, y float64) float64 {
	switch op {
	case OpTypeAdd:
		return x + y
	case OpTypeSub:
		return x - y
	case OpTypeMul:
		return x * y
	case OpTypeDiv:
		return x / y
	case OpTypePow:
		return math.Pow(x, y)
	case OpTypeMax:
		return math.Max(x, y)
	case OpTypeMin:
		return math.Min(x, y)
	case OpTypeEqual:
		return boolToFloat(x == y)
	case OpTypeNotEqual:
		return boolToFloat(x != y)
	case OpTypeLessThan:
		return boolToFloat(x < y)
	case OpTypeLessOrEqual:
		return boolToFloat(x <= y)
	case OpTypeGreaterThan:
		return boolToFloat(x > y)
	case OpTypeGreaterOrEqual:
		return boolToFloat(x >= y)
	case OpTypeLogicalAnd:
		return boolToFloat(x != 0 && y != 0)
	case OpTypeLogicalOr:
		return boolToFloat(x != 0 || y != 0)
	default:
		exceptions.Panicf("EvalBinary: %s is not a binary operation", op)
	}
	return 0
}
