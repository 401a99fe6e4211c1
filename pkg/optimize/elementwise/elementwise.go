// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package elementwise implements elementwise (vectorized) scalar root finding over arrays of any back end.
//
// Each element of the input arrays defines an independent scalar problem: BracketRoot searches for an
// interval where the function changes sign, and FindRoot refines a bracket to a root using Chandrupatla's
// algorithm. All elements are iterated together, using only the elementwise operations of the
// backends.Namespace, and the elements that already terminated are frozen.
//
// The outcome of each element is reported in its Status. Failures are not errors: the elements that fail
// are set to NaN (or to the last estimate, see the Status values) and the loop continues for the others.
package elementwise

import (
	"fmt"
	"math"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/special/backends"
	"github.com/gomlx/special/pkg/core/shapes"
)

// Func is an elementwise scalar function whose root is searched, evaluated on an array of abscissae.
//
// The result must be broadcastable with x: typically it has the broadcast shape of x and any other
// parameters captured by the closure.
type Func func(x backends.Array) backends.Array

// Status of the search for one element.
type Status int

const (
	// StatusConverged means the search terminated successfully.
	StatusConverged Status = 0

	// StatusSignError means the function doesn't change sign on the bracket given to FindRoot.
	StatusSignError Status = -1

	// StatusIterationLimit means the maximum number of iterations was reached.
	StatusIterationLimit Status = -2

	// StatusValueError means a non-finite abscissa or a NaN function value was found.
	StatusValueError Status = -3

	// StatusLimitReached means BracketRoot reached infinite abscissae on both sides without finding a bracket.
	StatusLimitReached Status = -4

	// StatusInProgress marks the elements still being iterated.
	StatusInProgress Status = 1
)

// String implements fmt.Stringer.
func (s Status) String() string {
	switch s {
	case StatusConverged:
		return "Converged"
	case StatusSignError:
		return "SignError"
	case StatusIterationLimit:
		return "IterationLimit"
	case StatusValueError:
		return "ValueError"
	case StatusLimitReached:
		return "LimitReached"
	case StatusInProgress:
		return "InProgress"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// statusesOf converts an array of status codes to a slice.
func statusesOf(ns backends.Namespace, status backends.Array) []Status {
	flat := ns.ToNative(status).Flat()
	statuses := make([]Status, len(flat))
	for ii, v := range flat {
		statuses[ii] = Status(v)
	}
	return statuses
}

// machine returns the machine epsilon and the smallest normal number of a floating dtype.
func machine(dtype dtypes.DType) (eps, tiny float64) {
	switch dtype {
	case dtypes.Float32:
		return 0x1p-23, 0x1p-126
	case dtypes.Float16:
		return 0x1p-10, 0x1p-14
	case dtypes.BFloat16:
		return 0x1p-7, 0x1p-126
	}
	return 0x1p-52, 0x1p-1022
}

// ops binds the elementwise operations to a namespace and a floating dtype, to keep the algorithms readable.
type ops struct {
	ns    backends.Namespace
	dtype dtypes.DType
	// all is a Bool array of true values with the broadcast shape of the problem.
	all backends.Array
}

func newOps(ns backends.Namespace, dtype dtypes.DType, dims []int) *ops {
	return &ops{ns: ns, dtype: dtype, all: ns.Full(shapes.Make(dtypes.Bool, dims...), 1)}
}

// c returns a scalar constant.
func (o *ops) c(v float64) backends.Array { return backends.Scalar(o.ns, o.dtype, v) }

// broadcast x to the shape of the problem.
func (o *ops) broadcast(x backends.Array) backends.Array { return o.ns.Where(o.all, x, x) }

// full returns an array with the shape of the problem filled with v.
func (o *ops) full(dtype dtypes.DType, v float64) backends.Array {
	return o.ns.Full(o.all.Shape().WithDType(dtype), v)
}

// update returns newValue where mask is true and old elsewhere.
func (o *ops) update(mask, newValue, old backends.Array) backends.Array {
	return o.ns.Where(mask, newValue, old)
}

// setStatus sets the status of the elements selected by mask.
func (o *ops) setStatus(status, mask backends.Array, s Status) backends.Array {
	return backends.SetWhere(o.ns, status, mask, float64(s))
}

func (o *ops) and(x, y backends.Array) backends.Array { return backends.LogicalAnd(o.ns, x, y) }
func (o *ops) or(x, y backends.Array) backends.Array  { return backends.LogicalOr(o.ns, x, y) }
func (o *ops) not(x backends.Array) backends.Array    { return backends.LogicalNot(o.ns, x) }

// sameSign returns whether x and y have the same sign (-1, 0 or 1). It is false if either is NaN.
func (o *ops) sameSign(x, y backends.Array) backends.Array {
	return backends.Equal(o.ns, backends.Sign(o.ns, x), backends.Sign(o.ns, y))
}

// broadcastDims returns the broadcast dimensions of the arrays, panicking if they are not compatible.
func broadcastDims(arrays ...backends.Array) []int {
	arrayShapes := make([]shapes.Shape, len(arrays))
	for ii, x := range arrays {
		arrayShapes[ii] = x.Shape()
	}
	return shapes.Broadcast(arrayShapes...).Dimensions
}

// nan is a shortcut.
var nan = math.NaN()
