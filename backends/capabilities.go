// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package backends

import (
	"github.com/gomlx/special/pkg/core/ndarray"
)

// ApplyWherer is an optional capability of a Namespace: evaluate a function only on the elements
// selected by a condition.
type ApplyWherer interface {
	// ApplyWhere returns fn(args...) where cond is true, and fill elsewhere. The args and cond are broadcast
	// together, and fn is only evaluated on the selected elements (in whatever layout the back end chooses:
	// fn must be elementwise).
	ApplyWhere(cond Array, args []Array, fn Func, fill float64) Array
}

// SetWherer is an optional capability of a Namespace: indexed assignment by a boolean mask.
type SetWherer interface {
	// SetWhere returns a copy of x (broadcast with mask) with the elements selected by mask set to value.
	SetWhere(x, mask Array, value float64) Array
}

// MaskedNamespace is implemented by the namespaces of Kind KindMasked.
type MaskedNamespace interface {
	Namespace

	// Inner returns the namespace of the data arrays.
	Inner() Namespace

	// Split returns the data (an array of the Inner namespace) and the validity mask of x.
	// The mask is a native Bool array, true for the masked (invalid) elements.
	Split(x Array) (data Array, mask *ndarray.Array)

	// Join creates a masked array from the data (an array of the Inner namespace) and a mask broadcastable
	// to the data's shape.
	Join(data Array, mask *ndarray.Array) Array
}

// ChunkedNamespace is implemented by the namespaces of Kind KindChunked.
type ChunkedNamespace interface {
	Namespace

	// Inner returns the namespace of the blocks (chunks).
	Inner() Namespace

	// MapBlocks applies fn independently to each block of the broadcast arguments, and returns the chunked
	// result. The blocks given to fn are arrays of the Inner namespace.
	//
	// This is only correct for elementwise functions: a reduction would produce results that depend on
	// the chunking.
	MapBlocks(fn Func, args ...Array) Array
}

// ApplyWhere returns fn(args...) where cond is true, and fill elsewhere.
//
// It uses the ApplyWherer capability of the namespace if available. Otherwise fn is evaluated on all
// elements and the result is selected with Where.
func ApplyWhere(ns Namespace, cond Array, args []Array, fn Func, fill float64) Array {
	if applier, ok := ns.(ApplyWherer); ok {
		return applier.ApplyWhere(cond, args, fn, fill)
	}
	return ns.Where(cond, fn(args...), Scalar(ns, PromotedDType(args...), fill))
}

// SetWhere returns x with the elements selected by mask set to value.
//
// It uses the SetWherer capability of the namespace if available, and Where otherwise.
func SetWhere(ns Namespace, x, mask Array, value float64) Array {
	if setter, ok := ns.(SetWherer); ok {
		return setter.SetWhere(x, mask, value)
	}
	return ns.Where(mask, Scalar(ns, x.Shape().DType, value), x)
}
