// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package masked implements a back end of masked arrays: arrays of an inner back end annotated with a
// validity mask.
//
// The mask is a native Bool array, true for the masked (invalid) elements, broadcast to the shape of the data.
// Elementwise operations combine the masks of their operands with a logical OR. The values of the data
// under the mask are unspecified: they are still computed, but should not be relied upon.
//
// The inner back end can be any other back end, including another masked back end.
package masked

import (
	"fmt"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/special/backends"
	"github.com/gomlx/special/pkg/core/ndarray"
	"github.com/gomlx/special/pkg/core/shapes"
)

// BackendName to be used in SPECIAL_BACKEND to specify this back end.
const BackendName = "masked"

// Registers the "masked" back end: its configuration is the configuration of the inner back end.
func init() {
	backends.Register(BackendName, func(config string) backends.Namespace {
		return New(backends.NewWithConfig(config))
	})
}

// Namespace implements backends.MaskedNamespace.
type Namespace struct {
	inner backends.Namespace
}

// Compile-time check that masked.Namespace implements backends.MaskedNamespace.
var _ backends.MaskedNamespace = &Namespace{}

// New returns a masked back end over the inner one.
func New(inner backends.Namespace) *Namespace {
	if inner == nil {
		exceptions.Panicf("masked.New requires an inner back end")
	}
	return &Namespace{inner: inner}
}

// Name implements backends.Namespace.
func (ns *Namespace) Name() string { return BackendName + "(" + ns.inner.Name() + ")" }

// Kind implements backends.Namespace.
func (ns *Namespace) Kind() backends.Kind { return backends.KindMasked }

// Special implements backends.Namespace: masked arrays have no special functions of their own.
func (ns *Namespace) Special() backends.SpecialNamespace { return nil }

// Inner implements backends.MaskedNamespace.
func (ns *Namespace) Inner() backends.Namespace { return ns.inner }

// Array is a masked array.
type Array struct {
	ns   *Namespace
	data backends.Array
	mask *ndarray.Array
}

// Compile-time check that masked.Array is an array that knows its namespace.
var _ backends.Namespacer = &Array{}

// Shape implements backends.Array.
func (x *Array) Shape() shapes.Shape { return x.data.Shape() }

// Namespace implements backends.Namespacer.
func (x *Array) Namespace() backends.Namespace { return x.ns }

// Data returns the data array, of the inner back end.
func (x *Array) Data() backends.Array { return x.data }

// Mask returns the mask, a native Bool array with the shape of the data, true for the masked elements.
func (x *Array) Mask() *ndarray.Array { return x.mask }

// String implements fmt.Stringer. Masked elements are printed as "--".
func (x *Array) String() string {
	data := x.ns.inner.ToNative(x.data)
	values := make([]any, data.Size())
	for ii, v := range data.Flat() {
		if x.mask.Flat()[ii] != 0 {
			values[ii] = "--"
		} else {
			values[ii] = v
		}
	}
	return fmt.Sprintf("masked%s: %v", data.Shape(), values)
}

// Masked creates a masked array from data (anything the inner back end accepts in Asarray) and a mask
// (anything ndarray.FromAny accepts, broadcastable to the data), true for the masked elements.
func (ns *Namespace) Masked(data, mask any) *Array {
	return ns.join(ns.inner.Asarray(data), ndarray.AsType(backends.ToNativeAny(mask), dtypes.Bool))
}

func (ns *Namespace) join(data backends.Array, mask *ndarray.Array) *Array {
	dims := data.Shape().Dimensions
	if mask == nil {
		mask = ndarray.Full(shapes.Make(dtypes.Bool, dims...), 0)
	} else if !mask.Shape().EqualDimensions(data.Shape()) {
		got := shapes.Broadcast(mask.Shape(), data.Shape())
		if !got.EqualDimensions(data.Shape()) {
			exceptions.Panicf("masked: mask of shape %s cannot be broadcast to the data shape %s", mask.Shape(), data.Shape())
		}
		mask = ndarray.BroadcastTo(mask, dims)
	}
	if mask.DType() != dtypes.Bool {
		mask = ndarray.AsType(mask, dtypes.Bool)
	}
	return &Array{ns: ns, data: data, mask: mask}
}

// Split implements backends.MaskedNamespace.
func (ns *Namespace) Split(x backends.Array) (data backends.Array, mask *ndarray.Array) {
	mx := ns.cast(x)
	return mx.data, mx.mask
}

// Join implements backends.MaskedNamespace.
func (ns *Namespace) Join(data backends.Array, mask *ndarray.Array) backends.Array {
	return ns.join(ns.inner.Asarray(data), mask)
}

// cast converts any array to a masked array of this namespace. Arrays that are not masked get an empty mask.
func (ns *Namespace) cast(x backends.Array) *Array {
	if mx, ok := x.(*Array); ok {
		switch {
		case mx.ns == ns:
			return mx
		case backends.Namespace(mx.ns) == ns.inner:
			// A masked array of the inner (nested) masked back end is plain data for this one.
			return ns.join(mx, nil)
		}
		return ns.join(ns.inner.Asarray(mx.data), mx.mask)
	}
	return ns.join(ns.inner.Asarray(x), nil)
}

// Asarray implements backends.Namespace.
func (ns *Namespace) Asarray(value any) backends.Array {
	if x, ok := value.(backends.Array); ok {
		return ns.cast(x)
	}
	return ns.join(ns.inner.Asarray(value), nil)
}

// ToNative implements backends.Namespace. The mask is dropped: only the data is converted.
func (ns *Namespace) ToNative(x backends.Array) *ndarray.Array {
	return ns.inner.ToNative(ns.cast(x).data)
}

// FromNative implements backends.Namespace. The result has no masked elements.
func (ns *Namespace) FromNative(x *ndarray.Array) backends.Array {
	return ns.join(ns.inner.FromNative(x), nil)
}

// Full implements backends.Namespace.
func (ns *Namespace) Full(shape shapes.Shape, value float64) backends.Array {
	return ns.join(ns.inner.Full(shape, value), nil)
}

// OrMasks returns the logical OR of the masks, broadcast together.
// It is how the masks of the operands of any elementwise operation are combined.
func OrMasks(masks ...*ndarray.Array) *ndarray.Array {
	if len(masks) == 0 {
		exceptions.Panicf("masked.OrMasks requires at least one mask")
	}
	return ndarray.Map(dtypes.Bool, func(values ...float64) float64 {
		for _, v := range values {
			if v != 0 {
				return 1
			}
		}
		return 0
	}, masks...)
}

// Unary implements backends.Namespace.
func (ns *Namespace) Unary(op backends.OpType, x backends.Array) backends.Array {
	mx := ns.cast(x)
	return ns.join(ns.inner.Unary(op, mx.data), mx.mask)
}

// Binary implements backends.Namespace.
func (ns *Namespace) Binary(op backends.OpType, x, y backends.Array) backends.Array {
	mx, my := ns.cast(x), ns.cast(y)
	return ns.join(ns.inner.Binary(op, mx.data, my.data), OrMasks(mx.mask, my.mask))
}

// Where implements backends.Namespace.
func (ns *Namespace) Where(cond, onTrue, onFalse backends.Array) backends.Array {
	mc, mt, mf := ns.cast(cond), ns.cast(onTrue), ns.cast(onFalse)
	return ns.join(ns.inner.Where(mc.data, mt.data, mf.data), OrMasks(mc.mask, mt.mask, mf.mask))
}

// Any implements backends.Namespace: it returns whether any element that is not masked is true.
func (ns *Namespace) Any(x backends.Array) bool {
	mx := ns.cast(x)
	data := ns.inner.ToNative(mx.data)
	for ii, v := range data.Flat() {
		if v != 0 && mx.mask.Flat()[ii] == 0 {
			return true
		}
	}
	return false
}
