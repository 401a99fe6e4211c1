// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package generic implements a portable array back end that only knows the elementwise array API.
//
// It plays the role of any "foreign" array library: its arrays are stored in column-major order
// (so conversion to and from the native arrays is not a trivial copy), it implements its own elementwise
// arithmetic, and it optionally exposes its own namespace of special functions, configured per instance.
//
// Its special functions reproduce the documented boundary behavior of some accelerator libraries for
// gammainc: P(0, x>0) is NaN instead of 1, and P(+Inf, +Inf) is 1 instead of NaN.
package generic

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/special/backends"
	"github.com/gomlx/special/pkg/core/ndarray"
	"github.com/gomlx/special/pkg/core/shapes"
	"github.com/gomlx/special/pkg/special/kernels"
	"k8s.io/klog/v2"
)

// BackendName to be used in SPECIAL_BACKEND to specify this back end.
const BackendName = "generic"

// Registers New() as the constructor for the "generic" back end.
func init() {
	backends.Register(BackendName, func(config string) backends.Namespace {
		return New(ParseConfig(config)...)
	})
}

// ParseConfig parses the configuration of the generic back end: a comma-separated list of the special
// functions it exposes natively, "all" for every one of them, or empty for none.
//
// It panics on unknown function names.
func ParseConfig(config string) []string {
	config = strings.TrimSpace(config)
	switch config {
	case "", "none":
		return nil
	case "all":
		return slices.Clone(kernels.Names)
	}
	var names []string
	for _, part := range strings.Split(config, ",") {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		if _, found := kernels.Get(name); !found {
			exceptions.Panicf("generic back end: unknown special function %q in configuration %q", name, config)
		}
		names = append(names, name)
	}
	return names
}

// Backend implements backends.Namespace.
type Backend struct {
	specialNames []string
	special      backends.SpecialFuncs
}

// Compile-time check that generic.Backend implements backends.Namespace.
var _ backends.Namespace = &Backend{}

// New constructs a new generic Backend that exposes the given special functions in its special namespace.
func New(specialNames ...string) *Backend {
	b := &Backend{}
	for _, name := range specialNames {
		if slices.Contains(b.specialNames, name) {
			continue
		}
		k, found := kernels.Get(name)
		if !found {
			exceptions.Panicf("generic back end: unknown special function %q", name)
		}
		if b.special == nil {
			b.special = make(backends.SpecialFuncs)
		}
		b.specialNames = append(b.specialNames, name)
		b.special[name] = b.specialFunc(k)
	}
	klog.V(1).Infof("generic back end created with special functions %v", b.specialNames)
	return b
}

// Name implements backends.Namespace.
func (b *Backend) Name() string { return BackendName }

// String returns the name and the configured special functions.
func (b *Backend) String() string {
	return fmt.Sprintf("%s:%s", BackendName, strings.Join(b.specialNames, ","))
}

// Kind implements backends.Namespace.
func (b *Backend) Kind() backends.Kind { return backends.KindGeneric }

// Special implements backends.Namespace. It returns nil if the back end was created without special functions.
func (b *Backend) Special() backends.SpecialNamespace {
	if len(b.special) == 0 {
		return nil
	}
	return b.special
}

// SpecialNames returns the names of the special functions exposed by the back end.
func (b *Backend) SpecialNames() []string { return slices.Clone(b.specialNames) }

// Array is an array of the generic back end. Its values are stored in column-major order.
type Array struct {
	backend *Backend
	shape   shapes.Shape
	flat    []float64
}

// Compile-time check that generic.Array is an array that knows its namespace.
var _ backends.Namespacer = &Array{}

// Shape implements backends.Array.
func (x *Array) Shape() shapes.Shape { return x.shape }

// Namespace implements backends.Namespacer.
func (x *Array) Namespace() backends.Namespace { return x.backend }

// ColumnMajor returns the underlying values, in column-major order. It must not be modified.
func (x *Array) ColumnMajor() []float64 { return x.flat }

// String implements fmt.Stringer.
func (x *Array) String() string {
	return fmt.Sprintf("generic%s", x.backend.ToNative(x))
}

func (b *Backend) newArray(shape shapes.Shape, flat []float64) *Array {
	return &Array{backend: b, shape: shape, flat: flat}
}

// cast converts any array to an *Array of this back end.
func (b *Backend) cast(x backends.Array) *Array {
	if gx, ok := x.(*Array); ok {
		if gx.backend != b {
			// Arrays of other generic back ends share the layout.
			return b.newArray(gx.shape, gx.flat)
		}
		return gx
	}
	return b.FromNative(backends.ToNativeAny(x)).(*Array)
}

// Asarray implements backends.Namespace.
func (b *Backend) Asarray(value any) backends.Array {
	if x, ok := value.(backends.Array); ok {
		return b.cast(x)
	}
	return b.FromNative(ndarray.FromAny(value))
}

// ToNative implements backends.Namespace: it transposes the values to row-major order.
func (b *Backend) ToNative(x backends.Array) *ndarray.Array {
	gx, ok := x.(*Array)
	if !ok {
		exceptions.Panicf("generic back end given an array of type %T", x)
	}
	shape := gx.shape
	rowMajor := make([]float64, len(gx.flat))
	colStrides := shape.ColumnMajorStrides()
	for rowIdx, indices := range shape.Iter() {
		rowMajor[rowIdx] = gx.flat[shape.BroadcastIndex(indices, colStrides)]
	}
	return ndarray.New(shape.Clone(), rowMajor)
}

// FromNative implements backends.Namespace.
func (b *Backend) FromNative(x *ndarray.Array) backends.Array {
	shape := x.Shape()
	colMajor := make([]float64, x.Size())
	colStrides := shape.ColumnMajorStrides()
	rowMajor := x.Flat()
	for rowIdx, indices := range shape.Iter() {
		colMajor[shape.BroadcastIndex(indices, colStrides)] = rowMajor[rowIdx]
	}
	return b.newArray(shape.Clone(), colMajor)
}

// Full implements backends.Namespace.
func (b *Backend) Full(shape shapes.Shape, value float64) backends.Array {
	flat := make([]float64, shape.Size())
	value = ndarray.RoundTo(shape.DType, value)
	for ii := range flat {
		flat[ii] = value
	}
	return b.newArray(shape.Clone(), flat)
}

// Any implements backends.Namespace.
func (b *Backend) Any(x backends.Array) bool {
	for _, v := range b.cast(x).flat {
		if v != 0 {
			return true
		}
	}
	return false
}
