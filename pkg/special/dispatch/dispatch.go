// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package dispatch selects, for a special function and an array back end, the implementation to use.
//
// The order of preference is:
//
//  1. The native kernel, for native arrays.
//  2. The back end's own special function (its Special namespace), used as is.
//  3. A generic fallback (package fallbacks), if one is registered and applicable to the back end.
//  4. A synthesized implementation:
//     - masked back ends: the function is resolved for the inner back end and applied to the data, and the
//     masks of the arguments are combined with a logical OR;
//     - chunked back ends: the function is resolved for the inner back end and mapped over the blocks;
//     - any other back end: the arguments are converted to native arrays, the native kernel is called and
//     the result is converted back.
//
// A function is thus always available, for any back end.
package dispatch

import (
	"fmt"
	"sync"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/special/backends"
	"github.com/gomlx/special/backends/masked"
	"github.com/gomlx/special/pkg/core/ndarray"
	"github.com/gomlx/special/pkg/special/fallbacks"
	"github.com/gomlx/special/pkg/special/kernels"
	"k8s.io/klog/v2"
)

// Path taken to implement a special function for a back end.
type Path int

const (
	// PathNative uses the native kernel directly.
	PathNative Path = iota

	// PathSpecial uses the back end's own special function.
	PathSpecial

	// PathFallback uses a generic fallback.
	PathFallback

	// PathMasked applies the function to the data of masked arrays, combining their masks.
	PathMasked

	// PathChunked maps the function over the blocks of chunked arrays.
	PathChunked

	// PathConvert converts the arrays to native ones and uses the native kernel.
	PathConvert
)

var pathNames = []string{"native", "special", "fallback", "masked", "chunked", "convert"}

// String implements fmt.Stringer.
func (p Path) String() string {
	if p < 0 || int(p) >= len(pathNames) {
		return fmt.Sprintf("Path(%d)", int(p))
	}
	return pathNames[p]
}

// Resolution of a special function for a back end.
type Resolution struct {
	// Func implements the function for arrays of the back end.
	Func backends.Func

	// Path taken.
	Path Path
}

// Dispatcher resolves special functions for back ends. It is safe for concurrent use.
//
// Resolutions are memoized per (function name, back end): the back end namespaces must be comparable
// (all the namespaces in this module are).
type Dispatcher struct {
	registry *fallbacks.FactoryRegistry
	memo     sync.Map
}

type memoKey struct {
	name string
	ns   backends.Namespace
}

// New creates a Dispatcher using the given registry of fallbacks. If registry is nil, fallbacks are
// not used.
func New(registry *fallbacks.FactoryRegistry) *Dispatcher {
	return &Dispatcher{registry: registry}
}

// Default dispatcher, with the generic fallbacks of fallbacks.Registry.
var Default = New(fallbacks.Registry)

// Resolve returns the implementation of the named special function for arrays of the back end ns.
// The arguments given to the returned function must be arrays of ns.
//
// It panics if name is not a known special function.
func (d *Dispatcher) Resolve(name string, ns backends.Namespace) backends.Func {
	return d.Lookup(name, ns).Func
}

// Lookup is like Resolve, but also returns the path taken.
func (d *Dispatcher) Lookup(name string, ns backends.Namespace) Resolution {
	key := memoKey{name: name, ns: ns}
	if r, found := d.memo.Load(key); found {
		return r.(Resolution)
	}
	r := d.resolve(name, ns)
	klog.V(2).Infof("special function %q for back end %q: %s", name, ns.Name(), r.Path)
	actual, _ := d.memo.LoadOrStore(key, r)
	return actual.(Resolution)
}

func (d *Dispatcher) resolve(name string, ns backends.Namespace) Resolution {
	kernel, found := kernels.Get(name)
	if !found {
		exceptions.Panicf("unknown special function %q", name)
	}
	if ns.Kind() == backends.KindNative {
		return Resolution{checkArity(kernel, backends.NativeKernel(kernel)), PathNative}
	}
	if spx := ns.Special(); spx != nil {
		if f, found := spx.Func(name); found {
			return Resolution{checkArity(kernel, f), PathSpecial}
		}
	}
	if d.registry != nil {
		if factory, found := d.registry.Get(name); found {
			resolver := func(other string) backends.Func { return d.Resolve(other, ns) }
			if f := factory(ns, nil, resolver); f != nil {
				return Resolution{checkArity(kernel, f), PathFallback}
			}
		}
	}

	switch ns.Kind() {
	case backends.KindMasked:
		mns, ok := ns.(backends.MaskedNamespace)
		if !ok {
			exceptions.Panicf("back end %q of kind %s doesn't implement backends.MaskedNamespace", ns.Name(), ns.Kind())
		}
		return Resolution{checkArity(kernel, d.maskedFunc(name, mns)), PathMasked}

	case backends.KindChunked:
		cns, ok := ns.(backends.ChunkedNamespace)
		if !ok {
			exceptions.Panicf("back end %q of kind %s doesn't implement backends.ChunkedNamespace", ns.Name(), ns.Kind())
		}
		return Resolution{checkArity(kernel, d.chunkedFunc(name, cns)), PathChunked}
	}
	return Resolution{convertFunc(kernel, ns), PathConvert}
}

// maskedFunc applies the function resolved for the inner back end to the data, and combines the masks.
// Nested masked back ends are handled by the recursive resolution.
func (d *Dispatcher) maskedFunc(name string, mns backends.MaskedNamespace) backends.Func {
	inner := d.Resolve(name, mns.Inner())
	return func(args ...backends.Array) backends.Array {
		data := make([]backends.Array, len(args))
		masks := make([]*ndarray.Array, len(args))
		for ii, arg := range args {
			data[ii], masks[ii] = mns.Split(arg)
		}
		return mns.Join(inner(data...), masked.OrMasks(masks...))
	}
}

// chunkedFunc maps the function resolved for the inner back end over the blocks.
// This is only correct because all special functions are elementwise.
func (d *Dispatcher) chunkedFunc(name string, cns backends.ChunkedNamespace) backends.Func {
	inner := d.Resolve(name, cns.Inner())
	return func(args ...backends.Array) backends.Array {
		return cns.MapBlocks(inner, args...)
	}
}

// convertFunc converts the arguments to native arrays, calls the kernel and converts the result back.
func convertFunc(kernel kernels.Kernel, ns backends.Namespace) backends.Func {
	return func(args ...backends.Array) backends.Array {
		nativeArgs := make([]*ndarray.Array, len(args))
		for ii, arg := range args {
			nativeArgs[ii] = ns.ToNative(arg)
		}
		return ns.FromNative(kernel.Call(nativeArgs...))
	}
}

// checkArity wraps f to panic with a clear message if called with the wrong number of arguments.
func checkArity(kernel kernels.Kernel, f backends.Func) backends.Func {
	return func(args ...backends.Array) backends.Array {
		if len(args) != kernel.Arity {
			exceptions.Panicf("special function %q takes %d arguments, %d given", kernel.Name, kernel.Arity, len(args))
		}
		return f(args...)
	}
}
