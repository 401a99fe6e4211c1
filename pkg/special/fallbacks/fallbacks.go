// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package fallbacks implements special functions generically, with the elementwise operations of any
// back end, possibly on top of more primitive special functions the back end provides natively.
//
// Each fallback is built by a Factory for a given back end. A factory returns nil when the fallback is not
// applicable: typically because the back end lacks the native primitive it requires (gammainc, gammaincc
// or betainc). In that case it is better to convert the arrays to native ones than to mix a native
// primitive of one back end with a generic computation over another.
//
// Out-of-domain inputs never panic: they produce NaN or the documented boundary value.
package fallbacks

import (
	"slices"
	"sync/atomic"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/special/backends"
	"github.com/gomlx/special/pkg/optimize/elementwise"
)

// Resolver returns the implementation of the named special function for the same back end the factory
// was called for. It is how one fallback uses another one (stdtrit uses stdtr).
type Resolver func(name string) backends.Func

// Factory builds the fallback for the back end ns. spx is an additional namespace of native special
// functions for the back end, searched before ns.Special(): it may be nil.
//
// resolve is used to find other special functions on the same back end. It may be nil, in which case the
// fallbacks in this package are used directly.
//
// It returns nil if the fallback is not applicable to the back end.
type Factory func(ns backends.Namespace, spx backends.SpecialNamespace, resolve Resolver) backends.Func

// FactoryRegistry maps function names to their fallback factories. It is read-only.
type FactoryRegistry struct {
	factories map[string]Factory
	names     []string
}

// Get returns the factory for the named function, if there is one.
func (r *FactoryRegistry) Get(name string) (Factory, bool) {
	f, found := r.factories[name]
	return f, found
}

// Names returns the names of the functions with a fallback, in registration order.
func (r *FactoryRegistry) Names() []string {
	return slices.Clone(r.names)
}

// Len returns the number of registered fallbacks.
func (r *FactoryRegistry) Len() int { return len(r.names) }

// Registry of the generic fallbacks, built at initialization and immutable afterwards.
var Registry = newRegistry([]registryEntry{
	{"rel_entr", RelEntr},
	{"xlogy", Xlogy},
	{"chdtr", Chdtr},
	{"chdtrc", Chdtrc},
	{"betaincc", Betaincc},
	{"stdtr", Stdtr},
	{"stdtrit", Stdtrit},
})

type registryEntry struct {
	name    string
	factory Factory
}

func newRegistry(entries []registryEntry) *FactoryRegistry {
	r := &FactoryRegistry{factories: make(map[string]Factory, len(entries))}
	for _, entry := range entries {
		r.factories[entry.name] = entry.factory
		r.names = append(r.names, entry.name)
	}
	return r
}

// NativeFunc returns the native implementation of the named special function for the back end: first
// from spx, if not nil, then from ns.Special(). It returns nil if neither has it.
func NativeFunc(ns backends.Namespace, spx backends.SpecialNamespace, name string) backends.Func {
	if spx != nil {
		if f, found := spx.Func(name); found {
			return f
		}
	}
	if nsSpecial := ns.Special(); nsSpecial != nil {
		if f, found := nsSpecial.Func(name); found {
			return f
		}
	}
	return nil
}

// checkArity panics if the number of arguments given to the fallback is wrong.
func checkArity(name string, arity int, args []backends.Array) {
	if len(args) != arity {
		exceptions.Panicf("special function %q takes %d arguments, %d given", name, arity, len(args))
	}
}

// rootOptions used by stdtrit. nil means the defaults for the dtype of the problem.
var rootOptions atomic.Pointer[elementwise.Options]

// SetRootOptions configures the root finder used by the stdtrit fallback: the accuracy of stdtrit is the
// tolerance of the root finder. If opts is nil, the defaults for the dtype of the arguments are used.
func SetRootOptions(opts *elementwise.Options) {
	if opts != nil {
		copied := *opts
		opts = &copied
	}
	rootOptions.Store(opts)
}
