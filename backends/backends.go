// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package backends defines the interface an array back end needs to implement so the special
// functions can operate on its arrays.
//
// A back end (a Namespace) owns its arrays: it creates them, converts them to and from the native
// array type (*ndarray.Array), and provides the small set of elementwise operations needed by the
// generic implementations of the special functions (arithmetic, comparisons, log/exp, where).
// Optionally it exposes its own namespace of special functions (see SpecialNamespace), and optional
// capabilities (see ApplyWherer, SetWherer, MaskedNamespace and ChunkedNamespace).
//
// Back ends are a closed set of variants, given by Kind: native, generic, masked and chunked.
//
// To simplify error handling, all functions are expected to throw (panic) with a stack trace in case of
// errors (incompatible shapes, unsupported dtypes, etc.). See package github.com/gomlx/exceptions.
// Mathematically out-of-domain values are never errors: they produce NaN or boundary values.
package backends

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/special/pkg/core/ndarray"
	"github.com/gomlx/special/pkg/core/shapes"
	"k8s.io/klog/v2"
)

// Array is an array of any back end. Its values are only accessible through the Namespace that owns it.
//
// The native array, *ndarray.Array, implements it.
type Array interface {
	Shape() shapes.Shape
}

// Namespacer is implemented by arrays that know the Namespace they belong to.
// Arrays that don't implement it are considered native.
type Namespacer interface {
	Array
	Namespace() Namespace
}

// Kind enumerates the closed set of back end variants.
type Kind int

const (
	// KindNative is the library's own array type, *ndarray.Array.
	KindNative Kind = iota

	// KindGeneric is any back end that implements the elementwise API, and optionally a namespace of
	// special functions, but has no special recombination rules.
	KindGeneric

	// KindMasked is a back end of arrays with a validity mask over the data of an inner back end.
	// Namespaces of this kind implement MaskedNamespace.
	KindMasked

	// KindChunked is a back end of lazily evaluated arrays split in chunks.
	// Namespaces of this kind implement ChunkedNamespace.
	KindChunked
)

var kindNames = []string{"native", "generic", "masked", "chunked"}

// String implements fmt.Stringer.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Func is a special function (or any elementwise function) on arrays of one back end.
type Func func(args ...Array) Array

// SpecialNamespace is a back end's own namespace of special functions.
type SpecialNamespace interface {
	// Func returns the special function with the given name (e.g. "gammainc"), if the namespace has it.
	Func(name string) (Func, bool)
}

// SpecialFuncs is a SpecialNamespace backed by a map.
type SpecialFuncs map[string]Func

// Func implements SpecialNamespace.
func (s SpecialFuncs) Func(name string) (Func, bool) {
	f, found := s[name]
	return f, found
}

// Namespace is the API that needs to be implemented by an array back end.
type Namespace interface {
	// Name returns the short name of the back end, e.g.: "native".
	Name() string

	// Kind returns which of the closed set of back end variants this is.
	Kind() Kind

	// Special returns the back end's own namespace of special functions, or nil if it has none.
	Special() SpecialNamespace

	// Asarray converts value to an array of this back end. Value can be an array of this back end (returned
	// as is), an array of another back end, a native array or Go values accepted by ndarray.FromAny.
	Asarray(value any) Array

	// ToNative converts an array of this back end to a native array. It must round-trip exactly with
	// FromNative, including NaN and infinities.
	ToNative(x Array) *ndarray.Array

	// FromNative converts a native array to an array of this back end.
	FromNative(x *ndarray.Array) Array

	// Full returns an array of the given shape filled with value.
	Full(shape shapes.Shape, value float64) Array

	// Unary applies a unary elementwise operation (see OpType.IsUnary).
	Unary(op OpType, x Array) Array

	// Binary applies a binary elementwise operation, broadcasting the operands.
	Binary(op OpType, x, y Array) Array

	// Where selects onTrue where cond is true, and onFalse elsewhere, broadcasting all three.
	Where(cond, onTrue, onFalse Array) Array

	// Any returns whether any element of x is true (non-zero). It forces the evaluation of lazy arrays.
	Any(x Array) bool
}

// Of returns the Namespace shared by the given arguments.
//
// Arguments that implement Namespacer report their own namespace, everything else (native arrays, Go
// numbers and slices) is native. The first non-native argument wins: arguments are expected to share one
// back end, apart from native values and Go scalars, which are converted with Namespace.Asarray.
func Of(args ...any) Namespace {
	for _, arg := range args {
		if nser, ok := arg.(Namespacer); ok {
			if ns := nser.Namespace(); ns != nil && ns.Kind() != KindNative {
				return ns
			}
		}
	}
	return Native
}

// ToNativeAny converts any value accepted by Namespace.Asarray to a native array: arrays of other back ends
// are converted by their own namespace.
func ToNativeAny(value any) *ndarray.Array {
	switch v := value.(type) {
	case *ndarray.Array:
		return v
	case Namespacer:
		return v.Namespace().ToNative(v)
	}
	return ndarray.FromAny(value)
}

// Constructor takes a config string (optionally empty) and returns a Namespace.
type Constructor func(config string) Namespace

var (
	registeredConstructors = make(map[string]Constructor)
	firstRegistered        string
)

// Register back end with the given name, and a default constructor that takes as input a configuration string
// that is passed along to the back end constructor.
//
// To be safe, call Register during initialization of a package.
func Register(name string, constructor Constructor) {
	if len(registeredConstructors) == 0 {
		firstRegistered = name
	}
	registeredConstructors[name] = constructor
	klog.V(1).Infof("registered array back end %q", name)
}

// List returns the names of the registered back ends, sorted.
func List() []string {
	names := make([]string, 0, len(registeredConstructors))
	for name := range registeredConstructors {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// DefaultConfig is the name of the default back end configuration to use if specified.
//
// See NewWithConfig for the format of the configuration string.
var DefaultConfig string

// SPECIAL_BACKEND is the environment variable with the default back end configuration to use.
//
// The format of config is "<backend_name>:<backend_configuration>".
// The "<backend_name>" is the name of a registered back end (e.g.: "generic") and
// "<backend_configuration>" is back end specific (e.g.: for generic, the special functions it exposes).
const SPECIAL_BACKEND = "SPECIAL_BACKEND"

// New returns a new default Namespace.
//
// The default is:
//
// 1. The environment SPECIAL_BACKEND is used as a configuration if defined.
// 2. Next the variable DefaultConfig is used as a configuration if defined.
// 3. The first registered back end (native) is used with an empty configuration.
func New() Namespace {
	config, found := os.LookupEnv(SPECIAL_BACKEND)
	if found {
		return NewWithConfig(config)
	}
	if DefaultConfig != "" {
		return NewWithConfig(DefaultConfig)
	}
	return NewWithConfig("")
}

// NewWithConfig takes a configuration string formatted as "<backend_name>:<backend_configuration>".
//
// The "<backend_name>" is the name of a registered back end (e.g.: "masked") and "<backend_configuration>"
// is back end specific (e.g.: for masked, it is the configuration of the inner back end).
// If there is no ":", the whole config is taken as the back end name.
func NewWithConfig(config string) Namespace {
	if len(registeredConstructors) == 0 {
		exceptions.Panicf("no registered array back ends")
	}
	backendName := config
	backendConfig := ""
	if idx := strings.Index(config, ":"); idx != -1 {
		backendName = config[:idx]
		backendConfig = config[idx+1:]
	}
	if backendName == "" {
		backendName = firstRegistered
	}
	constructor, found := registeredConstructors[backendName]
	if !found {
		exceptions.Panicf("can't find back end %q for configuration %q given, registered back ends: %v",
			backendName, config, List())
	}
	klog.V(1).Infof("creating back end %q with configuration %q", backendName, backendConfig)
	return constructor(backendConfig)
}
