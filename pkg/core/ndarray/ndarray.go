// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package ndarray implements the native array type: a dense, row-major, in-memory array.
//
// Values are always stored as float64, and rounded on construction to the precision of the
// array's dtype (Float64, Float32, Float16 or BFloat16). Boolean arrays (dtype Bool) store 0 or 1.
// Arrays are immutable once created: every operation returns a new array.
//
// The native array is what the native special function kernels operate on, and it is the common
// "exchange format" every other back end can convert to and from.
package ndarray

import (
	"fmt"
	"math"
	"reflect"
	"slices"
	"strings"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/gopjrt/dtypes/bfloat16"
	"github.com/gomlx/special/pkg/core/shapes"
	"github.com/x448/float16"
	"golang.org/x/exp/constraints"
)

// Array is a dense row-major array of the native back end.
type Array struct {
	shape shapes.Shape
	flat  []float64
}

// New creates an array with the given shape, taking ownership of flat.
//
// The values in flat are rounded in place to the precision of shape.DType.
// It panics if len(flat) doesn't match the shape size.
func New(shape shapes.Shape, flat []float64) *Array {
	if !shape.Ok() {
		exceptions.Panicf("ndarray.New: invalid shape %s", shape)
	}
	if len(flat) != shape.Size() {
		exceptions.Panicf("ndarray.New: shape %s requires %d values, got %d", shape, shape.Size(), len(flat))
	}
	if shape.DType != dtypes.Float64 {
		for ii, v := range flat {
			flat[ii] = RoundTo(shape.DType, v)
		}
	}
	return &Array{shape: shape, flat: flat}
}

// Full returns an array of the given shape filled with value.
func Full(shape shapes.Shape, value float64) *Array {
	flat := make([]float64, shape.Size())
	value = RoundTo(shape.DType, value)
	for ii := range flat {
		flat[ii] = value
	}
	return &Array{shape: shape, flat: flat}
}

// Scalar returns a Float64 scalar array.
func Scalar(value float64) *Array {
	return &Array{shape: shapes.Scalar(dtypes.Float64), flat: []float64{value}}
}

// ZerosLike returns an array with the same shape (and dtype) of x filled with zeros.
func ZerosLike(x *Array) *Array {
	return Full(x.shape, 0)
}

// FromFlat creates an array with the given dimensions from a flat slice of Go numbers.
// The dtype is derived from T: float32 becomes Float32, everything else Float64.
//
// If no dimensions are given, a 1D array with len(flat) elements is created.
func FromFlat[T constraints.Integer | constraints.Float](flat []T, dimensions ...int) *Array {
	if len(dimensions) == 0 {
		dimensions = []int{len(flat)}
	}
	dtype := dtypes.Float64
	var zero T
	if _, isFloat32 := any(zero).(float32); isFloat32 {
		dtype = dtypes.Float32
	}
	values := make([]float64, len(flat))
	for ii, v := range flat {
		values[ii] = float64(v)
	}
	return New(shapes.Make(dtype, dimensions...), values)
}

// FromBools creates a Bool array with the given dimensions. If no dimensions are given,
// a 1D array is created.
func FromBools(flat []bool, dimensions ...int) *Array {
	if len(dimensions) == 0 {
		dimensions = []int{len(flat)}
	}
	values := make([]float64, len(flat))
	for ii, v := range flat {
		if v {
			values[ii] = 1
		}
	}
	return New(shapes.Make(dtypes.Bool, dimensions...), values)
}

// RoundTo rounds v to the precision of the given dtype. Bool maps anything non-zero (including NaN) to 1.
func RoundTo(dtype dtypes.DType, v float64) float64 {
	switch dtype {
	case dtypes.Float64:
		return v
	case dtypes.Float32:
		return float64(float32(v))
	case dtypes.Float16:
		return float64(float16.Fromfloat32(float32(v)).Float32())
	case dtypes.BFloat16:
		return float64(bfloat16.FromFloat32(float32(v)).Float32())
	case dtypes.Bool:
		if v != 0 {
			return 1
		}
		return 0
	default:
		exceptions.Panicf("ndarray: dtype %s not supported, only floats and Bool are", dtype)
	}
	return 0
}

var (
	float16Type  = reflect.TypeOf(float16.Float16(0))
	bfloat16Type = reflect.TypeOf(bfloat16.BFloat16(0))
)

// FromAny converts a Go value to a native array. It accepts an *Array (returned as is), Go scalars
// (bool, any integer or float type, float16.Float16 and bfloat16.BFloat16) and arbitrarily nested
// slices of those. Nested slices must be rectangular.
//
// The dtype is taken from the Go type: float32, float16.Float16 and bfloat16.BFloat16 keep their precision,
// bool becomes Bool and everything else becomes Float64.
//
// It panics for values it can't convert.
func FromAny(value any) *Array {
	if x, ok := value.(*Array); ok {
		return x
	}
	v := reflect.ValueOf(value)
	if !v.IsValid() {
		exceptions.Panicf("ndarray.FromAny: cannot convert nil to an array")
	}
	var dims []int
	elemType := v.Type()
	for probe := v; elemType.Kind() == reflect.Slice || elemType.Kind() == reflect.Array; {
		dims = append(dims, probe.Len())
		elemType = elemType.Elem()
		if probe.Len() > 0 {
			probe = probe.Index(0)
		} else {
			probe = reflect.Zero(elemType)
		}
	}
	dtype := dtypeForGoType(elemType)
	flat := make([]float64, 0, shapes.Make(dtype, dims...).Size())
	flat = appendFlat(flat, v, dims, 0)
	return New(shapes.Make(dtype, dims...), flat)
}

func dtypeForGoType(t reflect.Type) dtypes.DType {
	switch {
	case t == float16Type:
		return dtypes.Float16
	case t == bfloat16Type:
		return dtypes.BFloat16
	}
	switch t.Kind() {
	case reflect.Bool:
		return dtypes.Bool
	case reflect.Float32:
		return dtypes.Float32
	case reflect.Float64,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return dtypes.Float64
	default:
		exceptions.Panicf("ndarray.FromAny: cannot convert values of type %s to an array", t)
	}
	return dtypes.InvalidDType
}

func appendFlat(flat []float64, v reflect.Value, dims []int, axis int) []float64 {
	if axis == len(dims) {
		return append(flat, scalarFromValue(v))
	}
	if v.Len() != dims[axis] {
		exceptions.Panicf("ndarray.FromAny: irregular nested slices, axis %d has lengths %d and %d", axis, dims[axis], v.Len())
	}
	for ii := range v.Len() {
		flat = appendFlat(flat, v.Index(ii), dims, axis+1)
	}
	return flat
}

func scalarFromValue(v reflect.Value) float64 {
	switch {
	case v.Type() == float16Type:
		return float64(v.Interface().(float16.Float16).Float32())
	case v.Type() == bfloat16Type:
		return float64(v.Interface().(bfloat16.BFloat16).Float32())
	}
	switch v.Kind() {
	case reflect.Bool:
		if v.Bool() {
			return 1
		}
		return 0
	case reflect.Float32, reflect.Float64:
		return v.Float()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint())
	default:
		exceptions.Panicf("ndarray.FromAny: unsupported value of type %s", v.Type())
	}
	return 0
}

// Shape returns the shape of the array.
func (x *Array) Shape() shapes.Shape { return x.shape }

// DType returns the dtype of the array.
func (x *Array) DType() dtypes.DType { return x.shape.DType }

// Size returns the number of elements.
func (x *Array) Size() int { return len(x.flat) }

// Flat returns the underlying flat values in row-major order. It must not be modified.
func (x *Array) Flat() []float64 { return x.flat }

// Float64s returns a copy of the flat values.
func (x *Array) Float64s() []float64 { return slices.Clone(x.flat) }

// Bools returns the flat values as booleans (non-zero is true).
func (x *Array) Bools() []bool {
	bools := make([]bool, len(x.flat))
	for ii, v := range x.flat {
		bools[ii] = v != 0
	}
	return bools
}

// Item returns the value at the given indices. With no indices it expects a single element array.
func (x *Array) Item(indices ...int) float64 {
	if len(indices) == 0 {
		if len(x.flat) != 1 {
			exceptions.Panicf("Array.Item() with no indices requires an array with one element, got shape %s", x.shape)
		}
		return x.flat[0]
	}
	if len(indices) != x.shape.Rank() {
		exceptions.Panicf("Array.Item(%v): array has rank %d", indices, x.shape.Rank())
	}
	flatIdx := 0
	for axis, stride := range x.shape.Strides() {
		if indices[axis] < 0 || indices[axis] >= x.shape.Dimensions[axis] {
			exceptions.Panicf("Array.Item(%v): index out of bounds for shape %s", indices, x.shape)
		}
		flatIdx += indices[axis] * stride
	}
	return x.flat[flatIdx]
}

// Value returns the array as a Go value: a float64 (or bool) for scalars, and nested slices of
// float64 (or bool) for higher ranks.
func (x *Array) Value() any {
	elemType := reflect.TypeOf(float64(0))
	if x.DType() == dtypes.Bool {
		elemType = reflect.TypeOf(false)
	}
	sliceType := elemType
	for range x.shape.Rank() {
		sliceType = reflect.SliceOf(sliceType)
	}
	pos := 0
	return x.buildValue(sliceType, 0, &pos).Interface()
}

func (x *Array) buildValue(t reflect.Type, axis int, pos *int) reflect.Value {
	if axis == x.shape.Rank() {
		v := x.flat[*pos]
		*pos++
		if t.Kind() == reflect.Bool {
			return reflect.ValueOf(v != 0)
		}
		return reflect.ValueOf(v)
	}
	dim := x.shape.Dimensions[axis]
	slice := reflect.MakeSlice(t, dim, dim)
	for ii := range dim {
		slice.Index(ii).Set(x.buildValue(t.Elem(), axis+1, pos))
	}
	return slice
}

// String pretty-prints the array, with its shape.
func (x *Array) String() string {
	var sb strings.Builder
	sb.WriteString(x.shape.String())
	sb.WriteString(": ")
	if x.shape.Rank() == 0 {
		sb.WriteString(formatValue(x.DType(), x.flat[0]))
		return sb.String()
	}
	parts := make([]string, len(x.flat))
	for ii, v := range x.flat {
		parts[ii] = formatValue(x.DType(), v)
	}
	fmt.Fprintf(&sb, "[%s]", strings.Join(parts, " "))
	return sb.String()
}

func formatValue(dtype dtypes.DType, v float64) string {
	if dtype == dtypes.Bool {
		return fmt.Sprint(v != 0)
	}
	if math.IsNaN(v) {
		return "NaN"
	}
	return fmt.Sprintf("%g", v)
}
