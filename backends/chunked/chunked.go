// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package chunked implements a back end of lazily evaluated arrays split in chunks (blocks) along the
// first axis. Each chunk is an array of an inner back end.
//
// Operations build a graph of lazy chunks: nothing is computed until the values are needed (ToNative,
// Any or Compute), at which point the chunks are computed in parallel. Each chunk is computed at most
// once.
//
// Only elementwise operations are supported, through MapBlocks: they are computed chunk by chunk, and the
// result doesn't depend on the chunking.
package chunked

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/special/backends"
	"github.com/gomlx/special/internal/workerspool"
	"github.com/gomlx/special/pkg/core/ndarray"
	"github.com/gomlx/special/pkg/core/shapes"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// BackendName to be used in SPECIAL_BACKEND to specify this back end.
const BackendName = "chunked"

// DefaultChunkSize is the chunk size used when none is configured.
const DefaultChunkSize = 1024

// Registers the "chunked" back end. Its configuration is "<chunk_size>:<inner_config>", both optional:
// e.g. "chunked:16:generic:erf" uses chunks of 16 rows of a generic back end.
func init() {
	backends.Register(BackendName, func(config string) backends.Namespace {
		sizeConfig, innerConfig, _ := strings.Cut(config, ":")
		chunkSize := DefaultChunkSize
		if sizeConfig != "" {
			var err error
			chunkSize, err = strconv.Atoi(sizeConfig)
			if err != nil {
				panic(errors.Wrapf(err, "invalid chunk size in %q back end configuration %q", BackendName, config))
			}
		}
		return New(backends.NewWithConfig(innerConfig), chunkSize)
	})
}

// pool of workers used by Compute.
var pool = workerspool.New()

// SetMaxParallelism sets the maximum number of chunks computed in parallel. The default is the number of
// CPUs. If set to 0 chunks are computed sequentially, and if set to -1 parallelism is unlimited.
func SetMaxParallelism(maxParallelism int) {
	pool.SetMaxParallelism(maxParallelism)
}

// Namespace implements backends.ChunkedNamespace.
type Namespace struct {
	inner     backends.Namespace
	chunkSize int
}

// Compile-time check that chunked.Namespace implements backends.ChunkedNamespace.
var _ backends.ChunkedNamespace = &Namespace{}

// New returns a chunked back end over the inner one, with chunks of chunkSize elements along the first axis.
func New(inner backends.Namespace, chunkSize int) *Namespace {
	if inner == nil {
		exceptions.Panicf("chunked.New requires an inner back end")
	}
	if chunkSize <= 0 {
		exceptions.Panicf("chunked.New: chunk size must be positive, got %d", chunkSize)
	}
	klog.V(1).Infof("chunked back end over %q with chunks of size %d", inner.Name(), chunkSize)
	return &Namespace{inner: inner, chunkSize: chunkSize}
}

// Name implements backends.Namespace.
func (ns *Namespace) Name() string { return BackendName + "(" + ns.inner.Name() + ")" }

// Kind implements backends.Namespace.
func (ns *Namespace) Kind() backends.Kind { return backends.KindChunked }

// Special implements backends.Namespace: chunked arrays have no special functions of their own.
func (ns *Namespace) Special() backends.SpecialNamespace { return nil }

// Inner implements backends.ChunkedNamespace.
func (ns *Namespace) Inner() backends.Namespace { return ns.inner }

// ChunkSize returns the number of elements along the first axis in each chunk. The last chunk may be smaller.
func (ns *Namespace) ChunkSize() int { return ns.chunkSize }

// numChunks for an array of the given shape. Scalars and empty arrays have one chunk.
func (ns *Namespace) numChunks(shape shapes.Shape) int {
	if shape.Rank() == 0 || shape.Dimensions[0] == 0 {
		return 1
	}
	return (shape.Dimensions[0] + ns.chunkSize - 1) / ns.chunkSize
}

// chunkShape returns the shape of the chunk idx of an array of the given shape.
func (ns *Namespace) chunkShape(shape shapes.Shape, idx int) (chunk shapes.Shape, start, end int) {
	if shape.Rank() == 0 || shape.Dimensions[0] == 0 {
		return shape, 0, 0
	}
	start = idx * ns.chunkSize
	end = min(start+ns.chunkSize, shape.Dimensions[0])
	chunk = shape.Clone()
	chunk.Dimensions[0] = end - start
	return
}

// chunk is a lazily computed block of an array.
type chunk struct {
	once    sync.Once
	compute func() backends.Array
	value   backends.Array
	err     error
}

func newChunk(compute func() backends.Array) *chunk {
	return &chunk{compute: compute}
}

// evaluate computes the chunk, if not yet computed, capturing any panic as the chunk's error.
func (c *chunk) evaluate() {
	c.once.Do(func() {
		c.err = exceptions.TryCatch[error](func() {
			c.value = c.compute()
		})
		c.compute = nil
	})
}

// get returns the value of the chunk, computing it if needed. It panics with the error of the computation.
func (c *chunk) get() backends.Array {
	c.evaluate()
	if c.err != nil {
		panic(c.err)
	}
	return c.value
}

// Array is a lazy chunked array.
type Array struct {
	ns     *Namespace
	id     string
	shape  shapes.Shape
	chunks []*chunk

	wholeOnce sync.Once
	whole     backends.Array
	wholeErr  error
}

// Compile-time check that chunked.Array is an array that knows its namespace.
var _ backends.Namespacer = &Array{}

func (ns *Namespace) newArray(shape shapes.Shape, computeChunk func(idx int, chunkShape shapes.Shape, start, end int) backends.Array) *Array {
	x := &Array{ns: ns, id: uuid.NewString(), shape: shape}
	x.chunks = make([]*chunk, ns.numChunks(shape))
	for idx := range x.chunks {
		chunkShape, start, end := ns.chunkShape(shape, idx)
		x.chunks[idx] = newChunk(func() backends.Array {
			return computeChunk(idx, chunkShape, start, end)
		})
	}
	return x
}

// Shape implements backends.Array.
func (x *Array) Shape() shapes.Shape { return x.shape }

// Namespace implements backends.Namespacer.
func (x *Array) Namespace() backends.Namespace { return x.ns }

// ID returns the unique name of the lazy array.
func (x *Array) ID() string { return x.id }

// NumChunks returns the number of chunks in the array.
func (x *Array) NumChunks() int { return len(x.chunks) }

// Chunk returns the chunk idx, an array of the inner back end, computing it if needed.
func (x *Array) Chunk(idx int) backends.Array { return x.chunks[idx].get() }

// String implements fmt.Stringer. It forces the computation of the array.
func (x *Array) String() string {
	return fmt.Sprintf("chunked[%s]%s", x.id[:8], x.ns.ToNative(x))
}

// Compute computes all the chunks of x in parallel, and returns the first error found.
//
// Chunks already computed are not recomputed.
func (x *Array) Compute() error {
	klog.V(3).Infof("computing %s array %s with %d chunks", x.shape, x.id, len(x.chunks))
	pool.ForEach(len(x.chunks), func(idx int) {
		x.chunks[idx].evaluate()
	})
	for idx, c := range x.chunks {
		if c.err != nil {
			return errors.WithMessagef(c.err, "computing chunk %d of %d of chunked array %s", idx, len(x.chunks), x.id)
		}
	}
	return nil
}

// mustCompute is like Compute, but panics on errors.
func (x *Array) mustCompute() {
	if err := x.Compute(); err != nil {
		panic(err)
	}
}

// wholeArray returns the full array in the inner back end, concatenating the chunks.
// Chunks are computed sequentially, since it is called from within the computation of other chunks.
func (x *Array) wholeArray() backends.Array {
	x.wholeOnce.Do(func() {
		x.wholeErr = exceptions.TryCatch[error](func() {
			if len(x.chunks) == 1 {
				x.whole = x.chunks[0].get()
				return
			}
			inner := x.ns.inner
			parts := make([]*ndarray.Array, len(x.chunks))
			for idx, c := range x.chunks {
				parts[idx] = inner.ToNative(c.get())
			}
			x.whole = inner.FromNative(ndarray.ConcatenateAxis0(parts...))
		})
	})
	if x.wholeErr != nil {
		panic(x.wholeErr)
	}
	return x.whole
}

// cast converts any array to a chunked array of this namespace. Arrays of other namespaces are converted
// through native arrays.
func (ns *Namespace) cast(x backends.Array) *Array {
	if cx, ok := x.(*Array); ok && cx.ns == ns {
		return cx
	}
	return ns.FromNative(backends.ToNativeAny(x)).(*Array)
}

// Asarray implements backends.Namespace.
func (ns *Namespace) Asarray(value any) backends.Array {
	if x, ok := value.(backends.Array); ok {
		return ns.cast(x)
	}
	return ns.FromNative(ndarray.FromAny(value))
}

// ToNative implements backends.Namespace. It computes all chunks.
func (ns *Namespace) ToNative(x backends.Array) *ndarray.Array {
	cx := ns.cast(x)
	cx.mustCompute()
	if len(cx.chunks) == 1 {
		return ns.inner.ToNative(cx.chunks[0].get())
	}
	parts := make([]*ndarray.Array, len(cx.chunks))
	for idx, c := range cx.chunks {
		parts[idx] = ns.inner.ToNative(c.get())
	}
	return ndarray.ConcatenateAxis0(parts...)
}

// FromNative implements backends.Namespace. The chunks are converted to the inner back end lazily.
func (ns *Namespace) FromNative(x *ndarray.Array) backends.Array {
	return ns.newArray(x.Shape(), func(_ int, _ shapes.Shape, start, end int) backends.Array {
		if ns.numChunks(x.Shape()) == 1 {
			return ns.inner.FromNative(x)
		}
		return ns.inner.FromNative(ndarray.SliceAxis0(x, start, end))
	})
}

// Full implements backends.Namespace.
func (ns *Namespace) Full(shape shapes.Shape, value float64) backends.Array {
	return ns.newArray(shape, func(_ int, chunkShape shapes.Shape, _, _ int) backends.Array {
		return ns.inner.Full(chunkShape, value)
	})
}

// metaShape returns a shape with the same broadcasting behavior as shape, but with at most one element:
// every dimension other than 1 is set to 0.
func metaShape(shape shapes.Shape) shapes.Shape {
	meta := shape.Clone()
	for axis, dim := range meta.Dimensions {
		if dim != 1 {
			meta.Dimensions[axis] = 0
		}
	}
	return meta
}

// MapBlocks implements backends.ChunkedNamespace.
//
// The arguments are broadcast against each other: arguments with the full rank and first dimension of the
// result are split in aligned chunks, the other ones (lower rank or a first dimension of 1 being broadcast)
// are given whole to each block.
//
// The dtype of the result is found by applying fn on (at most) one-element arrays with the arguments'
// dtypes. The blocks themselves are only computed when needed.
func (ns *Namespace) MapBlocks(fn backends.Func, args ...backends.Array) backends.Array {
	if len(args) == 0 {
		exceptions.Panicf("chunked.MapBlocks requires at least one argument")
	}
	cargs := make([]*Array, len(args))
	argShapes := make([]shapes.Shape, len(args))
	metaArgs := make([]backends.Array, len(args))
	for ii, arg := range args {
		cargs[ii] = ns.cast(arg)
		argShapes[ii] = cargs[ii].shape
		metaArgs[ii] = ns.inner.Full(metaShape(argShapes[ii]), 0)
	}
	dims, err := shapes.BroadcastDimensions(argShapes...)
	if err != nil {
		panic(errors.WithMessage(err, "chunked.MapBlocks"))
	}
	dtype := fn(metaArgs...).Shape().DType
	outputShape := shapes.Make(dtype, dims...)
	rank := len(dims)

	// Whether each argument is split in aligned chunks.
	aligned := make([]bool, len(args))
	for ii, shape := range argShapes {
		aligned[ii] = rank > 0 && shape.Rank() == rank && shape.Dimensions[0] == dims[0]
	}
	return ns.newArray(outputShape, func(idx int, _ shapes.Shape, _, _ int) backends.Array {
		blocks := make([]backends.Array, len(cargs))
		for ii, carg := range cargs {
			if aligned[ii] {
				blocks[ii] = carg.chunks[idx].get()
			} else {
				blocks[ii] = carg.wholeArray()
			}
		}
		return fn(blocks...)
	})
}

// Unary implements backends.Namespace.
func (ns *Namespace) Unary(op backends.OpType, x backends.Array) backends.Array {
	return ns.MapBlocks(func(blocks ...backends.Array) backends.Array {
		return ns.inner.Unary(op, blocks[0])
	}, x)
}

// Binary implements backends.Namespace.
func (ns *Namespace) Binary(op backends.OpType, x, y backends.Array) backends.Array {
	return ns.MapBlocks(func(blocks ...backends.Array) backends.Array {
		return ns.inner.Binary(op, blocks[0], blocks[1])
	}, x, y)
}

// Where implements backends.Namespace.
func (ns *Namespace) Where(cond, onTrue, onFalse backends.Array) backends.Array {
	return ns.MapBlocks(func(blocks ...backends.Array) backends.Array {
		return ns.inner.Where(blocks[0], blocks[1], blocks[2])
	}, cond, onTrue, onFalse)
}

// Any implements backends.Namespace. It computes all chunks.
func (ns *Namespace) Any(x backends.Array) bool {
	cx := ns.cast(x)
	cx.mustCompute()
	for _, c := range cx.chunks {
		if ns.inner.Any(c.get()) {
			return true
		}
	}
	return false
}
