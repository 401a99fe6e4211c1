// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package elementwise

import (
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/special/backends"
	"k8s.io/klog/v2"
)

// Options for FindRoot. Use DefaultOptions to get the defaults for a dtype.
//
// An element converges when |f(x)| <= FAtol + FRtol * min(|f(lower)|, |f(upper)|), or when the bracket is
// narrower than |x| * XRtol + XAtol.
type Options struct {
	XAtol, XRtol float64
	FAtol, FRtol float64
	MaxIter      int
}

// DefaultMaxIter is the default maximum number of iterations of FindRoot.
const DefaultMaxIter = 100

// DefaultOptions returns the default tolerances for the given floating dtype: the absolute tolerances are
// based on the smallest normal number, and the relative tolerance of x on the machine epsilon.
func DefaultOptions(dtype dtypes.DType) *Options {
	eps, tiny := machine(dtype)
	return &Options{
		XAtol:   4 * tiny,
		XRtol:   4 * eps,
		FAtol:   tiny,
		FRtol:   0,
		MaxIter: DefaultMaxIter,
	}
}

// Result of FindRoot. All arrays have the broadcast shape of the problem.
type Result struct {
	// X is the root found, or the best estimate if the iteration limit was reached.
	// It is NaN for elements with StatusSignError or StatusValueError.
	X backends.Array

	// F is the function value at X.
	F backends.Array

	// Bracket holds the ends of the final bracket, in no particular order.
	Bracket [2]backends.Array

	// Status of each element, as Float64 codes. See Statuses.
	Status backends.Array

	// NumIter is the number of iterations executed, NumEval the number of function evaluations (each one
	// over the whole array).
	NumIter, NumEval int

	ns backends.Namespace
}

// Statuses returns the status of each element in row-major order.
func (r *Result) Statuses() []Status { return statusesOf(r.ns, r.Status) }

// FindRoot finds a root of f in the bracket [lower, upper] of each element, using Chandrupatla's algorithm:
// an inverse quadratic interpolation safeguarded by bisection.
//
// f must change sign on the bracket, otherwise the element fails with StatusSignError. Abscissae and
// function values of the elements that terminated are frozen, but f is still evaluated on the whole array
// at each iteration.
//
// If opts is nil, DefaultOptions for the dtype of the bracket are used.
func FindRoot(ns backends.Namespace, f Func, lower, upper backends.Array, opts *Options) *Result {
	dtype := backends.PromotedDType(lower, upper)
	if opts == nil {
		opts = DefaultOptions(dtype)
	}
	x1, x2 := lower, upper
	f1, f2 := f(x1), f(x2)
	o := newOps(ns, dtype, broadcastDims(x1, x2, f1, f2))
	x1, x2, f1, f2 = o.broadcast(x1), o.broadcast(x2), o.broadcast(f1), o.broadcast(f2)
	x3, f3 := x2, f2
	numEval := 2

	fatol := o.c(opts.FAtol)
	if opts.FRtol != 0 {
		fatol = backends.Add(ns, fatol,
			backends.MulScalar(ns, backends.Min(ns, backends.Abs(ns, f1), backends.Abs(ns, f2)), opts.FRtol))
	}
	status := o.full(dtypes.Float64, float64(StatusInProgress))
	active := o.all
	xmin, fmin := o.full(dtype, nan), o.full(dtype, nan)
	var tol, dx backends.Array

	// checkTermination updates the status, xmin and fmin of the active elements, and deactivates the ones
	// that terminated.
	checkTermination := func() {
		smaller := backends.LessThan(ns, backends.Abs(ns, f1), backends.Abs(ns, f2))
		xmin = o.update(active, ns.Where(smaller, x1, x2), xmin)
		fmin = o.update(active, ns.Where(smaller, f1, f2), fmin)

		// Function tolerance reached: converged, regardless of other conditions.
		stop := o.and(active, backends.LessOrEqual(ns, backends.Abs(ns, fmin), fatol))
		status = o.setStatus(status, stop, StatusConverged)
		active = o.and(active, o.not(stop))

		// Bracket no longer valid.
		stop = o.and(active, o.sameSign(f1, f2))
		status = o.setStatus(status, stop, StatusSignError)
		xmin = backends.SetWhere(ns, xmin, stop, nan)
		fmin = backends.SetWhere(ns, fmin, stop, nan)
		active = o.and(active, o.not(stop))

		// Non-finite abscissae or NaN function values.
		nonFinite := o.not(o.and(backends.IsFinite(ns, x1), backends.IsFinite(ns, x2)))
		fNaN := o.and(backends.IsNaN(ns, f1), backends.IsNaN(ns, f2))
		stop = o.and(active, o.or(nonFinite, fNaN))
		status = o.setStatus(status, stop, StatusValueError)
		xmin = backends.SetWhere(ns, xmin, stop, nan)
		fmin = backends.SetWhere(ns, fmin, stop, nan)
		active = o.and(active, o.not(stop))

		// Bracket narrower than the tolerance.
		dx = backends.Abs(ns, backends.Sub(ns, x2, x1))
		tol = backends.Add(ns, backends.MulScalar(ns, backends.Abs(ns, xmin), opts.XRtol), o.c(opts.XAtol))
		stop = o.and(active, backends.LessThan(ns, dx, tol))
		status = o.setStatus(status, stop, StatusConverged)
		active = o.and(active, o.not(stop))
	}

	checkTermination()
	t := o.full(dtype, 0.5)
	numIter := 0
	for ; numIter < opts.MaxIter && ns.Any(active); numIter++ {
		x := backends.Add(ns, x1, backends.Mul(ns, t, backends.Sub(ns, x2, x1)))
		fx := f(x)
		numEval++

		// Keep the bracket: x3 is the discarded point.
		same := o.sameSign(fx, f1)
		newX3, newF3 := ns.Where(same, x1, x2), ns.Where(same, f1, f2)
		newX2, newF2 := ns.Where(same, x2, x1), ns.Where(same, f2, f1)
		x3, f3 = o.update(active, newX3, x3), o.update(active, newF3, f3)
		x2, f2 = o.update(active, newX2, x2), o.update(active, newF2, f2)
		x1, f1 = o.update(active, x, x1), o.update(active, fx, f1)
		checkTermination()

		// Inverse quadratic interpolation, if it is expected to stay within the bracket, otherwise bisection.
		xi1 := backends.Div(ns, backends.Sub(ns, x1, x2), backends.Sub(ns, x3, x2))
		phi1 := backends.Div(ns, backends.Sub(ns, f1, f2), backends.Sub(ns, f3, f2))
		alpha := backends.Div(ns, backends.Sub(ns, x3, x1), backends.Sub(ns, x2, x1))
		useIQI := o.and(
			backends.LessThan(ns, backends.OneMinus(ns, backends.Sqrt(ns, backends.OneMinus(ns, xi1))), phi1),
			backends.LessThan(ns, phi1, backends.Sqrt(ns, xi1)))
		iqi := backends.Sub(ns,
			backends.Mul(ns,
				backends.Div(ns, f1, backends.Sub(ns, f1, f2)),
				backends.Div(ns, f3, backends.Sub(ns, f3, f2))),
			backends.Mul(ns,
				backends.Mul(ns, alpha, backends.Div(ns, f1, backends.Sub(ns, f3, f1))),
				backends.Div(ns, f2, backends.Sub(ns, f2, f3))))
		t = ns.Where(useIQI, iqi, o.c(0.5))

		// Keep t away from the ends of the bracket.
		tl := backends.Div(ns, backends.MulScalar(ns, tol, 0.5), dx)
		t = backends.Min(ns, backends.Max(ns, t, tl), backends.OneMinus(ns, tl))
	}
	status = o.setStatus(status, active, StatusIterationLimit)
	klog.V(3).Infof("elementwise.FindRoot: %d iterations, %d function evaluations", numIter, numEval)
	return &Result{
		X: xmin, F: fmin,
		Bracket: [2]backends.Array{x1, x2},
		Status:  status,
		NumIter: numIter, NumEval: numEval,
		ns: ns,
	}
}
