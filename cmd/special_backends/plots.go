// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"math"

	"github.com/gomlx/special/backends"
	"github.com/gomlx/special/pkg/core/ndarray"
	"github.com/gomlx/special/pkg/special/kernels"
	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// plotSpec describes the curve to plot: the last argument of the function varies in [Min, Max], the
// leading ones are fixed.
type plotSpec struct {
	Function   string
	Fixed      []float64
	Min, Max   float64
	NumSamples int
}

// plotArgs returns the native arguments for the plot: the fixed ones as scalars, and the varying one.
func (spec plotSpec) plotArgs() ([]*ndarray.Array, []float64, error) {
	kernel, found := kernels.Get(spec.Function)
	if !found {
		return nil, nil, errors.Errorf("unknown special function %q", spec.Function)
	}
	if len(spec.Fixed) != kernel.Arity-1 {
		return nil, nil, errors.Errorf("special function %q takes %d arguments: %d fixed arguments required, %d given",
			spec.Function, kernel.Arity, kernel.Arity-1, len(spec.Fixed))
	}
	if spec.NumSamples < 2 || !(spec.Max > spec.Min) {
		return nil, nil, errors.Errorf("invalid plot range [%g, %g] with %d samples", spec.Min, spec.Max, spec.NumSamples)
	}
	xs := make([]float64, spec.NumSamples)
	for ii := range xs {
		xs[ii] = spec.Min + (spec.Max-spec.Min)*float64(ii)/float64(spec.NumSamples-1)
	}
	args := make([]*ndarray.Array, 0, kernel.Arity)
	for _, v := range spec.Fixed {
		args = append(args, ndarray.Scalar(v))
	}
	args = append(args, ndarray.FromFlat(xs))
	return args, xs, nil
}

// plotBackends plots the function evaluated on each back end, one line per back end, and saves it as an
// image to filePath (the format is taken from the extension).
func plotBackends(spec plotSpec, namespaces []backends.Namespace, filePath string) error {
	args, xs, err := spec.plotArgs()
	if err != nil {
		return err
	}
	p := plot.New()
	p.Title.Text = spec.Function
	p.X.Label.Text = "x"
	p.X.Min = spec.Min
	p.X.Max = spec.Max
	p.Y.Label.Text = spec.Function + "(x)"
	p.Add(plotter.NewGrid())

	for nsIdx, ns := range namespaces {
		ys, _, err := evaluate(spec.Function, ns, args)
		if err != nil {
			return err
		}
		// Non-finite values can't be plotted: the line is split where they are.
		var segment plotter.XYs
		var lines []plotter.XYs
		for ii, y := range ys.Flat() {
			if math.IsNaN(y) || math.IsInf(y, 0) {
				if len(segment) > 0 {
					lines = append(lines, segment)
					segment = nil
				}
				continue
			}
			segment = append(segment, plotter.XY{X: xs[ii], Y: y})
		}
		if len(segment) > 0 {
			lines = append(lines, segment)
		}
		for lineIdx, xys := range lines {
			line, err := plotter.NewLine(xys)
			if err != nil {
				return errors.Wrapf(err, "plotting %q for back end %q", spec.Function, ns.Name())
			}
			line.Color = plotutil.Color(nsIdx)
			line.Dashes = plotutil.Dashes(nsIdx)
			p.Add(line)
			if lineIdx == 0 {
				p.Legend.Add(ns.Name(), line)
			}
		}
	}
	if err := p.Save(12*vg.Inch, 6*vg.Inch, filePath); err != nil {
		return errors.Wrapf(err, "saving plot of %q to %q", spec.Function, filePath)
	}
	return nil
}
