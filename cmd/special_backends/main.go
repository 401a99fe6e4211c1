// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// special_backends evaluates the special functions on several array back ends and reports where they
// disagree with the native kernels.
//
// Usage:
//
//	special_backends [-backends="generic;masked:generic:betainc"] [-funcs=erf,stdtrit] [-n=8]
//	special_backends -plot=stdtrit.png -plot_func=stdtrit -plot_args=3 -plot_min=0.01 -plot_max=0.99
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/gomlx/exceptions"
	"github.com/gomlx/special/backends"
	"github.com/gomlx/special/backends/chunked"
	"github.com/gomlx/special/internal/sets"
	"github.com/gomlx/special/pkg/special"
	"github.com/janpfeifer/must"
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"k8s.io/klog/v2"

	_ "github.com/gomlx/special/backends/default"
)

const defaultBackends = "generic;generic:all;generic:betainc;masked:native;masked:generic:gammainc,gammaincc;chunked:7:generic:betainc"

var (
	flagBackends = flag.String("backends", defaultBackends,
		"Semicolon-separated list of back end configurations to compare against the native kernels. "+
			"Each is formatted as \"<backend_name>:<backend_configuration>\", with back ends "+
			strings.Join(backends.List(), ", ")+".")
	flagFuncs = flag.String("funcs", "", "Comma-separated list of special functions to compare. "+
		"Defaults to all of them.")
	flagNumSamples = flag.Int("n", 8, "Number of samples per argument, besides the special values (NaN, ±Inf, 0, ±1, 0.5). "+
		"Functions are evaluated on the full grid of the samples of their arguments.")
	flagRTol        = flag.Float64("rtol", 1e-8, "Relative tolerance for values to be considered equal.")
	flagATol        = flag.Float64("atol", 1e-12, "Absolute tolerance for values to be considered equal.")
	flagParallelism = flag.Int("parallelism", -2, "Maximum number of chunks computed in parallel by the chunked "+
		"back end: 0 for sequential, -1 for unlimited. Defaults to the number of cores.")
	flagStrict = flag.Bool("strict", false, "Exit with an error code if any back end disagrees with the native kernels.")

	flagPlot = flag.String("plot", "", "If set, plots -plot_func on each back end and saves it to the given "+
		"image file (.png, .svg, .pdf, ...). The comparison report is skipped.")
	flagPlotFunc    = flag.String("plot_func", "erf", "Special function to plot.")
	flagPlotArgs    = flag.String("plot_args", "", "Comma-separated values of the leading arguments of -plot_func, all but the last one.")
	flagPlotMin     = flag.Float64("plot_min", -3, "Start of the range of the last argument of -plot_func.")
	flagPlotMax     = flag.Float64("plot_max", 3, "End of the range of the last argument of -plot_func.")
	flagPlotSamples = flag.Int("plot_samples", 500, "Number of points plotted.")
)

func main() {
	flag.Parse()
	if len(flag.Args()) > 0 {
		klog.Errorf("Unexpected arguments %q. See 'special_backends -help'.", flag.Args())
		os.Exit(1)
	}
	setColorProfile()
	if *flagParallelism != -2 {
		chunked.SetMaxParallelism(*flagParallelism)
	}
	namespaces := must.M1(parseBackends(*flagBackends))

	if *flagPlot != "" {
		spec := plotSpec{
			Function:   *flagPlotFunc,
			Fixed:      must.M1(parseFloats(*flagPlotArgs)),
			Min:        *flagPlotMin,
			Max:        *flagPlotMax,
			NumSamples: *flagPlotSamples,
		}
		namespaces = append([]backends.Namespace{backends.Native}, namespaces...)
		must.M(plotBackends(spec, namespaces, *flagPlot))
		fmt.Printf("Plot of %q saved to %q\n", spec.Function, *flagPlot)
		return
	}

	names := must.M1(selectFunctions(*flagFuncs))
	tol := tolerance{RTol: *flagRTol, ATol: *flagATol}
	comparisons := runComparisons(names, namespaces, tol)
	numFailures := report(comparisons)
	if *flagStrict && numFailures > 0 {
		os.Exit(1)
	}
}

// parseBackends creates the back ends from their semicolon-separated configurations.
func parseBackends(configs string) (namespaces []backends.Namespace, err error) {
	for _, config := range strings.Split(configs, ";") {
		config = strings.TrimSpace(config)
		if config == "" {
			continue
		}
		var ns backends.Namespace
		err = exceptions.TryCatch[error](func() { ns = backends.NewWithConfig(config) })
		if err != nil {
			return nil, errors.WithMessagef(err, "creating back end for configuration %q", config)
		}
		namespaces = append(namespaces, ns)
	}
	if len(namespaces) == 0 {
		return nil, errors.Errorf("no back ends given in %q", configs)
	}
	return namespaces, nil
}

// selectFunctions returns the special functions in the comma-separated list, in canonical order.
// An empty list selects all of them.
func selectFunctions(list string) ([]string, error) {
	all := special.Names()
	if strings.TrimSpace(list) == "" {
		return all, nil
	}
	requested := sets.MakeWith[string]()
	for _, name := range strings.Split(list, ",") {
		requested.Insert(strings.TrimSpace(name))
	}
	if unknown := requested.Sub(sets.MakeWith(all...)); len(unknown) > 0 {
		return nil, errors.Errorf("unknown special functions %q, known functions: %s",
			sets.Sorted(unknown), strings.Join(all, ", "))
	}
	return requested.Select(all), nil
}

// parseFloats parses a comma-separated list of numbers.
func parseFloats(list string) ([]float64, error) {
	if strings.TrimSpace(list) == "" {
		return nil, nil
	}
	parts := strings.Split(list, ",")
	values := make([]float64, len(parts))
	for ii, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing value #%d of %q", ii, list)
		}
		values[ii] = v
	}
	return values, nil
}

// runComparisons compares every function on every back end, displaying a progress bar.
func runComparisons(names []string, namespaces []backends.Namespace, tol tolerance) []comparison {
	total := len(names) * len(namespaces)
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetDescription("Comparing"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.ThemeASCII),
		progressbar.OptionClearOnFinish(),
	)
	comparisons := make([]comparison, 0, total)
	for _, name := range names {
		for _, ns := range namespaces {
			bar.Describe(fmt.Sprintf("%-9s %s", name, ns.Name()))
			comparisons = append(comparisons, compare(name, ns, *flagNumSamples, tol))
			_ = bar.Add(1)
		}
	}
	_ = bar.Finish()
	return comparisons
}

// report prints the comparisons and a summary. It returns the number of comparisons that failed or
// disagreed with the native kernels.
func report(comparisons []comparison) (numFailures int) {
	fmt.Println(titleStyle.Render("Special functions on array back ends"))
	table := newTableWithReds(lipgloss.Left, lipgloss.Left, lipgloss.Left, lipgloss.Right, lipgloss.Right, lipgloss.Right)
	table.Table.Headers("Function", "Back end", "Path", "# values", "# mismatches", "Max abs error")
	var numValues, numMismatches int64
	for _, c := range comparisons {
		numValues += int64(c.NumValues)
		if c.Err != nil {
			numFailures++
			klog.Errorf("%+v", c.Err)
			table.Row(true, c.Function, c.Backend, c.Path.String(), humanize.Comma(int64(c.NumValues)), "error", "-")
			continue
		}
		numMismatches += int64(c.NumMismatches)
		if c.NumMismatches > 0 {
			numFailures++
		}
		table.Row(c.NumMismatches > 0, c.Function, c.Backend, c.Path.String(),
			humanize.Comma(int64(c.NumValues)), humanize.Comma(int64(c.NumMismatches)),
			fmt.Sprintf("%.3g", c.MaxAbsErr))
	}
	fmt.Println(table.Table.Render())

	summary := newTableWithReds(lipgloss.Right, lipgloss.Left)
	summary.Row(false, "comparisons", humanize.Comma(int64(len(comparisons))))
	summary.Row(false, "values", humanize.Comma(numValues))
	summary.Row(numMismatches > 0, "mismatches", humanize.Comma(numMismatches))
	summary.Row(numFailures > 0, "failed comparisons", humanize.Comma(int64(numFailures)))
	fmt.Println(summary.Table.Render())
	return numFailures
}
