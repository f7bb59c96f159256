package viz

import (
	"fmt"

	"github.com/guptarohit/asciigraph"
)

type PlotOptions struct {
	Width     int
	Height    int
	Caption   string
	Precision uint
}

func DefaultPlotOptions() PlotOptions {
	return PlotOptions{Width: 80, Height: 15, Precision: 3}
}

// PlotSeries renders one or more series on a shared terminal chart with a
// legend entry per label. All series must have the same length.
func PlotSeries(series [][]float64, labels []string, opts PlotOptions) (string, error) {
	if len(series) == 0 {
		return "", fmt.Errorf("viz: nothing to plot")
	}
	n := len(series[0])
	if n == 0 {
		return "", fmt.Errorf("viz: empty series")
	}
	for i, s := range series {
		if len(s) != n {
			return "", fmt.Errorf("viz: series %d has %d points, want %d", i, len(s), n)
		}
	}

	options := []asciigraph.Option{
		asciigraph.Height(opts.Height),
		asciigraph.Precision(opts.Precision),
		asciigraph.SeriesColors(CurrentTheme.SeriesColors(len(series))...),
	}
	if opts.Width > 0 {
		options = append(options, asciigraph.Width(opts.Width))
	}
	if opts.Caption != "" {
		options = append(options, asciigraph.Caption(opts.Caption))
	}
	if len(labels) == len(series) {
		options = append(options, asciigraph.SeriesLegends(labels...))
	}

	return asciigraph.PlotMany(series, options...), nil
}

// PlotComponent renders a single series.
func PlotComponent(values []float64, label string, opts PlotOptions) (string, error) {
	if opts.Caption == "" {
		opts.Caption = label
	}
	return PlotSeries([][]float64{values}, []string{label}, opts)
}

// SelectSeries picks the named columns out of a set of labelled series.
// An empty selection returns every column.
func SelectSeries(columns [][]float64, labels, names []string) ([][]float64, []string, error) {
	if len(names) == 0 {
		return columns, labels, nil
	}

	index := make(map[string]int, len(labels))
	for i, l := range labels {
		index[l] = i
	}

	out := make([][]float64, 0, len(names))
	for _, name := range names {
		i, ok := index[name]
		if !ok {
			return nil, nil, fmt.Errorf("viz: unknown series %q (available: %v)", name, labels)
		}
		out = append(out, columns[i])
	}
	return out, names, nil
}
