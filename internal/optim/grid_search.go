package optim

import (
	"context"
	"fmt"
	"math"
	"slices"

	"github.com/san-kum/rk4sim/internal/config"
	"github.com/san-kum/rk4sim/internal/dynamo"
	"github.com/san-kum/rk4sim/internal/experiment"
)

// Point is one evaluated parameter combination.
type Point struct {
	Params map[string]float64
	Value  float64
	Err    error
}

// GridSearch runs one experiment per element of the cartesian product of
// the parameter ranges and collects a single metric from each.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	maximize   bool
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) == 0 || len(params) != len(ranges) {
		return nil, fmt.Errorf("optim: %d parameter names for %d ranges", len(params), len(ranges))
	}
	for i, r := range ranges {
		if len(r) == 0 {
			return nil, fmt.Errorf("optim: empty range for %s", params[i])
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Maximize makes Search prefer the largest metric value.
func (g *GridSearch) Maximize() *GridSearch {
	g.maximize = true
	return g
}

// Search evaluates every grid point in order. Failed points are kept with
// their error; only cancellation aborts the search.
func (g *GridSearch) Search(
	ctx context.Context,
	buildExperiment func(params map[string]float64) (*experiment.Experiment, error),
	metricName string,
) ([]Point, Point, error) {
	var points []Point
	if err := g.searchRecursive(ctx, 0, make(map[string]float64), buildExperiment, metricName, &points); err != nil {
		return points, Point{}, err
	}

	best := Point{Value: math.Inf(1)}
	if g.maximize {
		best.Value = math.Inf(-1)
	}
	found := false
	for _, p := range points {
		if p.Err != nil {
			continue
		}
		if (g.maximize && p.Value > best.Value) || (!g.maximize && p.Value < best.Value) {
			best = p
			found = true
		}
	}
	if !found {
		return points, Point{}, fmt.Errorf("optim: no grid point produced %s", metricName)
	}
	return points, best, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	buildExperiment func(map[string]float64) (*experiment.Experiment, error),
	metricName string,
	points *[]Point,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		*points = append(*points, evaluate(ctx, current, buildExperiment, metricName))
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, buildExperiment, metricName, points); err != nil {
			return err
		}
	}
	return nil
}

func evaluate(
	ctx context.Context,
	params map[string]float64,
	buildExperiment func(map[string]float64) (*experiment.Experiment, error),
	metricName string,
) Point {
	p := Point{Params: params}

	exp, err := buildExperiment(params)
	if err != nil {
		p.Err = err
		return p
	}
	result, err := exp.Run(ctx)
	if err != nil {
		p.Err = err
		return p
	}
	val, ok := result.Metrics[metricName]
	if !ok {
		p.Err = fmt.Errorf("optim: metric %q not recorded", metricName)
		return p
	}
	p.Value = val
	return p
}

// ExperimentBuilder returns a builder that applies grid parameters to the
// configured model through dynamo.Configurable.
func ExperimentBuilder(cfg *config.Config, registry *experiment.Registry) func(map[string]float64) (*experiment.Experiment, error) {
	return func(params map[string]float64) (*experiment.Experiment, error) {
		sys, err := registry.GetModel(cfg.Model, cfg)
		if err != nil {
			return nil, err
		}

		names := make([]string, 0, len(params))
		for name := range params {
			names = append(names, name)
		}
		slices.Sort(names)
		for _, name := range names {
			c, ok := sys.(dynamo.Configurable)
			if !ok {
				return nil, fmt.Errorf("optim: model %s has no tunable parameters", cfg.Model)
			}
			if sys, err = c.WithParam(name, params[name]); err != nil {
				return nil, err
			}
		}

		exp := experiment.New(experiment.FromConfig(cfg), nil)
		if err := exp.Setup(sys, registry.DefaultMetrics(cfg.Model)); err != nil {
			return nil, err
		}
		return exp, nil
	}
}
