package optim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/rk4sim/internal/config"
	"github.com/san-kum/rk4sim/internal/experiment"
)

func sirConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Duration = 60
	return cfg
}

func TestGridSearchSIRPeak(t *testing.T) {
	g, err := NewGridSearch([]string{"r0"}, [][]float64{{1.5, 2, 3}})
	if err != nil {
		t.Fatal(err)
	}

	points, best, err := g.Search(context.Background(), ExperimentBuilder(sirConfig(), experiment.NewRegistry()), "peak_I")
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(points))
	}
	for i := 1; i < len(points); i++ {
		if points[i].Value <= points[i-1].Value {
			t.Errorf("peak should grow with r0: %v", points)
		}
	}
	if best.Params["r0"] != 1.5 {
		t.Errorf("expected smallest peak at r0=1.5, got %v", best.Params)
	}

	_, best, err = g.Maximize().Search(context.Background(), ExperimentBuilder(sirConfig(), experiment.NewRegistry()), "peak_I")
	if err != nil {
		t.Fatal(err)
	}
	if best.Params["r0"] != 3 {
		t.Errorf("expected largest peak at r0=3, got %v", best.Params)
	}
}

func TestGridSearchCartesianProduct(t *testing.T) {
	g, err := NewGridSearch([]string{"r0", "removal"}, [][]float64{{2, 3}, {0.2, 0.25, 0.5}})
	if err != nil {
		t.Fatal(err)
	}

	points, _, err := g.Search(context.Background(), ExperimentBuilder(sirConfig(), experiment.NewRegistry()), "final_R")
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != 6 {
		t.Fatalf("expected 6 points, got %d", len(points))
	}
	if points[5].Params["r0"] != 3 || points[5].Params["removal"] != 0.5 {
		t.Errorf("unexpected ordering %v", points[5].Params)
	}
}

func TestGridSearchKeepsFailedPoints(t *testing.T) {
	g, err := NewGridSearch([]string{"r0"}, [][]float64{{-1, 2}})
	if err != nil {
		t.Fatal(err)
	}

	points, best, err := g.Search(context.Background(), ExperimentBuilder(sirConfig(), experiment.NewRegistry()), "peak_I")
	if err != nil {
		t.Fatal(err)
	}
	if points[0].Err == nil {
		t.Error("expected negative r0 to fail")
	}
	if best.Params["r0"] != 2 {
		t.Errorf("expected best at r0=2, got %v", best.Params)
	}
}

func TestGridSearchUnknownMetric(t *testing.T) {
	g, _ := NewGridSearch([]string{"r0"}, [][]float64{{2}})
	_, _, err := g.Search(context.Background(), ExperimentBuilder(sirConfig(), experiment.NewRegistry()), "nope")
	if err == nil {
		t.Error("expected error when no point records the metric")
	}
}

func TestGridSearchCancelled(t *testing.T) {
	g, _ := NewGridSearch([]string{"r0"}, [][]float64{{2, 3}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := g.Search(ctx, ExperimentBuilder(sirConfig(), experiment.NewRegistry()), "peak_I")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestNewGridSearchValidation(t *testing.T) {
	if _, err := NewGridSearch(nil, nil); err == nil {
		t.Error("expected error for no parameters")
	}
	if _, err := NewGridSearch([]string{"r0"}, [][]float64{{}}); err == nil {
		t.Error("expected error for empty range")
	}
}

func TestExperimentBuilderAppliesParams(t *testing.T) {
	build := ExperimentBuilder(sirConfig(), experiment.NewRegistry())
	exp, err := build(map[string]float64{"r0": 1})
	if err != nil {
		t.Fatal(err)
	}
	res, err := exp.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	// at R0=1 the outbreak never grows
	if math.Abs(res.Metrics["peak_I"]-1e-5) > 1e-9 {
		t.Errorf("expected peak at the initial value, got %g", res.Metrics["peak_I"])
	}
}
