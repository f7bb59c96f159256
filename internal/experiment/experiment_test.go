package experiment

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/rk4sim/internal/config"
	"github.com/san-kum/rk4sim/internal/dynamo"
)

func TestRegistryModels(t *testing.T) {
	r := NewRegistry()

	want := []string{"exponential", "lorenz", "pendulum", "sir"}
	got := r.ListModels()
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("expected %v, got %v", want, got)
		}
	}

	for _, name := range want {
		cfg := config.DefaultConfig()
		cfg.Model = name
		sys, err := r.GetModel(name, cfg)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if sys.StateDim() != len(cfg.GetInitState()) {
			t.Errorf("%s: dim %d does not match init state %d", name, sys.StateDim(), len(cfg.GetInitState()))
		}
		if len(r.DefaultMetrics(name)) == 0 {
			t.Errorf("%s: expected default metrics", name)
		}
	}
}

func TestRegistryUnknownModel(t *testing.T) {
	_, err := NewRegistry().GetModel("cartpole", nil)
	if !errors.Is(err, dynamo.ErrUnknownModel) {
		t.Errorf("expected ErrUnknownModel, got %v", err)
	}
}

func TestExperimentSIR(t *testing.T) {
	cfg := config.DefaultConfig()
	r := NewRegistry()

	sys, err := r.GetModel("sir", cfg)
	if err != nil {
		t.Fatal(err)
	}

	exp := New(FromConfig(cfg), nil)
	if err := exp.Setup(sys, r.DefaultMetrics("sir")); err != nil {
		t.Fatal(err)
	}
	res, err := exp.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if res.StepsTaken != 800 || len(res.States) != 801 {
		t.Fatalf("expected 800 steps and 801 states, got %d and %d", res.StepsTaken, len(res.States))
	}
	if math.Abs(res.Times[800]-80) > 1e-9 {
		t.Errorf("expected final time 80, got %v", res.Times[800])
	}
	if res.Metrics["population_drift"] > 1e-12 {
		t.Errorf("population drift too large: %g", res.Metrics["population_drift"])
	}
	if res.Metrics["peak_I"] < 0.2 || res.Metrics["peak_I"] > 0.4 {
		t.Errorf("unexpected peak infected fraction %v", res.Metrics["peak_I"])
	}
	if res.Metrics["final_R"] < 0.9 {
		t.Errorf("expected final size above 0.9 for R0=3, got %v", res.Metrics["final_R"])
	}
	if res.Labels[1] != "I" {
		t.Errorf("expected labels S,I,R, got %v", res.Labels)
	}
	if exp.Integrator().Evaluations() != 4*800 {
		t.Errorf("expected %d evaluations, got %d", 4*800, exp.Integrator().Evaluations())
	}
}

func TestExperimentSetupDimensionMismatch(t *testing.T) {
	cfg := config.DefaultConfig()
	sys, err := NewRegistry().GetModel("pendulum", cfg)
	if err != nil {
		t.Fatal(err)
	}

	exp := New(FromConfig(cfg), nil)
	if err := exp.Setup(sys, nil); !errors.Is(err, dynamo.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestExperimentNotSetup(t *testing.T) {
	if _, err := New(Config{}, nil).Run(context.Background()); err == nil {
		t.Error("expected error")
	}
}

func TestExperimentEnergyDrift(t *testing.T) {
	r := NewRegistry()

	run := func(cfg *config.Config) float64 {
		t.Helper()
		sys, err := r.GetModel("pendulum", cfg)
		if err != nil {
			t.Fatal(err)
		}
		exp := New(FromConfig(cfg), nil)
		if err := exp.Setup(sys, r.DefaultMetrics("pendulum")); err != nil {
			t.Fatal(err)
		}
		res, err := exp.Run(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		drift, ok := res.Metrics["energy_drift"]
		if !ok {
			t.Fatal("expected energy_drift for a system with an energy function")
		}
		return drift
	}

	if drift := run(config.GetPreset("pendulum", "frictionless")); drift > 1e-6 {
		t.Errorf("frictionless drift too large: %g", drift)
	}
	if drift := run(config.GetPreset("pendulum", "small")); drift < 1e-3 {
		t.Errorf("damped pendulum should lose energy, drift %g", drift)
	}

	// systems without an energy function get no drift metric
	cfg := config.DefaultConfig()
	sys, _ := r.GetModel("sir", cfg)
	exp := New(FromConfig(cfg), nil)
	if err := exp.Setup(sys, nil); err != nil {
		t.Fatal(err)
	}
	res, err := exp.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := res.Metrics["energy_drift"]; ok {
		t.Error("unexpected energy_drift for sir")
	}
}

type lastStep struct{ step int }

func (l *lastStep) OnStep(step int, y dynamo.State, x float64) { l.step = step }

func TestExperimentStream(t *testing.T) {
	cfg := config.GetPreset("exponential", "decay")
	r := NewRegistry()
	sys, err := r.GetModel("exponential", cfg)
	if err != nil {
		t.Fatal(err)
	}

	exp := New(FromConfig(cfg), nil)
	obs := &lastStep{}
	if err := exp.AddObserver(obs); err == nil {
		t.Error("expected AddObserver to fail before Setup")
	}
	if err := exp.Setup(sys, r.DefaultMetrics("exponential")); err != nil {
		t.Fatal(err)
	}
	if err := exp.AddObserver(obs); err != nil {
		t.Fatal(err)
	}

	var final dynamo.State
	values, err := exp.Stream(context.Background(), func(x float64, y dynamo.State) bool {
		final = y
		return true
	})
	if err != nil {
		t.Fatal(err)
	}
	if obs.step != cfg.Steps() {
		t.Errorf("expected last observed step %d, got %d", cfg.Steps(), obs.step)
	}
	if math.Abs(final[0]-math.Exp(-5)) > 1e-8 {
		t.Errorf("expected final state e^-5, got %v", final[0])
	}
	if math.Abs(values["final_y"]-final[0]) > 1e-15 {
		t.Errorf("final_y %v does not match final state %v", values["final_y"], final[0])
	}
}

func TestExperimentStreamNotSetup(t *testing.T) {
	_, err := New(Config{}, nil).Stream(context.Background(), func(float64, dynamo.State) bool { return true })
	if err == nil {
		t.Error("expected error")
	}
}
