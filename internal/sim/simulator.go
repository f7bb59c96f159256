package sim

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/san-kum/rk4sim/internal/dynamo"
	"github.com/san-kum/rk4sim/internal/logging"
)

// progressEvery controls how often a debug progress line is logged.
const progressEvery = 100

// Simulator repeatedly steps a single trajectory and records it.
type Simulator struct {
	stepper   dynamo.Stepper
	labels    []string
	metrics   []dynamo.Metric
	observers []dynamo.Observer
	logger    *slog.Logger
}

func New(stepper dynamo.Stepper, logger *slog.Logger) *Simulator {
	return &Simulator{
		stepper:   stepper,
		metrics:   make([]dynamo.Metric, 0),
		observers: make([]dynamo.Observer, 0),
		logger:    logging.OrDiscard(logger),
	}
}

func (s *Simulator) AddMetric(m dynamo.Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o dynamo.Observer) { s.observers = append(s.observers, o) }

// SetLabels names the state components in the Result.
func (s *Simulator) SetLabels(labels []string) { s.labels = labels }

// Run performs cfg.Steps integration steps and returns the recorded
// trajectory, including the starting point. On a step failure the partial
// result is returned together with a *dynamo.SimulationError.
func (s *Simulator) Run(ctx context.Context, cfg dynamo.Config) (*dynamo.Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}

	result := &dynamo.Result{
		Times:   make([]float64, 0, cfg.Steps+1),
		States:  make([]dynamo.State, 0, cfg.Steps+1),
		Labels:  s.labels,
		Metrics: make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	x := s.stepper.CurrentPoint()
	y := s.stepper.CurrentValues()
	s.record(result, 0, x, y)

	s.logger.Info("simulation started", "steps", cfg.Steps, "h", s.stepper.StepSize(), "x0", x, "dim", len(y))

	for i := 0; i < cfg.Steps; i++ {
		select {
		case <-ctx.Done():
			s.collect(result)
			return result, ctx.Err()
		default:
		}

		if err := s.stepper.IntegrateStep(); err != nil {
			s.collect(result)
			return result, &dynamo.SimulationError{Step: i, Time: x, State: y, Wrapped: err}
		}

		x = s.stepper.CurrentPoint()
		y = s.stepper.CurrentValues()

		if cfg.ValidateState && !y.IsValid() {
			s.collect(result)
			return result, &dynamo.SimulationError{Step: i, Time: x, State: y, Wrapped: dynamo.ErrInvalidState}
		}

		result.StepsTaken++
		s.record(result, i+1, x, y)

		if (i+1)%progressEvery == 0 {
			s.logger.Debug("simulation progress", "step", i+1, "x", x)
		}
	}

	s.collect(result)
	s.logger.Info("simulation finished", "steps", result.StepsTaken, "x", x)
	return result, nil
}

func (s *Simulator) record(result *dynamo.Result, step int, x float64, y dynamo.State) {
	result.Times = append(result.Times, x)
	result.States = append(result.States, y)
	s.observe(step, x, y)
}

func (s *Simulator) observe(step int, x float64, y dynamo.State) {
	for _, m := range s.metrics {
		m.Observe(y, x)
	}
	for _, obs := range s.observers {
		obs.OnStep(step, y, x)
	}
}

func (s *Simulator) collect(result *dynamo.Result) {
	for name, v := range s.MetricValues() {
		result.Metrics[name] = v
	}
}

// MetricValues reports the current value of every metric.
func (s *Simulator) MetricValues() map[string]float64 {
	values := make(map[string]float64, len(s.metrics))
	for _, m := range s.metrics {
		values[m.Name()] = m.Value()
	}
	return values
}

func (s *Simulator) validateConfig(cfg dynamo.Config) error {
	if cfg.Steps <= 0 {
		return fmt.Errorf("steps must be positive, got %d", cfg.Steps)
	}
	if s.stepper == nil {
		return fmt.Errorf("simulator has no stepper")
	}
	return nil
}

// RunWithCallback steps without recording the trajectory. Metrics and
// observers see every point as in Run. fn is called with the starting point
// and after every step; returning false stops the run early.
func (s *Simulator) RunWithCallback(ctx context.Context, cfg dynamo.Config, fn func(x float64, y dynamo.State) bool) error {
	if err := s.validateConfig(cfg); err != nil {
		return err
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	x, y := s.stepper.CurrentPoint(), s.stepper.CurrentValues()
	s.observe(0, x, y)
	if !fn(x, y) {
		return nil
	}

	for i := 0; i < cfg.Steps; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := s.stepper.IntegrateStep(); err != nil {
			return &dynamo.SimulationError{Step: i, Time: x, State: y, Wrapped: err}
		}

		x, y = s.stepper.CurrentPoint(), s.stepper.CurrentValues()
		if cfg.ValidateState && !y.IsValid() {
			return &dynamo.SimulationError{Step: i, Time: x, State: y, Wrapped: dynamo.ErrInvalidState}
		}
		s.observe(i+1, x, y)
		if !fn(x, y) {
			return nil
		}
	}

	return nil
}
