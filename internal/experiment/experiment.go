package experiment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/san-kum/rk4sim/internal/config"
	"github.com/san-kum/rk4sim/internal/dynamo"
	"github.com/san-kum/rk4sim/internal/integrators"
	"github.com/san-kum/rk4sim/internal/metrics"
	"github.com/san-kum/rk4sim/internal/sim"
)

type Config struct {
	Model     string
	InitState []float64
	X0        float64
	Dt        float64
	Steps     int
}

// FromConfig flattens a loaded run configuration.
func FromConfig(c *config.Config) Config {
	return Config{
		Model:     c.Model,
		InitState: c.GetInitState(),
		X0:        c.X0,
		Dt:        c.Dt,
		Steps:     c.Steps(),
	}
}

type Experiment struct {
	cfg        Config
	integrator *integrators.RK4
	simulator  *sim.Simulator
	logger     *slog.Logger
}

func New(cfg Config, logger *slog.Logger) *Experiment {
	return &Experiment{cfg: cfg, logger: logger}
}

// Setup builds the integrator over sys and the simulator around it.
func (e *Experiment) Setup(sys dynamo.System, metricList []dynamo.Metric) error {
	if len(e.cfg.InitState) != sys.StateDim() {
		return &dynamo.DimensionError{Stage: "setup", Want: sys.StateDim(), Got: len(e.cfg.InitState)}
	}

	integ, err := integrators.NewRK4(sys.Derive, e.cfg.Dt, e.cfg.X0, e.cfg.InitState)
	if err != nil {
		return fmt.Errorf("%s: %w", e.cfg.Model, err)
	}
	e.integrator = integ
	e.simulator = sim.New(integ, e.logger)
	e.simulator.SetLabels(sys.Labels())
	for _, m := range metricList {
		e.simulator.AddMetric(m)
	}
	if h, ok := sys.(dynamo.Hamiltonian); ok {
		e.simulator.AddMetric(metrics.NewEnergyDrift("energy_drift", h))
	}
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*dynamo.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}

	cfg := dynamo.DefaultConfig()
	cfg.Steps = e.cfg.Steps
	return e.simulator.Run(ctx, cfg)
}

// Stream runs the experiment without keeping the trajectory. fn sees every
// point and may stop the run by returning false; the metric values reached
// so far are returned either way.
func (e *Experiment) Stream(ctx context.Context, fn func(x float64, y dynamo.State) bool) (map[string]float64, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}

	cfg := dynamo.DefaultConfig()
	cfg.Steps = e.cfg.Steps
	err := e.simulator.RunWithCallback(ctx, cfg, fn)
	return e.simulator.MetricValues(), err
}

// AddObserver attaches o to the simulator built by Setup.
func (e *Experiment) AddObserver(o dynamo.Observer) error {
	if e.simulator == nil {
		return fmt.Errorf("experiment not setup")
	}
	e.simulator.AddObserver(o)
	return nil
}

func (e *Experiment) Integrator() *integrators.RK4 {
	return e.integrator
}
