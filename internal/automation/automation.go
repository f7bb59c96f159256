package automation

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"os"

	"gonum.org/v1/gonum/stat"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/rk4sim/internal/config"
	"github.com/san-kum/rk4sim/internal/dynamo"
	"github.com/san-kum/rk4sim/internal/experiment"
	"github.com/san-kum/rk4sim/internal/logging"
	"github.com/san-kum/rk4sim/internal/optim"
	"github.com/san-kum/rk4sim/internal/storage"
)

// Scenario defines a scripted sequence of runs
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is a single run in a scenario. Zero dt or duration keeps the
// preset (or default) value.
type ScenarioStep struct {
	Model    string             `yaml:"model"`
	Preset   string             `yaml:"preset"`
	Dt       float64            `yaml:"dt"`
	Duration float64            `yaml:"duration"`
	Params   map[string]float64 `yaml:"params"`
	Save     bool               `yaml:"save"`
}

// StepResult pairs a finished scenario step with its stored run id, if any.
type StepResult struct {
	Step   int
	Model  string
	RunID  string
	Result *dynamo.Result
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", scenario.Name)
	}

	return &scenario, nil
}

func (s ScenarioStep) config() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if s.Preset != "" {
		cfg = config.GetPreset(s.Model, s.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset %s/%s", s.Model, s.Preset)
		}
	}
	cfg.Model = s.Model
	if s.Dt != 0 {
		cfg.Dt = s.Dt
	}
	if s.Duration != 0 {
		cfg.Duration = s.Duration
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// RunScenario executes all steps in order and stops at the first failure.
// Steps marked save are written to st when it is non-nil.
func RunScenario(ctx context.Context, scenario *Scenario, registry *experiment.Registry, st *storage.Store, logger *slog.Logger) ([]StepResult, error) {
	logger = logging.OrDiscard(logger)
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		logger.Info("scenario step", "scenario", scenario.Name, "step", i+1, "of", len(scenario.Steps), "model", step.Model)

		cfg, err := step.config()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		exp, err := optim.ExperimentBuilder(cfg, registry)(step.Params)
		if err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		sr := StepResult{Step: i + 1, Model: cfg.Model, Result: result}
		if step.Save && st != nil {
			info := storage.RunInfo{
				Model:  cfg.Model,
				Preset: step.Preset,
				Dt:     cfg.Dt,
				X0:     cfg.X0,
				Steps:  cfg.Steps(),
				Params: step.Params,
			}
			if sr.RunID, err = st.Save(info, result); err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
		}
		results = append(results, sr)
	}

	return results, nil
}

// MonteCarloConfig perturbs every initial state component by a uniform
// relative amount in [-Perturbation, Perturbation].
type MonteCarloConfig struct {
	Base         *config.Config
	Perturbation float64
	NumTrials    int
	Metric       string
	Seed         uint64
}

// MonteCarloResult holds one perturbed trial
type MonteCarloResult struct {
	TrialID    int
	InitState  dynamo.State
	FinalState dynamo.State
	Metric     float64
	Stable     bool // did every visited state stay finite and bounded?
}

const stabilityBound = 1e6

// RunMonteCarlo executes NumTrials runs, one after another, from randomly
// perturbed initial states. Only the final state is kept. A trial stops as
// soon as its state leaves the stability bound; such trials, and trials
// whose step fails, are kept as unstable. Cancellation stops the whole run.
func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig, registry *experiment.Registry, logger *slog.Logger) ([]MonteCarloResult, error) {
	if cfg.NumTrials <= 0 {
		return nil, fmt.Errorf("monte carlo needs at least one trial, got %d", cfg.NumTrials)
	}
	logger = logging.OrDiscard(logger)
	results := make([]MonteCarloResult, 0, cfg.NumTrials)

	sys, err := registry.GetModel(cfg.Base.Model, cfg.Base)
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))
	base := cfg.Base.GetInitState()

	for trial := 0; trial < cfg.NumTrials; trial++ {
		initState := make(dynamo.State, len(base))
		for i, v := range base {
			initState[i] = v * (1 + (rng.Float64()-0.5)*2*cfg.Perturbation)
		}

		expCfg := experiment.FromConfig(cfg.Base)
		expCfg.InitState = initState

		exp := experiment.New(expCfg, nil)
		if err := exp.Setup(sys, registry.DefaultMetrics(cfg.Base.Model)); err != nil {
			return nil, err
		}

		r := MonteCarloResult{TrialID: trial, InitState: initState}
		guard := &excursionGuard{}
		if err := exp.AddObserver(guard); err != nil {
			return nil, err
		}
		var final dynamo.State
		values, err := exp.Stream(ctx, func(_ float64, y dynamo.State) bool {
			final = y
			return !guard.escaped
		})
		if err != nil && ctx.Err() != nil {
			return results, err
		}
		if err == nil && final != nil {
			r.FinalState = final.Clone()
			r.Metric = values[cfg.Metric]
			r.Stable = !guard.escaped
		}
		results = append(results, r)

		if (trial+1)%10 == 0 {
			logger.Debug("monte carlo progress", "trials", trial+1, "of", cfg.NumTrials)
		}
	}

	return results, nil
}

// excursionGuard flags the first state that is non-finite or leaves the
// stability ball.
type excursionGuard struct {
	escaped bool
}

func (g *excursionGuard) OnStep(_ int, y dynamo.State, _ float64) {
	if !y.IsValid() || y.Norm() > stabilityBound {
		g.escaped = true
	}
}

// MonteCarloStats summarises trial outcomes. Mean and standard deviation
// cover stable trials only and are NaN when there are none.
func MonteCarloStats(results []MonteCarloResult) (stableCount, unstableCount int, mean, stdDev float64) {
	var values []float64
	for _, r := range results {
		if r.Stable {
			stableCount++
			values = append(values, r.Metric)
		} else {
			unstableCount++
		}
	}
	if len(values) == 0 {
		return stableCount, unstableCount, math.NaN(), math.NaN()
	}
	if len(values) == 1 {
		return stableCount, unstableCount, values[0], 0
	}
	mean, stdDev = stat.MeanStdDev(values, nil)
	return stableCount, unstableCount, mean, stdDev
}
