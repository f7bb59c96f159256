package experiment

import (
	"fmt"
	"slices"

	"github.com/san-kum/rk4sim/internal/config"
	"github.com/san-kum/rk4sim/internal/dynamo"
	"github.com/san-kum/rk4sim/internal/metrics"
	"github.com/san-kum/rk4sim/internal/models"
)

type Registry struct {
	models map[string]func(cfg *config.Config) dynamo.System
}

func NewRegistry() *Registry {
	r := &Registry{
		models: make(map[string]func(cfg *config.Config) dynamo.System),
	}

	r.models["sir"] = func(cfg *config.Config) dynamo.System { return cfg.SIRModel() }
	r.models["exponential"] = func(cfg *config.Config) dynamo.System {
		return models.NewExponential(cfg.Exponential.Rate)
	}
	r.models["lorenz"] = func(cfg *config.Config) dynamo.System {
		return models.Lorenz{Sigma: cfg.Lorenz.Sigma, Rho: cfg.Lorenz.Rho, Beta: cfg.Lorenz.Beta}
	}
	r.models["pendulum"] = func(cfg *config.Config) dynamo.System {
		return models.Pendulum{Length: cfg.Pendulum.Length, Damping: cfg.Pendulum.Damping, Gravity: cfg.Pendulum.Gravity}
	}

	return r
}

// GetModel builds the named model with parameters from cfg.
func (r *Registry) GetModel(name string, cfg *config.Config) (dynamo.System, error) {
	fn, ok := r.models[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", dynamo.ErrUnknownModel, name)
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return fn(cfg), nil
}

func (r *Registry) ListModels() []string {
	names := make([]string, 0, len(r.models))
	for name := range r.models {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (r *Registry) DefaultMetrics(model string) []dynamo.Metric {
	switch model {
	case "sir":
		return []dynamo.Metric{
			metrics.NewPeak("peak_I", 1),
			metrics.NewPeakTime("peak_I_time", 1),
			metrics.NewFinal("final_R", 2),
			metrics.NewInvariantDrift("population_drift"),
		}
	case "exponential":
		return []dynamo.Metric{metrics.NewFinal("final_y", 0)}
	case "lorenz":
		return []dynamo.Metric{
			metrics.NewPeak("peak_z", 2),
			metrics.NewFinal("final_z", 2),
		}
	case "pendulum":
		return []dynamo.Metric{
			metrics.NewPeak("peak_theta", 0),
			metrics.NewPeak("peak_omega", 1),
		}
	default:
		return nil
	}
}
