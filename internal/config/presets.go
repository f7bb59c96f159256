package config

import "slices"

func preset(model string, dt, duration float64, tune func(c *Config)) *Config {
	cfg := DefaultConfig()
	cfg.Model = model
	cfg.Dt = dt
	cfg.Duration = duration
	if tune != nil {
		tune(cfg)
	}
	return cfg
}

var Presets = map[string]map[string]*Config{
	"sir": {
		"baseline": preset("sir", 0.1, 80, nil),
		"mild": preset("sir", 0.1, 160, func(c *Config) {
			c.SIR.R0 = 1.5
		}),
		"severe": preset("sir", 0.1, 60, func(c *Config) {
			c.SIR.R0 = 5
		}),
		"lockdown": preset("sir", 0.1, 120, func(c *Config) {
			c.SIR.Intervention = InterventionConfig{Start: 20, End: 50, Factor: 0.3}
		}),
		"late": preset("sir", 0.1, 80, func(c *Config) {
			c.InitState.Infected = 0.01
			c.InitState.Recovered = 0.2
		}),
	},
	"exponential": {
		"growth": preset("exponential", 0.01, 5, nil),
		"decay": preset("exponential", 0.01, 5, func(c *Config) {
			c.Exponential.Rate = -1
		}),
	},
	"lorenz": {
		"classic": preset("lorenz", 0.01, 40, nil),
		"periodic": preset("lorenz", 0.01, 40, func(c *Config) {
			c.Lorenz.Rho = 160
		}),
	},
	"pendulum": {
		"small": preset("pendulum", 0.01, 20, func(c *Config) {
			c.InitState.Theta = 0.2
		}),
		"large": preset("pendulum", 0.01, 20, func(c *Config) {
			c.InitState.Theta = 2.5
		}),
		"spinning": preset("pendulum", 0.01, 30, func(c *Config) {
			c.InitState.Theta = 0.1
			c.InitState.Omega = 8.0
		}),
		"frictionless": preset("pendulum", 0.01, 30, func(c *Config) {
			c.Pendulum.Damping = 0
		}),
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	cfg, ok := modelPresets[preset]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
