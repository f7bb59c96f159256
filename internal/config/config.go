package config

import (
	"fmt"
	"math"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/san-kum/rk4sim/internal/models"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDt       = 0.1
	DefaultDuration = 80.0
	DefaultInfected = 1e-5
	DefaultTheta    = 0.5
	DefaultValue    = 1.0
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("finite", validateFinite)
}

// validateFinite rejects NaN and infinities, which numeric tags let through.
func validateFinite(fl validator.FieldLevel) bool {
	v := fl.Field().Float()
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

type Config struct {
	Model       string            `yaml:"model" validate:"required,oneof=sir exponential lorenz pendulum"`
	Dt          float64           `yaml:"dt" validate:"finite,ne=0"`
	Duration    float64           `yaml:"duration" validate:"finite,gt=0"`
	X0          float64           `yaml:"x0" validate:"finite"`
	LogLevel    string            `yaml:"log_level,omitempty" validate:"omitempty,oneof=debug info warn warning error"`
	InitState   InitStateConfig   `yaml:"init_state"`
	SIR         SIRConfig         `yaml:"sir"`
	Exponential ExponentialConfig `yaml:"exponential"`
	Lorenz      LorenzConfig      `yaml:"lorenz"`
	Pendulum    PendulumConfig    `yaml:"pendulum"`
}

type InitStateConfig struct {
	Infected  float64 `yaml:"infected" validate:"finite,gt=0,lte=1"`
	Recovered float64 `yaml:"recovered" validate:"finite,gte=0,lt=1"`
	Value     float64 `yaml:"value" validate:"finite"`
	Theta     float64 `yaml:"theta" validate:"finite"`
	Omega     float64 `yaml:"omega" validate:"finite"`
	X         float64 `yaml:"x" validate:"finite"`
	Y         float64 `yaml:"y" validate:"finite"`
	Z         float64 `yaml:"z" validate:"finite"`
}

type SIRConfig struct {
	Removal      float64            `yaml:"removal" validate:"finite,gt=0"`
	R0           float64            `yaml:"r0" validate:"finite,gt=0"`
	Intervention InterventionConfig `yaml:"intervention"`
}

type InterventionConfig struct {
	Start  float64 `yaml:"start" validate:"finite,gte=0"`
	End    float64 `yaml:"end" validate:"finite,gtefield=Start"`
	Factor float64 `yaml:"factor" validate:"finite,gte=0"`
}

type ExponentialConfig struct {
	Rate float64 `yaml:"rate" validate:"finite"`
}

type LorenzConfig struct {
	Sigma float64 `yaml:"sigma" validate:"finite,gt=0"`
	Rho   float64 `yaml:"rho" validate:"finite,gt=0"`
	Beta  float64 `yaml:"beta" validate:"finite,gt=0"`
}

type PendulumConfig struct {
	Length  float64 `yaml:"length" validate:"finite,gt=0"`
	Gravity float64 `yaml:"gravity" validate:"finite,gt=0"`
	Damping float64 `yaml:"damping" validate:"finite,gte=0"`
}

func DefaultConfig() *Config {
	lorenz := models.NewLorenz()
	pendulum := models.NewPendulum()
	return &Config{
		Model:    "sir",
		Dt:       DefaultDt,
		Duration: DefaultDuration,
		InitState: InitStateConfig{
			Infected: DefaultInfected,
			Value:    DefaultValue,
			Theta:    DefaultTheta,
			X:        1,
			Y:        1,
			Z:        1,
		},
		SIR: SIRConfig{
			Removal: models.DefaultRemoval,
			R0:      models.DefaultR0,
		},
		Exponential: ExponentialConfig{Rate: 1},
		Lorenz:      LorenzConfig{Sigma: lorenz.Sigma, Rho: lorenz.Rho, Beta: lorenz.Beta},
		Pendulum:    PendulumConfig{Length: pendulum.Length, Gravity: pendulum.Gravity, Damping: pendulum.Damping},
	}
}

// Load reads a YAML file over DefaultConfig and validates the result.
func Load(path string) (*Config, error) {
	return LoadOver(path, DefaultConfig())
}

// LoadOver reads a YAML file over a copy of base, so keys absent from the
// file keep base's values, and validates the result. base is not modified.
func LoadOver(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := base.Clone()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.InitState.Infected+c.InitState.Recovered > 1 {
		return fmt.Errorf("invalid config: infected+recovered = %v exceeds 1",
			c.InitState.Infected+c.InitState.Recovered)
	}
	return nil
}

// Steps is the number of fixed steps covering Duration.
func (c *Config) Steps() int {
	return int(math.Round(c.Duration / math.Abs(c.Dt)))
}

func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

func (c *Config) GetInitState() []float64 {
	switch c.Model {
	case "sir":
		return models.SIRInitialState(c.InitState.Infected, c.InitState.Recovered)
	case "exponential":
		return []float64{c.InitState.Value}
	case "lorenz":
		return []float64{c.InitState.X, c.InitState.Y, c.InitState.Z}
	default:
		return []float64{c.InitState.Theta, c.InitState.Omega}
	}
}

func (c *Config) SIRModel() models.SIR {
	sir := models.NewSIR(c.SIR.R0, c.SIR.Removal)
	sir.Intervention = models.Intervention{
		Start:  c.SIR.Intervention.Start,
		End:    c.SIR.Intervention.End,
		Factor: c.SIR.Intervention.Factor,
	}
	return sir
}
