package dynamo

import (
	"math"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// Sum returns the sum of all components.
func (s State) Sum() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v
	}
	return sum
}

func (s State) Add(other State) (State, error) {
	if len(other) != len(s) {
		return nil, &DimensionError{Stage: "add", Want: len(s), Got: len(other)}
	}
	result := make(State, len(s))
	for i := range s {
		result[i] = s[i] + other[i]
	}
	return result, nil
}

func (s State) Scale(factor float64) State {
	result := make(State, len(s))
	for i := range s {
		result[i] = s[i] * factor
	}
	return result
}

func (s State) Sub(other State) (State, error) {
	if len(other) != len(s) {
		return nil, &DimensionError{Stage: "sub", Want: len(s), Got: len(other)}
	}
	result := make(State, len(s))
	for i := range s {
		result[i] = s[i] - other[i]
	}
	return result, nil
}

// Func is the right-hand side of dY/dX = F(X, Y). It must return a new
// vector of len(y) and must not modify y.
type Func func(x float64, y State) State

// System is an ODE right-hand side together with its shape.
type System interface {
	Derive(x float64, y State) State
	StateDim() int
	Labels() []string
}

// Configurable systems expose named parameters. WithParam returns a new
// System and leaves the receiver unchanged.
type Configurable interface {
	GetParams() map[string]float64
	WithParam(name string, value float64) (System, error)
}

// Hamiltonian systems expose a quantity the exact flow conserves.
type Hamiltonian interface {
	Energy(y State) float64
}

// Stepper advances a single trajectory in place.
type Stepper interface {
	IntegrateStep() error
	CurrentPoint() float64
	CurrentValues() State
	StepSize() float64
}

type Metric interface {
	Name() string
	Observe(y State, x float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(step int, y State, x float64)
}

type Config struct {
	Steps         int
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Steps:         1000,
		ValidateState: true,
	}
}

type Result struct {
	Times      []float64
	States     []State
	Labels     []string
	Metrics    map[string]float64
	StepsTaken int
}

// Component extracts the i-th component of every recorded state.
func (r *Result) Component(i int) []float64 {
	out := make([]float64, 0, len(r.States))
	for _, s := range r.States {
		if i < len(s) {
			out = append(out, s[i])
		}
	}
	return out
}
