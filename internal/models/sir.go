package models

import (
	"fmt"

	"github.com/san-kum/rk4sim/internal/dynamo"
)

const (
	// DefaultRemoval is the fraction of infected people leaving the
	// transmission chain per day.
	DefaultRemoval = 1.0 / 3.0
	// DefaultR0 is the basic reproduction number.
	DefaultR0 = 3.0
)

// Intervention scales the transmission rate by Factor for Start <= t < End.
// The zero value never applies.
type Intervention struct {
	Start  float64
	End    float64
	Factor float64
}

func (iv Intervention) Active(t float64) bool {
	return iv.End > iv.Start && t >= iv.Start && t < iv.End
}

// SIR is the Kermack-McKendrick compartmental model over population
// fractions (S, I, R):
//
//	dI/dt = a(t)*I*S - b*I
//	dR/dt = b*I
//	dS/dt = -dI/dt - dR/dt
type SIR struct {
	Transmission float64 // a, new infections per S-I contact per day
	Removal      float64 // b, per day
	Intervention Intervention
}

// NewSIR builds a model from its reproduction number: a = r0*b.
func NewSIR(r0, removal float64) SIR {
	return SIR{Transmission: r0 * removal, Removal: removal}
}

// SIRInitialState returns (S, I, R) fractions summing to one.
func SIRInitialState(infected, recovered float64) dynamo.State {
	return dynamo.State{1 - infected - recovered, infected, recovered}
}

func (s SIR) StateDim() int    { return 3 }
func (s SIR) Labels() []string { return []string{"S", "I", "R"} }

// R0 returns the basic reproduction number a/b.
func (s SIR) R0() float64 {
	if s.Removal == 0 {
		return 0
	}
	return s.Transmission / s.Removal
}

// TransmissionAt returns a(t), including any active intervention.
func (s SIR) TransmissionAt(t float64) float64 {
	if s.Intervention.Active(t) {
		return s.Transmission * s.Intervention.Factor
	}
	return s.Transmission
}

func (s SIR) Derive(t float64, y dynamo.State) dynamo.State {
	sus, inf := y[0], y[1]
	dI := s.TransmissionAt(t)*inf*sus - s.Removal*inf
	dR := s.Removal * inf
	dS := -dI - dR
	return dynamo.State{dS, dI, dR}
}

func (s SIR) GetParams() map[string]float64 {
	return map[string]float64{
		"r0":      s.R0(),
		"removal": s.Removal,
	}
}

// WithParam keeps R0 fixed when the removal rate changes.
func (s SIR) WithParam(name string, value float64) (dynamo.System, error) {
	if value <= 0 {
		return nil, fmt.Errorf("%w: %s=%v", dynamo.ErrParameterBounds, name, value)
	}
	switch name {
	case "r0":
		s.Transmission = value * s.Removal
	case "removal":
		s.Transmission = s.R0() * value
		s.Removal = value
	default:
		return nil, fmt.Errorf("sir: unknown parameter %q", name)
	}
	return s, nil
}
