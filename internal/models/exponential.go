package models

import (
	"fmt"

	"github.com/san-kum/rk4sim/internal/dynamo"
)

// Exponential is dy/dx = k*y, whose solution y0*exp(k*x) makes it the
// reference problem for accuracy checks.
type Exponential struct {
	Rate float64
}

func NewExponential(rate float64) Exponential { return Exponential{Rate: rate} }

func (e Exponential) StateDim() int    { return 1 }
func (e Exponential) Labels() []string { return []string{"y"} }

func (e Exponential) Derive(_ float64, y dynamo.State) dynamo.State {
	return dynamo.State{e.Rate * y[0]}
}

func (e Exponential) GetParams() map[string]float64 {
	return map[string]float64{"rate": e.Rate}
}

func (e Exponential) WithParam(name string, value float64) (dynamo.System, error) {
	if name != "rate" {
		return nil, fmt.Errorf("exponential: unknown parameter %q", name)
	}
	e.Rate = value
	return e, nil
}
