package models

import (
	"fmt"
	"math"

	"github.com/san-kum/rk4sim/internal/dynamo"
)

type Pendulum struct {
	Length  float64
	Damping float64
	Gravity float64
}

func NewPendulum() Pendulum {
	return Pendulum{
		Length:  1.0,
		Damping: 0.1,
		Gravity: 9.81,
	}
}

func (p Pendulum) StateDim() int {
	return 2
}

func (p Pendulum) Labels() []string {
	return []string{"theta", "omega"}
}

func (p Pendulum) Derive(_ float64, x dynamo.State) dynamo.State {
	theta := x[0]
	omega := x[1]

	alpha := -p.Damping*omega - p.Gravity/p.Length*math.Sin(theta)

	return dynamo.State{omega, alpha}
}

// Energy per unit mass; constant when Damping is zero.
func (p Pendulum) Energy(x dynamo.State) float64 {
	theta, omega := x[0], x[1]
	return 0.5*p.Length*p.Length*omega*omega + p.Gravity*p.Length*(1-math.Cos(theta))
}

func (p Pendulum) GetParams() map[string]float64 {
	return map[string]float64{"length": p.Length, "damping": p.Damping, "gravity": p.Gravity}
}

func (p Pendulum) WithParam(name string, value float64) (dynamo.System, error) {
	switch name {
	case "length":
		if value <= 0 {
			return nil, fmt.Errorf("%w: length=%v", dynamo.ErrParameterBounds, value)
		}
		p.Length = value
	case "damping":
		p.Damping = value
	case "gravity":
		p.Gravity = value
	default:
		return nil, fmt.Errorf("pendulum: unknown parameter %q", name)
	}
	return p, nil
}
