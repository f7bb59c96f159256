package metrics

import (
	"math"

	"github.com/san-kum/rk4sim/internal/dynamo"
)

// InvariantDrift tracks the largest deviation of a conserved quantity from
// its first observed value. By default the quantity is the component sum,
// which for the SIR model is population conservation.
type InvariantDrift struct {
	name     string
	quantity func(dynamo.State) float64
	initial  float64
	maxDrift float64
	samples  int
}

func NewInvariantDrift(name string) *InvariantDrift {
	return &InvariantDrift{name: name, quantity: dynamo.State.Sum}
}

// NewEnergyDrift tracks drift of a system's energy function.
func NewEnergyDrift(name string, h dynamo.Hamiltonian) *InvariantDrift {
	return &InvariantDrift{name: name, quantity: h.Energy}
}

func (d *InvariantDrift) Name() string { return d.name }

func (d *InvariantDrift) Observe(y dynamo.State, x float64) {
	q := d.quantity(y)
	if d.samples == 0 {
		d.initial = q
	}
	d.samples++
	d.maxDrift = math.Max(d.maxDrift, math.Abs(q-d.initial))
}

func (d *InvariantDrift) Value() float64 {
	return d.maxDrift
}

func (d *InvariantDrift) Reset() {
	d.initial = 0
	d.maxDrift = 0
	d.samples = 0
}

// Final records the last observed value of one state component.
type Final struct {
	name  string
	index int
	last  float64
}

func NewFinal(name string, index int) *Final {
	return &Final{name: name, index: index}
}

func (f *Final) Name() string { return f.name }

func (f *Final) Observe(y dynamo.State, x float64) {
	if f.index < len(y) {
		f.last = y[f.index]
	}
}

func (f *Final) Value() float64 { return f.last }
func (f *Final) Reset()         { f.last = 0 }
