package integrators

import (
	"fmt"
	"math"

	"github.com/san-kum/rk4sim/internal/dynamo"
	"gonum.org/v1/gonum/floats"
)

// RK4 integrates dY/dX = F(X, Y) with the classical fixed-step fourth-order
// Runge-Kutta method. It owns the current point and values; each call to
// IntegrateStep advances them by one step of size h.
//
// The dimension of Y is fixed by the initial values passed to NewRK4 and is
// checked on every evaluation of F.
type RK4 struct {
	fn dynamo.Func
	h  float64
	x  float64
	y  dynamo.State

	k1, k2, k3, k4 dynamo.State
	scratch, next  dynamo.State
	evals          int
}

// NewRK4 returns an integrator positioned at (x0, y0). The function is
// evaluated once at (x0, y0) to check that it returns len(y0) components.
func NewRK4(fn dynamo.Func, h, x0 float64, y0 dynamo.State) (*RK4, error) {
	if fn == nil {
		return nil, &dynamo.ConfigError{Field: "function", Err: dynamo.ErrNilFunction}
	}
	if len(y0) == 0 {
		return nil, &dynamo.ConfigError{Field: "initial_values", Err: dynamo.ErrEmptyState}
	}
	if err := checkStepSize(h); err != nil {
		return nil, err
	}
	if err := checkPoint(x0); err != nil {
		return nil, err
	}

	r := &RK4{fn: fn, h: h, x: x0, y: y0.Clone()}
	r.ensureScratch(len(y0))
	if err := r.tryFunc(fn, "construction"); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *RK4) ensureScratch(n int) {
	if len(r.k1) != n {
		r.k1 = make(dynamo.State, n)
		r.k2 = make(dynamo.State, n)
		r.k3 = make(dynamo.State, n)
		r.k4 = make(dynamo.State, n)
		r.scratch = make(dynamo.State, n)
		r.next = make(dynamo.State, n)
	}
}

func checkStepSize(h float64) error {
	if h == 0 {
		return &dynamo.ConfigError{Field: "step_size", Err: dynamo.ErrZeroStepSize}
	}
	if math.IsNaN(h) || math.IsInf(h, 0) {
		return &dynamo.ConfigError{Field: "step_size", Err: fmt.Errorf("%w: %v", dynamo.ErrParameterBounds, h)}
	}
	return nil
}

func checkPoint(x float64) error {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return &dynamo.ConfigError{Field: "initial_point", Err: fmt.Errorf("%w: %v", dynamo.ErrParameterBounds, x)}
	}
	return nil
}

// tryFunc evaluates fn once at the current point without counting it as a
// step evaluation.
func (r *RK4) tryFunc(fn dynamo.Func, stage string) error {
	copy(r.scratch, r.y)
	dy := fn(r.x, r.scratch)
	if len(dy) != len(r.y) {
		return &dynamo.DimensionError{Stage: stage, Want: len(r.y), Got: len(dy)}
	}
	return nil
}

func (r *RK4) eval(stage string, x float64, y dynamo.State) (dynamo.State, error) {
	r.evals++
	dy := r.fn(x, y)
	if len(dy) != len(r.y) {
		return nil, &dynamo.DimensionError{Stage: stage, Want: len(r.y), Got: len(dy)}
	}
	return dy, nil
}

// SetStepSize replaces h. Negative values integrate backward.
func (r *RK4) SetStepSize(h float64) error {
	if err := checkStepSize(h); err != nil {
		return err
	}
	r.h = h
	return nil
}

// SetFunction replaces F. The new function is evaluated once at the current
// point and must return Dim() components.
func (r *RK4) SetFunction(fn dynamo.Func) error {
	if fn == nil {
		return &dynamo.ConfigError{Field: "function", Err: dynamo.ErrNilFunction}
	}
	if err := r.tryFunc(fn, "set function"); err != nil {
		return err
	}
	r.fn = fn
	return nil
}

// SetInitialPoint moves the current point to x0 without touching the values.
func (r *RK4) SetInitialPoint(x0 float64) error {
	if err := checkPoint(x0); err != nil {
		return err
	}
	r.x = x0
	return nil
}

// SetInitialValues replaces the current values. y0 must have Dim() components.
func (r *RK4) SetInitialValues(y0 dynamo.State) error {
	if len(y0) != len(r.y) {
		return &dynamo.DimensionError{Stage: "set initial values", Want: len(r.y), Got: len(y0)}
	}
	copy(r.y, y0)
	return nil
}

func (r *RK4) StepSize() float64     { return r.h }
func (r *RK4) CurrentPoint() float64 { return r.x }
func (r *RK4) Dim() int              { return len(r.y) }

// CurrentValues returns a copy of the current values.
func (r *RK4) CurrentValues() dynamo.State { return r.y.Clone() }

// Evaluations reports how many times F has been called by IntegrateStep.
func (r *RK4) Evaluations() int { return r.evals }

// IntegrateStep advances (x, y) by one step of size h:
//
//	k1 = h*F(x, y)
//	k2 = h*F(x + h/2, y + k1/2)
//	k3 = h*F(x + h/2, y + k2/2)
//	k4 = h*F(x + h, y + k3)
//	y += (k1 + 2*k2 + 2*k3 + k4)/6, x += h
//
// If any evaluation returns the wrong number of components the step is
// abandoned and the state is left as it was.
func (r *RK4) IntegrateStep() error {
	h := r.h
	half := 0.5 * h

	copy(r.scratch, r.y)
	d, err := r.eval("k1", r.x, r.scratch)
	if err != nil {
		return err
	}
	floats.ScaleTo(r.k1, h, d)

	floats.AddScaledTo(r.scratch, r.y, 0.5, r.k1)
	d, err = r.eval("k2", r.x+half, r.scratch)
	if err != nil {
		return err
	}
	floats.ScaleTo(r.k2, h, d)

	floats.AddScaledTo(r.scratch, r.y, 0.5, r.k2)
	d, err = r.eval("k3", r.x+half, r.scratch)
	if err != nil {
		return err
	}
	floats.ScaleTo(r.k3, h, d)

	floats.AddTo(r.scratch, r.y, r.k3)
	d, err = r.eval("k4", r.x+h, r.scratch)
	if err != nil {
		return err
	}
	floats.ScaleTo(r.k4, h, d)

	copy(r.scratch, r.k1)
	floats.AddScaled(r.scratch, 2, r.k2)
	floats.AddScaled(r.scratch, 2, r.k3)
	floats.Add(r.scratch, r.k4)
	floats.AddScaledTo(r.next, r.y, 1.0/6.0, r.scratch)

	r.y, r.next = r.next, r.y
	r.x += h
	return nil
}

// Integrate calls IntegrateStep n times, stopping at the first error.
func (r *RK4) Integrate(n int) error {
	for i := 0; i < n; i++ {
		if err := r.IntegrateStep(); err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
	}
	return nil
}
