package analysis

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/rk4sim/internal/dynamo"
	"github.com/san-kum/rk4sim/internal/integrators"
	"gonum.org/v1/gonum/floats"
)

// ErrNoDifference is returned when successive refinements agree exactly,
// as they do for problems the method integrates without truncation error.
var ErrNoDifference = errors.New("analysis: refinements agree exactly, order undefined")

// spanTolerance is the relative slack allowed between span and steps*h.
const spanTolerance = 1e-9

// Convergence is the outcome of a step-halving study.
type Convergence struct {
	StepSizes []float64      // h, h/2, h/4
	Finals    []dynamo.State // value at x0+span for each step size
	Order     float64        // observed order, about 4 for RK4
	Estimate  dynamo.State   // Richardson extrapolation of the finest run
}

// EstimateOrder integrates fn from (x0, y0) over span with step sizes h,
// h/2 and h/4 and estimates the observed order of accuracy as
//
//	p = log2(|y(h) - y(h/2)| / |y(h/2) - y(h/4)|)
//
// span must be a whole multiple of h, up to rounding; otherwise the
// error wraps ErrParameterBounds.
func EstimateOrder(fn dynamo.Func, x0 float64, y0 dynamo.State, span, h float64) (*Convergence, error) {
	if h == 0 || span == 0 || math.Signbit(h) != math.Signbit(span) {
		return nil, fmt.Errorf("%w: span=%v h=%v", dynamo.ErrParameterBounds, span, h)
	}
	steps := int(math.Round(span / h))
	if steps < 1 {
		return nil, fmt.Errorf("%w: span %v shorter than step %v", dynamo.ErrParameterBounds, span, h)
	}
	if math.Abs(float64(steps)*h-span) > spanTolerance*math.Abs(span) {
		return nil, fmt.Errorf("%w: span %v is not a whole multiple of step %v", dynamo.ErrParameterBounds, span, h)
	}

	c := &Convergence{}
	for i := 0; i < 3; i++ {
		hi := h / float64(int(1)<<i)
		integ, err := integrators.NewRK4(fn, hi, x0, y0)
		if err != nil {
			return nil, err
		}
		if err := integ.Integrate(steps << i); err != nil {
			return nil, err
		}
		c.StepSizes = append(c.StepSizes, hi)
		c.Finals = append(c.Finals, integ.CurrentValues())
	}

	coarse := floats.Distance(c.Finals[0], c.Finals[1], 2)
	fine := floats.Distance(c.Finals[1], c.Finals[2], 2)
	if fine == 0 || coarse == 0 {
		return c, ErrNoDifference
	}
	c.Order = math.Log2(coarse / fine)
	estimate, err := Richardson(c.Finals[1], c.Finals[2], 4)
	if err != nil {
		return nil, err
	}
	c.Estimate = estimate
	return c, nil
}

// Richardson combines solutions at step h and h/2 of a method of the given
// order into a higher-order estimate.
func Richardson(coarse, fine dynamo.State, order int) (dynamo.State, error) {
	diff, err := fine.Sub(coarse)
	if err != nil {
		return nil, err
	}
	return fine.Add(diff.Scale(1 / (math.Pow(2, float64(order)) - 1)))
}
