package metrics

import (
	"math"

	"github.com/san-kum/rk4sim/internal/dynamo"
)

type peakTracker struct {
	index   int
	peak    float64
	peakAt  float64
	samples int
}

func (p *peakTracker) observe(y dynamo.State, x float64) {
	if p.index >= len(y) {
		return
	}
	if p.samples == 0 || y[p.index] > p.peak {
		p.peak = y[p.index]
		p.peakAt = x
	}
	p.samples++
}

func (p *peakTracker) reset() {
	p.peak = math.Inf(-1)
	p.peakAt = 0
	p.samples = 0
}

// Peak records the largest value of one state component.
type Peak struct {
	name string
	peakTracker
}

func NewPeak(name string, index int) *Peak {
	p := &Peak{name: name, peakTracker: peakTracker{index: index}}
	p.reset()
	return p
}

func (p *Peak) Name() string                      { return p.name }
func (p *Peak) Observe(y dynamo.State, x float64) { p.observe(y, x) }
func (p *Peak) Reset()                            { p.reset() }

func (p *Peak) Value() float64 {
	if p.samples == 0 {
		return 0
	}
	return p.peak
}

// PeakTime records the independent variable at which one state component
// was largest.
type PeakTime struct {
	name string
	peakTracker
}

func NewPeakTime(name string, index int) *PeakTime {
	p := &PeakTime{name: name, peakTracker: peakTracker{index: index}}
	p.reset()
	return p
}

func (p *PeakTime) Name() string                      { return p.name }
func (p *PeakTime) Observe(y dynamo.State, x float64) { p.observe(y, x) }
func (p *PeakTime) Reset()                            { p.reset() }
func (p *PeakTime) Value() float64                    { return p.peakAt }
