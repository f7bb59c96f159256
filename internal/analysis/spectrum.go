package analysis

import (
	"errors"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/floats"
)

var ErrFlatSignal = errors.New("analysis: signal has no oscillating component")

// PowerSpectrum returns the magnitude of the first n/2 frequency bins of the
// mean-removed series. Bin k corresponds to k/(n*dx).
func PowerSpectrum(series []float64) []float64 {
	n := len(series)
	if n < 2 {
		return nil
	}
	centered := make([]float64, n)
	copy(centered, series)
	floats.AddConst(-floats.Sum(series)/float64(n), centered)

	spectrum := fft.FFTReal(centered)
	ps := make([]float64, n/2)
	for i := range ps {
		ps[i] = cmplx.Abs(spectrum[i])
	}
	return ps
}

// DominantFrequency returns the strongest non-zero frequency of a series
// sampled every dx, refined by parabolic interpolation between bins.
func DominantFrequency(series []float64, dx float64) (float64, error) {
	if dx == 0 || len(series) < 4 {
		return 0, errors.New("analysis: need at least 4 samples and a non-zero spacing")
	}
	ps := PowerSpectrum(series)

	k := 1
	for i := 2; i < len(ps); i++ {
		if ps[i] > ps[k] {
			k = i
		}
	}
	if ps[k] < 1e-12*float64(len(series)) {
		return 0, ErrFlatSignal
	}

	offset := 0.0
	if k > 0 && k+1 < len(ps) {
		a, b, c := ps[k-1], ps[k], ps[k+1]
		if d := a - 2*b + c; d != 0 {
			offset = 0.5 * (a - c) / d
		}
	}
	return (float64(k) + offset) / (float64(len(series)) * math.Abs(dx)), nil
}
