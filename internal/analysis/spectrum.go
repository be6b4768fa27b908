package analysis

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"

	"github.com/san-kum/spinsim/internal/dynamo"
)

// PowerSpectrum returns the one-sided magnitude spectrum of series with its
// mean removed. Bin k corresponds to k/(n·dt) Hz.
func PowerSpectrum(series []float64) []float64 {
	n := len(series)
	if n == 0 {
		return nil
	}

	mean := 0.0
	for _, v := range series {
		mean += v
	}
	mean /= float64(n)

	centered := make([]float64, n)
	for i, v := range series {
		centered[i] = v - mean
	}

	coeffs := fft.FFTReal(centered)
	ps := make([]float64, n/2+1)
	for i := range ps {
		ps[i] = cmplx.Abs(coeffs[i])
	}
	return ps
}

// DominantFrequency returns the frequency in Hz of the largest non-DC
// spectral peak of a uniformly sampled series.
func DominantFrequency(series []float64, dt float64) (float64, error) {
	if len(series) < 4 {
		return 0, fmt.Errorf("%w: need at least 4 samples, got %d", dynamo.ErrInvalidInput, len(series))
	}
	if !(dt > 0) || math.IsInf(dt, 0) {
		return 0, fmt.Errorf("%w: sample interval %g", dynamo.ErrInvalidInput, dt)
	}

	ps := PowerSpectrum(series)
	peak := 1
	for i := 2; i < len(ps); i++ {
		if ps[i] > ps[peak] {
			peak = i
		}
	}
	return float64(peak) / (float64(len(series)) * dt), nil
}
