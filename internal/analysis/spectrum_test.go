package analysis

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/spinsim/internal/dynamo"
)

func TestDominantFrequency(t *testing.T) {
	const dt = 0.01
	series := make([]float64, 200)
	for i := range series {
		series[i] = 3 + math.Sin(2*math.Pi*5*float64(i)*dt)
	}

	f, err := DominantFrequency(series, dt)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(f-5) > 1e-9 {
		t.Errorf("expected 5 Hz, got %v", f)
	}
}

func TestPowerSpectrumRemovesMean(t *testing.T) {
	ps := PowerSpectrum([]float64{7, 7, 7, 7, 7, 7, 7, 7})
	for i, v := range ps {
		if v > 1e-12 {
			t.Errorf("bin %d = %v, expected 0 for a constant series", i, v)
		}
	}
}

func TestDominantFrequencyInvalid(t *testing.T) {
	if _, err := DominantFrequency([]float64{1, 2}, 0.1); !errors.Is(err, dynamo.ErrInvalidInput) {
		t.Errorf("short series: got %v", err)
	}
	if _, err := DominantFrequency(make([]float64, 16), 0); !errors.Is(err, dynamo.ErrInvalidInput) {
		t.Errorf("zero dt: got %v", err)
	}
}
