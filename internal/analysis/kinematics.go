package analysis

import (
	"fmt"
	"math"

	"github.com/san-kum/spinsim/internal/dynamo"
	"github.com/san-kum/spinsim/internal/physics"
)

// Nutation returns deg(acos(cos θ · cos φ)) for each sample.
func Nutation(theta, phi []float64) ([]float64, error) {
	return coneAngle(theta, phi)
}

// Precession returns deg(acos(cos θ · cos ψ)) for each sample.
func Precession(theta, psi []float64) ([]float64, error) {
	return coneAngle(theta, psi)
}

// FromTrajectory computes nutation and precession for every sample of tr.
func FromTrajectory(tr *dynamo.Trajectory) (nutation, precession []float64, err error) {
	if tr == nil {
		return nil, nil, fmt.Errorf("%w: nil trajectory", dynamo.ErrInvalidInput)
	}
	for i, x := range tr.States {
		if len(x) != physics.StateDim {
			return nil, nil, fmt.Errorf("%w: state %d has dimension %d, want %d",
				dynamo.ErrInvalidInput, i, len(x), physics.StateDim)
		}
	}

	theta := tr.Component(physics.Theta)
	nutation, err = Nutation(theta, tr.Component(physics.Phi))
	if err != nil {
		return nil, nil, err
	}
	precession, err = Precession(theta, tr.Component(physics.Psi))
	if err != nil {
		return nil, nil, err
	}
	return nutation, precession, nil
}

func coneAngle(a, b []float64) ([]float64, error) {
	if len(a) != len(b) {
		return nil, fmt.Errorf("%w: series lengths differ (%d vs %d)", dynamo.ErrInvalidInput, len(a), len(b))
	}

	out := make([]float64, len(a))
	for i := range a {
		// rounding can push the product just past ±1
		c := math.Max(-1, math.Min(1, math.Cos(a[i])*math.Cos(b[i])))
		out[i] = math.Acos(c) * 180 / math.Pi
	}
	return out, nil
}
