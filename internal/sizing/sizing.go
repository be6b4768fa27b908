// Package sizing computes the motor impulse needed to reach a target spin rate.
package sizing

import (
	"math"

	"github.com/san-kum/spinsim/internal/dynamo"
)

// TotalImpulse returns I·ω/r: the impulse that, applied tangentially at
// radius r, spins a body with roll inertia I up to ω.
func TotalImpulse(spinRate, rollInertia, radialDistance float64) (float64, error) {
	for _, p := range []struct {
		name  string
		value float64
	}{
		{"spin_rate", spinRate},
		{"roll_inertia", rollInertia},
		{"radial_distance", radialDistance},
	} {
		if err := positive(p.name, p.value); err != nil {
			return 0, err
		}
	}
	return rollInertia * spinRate / radialDistance, nil
}

// ImpulsePerMotor splits a total impulse evenly across the two motors.
func ImpulsePerMotor(total float64) (float64, error) {
	if err := positive("total_impulse", total); err != nil {
		return 0, err
	}
	return total / 2, nil
}

func positive(name string, v float64) error {
	if !(v > 0) || math.IsInf(v, 0) {
		return &dynamo.ParameterError{Name: name, Value: v}
	}
	return nil
}
