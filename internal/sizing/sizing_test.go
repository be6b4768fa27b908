package sizing

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/spinsim/internal/dynamo"
)

func TestTotalImpulse(t *testing.T) {
	got, err := TotalImpulse(25, 1, 0.175)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got-142.857142857) > 1e-6 {
		t.Errorf("expected 142.857, got %v", got)
	}

	per, err := ImpulsePerMotor(got)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(per-71.4285714285) > 1e-6 {
		t.Errorf("expected 71.43, got %v", per)
	}
}

func TestSizingRejectsNonPositive(t *testing.T) {
	tests := []struct {
		name          string
		w, inertia, r float64
		param         string
	}{
		{"zero spin", 0, 1, 1, "spin_rate"},
		{"negative inertia", 1, -1, 1, "roll_inertia"},
		{"zero radius", 1, 1, 0, "radial_distance"},
		{"nan radius", 1, 1, math.NaN(), "radial_distance"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := TotalImpulse(tt.w, tt.inertia, tt.r)
			if !errors.Is(err, dynamo.ErrInvalidParameter) {
				t.Fatalf("expected ErrInvalidParameter, got %v", err)
			}
			var perr *dynamo.ParameterError
			if !errors.As(err, &perr) || perr.Name != tt.param {
				t.Errorf("expected parameter %s, got %v", tt.param, err)
			}
		})
	}

	if _, err := ImpulsePerMotor(0); !errors.Is(err, dynamo.ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter, got %v", err)
	}
}
