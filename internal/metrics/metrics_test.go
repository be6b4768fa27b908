package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/spinsim/internal/dynamo"
	"github.com/san-kum/spinsim/internal/physics"
)

func sampleTrajectory() *dynamo.Trajectory {
	tr := dynamo.NewTrajectory(3)
	tr.Append(0, dynamo.State{0, 0, 0, 0, 0, 0})
	tr.Append(1, dynamo.State{3, 4, 10, 0.2, 0.1, 0.05})
	tr.Append(2, dynamo.State{0.5, 0, 20, 0.3, 0, 0.01})
	return tr
}

func TestCollect(t *testing.T) {
	got := Collect(sampleTrajectory(), Default()...)

	if len(got) != 5 {
		t.Fatalf("expected 5 metrics, got %v", got)
	}
	if got["final_spin_rate"] != 20 {
		t.Errorf("final_spin_rate = %v", got["final_spin_rate"])
	}
	if math.Abs(got["max_transverse_rate"]-5) > 1e-12 {
		t.Errorf("max_transverse_rate = %v", got["max_transverse_rate"])
	}

	wantNut := math.Acos(math.Cos(0.1)*math.Cos(0.05)) * 180 / math.Pi
	if math.Abs(got["max_nutation_deg"]-wantNut) > 1e-9 {
		t.Errorf("max_nutation_deg = %v, want %v", got["max_nutation_deg"], wantNut)
	}
	wantPrec := math.Acos(math.Cos(0)*math.Cos(0.3)) * 180 / math.Pi
	if math.Abs(got["final_precession_deg"]-wantPrec) > 1e-9 {
		t.Errorf("final_precession_deg = %v, want %v", got["final_precession_deg"], wantPrec)
	}
	// the sample at t=1 nutates about 6.4°, over the 5° limit
	if got["stability"] != 0 {
		t.Errorf("stability = %v, want 0", got["stability"])
	}
}

func TestCollectResets(t *testing.T) {
	m := NewMaxTransverseRate()
	Collect(sampleTrajectory(), m)

	empty := dynamo.NewTrajectory(0)
	if got := Collect(empty, m)["max_transverse_rate"]; got != 0 {
		t.Errorf("expected metric reset between collections, got %v", got)
	}
}

func TestStability(t *testing.T) {
	s := NewStability(5)
	if s.Value() != 1 {
		t.Error("expected full stability with no samples")
	}

	// 0.05 rad is about 2.9°, under the limit
	s.Observe(dynamo.State{0, 0, 1, 0, 0, 0}, 0)
	s.Observe(dynamo.State{0, 0, 1, 0, 0.05, 0}, 1)
	if s.Value() != 1 {
		t.Errorf("below limit: expected 1, got %v", s.Value())
	}

	// 0.5 rad is about 28.6°, over it; later calm samples do not recover
	s.Observe(dynamo.State{0, 0, 1, 0, 0.5, 0}, 2)
	s.Observe(dynamo.State{0, 0, 1, 0, 0, 0}, 3)
	if s.Value() != 0 {
		t.Errorf("above limit: expected 0, got %v", s.Value())
	}

	s.Reset()
	if s.Value() != 1 {
		t.Error("expected reset")
	}
}

func TestFinalEnergy(t *testing.T) {
	d := physics.DefaultDesign()
	v, err := physics.NewSpinVehicle(d, zero{}, zero{})
	if err != nil {
		t.Fatal(err)
	}

	e := NewFinalEnergy(v)
	e.Observe(dynamo.State{0, 0, 2, 0, 0, 0}, 0)
	if math.Abs(e.Value()-2*d.Izz) > 1e-12 {
		t.Errorf("expected %v, got %v", 2*d.Izz, e.Value())
	}
}

func TestShortStateIgnored(t *testing.T) {
	for _, m := range Default() {
		m.Observe(dynamo.State{1, 2}, 0)
	}
}

type zero struct{}

func (zero) Thrust(float64) float64 { return 0 }
