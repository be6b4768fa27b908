package physics

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/spinsim/internal/dynamo"
)

func TestNewDesignRejectsNonPositive(t *testing.T) {
	valid := []float64{1, 2, 3, 4, 5, 6, 7}
	names := []string{"r1", "r2", "d1", "d2", "Ixx", "Iyy", "Izz"}

	for i, name := range names {
		for _, bad := range []float64{0, -1, math.NaN(), math.Inf(1)} {
			p := append([]float64(nil), valid...)
			p[i] = bad
			_, err := NewDesign(p[0], p[1], p[2], p[3], p[4], p[5], p[6])
			if !errors.Is(err, dynamo.ErrInvalidParameter) {
				t.Errorf("%s=%v: expected ErrInvalidParameter, got %v", name, bad, err)
				continue
			}
			var perr *dynamo.ParameterError
			if !errors.As(err, &perr) || perr.Name != name {
				t.Errorf("%s=%v: error does not name the parameter: %v", name, bad, err)
			}
		}
	}
}

func TestDefaultDesignValid(t *testing.T) {
	d := DefaultDesign()
	if err := d.Validate(); err != nil {
		t.Fatalf("default design invalid: %v", err)
	}
	if math.Abs(d.R1-0.1143) > 1e-12 {
		t.Errorf("expected r1 = 0.1143 m, got %v", d.R1)
	}
	if d.Izz >= d.Ixx {
		t.Error("reference vehicle should be long and slender (Izz < Ixx)")
	}
}

func TestMomentsHandComputed(t *testing.T) {
	d, err := NewDesign(1, 2, 3, 4, 5, 6, 7)
	if err != nil {
		t.Fatal(err)
	}

	got := d.Moments(25.0, 6.0)
	expected := Vec3{0.0, 51.0, 37.0}
	if got != expected {
		t.Errorf("Moments(25, 6) = %v, want %v", got, expected)
	}
}

func TestMomentsRollIsZero(t *testing.T) {
	designs := []Design{DefaultDesign(), {R1: 0.3, R2: 0.1, D1: 2, D2: 0.5, Ixx: 1, Iyy: 2, Izz: 3}}
	thrusts := [][2]float64{{0, 0}, {1, 0}, {0, 1}, {250, 13.5}, {1e6, 1e-6}}

	for _, d := range designs {
		for _, f := range thrusts {
			if m := d.Moments(f[0], f[1]); m[0] != 0 {
				t.Errorf("Mx = %v for thrust %v", m[0], f)
			}
		}
	}
}

func TestMomentsLinear(t *testing.T) {
	d, err := NewDesign(0.11, 0.13, 0.6, 0.7, 50, 55, 1.2)
	if err != nil {
		t.Fatal(err)
	}

	base := d.Moments(120, 80)
	for _, a := range []float64{0.5, 2, 10} {
		scaled := d.Moments(a*120, a*80)
		for i := range scaled {
			if math.Abs(scaled[i]-a*base[i]) > 1e-9*math.Max(1, math.Abs(a*base[i])) {
				t.Errorf("a=%v axis %d: got %v, want %v", a, i, scaled[i], a*base[i])
			}
		}
	}
}

func TestGetParams(t *testing.T) {
	d, err := NewDesign(1, 2, 3, 4, 5, 6, 7)
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]float64{"r1": 1, "r2": 2, "d1": 3, "d2": 4, "Ixx": 5, "Iyy": 6, "Izz": 7}
	got := d.GetParams()
	if len(got) != len(want) {
		t.Fatalf("got %d params, want %d", len(got), len(want))
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %v, want %v", k, got[k], v)
		}
	}

	d.Iyy = 0
	var perr *dynamo.ParameterError
	if err := d.Validate(); !errors.As(err, &perr) || perr.Name != "Iyy" {
		t.Errorf("expected ParameterError for Iyy, got %v", err)
	}
}
