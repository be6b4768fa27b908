package physics

import (
	"math"

	"github.com/san-kum/spinsim/internal/dynamo"
)

const (
	inch  = 0.0254     // m
	pound = 0.45359237 // kg
)

// Design holds the vehicle's fixed geometry and principal inertias.
//
// R1, R2 are the radial offsets of the two motors from the spin axis and D1,
// D2 their longitudinal offsets from the centre of mass (m). Ixx, Iyy, Izz
// are principal moments of inertia (kg·m²).
type Design struct {
	R1, R2, D1, D2 float64
	Ixx, Iyy, Izz  float64
}

// NewDesign builds a Design, rejecting any non-positive field.
func NewDesign(r1, r2, d1, d2, ixx, iyy, izz float64) (Design, error) {
	d := Design{R1: r1, R2: r2, D1: d1, D2: d2, Ixx: ixx, Iyy: iyy, Izz: izz}
	if err := d.Validate(); err != nil {
		return Design{}, err
	}
	return d, nil
}

// DefaultDesign is the reference vehicle: motors 4.5 in off the spin axis
// and 25 in from the centre of mass, Ixx = Iyy = 185000 lb·in²,
// Izz = 3500 lb·in².
func DefaultDesign() Design {
	return Design{
		R1:  4.5 * inch,
		R2:  4.5 * inch,
		D1:  25.0 * inch,
		D2:  25.0 * inch,
		Ixx: 185000.0 * pound * inch * inch,
		Iyy: 185000.0 * pound * inch * inch,
		Izz: 3500.0 * pound * inch * inch,
	}
}

// Validate returns a *dynamo.ParameterError naming the first field that is
// not strictly positive and finite.
func (d Design) Validate() error {
	for _, p := range d.params() {
		if !(p.value > 0) || math.IsInf(p.value, 0) {
			return &dynamo.ParameterError{Name: p.name, Value: p.value}
		}
	}
	return nil
}

type namedParam struct {
	name  string
	value float64
}

func (d Design) params() []namedParam {
	return []namedParam{
		{"r1", d.R1}, {"r2", d.R2},
		{"d1", d.D1}, {"d2", d.D2},
		{"Ixx", d.Ixx}, {"Iyy", d.Iyy}, {"Izz", d.Izz},
	}
}

// GetParams returns the design keyed by field name (r1, r2, d1, d2, Ixx,
// Iyy, Izz).
func (d Design) GetParams() map[string]float64 {
	out := make(map[string]float64, 7)
	for _, p := range d.params() {
		out[p.name] = p.value
	}
	return out
}

// Vec3 is a body-frame vector (x, y, z).
type Vec3 [3]float64

// Moments returns the body-frame moment produced by the two motors. The
// motors are mounted for pitch/yaw coupling, so the roll moment is zero.
func (d Design) Moments(thrust1, thrust2 float64) Vec3 {
	return Vec3{
		0,
		thrust1*d.D1 - thrust2*d.D2,
		thrust1*d.R1 + thrust2*d.R2,
	}
}
