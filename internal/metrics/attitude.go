package metrics

import (
	"math"

	"github.com/san-kum/spinsim/internal/dynamo"
	"github.com/san-kum/spinsim/internal/physics"
)

// DefaultNutationLimit is the cone angle, in degrees, above which a sample
// counts as unstable.
const DefaultNutationLimit = 5.0

func cone(a, b float64) float64 {
	c := math.Max(-1, math.Min(1, math.Cos(a)*math.Cos(b)))
	return math.Acos(c) * 180 / math.Pi
}

type MaxNutation struct {
	name  string
	max   float64
	valid bool
}

func NewMaxNutation() *MaxNutation {
	return &MaxNutation{name: "max_nutation_deg"}
}

func (m *MaxNutation) Name() string { return m.name }

func (m *MaxNutation) Observe(x dynamo.State, t float64) {
	if len(x) < physics.StateDim {
		return
	}
	n := cone(x[physics.Theta], x[physics.Phi])
	if !m.valid || n > m.max {
		m.max = n
		m.valid = true
	}
}

func (m *MaxNutation) Value() float64 { return m.max }

func (m *MaxNutation) Reset() {
	m.max = 0
	m.valid = false
}

type FinalPrecession struct {
	name string
	last float64
}

func NewFinalPrecession() *FinalPrecession {
	return &FinalPrecession{name: "final_precession_deg"}
}

func (f *FinalPrecession) Name() string { return f.name }

func (f *FinalPrecession) Observe(x dynamo.State, t float64) {
	if len(x) < physics.StateDim {
		return
	}
	f.last = cone(x[physics.Theta], x[physics.Psi])
}

func (f *FinalPrecession) Value() float64 { return f.last }
func (f *FinalPrecession) Reset()         { f.last = 0 }

// Stability is 1 while the nutation of every sample stays under limit and 0
// once any sample exceeds it.
type Stability struct {
	name       string
	limit      float64
	violations int
}

func NewStability(limit float64) *Stability {
	return &Stability{
		name:  "stability",
		limit: limit,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(x dynamo.State, t float64) {
	if len(x) < physics.StateDim {
		return
	}
	if cone(x[physics.Theta], x[physics.Phi]) > s.limit {
		s.violations++
	}
}

func (s *Stability) Value() float64 {
	if s.violations > 0 {
		return 0
	}
	return 1
}

func (s *Stability) Reset() {
	s.violations = 0
}
