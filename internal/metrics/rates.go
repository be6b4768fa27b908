package metrics

import (
	"math"

	"github.com/san-kum/spinsim/internal/dynamo"
	"github.com/san-kum/spinsim/internal/physics"
)

// FinalSpinRate reports wz at the last observed sample, in rad/s.
type FinalSpinRate struct {
	name string
	last float64
}

func NewFinalSpinRate() *FinalSpinRate {
	return &FinalSpinRate{name: "final_spin_rate"}
}

func (f *FinalSpinRate) Name() string { return f.name }

func (f *FinalSpinRate) Observe(x dynamo.State, t float64) {
	if len(x) < physics.StateDim {
		return
	}
	f.last = x[physics.WZ]
}

func (f *FinalSpinRate) Value() float64 { return f.last }
func (f *FinalSpinRate) Reset()         { f.last = 0 }

// MaxTransverseRate reports the peak of sqrt(wx² + wy²).
type MaxTransverseRate struct {
	name string
	max  float64
}

func NewMaxTransverseRate() *MaxTransverseRate {
	return &MaxTransverseRate{name: "max_transverse_rate"}
}

func (m *MaxTransverseRate) Name() string { return m.name }

func (m *MaxTransverseRate) Observe(x dynamo.State, t float64) {
	if len(x) < physics.StateDim {
		return
	}
	m.max = math.Max(m.max, math.Hypot(x[physics.WX], x[physics.WY]))
}

func (m *MaxTransverseRate) Value() float64 { return m.max }
func (m *MaxTransverseRate) Reset()         { m.max = 0 }

// FinalEnergy reports the system energy at the last observed sample.
type FinalEnergy struct {
	name string
	last float64
	sys  dynamo.Hamiltonian
}

func NewFinalEnergy(sys dynamo.Hamiltonian) *FinalEnergy {
	return &FinalEnergy{
		name: "final_kinetic_energy",
		sys:  sys,
	}
}

func (e *FinalEnergy) Name() string { return e.name }

func (e *FinalEnergy) Observe(x dynamo.State, t float64) {
	if len(x) < physics.StateDim {
		return
	}
	e.last = e.sys.Energy(x)
}

func (e *FinalEnergy) Value() float64 { return e.last }
func (e *FinalEnergy) Reset()         { e.last = 0 }
