package dynamo

import (
	"context"
	"fmt"
	"math"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// System is a first-order ODE dX/dt = f(X, t). Derive returns an error when
// the right-hand side is undefined at (x, t).
type System interface {
	Derive(x State, t float64) (State, error)
	StateDim() int
}

// StepChecker is implemented by systems with singularities that can be
// stepped over without ever being evaluated. Integrators call CheckStep on
// every accepted step from x0 to x1.
type StepChecker interface {
	CheckStep(x0, x1 State) error
}

// Hamiltonian is implemented by systems with a conserved or monitored energy.
type Hamiltonian interface {
	Energy(x State) float64
}

// Integrator advances a system from x0 at span[0] through every time in span.
type Integrator interface {
	Name() string
	Integrate(ctx context.Context, dyn System, x0 State, span []float64) (*Trajectory, error)
}

// Config bounds the solver's step control and work budget.
type Config struct {
	RelTol      float64
	AbsTol      float64
	InitialStep float64
	MinStep     float64
	MaxStep     float64
	MaxSteps    int
}

func DefaultConfig() Config {
	return Config{
		RelTol:      1e-8,
		AbsTol:      1e-10,
		InitialStep: 1e-4,
		MinStep:     1e-12,
		MaxStep:     0.01,
		MaxSteps:    500000,
	}
}

func (c Config) Validate() error {
	if !(c.RelTol > 0) || !(c.AbsTol > 0) {
		return fmt.Errorf("%w: tolerances must be positive (rtol=%g, atol=%g)", ErrInvalidInput, c.RelTol, c.AbsTol)
	}
	if c.InitialStep < 0 || c.MinStep < 0 || c.MaxStep < 0 {
		return fmt.Errorf("%w: step sizes must not be negative", ErrInvalidInput)
	}
	if c.MaxStep > 0 && c.MinStep > c.MaxStep {
		return fmt.Errorf("%w: min step %g exceeds max step %g", ErrInvalidInput, c.MinStep, c.MaxStep)
	}
	if c.MaxSteps <= 0 {
		return fmt.Errorf("%w: max steps must be positive, got %d", ErrInvalidInput, c.MaxSteps)
	}
	return nil
}

// Stats counts the work an integrator performed.
type Stats struct {
	Accepted    int `json:"accepted"`
	Rejected    int `json:"rejected"`
	Evaluations int `json:"evaluations"`
}

// Trajectory holds states at exactly the requested output times.
type Trajectory struct {
	Times  []float64
	States []State
	Stats  Stats
}

func NewTrajectory(capacity int) *Trajectory {
	return &Trajectory{
		Times:  make([]float64, 0, capacity),
		States: make([]State, 0, capacity),
	}
}

func (tr *Trajectory) Append(t float64, x State) {
	tr.Times = append(tr.Times, t)
	tr.States = append(tr.States, x.Clone())
}

func (tr *Trajectory) Len() int { return len(tr.Times) }

// Component extracts state index i across all samples.
func (tr *Trajectory) Component(i int) []float64 {
	out := make([]float64, len(tr.States))
	for k, s := range tr.States {
		if i < len(s) {
			out[k] = s[i]
		}
	}
	return out
}

// Final returns the last state, or nil for an empty trajectory.
func (tr *Trajectory) Final() State {
	if len(tr.States) == 0 {
		return nil
	}
	return tr.States[len(tr.States)-1]
}

// ValidateSpan checks that span is non-empty, finite and strictly increasing.
func ValidateSpan(span []float64) error {
	if len(span) == 0 {
		return fmt.Errorf("%w: time span is empty", ErrInvalidInput)
	}
	for i, t := range span {
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return fmt.Errorf("%w: time span[%d] = %g is not finite", ErrInvalidInput, i, t)
		}
		if i > 0 && t <= span[i-1] {
			return fmt.Errorf("%w: time span[%d] = %g not greater than span[%d] = %g", ErrInvalidInput, i, t, i-1, span[i-1])
		}
	}
	return nil
}

// Linspace returns n evenly spaced times from start to end inclusive.
func Linspace(start, end float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{start}
	}
	out := make([]float64, n)
	step := (end - start) / float64(n-1)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	out[n-1] = end
	return out
}
