package integrators

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/spinsim/internal/dynamo"
)

const defaultFixedStep = 1e-3

// RK4 is the classic fixed-step fourth-order Runge-Kutta method. Each output
// interval is split into equal sub-steps no longer than cfg.MaxStep, so
// states land exactly on the requested times without interpolation.
type RK4 struct {
	cfg            dynamo.Config
	k1, k2, k3, k4 dynamo.State
	scratch        dynamo.State
}

func NewRK4(cfg dynamo.Config) *RK4 {
	return &RK4{cfg: cfg}
}

func (r *RK4) Name() string { return "rk4" }

func (r *RK4) ensureScratch(n int) {
	if len(r.k1) != n {
		r.k1 = make(dynamo.State, n)
		r.k2 = make(dynamo.State, n)
		r.k3 = make(dynamo.State, n)
		r.k4 = make(dynamo.State, n)
		r.scratch = make(dynamo.State, n)
	}
}

func (r *RK4) Step(dyn dynamo.System, x dynamo.State, t, dt float64) (dynamo.State, error) {
	n := len(x)
	r.ensureScratch(n)

	k1, err := dyn.Derive(x, t)
	if err != nil {
		return nil, err
	}
	copy(r.k1, k1)

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*0.5*r.k1[i]
	}
	k2, err := dyn.Derive(r.scratch, t+dt*0.5)
	if err != nil {
		return nil, err
	}
	copy(r.k2, k2)

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*0.5*r.k2[i]
	}
	k3, err := dyn.Derive(r.scratch, t+dt*0.5)
	if err != nil {
		return nil, err
	}
	copy(r.k3, k3)

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*r.k3[i]
	}
	k4, err := dyn.Derive(r.scratch, t+dt)
	if err != nil {
		return nil, err
	}
	copy(r.k4, k4)

	result := make(dynamo.State, n)
	dt6 := dt / 6.0
	for i := 0; i < n; i++ {
		result[i] = x[i] + dt6*(r.k1[i]+2*r.k2[i]+2*r.k3[i]+r.k4[i])
	}

	return result, nil
}

func (r *RK4) Integrate(ctx context.Context, dyn dynamo.System, x0 dynamo.State, span []float64) (*dynamo.Trajectory, error) {
	if err := validate(r.cfg, dyn, x0, span); err != nil {
		return nil, err
	}

	maxStep := r.cfg.MaxStep
	if maxStep <= 0 {
		maxStep = defaultFixedStep
	}

	tr := dynamo.NewTrajectory(len(span))
	x := x0.Clone()
	tr.Append(span[0], x)

	steps := 0
	for k := 1; k < len(span); k++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		t0, t1 := span[k-1], span[k]
		sub := int(math.Ceil((t1 - t0) / maxStep))
		if sub < 1 {
			sub = 1
		}
		dt := (t1 - t0) / float64(sub)

		for j := 0; j < sub; j++ {
			if steps >= r.cfg.MaxSteps {
				return nil, &dynamo.SimulationError{
					Step: steps, Time: t0 + float64(j)*dt, State: x.Clone(),
					Wrapped: fmt.Errorf("%w: exceeded %d steps", dynamo.ErrIntegrationFailure, r.cfg.MaxSteps),
				}
			}
			t := t0 + float64(j)*dt
			next, err := r.Step(dyn, x, t, dt)
			tr.Stats.Evaluations += 4
			if err != nil {
				return nil, &dynamo.SimulationError{Step: steps, Time: t, State: x.Clone(), Wrapped: err}
			}
			if !next.IsValid() {
				return nil, &dynamo.SimulationError{
					Step: steps, Time: t, State: x.Clone(),
					Wrapped: fmt.Errorf("%w: state diverged (NaN/Inf)", dynamo.ErrIntegrationFailure),
				}
			}
			if err := checkStep(dyn, x, next); err != nil {
				return nil, &dynamo.SimulationError{Step: steps, Time: t, State: x.Clone(), Wrapped: err}
			}
			x = next
			steps++
			tr.Stats.Accepted++
		}
		tr.Append(t1, x)
	}

	return tr, nil
}
