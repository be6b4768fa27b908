package integrators

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/spinsim/internal/dynamo"
)

// Dormand-Prince coefficients (RK45)
var (
	a2 = 1.0 / 5.0
	a3 = 3.0 / 10.0
	a4 = 4.0 / 5.0
	a5 = 8.0 / 9.0

	b21 = 1.0 / 5.0
	b31 = 3.0 / 40.0
	b32 = 9.0 / 40.0
	b41 = 44.0 / 45.0
	b42 = -56.0 / 15.0
	b43 = 32.0 / 9.0
	b51 = 19372.0 / 6561.0
	b52 = -25360.0 / 2187.0
	b53 = 64448.0 / 6561.0
	b54 = -212.0 / 729.0
	b61 = 9017.0 / 3168.0
	b62 = -355.0 / 33.0
	b63 = 46732.0 / 5247.0
	b64 = 49.0 / 176.0
	b65 = -5103.0 / 18656.0

	c1 = 35.0 / 384.0
	c3 = 500.0 / 1113.0
	c4 = 125.0 / 192.0
	c5 = -2187.0 / 6784.0
	c6 = 11.0 / 84.0

	dc1 = c1 - 5179.0/57600.0
	dc3 = c3 - 7571.0/16695.0
	dc4 = c4 - 393.0/640.0
	dc5 = c5 - -92097.0/339200.0
	dc6 = c6 - 187.0/2100.0
	dc7 = -1.0 / 40.0
)

const epsilon = 0x1p-52

// RK45 is the Dormand-Prince 5(4) embedded pair with local error control.
// The fifth-order solution is propagated; its last stage is reused as the
// first stage of the next step. Output between accepted steps comes from
// cubic Hermite interpolation.
type RK45 struct {
	cfg      dynamo.Config
	safety   float64
	minScale float64
	maxScale float64
}

func NewRK45(cfg dynamo.Config) *RK45 {
	return &RK45{
		cfg:      cfg,
		safety:   0.9,
		minScale: 0.2,
		maxScale: 10.0,
	}
}

func (r *RK45) Name() string { return "rk45" }

// StepResult is one attempted step from (t, x) with derivative k1 = f(t, x).
type StepResult struct {
	X       dynamo.State
	Deriv   dynamo.State
	ErrNorm float64
}

// StepAdaptive attempts a single step of size h and returns the fifth-order
// solution, its derivative and the scaled RMS error estimate (accept <= 1).
func (r *RK45) StepAdaptive(dyn dynamo.System, x, k1 dynamo.State, t, h float64) (StepResult, error) {
	n := len(x)
	stage := make(dynamo.State, n)

	for i := 0; i < n; i++ {
		stage[i] = x[i] + h*b21*k1[i]
	}
	k2, err := dyn.Derive(stage, t+a2*h)
	if err != nil {
		return StepResult{}, err
	}

	for i := 0; i < n; i++ {
		stage[i] = x[i] + h*(b31*k1[i]+b32*k2[i])
	}
	k3, err := dyn.Derive(stage, t+a3*h)
	if err != nil {
		return StepResult{}, err
	}

	for i := 0; i < n; i++ {
		stage[i] = x[i] + h*(b41*k1[i]+b42*k2[i]+b43*k3[i])
	}
	k4, err := dyn.Derive(stage, t+a4*h)
	if err != nil {
		return StepResult{}, err
	}

	for i := 0; i < n; i++ {
		stage[i] = x[i] + h*(b51*k1[i]+b52*k2[i]+b53*k3[i]+b54*k4[i])
	}
	k5, err := dyn.Derive(stage, t+a5*h)
	if err != nil {
		return StepResult{}, err
	}

	for i := 0; i < n; i++ {
		stage[i] = x[i] + h*(b61*k1[i]+b62*k2[i]+b63*k3[i]+b64*k4[i]+b65*k5[i])
	}
	k6, err := dyn.Derive(stage, t+h)
	if err != nil {
		return StepResult{}, err
	}

	xNew := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		xNew[i] = x[i] + h*(c1*k1[i]+c3*k3[i]+c4*k4[i]+c5*k5[i]+c6*k6[i])
	}

	k7, err := dyn.Derive(xNew, t+h)
	if err != nil {
		return StepResult{}, err
	}

	sum := 0.0
	for i := 0; i < n; i++ {
		errEst := h * (dc1*k1[i] + dc3*k3[i] + dc4*k4[i] + dc5*k5[i] + dc6*k6[i] + dc7*k7[i])
		scale := r.cfg.AbsTol + r.cfg.RelTol*math.Max(math.Abs(x[i]), math.Abs(xNew[i]))
		sum += (errEst / scale) * (errEst / scale)
	}

	return StepResult{X: xNew, Deriv: k7, ErrNorm: math.Sqrt(sum / float64(n))}, nil
}

// nextStep scales h from the error estimate of the step just attempted.
func (r *RK45) nextStep(h, errNorm float64, accepted bool) float64 {
	var scale float64
	switch {
	case errNorm == 0:
		scale = r.maxScale
	case accepted:
		scale = math.Min(r.maxScale, r.safety*math.Pow(errNorm, -0.2))
	default:
		scale = math.Max(r.minScale, r.safety*math.Pow(errNorm, -0.25))
	}
	return h * scale
}

// Integrate advances dyn from x0 at span[0] and records the state at every
// time in span. No trajectory is returned on failure.
func (r *RK45) Integrate(ctx context.Context, dyn dynamo.System, x0 dynamo.State, span []float64) (*dynamo.Trajectory, error) {
	if err := validate(r.cfg, dyn, x0, span); err != nil {
		return nil, err
	}

	tr := dynamo.NewTrajectory(len(span))
	t := span[0]
	tEnd := span[len(span)-1]
	x := x0.Clone()
	tr.Append(t, x)
	if len(span) == 1 {
		return tr, nil
	}

	k1, err := dyn.Derive(x, t)
	tr.Stats.Evaluations++
	if err != nil {
		return nil, &dynamo.SimulationError{Step: 0, Time: t, State: x.Clone(), Wrapped: err}
	}

	h := r.cfg.InitialStep
	if h <= 0 {
		h = 1e-3 * (tEnd - t)
	}
	next := 1
	lastRejected := false

	for steps := 0; next < len(span); steps++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if steps >= r.cfg.MaxSteps {
			return nil, &dynamo.SimulationError{
				Step: steps, Time: t, State: x.Clone(),
				Wrapped: fmt.Errorf("%w: exceeded %d steps before t = %g", dynamo.ErrIntegrationFailure, r.cfg.MaxSteps, tEnd),
			}
		}

		if r.cfg.MaxStep > 0 {
			h = math.Min(h, r.cfg.MaxStep)
		}
		last := false
		if t+h >= tEnd {
			h = tEnd - t
			last = true
		}
		if minH := r.minStep(t); !last && h < minH {
			return nil, &dynamo.SimulationError{
				Step: steps, Time: t, State: x.Clone(),
				Wrapped: fmt.Errorf("%w: step size %g below minimum %g", dynamo.ErrIntegrationFailure, h, minH),
			}
		}

		res, err := r.StepAdaptive(dyn, x, k1, t, h)
		tr.Stats.Evaluations += 6
		if err != nil {
			return nil, &dynamo.SimulationError{Step: steps, Time: t, State: x.Clone(), Wrapped: err}
		}
		if math.IsNaN(res.ErrNorm) || math.IsInf(res.ErrNorm, 0) {
			return nil, &dynamo.SimulationError{
				Step: steps, Time: t, State: x.Clone(),
				Wrapped: fmt.Errorf("%w: non-finite error estimate with h = %g", dynamo.ErrIntegrationFailure, h),
			}
		}

		if res.ErrNorm > 1 {
			tr.Stats.Rejected++
			lastRejected = true
			h = r.nextStep(h, res.ErrNorm, false)
			continue
		}

		tNew := t + h
		if last {
			tNew = tEnd
		}
		if err := checkStep(dyn, x, res.X); err != nil {
			return nil, &dynamo.SimulationError{Step: steps, Time: t, State: x.Clone(), Wrapped: err}
		}
		for next < len(span) && span[next] <= tNew {
			tr.Append(span[next], hermite(t, x, k1, tNew, res.X, res.Deriv, span[next]))
			next++
		}

		tr.Stats.Accepted++
		hNext := r.nextStep(h, res.ErrNorm, true)
		if lastRejected {
			hNext = math.Min(hNext, h)
		}
		lastRejected = false
		t, x, k1, h = tNew, res.X, res.Deriv, hNext
	}

	return tr, nil
}

func (r *RK45) minStep(t float64) float64 {
	return math.Max(r.cfg.MinStep, 16*epsilon*math.Abs(t))
}

// hermite interpolates the cubic through (t0, x0, f0) and (t1, x1, f1) at tq.
func hermite(t0 float64, x0, f0 dynamo.State, t1 float64, x1, f1 dynamo.State, tq float64) dynamo.State {
	if tq == t1 {
		return x1.Clone()
	}
	if tq == t0 {
		return x0.Clone()
	}

	h := t1 - t0
	s := (tq - t0) / h
	s2 := s * s
	s3 := s2 * s
	h00 := 2*s3 - 3*s2 + 1
	h10 := s3 - 2*s2 + s
	h01 := -2*s3 + 3*s2
	h11 := s3 - s2

	out := make(dynamo.State, len(x0))
	for i := range out {
		out[i] = h00*x0[i] + h10*h*f0[i] + h01*x1[i] + h11*h*f1[i]
	}
	return out
}
