// Package experiment assembles a spin-up run from a design, two motors and a
// solver, and executes single runs or parallel parameter sweeps.
package experiment

import (
	"context"
	"fmt"
	"time"

	"github.com/san-kum/spinsim/internal/analysis"
	"github.com/san-kum/spinsim/internal/config"
	"github.com/san-kum/spinsim/internal/dynamo"
	"github.com/san-kum/spinsim/internal/logging"
	"github.com/san-kum/spinsim/internal/metrics"
	"github.com/san-kum/spinsim/internal/motor"
	"github.com/san-kum/spinsim/internal/physics"
	"github.com/san-kum/spinsim/internal/rasp"
	"github.com/san-kum/spinsim/internal/storage"
)

// MotorSpec is a thrust curve plus the ignition delay and grain count
// applied to it at setup.
type MotorSpec struct {
	Source string
	Motor  *motor.Motor
	Delay  float64
	Grains int
}

type Config struct {
	Label      string
	Design     physics.Design
	Motors     [2]MotorSpec
	InitState  dynamo.State
	Span       []float64
	Integrator string
	Solver     dynamo.Config
}

// Clone copies the slices so a sweep can modify a run without touching the
// base. Motor curves are immutable and stay shared.
func (c Config) Clone() Config {
	c.InitState = c.InitState.Clone()
	c.Span = append([]float64(nil), c.Span...)
	return c
}

type Result struct {
	Label      string
	Trajectory *dynamo.Trajectory
	Nutation   []float64
	Precession []float64
	Metrics    map[string]float64
}

// Record returns the result in the form the run store persists.
func (r *Result) Record() *storage.Record {
	return &storage.Record{
		Trajectory: r.Trajectory,
		Nutation:   r.Nutation,
		Precession: r.Precession,
	}
}

type Experiment struct {
	cfg        Config
	vehicle    *physics.SpinVehicle
	integrator dynamo.Integrator
	metrics    []metrics.Metric
}

func New(cfg Config) *Experiment {
	return &Experiment{cfg: cfg}
}

// FromConfig loads both motors and converts a file configuration into an
// experiment configuration.
func FromConfig(ctx context.Context, c *config.Config) (Config, error) {
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	d, err := c.VehicleDesign()
	if err != nil {
		return Config{}, err
	}

	out := Config{
		Design:     d,
		InitState:  c.InitialState(),
		Span:       c.Span(),
		Integrator: c.Integrator,
		Solver:     c.SolverConfig(),
	}
	for i, mc := range c.Motors {
		m, err := rasp.Open(ctx, mc.Source)
		if err != nil {
			return Config{}, fmt.Errorf("motor %d: %w", i+1, err)
		}
		out.Motors[i] = MotorSpec{Source: mc.Source, Motor: m, Delay: mc.Delay, Grains: mc.Grains}
	}
	return out, nil
}

// Setup builds the vehicle, integrator and metrics. It must be called
// before Run.
func (e *Experiment) Setup(reg *Registry) error {
	var thrust [2]physics.ThrustSource
	for i, spec := range e.cfg.Motors {
		p, err := spec.profile()
		if err != nil {
			return fmt.Errorf("motor %d: %w", i+1, err)
		}
		thrust[i] = p
	}

	vehicle, err := physics.NewSpinVehicle(e.cfg.Design, thrust[0], thrust[1])
	if err != nil {
		return err
	}

	integ, err := reg.GetIntegrator(e.cfg.Integrator, e.cfg.Solver)
	if err != nil {
		return err
	}

	e.vehicle = vehicle
	e.integrator = integ
	e.metrics = append(metrics.Default(), metrics.NewFinalEnergy(vehicle))
	return nil
}

func (s MotorSpec) profile() (*motor.Profile, error) {
	if s.Motor == nil || s.Motor.Profile == nil {
		return nil, fmt.Errorf("%w: no thrust curve", dynamo.ErrInvalidInput)
	}
	p := s.Motor.Profile
	if s.Grains > 1 {
		var err error
		if p, err = p.PerGrain(s.Grains); err != nil {
			return nil, err
		}
	}
	if s.Delay != 0 {
		return p.Delay(s.Delay)
	}
	return p, nil
}

func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	if e.vehicle == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	log := logging.FromContext(ctx).With(logging.String("integrator", e.integrator.Name()))
	if e.cfg.Label != "" {
		log = log.With(logging.String("label", e.cfg.Label))
	}

	log.Info(ctx, "run started",
		logging.Int("samples", len(e.cfg.Span)),
		logging.Float("t_end", e.cfg.Span[len(e.cfg.Span)-1]))
	start := time.Now()

	tr, err := e.integrator.Integrate(ctx, e.vehicle, e.cfg.InitState, e.cfg.Span)
	if err != nil {
		log.Error(ctx, "run failed", logging.Err(err))
		return nil, err
	}
	log.Debug(ctx, "solver stats",
		logging.Int("accepted", tr.Stats.Accepted),
		logging.Int("rejected", tr.Stats.Rejected),
		logging.Int("evaluations", tr.Stats.Evaluations))

	nut, prec, err := analysis.FromTrajectory(tr)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Label:      e.cfg.Label,
		Trajectory: tr,
		Nutation:   nut,
		Precession: prec,
		Metrics:    metrics.Collect(tr, e.metrics...),
	}

	log.Info(ctx, "run finished",
		logging.Any("elapsed", time.Since(start)),
		logging.Float("final_spin_rate", res.Metrics["final_spin_rate"]),
		logging.Float("max_nutation_deg", res.Metrics["max_nutation_deg"]))
	return res, nil
}

// Vehicle returns the system built by Setup.
func (e *Experiment) Vehicle() *physics.SpinVehicle {
	return e.vehicle
}
