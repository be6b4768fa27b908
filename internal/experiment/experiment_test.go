package experiment

import (
	"bytes"
	"context"
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/san-kum/spinsim/internal/config"
	"github.com/san-kum/spinsim/internal/dynamo"
	"github.com/san-kum/spinsim/internal/logging"
	"github.com/san-kum/spinsim/internal/motor"
	"github.com/san-kum/spinsim/internal/physics"
)

func triangleMotor(t *testing.T, peak float64) *motor.Motor {
	t.Helper()
	p, err := motor.NewProfile([]float64{0, 0.1, 0.5}, []float64{0, peak, 0})
	if err != nil {
		t.Fatal(err)
	}
	return &motor.Motor{Name: "tri", Profile: p}
}

func baseConfig(t *testing.T, m *motor.Motor) Config {
	return Config{
		Design:     physics.DefaultDesign(),
		Motors:     [2]MotorSpec{{Motor: m}, {Motor: m}},
		InitState:  make(dynamo.State, physics.StateDim),
		Span:       dynamo.Linspace(0, 1, 101),
		Integrator: "rk45",
		Solver:     dynamo.DefaultConfig(),
	}
}

func run(t *testing.T, cfg Config) *Result {
	t.Helper()
	exp := New(cfg)
	if err := exp.Setup(NewRegistry()); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	res, err := exp.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	return res
}

func TestSymmetricSpinUp(t *testing.T) {
	g := NewWithT(t)
	m := triangleMotor(t, 100)
	cfg := baseConfig(t, m)
	d := cfg.Design

	res := run(t, cfg)

	// equal motors and moment arms: pure roll, wz = (r1+r2)·J / Izz
	want := (d.R1 + d.R2) * m.Profile.TotalImpulse() / d.Izz
	final := physics.BodyStateOf(res.Trajectory.Final())
	g.Expect(final.WZ).To(BeNumerically("~", want, want*1e-4))
	g.Expect(final.WX).To(BeNumerically("~", 0, 1e-12))
	g.Expect(final.WY).To(BeNumerically("~", 0, 1e-12))
	g.Expect(res.Metrics["max_nutation_deg"]).To(BeNumerically("~", 0, 1e-9))
	g.Expect(res.Metrics["final_spin_rate"]).To(Equal(final.WZ))
	g.Expect(res.Nutation).To(HaveLen(101))
	g.Expect(res.Precession).To(HaveLen(101))
	g.Expect(res.Trajectory.Times).To(Equal(cfg.Span))
}

func TestZeroThrustZeroState(t *testing.T) {
	p, err := motor.NewProfile([]float64{0, 1}, []float64{0, 0})
	if err != nil {
		t.Fatal(err)
	}
	res := run(t, baseConfig(t, &motor.Motor{Name: "dud", Profile: p}))

	for i, x := range res.Trajectory.States {
		for j, v := range x {
			if v != 0 {
				t.Fatalf("state[%d][%d] = %v, want 0", i, j, v)
			}
		}
	}
}

func TestDeterministic(t *testing.T) {
	cfg := baseConfig(t, triangleMotor(t, 80))
	cfg.Motors[1].Delay = 0.02

	a := run(t, cfg)
	b := run(t, cfg)
	if !reflect.DeepEqual(a, b) {
		t.Error("identical runs produced different results")
	}
}

func TestDelayCausesNutation(t *testing.T) {
	cfg := baseConfig(t, triangleMotor(t, 100))
	cfg.Motors[1].Delay = 0.05

	res := run(t, cfg)
	if res.Metrics["max_transverse_rate"] <= 0 {
		t.Error("expected transverse rates from an ignition delay")
	}
	if res.Metrics["max_nutation_deg"] <= 0 {
		t.Error("expected nutation from an ignition delay")
	}
}

func TestGrainsScaleImpulse(t *testing.T) {
	m := triangleMotor(t, 90)
	one := run(t, baseConfig(t, m))

	cfg := baseConfig(t, m)
	cfg.Motors[0].Grains = 3
	cfg.Motors[1].Grains = 3
	three := run(t, cfg)

	ratio := one.Metrics["final_spin_rate"] / three.Metrics["final_spin_rate"]
	if math.Abs(ratio-3) > 1e-4 {
		t.Errorf("expected 3x spin rate ratio, got %v", ratio)
	}
}

func TestSetupErrors(t *testing.T) {
	m := triangleMotor(t, 10)

	cfg := baseConfig(t, m)
	cfg.Design.Izz = 0
	if err := New(cfg).Setup(NewRegistry()); !errors.Is(err, dynamo.ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter, got %v", err)
	}

	cfg = baseConfig(t, m)
	cfg.Integrator = "leapfrog"
	if err := New(cfg).Setup(NewRegistry()); !errors.Is(err, dynamo.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}

	cfg = baseConfig(t, m)
	cfg.Motors[1].Motor = nil
	if err := New(cfg).Setup(NewRegistry()); !errors.Is(err, dynamo.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}

	if _, err := New(cfg).Run(context.Background()); err == nil {
		t.Error("expected error running without setup")
	}
}

func TestRunPropagatesSingularity(t *testing.T) {
	cfg := baseConfig(t, triangleMotor(t, 10))
	cfg.InitState[physics.Theta] = math.Pi / 2

	exp := New(cfg)
	if err := exp.Setup(NewRegistry()); err != nil {
		t.Fatal(err)
	}
	res, err := exp.Run(context.Background())
	if !errors.Is(err, dynamo.ErrNumericalSingularity) {
		t.Errorf("expected ErrNumericalSingularity, got %v", err)
	}
	if res != nil {
		t.Error("expected no result on failure")
	}
}

func TestRunLogs(t *testing.T) {
	var buf bytes.Buffer
	ctx := logging.ContextWithLogger(context.Background(), logging.New(logging.Config{Level: "debug", Output: &buf}))

	exp := New(baseConfig(t, triangleMotor(t, 10)))
	if err := exp.Setup(NewRegistry()); err != nil {
		t.Fatal(err)
	}
	if _, err := exp.Run(ctx); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	for _, want := range []string{"run started", "solver stats", "run finished", "integrator=rk45"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q", want)
		}
	}
}

func TestRK4MatchesRK45(t *testing.T) {
	cfg := baseConfig(t, triangleMotor(t, 100))
	cfg.Motors[1].Delay = 0.03
	a := run(t, cfg)

	cfg.Integrator = "rk4"
	cfg.Solver.MaxStep = 1e-3
	b := run(t, cfg)

	for i := range a.Trajectory.States {
		for j := range a.Trajectory.States[i] {
			if math.Abs(a.Trajectory.States[i][j]-b.Trajectory.States[i][j]) > 1e-5 {
				t.Fatalf("sample %d component %d: rk45 %v vs rk4 %v", i, j, a.Trajectory.States[i][j], b.Trajectory.States[i][j])
			}
		}
	}
}

func TestFromConfig(t *testing.T) {
	g := NewWithT(t)

	cfg, err := FromConfig(context.Background(), config.DefaultConfig())
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(cfg.Motors[0].Motor.Name).To(Equal("I200W"))
	g.Expect(cfg.Motors[1].Delay).To(Equal(config.DefaultDelay))
	g.Expect(cfg.Motors[0].Grains).To(Equal(config.DefaultGrains))
	g.Expect(cfg.Span).To(HaveLen(config.DefaultSamples))
	g.Expect(cfg.Design).To(Equal(physics.DefaultDesign()))

	bad := config.DefaultConfig()
	bad.Motors[0].Source = "catalog:NOPE"
	_, err = FromConfig(context.Background(), bad)
	g.Expect(err).To(HaveOccurred())
}

func TestDefaultRun(t *testing.T) {
	if testing.Short() {
		t.Skip("full-length run")
	}
	g := NewWithT(t)

	cfg, err := FromConfig(context.Background(), config.DefaultConfig())
	g.Expect(err).NotTo(HaveOccurred())

	res := run(t, cfg)
	g.Expect(res.Metrics["final_spin_rate"]).To(BeNumerically(">", 0))
	g.Expect(res.Metrics["max_nutation_deg"]).To(BeNumerically(">", 0))
	g.Expect(res.Metrics["max_nutation_deg"]).To(BeNumerically("<", 90))
}
