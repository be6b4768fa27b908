package automation

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/san-kum/spinsim/internal/dynamo"
	"github.com/san-kum/spinsim/internal/experiment"
	"github.com/san-kum/spinsim/internal/motor"
	"github.com/san-kum/spinsim/internal/physics"
)

func baseConfig(t *testing.T) experiment.Config {
	t.Helper()
	p, err := motor.NewProfile([]float64{0, 0.05, 0.1}, []float64{0, 80, 0})
	if err != nil {
		t.Fatal(err)
	}
	m := &motor.Motor{Name: "T", Profile: p}
	return experiment.Config{
		Design:     physics.DefaultDesign(),
		Motors:     [2]experiment.MotorSpec{{Motor: m, Grains: 1}, {Motor: m, Grains: 1}},
		InitState:  make(dynamo.State, physics.StateDim),
		Span:       dynamo.Linspace(0, 0.5, 26),
		Integrator: "rk45",
		Solver:     dynamo.DefaultConfig(),
	}
}

func TestMonteCarloSeeded(t *testing.T) {
	g := NewWithT(t)
	cfg := MonteCarloConfig{
		Dispersions: map[string]float64{"delay2": 0.01, "d2": 0.01},
		NumTrials:   8,
		Seed:        42,
		Parallel:    4,
	}

	a, err := RunMonteCarlo(context.Background(), experiment.NewRegistry(), baseConfig(t), cfg)
	g.Expect(err).NotTo(HaveOccurred())
	b, err := RunMonteCarlo(context.Background(), experiment.NewRegistry(), baseConfig(t), cfg)
	g.Expect(err).NotTo(HaveOccurred())

	g.Expect(a).To(HaveLen(8))
	for i := range a {
		g.Expect(a[i].TrialID).To(Equal(i))
		g.Expect(a[i].Params).To(Equal(b[i].Params))
		g.Expect(a[i].Metrics).To(Equal(b[i].Metrics))
		g.Expect(a[i].Params["delay2"]).To(BeNumerically(">=", 0))
	}

	s := Summarize(a, "max_nutation_deg")
	g.Expect(s.Trials).To(Equal(8))
	g.Expect(s.Min).To(BeNumerically("<=", s.Mean))
	g.Expect(s.Mean).To(BeNumerically("<=", s.Max))
	g.Expect(s.StdDev).To(BeNumerically(">=", 0))
	g.Expect(s.StableRatio).To(BeNumerically(">=", 0))
	g.Expect(s.StableRatio).To(BeNumerically("<=", 1))
}

func TestMonteCarloZeroDispersionIsStable(t *testing.T) {
	g := NewWithT(t)
	res, err := RunMonteCarlo(context.Background(), experiment.NewRegistry(), baseConfig(t),
		MonteCarloConfig{Dispersions: map[string]float64{"delay1": 0}, NumTrials: 3, Seed: 1})
	g.Expect(err).NotTo(HaveOccurred())
	for _, r := range res {
		g.Expect(r.Stable).To(BeTrue())
		g.Expect(r.Metrics["max_nutation_deg"]).To(BeNumerically("<", 1e-9))
	}
	g.Expect(Summarize(res, "max_nutation_deg").StableRatio).To(Equal(1.0))
	g.Expect(Summarize(nil, "x")).To(Equal(Summary{}))
}

func TestMonteCarloErrors(t *testing.T) {
	reg := experiment.NewRegistry()
	cases := []MonteCarloConfig{
		{NumTrials: 0},
		{NumTrials: 1, Dispersions: map[string]float64{"mass": 1}},
		{NumTrials: 1, Dispersions: map[string]float64{"d1": -1}},
	}
	for _, c := range cases {
		if _, err := RunMonteCarlo(context.Background(), reg, baseConfig(t), c); !errors.Is(err, dynamo.ErrInvalidInput) {
			t.Errorf("%+v: expected ErrInvalidInput, got %v", c, err)
		}
	}
}

func TestParseDispersions(t *testing.T) {
	g := NewWithT(t)
	d, err := ParseDispersions("delay2=0.005, d1 = 0.01")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(d).To(Equal(map[string]float64{"delay2": 0.005, "d1": 0.01}))

	for _, bad := range []string{"", "delay2", "delay2=x"} {
		_, err := ParseDispersions(bad)
		g.Expect(errors.Is(err, dynamo.ErrInvalidInput)).To(BeTrue(), bad)
	}
}

func TestScenario(t *testing.T) {
	g := NewWithT(t)
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	g.Expect(os.WriteFile(path, []byte(`
name: ignition
description: symmetric then late second motor
steps:
  - label: symmetric
    preset: symmetric
  - preset: symmetric
    integrator: rk4
    params:
      delay2: 0.05
`), 0o644)).To(Succeed())

	sc, err := LoadScenario(path)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(sc.Steps).To(HaveLen(2))

	results, err := RunScenario(context.Background(), sc, experiment.NewRegistry())
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(results).To(HaveLen(2))
	g.Expect(results[0].Label).To(Equal("symmetric"))
	g.Expect(results[1].Label).To(Equal("ignition step 2"))
	g.Expect(results[0].Metrics["max_nutation_deg"]).To(BeNumerically("<", 1e-9))
	g.Expect(results[1].Metrics["max_nutation_deg"]).To(BeNumerically(">", 0))
}

func TestScenarioErrors(t *testing.T) {
	g := NewWithT(t)
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty.yaml")
	g.Expect(os.WriteFile(empty, []byte("name: nothing\n"), 0o644)).To(Succeed())
	_, err := LoadScenario(empty)
	g.Expect(errors.Is(err, dynamo.ErrInvalidInput)).To(BeTrue())

	_, err = LoadScenario(filepath.Join(dir, "missing.yaml"))
	g.Expect(err).To(HaveOccurred())

	_, err = RunScenario(context.Background(), &Scenario{Name: "x", Steps: []ScenarioStep{{Preset: "nope"}}}, experiment.NewRegistry())
	g.Expect(errors.Is(err, dynamo.ErrInvalidInput)).To(BeTrue())

	_, err = RunScenario(context.Background(), &Scenario{Name: "x", Steps: []ScenarioStep{{Params: map[string]float64{"mass": 1}}}}, experiment.NewRegistry())
	g.Expect(errors.Is(err, dynamo.ErrInvalidInput)).To(BeTrue())
}
