package experiment

import (
	"context"
	"errors"
	"testing"

	"github.com/san-kum/spinsim/internal/dynamo"
)

func TestSweepDelay(t *testing.T) {
	base := baseConfig(t, triangleMotor(t, 100))
	apply, err := SweepParam("delay2")
	if err != nil {
		t.Fatal(err)
	}

	values := []float64{0, 0.01, 0.02, 0.04}
	results, err := Sweep(context.Background(), NewRegistry(), base, values, apply, 2)
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if len(results) != len(values) {
		t.Fatalf("expected %d results, got %d", len(values), len(results))
	}

	if results[0].Metrics["max_transverse_rate"] > 1e-12 {
		t.Errorf("zero delay produced transverse rate %v", results[0].Metrics["max_transverse_rate"])
	}
	for i := 1; i < len(results); i++ {
		if results[i].Label == "" {
			t.Error("sweep result has no label")
		}
		if results[i].Metrics["max_transverse_rate"] <= results[i-1].Metrics["max_transverse_rate"] {
			t.Errorf("transverse rate did not grow with delay at %v", values[i])
		}
	}

	if base.Motors[1].Delay != 0 {
		t.Error("sweep modified the base configuration")
	}
}

func TestSweepMatchesSerialRun(t *testing.T) {
	base := baseConfig(t, triangleMotor(t, 50))
	apply, _ := SweepParam("wz0")

	results, err := Sweep(context.Background(), NewRegistry(), base, []float64{1, 2}, apply, 0)
	if err != nil {
		t.Fatal(err)
	}

	cfg := base.Clone()
	apply(&cfg, 2)
	serial := run(t, cfg)
	if results[1].Metrics["final_spin_rate"] != serial.Metrics["final_spin_rate"] {
		t.Errorf("parallel %v vs serial %v", results[1].Metrics["final_spin_rate"], serial.Metrics["final_spin_rate"])
	}
}

func TestSweepFailure(t *testing.T) {
	base := baseConfig(t, triangleMotor(t, 10))
	apply, _ := SweepParam("izz")

	_, err := Sweep(context.Background(), NewRegistry(), base, []float64{1, -1}, apply, 1)
	if !errors.Is(err, dynamo.ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter, got %v", err)
	}
}

func TestSweepParamUnknown(t *testing.T) {
	if _, err := SweepParam("mass"); !errors.Is(err, dynamo.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
	if len(SweepParams()) == 0 {
		t.Error("no sweep parameters listed")
	}
}

func TestParamValueRoundTrip(t *testing.T) {
	base := baseConfig(t, triangleMotor(t, 10))
	for i, name := range SweepParams() {
		apply, err := SweepParam(name)
		if err != nil {
			t.Fatal(err)
		}
		cfg := base.Clone()
		want := 0.5 + float64(i)
		apply(&cfg, want)
		got, err := ParamValue(cfg, name)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if got != want {
			t.Errorf("%s: got %v, want %v", name, got, want)
		}
	}
	if _, err := ParamValue(base, "mass"); !errors.Is(err, dynamo.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestRunAllKeepsOrder(t *testing.T) {
	base := baseConfig(t, triangleMotor(t, 20))
	apply, _ := SweepParam("wz0")
	var cfgs []Config
	for _, v := range []float64{3, 1, 2} {
		cfg := base.Clone()
		apply(&cfg, v)
		cfgs = append(cfgs, cfg)
	}

	results, err := RunAll(context.Background(), NewRegistry(), cfgs, 3)
	if err != nil {
		t.Fatal(err)
	}
	if !(results[0].Metrics["final_spin_rate"] > results[2].Metrics["final_spin_rate"] &&
		results[2].Metrics["final_spin_rate"] > results[1].Metrics["final_spin_rate"]) {
		t.Errorf("results out of order: %v %v %v", results[0].Metrics["final_spin_rate"],
			results[1].Metrics["final_spin_rate"], results[2].Metrics["final_spin_rate"])
	}
}
