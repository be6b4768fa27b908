package export

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/spinsim/internal/dynamo"
	"github.com/san-kum/spinsim/internal/motor"
)

func sampleTrajectory() *dynamo.Trajectory {
	tr := dynamo.NewTrajectory(50)
	for i := 0; i < 50; i++ {
		t := float64(i) * 0.1
		tr.Append(t, dynamo.State{0.1 * math.Sin(t), 0.1 * math.Cos(t), t, 0, 0.01 * math.Sin(t), 0})
	}
	return tr
}

func TestSavePNGAndSVG(t *testing.T) {
	dir := t.TempDir()
	fig := RatesFigure(sampleTrajectory())

	png := filepath.Join(dir, "rates.png")
	if err := Save(png, fig); err != nil {
		t.Fatalf("save png: %v", err)
	}
	data, err := os.ReadFile(png)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Error("output is not a PNG")
	}

	svg := filepath.Join(dir, "nested", "rates.svg")
	if err := Save(svg, fig); err != nil {
		t.Fatalf("save svg: %v", err)
	}
	data, err = os.ReadFile(svg)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(data, []byte("<svg")) {
		t.Error("output is not an SVG")
	}
}

func TestSaveRejectsBadInput(t *testing.T) {
	dir := t.TempDir()

	if err := Save(filepath.Join(dir, "x.bmp"), RatesFigure(sampleTrajectory())); !errors.Is(err, dynamo.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for unknown format, got %v", err)
	}
	if err := Save(filepath.Join(dir, "empty.png"), Figure{Title: "empty"}); !errors.Is(err, dynamo.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for empty figure, got %v", err)
	}

	bad := Figure{Series: []Series{{Name: "a", X: []float64{1, 2}, Y: []float64{1}}}}
	if err := Save(filepath.Join(dir, "bad.png"), bad); !errors.Is(err, dynamo.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for mismatched series, got %v", err)
	}
}

func TestSaveRun(t *testing.T) {
	tr := sampleTrajectory()
	nut := make([]float64, tr.Len())
	prec := make([]float64, tr.Len())

	paths, err := SaveRun(t.TempDir(), ".svg", tr, nut, prec)
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 2 {
		t.Fatalf("expected 2 plots, got %v", paths)
	}
	for _, p := range paths {
		if info, err := os.Stat(p); err != nil || info.Size() == 0 {
			t.Errorf("%s missing or empty", p)
		}
	}
}

func TestThrustFigure(t *testing.T) {
	p, err := motor.NewProfile([]float64{0, 0.5, 1}, []float64{0, 10, 0})
	if err != nil {
		t.Fatal(err)
	}
	fig := ThrustFigure(&motor.Motor{Name: "T1", Profile: p})
	if err := Save(filepath.Join(t.TempDir(), "t.png"), fig); err != nil {
		t.Fatal(err)
	}
}
