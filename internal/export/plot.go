// Package export renders trajectories to image files with gonum/plot.
package export

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/san-kum/spinsim/internal/dynamo"
)

// Series is one line of a figure.
type Series struct {
	Name string
	X, Y []float64
}

type Figure struct {
	Title  string
	XLabel string
	YLabel string
	Series []Series
}

// Size of saved figures, in inches.
const (
	Width  = 8.0
	Height = 6.0
)

var formats = map[string]bool{
	".png": true, ".svg": true, ".pdf": true, ".jpg": true, ".jpeg": true,
}

// Save renders fig to path. The format follows the file extension.
func Save(path string, fig Figure) error {
	ext := strings.ToLower(filepath.Ext(path))
	if !formats[ext] {
		return fmt.Errorf("%w: unsupported plot format %q", dynamo.ErrInvalidInput, ext)
	}

	p, err := build(fig)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("cannot create directory: %w", err)
		}
	}
	return p.Save(vg.Length(Width)*vg.Inch, vg.Length(Height)*vg.Inch, path)
}

func build(fig Figure) (*plot.Plot, error) {
	if len(fig.Series) == 0 {
		return nil, fmt.Errorf("%w: figure %q has no data", dynamo.ErrInvalidInput, fig.Title)
	}

	p := plot.New()
	p.Title.Text = fig.Title
	p.X.Label.Text = fig.XLabel
	p.Y.Label.Text = fig.YLabel
	stylePlot(p)
	p.Add(plotter.NewGrid())

	for i, s := range fig.Series {
		if len(s.X) != len(s.Y) || len(s.X) == 0 {
			return nil, fmt.Errorf("%w: series %q has %d x and %d y values", dynamo.ErrInvalidInput, s.Name, len(s.X), len(s.Y))
		}
		pts := make(plotter.XYs, len(s.X))
		for k := range s.X {
			pts[k].X = s.X[k]
			pts[k].Y = s.Y[k]
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, err
		}
		line.LineStyle.Width = vg.Points(1.5)
		line.LineStyle.Color = plotutil.Color(i)
		p.Add(line)
		if s.Name != "" {
			p.Legend.Add(s.Name, line)
		}
	}
	p.Legend.Top = true
	return p, nil
}

func stylePlot(p *plot.Plot) {
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.Title.Padding = vg.Points(8)

	p.X.Label.TextStyle.Font.Size = vg.Points(12)
	p.Y.Label.TextStyle.Font.Size = vg.Points(12)
	p.X.Padding = vg.Points(6)
	p.Y.Padding = vg.Points(6)

	p.X.Tick.Marker = limitedTicker(8, "%.2g")
	p.Y.Tick.Marker = limitedTicker(8, "%.3g")
}

func limitedTicker(maxLabels int, labelFmt string) plot.Ticker {
	if maxLabels < 2 {
		maxLabels = 2
	}
	return plot.TickerFunc(func(min, max float64) []plot.Tick {
		if math.IsNaN(min) || math.IsNaN(max) || math.IsInf(min, 0) || math.IsInf(max, 0) {
			return nil
		}
		if min == max {
			return []plot.Tick{{Value: min, Label: fmt.Sprintf(labelFmt, min)}}
		}
		step := (max - min) / float64(maxLabels-1)
		ticks := make([]plot.Tick, 0, maxLabels)
		for i := 0; i < maxLabels; i++ {
			v := min + float64(i)*step
			ticks = append(ticks, plot.Tick{Value: v, Label: fmt.Sprintf(labelFmt, v)})
		}
		return ticks
	})
}
