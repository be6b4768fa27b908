package export

import (
	"path/filepath"

	"github.com/san-kum/spinsim/internal/dynamo"
	"github.com/san-kum/spinsim/internal/motor"
	"github.com/san-kum/spinsim/internal/physics"
)

// RatesFigure plots the three body rates.
func RatesFigure(tr *dynamo.Trajectory) Figure {
	return Figure{
		Title:  "Body angular rates",
		XLabel: "time (s)",
		YLabel: "rate (rad/s)",
		Series: []Series{
			{Name: "wx", X: tr.Times, Y: tr.Component(physics.WX)},
			{Name: "wy", X: tr.Times, Y: tr.Component(physics.WY)},
			{Name: "wz", X: tr.Times, Y: tr.Component(physics.WZ)},
		},
	}
}

// AttitudeFigure plots nutation and precession.
func AttitudeFigure(times, nutation, precession []float64) Figure {
	return Figure{
		Title:  "Nutation and precession",
		XLabel: "time (s)",
		YLabel: "angle (deg)",
		Series: []Series{
			{Name: "nutation", X: times, Y: nutation},
			{Name: "precession", X: times, Y: precession},
		},
	}
}

// ThrustFigure plots a motor's thrust curve.
func ThrustFigure(m *motor.Motor) Figure {
	return Figure{
		Title:  m.Name + " thrust",
		XLabel: "time (s)",
		YLabel: "thrust (N)",
		Series: []Series{{Name: m.Name, X: m.Profile.Times(), Y: m.Profile.Thrusts()}},
	}
}

// SaveRun writes rates and attitude plots into dir and returns their paths.
// ext selects the format, e.g. ".png".
func SaveRun(dir, ext string, tr *dynamo.Trajectory, nutation, precession []float64) ([]string, error) {
	figs := map[string]Figure{
		"rates":    RatesFigure(tr),
		"attitude": AttitudeFigure(tr.Times, nutation, precession),
	}

	paths := make([]string, 0, len(figs))
	for _, name := range []string{"rates", "attitude"} {
		path := filepath.Join(dir, name+ext)
		if err := Save(path, figs[name]); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
