// Package metrics summarizes a simulated trajectory as named scalar values.
package metrics

import (
	"github.com/san-kum/spinsim/internal/dynamo"
)

// Metric accumulates one summary value over a trajectory.
type Metric interface {
	Name() string
	Observe(x dynamo.State, t float64)
	Value() float64
	Reset()
}

// Default returns the metrics reported for every run.
func Default() []Metric {
	return []Metric{
		NewMaxNutation(),
		NewFinalPrecession(),
		NewFinalSpinRate(),
		NewMaxTransverseRate(),
		NewStability(DefaultNutationLimit),
	}
}

// Collect resets each metric, feeds it every sample of tr and returns the
// values keyed by metric name.
func Collect(tr *dynamo.Trajectory, ms ...Metric) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		m.Reset()
	}
	if tr != nil {
		for i, x := range tr.States {
			for _, m := range ms {
				m.Observe(x, tr.Times[i])
			}
		}
	}
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}
