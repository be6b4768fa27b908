package metrics

import (
	"fmt"
	"sort"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/san-kum/spinsim/internal/dynamo"
)

const namespace = "spinsim"

// Exporter publishes per-run summary metrics as Prometheus gauges labelled
// by run, for the node exporter textfile collector or a pushgateway.
type Exporter struct {
	reg    *prometheus.Registry
	gauges map[string]*prometheus.GaugeVec
	solver *prometheus.GaugeVec
}

func NewExporter() *Exporter {
	e := &Exporter{
		reg:    prometheus.NewRegistry(),
		gauges: make(map[string]*prometheus.GaugeVec),
		solver: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "solver",
			Name:      "steps",
			Help:      "Integrator work per run, by kind (accepted, rejected, evaluations).",
		}, []string{"run", "kind"}),
	}
	e.reg.MustRegister(e.solver)
	return e
}

// Observe records one run. Metric names become gauge names under the
// spinsim namespace.
func (e *Exporter) Observe(runID string, values map[string]float64, stats dynamo.Stats) error {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		g, ok := e.gauges[name]
		if !ok {
			g = prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      name,
				Help:      fmt.Sprintf("Run summary metric %s.", name),
			}, []string{"run"})
			if err := e.reg.Register(g); err != nil {
				return fmt.Errorf("register %s: %w", name, err)
			}
			e.gauges[name] = g
		}
		g.WithLabelValues(runID).Set(values[name])
	}

	e.solver.WithLabelValues(runID, "accepted").Set(float64(stats.Accepted))
	e.solver.WithLabelValues(runID, "rejected").Set(float64(stats.Rejected))
	e.solver.WithLabelValues(runID, "evaluations").Set(float64(stats.Evaluations))
	return nil
}

func (e *Exporter) Gatherer() prometheus.Gatherer {
	return e.reg
}

// WriteTextfile writes everything observed so far in the text exposition
// format.
func (e *Exporter) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, e.reg)
}
