// Package optim searches design and ignition parameters for the run that
// minimizes a metric.
package optim

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/san-kum/spinsim/internal/dynamo"
	"github.com/san-kum/spinsim/internal/experiment"
)

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

// NewGridSearch builds a search over the Cartesian product of ranges. Every
// name must be a sweep parameter.
func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) == 0 || len(params) != len(ranges) {
		return nil, fmt.Errorf("%w: %d parameters with %d ranges", dynamo.ErrInvalidInput, len(params), len(ranges))
	}
	for i, name := range params {
		if _, err := experiment.SweepParam(name); err != nil {
			return nil, err
		}
		if len(ranges[i]) == 0 {
			return nil, fmt.Errorf("%w: empty range for %s", dynamo.ErrInvalidInput, name)
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Point is one evaluated grid point.
type Point struct {
	Params map[string]float64
	Value  float64
}

// Size is the number of grid points.
func (g *GridSearch) Size() int {
	n := 1
	for _, r := range g.ranges {
		n *= len(r)
	}
	return n
}

// Search runs every grid point in parallel and returns the point with the
// smallest metric, followed by all points sorted by metric.
func (g *GridSearch) Search(ctx context.Context, reg *experiment.Registry, base experiment.Config, metricName string, limit int) (Point, []Point, error) {
	grid := g.points()
	cfgs := make([]experiment.Config, len(grid))
	for i, params := range grid {
		cfg := base.Clone()
		labels := make([]string, 0, len(g.paramNames))
		for _, name := range g.paramNames {
			apply, _ := experiment.SweepParam(name)
			apply(&cfg, params[name])
			labels = append(labels, fmt.Sprintf("%s=%g", name, params[name]))
		}
		cfg.Label = strings.Join(labels, ",")
		cfgs[i] = cfg
	}

	results, err := experiment.RunAll(ctx, reg, cfgs, limit)
	if err != nil {
		return Point{}, nil, err
	}

	all := make([]Point, len(grid))
	for i, res := range results {
		val, ok := res.Metrics[metricName]
		if !ok {
			return Point{}, nil, fmt.Errorf("%w: unknown metric: %s", dynamo.ErrInvalidInput, metricName)
		}
		if math.IsNaN(val) {
			val = math.Inf(1)
		}
		all[i] = Point{Params: grid[i], Value: val}
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].Value < all[j].Value })
	return all[0], all, nil
}

func (g *GridSearch) points() []map[string]float64 {
	var out []map[string]float64
	g.searchRecursive(0, map[string]float64{}, &out)
	return out
}

func (g *GridSearch) searchRecursive(depth int, current map[string]float64, out *[]map[string]float64) {
	if depth == len(g.paramNames) {
		p := make(map[string]float64, len(current))
		for k, v := range current {
			p[k] = v
		}
		*out = append(*out, p)
		return
	}

	name := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		current[name] = val
		g.searchRecursive(depth+1, current, out)
	}
	delete(current, name)
}
