package experiment

import (
	"context"
	"fmt"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/spinsim/internal/dynamo"
	"github.com/san-kum/spinsim/internal/physics"
)

// Apply sets one swept value on a run configuration.
type Apply func(cfg *Config, value float64)

var sweepParams = map[string]Apply{
	"delay1": func(c *Config, v float64) { c.Motors[0].Delay = v },
	"delay2": func(c *Config, v float64) { c.Motors[1].Delay = v },
	"r1":     func(c *Config, v float64) { c.Design.R1 = v },
	"r2":     func(c *Config, v float64) { c.Design.R2 = v },
	"d1":     func(c *Config, v float64) { c.Design.D1 = v },
	"d2":     func(c *Config, v float64) { c.Design.D2 = v },
	"ixx":    func(c *Config, v float64) { c.Design.Ixx = v },
	"iyy":    func(c *Config, v float64) { c.Design.Iyy = v },
	"izz":    func(c *Config, v float64) { c.Design.Izz = v },
	"wz0":    func(c *Config, v float64) { setState(c, physics.WZ, v) },
	"theta0": func(c *Config, v float64) { setState(c, physics.Theta, v) },
}

func setState(c *Config, i int, v float64) {
	if len(c.InitState) != physics.StateDim {
		c.InitState = make(dynamo.State, physics.StateDim)
	}
	c.InitState[i] = v
}

// SweepParam returns the setter for a named sweep parameter.
func SweepParam(name string) (Apply, error) {
	fn, ok := sweepParams[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown sweep parameter: %s", dynamo.ErrInvalidInput, name)
	}
	return fn, nil
}

func SweepParams() []string {
	names := make([]string, 0, len(sweepParams))
	for name := range sweepParams {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParamValue reads a named sweep parameter from cfg.
func ParamValue(cfg Config, name string) (float64, error) {
	state := func(i int) float64 {
		if len(cfg.InitState) != physics.StateDim {
			return 0
		}
		return cfg.InitState[i]
	}
	switch name {
	case "delay1":
		return cfg.Motors[0].Delay, nil
	case "delay2":
		return cfg.Motors[1].Delay, nil
	case "r1":
		return cfg.Design.R1, nil
	case "r2":
		return cfg.Design.R2, nil
	case "d1":
		return cfg.Design.D1, nil
	case "d2":
		return cfg.Design.D2, nil
	case "ixx":
		return cfg.Design.Ixx, nil
	case "iyy":
		return cfg.Design.Iyy, nil
	case "izz":
		return cfg.Design.Izz, nil
	case "wz0":
		return state(physics.WZ), nil
	case "theta0":
		return state(physics.Theta), nil
	}
	return 0, fmt.Errorf("%w: unknown sweep parameter: %s", dynamo.ErrInvalidInput, name)
}

// Sweep runs one independent experiment per value, at most limit at a time
// (GOMAXPROCS when limit <= 0). Results are in value order. The first
// failure cancels the remaining runs.
func Sweep(ctx context.Context, reg *Registry, base Config, values []float64, apply Apply, limit int) ([]*Result, error) {
	cfgs := make([]Config, len(values))
	for i, v := range values {
		cfg := base.Clone()
		apply(&cfg, v)
		if cfg.Label == "" {
			cfg.Label = fmt.Sprintf("%g", v)
		} else {
			cfg.Label = fmt.Sprintf("%s=%g", cfg.Label, v)
		}
		cfgs[i] = cfg
	}
	return RunAll(ctx, reg, cfgs, limit)
}

// RunAll runs every configuration concurrently, at most limit at a time
// (GOMAXPROCS when limit <= 0), and returns the results in input order.
func RunAll(ctx context.Context, reg *Registry, cfgs []Config, limit int) ([]*Result, error) {
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	results := make([]*Result, len(cfgs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, cfg := range cfgs {
		i, cfg := i, cfg
		g.Go(func() error {
			exp := New(cfg)
			if err := exp.Setup(reg); err != nil {
				return fmt.Errorf("%s: %w", cfg.Label, err)
			}
			res, err := exp.Run(ctx)
			if err != nil {
				return fmt.Errorf("%s: %w", cfg.Label, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
