// Package automation runs batches of experiments: Monte Carlo dispersions
// and scripted scenarios.
package automation

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/san-kum/spinsim/internal/dynamo"
	"github.com/san-kum/spinsim/internal/experiment"
	"github.com/san-kum/spinsim/internal/metrics"
)

// MonteCarloConfig perturbs named sweep parameters of a base run with
// gaussian noise of the given standard deviation.
type MonteCarloConfig struct {
	Dispersions   map[string]float64
	NumTrials     int
	Seed          int64
	NutationLimit float64 // deg; 0 uses metrics.DefaultNutationLimit
	Parallel      int
}

type MonteCarloResult struct {
	TrialID int
	Params  map[string]float64
	Metrics map[string]float64
	Stable  bool // max nutation stayed under the limit
}

// Summary aggregates one metric over all trials.
type Summary struct {
	Trials      int
	StableRatio float64
	Mean        float64
	StdDev      float64
	Min, Max    float64
}

// nonNegative parameters are clamped at zero after perturbation.
var nonNegative = map[string]bool{"delay1": true, "delay2": true}

// RunMonteCarlo executes NumTrials independent perturbed runs. A zero seed
// draws one from the clock.
func RunMonteCarlo(ctx context.Context, reg *experiment.Registry, base experiment.Config, cfg MonteCarloConfig) ([]MonteCarloResult, error) {
	if cfg.NumTrials < 1 {
		return nil, fmt.Errorf("%w: trials %d", dynamo.ErrInvalidInput, cfg.NumTrials)
	}
	limit := cfg.NutationLimit
	if limit <= 0 {
		limit = metrics.DefaultNutationLimit
	}

	names := make([]string, 0, len(cfg.Dispersions))
	for name, sigma := range cfg.Dispersions {
		if !(sigma >= 0) || math.IsInf(sigma, 0) {
			return nil, fmt.Errorf("%w: dispersion of %s is %g", dynamo.ErrInvalidInput, name, sigma)
		}
		if _, err := experiment.SweepParam(name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	sort.Strings(names)

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	cfgs := make([]experiment.Config, cfg.NumTrials)
	params := make([]map[string]float64, cfg.NumTrials)
	for trial := range cfgs {
		c := base.Clone()
		c.Label = fmt.Sprintf("trial %d", trial)
		params[trial] = make(map[string]float64, len(names))
		for _, name := range names {
			v, _ := experiment.ParamValue(c, name)
			v += rng.NormFloat64() * cfg.Dispersions[name]
			if nonNegative[name] && v < 0 {
				v = 0
			}
			apply, _ := experiment.SweepParam(name)
			apply(&c, v)
			params[trial][name] = v
		}
		cfgs[trial] = c
	}

	results, err := experiment.RunAll(ctx, reg, cfgs, cfg.Parallel)
	if err != nil {
		return nil, err
	}

	out := make([]MonteCarloResult, len(results))
	for i, res := range results {
		out[i] = MonteCarloResult{
			TrialID: i,
			Params:  params[i],
			Metrics: res.Metrics,
			Stable:  res.Metrics["max_nutation_deg"] < limit,
		}
	}
	return out, nil
}

// Summarize computes statistics of metric across trials.
func Summarize(results []MonteCarloResult, metric string) Summary {
	s := Summary{Trials: len(results), Min: math.Inf(1), Max: math.Inf(-1)}
	if len(results) == 0 {
		return Summary{}
	}

	var sum, sumSq float64
	stable := 0
	for _, r := range results {
		v := r.Metrics[metric]
		sum += v
		sumSq += v * v
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
		if r.Stable {
			stable++
		}
	}
	n := float64(len(results))
	s.Mean = sum / n
	s.StdDev = math.Sqrt(math.Max(0, sumSq/n-s.Mean*s.Mean))
	s.StableRatio = float64(stable) / n
	return s
}

// ParseDispersions reads "name=sigma,name=sigma".
func ParseDispersions(s string) (map[string]float64, error) {
	out := map[string]float64{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, val, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("%w: dispersion %q is not name=sigma", dynamo.ErrInvalidInput, part)
		}
		var sigma float64
		if _, err := fmt.Sscanf(strings.TrimSpace(val), "%g", &sigma); err != nil {
			return nil, fmt.Errorf("%w: dispersion %q: %v", dynamo.ErrInvalidInput, part, err)
		}
		out[strings.TrimSpace(name)] = sigma
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no dispersions", dynamo.ErrInvalidInput)
	}
	return out, nil
}
