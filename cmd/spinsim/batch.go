package main

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/spinsim/internal/automation"
	"github.com/san-kum/spinsim/internal/experiment"
	"github.com/san-kum/spinsim/internal/optim"
	"github.com/san-kum/spinsim/internal/storage"
)

var (
	gridSpecs     []string
	objective     string
	dispersions   string
	trials        int
	seed          int64
	nutationLimit float64
)

func newOptimizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "optimize",
		Short:   "grid search parameters for the run that minimizes a metric",
		Example: `  spinsim optimize --grid delay2=0,0.01,0.02 --grid d2=0.6,0.635,0.7 --objective max_nutation_deg`,
		Args:    cobra.NoArgs,
		RunE:    runOptimize,
	}
	addConfigFlags(cmd)
	cmd.Flags().StringArrayVar(&gridSpecs, "grid", nil, "parameter grid as name=v1,v2,... (repeatable)")
	cmd.Flags().StringVar(&objective, "objective", "max_nutation_deg", "metric to minimize")
	cmd.Flags().IntVar(&parallel, "parallel", 0, "maximum concurrent runs (0 = GOMAXPROCS)")
	return cmd
}

func runOptimize(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if len(gridSpecs) == 0 {
		return fmt.Errorf("at least one --grid is required")
	}
	names := make([]string, len(gridSpecs))
	ranges := make([][]float64, len(gridSpecs))
	for i, spec := range gridSpecs {
		name, vals, ok := strings.Cut(spec, "=")
		if !ok {
			return fmt.Errorf("invalid grid %q, want name=v1,v2", spec)
		}
		values, err := parseValues(vals)
		if err != nil {
			return err
		}
		names[i], ranges[i] = strings.TrimSpace(name), values
	}

	gs, err := optim.NewGridSearch(names, ranges)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	base, err := experiment.FromConfig(ctx, cfg)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "searching %d grid points...\n", gs.Size())
	best, all, err := gs.Search(ctx, experiment.NewRegistry(), base, objective, parallel)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\n", strings.ToUpper(strings.Join(names, "\t")), strings.ToUpper(objective))
	for _, p := range all {
		row := make([]string, 0, len(names)+1)
		for _, name := range names {
			row = append(row, fmt.Sprintf("%g", p.Params[name]))
		}
		row = append(row, fmt.Sprintf("%.5g", p.Value))
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(out, "\nbest %s = %.6g at", objective, best.Value)
	for _, name := range names {
		fmt.Fprintf(out, " %s=%g", name, best.Params[name])
	}
	fmt.Fprintln(out)
	return nil
}

func newMonteCarloCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "montecarlo",
		Short:   "dispersion analysis over randomly perturbed runs",
		Example: `  spinsim montecarlo --disperse delay2=0.005,d2=0.002 --trials 100 --seed 7`,
		Args:    cobra.NoArgs,
		RunE:    runMonteCarlo,
	}
	addConfigFlags(cmd)
	cmd.Flags().StringVar(&dispersions, "disperse", "delay1=0.005,delay2=0.005", "standard deviations as name=sigma,...")
	cmd.Flags().IntVar(&trials, "trials", 50, "number of trials")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 = time based)")
	cmd.Flags().Float64Var(&nutationLimit, "limit", 0, "nutation limit for stability (deg, 0 = default)")
	cmd.Flags().IntVar(&parallel, "parallel", 0, "maximum concurrent runs (0 = GOMAXPROCS)")
	return cmd
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	disp, err := automation.ParseDispersions(dispersions)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	base, err := experiment.FromConfig(ctx, cfg)
	if err != nil {
		return err
	}

	results, err := automation.RunMonteCarlo(ctx, experiment.NewRegistry(), base, automation.MonteCarloConfig{
		Dispersions:   disp,
		NumTrials:     trials,
		Seed:          seed,
		NutationLimit: nutationLimit,
		Parallel:      parallel,
	})
	if err != nil {
		return err
	}

	metricNames := make([]string, 0, len(results[0].Metrics))
	for name := range results[0].Metrics {
		metricNames = append(metricNames, name)
	}
	sort.Strings(metricNames)

	stable := automation.Summarize(results, "max_nutation_deg").StableRatio
	fmt.Fprintf(out, "%d trials, %.1f%% stable\n\n", len(results), 100*stable)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METRIC\tMEAN\tSTDDEV\tMIN\tMAX")
	for _, name := range metricNames {
		s := automation.Summarize(results, name)
		fmt.Fprintf(w, "%s\t%.5g\t%.5g\t%.5g\t%.5g\n", name, s.Mean, s.StdDev, s.Min, s.Max)
	}
	return w.Flush()
}

func newScenarioCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run the steps of a yaml scenario and store each run",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	return cmd
}

func runScenario(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	results, err := automation.RunScenario(ctx, sc, experiment.NewRegistry())
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tLABEL\tRUN ID\tFINAL WZ\tMAX NUTATION")
	for i, res := range results {
		cfg, expCfg, err := automation.StepConfig(ctx, sc.Steps[i])
		if err != nil {
			return err
		}
		runID, err := st.Save(metadataFor(cfg, expCfg, res), res.Record())
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%.4g\t%.4g\n", i+1, res.Label, runID,
			res.Metrics["final_spin_rate"], res.Metrics["max_nutation_deg"])
	}
	return w.Flush()
}
