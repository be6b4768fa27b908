package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/spinsim/internal/experiment"
	"github.com/san-kum/spinsim/internal/storage"
)

var (
	sweepParam string
	sweepVals  string
	parallel   int
	saveSweep  bool
)

func newSweepCmd() *cobra.Command {
	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "run one simulation per parameter value in parallel",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addConfigFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "delay2", "parameter to sweep ("+strings.Join(experiment.SweepParams(), ", ")+")")
	sweepCmd.Flags().StringVar(&sweepVals, "values", "0,0.01,0.02,0.05", "comma separated values")
	sweepCmd.Flags().IntVar(&parallel, "parallel", 0, "maximum concurrent runs (0 = GOMAXPROCS)")
	sweepCmd.Flags().BoolVar(&saveSweep, "save", false, "store every run")
	return sweepCmd
}

func parseValues(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	vals := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value %q: %w", p, err)
		}
		vals = append(vals, v)
	}
	if len(vals) == 0 {
		return nil, fmt.Errorf("no values to sweep")
	}
	return vals, nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	apply, err := experiment.SweepParam(sweepParam)
	if err != nil {
		return err
	}
	values, err := parseValues(sweepVals)
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
	base.Label = sweepParam

	results, err := experiment.Sweep(ctx, experiment.NewRegistry(), base, values, apply, parallel)
	if err != nil {
		return err
	}

	var names []string
	for name := range results[0].Metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\n", strings.ToUpper(sweepParam), strings.Join(names, "\t"))
	for i, res := range results {
		row := []string{strconv.FormatFloat(values[i], 'g', -1, 64)}
		for _, name := range names {
			row = append(row, fmt.Sprintf("%.5g", res.Metrics[name]))
		}
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if !saveSweep {
		return nil
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	for _, res := range results {
		runID, err := st.Save(metadataFor(cfg, base, res), res.Record())
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "saved %s as %s\n", res.Label, runID)
	}
	return nil
}
