package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/spinsim/internal/analysis"
	"github.com/san-kum/spinsim/internal/export"
	"github.com/san-kum/spinsim/internal/metrics"
	"github.com/san-kum/spinsim/internal/physics"
	"github.com/san-kum/spinsim/internal/storage"
	"github.com/san-kum/spinsim/internal/viz"
)

var (
	csvOutput  string
	jsonOutput string
	promOutput string
	exportDir  string
	exportFmt  string
	gifPath    string
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}
}

func newPlotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plot [run-id]",
		Short: "plot body rates and attitude angles in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
}

func newAnalyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze [run-id]",
		Short: "print metrics, nutation frequency and the transverse rate portrait",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
}

func newViewCmd() *cobra.Command {
	viewCmd := &cobra.Command{
		Use:   "view [run-id]",
		Short: "replay a stored run in the interactive viewer",
		Args:  cobra.ExactArgs(1),
		RunE:  viewRun,
	}
	viewCmd.Flags().StringVar(&gifPath, "gif", "", "gif output path for recordings")
	return viewCmd
}

func newExportCSVCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export-csv [run-id]",
		Short: "export a run as csv",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	cmd.Flags().StringVarP(&csvOutput, "output", "o", "", "output file (default stdout)")
	return cmd
}

func newExportJSONCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export-json [run-id]",
		Short: "export a run as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	cmd.Flags().StringVarP(&jsonOutput, "output", "o", "", "output file (default stdout)")
	return cmd
}

func newExportPromCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export-prom [run-id...]",
		Short: "write run metrics in the prometheus text format (all runs by default)",
		RunE:  exportProm,
	}
	cmd.Flags().StringVarP(&promOutput, "output", "o", "spinsim.prom", "output file")
	return cmd
}

func newExportPNGCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export-png [run-id]",
		Short: "write rate and attitude plots of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  exportPNG,
	}
	cmd.Flags().StringVar(&exportDir, "dir", "plots", "output directory")
	cmd.Flags().StringVar(&exportFmt, "format", "png", "image format (png, svg, pdf, jpg)")
	return cmd
}

func listRuns(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	runs, err := storage.New(dataDir).List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "no runs found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tLABEL\tINTEGRATOR\tMOTORS\tSAMPLES\tFINAL WZ\tMAX NUTATION\tTIMESTAMP")
	for _, run := range runs {
		label := run.Label
		if label == "" {
			label = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%v\t%d\t%.4g\t%.4g\t%s\n",
			run.ID, label, run.Integrator, run.Motors, run.Samples,
			run.Metrics["final_spin_rate"], run.Metrics["max_nutation_deg"],
			run.Timestamp.Format("2006-01-02 15:04:05"))
	}
	return w.Flush()
}

func loadRun(runID string) (*storage.RunMetadata, *storage.Record, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	rec, err := st.LoadRecord(runID)
	if err != nil {
		return nil, nil, err
	}
	return meta, rec, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	meta, rec, err := loadRun(args[0])
	if err != nil {
		return err
	}
	tr := rec.Trajectory
	if tr.Len() == 0 {
		return fmt.Errorf("run %s has no samples", meta.ID)
	}

	fmt.Fprintf(out, "run %s (%s)\n\n", meta.ID, meta.Integrator)
	for _, c := range []struct {
		name string
		idx  int
	}{
		{"wx (rad/s)", physics.WX},
		{"wy (rad/s)", physics.WY},
		{"wz (rad/s)", physics.WZ},
	} {
		plotSeries(out, tr.Component(c.idx), c.name)
	}
	if len(rec.Nutation) > 0 {
		plotSeries(out, rec.Nutation, "nutation (deg)")
	}
	if len(rec.Precession) > 0 {
		plotSeries(out, rec.Precession, "precession (deg)")
	}
	return nil
}

func plotSeries(out io.Writer, data []float64, caption string) {
	graph := asciigraph.Plot(data,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(caption))
	fmt.Fprintln(out, graph)
	fmt.Fprintln(out)
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	meta, rec, err := loadRun(args[0])
	if err != nil {
		return err
	}
	tr := rec.Trajectory

	fmt.Fprintf(out, "run %s\n\n", meta.ID)
	fmt.Fprintln(out, "metrics:")
	printMetrics(out, meta.Metrics)

	fmt.Fprintf(out, "\nsolver: %d accepted, %d rejected, %d evaluations\n",
		meta.Stats.Accepted, meta.Stats.Rejected, meta.Stats.Evaluations)

	if tr.Len() >= 4 && len(rec.Nutation) == tr.Len() {
		dt := tr.Times[1] - tr.Times[0]
		freq, err := analysis.DominantFrequency(rec.Nutation, dt)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "dominant nutation frequency: %.4f Hz\n", freq)
	}

	portrait, err := analysis.NewPhasePortrait(tr, physics.WX, physics.WY)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "\ntransverse rates (wx vs wy):")
	fmt.Fprintln(out, portrait.ASCII(60, 20))
	return nil
}

func viewRun(cmd *cobra.Command, args []string) error {
	meta, rec, err := loadRun(args[0])
	if err != nil {
		return err
	}
	title := meta.ID
	if meta.Label != "" {
		title = meta.Label
	}
	m, err := viz.NewModel(title, rec.Trajectory, rec.Nutation, rec.Precession, meta.Metrics)
	if err != nil {
		return err
	}
	if gifPath != "" {
		m = m.WithGIFPath(gifPath)
	}
	return viz.Run(m)
}

// withOutput runs fn against the output file, or stdout when none is set.
func withOutput(cmd *cobra.Command, path string, fn func(io.Writer) error) error {
	if path == "" {
		return fn(cmd.OutOrStdout())
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "exported to %s\n", path)
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, rec, err := loadRun(args[0])
	if err != nil {
		return err
	}
	return withOutput(cmd, csvOutput, func(w io.Writer) error {
		return storage.WriteCSV(w, rec)
	})
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, rec, err := loadRun(args[0])
	if err != nil {
		return err
	}
	return withOutput(cmd, jsonOutput, func(w io.Writer) error {
		return storage.ExportJSON(w, *meta, rec)
	})
}

func exportProm(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	var runs []storage.RunMetadata
	if len(args) == 0 {
		all, err := st.List()
		if err != nil {
			return err
		}
		runs = all
	}
	for _, id := range args {
		meta, err := st.Load(id)
		if err != nil {
			return err
		}
		runs = append(runs, *meta)
	}

	exp := metrics.NewExporter()
	for _, run := range runs {
		if err := exp.Observe(run.ID, run.Metrics, run.Stats); err != nil {
			return err
		}
	}
	if err := exp.WriteTextfile(promOutput); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d runs to %s\n", len(runs), promOutput)
	return nil
}

func exportPNG(cmd *cobra.Command, args []string) error {
	_, rec, err := loadRun(args[0])
	if err != nil {
		return err
	}
	paths, err := export.SaveRun(exportDir, "."+exportFmt, rec.Trajectory, rec.Nutation, rec.Precession)
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", p)
	}
	return nil
}
