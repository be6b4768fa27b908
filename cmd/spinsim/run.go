package main

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/spinsim/internal/config"
	"github.com/san-kum/spinsim/internal/experiment"
	"github.com/san-kum/spinsim/internal/export"
	"github.com/san-kum/spinsim/internal/storage"
)

var (
	configFile string
	preset     string
	integrator string
	motor1     string
	motor2     string
	grains     int
	delay1     float64
	delay2     float64
	tEnd       float64
	samples    int
	wz0        float64
	theta0     float64
	phi0       float64
	relTol     float64
	absTol     float64
	maxStep    float64
	label      string
	pngDir     string
)

func addConfigFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "use preset configuration")
	f.StringVar(&integrator, "integrator", config.DefaultIntegrator, "integrator (rk45, rk4)")
	f.StringVar(&motor1, "motor1", config.DefaultMotor, "motor 1 source: catalog:NAME, .eng path or thrustcurve.org URL")
	f.StringVar(&motor2, "motor2", config.DefaultMotor, "motor 2 source")
	f.IntVar(&grains, "grains", config.DefaultGrains, "propellant grains per motor curve")
	f.Float64Var(&delay1, "delay1", 0, "motor 1 ignition delay (s)")
	f.Float64Var(&delay2, "delay2", config.DefaultDelay, "motor 2 ignition delay (s)")
	f.Float64Var(&tEnd, "time", config.DefaultEnd, "end time (s)")
	f.IntVar(&samples, "samples", config.DefaultSamples, "number of output samples")
	f.Float64Var(&wz0, "wz", 0, "initial spin rate (rad/s)")
	f.Float64Var(&theta0, "theta", 0, "initial theta (rad)")
	f.Float64Var(&phi0, "phi", 0, "initial phi (rad)")
	f.Float64Var(&relTol, "rtol", 0, "relative tolerance")
	f.Float64Var(&absTol, "atol", 0, "absolute tolerance")
	f.Float64Var(&maxStep, "max-step", 0, "maximum step size (s)")
}

// loadConfig layers preset, config file and changed flags, in that order.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("motor1") {
		cfg.Motors[0].Source = motor1
	}
	if flags.Changed("motor2") {
		cfg.Motors[1].Source = motor2
	}
	if flags.Changed("grains") {
		cfg.Motors[0].Grains = grains
		cfg.Motors[1].Grains = grains
	}
	if flags.Changed("delay1") {
		cfg.Motors[0].Delay = delay1
	}
	if flags.Changed("delay2") {
		cfg.Motors[1].Delay = delay2
	}
	if flags.Changed("time") {
		cfg.Timeline.End = tEnd
	}
	if flags.Changed("samples") {
		cfg.Timeline.Samples = samples
	}
	if flags.Changed("wz") {
		cfg.InitState.WZ = wz0
	}
	if flags.Changed("theta") {
		cfg.InitState.Theta = theta0
	}
	if flags.Changed("phi") {
		cfg.InitState.Phi = phi0
	}
	if flags.Changed("rtol") {
		cfg.Solver.RelTol = relTol
	}
	if flags.Changed("atol") {
		cfg.Solver.AbsTol = absTol
	}
	if flags.Changed("max-step") {
		cfg.Solver.MaxStep = maxStep
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newRunCmd() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a spin-up simulation and store it",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addConfigFlags(runCmd)
	runCmd.Flags().StringVar(&label, "label", "", "label stored with the run")
	runCmd.Flags().StringVar(&pngDir, "png", "", "also write rate and attitude plots to this directory")
	return runCmd
}

func runSimulation(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	expCfg, err := experiment.FromConfig(ctx, cfg)
	if err != nil {
		return err
	}
	expCfg.Label = label

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp := experiment.New(expCfg)
	if err := exp.Setup(experiment.NewRegistry()); err != nil {
		return err
	}

	fmt.Fprintf(out, "running %s with %s + %s...\n", cfg.Integrator, cfg.Motors[0].Source, cfg.Motors[1].Source)
	start := time.Now()

	result, err := exp.Run(ctx)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.Save(metadataFor(cfg, expCfg, result), result.Record())
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "completed in %v\n", elapsed)
	fmt.Fprintf(out, "run id: %s\n", runID)
	fmt.Fprintf(out, "samples: %d (accepted %d, rejected %d, evaluations %d)\n",
		result.Trajectory.Len(), result.Trajectory.Stats.Accepted, result.Trajectory.Stats.Rejected, result.Trajectory.Stats.Evaluations)
	fmt.Fprintln(out, "\nmetrics:")
	printMetrics(out, result.Metrics)

	if pngDir != "" {
		paths, err := export.SaveRun(pngDir, ".png", result.Trajectory, result.Nutation, result.Precession)
		if err != nil {
			return err
		}
		for _, p := range paths {
			fmt.Fprintf(out, "wrote %s\n", p)
		}
	}
	return nil
}

func metadataFor(cfg *config.Config, expCfg experiment.Config, res *experiment.Result) storage.RunMetadata {
	return storage.RunMetadata{
		Label:      res.Label,
		Integrator: cfg.Integrator,
		Motors:     []string{cfg.Motors[0].Source, cfg.Motors[1].Source},
		Design:     expCfg.Design.GetParams(),
		Start:      cfg.Timeline.Start,
		End:        cfg.Timeline.End,
		Samples:    cfg.Timeline.Samples,
		Stats:      res.Trajectory.Stats,
		Metrics:    res.Metrics,
	}
}

func printMetrics(out io.Writer, metrics map[string]float64) {
	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, name := range names {
		fmt.Fprintf(w, "  %s\t%.6g\n", name, metrics[name])
	}
	w.Flush()
}
