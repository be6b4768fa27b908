package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/spinsim/internal/config"
	"github.com/san-kum/spinsim/internal/experiment"
	"github.com/san-kum/spinsim/internal/export"
	"github.com/san-kum/spinsim/internal/motor"
	"github.com/san-kum/spinsim/internal/rasp"
	"github.com/san-kum/spinsim/internal/sizing"
)

var (
	listCatalog bool
	motorPlot   string
	motorGrains int
)

var headingStyle = lipgloss.NewStyle().Bold(true)

func newSizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "size [spin-rate] [roll-inertia] [radial-distance]",
		Short: "total impulse and impulse per motor needed to reach a spin rate",
		Long: `Computes I·ω/r, the total impulse two motors at radial distance r
must deliver to spin a vehicle with roll inertia I up to ω, and half of it
per motor. Units must be consistent (e.g. rad/s, kg·m², m gives N·s).`,
		Args: cobra.ExactArgs(3),
		RunE: runSize,
	}
}

func runSize(cmd *cobra.Command, args []string) error {
	vals := make([]float64, len(args))
	for i, a := range args {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return fmt.Errorf("invalid number %q: %w", a, err)
		}
		vals[i] = v
	}

	total, err := sizing.TotalImpulse(vals[0], vals[1], vals[2])
	if err != nil {
		return err
	}
	each, err := sizing.ImpulsePerMotor(total)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "total impulse:     %.6g\n", total)
	fmt.Fprintf(out, "impulse per motor: %.6g\n", each)
	return nil
}

func newMotorCmd() *cobra.Command {
	motorCmd := &cobra.Command{
		Use:   "motor [source]",
		Short: "show a motor thrust curve (catalog:NAME, .eng file or thrustcurve.org URL)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  showMotor,
	}
	motorCmd.Flags().BoolVar(&listCatalog, "list", false, "list bundled catalog motors")
	motorCmd.Flags().IntVar(&motorGrains, "grains", 1, "show the curve of one grain out of this many")
	motorCmd.Flags().StringVar(&motorPlot, "plot", "", "also write the thrust curve to an image file")
	return motorCmd
}

func showMotor(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if listCatalog || len(args) == 0 {
		fmt.Fprintln(out, headingStyle.Render("catalog motors:"))
		for _, name := range rasp.Catalog() {
			fmt.Fprintf(out, "  catalog:%s\n", name)
		}
		return nil
	}

	m, err := rasp.Open(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if motorGrains > 1 {
		p, err := m.Profile.PerGrain(motorGrains)
		if err != nil {
			return err
		}
		scaled := *m
		scaled.Profile = p
		m = &scaled
	}

	fmt.Fprintln(out, headingStyle.Render(m.String()))
	fmt.Fprintf(out, "  peak thrust:    %.2f N\n", m.Profile.PeakThrust())
	fmt.Fprintf(out, "  total impulse:  %.2f N·s\n", m.Profile.TotalImpulse())
	fmt.Fprintf(out, "  burn time:      %.3f s\n", m.Profile.BurnTime())
	fmt.Fprintf(out, "  propellant:     %.3f kg\n", m.PropellantMass)
	fmt.Fprintf(out, "  delays:         %s\n\n", m.Delays)
	fmt.Fprintln(out, asciigraph.Plot(resample(m.Profile, 80),
		asciigraph.Height(10),
		asciigraph.Caption("thrust (N)")))

	if motorPlot != "" {
		if err := export.Save(motorPlot, export.ThrustFigure(m)); err != nil {
			return err
		}
		fmt.Fprintf(out, "wrote %s\n", motorPlot)
	}
	return nil
}

// resample evaluates the curve at n evenly spaced times over the burn.
func resample(p *motor.Profile, n int) []float64 {
	if p.Len() == 1 || n < 2 {
		return p.Thrusts()
	}
	t0, t1 := p.Ignition(), p.Burnout()
	out := make([]float64, n)
	for i := range out {
		out[i] = p.Thrust(t0 + (t1-t0)*float64(i)/float64(n-1))
	}
	return out
}

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "list preset configurations and integrators",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, headingStyle.Render("presets:"))
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Fprintf(out, "  %-14s %s + %s, delays %g/%g s, %s\n", name,
					p.Motors[0].Source, p.Motors[1].Source,
					p.Motors[0].Delay, p.Motors[1].Delay, p.Integrator)
			}
			fmt.Fprintln(out, headingStyle.Render("integrators:"))
			fmt.Fprintf(out, "  %s\n", strings.Join(experiment.NewRegistry().ListIntegrators(), ", "))
			fmt.Fprintln(out, headingStyle.Render("sweep parameters:"))
			fmt.Fprintf(out, "  %s\n", strings.Join(experiment.SweepParams(), ", "))
			return nil
		},
	}
}
