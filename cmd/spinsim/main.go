package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/san-kum/spinsim/internal/logging"
)

var (
	dataDir   string
	logLevel  string
	logFormat string
)

// main registers the commands and exits with status 1 if the command fails.
func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "spinsim",
		Short:         "spin-up simulator for a launch vehicle with two off-axis motors",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l := logging.New(logging.Config{Level: logLevel, Format: logFormat, Output: cmd.ErrOrStderr()})
			cmd.SetContext(logging.ContextWithLogger(cmd.Context(), l))
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".spinsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text or json)")

	rootCmd.AddCommand(
		newRunCmd(),
		newSweepCmd(),
		newOptimizeCmd(),
		newMonteCarloCmd(),
		newScenarioCmd(),
		newListCmd(),
		newPlotCmd(),
		newAnalyzeCmd(),
		newViewCmd(),
		newExportCSVCmd(),
		newExportJSONCmd(),
		newExportPNGCmd(),
		newExportPromCmd(),
		newSizeCmd(),
		newMotorCmd(),
		newPresetsCmd(),
	)
	return rootCmd
}
