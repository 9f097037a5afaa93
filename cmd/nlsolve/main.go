package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/san-kum/nlsolve/internal/storage"
	"github.com/san-kum/nlsolve/internal/tui"
)

var (
	dataDir string
	verbose int

	// analysis configuration
	configFile   string
	preset       string
	solver       string
	control      string
	loadFactor   float64
	steps        int
	arcLength    float64
	overrides    []string
	noSave       bool
	pngOut       string
	csvOut       string
	jsonOut      string
	plotFile     string
	metricName   string
	tuneRanges   []string
	sweepParam   string
	sweepMin     float64
	sweepMax     float64
	sweepPoints  int
	perturbation float64
	trials       int
	seed         int64
)

// main registers the commands and runs the root command. With no
// subcommand it opens the preset picker and follows the chosen analysis
// live.
func main() {
	rootCmd := &cobra.Command{
		Use:           "nlsolve",
		Short:         "nonlinear equilibrium path solver",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := tui.SelectConfig()
			if err != nil || cfg == nil {
				return err
			}
			return liveAnalysis(cmd, cfg)
		},
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".nlsolve", "data directory")
	rootCmd.PersistentFlags().CountVarP(&verbose, "verbose", "v", "log steps (-v) and iterations (-vv)")

	runCmd := &cobra.Command{
		Use:   "run [model]",
		Short: "run an analysis and save it",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runAnalysis,
	}
	analysisFlags(runCmd)
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not save the run")
	runCmd.Flags().StringVar(&pngOut, "png", "", "also write the load-displacement plot to this file")

	liveCmd := &cobra.Command{
		Use:   "live [model]",
		Short: "run an analysis with a live terminal view",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, args)
			if err != nil {
				return err
			}
			return liveAnalysis(cmd, cfg)
		},
	}
	analysisFlags(liveCmd)
	liveCmd.Flags().BoolVar(&noSave, "no-save", false, "do not save the run")

	compareCmd := &cobra.Command{
		Use:   "compare [model]",
		Short: "compare nr, mnr, secant and arc-length on the same model",
		Args:  cobra.MaximumNArgs(1),
		RunE:  compareSolvers,
	}
	analysisFlags(compareCmd)
	compareCmd.Flags().StringVar(&pngOut, "png", "", "write the overlaid curves to this file")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id|latest]",
		Short: "plot a saved run in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id|latest]",
		Short: "export the load-displacement curve to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&csvOut, "out", "o", "-", "output file, - for stdout")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id|latest]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&jsonOut, "out", "o", "-", "output file, - for stdout")

	exportPNGCmd := &cobra.Command{
		Use:   "export-png [run_id...]",
		Short: "plot one or more saved runs to PNG, SVG or PDF",
		Args:  cobra.MinimumNArgs(1),
		RunE:  exportPNG,
	}
	exportPNGCmd.Flags().StringVarP(&plotFile, "out", "o", "curve.png", "output file")

	presetsCmd := &cobra.Command{
		Use:   "presets [model]",
		Short: "list available presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	batchCmd := &cobra.Command{
		Use:   "batch [scenario.yaml]",
		Short: "run a YAML scenario of analyses",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [model]",
		Short: "run an analysis across a range of one parameter",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	analysisFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "", "parameter path, e.g. model_params.rise")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 1, "last value")
	sweepCmd.Flags().IntVar(&sweepPoints, "points", 5, "number of values")
	_ = sweepCmd.MarkFlagRequired("param")

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo [model]",
		Short: "perturb one parameter at random and count aborted analyses",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runMonteCarlo,
	}
	analysisFlags(monteCarloCmd)
	monteCarloCmd.Flags().StringVar(&sweepParam, "param", "", "parameter path, e.g. model_params.rise")
	monteCarloCmd.Flags().Float64Var(&perturbation, "perturbation", 0.01, "largest absolute change")
	monteCarloCmd.Flags().IntVar(&trials, "trials", 20, "number of trials")
	monteCarloCmd.Flags().Int64Var(&seed, "seed", 0, "random seed, 0 for time based")
	_ = monteCarloCmd.MarkFlagRequired("param")

	tuneCmd := &cobra.Command{
		Use:   "tune [model]",
		Short: "grid search solver settings for the smallest metric",
		Args:  cobra.MaximumNArgs(1),
		RunE:  tuneSettings,
	}
	analysisFlags(tuneCmd)
	tuneCmd.Flags().StringArrayVar(&tuneRanges, "range", nil, "parameter and values, e.g. arc_length.max=0.01,0.02,0.05")
	tuneCmd.Flags().StringVar(&metricName, "metric", "mean_iterations", "metric to minimise")
	_ = tuneCmd.MarkFlagRequired("range")

	rootCmd.AddCommand(runCmd, liveCmd, compareCmd, listCmd, plotCmd, exportCSVCmd, exportJSONCmd, exportPNGCmd,
		presetsCmd, batchCmd, sweepCmd, monteCarloCmd, tuneCmd, versionCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func analysisFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().StringVar(&solver, "solver", "nr", "nr, mnr or secant")
	cmd.Flags().StringVar(&control, "control", "load", "load or arc-length")
	cmd.Flags().Float64Var(&loadFactor, "load-factor", 1, "target load factor")
	cmd.Flags().IntVar(&steps, "steps", 0, "number of load steps")
	cmd.Flags().Float64Var(&arcLength, "arc-length", 0, "initial arc radius, 0 for automatic")
	cmd.Flags().StringArrayVar(&overrides, "set", nil, "override a setting, e.g. model_params.rise=0.3")
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	switch {
	case verbose >= 2:
		level = slog.LevelDebug
	case verbose == 1:
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func openStore() (*storage.Store, error) {
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return nil, err
	}
	return st, nil
}
