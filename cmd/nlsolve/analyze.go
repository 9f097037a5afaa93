package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/nlsolve/internal/automation"
	"github.com/san-kum/nlsolve/internal/config"
	"github.com/san-kum/nlsolve/internal/experiment"
	"github.com/san-kum/nlsolve/internal/export"
	"github.com/san-kum/nlsolve/internal/nonlinear"
	"github.com/san-kum/nlsolve/internal/optim"
	"github.com/san-kum/nlsolve/internal/tui"
	"github.com/san-kum/nlsolve/internal/viz"
)

func runAnalysis(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	exp := experiment.New(cfg)
	if err := exp.Setup(experiment.NewRegistry(), newLogger()); err != nil {
		return err
	}

	fmt.Printf("running %s (%s, %s control)...\n", cfg.Model, cfg.Solver, cfg.Control)
	start := time.Now()

	result, err := exp.Run(cmd.Context())
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	printResult(cfg, result)
	fmt.Printf("completed in %v\n", elapsed)
	return finish(cfg, result)
}

func liveAnalysis(cmd *cobra.Command, cfg *config.Config) error {
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	result, err := tui.RunLive(cmd.Context(), cfg, experiment.NewRegistry(), quiet)
	if errors.Is(err, context.Canceled) && result != nil {
		fmt.Println("stopped before the last step")
		printResult(cfg, result)
		return nil
	}
	if err != nil {
		return err
	}
	printResult(cfg, result)
	return finish(cfg, result)
}

func printResult(cfg *config.Config, result *nonlinear.Result) {
	fmt.Println(viz.RenderSummary(viz.NewSummary(cfg.Model, cfg.Solver, cfg.Control, result)))
	if len(result.Curve) > 1 {
		fmt.Println()
		fmt.Println(viz.LoadFactorChart(result.Curve, 60, 10))
		fmt.Println()
	}
}

// finish saves the run and writes the plot when asked to.
func finish(cfg *config.Config, result *nonlinear.Result) error {
	if !noSave {
		st, err := openStore()
		if err != nil {
			return err
		}
		runID, err := st.Save(cfg, result)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}

	if pngOut != "" {
		title := fmt.Sprintf("%s (%s, %s)", cfg.Model, cfg.Solver, cfg.Control)
		path, err := export.SaveCurve(pngOut, title, export.Series{Name: cfg.Solver, Curve: result.Curve})
		if err != nil {
			return err
		}
		fmt.Printf("plot: %s\n", path)
	}
	return nil
}

func status(res *nonlinear.Result) string {
	if res.Aborted {
		return "aborted"
	}
	return "completed"
}

func compareSolvers(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	outcomes := experiment.Compare(cmd.Context(), experiment.NewRegistry(), cfg, experiment.DefaultVariants(), newLogger())

	header := []string{"VARIANT", "STATUS", "STEPS", "ITER", "LOAD", "PEAK", "MESSAGE"}
	var rows [][]string
	iterations := make(map[string][]float64)
	var series []export.Series
	for _, o := range outcomes {
		if o.Err != nil {
			rows = append(rows, []string{o.Variant.Name, "error", "-", "-", "-", "-", o.Err.Error()})
			continue
		}
		r := o.Result
		rows = append(rows, []string{
			o.Variant.Name,
			status(r),
			fmt.Sprintf("%d", len(r.Steps)),
			fmt.Sprintf("%d", r.TotalIterations),
			fmt.Sprintf("%.4g", r.LoadFactor),
			fmt.Sprintf("%.4g", r.Metrics["peak_load"]),
			r.StopMessage,
		})

		its := make([]float64, len(r.Steps))
		for i, s := range r.Steps {
			its[i] = float64(s.History().Len())
		}
		iterations[o.Variant.Name] = its
		series = append(series, export.Series{Name: o.Variant.Name, Curve: r.Curve})
	}

	fmt.Printf("comparing solvers on %s\n\n", cfg.Model)
	fmt.Println(viz.RenderTable(header, rows))
	fmt.Println(viz.IterationChart(iterations, 60, 10))

	if pngOut != "" && len(series) > 0 {
		path, err := export.SaveCurve(pngOut, cfg.Model+" solver comparison", series...)
		if err != nil {
			return err
		}
		fmt.Printf("\nplot: %s\n", path)
	}
	return nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}

	outcomes, runErr := automation.RunScenario(cmd.Context(), scenario, experiment.NewRegistry(), st, newLogger())

	header := []string{"RUN", "MODEL", "SOLVER", "CONTROL", "STATUS", "STEPS", "ITER", "LOAD", "RUN ID"}
	rows := make([][]string, 0, len(outcomes))
	for _, o := range outcomes {
		rows = append(rows, []string{
			o.Name,
			o.Config.Model,
			o.Config.Solver,
			o.Config.Control,
			status(o.Result),
			fmt.Sprintf("%d", len(o.Result.Steps)),
			fmt.Sprintf("%d", o.Result.TotalIterations),
			fmt.Sprintf("%.4g", o.Result.LoadFactor),
			o.RunID,
		})
	}

	if scenario.Name != "" {
		fmt.Printf("scenario %s\n", scenario.Name)
	}
	if scenario.Description != "" {
		fmt.Println(viz.Subtle.Render(scenario.Description))
	}
	fmt.Println()
	fmt.Println(viz.RenderTable(header, rows))
	return runErr
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	sweep := &automation.ParameterSweep{
		Base:   cfg,
		Param:  sweepParam,
		Min:    sweepMin,
		Max:    sweepMax,
		Points: sweepPoints,
	}
	results, err := automation.RunSweep(cmd.Context(), sweep, experiment.NewRegistry(), newLogger())
	if err != nil {
		return err
	}

	header := []string{sweepParam, "STATUS", "STEPS", "ITER", "PEAK", "MESSAGE"}
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		if r.Err != nil {
			rows = append(rows, []string{fmt.Sprintf("%.4g", r.Value), "error", "-", "-", "-", r.Err.Error()})
			continue
		}
		rows = append(rows, []string{
			fmt.Sprintf("%.4g", r.Value),
			status(r.Result),
			fmt.Sprintf("%d", len(r.Result.Steps)),
			fmt.Sprintf("%d", r.Result.TotalIterations),
			fmt.Sprintf("%.4g", r.Result.Metrics["peak_load"]),
			r.Result.StopMessage,
		})
	}
	fmt.Println(viz.RenderTable(header, rows))
	return nil
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	mc := &automation.MonteCarloConfig{
		Base:         cfg,
		Param:        sweepParam,
		Perturbation: perturbation,
		NumTrials:    trials,
		Seed:         seed,
	}
	results, err := automation.RunMonteCarlo(cmd.Context(), mc, experiment.NewRegistry(), newLogger())
	if err != nil {
		return err
	}

	completed, aborted := automation.MonteCarloStats(results)
	lo, hi, sum := math.Inf(1), math.Inf(-1), 0.0
	for _, r := range results {
		lo = math.Min(lo, r.PeakLoad)
		hi = math.Max(hi, r.PeakLoad)
		sum += r.PeakLoad
	}

	fmt.Printf("%s ± %g over %d trials\n", sweepParam, perturbation, len(results))
	fmt.Printf("  completed: %d\n", completed)
	fmt.Printf("  aborted:   %d\n", aborted)
	if len(results) > 0 {
		fmt.Printf("  peak load: min %.5g  mean %.5g  max %.5g\n", lo, sum/float64(len(results)), hi)
	}
	return nil
}

func tuneSettings(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(tuneRanges))
	ranges := make([][]float64, 0, len(tuneRanges))
	for _, r := range tuneRanges {
		name, vals, err := parseRange(r)
		if err != nil {
			return err
		}
		names = append(names, name)
		ranges = append(ranges, vals)
	}

	search, err := optim.NewGridSearch(names, ranges, newLogger())
	if err != nil {
		return err
	}
	best, val, err := search.Search(cmd.Context(), cfg, experiment.NewRegistry(), metricName)
	if err != nil {
		return err
	}

	fmt.Printf("best %s: %.6g\n", metricName, val)
	for _, name := range names {
		fmt.Printf("  %s = %g\n", name, best[name])
	}
	return nil
}
