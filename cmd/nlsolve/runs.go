package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/san-kum/nlsolve/internal/config"
	"github.com/san-kum/nlsolve/internal/export"
	"github.com/san-kum/nlsolve/internal/storage"
	"github.com/san-kum/nlsolve/internal/viz"
)

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	header := []string{"ID", "MODEL", "TIME", "SOLVER", "CONTROL", "STEPS", "ITER", "LOAD", "STATUS"}
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		state := "completed"
		if run.Aborted {
			state = "aborted"
		}
		rows = append(rows, []string{
			run.ID,
			run.Model,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Solver,
			run.Control,
			fmt.Sprintf("%d", run.Steps),
			fmt.Sprintf("%d", run.Iterations),
			fmt.Sprintf("%.4g", run.LoadFactor),
			state,
		})
	}
	fmt.Print(viz.RenderTable(header, rows))
	return nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := resolveRun(st, args[0])
	if err != nil {
		return err
	}

	curve, err := st.LoadCurve(meta.ID)
	if err != nil {
		return err
	}
	if len(curve) < 2 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("model: %s (%s, %s)\n", meta.Model, meta.Solver, meta.Control)
	fmt.Printf("points: %d\n\n", len(curve))

	fmt.Println(viz.CurvePlot(curve, 40, 12))
	fmt.Println()
	fmt.Println(viz.LoadFactorChart(curve, 60, 10))
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := resolveRun(st, args[0])
	if err != nil {
		return err
	}
	return st.ExportCSV(meta.ID, csvOut)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := resolveRun(st, args[0])
	if err != nil {
		return err
	}
	data, err := st.LoadExportData(meta.ID)
	if err != nil {
		return err
	}
	return storage.ExportJSON(jsonOut, data)
}

func exportPNG(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)

	series := make([]export.Series, 0, len(args))
	title := ""
	for _, id := range args {
		meta, err := resolveRun(st, id)
		if err != nil {
			return err
		}
		curve, err := st.LoadCurve(meta.ID)
		if err != nil {
			return err
		}
		name := fmt.Sprintf("%s %s", meta.Solver, meta.Control)
		if len(args) == 1 {
			title = fmt.Sprintf("%s (%s)", meta.Model, name)
			name = ""
		}
		series = append(series, export.Series{Name: name, Curve: curve})
	}
	if title == "" {
		title = "load-displacement"
	}

	path, err := export.SaveCurve(plotFile, title, series...)
	if err != nil {
		return err
	}
	fmt.Printf("saved %s\n", path)
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	models := config.ListModels()
	if len(args) > 0 {
		models = args
	}

	for _, model := range models {
		presets := config.ListPresets(model)
		if len(presets) == 0 {
			fmt.Printf("no presets for model: %s\n", model)
			continue
		}
		fmt.Printf("presets for %s:\n", model)
		for _, p := range presets {
			fmt.Printf("  %s\n", p)
		}
	}
	return nil
}
