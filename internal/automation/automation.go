package automation

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/nlsolve/internal/config"
	"github.com/san-kum/nlsolve/internal/experiment"
	"github.com/san-kum/nlsolve/internal/nonlinear"
	"github.com/san-kum/nlsolve/internal/storage"
)

// Scenario is a scripted batch of analyses.
type Scenario struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Runs        []ScenarioRun `yaml:"runs"`
}

// ScenarioRun is one analysis of a scenario. The configuration starts from
// Config (a YAML file), else Preset, else the defaults for Model; the
// remaining fields override it when set.
type ScenarioRun struct {
	Name       string             `yaml:"name"`
	Model      string             `yaml:"model"`
	Preset     string             `yaml:"preset"`
	Config     string             `yaml:"config"`
	Solver     string             `yaml:"solver"`
	Control    string             `yaml:"control"`
	LoadFactor float64            `yaml:"load_factor"`
	Steps      int                `yaml:"steps"`
	Params     map[string]float64 `yaml:"params"`
	Save       bool               `yaml:"save"`
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(scenario.Runs) == 0 {
		return nil, fmt.Errorf("scenario %s has no runs", path)
	}

	return &scenario, nil
}

// Build resolves the run's configuration.
func (r ScenarioRun) Build() (*config.Config, error) {
	var cfg *config.Config
	switch {
	case r.Config != "":
		c, err := config.Load(r.Config)
		if err != nil {
			return nil, err
		}
		cfg = c
	case r.Preset != "":
		cfg = config.GetPreset(r.Model, r.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset %s/%s", r.Model, r.Preset)
		}
	default:
		if r.Model == "" {
			return nil, fmt.Errorf("run %q names no model, preset or config", r.Name)
		}
		cfg = config.DefaultConfig()
		cfg.Model = r.Model
	}

	if r.Solver != "" {
		cfg.Solver = r.Solver
	}
	if r.Control != "" {
		cfg.Control = r.Control
	}
	if r.LoadFactor != 0 {
		cfg.LoadFactor = r.LoadFactor
	}
	if r.Steps != 0 {
		cfg.Steps = r.Steps
	}
	for k, v := range r.Params {
		if err := cfg.Set(k, v); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// RunOutcome is the result of one scenario run. RunID is set when the run
// was saved.
type RunOutcome struct {
	Name   string
	Config *config.Config
	Result *nonlinear.Result
	RunID  string
}

// RunScenario executes the runs in order. An aborted analysis is an
// outcome, not an error; configuration and storage failures stop the batch.
func RunScenario(ctx context.Context, scenario *Scenario, registry *experiment.Registry, store *storage.Store, logger *slog.Logger) ([]RunOutcome, error) {
	results := make([]RunOutcome, 0, len(scenario.Runs))

	for i, run := range scenario.Runs {
		name := run.Name
		if name == "" {
			name = fmt.Sprintf("run-%d", i+1)
		}
		logger.Info("scenario run", "scenario", scenario.Name, "run", name, "index", i+1, "of", len(scenario.Runs))

		cfg, err := run.Build()
		if err != nil {
			return results, fmt.Errorf("run %d (%s): %w", i+1, name, err)
		}

		exp := experiment.New(cfg)
		if err := exp.Setup(registry, logger); err != nil {
			return results, fmt.Errorf("run %d (%s) setup: %w", i+1, name, err)
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("run %d (%s): %w", i+1, name, err)
		}

		out := RunOutcome{Name: name, Config: cfg, Result: result}
		if run.Save && store != nil {
			id, err := store.Save(cfg, result)
			if err != nil {
				return results, fmt.Errorf("run %d (%s) save: %w", i+1, name, err)
			}
			out.RunID = id
		}
		results = append(results, out)
	}

	return results, nil
}

// ParameterSweep runs one configuration across evenly spaced values of a
// single parameter.
type ParameterSweep struct {
	Base   *config.Config
	Param  string
	Min    float64
	Max    float64
	Points int
}

// SweepResult holds one point of a sweep. Err is set when the value could
// not be analysed.
type SweepResult struct {
	Value  float64
	Result *nonlinear.Result
	Err    error
}

func (s *ParameterSweep) values() []float64 {
	if s.Points <= 1 {
		return []float64{s.Min}
	}
	step := (s.Max - s.Min) / float64(s.Points-1)
	vals := make([]float64, s.Points)
	for i := range vals {
		vals[i] = s.Min + float64(i)*step
	}
	return vals
}

// RunSweep executes a parameter sweep
func RunSweep(ctx context.Context, sweep *ParameterSweep, registry *experiment.Registry, logger *slog.Logger) ([]SweepResult, error) {
	if _, err := sweep.Base.Get(sweep.Param); err != nil {
		return nil, err
	}

	vals := sweep.values()
	results := make([]SweepResult, 0, len(vals))
	for i, v := range vals {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		cfg := sweep.Base.Clone()
		res, err := runWith(ctx, cfg, sweep.Param, v, registry, logger)
		results = append(results, SweepResult{Value: v, Result: res, Err: err})
		logger.Info("sweep", "index", i+1, "of", len(vals), "param", sweep.Param, "value", v)
	}
	return results, nil
}

func runWith(ctx context.Context, cfg *config.Config, param string, v float64, registry *experiment.Registry, logger *slog.Logger) (*nonlinear.Result, error) {
	if err := cfg.Set(param, v); err != nil {
		return nil, err
	}
	exp := experiment.New(cfg)
	if err := exp.Setup(registry, logger); err != nil {
		return nil, err
	}
	return exp.Run(ctx)
}

// MonteCarloConfig perturbs one parameter uniformly by up to ±Perturbation
// around its base value.
type MonteCarloConfig struct {
	Base         *config.Config
	Param        string
	Perturbation float64
	NumTrials    int
	Seed         int64
}

// MonteCarloResult holds the outcome of one trial.
type MonteCarloResult struct {
	TrialID  int
	Value    float64
	PeakLoad float64
	Aborted  bool
	Err      error
}

// RunMonteCarlo executes multiple trials with random perturbations
func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig, registry *experiment.Registry, logger *slog.Logger) ([]MonteCarloResult, error) {
	base, err := cfg.Base.Get(cfg.Param)
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	if cfg.Seed == 0 {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	results := make([]MonteCarloResult, 0, cfg.NumTrials)
	for trial := 0; trial < cfg.NumTrials; trial++ {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		v := base + (rng.Float64()-0.5)*2*cfg.Perturbation

		res, err := runWith(ctx, cfg.Base.Clone(), cfg.Param, v, registry, logger)
		r := MonteCarloResult{TrialID: trial, Value: v, Err: err}
		if res != nil {
			r.Aborted = res.Aborted
			r.PeakLoad = peakLoad(res.Curve)
		}
		results = append(results, r)

		if (trial+1)%10 == 0 {
			logger.Info("monte carlo", "trials", trial+1, "of", cfg.NumTrials)
		}
	}

	return results, nil
}

func peakLoad(curve []nonlinear.CurvePoint) float64 {
	var peak float64
	for _, pt := range curve {
		peak = max(peak, pt.LoadFactor)
	}
	return peak
}

// MonteCarloStats counts trials that ran to completion and those that
// aborted or failed.
func MonteCarloStats(results []MonteCarloResult) (completed int, aborted int) {
	for _, r := range results {
		if r.Err == nil && !r.Aborted {
			completed++
		} else {
			aborted++
		}
	}
	return
}
