package experiment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/san-kum/nlsolve/internal/config"
	"github.com/san-kum/nlsolve/internal/models"
	"github.com/san-kum/nlsolve/internal/nonlinear"
)

// Experiment is one configured analysis: a freshly built model, the solver
// parameters and the default metrics.
type Experiment struct {
	cfg      *config.Config
	model    *models.Assembly
	analysis *nonlinear.Analysis
}

func New(cfg *config.Config) *Experiment {
	return &Experiment{cfg: cfg.Clone()}
}

func (e *Experiment) Setup(reg *Registry, logger *slog.Logger, observers ...nonlinear.Observer) error {
	model, err := reg.GetModel(e.cfg.Model, e.cfg.ModelParams)
	if err != nil {
		return err
	}
	params, err := e.cfg.Parameters()
	if err != nil {
		return err
	}

	opts := []nonlinear.Option{nonlinear.WithLogger(logger.With("model", e.cfg.Model))}
	for _, m := range reg.DefaultMetrics(e.cfg.Model) {
		opts = append(opts, nonlinear.WithMetric(m))
	}
	for _, o := range observers {
		opts = append(opts, nonlinear.WithObserver(o))
	}

	a, err := nonlinear.New(model, params, opts...)
	if err != nil {
		return err
	}
	e.model = model
	e.analysis = a
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*nonlinear.Result, error) {
	if e.analysis == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.analysis.Execute(ctx, e.cfg.LoadFactor)
}

func (e *Experiment) Config() *config.Config { return e.cfg.Clone() }

func (e *Experiment) Model() *models.Assembly { return e.model }

// Analysis returns the underlying analysis for adding observers.
func (e *Experiment) Analysis() *nonlinear.Analysis {
	return e.analysis
}
