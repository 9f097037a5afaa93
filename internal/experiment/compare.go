package experiment

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/san-kum/nlsolve/internal/config"
	"github.com/san-kum/nlsolve/internal/nonlinear"
)

// Variant is one solver configuration in a comparison.
type Variant struct {
	Name    string
	Solver  string
	Control string
}

// Outcome pairs a variant with its result.
type Outcome struct {
	Variant Variant
	Result  *nonlinear.Result
	Err     error
}

// DefaultVariants covers every solver under load control plus
// Newton-Raphson under arc-length control.
func DefaultVariants() []Variant {
	return []Variant{
		{Name: "nr", Solver: nonlinear.NewtonRaphson.String(), Control: nonlinear.LoadControl.String()},
		{Name: "mnr", Solver: nonlinear.ModifiedNewtonRaphson.String(), Control: nonlinear.LoadControl.String()},
		{Name: "secant", Solver: nonlinear.Secant.String(), Control: nonlinear.LoadControl.String()},
		{Name: "nr-arc", Solver: nonlinear.NewtonRaphson.String(), Control: nonlinear.ArcLengthControl.String()},
	}
}

// Compare runs base once per variant. Each run builds its own model, so
// the runs proceed concurrently. Outcomes keep the order of variants; a
// setup error is recorded on its outcome and does not stop the others.
func Compare(ctx context.Context, reg *Registry, base *config.Config, variants []Variant, logger *slog.Logger) []Outcome {
	out := make([]Outcome, len(variants))

	var wg sync.WaitGroup
	for i, v := range variants {
		wg.Add(1)
		go func(idx int, v Variant) {
			defer wg.Done()

			cfg := base.Clone()
			if v.Solver != "" {
				cfg.Solver = v.Solver
			}
			if v.Control != "" {
				cfg.Control = v.Control
			}

			out[idx].Variant = v
			exp := New(cfg)
			if err := exp.Setup(reg, logger.With("variant", v.Name)); err != nil {
				out[idx].Err = fmt.Errorf("%s: %w", v.Name, err)
				return
			}
			out[idx].Result, out[idx].Err = exp.Run(ctx)
		}(i, v)
	}

	wg.Wait()
	return out
}
