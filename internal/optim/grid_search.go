package optim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"maps"

	"github.com/san-kum/nlsolve/internal/config"
	"github.com/san-kum/nlsolve/internal/experiment"
)

var ErrNoCandidate = errors.New("optim: no parameter combination completed")

// GridSearch tries every combination of the parameter ranges and keeps the
// one with the smallest metric value. Aborted analyses do not qualify.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	logger     *slog.Logger
}

func NewGridSearch(params []string, ranges [][]float64, logger *slog.Logger) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("optim: %d parameters but %d ranges", len(params), len(ranges))
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GridSearch{paramNames: params, ranges: ranges, logger: logger}, nil
}

type candidate struct {
	value  float64
	params map[string]float64
}

func (g *GridSearch) Search(
	ctx context.Context,
	base *config.Config,
	registry *experiment.Registry,
	metricName string,
) (map[string]float64, float64, error) {
	for _, name := range g.paramNames {
		if _, err := base.Get(name); err != nil {
			return nil, 0, err
		}
	}

	best := candidate{value: math.Inf(1)}
	if err := g.searchRecursive(ctx, 0, make(map[string]float64), base, registry, metricName, &best); err != nil {
		return nil, 0, err
	}
	if best.params == nil {
		return nil, 0, ErrNoCandidate
	}
	return best.params, best.value, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	base *config.Config,
	registry *experiment.Registry,
	metricName string,
	best *candidate,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		cfg := base.Clone()
		for k, v := range current {
			if err := cfg.Set(k, v); err != nil {
				return err
			}
		}

		exp := experiment.New(cfg)
		if err := exp.Setup(registry, g.logger); err != nil {
			g.logger.Debug("candidate rejected", "params", current, "error", err)
			return nil
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return err
		}
		if result.Aborted {
			g.logger.Debug("candidate aborted", "params", current, "message", result.StopMessage)
			return nil
		}

		val, ok := result.Metrics[metricName]
		if !ok {
			return fmt.Errorf("optim: unknown metric %q", metricName)
		}
		if val < best.value {
			best.value = val
			best.params = maps.Clone(current)
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := maps.Clone(current)
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, base, registry, metricName, best); err != nil {
			return err
		}
	}
	return nil
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out
}
