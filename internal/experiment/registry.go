package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/nlsolve/internal/config"
	"github.com/san-kum/nlsolve/internal/metrics"
	"github.com/san-kum/nlsolve/internal/models"
	"github.com/san-kum/nlsolve/internal/nonlinear"
)

// ModelFactory builds a fresh model from its configuration.
type ModelFactory func(p config.ModelConfig) (*models.Assembly, error)

type Registry struct {
	models map[string]ModelFactory
}

func NewRegistry() *Registry {
	r := &Registry{
		models: make(map[string]ModelFactory),
	}

	r.models["spring"] = func(p config.ModelConfig) (*models.Assembly, error) {
		if p.Stiffness <= 0 {
			return nil, fmt.Errorf("spring: stiffness must be positive, got %g", p.Stiffness)
		}
		return models.NewSpring(p.Stiffness, p.Force), nil
	}
	r.models["softening_spring"] = func(p config.ModelConfig) (*models.Assembly, error) {
		if p.Stiffness <= 0 || p.Yield <= 0 {
			return nil, fmt.Errorf("softening_spring: stiffness and yield must be positive")
		}
		return models.NewSofteningSpring(p.Stiffness, p.Stiffness2, p.Yield, p.Force), nil
	}
	r.models["spring_chain"] = func(p config.ModelConfig) (*models.Assembly, error) {
		if p.Springs < 1 {
			return nil, fmt.Errorf("spring_chain: need at least one spring, got %d", p.Springs)
		}
		return models.NewSpringChain(p.Springs, p.Stiffness, p.Cubic, p.Force), nil
	}
	r.models["von_mises"] = func(p config.ModelConfig) (*models.Assembly, error) {
		if p.Span <= 0 || p.EA <= 0 {
			return nil, fmt.Errorf("von_mises: span and ea must be positive")
		}
		return models.NewVonMisesTruss(p.Span, p.Rise, p.EA, p.Force), nil
	}

	return r
}

// Register adds or replaces a model factory.
func (r *Registry) Register(name string, f ModelFactory) {
	r.models[name] = f
}

func (r *Registry) GetModel(name string, p config.ModelConfig) (*models.Assembly, error) {
	fn, ok := r.models[name]
	if !ok {
		return nil, fmt.Errorf("unknown model: %s", name)
	}
	return fn(p)
}

func (r *Registry) ListModels() []string {
	names := make([]string, 0, len(r.models))
	for name := range r.models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) DefaultMetrics(model string) []nonlinear.Metric {
	return metrics.Default()
}
