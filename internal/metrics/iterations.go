package metrics

import "github.com/san-kum/nlsolve/internal/nonlinear"

// Iterations is the mean number of equilibrium iterations per converged
// step.
type Iterations struct {
	name    string
	total   int
	samples int
}

func NewIterations() *Iterations {
	return &Iterations{name: "mean_iterations"}
}

func (m *Iterations) Name() string { return m.name }

func (m *Iterations) Observe(step *nonlinear.LoadStep) {
	m.total += step.History().Len()
	m.samples++
}

func (m *Iterations) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return float64(m.total) / float64(m.samples)
}

func (m *Iterations) Reset() {
	m.total = 0
	m.samples = 0
}

// MaxIterations is the largest iteration count of any converged step.
type MaxIterations struct {
	name string
	max  int
}

func NewMaxIterations() *MaxIterations {
	return &MaxIterations{name: "max_iterations"}
}

func (m *MaxIterations) Name() string { return m.name }

func (m *MaxIterations) Observe(step *nonlinear.LoadStep) {
	m.max = max(m.max, step.History().Len())
}

func (m *MaxIterations) Value() float64 { return float64(m.max) }
func (m *MaxIterations) Reset()         { m.max = 0 }

// Steps counts converged steps.
type Steps struct {
	name string
	n    int
}

func NewSteps() *Steps {
	return &Steps{name: "steps"}
}

func (m *Steps) Name() string                     { return m.name }
func (m *Steps) Observe(step *nonlinear.LoadStep) { m.n++ }
func (m *Steps) Value() float64                   { return float64(m.n) }
func (m *Steps) Reset()                           { m.n = 0 }
