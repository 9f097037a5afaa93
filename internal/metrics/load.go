package metrics

import (
	"math"

	"github.com/san-kum/nlsolve/internal/nonlinear"
)

// PeakLoad is the largest load factor reached by a converged step. For a
// path with a limit point it approximates the limit load.
type PeakLoad struct {
	name    string
	peak    float64
	samples int
}

func NewPeakLoad() *PeakLoad {
	return &PeakLoad{name: "peak_load"}
}

func (m *PeakLoad) Name() string { return m.name }

func (m *PeakLoad) Observe(step *nonlinear.LoadStep) {
	if m.samples == 0 || step.LoadFactor > m.peak {
		m.peak = step.LoadFactor
	}
	m.samples++
}

func (m *PeakLoad) Value() float64 { return m.peak }

func (m *PeakLoad) Reset() {
	m.peak = 0
	m.samples = 0
}

// FinalResidual is the force convergence ratio of the last converged step.
type FinalResidual struct {
	name  string
	value float64
}

func NewFinalResidual() *FinalResidual {
	return &FinalResidual{name: "final_residual"}
}

func (m *FinalResidual) Name() string { return m.name }

func (m *FinalResidual) Observe(step *nonlinear.LoadStep) {
	m.value = step.FinalIteration().ForceConvergence
}

func (m *FinalResidual) Value() float64 { return m.value }
func (m *FinalResidual) Reset()         { m.value = 0 }

// PathLength is the summed norm of the displacement change between
// consecutive converged steps.
type PathLength struct {
	name   string
	length float64
	last   []float64
}

func NewPathLength() *PathLength {
	return &PathLength{name: "path_length"}
}

func (m *PathLength) Name() string { return m.name }

func (m *PathLength) Observe(step *nonlinear.LoadStep) {
	u := step.FinalIteration().Displacements.RawVector().Data
	if m.last == nil {
		m.last = make([]float64, len(u))
	}
	var ss float64
	for i := range u {
		d := u[i] - m.last[i]
		ss += d * d
	}
	m.length += math.Sqrt(ss)
	copy(m.last, u)
}

func (m *PathLength) Value() float64 { return m.length }

func (m *PathLength) Reset() {
	m.length = 0
	m.last = nil
}

// Default returns a fresh set of the standard metrics.
func Default() []nonlinear.Metric {
	return []nonlinear.Metric{
		NewSteps(),
		NewIterations(),
		NewMaxIterations(),
		NewPeakLoad(),
		NewFinalResidual(),
		NewPathLength(),
	}
}
