package nonlinear

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func vec(v ...float64) *mat.VecDense { return mat.NewVecDense(len(v), v) }

func TestIterationUpdateForces(t *testing.T) {
	it := NewIteration(2, mat.NewDense(2, 2, []float64{1, 0, 0, 1}))
	it.UpdateForces(vec(1, 2), vec(4, 6))

	if it.ResidualForces.AtVec(0) != 3 || it.ResidualForces.AtVec(1) != 4 {
		t.Errorf("expected residual [3 4], got %v", it.ResidualForces.RawVector().Data)
	}
}

func TestIterationCalculateConvergence(t *testing.T) {
	it := NewIteration(2, nil)
	it.ResidualForces = vec(3, 4)
	it.DisplacementIncrement = vec(1, 0)
	it.CalculateConvergence(vec(0, 2), vec(0, 3))

	if math.Abs(it.ForceConvergence-25.0/5.0) > 1e-12 {
		t.Errorf("expected force convergence 5, got %g", it.ForceConvergence)
	}
	if math.Abs(it.DisplacementConvergence-1.0/10.0) > 1e-12 {
		t.Errorf("expected displacement convergence 0.1, got %g", it.DisplacementConvergence)
	}
}

func TestIterationCheckConvergence(t *testing.T) {
	p := DefaultParameters()
	p.MinIterations = 2
	p.ForceTolerance = 1e-3
	p.DisplacementTolerance = 1e-8

	tests := []struct {
		name   string
		number int
		fc, dc float64
		want   bool
	}{
		{"both below", 2, 1e-4, 1e-9, true},
		{"at tolerance", 2, 1e-3, 1e-8, true},
		{"below min iterations", 1, 0, 0, false},
		{"force above", 3, 1e-2, 1e-9, false},
		{"displacement above", 3, 1e-4, 1e-6, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it := &Iteration{Number: tt.number, ForceConvergence: tt.fc, DisplacementConvergence: tt.dc}
			if got := it.CheckConvergence(p); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestIterationStopReason(t *testing.T) {
	p := DefaultParameters()
	p.MaxIterations = 5

	it := NewIteration(1, mat.NewDense(1, 1, []float64{1}))
	it.Number = 3
	if r := it.StopReason(p); r != ReasonNone {
		t.Errorf("expected no stop, got %s", r)
	}

	it.Number = 5
	if r := it.StopReason(p); r != ReasonMaxIterations {
		t.Errorf("expected max iterations, got %s", r)
	}
	if !it.CheckStopCondition(p) {
		t.Error("expected stop condition")
	}

	it.ResidualForces.SetVec(0, math.NaN())
	if r := it.StopReason(p); r != ReasonNotFinite {
		t.Errorf("non-finite must take precedence, got %s", r)
	}

	it = NewIteration(1, mat.NewDense(1, 1, []float64{math.Inf(1)}))
	if it.IsFinite() {
		t.Error("infinite stiffness reported finite")
	}
}

func TestIterationCloneIsIndependent(t *testing.T) {
	it := NewIteration(2, mat.NewDense(2, 2, []float64{1, 2, 3, 4}))
	it.IncrementFromResidual = vec(1, 1)
	c := it.Clone()

	c.Displacements.SetVec(0, 9)
	c.ResidualForces.SetVec(0, 9)
	c.InternalForces.SetVec(0, 9)
	c.DisplacementIncrement.SetVec(0, 9)
	c.Stiffness.Set(0, 0, 9)
	c.IncrementFromResidual.SetVec(0, 9)

	if it.Displacements.AtVec(0) != 0 || it.ResidualForces.AtVec(0) != 0 ||
		it.InternalForces.AtVec(0) != 0 || it.DisplacementIncrement.AtVec(0) != 0 {
		t.Error("clone shares a vector with the original")
	}
	if it.Stiffness.At(0, 0) != 1 {
		t.Error("clone shares the stiffness with the original")
	}
	if it.IncrementFromResidual.AtVec(0) != 1 {
		t.Error("clone shares the arc-length vectors with the original")
	}
}

func TestIterationNext(t *testing.T) {
	it := NewIteration(1, nil)
	it.Number = 4
	it.LoadFactorIncrement = 0.3
	it.IncrementFromExternal = vec(1)

	n := it.next()
	if n.Number != 5 {
		t.Errorf("expected number 5, got %d", n.Number)
	}
	if n.LoadFactorIncrement != 0 || n.IncrementFromExternal != nil {
		t.Error("arc-length fields carried over")
	}
	if it.LoadFactorIncrement != 0.3 {
		t.Error("next modified its receiver")
	}
}

func TestHistory(t *testing.T) {
	var h History
	if h.First() != nil || h.Current() != nil || h.Previous(1) != nil {
		t.Fatal("empty history must return nil")
	}

	for i := 1; i <= 3; i++ {
		h.append(&Iteration{Number: i})
	}

	if h.Len() != 3 {
		t.Errorf("expected 3 iterations, got %d", h.Len())
	}
	if h.First().Number != 1 || h.Current().Number != 3 {
		t.Errorf("expected first 1 and current 3, got %d and %d", h.First().Number, h.Current().Number)
	}
	if h.Previous(0).Number != 3 || h.Previous(2).Number != 1 || h.Previous(3) != nil {
		t.Error("previous lookup wrong")
	}

	all := h.All()
	all[0] = nil
	if h.First() == nil {
		t.Error("All must return a copy")
	}
}
