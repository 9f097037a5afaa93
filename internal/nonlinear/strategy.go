package nonlinear

import (
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/nlsolve/internal/linalg"
)

// Strategy computes the increments of one iteration. it is the fresh clone
// of the previous iteration: its displacements, residual and stiffness are
// the values the increment must be solved from.
type Strategy interface {
	Control() Control
	// Increment returns the displacement increment and the load-factor
	// increment that accompanies it.
	Increment(s *LoadStep, it *Iteration) (du *mat.VecDense, dLambda float64, reason StopReason, err error)
}

// LoadStepping keeps the load factor fixed within a step and solves
// Δu = −K⁻¹·r.
type LoadStepping struct{}

func (LoadStepping) Control() Control { return LoadControl }

func (LoadStepping) Increment(s *LoadStep, it *Iteration) (*mat.VecDense, float64, StopReason, error) {
	kr, eliminated := linalg.Simplify(it.Stiffness, s.constraints)
	rhs := linalg.ReduceVector(it.ResidualForces, eliminated)
	rhs.ScaleVec(-1, rhs)

	du, err := linalg.Solve(kr, rhs)
	if err != nil {
		return nil, 0, ReasonSingular, err
	}
	return du, 0, ReasonNone, nil
}
