package nonlinear

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/nlsolve/internal/linalg"
)

// SecantStiffness returns the Broyden rank-one update
//
//	K⁺ = K + ((Δr − K·Δu) / (Δu·Δu)) ⊗ Δu
//
// so that K⁺·Δu = Δr. A zero Δu leaves K unchanged.
func SecantStiffness(k *mat.Dense, du, dr *mat.VecDense) *mat.Dense {
	denom := linalg.SumSquares(du)
	if denom == 0 {
		return linalg.CloneMatrix(k)
	}

	var kdu mat.VecDense
	kdu.MulVec(k, du)

	corr := linalg.NewVector(dr.Len())
	corr.SubVec(dr, &kdu)

	n, c := k.Dims()
	out := mat.NewDense(n, c, nil)
	out.RankOne(k, 1/denom, corr, du)
	return out
}

// updateStiffness sets it.Stiffness according to the solver kind. It runs
// after the displacements were pushed to the model; the secant update runs
// later, once the new residual is known (see secantUpdate).
func (s *LoadStep) updateStiffness(it *Iteration) {
	switch s.params.Solver {
	case NewtonRaphson:
		it.Stiffness = s.model.AssembleStiffness()
	case ModifiedNewtonRaphson:
		if it.Number == 1 {
			it.Stiffness = s.model.AssembleStiffness()
		}
	case Secant:
	}
}

// secantUpdate applies the rank-one correction between prev and it. The
// internal-force difference equals the residual difference under a fixed
// load and stays meaningful when the arc-length load changes in between.
func (s *LoadStep) secantUpdate(prev, it *Iteration) {
	if s.params.Solver != Secant {
		return
	}
	dr := linalg.NewVector(it.InternalForces.Len())
	dr.SubVec(it.InternalForces, prev.InternalForces)
	du := linalg.NewVector(it.Displacements.Len())
	du.SubVec(it.Displacements, prev.Displacements)
	it.Stiffness = SecantStiffness(prev.Stiffness, du, dr)
}

func isNaNOrInf(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}
