package nonlinear

import (
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/nlsolve/internal/linalg"
)

// Iteration is one equilibrium iteration. Each iteration is produced by
// cloning its predecessor; once appended to a step's history it is not
// modified again.
type Iteration struct {
	Number int

	Displacements         *mat.VecDense
	ResidualForces        *mat.VecDense
	InternalForces        *mat.VecDense
	DisplacementIncrement *mat.VecDense
	Stiffness             *mat.Dense

	ForceConvergence        float64
	DisplacementConvergence float64

	// Arc-length decomposition of DisplacementIncrement. Both vectors are
	// nil for load-controlled iterations.
	LoadFactorIncrement   float64
	IncrementFromResidual *mat.VecDense
	IncrementFromExternal *mat.VecDense
}

// NewIteration returns iteration 0 for a model with n DOFs and the given
// stiffness. All vectors are zero.
func NewIteration(n int, stiffness *mat.Dense) *Iteration {
	return &Iteration{
		Displacements:         linalg.NewVector(n),
		ResidualForces:        linalg.NewVector(n),
		InternalForces:        linalg.NewVector(n),
		DisplacementIncrement: linalg.NewVector(n),
		Stiffness:             stiffness,
	}
}

// UpdateForces stores the internal forces and sets the residual to
// internal − applied.
func (it *Iteration) UpdateForces(applied, internal *mat.VecDense) {
	it.InternalForces = linalg.CloneVector(internal)
	r := linalg.NewVector(internal.Len())
	r.SubVec(internal, applied)
	it.ResidualForces = r
}

// IncrementDisplacements records du as this iteration's increment and adds
// it to the displacements.
func (it *Iteration) IncrementDisplacements(du *mat.VecDense) {
	it.DisplacementIncrement = linalg.CloneVector(du)
	u := linalg.NewVector(du.Len())
	u.AddVec(it.Displacements, du)
	it.Displacements = u
}

// CalculateConvergence computes the normalised squared residual and
// increment. The unit term in each denominator keeps the ratios defined when
// the applied load or the reference increment is zero.
func (it *Iteration) CalculateConvergence(applied, initialIncrement *mat.VecDense) {
	it.ForceConvergence = linalg.SumSquares(it.ResidualForces) / (1 + linalg.SumSquares(applied))
	ref := 0.0
	if initialIncrement != nil {
		ref = linalg.SumSquares(initialIncrement)
	}
	it.DisplacementConvergence = linalg.SumSquares(it.DisplacementIncrement) / (1 + ref)
}

// CheckConvergence requires the minimum iteration count and both the force
// and the displacement criterion.
func (it *Iteration) CheckConvergence(p Parameters) bool {
	return it.Number >= p.MinIterations &&
		it.ForceConvergence <= p.ForceTolerance &&
		it.DisplacementConvergence <= p.DisplacementTolerance
}

// CheckStopCondition reports fatal divergence: the iteration bound was hit
// or the state holds NaN or infinite values.
func (it *Iteration) CheckStopCondition(p Parameters) bool {
	return it.StopReason(p) != ReasonNone
}

// StopReason is CheckStopCondition with the cause. Non-finite values take
// precedence over the iteration bound.
func (it *Iteration) StopReason(p Parameters) StopReason {
	if !it.IsFinite() {
		return ReasonNotFinite
	}
	if it.Number >= p.MaxIterations {
		return ReasonMaxIterations
	}
	return ReasonNone
}

// IsFinite reports whether the residual, displacements and stiffness are
// free of NaN and infinite values.
func (it *Iteration) IsFinite() bool {
	return linalg.IsFinite(it.ResidualForces) &&
		linalg.IsFinite(it.Displacements) &&
		linalg.IsFinite(it.Stiffness) &&
		!isNaNOrInf(it.ForceConvergence) &&
		!isNaNOrInf(it.DisplacementConvergence)
}

// Clone returns a deep copy; no vector or matrix is shared with it.
func (it *Iteration) Clone() *Iteration {
	return &Iteration{
		Number:                  it.Number,
		Displacements:           linalg.CloneVector(it.Displacements),
		ResidualForces:          linalg.CloneVector(it.ResidualForces),
		InternalForces:          linalg.CloneVector(it.InternalForces),
		DisplacementIncrement:   linalg.CloneVector(it.DisplacementIncrement),
		Stiffness:               linalg.CloneMatrix(it.Stiffness),
		ForceConvergence:        it.ForceConvergence,
		DisplacementConvergence: it.DisplacementConvergence,
		LoadFactorIncrement:     it.LoadFactorIncrement,
		IncrementFromResidual:   linalg.CloneVector(it.IncrementFromResidual),
		IncrementFromExternal:   linalg.CloneVector(it.IncrementFromExternal),
	}
}

// next clones it as the starting point of the following iteration. The
// arc-length fields describe a single iteration and are not carried over.
func (it *Iteration) next() *Iteration {
	c := it.Clone()
	c.Number = it.Number + 1
	c.LoadFactorIncrement = 0
	c.IncrementFromResidual = nil
	c.IncrementFromExternal = nil
	return c
}
