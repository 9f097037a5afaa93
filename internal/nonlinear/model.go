package nonlinear

import "gonum.org/v1/gonum/mat"

// Model is the assembled structure the analysis iterates on. Element
// formulations and assembly live behind it.
type Model interface {
	NumberOfDoFs() int
	// ConstraintIndex lists the globally fixed DOFs.
	ConstraintIndex() []int
	// ExternalForces is the reference load vector scaled by the load factor.
	ExternalForces() *mat.VecDense

	// UpdateDisplacements pushes global displacements to the elements.
	UpdateDisplacements(u *mat.VecDense)
	// CalculateForces refreshes element forces at the current displacements.
	CalculateForces()
	// AssembleStiffness recomputes element tangents and returns the global
	// tangent stiffness. The returned matrix is owned by the caller.
	AssembleStiffness() *mat.Dense
	// AssembleInternalForces returns the global internal force vector.
	AssembleInternalForces() *mat.VecDense
}

// Grip receives the boundary-condition results of each accepted state.
// Models that also implement Grip are updated after every converged step
// and after a rollback.
type Grip interface {
	SetDisplacements(u *mat.VecDense)
	SetReactions(r *mat.VecDense)
}
