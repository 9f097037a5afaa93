package models

import (
	"fmt"
	"slices"

	"gonum.org/v1/gonum/mat"
)

// Assembly is a set of elements sharing n global DOFs. It implements the
// model and grip interfaces of the nonlinear package.
type Assembly struct {
	Name string

	n           int
	elements    []Element
	constraints []int
	forces      *mat.VecDense

	displacements *mat.VecDense
	reactions     *mat.VecDense
}

// NewAssembly returns an unloaded, unconstrained assembly with n DOFs.
func NewAssembly(name string, n int) *Assembly {
	return &Assembly{
		Name:          name,
		n:             n,
		forces:        mat.NewVecDense(n, nil),
		displacements: mat.NewVecDense(n, nil),
		reactions:     mat.NewVecDense(n, nil),
	}
}

// Add attaches elements. DOFs outside [0, n) other than Ground are an error.
func (a *Assembly) Add(elems ...Element) error {
	for _, e := range elems {
		for _, d := range e.DoFs() {
			if d != Ground && (d < 0 || d >= a.n) {
				return fmt.Errorf("element DOF %d outside [0, %d)", d, a.n)
			}
		}
		a.elements = append(a.elements, e)
	}
	return nil
}

// Fix constrains the given DOFs.
func (a *Assembly) Fix(dofs ...int) {
	for _, d := range dofs {
		if !slices.Contains(a.constraints, d) {
			a.constraints = append(a.constraints, d)
		}
	}
	slices.Sort(a.constraints)
}

// Load adds f to the reference force on dof.
func (a *Assembly) Load(dof int, f float64) {
	a.forces.SetVec(dof, a.forces.AtVec(dof)+f)
}

func (a *Assembly) Elements() []Element { return a.elements }

func (a *Assembly) NumberOfDoFs() int      { return a.n }
func (a *Assembly) ConstraintIndex() []int { return slices.Clone(a.constraints) }

func (a *Assembly) ExternalForces() *mat.VecDense {
	return mat.VecDenseCopyOf(a.forces)
}

func (a *Assembly) UpdateDisplacements(u *mat.VecDense) {
	for _, e := range a.elements {
		e.Update(u)
	}
}

// CalculateForces is a no-op: element forces are evaluated lazily from the
// state set by UpdateDisplacements.
func (a *Assembly) CalculateForces() {}

func (a *Assembly) AssembleStiffness() *mat.Dense {
	k := mat.NewDense(a.n, a.n, nil)
	for _, e := range a.elements {
		dofs := e.DoFs()
		t := e.Tangent()
		for i, gi := range dofs {
			if gi == Ground {
				continue
			}
			for j, gj := range dofs {
				if gj == Ground {
					continue
				}
				k.Set(gi, gj, k.At(gi, gj)+t.At(i, j))
			}
		}
	}
	return k
}

func (a *Assembly) AssembleInternalForces() *mat.VecDense {
	f := mat.NewVecDense(a.n, nil)
	for _, e := range a.elements {
		for i, fi := range e.Forces() {
			if g := e.DoFs()[i]; g != Ground {
				f.SetVec(g, f.AtVec(g)+fi)
			}
		}
	}
	return f
}

func (a *Assembly) SetDisplacements(u *mat.VecDense) { a.displacements = mat.VecDenseCopyOf(u) }
func (a *Assembly) SetReactions(r *mat.VecDense)     { a.reactions = mat.VecDenseCopyOf(r) }

// Displacements are the displacements of the last accepted state.
func (a *Assembly) Displacements() *mat.VecDense { return mat.VecDenseCopyOf(a.displacements) }

// Reactions are the support forces of the last accepted state.
func (a *Assembly) Reactions() *mat.VecDense { return mat.VecDenseCopyOf(a.reactions) }
