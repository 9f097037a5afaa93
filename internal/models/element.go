package models

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Ground marks an element end that is attached to a fixed support instead
// of a DOF.
const Ground = -1

// Element is a finite element connected to a set of global DOFs. A DOF of
// Ground contributes zero displacement and is skipped during assembly.
type Element interface {
	DoFs() []int
	// Update reads the element's displacements from the global vector.
	Update(u *mat.VecDense)
	// Forces returns the element's internal forces, one per DOF.
	Forces() []float64
	// Tangent returns the element's tangent stiffness, one row per DOF.
	Tangent() *mat.Dense
}

func at(u *mat.VecDense, dof int) float64 {
	if dof == Ground {
		return 0
	}
	return u.AtVec(dof)
}

// Spring is a 1-D element between DOFs I and J with elongation u_J − u_I.
type Spring struct {
	I, J int
	Law  Law

	elongation float64
}

func (s *Spring) DoFs() []int { return []int{s.I, s.J} }

func (s *Spring) Update(u *mat.VecDense) {
	s.elongation = at(u, s.J) - at(u, s.I)
}

func (s *Spring) Elongation() float64 { return s.elongation }

// AxialForce is the spring force at the current elongation.
func (s *Spring) AxialForce() float64 {
	f, _ := s.Law.Force(s.elongation)
	return f
}

func (s *Spring) Forces() []float64 {
	f := s.AxialForce()
	return []float64{-f, f}
}

func (s *Spring) Tangent() *mat.Dense {
	_, k := s.Law.Force(s.elongation)
	return mat.NewDense(2, 2, []float64{k, -k, -k, k})
}

// Bar is a 2-D truss bar with Green–Lagrange strain and a linear
// St. Venant–Kirchhoff material. DOFs are [xi, yi, xj, yj].
type Bar struct {
	Nodes [2][2]float64
	DOF   [4]int
	EA    float64

	x [2]float64
}

// NewBar returns a bar from node i at (xi, yi) to node j at (xj, yj).
func NewBar(xi, yi, xj, yj float64, dofs [4]int, ea float64) *Bar {
	b := &Bar{Nodes: [2][2]float64{{xi, yi}, {xj, yj}}, DOF: dofs, EA: ea}
	b.x = b.reference()
	return b
}

func (b *Bar) reference() [2]float64 {
	return [2]float64{b.Nodes[1][0] - b.Nodes[0][0], b.Nodes[1][1] - b.Nodes[0][1]}
}

func (b *Bar) Length() float64 {
	r := b.reference()
	return math.Hypot(r[0], r[1])
}

func (b *Bar) DoFs() []int { return b.DOF[:] }

func (b *Bar) Update(u *mat.VecDense) {
	r := b.reference()
	b.x[0] = r[0] + at(u, b.DOF[2]) - at(u, b.DOF[0])
	b.x[1] = r[1] + at(u, b.DOF[3]) - at(u, b.DOF[1])
}

// Strain is the Green–Lagrange strain (l² − L²) / 2L².
func (b *Bar) Strain() float64 {
	l0 := b.Length()
	return (b.x[0]*b.x[0] + b.x[1]*b.x[1] - l0*l0) / (2 * l0 * l0)
}

// AxialForce is the second Piola–Kirchhoff force EA·E.
func (b *Bar) AxialForce() float64 { return b.EA * b.Strain() }

func (b *Bar) Forces() []float64 {
	s := b.AxialForce() / b.Length()
	fx, fy := s*b.x[0], s*b.x[1]
	return []float64{-fx, -fy, fx, fy}
}

// Tangent is the material part EA/L³·x⊗x plus the geometric part N/L·I,
// expanded to the four bar DOFs.
func (b *Bar) Tangent() *mat.Dense {
	l0 := b.Length()
	km := b.EA / (l0 * l0 * l0)
	kg := b.AxialForce() / l0

	var k [2][2]float64
	for i := range 2 {
		for j := range 2 {
			k[i][j] = km * b.x[i] * b.x[j]
		}
		k[i][i] += kg
	}

	t := mat.NewDense(4, 4, nil)
	for i := range 2 {
		for j := range 2 {
			t.Set(i, j, k[i][j])
			t.Set(i+2, j+2, k[i][j])
			t.Set(i, j+2, -k[i][j])
			t.Set(i+2, j, -k[i][j])
		}
	}
	return t
}
