package linalg

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// NewVector returns a zero vector of length n.
func NewVector(n int) *mat.VecDense {
	return mat.NewVecDense(n, nil)
}

// CloneVector returns an independent copy of v. A nil vector clones to nil.
func CloneVector(v *mat.VecDense) *mat.VecDense {
	if v == nil {
		return nil
	}
	return mat.VecDenseCopyOf(v)
}

// IsFinite reports whether every entry of m is neither NaN nor infinite.
// A nil matrix is considered finite.
func IsFinite(m mat.Matrix) bool {
	if m == nil {
		return true
	}
	switch t := m.(type) {
	case *mat.VecDense:
		if t == nil {
			return true
		}
	case *mat.Dense:
		if t == nil {
			return true
		}
	}
	r, c := m.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := m.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}

// SumSquares returns Σ vᵢ².
func SumSquares(v mat.Vector) float64 {
	return mat.Dot(v, v)
}

// Norm returns the Euclidean norm of v.
func Norm(v mat.Vector) float64 {
	return math.Sqrt(SumSquares(v))
}

// Scaled returns alpha·v as a new vector.
func Scaled(alpha float64, v mat.Vector) *mat.VecDense {
	out := NewVector(v.Len())
	out.ScaleVec(alpha, v)
	return out
}

// Combine returns a + alpha·b as a new vector.
func Combine(a mat.Vector, alpha float64, b mat.Vector) *mat.VecDense {
	out := NewVector(a.Len())
	out.AddScaledVec(a, alpha, b)
	return out
}

// ZeroEntries sets the listed entries of v to zero in place.
func ZeroEntries(v *mat.VecDense, idx []int) {
	for _, i := range idx {
		v.SetVec(i, 0)
	}
}
