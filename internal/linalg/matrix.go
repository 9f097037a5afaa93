package linalg

import (
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// ErrSingular is returned by Solve when the factorised system has no unique
// solution.
var ErrSingular = errors.New("linalg: singular system")

// CloneMatrix returns an independent copy of m. A nil matrix clones to nil.
func CloneMatrix(m *mat.Dense) *mat.Dense {
	if m == nil {
		return nil
	}
	return mat.DenseCopyOf(m)
}

// Simplify returns a copy of k in which every constrained DOF and every DOF
// with an all-zero stiffness row has its row and column zeroed and a unit
// diagonal. The second result lists the eliminated DOFs in ascending order;
// right-hand sides must be passed through ReduceVector with it.
func Simplify(k *mat.Dense, constraints []int) (*mat.Dense, []int) {
	n, _ := k.Dims()
	kr := mat.DenseCopyOf(k)

	marked := make(map[int]bool, len(constraints))
	for _, i := range constraints {
		if i >= 0 && i < n {
			marked[i] = true
		}
	}
	for i := 0; i < n; i++ {
		if marked[i] {
			continue
		}
		zero := true
		for j := 0; j < n; j++ {
			if kr.At(i, j) != 0 {
				zero = false
				break
			}
		}
		if zero {
			marked[i] = true
		}
	}

	eliminated := make([]int, 0, len(marked))
	for i := range marked {
		eliminated = append(eliminated, i)
	}
	sort.Ints(eliminated)

	for _, i := range eliminated {
		for j := 0; j < n; j++ {
			kr.Set(i, j, 0)
			kr.Set(j, i, 0)
		}
		kr.Set(i, i, 1)
	}
	return kr, eliminated
}

// ReduceVector returns a copy of v with the eliminated entries set to zero.
func ReduceVector(v mat.Vector, eliminated []int) *mat.VecDense {
	out := mat.VecDenseCopyOf(v)
	ZeroEntries(out, eliminated)
	return out
}

// Solve returns x such that k·x = b using a dense LU factorisation. The
// system is expected to be simplified already. Ill-conditioned systems beyond
// gonum's condition tolerance are reported as ErrSingular.
func Solve(k *mat.Dense, b mat.Vector) (*mat.VecDense, error) {
	n, c := k.Dims()
	if n != c || n != b.Len() {
		return nil, fmt.Errorf("linalg: cannot solve %dx%d system with rhs of length %d", n, c, b.Len())
	}

	var lu mat.LU
	lu.Factorize(k)

	x := NewVector(n)
	if err := lu.SolveVecTo(x, false, b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSingular, err)
	}
	if !IsFinite(x) {
		return nil, ErrSingular
	}
	return x, nil
}

// DetSign returns the sign of det(k) as -1, 0 or +1. It uses the
// log-determinant so large systems do not overflow.
func DetSign(k *mat.Dense) float64 {
	var lu mat.LU
	lu.Factorize(k)
	_, sign := lu.LogDet()
	return sign
}
