// Package linalg provides the dense linear algebra used by the equilibrium
// iteration: finite checks, sum-of-squares norms, constraint elimination and
// an LU based solve.
//
// All types are gonum [mat.VecDense] and [mat.Dense] values. Functions never
// modify their inputs unless the name says so (ZeroEntries).
//
//	kr, eliminated := linalg.Simplify(k, constraints)
//	rhs := linalg.ReduceVector(r, eliminated)
//	du, err := linalg.Solve(kr, rhs)
package linalg
