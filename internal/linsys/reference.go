package linsys

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Reference solves ax = b with gonum's LU factorization. It records no
// history and is used to cross-check the step-by-step solvers.
func Reference(a Matrix, b Vector) (Vector, error) {
	if err := validate(a, b); err != nil {
		return nil, err
	}
	var x mat.VecDense
	if err := x.SolveVec(a.Dense(), mat.NewVecDense(len(b), b.Clone())); err != nil {
		// an ill-conditioned but nonsingular system still yields x
		var cond mat.Condition
		if !errors.As(err, &cond) || math.IsInf(float64(cond), 1) || x.Len() == 0 {
			return nil, fmt.Errorf("%w: %v", ErrSingular, err)
		}
	}
	out := make(Vector, len(b))
	for i := range out {
		out[i] = x.AtVec(i)
	}
	return out, nil
}

// Condition returns the 2-norm condition number of a.
func Condition(a Matrix) float64 {
	return mat.Cond(a.Dense(), 2)
}
