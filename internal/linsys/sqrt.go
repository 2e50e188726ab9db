package linsys

import (
	"fmt"
	"math"
)

// symmetryTol is the relative tolerance of the symmetry check.
const symmetryTol = 1e-10

// SquareRoot factors a symmetric positive definite A as UᵀU and solves
// Uᵀy = b during the factorization, leaving [U | y] for back substitution.
type SquareRoot struct{}

func NewSquareRoot() *SquareRoot { return &SquareRoot{} }

func (*SquareRoot) Name() string { return "sqrt" }

func (s *SquareRoot) Solve(a Matrix, b Vector) (*DirectSolution, error) {
	if err := validate(a, b); err != nil {
		return nil, err
	}
	if !a.IsSymmetric(symmetryTol) {
		return nil, ErrNotSymmetric
	}

	n := len(b)
	w := a.Augment(b)
	rec := &recorder{sol: &DirectSolution{Method: s.Name(), ColumnOrder: identity(n)}}
	rec.add(StepInitial, "augmented matrix [A | b]", w)

	// Rows above i already hold U; row i still holds A.
	for i := 0; i < n; i++ {
		rad := w[i][i]
		for k := 0; k < i; k++ {
			rad -= w[k][i] * w[k][i]
		}
		if rad < PivotEps {
			rec.add(StepFault, fmt.Sprintf("radicand %d is %.3g", i+1, rad), w, i)
			return rec.sol, fmt.Errorf("%w: radicand %d is %g", ErrNotPositiveDefinite, i+1, rad)
		}
		uii := math.Sqrt(rad)
		w[i][i] = uii
		for j := 0; j < i; j++ {
			w[i][j] = 0
		}
		rec.add(StepFactor, fmt.Sprintf("u%d%d = %.6g", i+1, i+1, uii), w, i)

		for j := i + 1; j <= n; j++ {
			sum := w[i][j]
			for k := 0; k < i; k++ {
				sum -= w[k][i] * w[k][j]
			}
			w[i][j] = sum / uii
			if j == n {
				rec.add(StepFactor, fmt.Sprintf("y%d = %.6g", i+1, w[i][j]), w, i)
			} else {
				rec.add(StepFactor, fmt.Sprintf("u%d%d = %.6g", i+1, j+1, w[i][j]), w, i)
			}
		}
	}

	x, err := backSubstitute(w, rec)
	if err != nil {
		return rec.sol, err
	}
	rec.sol.Solution = x
	return rec.sol, nil
}
