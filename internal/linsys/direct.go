package linsys

import (
	"fmt"
	"math"
)

// PivotEps is the smallest pivot magnitude elimination accepts.
const PivotEps = 1e-10

type DirectSolver interface {
	Name() string
	Solve(a Matrix, b Vector) (*DirectSolution, error)
}

type pivoting int

const (
	pivotNone pivoting = iota
	pivotPartial
	pivotFull
)

// Gauss is Gaussian elimination with a configurable pivoting strategy.
type Gauss struct {
	name      string
	pivot     pivoting
	normalize bool
}

func NewGauss() *Gauss        { return &Gauss{name: "gauss", pivot: pivotNone} }
func NewPartialPivot() *Gauss { return &Gauss{name: "partial-pivot", pivot: pivotPartial} }
func NewFullPivot() *Gauss    { return &Gauss{name: "full-pivot", pivot: pivotFull} }

// NewNormalized divides each pivot row by its pivot after partial pivoting,
// so the eliminated matrix carries a unit diagonal.
func NewNormalized() *Gauss {
	return &Gauss{name: "normalized", pivot: pivotPartial, normalize: true}
}

func (g *Gauss) Name() string { return g.name }

func (g *Gauss) Solve(a Matrix, b Vector) (*DirectSolution, error) {
	if err := validate(a, b); err != nil {
		return nil, err
	}

	n := len(b)
	w := a.Augment(b)
	rec := &recorder{sol: &DirectSolution{Method: g.name, ColumnOrder: identity(n)}}
	order := rec.sol.ColumnOrder
	rec.add(StepInitial, "augmented matrix [A | b]", w)

	for i := 0; i < n; i++ {
		switch g.pivot {
		case pivotPartial:
			p := i
			for j := i + 1; j < n; j++ {
				if math.Abs(w[j][i]) > math.Abs(w[p][i]) {
					p = j
				}
			}
			if p != i {
				w[i], w[p] = w[p], w[i]
				rec.add(StepRowSwap, fmt.Sprintf("swap R%d and R%d", i+1, p+1), w, i, p)
			}

		case pivotFull:
			pr, pc := i, i
			for r := i; r < n; r++ {
				for c := i; c < n; c++ {
					if math.Abs(w[r][c]) > math.Abs(w[pr][pc]) {
						pr, pc = r, c
					}
				}
			}
			if pr != i {
				w[i], w[pr] = w[pr], w[i]
				rec.add(StepRowSwap, fmt.Sprintf("swap R%d and R%d", i+1, pr+1), w, i, pr)
			}
			if pc != i {
				for r := range w {
					w[r][i], w[r][pc] = w[r][pc], w[r][i]
				}
				order[i], order[pc] = order[pc], order[i]
				rec.add(StepColumnSwap, fmt.Sprintf("swap C%d and C%d", i+1, pc+1), w, i)
			}
		}

		pivot := w[i][i]
		if math.Abs(pivot) < PivotEps {
			rec.add(StepFault, fmt.Sprintf("pivot %d is %.3g", i+1, pivot), w, i)
			return rec.sol, fmt.Errorf("%w: pivot %d is %g", ErrSingular, i+1, pivot)
		}

		if g.normalize && math.Abs(pivot-1) > PivotEps {
			for k := i; k <= n; k++ {
				w[i][k] /= pivot
			}
			w[i][i] = 1
			rec.add(StepNormalize, fmt.Sprintf("R%d /= %.4g", i+1, pivot), w, i)
		}

		// back substitution reads nothing below the diagonal, so only exact
		// zeros may be left in place
		for j := i + 1; j < n; j++ {
			if w[j][i] == 0 {
				continue
			}
			factor := w[j][i] / w[i][i]
			for k := i; k <= n; k++ {
				w[j][k] -= factor * w[i][k]
			}
			w[j][i] = 0
			rec.add(StepEliminate, fmt.Sprintf("R%d -= %.4g * R%d", j+1, factor, i+1), w, j, i)
		}
	}

	x, err := backSubstitute(w, rec)
	if err != nil {
		return rec.sol, err
	}

	// x holds the unknowns in working-column order
	sol := make(Vector, n)
	for i := range x {
		sol[order[i]] = x[i]
	}
	rec.sol.Solution = sol
	return rec.sol, nil
}

// backSubstitute solves the upper-triangular augmented system w in place,
// leaving the identity and the solution column behind.
func backSubstitute(w Matrix, rec *recorder) (Vector, error) {
	n := len(w)
	x := make(Vector, n)
	for i := n - 1; i >= 0; i-- {
		rhs := w[i][n]
		for j := i + 1; j < n; j++ {
			rhs -= w[i][j] * x[j]
			w[i][j] = 0
		}
		w[i][n] = rhs
		rec.add(StepSubstitute, fmt.Sprintf("substitute x%d..x%d into R%d", i+2, n, i+1), w, i)

		pivot := w[i][i]
		if math.Abs(pivot) < PivotEps {
			rec.add(StepFault, fmt.Sprintf("pivot %d is %.3g", i+1, pivot), w, i)
			return nil, fmt.Errorf("%w: pivot %d is %g", ErrSingular, i+1, pivot)
		}
		x[i] = rhs / pivot
		w[i][i] = 1
		w[i][n] = x[i]
		rec.add(StepDivide, fmt.Sprintf("x%d = %.6g", i+1, x[i]), w, i)
	}
	rec.add(StepComplete, "solution", w)
	return x, nil
}

type recorder struct {
	sol *DirectSolution
}

// add snapshots w.
func (r *recorder) add(kind StepKind, desc string, w Matrix, rows ...int) {
	var hl []int
	if len(rows) > 0 {
		hl = append(hl, rows...)
	}
	r.sol.History = append(r.sol.History, MatrixState{
		Kind:        kind,
		Description: desc,
		Matrix:      w.Clone(),
		Highlighted: hl,
	})
}

func identity(n int) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	return order
}
