package linsys

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

type Vector []float64

func (v Vector) Clone() Vector {
	c := make(Vector, len(v))
	copy(c, v)
	return c
}

func (v Vector) IsValid() bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

func (v Vector) Norm() float64 {
	return floats.Norm(v, 2)
}

// Sub panics if the lengths differ.
func (v Vector) Sub(other Vector) Vector {
	return floats.SubTo(make(Vector, len(v)), v, other)
}

func (v Vector) Dot(other Vector) float64 {
	return floats.Dot(v, other)
}

// Matrix is row-major.
type Matrix [][]float64

// NewMatrix copies rows into a new matrix.
func NewMatrix(rows [][]float64) Matrix {
	m := make(Matrix, len(rows))
	for i, r := range rows {
		m[i] = append([]float64(nil), r...)
	}
	return m
}

func (m Matrix) Clone() Matrix {
	return NewMatrix(m)
}

func (m Matrix) Dims() (rows, cols int) {
	if len(m) == 0 {
		return 0, 0
	}
	return len(m), len(m[0])
}

func (m Matrix) MulVec(x Vector) Vector {
	out := make(Vector, len(m))
	for i, row := range m {
		out[i] = floats.Dot(row[:len(x)], x)
	}
	return out
}

// Augment returns [m | b].
func (m Matrix) Augment(b Vector) Matrix {
	out := make(Matrix, len(m))
	for i, row := range m {
		out[i] = make([]float64, len(row)+1)
		copy(out[i], row)
		out[i][len(row)] = b[i]
	}
	return out
}

func (m Matrix) IsSymmetric(tol float64) bool {
	for i := range m {
		for j := i + 1; j < len(m); j++ {
			if math.Abs(m[i][j]-m[j][i]) > tol*math.Max(1, math.Abs(m[i][j])) {
				return false
			}
		}
	}
	return true
}

// IsDiagonallyDominant reports strict row diagonal dominance, which is
// sufficient for Jacobi and Gauss-Seidel to converge. A matrix that is not
// square is never dominant.
func (m Matrix) IsDiagonallyDominant() bool {
	for i, row := range m {
		if len(row) != len(m) {
			return false
		}
		off := 0.0
		for j, v := range row {
			if j != i {
				off += math.Abs(v)
			}
		}
		if math.Abs(row[i]) <= off {
			return false
		}
	}
	return true
}

// Dense converts the matrix to a gonum matrix.
func (m Matrix) Dense() *mat.Dense {
	r, c := m.Dims()
	d := mat.NewDense(r, c, nil)
	for i, row := range m {
		d.SetRow(i, row)
	}
	return d
}

func (m Matrix) String() string {
	var sb strings.Builder
	for _, row := range m {
		for j, v := range row {
			if j > 0 {
				sb.WriteByte(' ')
			}
			fmt.Fprintf(&sb, "%10.4f", v)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// validate checks that a is a finite n x n matrix and b a finite n-vector.
func validate(a Matrix, b Vector) error {
	n := len(a)
	if n == 0 {
		return fmt.Errorf("%w: empty matrix", ErrDimension)
	}
	for i, row := range a {
		if len(row) != n {
			return fmt.Errorf("%w: row %d has %d entries, want %d", ErrDimension, i, len(row), n)
		}
		if !Vector(row).IsValid() {
			return fmt.Errorf("%w: row %d", ErrNotFinite, i)
		}
	}
	if len(b) != n {
		return fmt.Errorf("%w: b has %d entries, want %d", ErrDimension, len(b), n)
	}
	if !b.IsValid() {
		return fmt.Errorf("%w: b", ErrNotFinite)
	}
	return nil
}

type StepKind int

const (
	StepInitial StepKind = iota
	StepRowSwap
	StepColumnSwap
	StepNormalize
	StepEliminate
	StepFactor
	StepSubstitute
	StepDivide
	StepComplete
	StepFault
)

var stepNames = [...]string{
	StepInitial:    "initial",
	StepRowSwap:    "row swap",
	StepColumnSwap: "column swap",
	StepNormalize:  "normalize",
	StepEliminate:  "eliminate",
	StepFactor:     "factor",
	StepSubstitute: "substitute",
	StepDivide:     "divide",
	StepComplete:   "complete",
	StepFault:      "fault",
}

func (k StepKind) String() string {
	if k >= 0 && int(k) < len(stepNames) {
		return stepNames[k]
	}
	return fmt.Sprintf("StepKind(%d)", int(k))
}

// MatrixState is a snapshot of the augmented matrix after one operation.
// Highlighted lists the rows the operation touched.
type MatrixState struct {
	Kind        StepKind `json:"kind"`
	Description string   `json:"description"`
	Matrix      Matrix   `json:"matrix"`
	Highlighted []int    `json:"highlighted,omitempty"`
}

// DirectSolution is the outcome of a direct solve. Solution is nil when the
// solver faulted. ColumnOrder maps working columns to unknowns.
type DirectSolution struct {
	Method      string        `json:"method"`
	History     []MatrixState `json:"history"`
	Solution    Vector        `json:"solution"`
	ColumnOrder []int         `json:"column_order"`
}

// Final returns the last snapshot.
func (s *DirectSolution) Final() MatrixState {
	if len(s.History) == 0 {
		return MatrixState{}
	}
	return s.History[len(s.History)-1]
}

// Faulted reports whether the history ends in a fault.
func (s *DirectSolution) Faulted() bool {
	return s.Final().Kind == StepFault
}
