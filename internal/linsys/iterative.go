package linsys

import (
	"fmt"
	"math"
	"strings"
)

type IterativeMethod int

const (
	Jacobi IterativeMethod = iota
	GaussSeidel
	SOR
)

func (m IterativeMethod) String() string {
	switch m {
	case Jacobi:
		return "jacobi"
	case GaussSeidel:
		return "gauss-seidel"
	case SOR:
		return "sor"
	}
	return fmt.Sprintf("IterativeMethod(%d)", int(m))
}

// IterativeMethods lists every iterative method.
func IterativeMethods() []IterativeMethod {
	return []IterativeMethod{Jacobi, GaussSeidel, SOR}
}

// ParseIterative resolves an iterative method name.
func ParseIterative(name string) (IterativeMethod, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "jacobi":
		return Jacobi, nil
	case "gauss-seidel", "seidel", "gs":
		return GaussSeidel, nil
	case "sor", "relaxation":
		return SOR, nil
	}
	return 0, fmt.Errorf("%w: %s (available: jacobi, gauss-seidel, sor)", ErrUnknownMethod, name)
}

const (
	DefaultTol     = 1e-6
	DefaultMaxIter = 100
	DefaultOmega   = 1.2
)

// IterConfig is fixed at creation. Omega is only read by SOR.
type IterConfig struct {
	Tol     float64 `yaml:"tol" json:"tol"`
	MaxIter int     `yaml:"max_iter" json:"max_iter"`
	Omega   float64 `yaml:"omega" json:"omega"`
}

func DefaultIterConfig() IterConfig {
	return IterConfig{Tol: DefaultTol, MaxIter: DefaultMaxIter, Omega: DefaultOmega}
}

// VectorIterationState is one emitted iterate and its residual ‖Ax - b‖₂.
type VectorIterationState struct {
	K        int     `json:"k"`
	X        Vector  `json:"x"`
	Residual float64 `json:"residual"`
}

// Iterator is not safe for concurrent use.
type Iterator struct {
	method   IterativeMethod
	a        Matrix
	b        Vector
	cfg      IterConfig
	x        Vector
	k        int
	residual float64
}

// NewIterator validates the system and returns an iterator positioned
// before step 0. A nil x0 starts from the zero vector.
func NewIterator(m IterativeMethod, a Matrix, b, x0 Vector, cfg IterConfig) (*Iterator, error) {
	if m < Jacobi || m > SOR {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMethod, int(m))
	}
	if err := validate(a, b); err != nil {
		return nil, err
	}
	n := len(b)
	if x0 == nil {
		x0 = make(Vector, n)
	}
	if len(x0) != n {
		return nil, fmt.Errorf("%w: x0 has %d entries, want %d", ErrDimension, len(x0), n)
	}
	if !x0.IsValid() {
		return nil, fmt.Errorf("%w: x0", ErrNotFinite)
	}
	for i := range a {
		if math.Abs(a[i][i]) < PivotEps {
			return nil, fmt.Errorf("%w: a[%d][%d] = %g", ErrZeroDiagonal, i+1, i+1, a[i][i])
		}
	}
	if cfg.Tol <= 0 || cfg.MaxIter <= 0 {
		return nil, fmt.Errorf("%w: tol %g, max iter %d", ErrInvalidConfig, cfg.Tol, cfg.MaxIter)
	}
	if m == SOR && !(cfg.Omega > 0 && cfg.Omega < 2) {
		return nil, fmt.Errorf("%w: got %g", ErrInvalidOmega, cfg.Omega)
	}

	return &Iterator{
		method:   m,
		a:        a.Clone(),
		b:        b.Clone(),
		cfg:      cfg,
		x:        x0.Clone(),
		residual: math.NaN(),
	}, nil
}

func (it *Iterator) Method() IterativeMethod { return it.method }
func (it *Iterator) Config() IterConfig      { return it.cfg }

// HasNext is true before step 0 and afterwards while the step cap has not
// been exceeded and the residual is above tolerance.
func (it *Iterator) HasNext() bool {
	return it.k == 0 || (it.k <= it.cfg.MaxIter && it.residual > it.cfg.Tol)
}

func (it *Iterator) Next() (VectorIterationState, error) {
	if !it.HasNext() {
		return VectorIterationState{}, ErrExhausted
	}
	if it.k > 0 {
		switch it.method {
		case Jacobi:
			it.x = it.jacobi()
		case GaussSeidel:
			it.sweep(1)
		case SOR:
			it.sweep(it.cfg.Omega)
		}
	}
	it.residual = Residual(it.a, it.x, it.b)
	st := VectorIterationState{K: it.k, X: it.x.Clone(), Residual: it.residual}
	it.k++
	return st, nil
}

func (it *Iterator) jacobi() Vector {
	next := make(Vector, len(it.x))
	for i, row := range it.a {
		sum := it.b[i]
		for j, v := range row {
			if j != i {
				sum -= v * it.x[j]
			}
		}
		next[i] = sum / row[i]
	}
	return next
}

// sweep updates x in place. omega == 1 is Gauss-Seidel.
func (it *Iterator) sweep(omega float64) {
	for i, row := range it.a {
		sum := it.b[i]
		for j, v := range row {
			if j != i {
				sum -= v * it.x[j]
			}
		}
		gs := sum / row[i]
		if omega == 1 {
			it.x[i] = gs
		} else {
			it.x[i] = (1-omega)*it.x[i] + omega*gs
		}
	}
}

// Residual returns ‖ax - b‖₂.
func Residual(a Matrix, x, b Vector) float64 {
	return a.MulVec(x).Sub(b).Norm()
}
