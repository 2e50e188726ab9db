package rootfind

import (
	"fmt"
	"math"

	"github.com/san-kum/numlab/internal/equation"
)

const (
	DefaultMaxIter = 50

	// derivativeEps is the smallest |f'| or denominator a step divides by.
	derivativeEps = 1e-12

	// ratioEps is the smallest previous error used as a ratio denominator.
	ratioEps = 1e-12

	// forwardStep is the forward-difference step of the modified secant.
	forwardStep = 1e-6
)

// Config is fixed at creation.
type Config struct {
	MaxIter        int `yaml:"max_iter" json:"max_iter"`
	UpdateInterval int `yaml:"update_interval" json:"update_interval"`
	DampingTries   int `yaml:"damping_tries" json:"damping_tries"`
}

func DefaultConfig() Config {
	return Config{
		MaxIter:        DefaultMaxIter,
		UpdateInterval: 1,
		DampingTries:   10,
	}
}

func (c Config) Validate() error {
	if c.MaxIter <= 0 {
		return fmt.Errorf("%w: max iterations must be positive, got %d", ErrInvalidConfig, c.MaxIter)
	}
	if c.UpdateInterval <= 0 {
		return fmt.Errorf("%w: update interval must be positive, got %d", ErrInvalidConfig, c.UpdateInterval)
	}
	if c.DampingTries <= 0 {
		return fmt.Errorf("%w: damping tries must be positive, got %d", ErrInvalidConfig, c.DampingTries)
	}
	return nil
}

// IterationState is one emitted step. XPrev, AbsError and ErrorRatio are
// NaN at step 0. Support holds the points the step was computed from.
type IterationState struct {
	K          int       `json:"k"`
	X          float64   `json:"x"`
	XPrev      float64   `json:"x_prev"`
	FX         float64   `json:"fx"`
	AbsError   float64   `json:"abs_error"`
	ErrorRatio float64   `json:"error_ratio"`
	Support    []float64 `json:"support,omitempty"`
}

// Converged reports whether the step moved by at most tol.
func (s IterationState) Converged(tol float64) bool {
	return s.K > 0 && s.AbsError <= tol
}

// record is the method's private state between steps.
type record struct {
	k       int // index of the next step
	x       float64
	xPrev   float64
	x0, x1  float64
	prevAbs float64
	df0     float64
	slope   float64
}

// Iterator is not safe for concurrent use.
type Iterator struct {
	method Method
	eq     *equation.Equation
	cfg    Config
	rec    record
	states []IterationState
}

// New creates an iterator for a one-point method.
func New(m Method, eq *equation.Equation, x0 float64, cfg Config) (*Iterator, error) {
	if err := check(m, eq, cfg); err != nil {
		return nil, err
	}
	if m.Points() != 1 {
		return nil, fmt.Errorf("%w: %s needs %d points, got 1", ErrArity, m, m.Points())
	}
	return newIterator(m, eq, x0, math.NaN(), cfg), nil
}

// NewTwoPoint creates an iterator for a secant method from x0 and x1.
func NewTwoPoint(m Method, eq *equation.Equation, x0, x1 float64, cfg Config) (*Iterator, error) {
	if err := check(m, eq, cfg); err != nil {
		return nil, err
	}
	if m.Points() != 2 {
		return nil, fmt.Errorf("%w: %s needs %d point, got 2", ErrArity, m, m.Points())
	}
	return newIterator(m, eq, x0, x1, cfg), nil
}

func check(m Method, eq *equation.Equation, cfg Config) error {
	if !m.valid() {
		return fmt.Errorf("%w: %d", ErrUnknownMethod, int(m))
	}
	if eq == nil {
		return ErrNilEquation
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if m.RequiresG() && !eq.HasG() {
		return fmt.Errorf("%w: %s", ErrNeedsG, m)
	}
	return nil
}

func newIterator(m Method, eq *equation.Equation, x0, x1 float64, cfg Config) *Iterator {
	it := &Iterator{
		method: m,
		eq:     eq,
		cfg:    cfg,
		rec: record{
			x:       x0,
			xPrev:   math.NaN(),
			x0:      x0,
			x1:      x1,
			prevAbs: math.NaN(),
			slope:   math.NaN(),
		},
		states: make([]IterationState, 0, cfg.MaxIter+1),
	}
	if m == SimplifiedNewton {
		it.rec.df0 = eq.DF(x0)
	}
	return it
}

func (it *Iterator) Method() Method { return it.method }
func (it *Iterator) Config() Config { return it.cfg }

func (it *Iterator) Equation() *equation.Equation { return it.eq }

// HasNext reports whether Next will produce another state.
func (it *Iterator) HasNext() bool {
	k := it.rec.k
	if k == 0 {
		return true
	}
	if k == 1 && it.method.Points() == 2 {
		return true
	}
	if k > it.cfg.MaxIter || !isFinite(it.rec.x) {
		return false
	}
	switch it.method {
	case SimplifiedNewton:
		return math.Abs(it.rec.df0) > derivativeEps
	case TwoPointSecant:
		return isFinite(it.rec.xPrev)
	}
	return true
}

// Next performs one step.
func (it *Iterator) Next() (IterationState, error) {
	if !it.HasNext() {
		return IterationState{}, ErrExhausted
	}

	var st IterationState
	if it.rec.k == 0 {
		st = IterationState{
			K:          0,
			X:          it.rec.x0,
			XPrev:      math.NaN(),
			FX:         it.eq.F(it.rec.x0),
			AbsError:   math.NaN(),
			ErrorRatio: math.NaN(),
		}
		it.rec.k = 1
	} else {
		it.rec, st = step(it.method, it.rec, it.eq, it.cfg)
	}

	it.states = append(it.states, st)
	return st, nil
}

// Points returns every iterate emitted so far, starting with x0.
func (it *Iterator) Points() []float64 {
	pts := make([]float64, len(it.states))
	for i, st := range it.states {
		pts[i] = st.X
	}
	return pts
}

// History returns a copy of every state emitted so far.
func (it *Iterator) History() []IterationState {
	out := make([]IterationState, len(it.states))
	copy(out, it.states)
	return out
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
