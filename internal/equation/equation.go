// Package equation binds the formulas of a nonlinear equation f(x) = 0 and
// its optional fixed-point form x = g(x).
package equation

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/numlab/internal/expr"
)

// DerivativeStep is the half-width of the central difference used by DF.
const DerivativeStep = 1e-7

var ErrMissingF = errors.New("equation: f(x) is required")

// Equation is immutable once built. Evaluation faults surface as NaN.
type Equation struct {
	fText, gText string
	f, g         *expr.Program
}

// New parses f and the optional g. Blank g leaves G undefined.
func New(f, g string) (*Equation, error) {
	if strings.TrimSpace(f) == "" {
		return nil, ErrMissingF
	}
	fp, err := expr.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse f(x): %w", err)
	}

	eq := &Equation{fText: f, gText: g, f: fp}
	if strings.TrimSpace(g) != "" {
		gp, err := expr.Parse(g)
		if err != nil {
			return nil, fmt.Errorf("parse g(x): %w", err)
		}
		eq.g = gp
	}
	return eq, nil
}

func (e *Equation) F(x float64) float64 {
	return eval(e.f, x)
}

// G returns NaN when no g was given.
func (e *Equation) G(x float64) float64 {
	if e.g == nil {
		return math.NaN()
	}
	return eval(e.g, x)
}

// DF approximates f'(x) by (f(x+h) - f(x-h)) / 2h.
func (e *Equation) DF(x float64) float64 {
	h := DerivativeStep
	return (e.F(x+h) - e.F(x-h)) / (2 * h)
}

func (e *Equation) HasG() bool {
	return e.g != nil
}

// Source returns the text f and g were built from.
func (e *Equation) Source() (f, g string) {
	return e.fText, e.gText
}

func (e *Equation) String() string {
	if e.g == nil {
		return fmt.Sprintf("f(x) = %s", e.fText)
	}
	return fmt.Sprintf("f(x) = %s, g(x) = %s", e.fText, e.gText)
}

func eval(p *expr.Program, x float64) float64 {
	v, err := p.Evaluate(x)
	if err != nil {
		return math.NaN()
	}
	return v
}
