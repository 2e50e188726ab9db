package viz

import (
	"fmt"
	"strings"

	"github.com/san-kum/numlab/internal/linsys"
	"github.com/san-kum/numlab/internal/rootfind"
)

// Source feeds the stepper one algorithm step at a time.
type Source interface {
	Title() string
	HasNext() bool
	Step() error
	// Steps is the number of steps taken so far; Limit bounds it.
	Steps() int
	Limit() int
	Converged() bool
	// Errors is the error or residual sequence for the chart.
	Errors() []float64
	Render(rows int) string
}

// RootSource steps a root-finding iterator and stops once a step moves by
// at most Tol.
type RootSource struct {
	it     *rootfind.Iterator
	tol    float64
	states []rootfind.IterationState
}

func NewRootSource(it *rootfind.Iterator, tol float64) *RootSource {
	return &RootSource{it: it, tol: tol}
}

func (s *RootSource) Title() string {
	f, g := s.it.Equation().Source()
	title := fmt.Sprintf("%s   f(x) = %s", s.it.Method(), f)
	if g != "" {
		title += "   g(x) = " + g
	}
	return title
}

func (s *RootSource) HasNext() bool { return !s.Converged() && s.it.HasNext() }

func (s *RootSource) Step() error {
	st, err := s.it.Next()
	if err != nil {
		return err
	}
	s.states = append(s.states, st)
	return nil
}

func (s *RootSource) Steps() int { return len(s.states) }
func (s *RootSource) Limit() int { return s.it.Config().MaxIter + 1 }

func (s *RootSource) Converged() bool {
	return len(s.states) > 0 && s.tol > 0 && s.states[len(s.states)-1].Converged(s.tol)
}

func (s *RootSource) Errors() []float64 {
	out := make([]float64, len(s.states))
	for i, st := range s.states {
		out[i] = st.AbsError
	}
	return out
}

func (s *RootSource) States() []rootfind.IterationState { return s.states }

// Render draws f over the current window with the iterates marked, above
// the recent states.
func (s *RootSource) Render(rows int) string {
	eq := s.it.Equation()
	points := make([]float64, len(s.states))
	for i, st := range s.states {
		points[i] = st.X
	}
	c := NewCanvas(60, 12, rootfind.Bounds(eq, points))
	c.HLine(0)
	c.Plot(eq.F)
	if eq.HasG() {
		c.Plot(eq.G)
	}
	for _, x := range points {
		c.Mark(x, eq.F(x))
	}
	return panelStyle().Render(c.String()) + "\n" + RenderRootTable(s.states, rows)
}

// LinearSource steps an iterative linear solver.
type LinearSource struct {
	it     *linsys.Iterator
	states []linsys.VectorIterationState
}

func NewLinearSource(it *linsys.Iterator) *LinearSource {
	return &LinearSource{it: it}
}

func (s *LinearSource) Title() string {
	cfg := s.it.Config()
	if s.it.Method() == linsys.SOR {
		return fmt.Sprintf("%s (omega = %g)   tol %g", s.it.Method(), cfg.Omega, cfg.Tol)
	}
	return fmt.Sprintf("%s   tol %g", s.it.Method(), cfg.Tol)
}

func (s *LinearSource) HasNext() bool { return s.it.HasNext() }

func (s *LinearSource) Step() error {
	st, err := s.it.Next()
	if err != nil {
		return err
	}
	s.states = append(s.states, st)
	return nil
}

func (s *LinearSource) Steps() int { return len(s.states) }
func (s *LinearSource) Limit() int { return s.it.Config().MaxIter + 1 }

func (s *LinearSource) Converged() bool {
	return len(s.states) > 0 && s.states[len(s.states)-1].Residual <= s.it.Config().Tol
}

func (s *LinearSource) Errors() []float64 {
	out := make([]float64, len(s.states))
	for i, st := range s.states {
		out[i] = st.Residual
	}
	return out
}

func (s *LinearSource) States() []linsys.VectorIterationState { return s.states }

func (s *LinearSource) Render(rows int) string {
	return RenderLinearTable(s.states, rows)
}

// DirectSource replays the recorded history of a direct solve.
type DirectSource struct {
	sol *linsys.DirectSolution
	pos int
}

func NewDirectSource(sol *linsys.DirectSolution) *DirectSource {
	return &DirectSource{sol: sol}
}

func (s *DirectSource) Title() string     { return s.sol.Method }
func (s *DirectSource) HasNext() bool     { return s.pos < len(s.sol.History) }
func (s *DirectSource) Steps() int        { return s.pos }
func (s *DirectSource) Limit() int        { return len(s.sol.History) }
func (s *DirectSource) Errors() []float64 { return nil }

func (s *DirectSource) Step() error {
	if !s.HasNext() {
		return linsys.ErrExhausted
	}
	s.pos++
	return nil
}

func (s *DirectSource) Converged() bool {
	return !s.HasNext() && s.sol.Solution != nil
}

func (s *DirectSource) Render(int) string {
	if s.pos == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(RenderMatrixState(s.sol.History[s.pos-1]))
	if !s.HasNext() {
		b.WriteString("\n" + RenderDirectSummary(s.sol))
	}
	return b.String()
}
