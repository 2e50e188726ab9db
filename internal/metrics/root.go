package metrics

import (
	"math"

	"github.com/san-kum/numlab/internal/rootfind"
	"github.com/san-kum/numlab/internal/runner"
)

// DefaultRoot returns the metrics recorded for every root-finding run.
func DefaultRoot() []runner.Metric[rootfind.IterationState] {
	return []runner.Metric[rootfind.IterationState]{
		NewIterations(),
		NewFinalError(),
		NewResidual(),
		NewOrder(),
		NewStability(1e6),
	}
}

// Iterations counts steps after the initial point.
type Iterations struct {
	count int
}

func NewIterations() *Iterations { return &Iterations{} }

func (m *Iterations) Name() string { return "iterations" }

func (m *Iterations) Observe(st rootfind.IterationState) {
	if st.K > 0 {
		m.count++
	}
}

func (m *Iterations) Value() float64 { return float64(m.count) }
func (m *Iterations) Reset()         { m.count = 0 }

// FinalError is the last finite step size |x_k - x_{k-1}|.
type FinalError struct {
	value float64
}

func NewFinalError() *FinalError { return &FinalError{value: math.NaN()} }

func (m *FinalError) Name() string { return "final_error" }

func (m *FinalError) Observe(st rootfind.IterationState) {
	if finite(st.AbsError) {
		m.value = st.AbsError
	}
}

func (m *FinalError) Value() float64 { return m.value }
func (m *FinalError) Reset()         { m.value = math.NaN() }

// Residual is |f(x)| at the last finite iterate.
type Residual struct {
	value float64
}

func NewResidual() *Residual { return &Residual{value: math.NaN()} }

func (m *Residual) Name() string { return "residual" }

func (m *Residual) Observe(st rootfind.IterationState) {
	if finite(st.X) && finite(st.FX) {
		m.value = math.Abs(st.FX)
	}
}

func (m *Residual) Value() float64 { return m.value }
func (m *Residual) Reset()         { m.value = math.NaN() }

// Order is the latest finite convergence-order estimate.
type Order struct {
	errors []float64
	value  float64
}

func NewOrder() *Order { return &Order{value: math.NaN()} }

func (m *Order) Name() string { return "order" }

func (m *Order) Observe(st rootfind.IterationState) {
	if !(st.AbsError > 0) || !finite(st.AbsError) {
		return
	}
	m.errors = append(m.errors, st.AbsError)
	n := len(m.errors)
	if n < 3 {
		return
	}
	states := []rootfind.IterationState{
		{AbsError: m.errors[n-3]},
		{AbsError: m.errors[n-2]},
		{AbsError: m.errors[n-1]},
	}
	if p := rootfind.EstimateOrder(states)[2]; finite(p) {
		m.value = p
	}
}

func (m *Order) Value() float64 { return m.value }

func (m *Order) Reset() {
	m.errors = m.errors[:0]
	m.value = math.NaN()
}

// Stability is the fraction of iterates that stay within threshold.
type Stability struct {
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{threshold: threshold}
}

func (s *Stability) Name() string { return "stability" }

func (s *Stability) Observe(st rootfind.IterationState) {
	s.samples++
	if !finite(st.X) || math.Abs(st.X) > s.threshold {
		s.violations++
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
