package metrics

import (
	"math"

	"github.com/san-kum/numlab/internal/linsys"
	"github.com/san-kum/numlab/internal/runner"
)

// DefaultLinear returns the metrics recorded for every iterative linear run.
func DefaultLinear() []runner.Metric[linsys.VectorIterationState] {
	return []runner.Metric[linsys.VectorIterationState]{
		NewSweeps(),
		NewFinalResidual(),
		NewContraction(),
	}
}

type Sweeps struct {
	count int
}

func NewSweeps() *Sweeps { return &Sweeps{} }

func (m *Sweeps) Name() string { return "iterations" }

func (m *Sweeps) Observe(st linsys.VectorIterationState) {
	if st.K > 0 {
		m.count++
	}
}

func (m *Sweeps) Value() float64 { return float64(m.count) }
func (m *Sweeps) Reset()         { m.count = 0 }

type FinalResidual struct {
	value float64
}

func NewFinalResidual() *FinalResidual { return &FinalResidual{value: math.NaN()} }

func (m *FinalResidual) Name() string { return "residual" }

func (m *FinalResidual) Observe(st linsys.VectorIterationState) { m.value = st.Residual }

func (m *FinalResidual) Value() float64 { return m.value }
func (m *FinalResidual) Reset()         { m.value = math.NaN() }

// Contraction is the geometric mean of successive residual ratios, an
// estimate of the spectral radius of the iteration matrix.
type Contraction struct {
	first, last float64
	steps       int
}

func NewContraction() *Contraction { return &Contraction{} }

func (m *Contraction) Name() string { return "contraction" }

func (m *Contraction) Observe(st linsys.VectorIterationState) {
	if st.K == 0 {
		m.first = st.Residual
		m.steps = 0
		return
	}
	m.last = st.Residual
	m.steps = st.K
}

func (m *Contraction) Value() float64 {
	if m.steps == 0 || !(m.first > 0) || !(m.last > 0) {
		return math.NaN()
	}
	return math.Pow(m.last/m.first, 1/float64(m.steps))
}

func (m *Contraction) Reset() {
	m.first, m.last, m.steps = 0, 0, 0
}
