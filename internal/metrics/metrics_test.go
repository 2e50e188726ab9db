package metrics

import (
	"context"
	"math"
	"testing"

	"github.com/san-kum/numlab/internal/equation"
	"github.com/san-kum/numlab/internal/linsys"
	"github.com/san-kum/numlab/internal/rootfind"
	"github.com/san-kum/numlab/internal/runner"
)

func TestRootMetrics_Newton(t *testing.T) {
	eq, err := equation.New("x^2 - 2", "")
	if err != nil {
		t.Fatal(err)
	}
	it, err := rootfind.New(rootfind.Newton, eq, 1, rootfind.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	res, err := runner.RunRoot(context.Background(), it, 1e-10, runner.Options[rootfind.IterationState]{
		Metrics: DefaultRoot(),
	})
	if err != nil {
		t.Fatal(err)
	}

	if got := res.Metrics["iterations"]; got != float64(len(res.States)-1) {
		t.Errorf("iterations = %v, want %d", got, len(res.States)-1)
	}
	if got := res.Metrics["final_error"]; got > 1e-10 {
		t.Errorf("final_error = %v", got)
	}
	if got := res.Metrics["residual"]; got > 1e-12 {
		t.Errorf("residual = %v", got)
	}
	if got := res.Metrics["order"]; math.Abs(got-2) > 0.1 {
		t.Errorf("order = %v, want ~2", got)
	}
	if got := res.Metrics["stability"]; got != 1 {
		t.Errorf("stability = %v, want 1", got)
	}
}

func TestStability(t *testing.T) {
	s := NewStability(10)
	for _, x := range []float64{1, 20, math.NaN(), 3} {
		s.Observe(rootfind.IterationState{X: x})
	}
	if got := s.Value(); got != 0.5 {
		t.Errorf("stability = %v, want 0.5", got)
	}
	s.Reset()
	if got := s.Value(); got != 1 {
		t.Errorf("stability after reset = %v, want 1", got)
	}
}

func TestLinearMetrics(t *testing.T) {
	m := NewContraction()
	states := []linsys.VectorIterationState{
		{K: 0, Residual: 1},
		{K: 1, Residual: 0.1},
		{K: 2, Residual: 0.01},
	}
	for _, st := range states {
		m.Observe(st)
	}
	if got := m.Value(); math.Abs(got-0.1) > 1e-12 {
		t.Errorf("contraction = %v, want 0.1", got)
	}

	sw := NewSweeps()
	fr := NewFinalResidual()
	for _, st := range states {
		sw.Observe(st)
		fr.Observe(st)
	}
	if sw.Value() != 2 || fr.Value() != 0.01 {
		t.Errorf("sweeps = %v, residual = %v", sw.Value(), fr.Value())
	}
}
