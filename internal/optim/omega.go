package optim

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/san-kum/numlab/internal/linsys"
	"github.com/san-kum/numlab/internal/runner"
)

var ErrEmptyGrid = errors.New("optim: empty grid")

// Grid returns n evenly spaced values from lo to hi inclusive.
func Grid(lo, hi float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	out[n-1] = hi
	return out
}

type SweepPoint struct {
	Omega      float64
	Iterations int
	Residual   float64
	Converged  bool
}

type SweepResult struct {
	Points []SweepPoint
	Best   SweepPoint
	// Found is false when no ω reached the tolerance; Best is then the
	// point with the smallest final residual.
	Found bool
}

// SweepOmega runs SOR once per ω, concurrently, and picks the ω needing the
// fewest sweeps to reach cfg.Tol.
func SweepOmega(ctx context.Context, a linsys.Matrix, b, x0 linsys.Vector, cfg linsys.IterConfig, omegas []float64) (*SweepResult, error) {
	if len(omegas) == 0 {
		return nil, ErrEmptyGrid
	}

	jobs := make([]runner.Job[linsys.VectorIterationState], len(omegas))
	for i, w := range omegas {
		c := cfg
		c.Omega = w
		it, err := linsys.NewIterator(linsys.SOR, a, b, x0, c)
		if err != nil {
			return nil, fmt.Errorf("omega %g: %w", w, err)
		}
		jobs[i] = runner.Job[linsys.VectorIterationState]{
			Stepper: it,
			Options: runner.Options[linsys.VectorIterationState]{Label: fmt.Sprintf("sor(%g)", w)},
		}
	}

	results, err := runner.RunAll(ctx, jobs, runtime.NumCPU())
	if err != nil {
		return nil, err
	}

	sweep := &SweepResult{Points: make([]SweepPoint, len(omegas))}
	for i, res := range results {
		last := res.Last()
		p := SweepPoint{
			Omega:      omegas[i],
			Iterations: len(res.States) - 1,
			Residual:   last.Residual,
			Converged:  last.Residual <= cfg.Tol,
		}
		sweep.Points[i] = p
		if better(p, sweep.Best, sweep.Found, i == 0) {
			sweep.Best = p
			sweep.Found = p.Converged
		}
	}
	return sweep, nil
}

func better(p, best SweepPoint, found, first bool) bool {
	switch {
	case first:
		return true
	case p.Converged && !found:
		return true
	case p.Converged:
		return p.Iterations < best.Iterations
	case found:
		return false
	}
	return p.Residual < best.Residual
}
