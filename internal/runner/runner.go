package runner

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/san-kum/numlab/internal/linsys"
	"github.com/san-kum/numlab/internal/rootfind"
)

// Run pulls states from it until it is exhausted, a stop predicate fires or
// ctx is done. The states collected so far are returned in every case.
func Run[S any](ctx context.Context, it Stepper[S], opts Options[S]) (*Result[S], error) {
	if it == nil {
		return nil, ErrNilStepper
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	result := &Result[S]{
		Label:   opts.Label,
		States:  make([]S, 0, 64),
		Metrics: make(map[string]float64),
	}
	for _, m := range opts.Metrics {
		m.Reset()
	}

	start := time.Now()
	defer func() {
		result.Elapsed = time.Since(start)
		for _, m := range opts.Metrics {
			result.Metrics[m.Name()] = m.Value()
		}
	}()

	for it.HasNext() {
		select {
		case <-ctx.Done():
			result.Reason = StopCanceled
			log.Info("run canceled", "label", opts.Label, "steps", len(result.States))
			return result, ctx.Err()
		default:
		}

		st, err := it.Next()
		if err != nil {
			return result, &StepError{Label: opts.Label, Step: len(result.States), Wrapped: err}
		}
		result.States = append(result.States, st)
		log.Debug("step", "label", opts.Label, "k", len(result.States)-1, "state", st)

		for _, m := range opts.Metrics {
			m.Observe(st)
		}
		for _, obs := range opts.Observers {
			obs.OnStep(st)
		}

		if opts.Diverged != nil && opts.Diverged(st) {
			result.Reason = StopDiverged
			log.Warn("run diverged", "label", opts.Label, "steps", len(result.States))
			return result, nil
		}
		if opts.Converged != nil && opts.Converged(st) {
			result.Reason = StopConverged
			log.Info("run converged", "label", opts.Label, "steps", len(result.States))
			return result, nil
		}
	}

	result.Reason = StopExhausted
	log.Info("run exhausted", "label", opts.Label, "steps", len(result.States))
	return result, nil
}

// RunRoot drives a root-finding iterator. A positive tol stops the run as
// soon as a step moves by at most tol; a NaN or infinite iterate marks the
// run as diverged.
func RunRoot(ctx context.Context, it *rootfind.Iterator, tol float64, opts Options[rootfind.IterationState]) (*Result[rootfind.IterationState], error) {
	if it == nil {
		return nil, ErrNilStepper
	}
	if opts.Label == "" {
		opts.Label = it.Method().Key()
	}
	if tol > 0 && opts.Converged == nil {
		opts.Converged = func(st rootfind.IterationState) bool { return st.Converged(tol) }
	}
	if opts.Diverged == nil {
		opts.Diverged = func(st rootfind.IterationState) bool { return !finite(st.X) }
	}
	return Run[rootfind.IterationState](ctx, it, opts)
}

// RunLinear drives an iterative linear solver. The iterator stops itself at
// its tolerance; the run is reported as converged when the final residual is
// within it.
func RunLinear(ctx context.Context, it *linsys.Iterator, opts Options[linsys.VectorIterationState]) (*Result[linsys.VectorIterationState], error) {
	if it == nil {
		return nil, ErrNilStepper
	}
	if opts.Label == "" {
		opts.Label = it.Method().String()
	}
	if opts.Diverged == nil {
		opts.Diverged = func(st linsys.VectorIterationState) bool { return !finite(st.Residual) }
	}
	res, err := Run[linsys.VectorIterationState](ctx, it, opts)
	if err == nil && res.Reason == StopExhausted && len(res.States) > 0 && res.Last().Residual <= it.Config().Tol {
		res.Reason = StopConverged
	}
	return res, err
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
