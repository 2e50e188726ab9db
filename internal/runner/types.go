package runner

import (
	"fmt"
	"log/slog"
	"time"
)

// Stepper is a pull-based iterator. Both rootfind.Iterator and
// linsys.Iterator satisfy it.
type Stepper[S any] interface {
	HasNext() bool
	Next() (S, error)
}

type Observer[S any] interface {
	OnStep(s S)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc[S any] func(S)

func (f ObserverFunc[S]) OnStep(s S) { f(s) }

type Metric[S any] interface {
	Name() string
	Observe(s S)
	Value() float64
	Reset()
}

type StopReason int

const (
	StopExhausted StopReason = iota
	StopConverged
	StopDiverged
	StopCanceled
)

func (r StopReason) String() string {
	switch r {
	case StopExhausted:
		return "exhausted"
	case StopConverged:
		return "converged"
	case StopDiverged:
		return "diverged"
	case StopCanceled:
		return "canceled"
	}
	return fmt.Sprintf("StopReason(%d)", int(r))
}

// Options configure a single run. Converged and Diverged are checked after
// every step; nil means never.
type Options[S any] struct {
	Label     string
	Converged func(S) bool
	Diverged  func(S) bool
	Observers []Observer[S]
	Metrics   []Metric[S]
	Logger    *slog.Logger
}

type Result[S any] struct {
	Label   string
	States  []S
	Reason  StopReason
	Metrics map[string]float64
	Elapsed time.Duration
}

// Last returns the final state, or the zero value for an empty run.
func (r *Result[S]) Last() S {
	var zero S
	if len(r.States) == 0 {
		return zero
	}
	return r.States[len(r.States)-1]
}

func (r *Result[S]) Converged() bool {
	return r.Reason == StopConverged
}
