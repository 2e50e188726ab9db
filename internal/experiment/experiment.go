package experiment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/san-kum/numlab/internal/config"
	"github.com/san-kum/numlab/internal/equation"
	"github.com/san-kum/numlab/internal/linsys"
	"github.com/san-kum/numlab/internal/rootfind"
	"github.com/san-kum/numlab/internal/runner"
)

var ErrSamePoints = errors.New("experiment: two-point method needs x1 != x0")

// Experiment is one configured problem, ready to run.
type Experiment struct {
	cfg      *config.Config
	registry *Registry
	logger   *slog.Logger

	rootObservers   []runner.Observer[rootfind.IterationState]
	linearObservers []runner.Observer[linsys.VectorIterationState]
}

func New(cfg *config.Config, registry *Registry) (*Experiment, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: nil config", config.ErrInvalid)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if registry == nil {
		registry = NewRegistry()
	}
	return &Experiment{
		cfg:      cfg,
		registry: registry,
		logger:   slog.New(slog.DiscardHandler),
	}, nil
}

func (e *Experiment) Config() *config.Config { return e.cfg }

func (e *Experiment) SetLogger(l *slog.Logger) {
	if l != nil {
		e.logger = l
	}
}

func (e *Experiment) ObserveRoot(obs runner.Observer[rootfind.IterationState]) {
	e.rootObservers = append(e.rootObservers, obs)
}

func (e *Experiment) ObserveLinear(obs runner.Observer[linsys.VectorIterationState]) {
	e.linearObservers = append(e.linearObservers, obs)
}

// RootIterator builds a fresh iterator for a root problem.
func (e *Experiment) RootIterator() (*rootfind.Iterator, error) {
	rc := e.cfg.Root
	m, err := e.registry.GetRootMethod(rc.Method)
	if err != nil {
		return nil, err
	}
	eq, err := rc.Equation()
	if err != nil {
		return nil, err
	}
	if m.Points() == 2 {
		if rc.X1 == rc.X0 {
			return nil, fmt.Errorf("%w: %s with x0 = x1 = %g", ErrSamePoints, m.Key(), rc.X0)
		}
		return rootfind.NewTwoPoint(m, eq, rc.X0, rc.X1, rc.IterConfig())
	}
	return rootfind.New(m, eq, rc.X0, rc.IterConfig())
}

// LinearIterator builds a fresh iterator for an iterative linear problem.
func (e *Experiment) LinearIterator() (*linsys.Iterator, error) {
	m, err := e.registry.GetIterative(e.cfg.Linear.Method)
	if err != nil {
		return nil, err
	}
	a, b, x0 := e.cfg.Linear.System()
	return linsys.NewIterator(m, a, b, x0, e.cfg.Linear.IterConfig())
}

func (e *Experiment) Run(ctx context.Context) (*Outcome, error) {
	out := &Outcome{Config: e.cfg}

	switch {
	case e.cfg.Kind == config.KindRoot:
		it, err := e.RootIterator()
		if err != nil {
			return nil, err
		}
		out.Equation = it.Equation()
		res, err := runner.RunRoot(ctx, it, e.cfg.Root.Tol, runner.Options[rootfind.IterationState]{
			Observers: e.rootObservers,
			Metrics:   e.registry.RootMetrics(),
			Logger:    e.logger,
		})
		out.Root = res
		out.Points = it.Points()
		return out, err

	case e.registry.IsDirect(e.cfg.Linear.Method):
		solver, err := e.registry.GetDirect(e.cfg.Linear.Method)
		if err != nil {
			return nil, err
		}
		a, b, _ := e.cfg.Linear.System()
		sol, err := solver.Solve(a, b)
		if sol == nil {
			// input rejected before elimination started
			e.logger.Warn("direct solve rejected input", "method", solver.Name(), "error", err)
			return nil, err
		}
		out.Direct = sol
		if err != nil {
			e.logger.Warn("direct solve failed", "method", solver.Name(), "error", err)
			return out, err
		}
		e.logger.Info("direct solve complete", "method", solver.Name(), "steps", len(sol.History))
		return out, nil

	default:
		it, err := e.LinearIterator()
		if err != nil {
			return nil, err
		}
		res, err := runner.RunLinear(ctx, it, runner.Options[linsys.VectorIterationState]{
			Observers: e.linearObservers,
			Metrics:   e.registry.LinearMetrics(),
			Logger:    e.logger,
		})
		out.Iterative = res
		return out, err
	}
}

// Outcome holds the result of one experiment. Exactly one of Root,
// Iterative and Direct is set.
type Outcome struct {
	Config    *config.Config
	Root      *runner.Result[rootfind.IterationState]
	Iterative *runner.Result[linsys.VectorIterationState]
	Direct    *linsys.DirectSolution

	// root problems only
	Equation *equation.Equation
	Points   []float64
}

func (o *Outcome) Method() string {
	switch {
	case o.Root != nil:
		return o.Root.Label
	case o.Iterative != nil:
		return o.Iterative.Label
	case o.Direct != nil:
		return o.Direct.Method
	}
	return ""
}

func (o *Outcome) Converged() bool {
	switch {
	case o.Root != nil:
		return o.Root.Converged()
	case o.Iterative != nil:
		return o.Iterative.Converged()
	case o.Direct != nil:
		return o.Direct.Solution != nil
	}
	return false
}

// Steps is the number of recorded states.
func (o *Outcome) Steps() int {
	switch {
	case o.Root != nil:
		return len(o.Root.States)
	case o.Iterative != nil:
		return len(o.Iterative.States)
	case o.Direct != nil:
		return len(o.Direct.History)
	}
	return 0
}

func (o *Outcome) Metrics() map[string]float64 {
	switch {
	case o.Root != nil:
		return o.Root.Metrics
	case o.Iterative != nil:
		return o.Iterative.Metrics
	}
	return nil
}

// RootEstimate returns the last root estimate, NaN for linear problems.
func (o *Outcome) RootEstimate() float64 {
	if o.Root == nil || len(o.Root.States) == 0 {
		return math.NaN()
	}
	return o.Root.Last().X
}

// Solution returns the linear solution, nil for root problems or a faulted
// direct solve.
func (o *Outcome) Solution() linsys.Vector {
	switch {
	case o.Iterative != nil && len(o.Iterative.States) > 0:
		return o.Iterative.Last().X
	case o.Direct != nil:
		return o.Direct.Solution
	}
	return nil
}

// Check compares a linear solution with the reference solver.
type Check struct {
	Reference linsys.Vector
	MaxDiff   float64
	Residual  float64
	Condition float64
}

func (o *Outcome) Verify() (*Check, error) {
	if o.Config == nil || o.Config.Kind != config.KindLinear {
		return nil, fmt.Errorf("%w: verify needs a linear problem", config.ErrInvalid)
	}
	x := o.Solution()
	if x == nil {
		return nil, linsys.ErrSingular
	}
	a, b, _ := o.Config.Linear.System()
	ref, err := linsys.Reference(a, b)
	if err != nil {
		return nil, err
	}
	diff := 0.0
	for i := range ref {
		diff = math.Max(diff, math.Abs(ref[i]-x[i]))
	}
	return &Check{
		Reference: ref,
		MaxDiff:   diff,
		Residual:  linsys.Residual(a, x, b),
		Condition: linsys.Condition(a),
	}, nil
}
