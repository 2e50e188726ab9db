package runner

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/numlab/internal/equation"
	"github.com/san-kum/numlab/internal/linsys"
	"github.com/san-kum/numlab/internal/rootfind"
)

type countStepper struct {
	n, limit int
	failAt   int
}

func (c *countStepper) HasNext() bool { return c.n < c.limit }

func (c *countStepper) Next() (int, error) {
	if c.failAt > 0 && c.n == c.failAt {
		return 0, errors.New("boom")
	}
	c.n++
	return c.n, nil
}

type sumMetric struct{ sum float64 }

func (s *sumMetric) Name() string   { return "sum" }
func (s *sumMetric) Observe(v int)  { s.sum += float64(v) }
func (s *sumMetric) Value() float64 { return s.sum }
func (s *sumMetric) Reset()         { s.sum = 0 }

func TestRun_Exhausted(t *testing.T) {
	seen := 0
	res, err := Run[int](context.Background(), &countStepper{limit: 5}, Options[int]{
		Observers: []Observer[int]{ObserverFunc[int](func(int) { seen++ })},
		Metrics:   []Metric[int]{&sumMetric{}},
	})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(res.States) != 5 || seen != 5 {
		t.Errorf("got %d states, %d observations, want 5 each", len(res.States), seen)
	}
	if res.Reason != StopExhausted {
		t.Errorf("reason = %v, want exhausted", res.Reason)
	}
	if res.Metrics["sum"] != 15 {
		t.Errorf("sum metric = %v, want 15", res.Metrics["sum"])
	}
	if res.Last() != 5 {
		t.Errorf("Last() = %d, want 5", res.Last())
	}
}

func TestRun_StopPredicates(t *testing.T) {
	res, _ := Run[int](context.Background(), &countStepper{limit: 10}, Options[int]{
		Converged: func(v int) bool { return v == 3 },
	})
	if res.Reason != StopConverged || len(res.States) != 3 {
		t.Errorf("converged run: reason %v after %d states", res.Reason, len(res.States))
	}

	res, _ = Run[int](context.Background(), &countStepper{limit: 10}, Options[int]{
		Diverged: func(v int) bool { return v > 6 },
	})
	if res.Reason != StopDiverged || len(res.States) != 7 {
		t.Errorf("diverged run: reason %v after %d states", res.Reason, len(res.States))
	}
}

func TestRun_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := Run[int](ctx, &countStepper{limit: 10}, Options[int]{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if res == nil || res.Reason != StopCanceled || len(res.States) != 0 {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestRun_StepError(t *testing.T) {
	res, err := Run[int](context.Background(), &countStepper{limit: 10, failAt: 4}, Options[int]{Label: "count"})
	var se *StepError
	if !errors.As(err, &se) {
		t.Fatalf("error = %v, want *StepError", err)
	}
	if se.Step != 4 || se.Label != "count" {
		t.Errorf("StepError = %+v", se)
	}
	if len(res.States) != 4 {
		t.Errorf("kept %d states, want 4", len(res.States))
	}
}

func TestRun_NilStepper(t *testing.T) {
	if _, err := Run[int](context.Background(), nil, Options[int]{}); !errors.Is(err, ErrNilStepper) {
		t.Errorf("error = %v, want ErrNilStepper", err)
	}
}

func TestRunRoot(t *testing.T) {
	eq, err := equation.New("x^2 - 2", "")
	if err != nil {
		t.Fatal(err)
	}

	it, _ := rootfind.New(rootfind.Newton, eq, 1, rootfind.DefaultConfig())
	res, err := RunRoot(context.Background(), it, 1e-10, Options[rootfind.IterationState]{})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Converged() {
		t.Fatalf("reason = %v, want converged", res.Reason)
	}
	if math.Abs(res.Last().X-math.Sqrt2) > 1e-12 {
		t.Errorf("final x = %v", res.Last().X)
	}
	if res.Label != "newton" {
		t.Errorf("label = %q, want newton", res.Label)
	}

	it, _ = rootfind.New(rootfind.Newton, eq, 0, rootfind.DefaultConfig())
	res, err = RunRoot(context.Background(), it, 1e-10, Options[rootfind.IterationState]{})
	if err != nil {
		t.Fatal(err)
	}
	if res.Reason != StopDiverged {
		t.Errorf("reason = %v, want diverged", res.Reason)
	}
}

func TestRunLinear(t *testing.T) {
	a := linsys.NewMatrix([][]float64{{4, 1}, {1, 3}})
	b := linsys.Vector{1, 2}
	it, err := linsys.NewIterator(linsys.GaussSeidel, a, b, nil, linsys.DefaultIterConfig())
	if err != nil {
		t.Fatal(err)
	}
	res, err := RunLinear(context.Background(), it, Options[linsys.VectorIterationState]{})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Converged() {
		t.Errorf("reason = %v, want converged", res.Reason)
	}
	if res.Last().Residual > 1e-6 {
		t.Errorf("final residual = %v", res.Last().Residual)
	}
}

func TestRunAll(t *testing.T) {
	jobs := []Job[int]{
		{Stepper: &countStepper{limit: 3}},
		{Stepper: &countStepper{limit: 7}},
		{Stepper: &countStepper{limit: 1}},
	}
	results, err := RunAll(context.Background(), jobs, 2)
	if err != nil {
		t.Fatal(err)
	}
	for i, want := range []int{3, 7, 1} {
		if got := len(results[i].States); got != want {
			t.Errorf("job %d: %d states, want %d", i, got, want)
		}
	}

	jobs = append(jobs, Job[int]{Stepper: &countStepper{limit: 5, failAt: 2}})
	if _, err := RunAll(context.Background(), jobs, 0); err == nil {
		t.Error("expected the failing job's error")
	}
}
