package optim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/numlab/internal/config"
	"github.com/san-kum/numlab/internal/experiment"
	"github.com/san-kum/numlab/internal/linsys"
)

func dominant() (linsys.Matrix, linsys.Vector) {
	a := linsys.Matrix{
		{10, -1, 2, 0},
		{-1, 11, -1, 3},
		{2, -1, 10, -1},
		{0, 3, -1, 8},
	}
	return a, linsys.Vector{6, 25, -11, 15}
}

func TestGrid(t *testing.T) {
	tests := []struct {
		lo, hi float64
		n      int
		want   []float64
	}{
		{0, 1, 5, []float64{0, 0.25, 0.5, 0.75, 1}},
		{1.2, 1.2, 1, []float64{1.2}},
		{0, 1, 0, nil},
	}
	for _, tt := range tests {
		got := Grid(tt.lo, tt.hi, tt.n)
		if len(got) != len(tt.want) {
			t.Errorf("Grid(%v, %v, %d) = %v, want %v", tt.lo, tt.hi, tt.n, got, tt.want)
			continue
		}
		for i := range got {
			if math.Abs(got[i]-tt.want[i]) > 1e-12 {
				t.Errorf("Grid(%v, %v, %d)[%d] = %v, want %v", tt.lo, tt.hi, tt.n, i, got[i], tt.want[i])
			}
		}
	}
}

func TestSweepOmega(t *testing.T) {
	a, b := dominant()
	omegas := Grid(0.8, 1.4, 7)

	res, err := SweepOmega(context.Background(), a, b, nil, linsys.DefaultIterConfig(), omegas)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Points) != len(omegas) {
		t.Fatalf("expected %d points, got %d", len(omegas), len(res.Points))
	}
	if !res.Found {
		t.Fatal("expected a converging omega")
	}
	for i, p := range res.Points {
		if p.Omega != omegas[i] {
			t.Errorf("point %d has omega %v, want %v", i, p.Omega, omegas[i])
		}
		if p.Converged && p.Iterations < res.Best.Iterations {
			t.Errorf("omega %v needs %d sweeps, fewer than best %d", p.Omega, p.Iterations, res.Best.Iterations)
		}
	}

	// omega = 1 is Gauss-Seidel
	gs, _ := linsys.NewIterator(linsys.GaussSeidel, a, b, nil, linsys.DefaultIterConfig())
	steps := -1
	for gs.HasNext() {
		if _, err := gs.Next(); err != nil {
			t.Fatal(err)
		}
		steps++
	}
	if res.Points[2].Iterations != steps {
		t.Errorf("sor(1) took %d sweeps, gauss-seidel %d", res.Points[2].Iterations, steps)
	}
}

func TestSweepOmega_Errors(t *testing.T) {
	a, b := dominant()
	if _, err := SweepOmega(context.Background(), a, b, nil, linsys.DefaultIterConfig(), nil); !errors.Is(err, ErrEmptyGrid) {
		t.Errorf("expected ErrEmptyGrid, got %v", err)
	}
	if _, err := SweepOmega(context.Background(), a, b, nil, linsys.DefaultIterConfig(), []float64{1, 2.5}); !errors.Is(err, linsys.ErrInvalidOmega) {
		t.Errorf("expected ErrInvalidOmega, got %v", err)
	}
}

func TestGridSearch(t *testing.T) {
	base, err := config.GetPreset("diagonally-dominant")
	if err != nil {
		t.Fatal(err)
	}
	base.Linear.Method = "sor"
	omegas := Grid(0.8, 1.4, 7)

	gs := NewGridSearch([]string{"omega"}, [][]float64{omegas})
	params, best, err := gs.Search(context.Background(), func(p map[string]float64) (*experiment.Experiment, error) {
		cfg := base.Clone()
		cfg.Linear.Omega = p["omega"]
		return experiment.New(cfg, nil)
	}, "iterations")
	if err != nil {
		t.Fatal(err)
	}

	a, b := dominant()
	sweep, err := SweepOmega(context.Background(), a, b, nil, base.Linear.IterConfig(), omegas)
	if err != nil {
		t.Fatal(err)
	}
	if params["omega"] != sweep.Best.Omega || int(best) != sweep.Best.Iterations {
		t.Errorf("grid search best omega %v (%v sweeps), sweep best %v (%d sweeps)",
			params["omega"], best, sweep.Best.Omega, sweep.Best.Iterations)
	}
}

func TestGridSearch_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	gs := NewGridSearch([]string{"x0"}, [][]float64{{1, 2}})
	_, best, err := gs.Search(ctx, func(map[string]float64) (*experiment.Experiment, error) {
		t.Fatal("build called after cancel")
		return nil, nil
	}, "iterations")
	if !errors.Is(err, context.Canceled) || !math.IsInf(best, 1) {
		t.Errorf("got %v, %v", best, err)
	}
}

func TestParseRange(t *testing.T) {
	tests := []struct {
		text    string
		name    string
		want    []float64
		wantErr error
	}{
		{"omega=0.5:1.5:3", "omega", []float64{0.5, 1, 1.5}, nil},
		{"x0=1, 2,4", "x0", []float64{1, 2, 4}, nil},
		{"tol=1e-6", "tol", []float64{1e-6}, nil},
		{"omega", "", nil, ErrRange},
		{"=1,2", "", nil, ErrRange},
		{"omega=a:2:3", "", nil, ErrRange},
		{"omega=0:1:0", "", nil, ErrEmptyGrid},
		{"omega=", "", nil, ErrEmptyGrid},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			name, got, err := ParseRange(tt.text)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("ParseRange(%q) error = %v, want %v", tt.text, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if name != tt.name || len(got) != len(tt.want) {
				t.Fatalf("ParseRange(%q) = %q %v, want %q %v", tt.text, name, got, tt.name, tt.want)
			}
			for i := range tt.want {
				if math.Abs(got[i]-tt.want[i]) > 1e-15 {
					t.Errorf("value %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestTune_Omega(t *testing.T) {
	base, err := config.GetPreset("diagonally-dominant")
	if err != nil {
		t.Fatal(err)
	}
	base.Linear.Method = "sor"
	omegas := Grid(0.8, 1.4, 7)

	res, err := Tune(context.Background(), base, nil, []string{"omega"}, [][]float64{omegas}, "iterations")
	if err != nil {
		t.Fatal(err)
	}
	a, b := dominant()
	sweep, err := SweepOmega(context.Background(), a, b, nil, base.Linear.IterConfig(), omegas)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Found || res.Params["omega"] != sweep.Best.Omega || int(res.Value) != sweep.Best.Iterations {
		t.Errorf("tune best %v (%v sweeps), sweep best %v (%d sweeps)",
			res.Params["omega"], res.Value, sweep.Best.Omega, sweep.Best.Iterations)
	}
}

func TestTune_SkipsUnconverged(t *testing.T) {
	base, err := config.GetPreset("sqrt2")
	if err != nil {
		t.Fatal(err)
	}

	res, err := Tune(context.Background(), base, nil, []string{"max-iter"}, [][]float64{{2, 50}}, "iterations")
	if err != nil {
		t.Fatal(err)
	}
	if !res.Found || res.Params["max-iter"] != 50 {
		t.Errorf("got %+v, want max-iter 50", res)
	}

	res, err = Tune(context.Background(), base, nil, []string{"max_iter"}, [][]float64{{1, 2}}, "iterations")
	if err != nil {
		t.Fatal(err)
	}
	if res.Found || !math.IsInf(res.Value, 1) {
		t.Errorf("expected nothing found, got %+v", res)
	}
}

func TestTune_Errors(t *testing.T) {
	base, err := config.GetPreset("sqrt2")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Tune(context.Background(), base, nil, []string{"omega"}, [][]float64{{1}}, "iterations"); !errors.Is(err, config.ErrUnknownParam) {
		t.Errorf("expected ErrUnknownParam, got %v", err)
	}
	if _, err := Tune(context.Background(), base, nil, []string{"x0"}, [][]float64{{}}, "iterations"); !errors.Is(err, ErrEmptyGrid) {
		t.Errorf("expected ErrEmptyGrid, got %v", err)
	}
	if _, err := Tune(context.Background(), base, nil, nil, nil, "iterations"); !errors.Is(err, ErrEmptyGrid) {
		t.Errorf("expected ErrEmptyGrid, got %v", err)
	}
}
