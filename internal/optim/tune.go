package optim

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/san-kum/numlab/internal/config"
	"github.com/san-kum/numlab/internal/experiment"
)

var ErrRange = errors.New("optim: bad parameter range")

// ParseRange reads "name=lo:hi:n" (n evenly spaced values) or
// "name=v1,v2,...".
func ParseRange(text string) (string, []float64, error) {
	name, rest, ok := strings.Cut(text, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", nil, fmt.Errorf("%w: %q, want name=lo:hi:n or name=v1,v2", ErrRange, text)
	}

	if parts := strings.Split(rest, ":"); len(parts) == 3 {
		lo, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		hi, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		n, err3 := strconv.Atoi(strings.TrimSpace(parts[2]))
		if err := errors.Join(err1, err2, err3); err != nil {
			return "", nil, fmt.Errorf("%w: %q: %v", ErrRange, text, err)
		}
		if n <= 0 {
			return "", nil, fmt.Errorf("%w: %s", ErrEmptyGrid, name)
		}
		return name, Grid(lo, hi, n), nil
	}

	var values []float64
	for _, f := range strings.Split(rest, ",") {
		if strings.TrimSpace(f) == "" {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return "", nil, fmt.Errorf("%w: %q: %v", ErrRange, text, err)
		}
		values = append(values, v)
	}
	if len(values) == 0 {
		return "", nil, fmt.Errorf("%w: %s", ErrEmptyGrid, name)
	}
	return name, values, nil
}

type TuneResult struct {
	Params map[string]float64
	Value  float64
	// Found is false when no grid point converged.
	Found bool
}

// Tune grid-searches parameters of base for the smallest value of metric
// among converged runs.
func Tune(ctx context.Context, base *config.Config, registry *experiment.Registry, names []string, ranges [][]float64, metric string) (*TuneResult, error) {
	if len(names) == 0 || len(names) != len(ranges) {
		return nil, ErrEmptyGrid
	}
	for i, name := range names {
		if err := base.CheckParam(name); err != nil {
			return nil, err
		}
		if len(ranges[i]) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrEmptyGrid, name)
		}
	}
	if registry == nil {
		registry = experiment.NewRegistry()
	}

	gs := NewGridSearch(names, ranges)
	gs.RequireConverged = true
	params, best, err := gs.Search(ctx, func(p map[string]float64) (*experiment.Experiment, error) {
		cfg := base.Clone()
		for name, v := range p {
			if err := cfg.SetParam(name, v); err != nil {
				return nil, err
			}
		}
		return experiment.New(cfg, registry)
	}, metric)
	if err != nil {
		return nil, err
	}
	return &TuneResult{Params: params, Value: best, Found: params != nil}, nil
}
