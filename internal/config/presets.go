package config

import (
	"fmt"
	"sort"
)

var Presets = map[string]*Config{
	"sqrt2": {
		Kind: KindRoot,
		Root: RootConfig{F: "x^2 - 2", Method: "newton", X0: 1, Tol: 1e-12, MaxIter: 50, UpdateInterval: 1, DampingTries: 10},
	},
	"cos-fixed-point": {
		Kind: KindRoot,
		Root: RootConfig{F: "x - cos(x)", G: "cos(x)", Method: "simple", X0: 1, Tol: 1e-8, MaxIter: 50, UpdateInterval: 1, DampingTries: 10},
	},
	"cos-aitken": {
		Kind: KindRoot,
		Root: RootConfig{F: "x - cos(x)", G: "cos(x)", Method: "aitken", X0: 1, Tol: 1e-10, MaxIter: 50, UpdateInterval: 1, DampingTries: 10},
	},
	"cubic-secant": {
		Kind: KindRoot,
		Root: RootConfig{F: "x^3 - x - 1", Method: "secant", X0: 1, X1: 2, Tol: 1e-10, MaxIter: 50, UpdateInterval: 1, DampingTries: 10},
	},
	"newton-cycle": {
		Kind: KindRoot,
		Root: RootConfig{F: "x^3 - 2*x + 2", Method: "damped-newton", X0: 0, Tol: 1e-10, MaxIter: 50, UpdateInterval: 1, DampingTries: 10},
	},
	"diagonally-dominant": {
		Kind: KindLinear,
		Linear: LinearConfig{
			Method: "gauss-seidel",
			A: [][]float64{
				{10, -1, 2, 0},
				{-1, 11, -1, 3},
				{2, -1, 10, -1},
				{0, 3, -1, 8},
			},
			B:   []float64{6, 25, -11, 15},
			Tol: 1e-6, MaxIter: 100, Omega: 1.2,
		},
	},
	"spd": {
		Kind: KindLinear,
		Linear: LinearConfig{
			Method: "sqrt",
			A: [][]float64{
				{4, 1, 2},
				{1, 5, 1},
				{2, 1, 6},
			},
			B:   []float64{7, 7, 9},
			Tol: 1e-6, MaxIter: 100, Omega: 1.2,
		},
	},
	"zero-pivot": {
		Kind: KindLinear,
		Linear: LinearConfig{
			Method: "partial-pivot",
			A:      [][]float64{{0, 2, 1}, {1, 1, 1}, {2, 1, 0}},
			B:      []float64{3, 3, 3},
			Tol:    1e-6, MaxIter: 100, Omega: 1.2,
		},
	},
	"singular": {
		Kind: KindLinear,
		Linear: LinearConfig{
			Method: "gauss",
			A:      [][]float64{{1, 2}, {2, 4}},
			B:      []float64{3, 6},
			Tol:    1e-6, MaxIter: 100, Omega: 1.2,
		},
	},
}

// GetPreset returns a copy of the named preset.
func GetPreset(name string) (*Config, error) {
	cfg, ok := Presets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s (available: %v)", ErrUnknownPreset, name, ListPresets(""))
	}
	return cfg.Clone(), nil
}

// ListPresets returns preset names of the given kind, or all of them when
// kind is empty.
func ListPresets(kind string) []string {
	names := make([]string, 0, len(Presets))
	for name, cfg := range Presets {
		if kind == "" || cfg.Kind == kind {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
