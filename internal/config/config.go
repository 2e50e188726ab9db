package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/numlab/internal/equation"
	"github.com/san-kum/numlab/internal/linsys"
	"github.com/san-kum/numlab/internal/rootfind"
)

const (
	KindRoot   = "root"
	KindLinear = "linear"

	DefaultRootMethod   = "newton"
	DefaultLinearMethod = "partial-pivot"
	DefaultTol          = 1e-10
)

// Config describes one problem and how to solve it.
type Config struct {
	Kind   string       `yaml:"kind" json:"kind"`
	Root   RootConfig   `yaml:"root,omitempty" json:"root,omitempty"`
	Linear LinearConfig `yaml:"linear,omitempty" json:"linear,omitempty"`
}

type RootConfig struct {
	F              string  `yaml:"f" json:"f"`
	G              string  `yaml:"g,omitempty" json:"g,omitempty"`
	Method         string  `yaml:"method" json:"method"`
	X0             float64 `yaml:"x0" json:"x0"`
	X1             float64 `yaml:"x1,omitempty" json:"x1,omitempty"`
	Tol            float64 `yaml:"tol" json:"tol"`
	MaxIter        int     `yaml:"max_iter" json:"max_iter"`
	UpdateInterval int     `yaml:"update_interval" json:"update_interval"`
	DampingTries   int     `yaml:"damping_tries" json:"damping_tries"`
}

type LinearConfig struct {
	Method  string      `yaml:"method" json:"method"`
	A       [][]float64 `yaml:"a" json:"a"`
	B       []float64   `yaml:"b" json:"b"`
	X0      []float64   `yaml:"x0,omitempty" json:"x0,omitempty"`
	Tol     float64     `yaml:"tol" json:"tol"`
	MaxIter int         `yaml:"max_iter" json:"max_iter"`
	Omega   float64     `yaml:"omega" json:"omega"`
}

func DefaultConfig() *Config {
	rc := rootfind.DefaultConfig()
	ic := linsys.DefaultIterConfig()
	return &Config{
		Kind: KindRoot,
		Root: RootConfig{
			Method:         DefaultRootMethod,
			Tol:            DefaultTol,
			MaxIter:        rc.MaxIter,
			UpdateInterval: rc.UpdateInterval,
			DampingTries:   rc.DampingTries,
		},
		Linear: LinearConfig{
			Method:  DefaultLinearMethod,
			Tol:     ic.Tol,
			MaxIter: ic.MaxIter,
			Omega:   ic.Omega,
		},
	}
}

// Load reads a problem file. Files ending in .cue are validated against the
// problem schema; anything else is parsed as YAML.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if strings.EqualFold(filepath.Ext(path), ".cue") {
		if err := decodeCUE(path, data, cfg); err != nil {
			return nil, err
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the fields the selected kind needs.
func (c *Config) Validate() error {
	switch c.Kind {
	case KindRoot:
		if strings.TrimSpace(c.Root.F) == "" {
			return fmt.Errorf("%w: root.f is required", ErrInvalid)
		}
	case KindLinear:
		if len(c.Linear.A) == 0 || len(c.Linear.B) == 0 {
			return fmt.Errorf("%w: linear.a and linear.b are required", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: kind must be %q or %q, got %q", ErrInvalid, KindRoot, KindLinear, c.Kind)
	}
	return nil
}

// Equation parses f and g.
func (r RootConfig) Equation() (*equation.Equation, error) {
	return equation.New(r.F, r.G)
}

func (r RootConfig) IterConfig() rootfind.Config {
	return rootfind.Config{
		MaxIter:        r.MaxIter,
		UpdateInterval: r.UpdateInterval,
		DampingTries:   r.DampingTries,
	}
}

func (l LinearConfig) IterConfig() linsys.IterConfig {
	return linsys.IterConfig{Tol: l.Tol, MaxIter: l.MaxIter, Omega: l.Omega}
}

// System returns copies of A, b and x0 (nil when unset).
func (l LinearConfig) System() (linsys.Matrix, linsys.Vector, linsys.Vector) {
	var x0 linsys.Vector
	if len(l.X0) > 0 {
		x0 = linsys.Vector(l.X0).Clone()
	}
	return linsys.NewMatrix(l.A), linsys.Vector(l.B).Clone(), x0
}

// Name is a short label for listings.
func (c *Config) Name() string {
	if c.Kind == KindLinear {
		return fmt.Sprintf("%s %dx%d", c.Linear.Method, len(c.Linear.A), len(c.Linear.A))
	}
	return fmt.Sprintf("%s f(x)=%s", c.Root.Method, c.Root.F)
}

func (c *Config) Clone() *Config {
	out := *c
	out.Linear.A = linsys.NewMatrix(c.Linear.A)
	out.Linear.B = append([]float64(nil), c.Linear.B...)
	out.Linear.X0 = append([]float64(nil), c.Linear.X0...)
	return &out
}
