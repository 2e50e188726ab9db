package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Scenario is a batch of problems run one after another.
type Scenario struct {
	Name        string    `yaml:"name" json:"name"`
	Description string    `yaml:"description,omitempty" json:"description,omitempty"`
	Runs        []*Config `yaml:"runs" json:"runs"`
}

// LoadScenario reads a YAML or CUE scenario. Every run starts from
// DefaultConfig, so a run only needs the fields it changes.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw struct {
		Name        string      `yaml:"name" json:"name"`
		Description string      `yaml:"description" json:"description"`
		Runs        []yaml.Node `yaml:"runs" json:"-"`
	}

	sc := &Scenario{}
	if strings.EqualFold(filepath.Ext(path), ".cue") {
		v, err := compile(path, data, "#Scenario")
		if err != nil {
			return nil, err
		}
		if err := v.Decode(sc); err != nil {
			return nil, err
		}
		// decoded runs lack defaults; merge them in
		for i, run := range sc.Runs {
			sc.Runs[i] = withDefaults(run)
		}
	} else {
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		sc.Name, sc.Description = raw.Name, raw.Description
		for i := range raw.Runs {
			cfg := DefaultConfig()
			if err := raw.Runs[i].Decode(cfg); err != nil {
				return nil, fmt.Errorf("run %d: %w", i+1, err)
			}
			sc.Runs = append(sc.Runs, cfg)
		}
	}

	for i, run := range sc.Runs {
		if err := run.Validate(); err != nil {
			return nil, fmt.Errorf("run %d: %w", i+1, err)
		}
	}
	return sc, nil
}

func withDefaults(c *Config) *Config {
	d := DefaultConfig()
	d.Kind = c.Kind
	r, l := c.Root, c.Linear
	d.Root.F, d.Root.G, d.Root.X0, d.Root.X1 = r.F, r.G, r.X0, r.X1
	if r.Method != "" {
		d.Root.Method = r.Method
	}
	if r.Tol != 0 {
		d.Root.Tol = r.Tol
	}
	if r.MaxIter != 0 {
		d.Root.MaxIter = r.MaxIter
	}
	if r.UpdateInterval != 0 {
		d.Root.UpdateInterval = r.UpdateInterval
	}
	if r.DampingTries != 0 {
		d.Root.DampingTries = r.DampingTries
	}

	d.Linear.A, d.Linear.B, d.Linear.X0 = l.A, l.B, l.X0
	if l.Method != "" {
		d.Linear.Method = l.Method
	}
	if l.Tol != 0 {
		d.Linear.Tol = l.Tol
	}
	if l.MaxIter != 0 {
		d.Linear.MaxIter = l.MaxIter
	}
	if l.Omega != 0 {
		d.Linear.Omega = l.Omega
	}
	return d
}
