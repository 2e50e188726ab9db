package config

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

type paramSetter func(c *Config, v float64)

// params lists the numeric settings a parameter search may vary, per kind.
var params = map[string]map[string]paramSetter{
	KindRoot: {
		"x0":              func(c *Config, v float64) { c.Root.X0 = v },
		"x1":              func(c *Config, v float64) { c.Root.X1 = v },
		"tol":             func(c *Config, v float64) { c.Root.Tol = v },
		"max_iter":        func(c *Config, v float64) { c.Root.MaxIter = int(math.Round(v)) },
		"update_interval": func(c *Config, v float64) { c.Root.UpdateInterval = int(math.Round(v)) },
		"damping_tries":   func(c *Config, v float64) { c.Root.DampingTries = int(math.Round(v)) },
	},
	KindLinear: {
		"omega":    func(c *Config, v float64) { c.Linear.Omega = v },
		"tol":      func(c *Config, v float64) { c.Linear.Tol = v },
		"max_iter": func(c *Config, v float64) { c.Linear.MaxIter = int(math.Round(v)) },
	},
}

func paramKey(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")
}

// ParamNames returns the parameters of the given kind, sorted.
func ParamNames(kind string) []string {
	var names []string
	for name := range params[kind] {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// CheckParam reports whether name is a parameter of c's kind. Dashes and
// underscores are interchangeable.
func (c *Config) CheckParam(name string) error {
	if _, ok := params[c.Kind][paramKey(name)]; !ok {
		return fmt.Errorf("%w: %q for %s problems (available: %s)",
			ErrUnknownParam, name, c.Kind, strings.Join(ParamNames(c.Kind), ", "))
	}
	return nil
}

// SetParam sets one numeric parameter. Integer parameters are rounded.
func (c *Config) SetParam(name string, v float64) error {
	if err := c.CheckParam(name); err != nil {
		return err
	}
	params[c.Kind][paramKey(name)](c, v)
	return nil
}
