package rootfind

import (
	"fmt"
	"sort"
	"strings"
)

type Method int

const (
	SimpleIteration Method = iota
	Newton
	SimplifiedNewton
	DampedNewton
	ModifiedSecant
	Aitken
	SinglePointSecant
	TwoPointSecant
)

type methodInfo struct {
	key    string
	name   string
	points int
	needsG bool
}

var methods = [...]methodInfo{
	SimpleIteration:   {"simple", "Simple iteration", 1, true},
	Newton:            {"newton", "Newton", 1, false},
	SimplifiedNewton:  {"simplified-newton", "Simplified Newton", 1, false},
	DampedNewton:      {"damped-newton", "Damped Newton", 1, false},
	ModifiedSecant:    {"modified-secant", "Modified secant", 1, false},
	Aitken:            {"aitken", "Aitken (Steffensen)", 1, true},
	SinglePointSecant: {"chord", "Single-point secant", 2, false},
	TwoPointSecant:    {"secant", "Two-point secant", 2, false},
}

var aliases = map[string]Method{
	"fixed-point":   SimpleIteration,
	"steffensen":    Aitken,
	"single-secant": SinglePointSecant,
	"two-secant":    TwoPointSecant,
}

func (m Method) valid() bool {
	return m >= 0 && int(m) < len(methods)
}

// String returns the display name.
func (m Method) String() string {
	if !m.valid() {
		return fmt.Sprintf("Method(%d)", int(m))
	}
	return methods[m].name
}

// Key returns the short name accepted by ParseMethod.
func (m Method) Key() string {
	if !m.valid() {
		return ""
	}
	return methods[m].key
}

// Points is the number of initial points the method needs.
func (m Method) Points() int {
	if !m.valid() {
		return 0
	}
	return methods[m].points
}

func (m Method) RequiresG() bool {
	return m.valid() && methods[m].needsG
}

// Methods lists every method in declaration order.
func Methods() []Method {
	out := make([]Method, len(methods))
	for i := range methods {
		out[i] = Method(i)
	}
	return out
}

// ParseMethod resolves a key or alias, case-insensitively.
func ParseMethod(name string) (Method, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, info := range methods {
		if info.key == name {
			return Method(i), nil
		}
	}
	if m, ok := aliases[name]; ok {
		return m, nil
	}
	return 0, fmt.Errorf("%w: %s (available: %s)", ErrUnknownMethod, name, strings.Join(Keys(), ", "))
}

// Keys returns the method keys sorted alphabetically.
func Keys() []string {
	keys := make([]string, len(methods))
	for i, info := range methods {
		keys[i] = info.key
	}
	sort.Strings(keys)
	return keys
}
