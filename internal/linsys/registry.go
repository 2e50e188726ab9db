package linsys

import (
	"fmt"
	"sort"
	"strings"
)

// Registry maps solver names to constructors.
type Registry struct {
	direct map[string]func() DirectSolver
}

func NewRegistry() *Registry {
	r := &Registry{direct: make(map[string]func() DirectSolver)}

	r.direct["gauss"] = func() DirectSolver { return NewGauss() }
	r.direct["partial-pivot"] = func() DirectSolver { return NewPartialPivot() }
	r.direct["full-pivot"] = func() DirectSolver { return NewFullPivot() }
	r.direct["normalized"] = func() DirectSolver { return NewNormalized() }
	r.direct["sqrt"] = func() DirectSolver { return NewSquareRoot() }

	return r
}

func (r *Registry) GetDirect(name string) (DirectSolver, error) {
	fn, ok := r.direct[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s (available: %s)", ErrUnknownMethod, name, strings.Join(r.ListDirect(), ", "))
	}
	return fn(), nil
}

func (r *Registry) ListDirect() []string {
	names := make([]string, 0, len(r.direct))
	for name := range r.direct {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsDirect reports whether name is a registered direct solver.
func (r *Registry) IsDirect(name string) bool {
	_, ok := r.direct[strings.ToLower(name)]
	return ok
}
