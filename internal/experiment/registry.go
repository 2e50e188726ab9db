package experiment

import (
	"fmt"
	"sort"
	"strings"

	"github.com/san-kum/numlab/internal/linsys"
	"github.com/san-kum/numlab/internal/metrics"
	"github.com/san-kum/numlab/internal/rootfind"
	"github.com/san-kum/numlab/internal/runner"
)

// Registry resolves the method names used in problem files and on the
// command line.
type Registry struct {
	direct *linsys.Registry
}

func NewRegistry() *Registry {
	return &Registry{direct: linsys.NewRegistry()}
}

func (r *Registry) GetRootMethod(name string) (rootfind.Method, error) {
	return rootfind.ParseMethod(name)
}

func (r *Registry) GetDirect(name string) (linsys.DirectSolver, error) {
	return r.direct.GetDirect(name)
}

func (r *Registry) GetIterative(name string) (linsys.IterativeMethod, error) {
	return linsys.ParseIterative(name)
}

// IsDirect reports whether a linear method name names a direct solver.
func (r *Registry) IsDirect(name string) bool {
	return r.direct.IsDirect(name)
}

// CheckLinear reports an error when name is neither a direct nor an
// iterative solver.
func (r *Registry) CheckLinear(name string) error {
	if r.IsDirect(name) {
		return nil
	}
	if _, err := r.GetIterative(name); err != nil {
		return fmt.Errorf("%w: %s (available: %s)", linsys.ErrUnknownMethod, name, strings.Join(r.ListLinear(), ", "))
	}
	return nil
}

func (r *Registry) ListRoot() []string {
	return rootfind.Keys()
}

func (r *Registry) ListLinear() []string {
	names := r.direct.ListDirect()
	for _, m := range linsys.IterativeMethods() {
		names = append(names, m.String())
	}
	sort.Strings(names)
	return names
}

func (r *Registry) RootMetrics() []runner.Metric[rootfind.IterationState] {
	return metrics.DefaultRoot()
}

func (r *Registry) LinearMetrics() []runner.Metric[linsys.VectorIterationState] {
	return metrics.DefaultLinear()
}
