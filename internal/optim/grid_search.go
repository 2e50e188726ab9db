package optim

import (
	"context"
	"maps"
	"math"

	"github.com/san-kum/numlab/internal/experiment"
)

// GridSearch tries every combination of parameter values and keeps the one
// minimising a metric of the experiment outcome.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64

	// RequireConverged skips points whose run did not converge.
	RequireConverged bool
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Search builds and runs one experiment per grid point. Points whose
// experiment fails to build or run, or whose metric is NaN, are skipped.
// The best value is +Inf when no point produced a value.
func (g *GridSearch) Search(
	ctx context.Context,
	buildExperiment func(params map[string]float64) (*experiment.Experiment, error),
	metricName string,
) (map[string]float64, float64, error) {
	best := math.Inf(1)
	var bestParams map[string]float64

	err := g.searchRecursive(ctx, 0, make(map[string]float64), buildExperiment, metricName, &best, &bestParams)
	return bestParams, best, err
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	buildExperiment func(map[string]float64) (*experiment.Experiment, error),
	metricName string,
	best *float64,
	bestParams *map[string]float64,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if depth == len(g.paramNames) {
		exp, err := buildExperiment(current)
		if err != nil {
			return nil
		}

		out, err := exp.Run(ctx)
		if err != nil || out == nil {
			return nil
		}
		if g.RequireConverged && !out.Converged() {
			return nil
		}

		val, ok := out.Metrics()[metricName]
		if ok && val < *best {
			*best = val
			*bestParams = maps.Clone(current)
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := maps.Clone(current)
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, buildExperiment, metricName, best, bestParams); err != nil {
			return err
		}
	}
	return nil
}
