package runner

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Job is one independent run.
type Job[S any] struct {
	Stepper Stepper[S]
	Options Options[S]
}

// RunAll runs the jobs concurrently, at most limit at a time (limit <= 0
// means no limit). Results keep the order of jobs. Every stepper must be
// independent of the others.
func RunAll[S any](ctx context.Context, jobs []Job[S], limit int) ([]*Result[S], error) {
	results := make([]*Result[S], len(jobs))

	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, job := range jobs {
		g.Go(func() error {
			res, err := Run(ctx, job.Stepper, job.Options)
			results[i] = res
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
