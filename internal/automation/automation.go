package automation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"sort"

	"github.com/san-kum/numlab/internal/config"
	"github.com/san-kum/numlab/internal/experiment"
)

// Report is the result of one scenario run. Err is set when the run could
// not be built or stopped with an error; Outcome may still hold partial
// states.
type Report struct {
	Index   int
	Name    string
	Outcome *experiment.Outcome
	Err     error
}

// RunScenario executes every run of a scenario in order. A failing run is
// recorded and the batch continues; only cancellation stops it early.
func RunScenario(ctx context.Context, scenario *config.Scenario, registry *experiment.Registry, logger *slog.Logger) ([]Report, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if registry == nil {
		registry = experiment.NewRegistry()
	}
	reports := make([]Report, 0, len(scenario.Runs))

	for i, cfg := range scenario.Runs {
		if err := ctx.Err(); err != nil {
			return reports, err
		}
		name := fmt.Sprintf("%d/%d %s", i+1, len(scenario.Runs), cfg.Name())
		logger.Info("running", "scenario", scenario.Name, "run", name)

		report := Report{Index: i, Name: cfg.Name()}
		exp, err := experiment.New(cfg, registry)
		if err == nil {
			exp.SetLogger(logger.With("run", i+1))
			report.Outcome, err = exp.Run(ctx)
		}
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				reports = append(reports, report)
				return reports, err
			}
			report.Err = fmt.Errorf("run %d: %w", i+1, err)
			logger.Warn("run failed", "run", name, "error", err)
		}
		reports = append(reports, report)
	}

	return reports, nil
}

// Failed counts reports carrying an error.
func Failed(reports []Report) int {
	n := 0
	for _, r := range reports {
		if r.Err != nil {
			n++
		}
	}
	return n
}

// MultiStartConfig drives one root problem from many random starting
// points.
type MultiStartConfig struct {
	Lo, Hi float64
	Trials int
	Seed   uint64
}

type StartResult struct {
	X0        float64
	Root      float64
	Converged bool
	Steps     int
}

// Basin is a distinct root and how many starts reached it.
type Basin struct {
	Root  float64
	Count int
}

// RunMultiStart runs cfg once per random x0 in [Lo, Hi]. For two-point
// methods x1 is kept at the same offset from x0 as in cfg.
func RunMultiStart(ctx context.Context, cfg *config.Config, registry *experiment.Registry, mc MultiStartConfig) ([]StartResult, error) {
	if cfg == nil || cfg.Kind != config.KindRoot {
		return nil, fmt.Errorf("%w: multi-start needs a root problem", config.ErrInvalid)
	}
	if mc.Trials <= 0 || !(mc.Hi > mc.Lo) {
		return nil, fmt.Errorf("%w: need trials > 0 and hi > lo", config.ErrInvalid)
	}
	rng := rand.New(rand.NewPCG(mc.Seed, mc.Seed^0x9e3779b97f4a7c15))
	offset := cfg.Root.X1 - cfg.Root.X0

	results := make([]StartResult, 0, mc.Trials)
	for trial := 0; trial < mc.Trials; trial++ {
		run := cfg.Clone()
		run.Root.X0 = mc.Lo + rng.Float64()*(mc.Hi-mc.Lo)
		run.Root.X1 = run.Root.X0 + offset

		exp, err := experiment.New(run, registry)
		if err != nil {
			return results, err
		}
		out, err := exp.Run(ctx)
		if err != nil {
			return results, err
		}
		results = append(results, StartResult{
			X0:        run.Root.X0,
			Root:      out.RootEstimate(),
			Converged: out.Converged(),
			Steps:     out.Steps(),
		})
	}
	return results, nil
}

// Basins groups converged starts by the root they reached, sorted by root.
func Basins(results []StartResult, merge float64) []Basin {
	if merge <= 0 {
		merge = 1e-6
	}
	var basins []Basin
	for _, r := range results {
		if !r.Converged || math.IsNaN(r.Root) {
			continue
		}
		found := false
		for i := range basins {
			if math.Abs(basins[i].Root-r.Root) <= merge {
				basins[i].Count++
				found = true
				break
			}
		}
		if !found {
			basins = append(basins, Basin{Root: r.Root, Count: 1})
		}
	}
	sort.Slice(basins, func(i, j int) bool { return basins[i].Root < basins[j].Root })
	return basins
}
