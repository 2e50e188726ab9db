package main

import (
	"errors"
	"fmt"
	"math"
	"os"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/numlab/internal/automation"
	"github.com/san-kum/numlab/internal/config"
	"github.com/san-kum/numlab/internal/experiment"
	"github.com/san-kum/numlab/internal/export"
	"github.com/san-kum/numlab/internal/optim"
	"github.com/san-kum/numlab/internal/rootfind"
	"github.com/san-kum/numlab/internal/runner"
	"github.com/san-kum/numlab/internal/storage"
	"github.com/san-kum/numlab/internal/viz"
)

func runRoot(cmd *cobra.Command, args []string) error {
	cfg, err := loadProblem(cmd, config.KindRoot, args)
	if err != nil {
		return err
	}
	out, runErr := runExperiment(cmd, cfg)
	if out == nil {
		return runErr
	}

	fmt.Printf("%s\n%s\n", out.Method(), out.Equation)
	fmt.Println(viz.RenderRootTable(out.Root.States, 0))
	printRootSummary(out)
	if runErr != nil {
		return runErr
	}

	if plotPath != "" {
		if err := export.FunctionPlot(plotPath, out.Equation, out.Points); err != nil {
			return err
		}
		fmt.Printf("plot written to %s\n", plotPath)
	}
	return finishRun(out)
}

func printRootSummary(out *experiment.Outcome) {
	last := out.Root.Last()
	switch out.Root.Reason {
	case runner.StopConverged:
		fmt.Printf("converged after %d iterations: x = %.15g, f(x) = %.3g\n", last.K, last.X, last.FX)
	case runner.StopDiverged:
		fmt.Printf("diverged at iteration %d (x is not finite)\n", last.K)
	default:
		fmt.Printf("stopped after %d iterations (%s): x = %.15g\n", last.K, out.Root.Reason, last.X)
	}
	printMetrics(out.Metrics())
}

func runLinear(cmd *cobra.Command, args []string) error {
	cfg, err := loadProblem(cmd, config.KindLinear, args)
	if err != nil {
		return err
	}
	registry := experiment.NewRegistry()
	if err := registry.CheckLinear(cfg.Linear.Method); err != nil {
		return err
	}
	if !registry.IsDirect(cfg.Linear.Method) && !isDominant(cfg) {
		logger.Warn("matrix is not diagonally dominant; the iteration may not converge", "method", cfg.Linear.Method)
	}

	out, runErr := runExperiment(cmd, cfg)
	if out == nil {
		return runErr
	}

	switch {
	case out.Direct != nil:
		for _, ms := range out.Direct.History {
			fmt.Println(viz.RenderMatrixState(ms))
		}
		fmt.Println(viz.RenderDirectSummary(out.Direct))
	case out.Iterative != nil:
		fmt.Println(viz.RenderLinearTable(out.Iterative.States, 0))
		res := make([]float64, len(out.Iterative.States))
		for i, st := range out.Iterative.States {
			res[i] = st.Residual
		}
		fmt.Println(viz.Chart(res, "residual", 60, 8))
		fmt.Printf("%s after %d sweeps\n", out.Iterative.Reason, len(out.Iterative.States)-1)
		printMetrics(out.Metrics())
	default:
		return runErr
	}
	if runErr != nil {
		return runErr
	}

	if verify {
		check, err := out.Verify()
		if err != nil {
			return err
		}
		fmt.Printf("reference: %v\nmax |x - x_ref| = %.3g, residual = %.3g, cond = %.3g\n",
			check.Reference, check.MaxDiff, check.Residual, check.Condition)
	}
	return finishRun(out)
}

func isDominant(cfg *config.Config) bool {
	a, _, _ := cfg.Linear.System()
	return a.IsDiagonallyDominant()
}

func runExperiment(cmd *cobra.Command, cfg *config.Config) (*experiment.Outcome, error) {
	exp, err := experiment.New(cfg, experiment.NewRegistry())
	if err != nil {
		return nil, err
	}
	exp.SetLogger(logger)

	start := time.Now()
	out, err := exp.Run(cmd.Context())
	logger.Info("run finished", "problem", cfg.Name(), "elapsed", time.Since(start), "error", err)
	return out, err
}

// finishRun stores the run and writes the JSON export when requested.
func finishRun(out *experiment.Outcome) error {
	if jsonPath != "" {
		if err := export.WriteJSONFile(jsonPath, out); err != nil {
			return err
		}
	}
	if noSave {
		return nil
	}
	st := storage.New(dataDir)
	st.SetLogger(logger)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(out)
	if err != nil {
		return err
	}
	fmt.Printf("run id: %s\n", runID)
	return nil
}

func printMetrics(m map[string]float64) {
	if len(m) == 0 {
		return
	}
	fmt.Println("metrics:")
	for _, name := range []string{"iterations", "final_error", "residual", "order", "stability", "contraction"} {
		if v, ok := m[name]; ok {
			fmt.Printf("  %s: %.6g\n", name, v)
		}
	}
}

func compareMethods(cmd *cobra.Command, args []string) error {
	cfg, err := loadProblem(cmd, config.KindRoot, args)
	if err != nil {
		return err
	}
	registry := experiment.NewRegistry()

	names := methods
	if len(names) == 0 {
		for _, m := range rootfind.Methods() {
			if !m.RequiresG() || cfg.Root.G != "" {
				names = append(names, m.Key())
			}
		}
	}

	jobs := make([]runner.Job[rootfind.IterationState], 0, len(names))
	for _, name := range names {
		run := cfg.Clone()
		run.Root.Method = name
		exp, err := experiment.New(run, registry)
		if err != nil {
			return err
		}
		it, err := exp.RootIterator()
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		jobs = append(jobs, runner.Job[rootfind.IterationState]{
			Stepper: it,
			Options: runner.Options[rootfind.IterationState]{
				Label:     it.Method().Key(),
				Converged: func(st rootfind.IterationState) bool { return st.Converged(run.Root.Tol) },
				Diverged:  func(st rootfind.IterationState) bool { return math.IsNaN(st.X) || math.IsInf(st.X, 0) },
				Metrics:   registry.RootMetrics(),
				Logger:    logger,
			},
		})
	}

	results, err := runner.RunAll(cmd.Context(), jobs, 0)
	if err != nil {
		return err
	}

	fmt.Printf("f(x) = %s, x0 = %g\n\n", cfg.Root.F, cfg.Root.X0)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METHOD\tSTATUS\tITER\tROOT\tLAST STEP\tORDER")
	series := make([]export.Series, 0, len(results))
	for _, res := range results {
		last := res.Last()
		fmt.Fprintf(w, "%s\t%s\t%.0f\t%.12g\t%.3g\t%.2f\n",
			res.Label, res.Reason, res.Metrics["iterations"], last.X, res.Metrics["final_error"], res.Metrics["order"])

		errs := make([]float64, len(res.States))
		for i, st := range res.States {
			errs[i] = st.AbsError
		}
		series = append(series, export.Series{Name: res.Label, Values: errs})
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if plotPath != "" {
		if err := export.ConvergencePlot(plotPath, "f(x) = "+cfg.Root.F, series); err != nil {
			return err
		}
		fmt.Printf("\nplot written to %s\n", plotPath)
	}
	return nil
}

func listMethods(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ROOT METHOD\tNAME\tPOINTS\tNEEDS g(x)")
	for _, m := range rootfind.Methods() {
		fmt.Fprintf(w, "%s\t%s\t%d\t%v\n", m.Key(), m, m.Points(), m.RequiresG())
	}
	if err := w.Flush(); err != nil {
		return err
	}

	registry := experiment.NewRegistry()
	fmt.Println("\nlinear methods:")
	for _, name := range registry.ListLinear() {
		kind := "iterative"
		if registry.IsDirect(name) {
			kind = "direct"
		}
		fmt.Printf("  %-14s %s\n", name, kind)
	}
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	kind := ""
	if len(args) > 0 {
		kind = args[0]
	}
	names := config.ListPresets(kind)
	if len(names) == 0 {
		fmt.Printf("no presets for kind: %s\n", kind)
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tKIND\tPROBLEM")
	for _, name := range names {
		cfg := config.Presets[name]
		fmt.Fprintf(w, "%s\t%s\t%s\n", name, cfg.Kind, cfg.Name())
	}
	return w.Flush()
}

func runAnimate(cmd *cobra.Command, args []string) error {
	cfg, err := loadProblem(cmd, "", args)
	if err != nil {
		return err
	}
	registry := experiment.NewRegistry()
	exp, err := experiment.New(cfg, registry)
	if err != nil {
		return err
	}

	var src viz.Source
	switch {
	case cfg.Kind == config.KindRoot:
		it, err := exp.RootIterator()
		if err != nil {
			return err
		}
		src = viz.NewRootSource(it, cfg.Root.Tol)
	case registry.IsDirect(cfg.Linear.Method):
		solver, err := registry.GetDirect(cfg.Linear.Method)
		if err != nil {
			return err
		}
		a, b, _ := cfg.Linear.System()
		sol, err := solver.Solve(a, b)
		if sol == nil {
			return err
		}
		src = viz.NewDirectSource(sol)
	default:
		it, err := exp.LinearIterator()
		if err != nil {
			return err
		}
		src = viz.NewLinearSource(it)
	}

	p := tea.NewProgram(viz.NewStepper(src, time.Duration(interval)*time.Millisecond), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	final, err := p.Run()
	if err != nil {
		return err
	}
	if m, ok := final.(viz.Stepper); ok && m.Err() != nil {
		return m.Err()
	}
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadProblem(cmd, config.KindLinear, args)
	if err != nil {
		return err
	}
	a, b, xInit := cfg.Linear.System()
	res, err := optim.SweepOmega(cmd.Context(), a, b, xInit, cfg.Linear.IterConfig(), optim.Grid(gridLo, gridHi, gridN))
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "OMEGA\tSWEEPS\tRESIDUAL\tCONVERGED")
	sweeps := make([]float64, len(res.Points))
	for i, p := range res.Points {
		fmt.Fprintf(w, "%.4f\t%d\t%.3g\t%v\n", p.Omega, p.Iterations, p.Residual, p.Converged)
		sweeps[i] = float64(p.Iterations)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(asciigraph.Plot(sweeps, asciigraph.Height(10), asciigraph.Width(60), asciigraph.Caption("sweeps per omega")))
	if res.Found {
		fmt.Printf("\nbest omega = %.4f (%d sweeps)\n", res.Best.Omega, res.Best.Iterations)
	} else {
		fmt.Printf("\nno omega reached tol %g; smallest residual %.3g at omega = %.4f\n", cfg.Linear.Tol, res.Best.Residual, res.Best.Omega)
	}
	return nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	sc, err := config.LoadScenario(args[0])
	if err != nil {
		return err
	}
	reports, err := automation.RunScenario(cmd.Context(), sc, experiment.NewRegistry(), logger)
	if err != nil {
		return err
	}

	var st *storage.Store
	if !noSave {
		st = storage.New(dataDir)
		st.SetLogger(logger)
		if err := st.Init(); err != nil {
			return err
		}
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tPROBLEM\tSTATUS\tSTEPS\tRUN ID")
	for _, r := range reports {
		status, steps, runID := "converged", 0, "-"
		if r.Outcome != nil {
			steps = r.Outcome.Steps()
			if !r.Outcome.Converged() {
				status = "not converged"
			}
			if st != nil && steps > 0 {
				if id, err := st.Save(r.Outcome); err == nil {
					runID = id
				} else {
					logger.Warn("save failed", "run", r.Index+1, "error", err)
				}
			}
		}
		if r.Err != nil {
			status = r.Err.Error()
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\n", r.Index+1, r.Name, status, steps, runID)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if n := automation.Failed(reports); n > 0 {
		fmt.Printf("\n%d of %d runs failed\n", n, len(reports))
	}
	return nil
}

func runMultiStart(cmd *cobra.Command, args []string) error {
	cfg, err := loadProblem(cmd, config.KindRoot, args)
	if err != nil {
		return err
	}
	results, err := automation.RunMultiStart(cmd.Context(), cfg, experiment.NewRegistry(), automation.MultiStartConfig{
		Lo:     gridLo,
		Hi:     gridHi,
		Trials: trials,
		Seed:   seed,
	})
	if err != nil {
		return err
	}

	converged := 0
	for _, r := range results {
		if r.Converged {
			converged++
		}
	}
	fmt.Printf("%s on f(x) = %s: %d of %d starts in [%g, %g] converged\n\n",
		cfg.Root.Method, cfg.Root.F, converged, len(results), gridLo, gridHi)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ROOT\tSTARTS")
	for _, b := range automation.Basins(results, math.Max(cfg.Root.Tol*100, 1e-8)) {
		fmt.Fprintf(w, "%.12g\t%d\n", b.Root, b.Count)
	}
	return w.Flush()
}

func runTune(cmd *cobra.Command, args []string) error {
	cfg, err := loadProblem(cmd, "", args)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(paramRanges))
	ranges := make([][]float64, 0, len(paramRanges))
	points := 1
	for _, text := range paramRanges {
		name, values, err := optim.ParseRange(text)
		if err != nil {
			return err
		}
		names = append(names, name)
		ranges = append(ranges, values)
		points *= len(values)
	}
	logger.Info("tuning", "problem", cfg.Name(), "params", names, "points", points)

	res, err := optim.Tune(cmd.Context(), cfg, experiment.NewRegistry(), names, ranges, metricName)
	if err != nil {
		return err
	}
	fmt.Printf("%s: %d grid points\n", cfg.Name(), points)
	if !res.Found {
		fmt.Println("no grid point converged")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PARAM\tBEST")
	for _, name := range names {
		fmt.Fprintf(w, "%s\t%.6g\n", name, res.Params[name])
	}
	fmt.Fprintf(w, "%s\t%.6g\n", metricName, res.Value)
	return w.Flush()
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	st.SetLogger(logger)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKIND\tMETHOD\tPROBLEM\tTIME\tSTEPS\tCONVERGED")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%v\n",
			run.ID,
			run.Kind,
			run.Method,
			run.Problem,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Steps,
			run.Converged,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	fmt.Printf("run: %s\nmethod: %s\nproblem: %s\n\n", meta.ID, meta.Method, meta.Problem)

	values, caption, err := errorSeries(st, meta)
	if errors.Is(err, storage.ErrNoStates) {
		sol, herr := st.LoadHistory(runID)
		if herr != nil {
			return herr
		}
		fmt.Println(viz.RenderMatrixState(sol.Final()))
		fmt.Println(viz.RenderDirectSummary(sol))
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Println(viz.Chart(values, caption, 80, 10))
	return nil
}

// errorSeries loads the per-step error of a stored iterative run.
func errorSeries(st *storage.Store, meta *storage.RunMetadata) ([]float64, string, error) {
	header, rows, err := st.LoadStates(meta.ID)
	if err != nil {
		return nil, "", err
	}
	column := "abs_error"
	if meta.Kind == config.KindLinear {
		column = "residual"
	}
	values, err := storage.Column(header, rows, column)
	return values, column, err
}

// rerun repeats a stored run from its recorded problem. Runs are
// deterministic, so this reproduces the stored states.
func rerun(cmd *cobra.Command, runID string) (*experiment.Outcome, error) {
	meta, err := storage.New(dataDir).Load(runID)
	if err != nil {
		return nil, err
	}
	if meta.Config == nil {
		return nil, fmt.Errorf("%w: run %s has no stored problem", config.ErrInvalid, runID)
	}
	out, err := runExperiment(cmd, meta.Config)
	if out == nil {
		return nil, err
	}
	return out, nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	out, err := rerun(cmd, args[0])
	if err != nil {
		return err
	}
	path := "-"
	if len(args) > 1 {
		path = args[1]
	}
	if err := export.WriteJSONFile(path, out); err != nil {
		return err
	}
	if path != "-" {
		fmt.Printf("exported to %s\n", path)
	}
	return nil
}

func exportPlot(cmd *cobra.Command, args []string) error {
	runID, path := args[0], args[1]

	if withCurve {
		out, err := rerun(cmd, runID)
		if err != nil {
			return err
		}
		if out.Equation == nil {
			return fmt.Errorf("%w: --function needs a root-finding run", config.ErrInvalid)
		}
		if err := export.FunctionPlot(path, out.Equation, out.Points); err != nil {
			return err
		}
	} else {
		st := storage.New(dataDir)
		meta, err := st.Load(runID)
		if err != nil {
			return err
		}
		values, _, err := errorSeries(st, meta)
		if err != nil {
			return err
		}
		if err := export.ConvergencePlot(path, meta.Problem, []export.Series{{Name: meta.Method, Values: values}}); err != nil {
			return err
		}
	}
	fmt.Printf("plot written to %s\n", path)
	return nil
}
