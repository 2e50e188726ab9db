package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/san-kum/numlab/internal/logs"
)

var (
	dataDir  string
	logLevel string
	logJSON  string
	journal  bool

	logger   *slog.Logger
	closeLog = func() error { return nil }

	// problem selection
	configFile string
	preset     string

	// root finding
	gSource        string
	method         string
	x0             float64
	x1             float64
	tol            float64
	maxIter        int
	updateInterval int
	dampingTries   int

	// linear systems
	matrixSpec string
	bVec       []float64
	x0Vec      []float64
	omega      float64
	verify     bool

	// output
	noSave    bool
	plotPath  string
	jsonPath  string
	methods   []string
	interval  int
	gridLo    float64
	gridHi    float64
	gridN     int
	trials    int
	seed      uint64
	withCurve bool

	// tuning
	paramRanges []string
	metricName  string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "numlab",
		Short:         "root-finding and linear-system lab",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, closer, err := logs.New(logs.Options{
				Level:    logLevel,
				JSONFile: logJSON,
				Journal:  journal,
			})
			if err != nil {
				return err
			}
			logger, closeLog = l, closer
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return closeLog()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".numlab", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logJSON, "log-json", "", "also write JSON logs to this file")
	rootCmd.PersistentFlags().BoolVar(&journal, "journal", false, "also log to the systemd journal")

	rootFindCmd := &cobra.Command{
		Use:   "root [f(x)]",
		Short: "find a root of f(x) = 0",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runRoot,
	}
	addRootFlags(rootFindCmd)
	rootFindCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	rootFindCmd.Flags().StringVar(&plotPath, "plot", "", "write f(x) with the iterates to an image (png, svg, pdf)")
	rootFindCmd.Flags().StringVar(&jsonPath, "json", "", "write the run as JSON (- for stdout)")

	linearCmd := &cobra.Command{
		Use:   "linear",
		Short: "solve A x = b with a direct or iterative method",
		Args:  cobra.NoArgs,
		RunE:  runLinear,
	}
	addLinearFlags(linearCmd)
	linearCmd.Flags().BoolVar(&verify, "verify", false, "compare the solution with the reference LU solver")
	linearCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	linearCmd.Flags().StringVar(&jsonPath, "json", "", "write the run as JSON (- for stdout)")

	compareCmd := &cobra.Command{
		Use:   "compare [f(x)]",
		Short: "run several root-finding methods on one equation",
		Args:  cobra.MaximumNArgs(1),
		RunE:  compareMethods,
	}
	addRootFlags(compareCmd)
	compareCmd.Flags().StringSliceVar(&methods, "methods", nil, "methods to compare (default: every method the equation supports)")
	compareCmd.Flags().StringVar(&plotPath, "plot", "", "write a convergence plot to an image")

	methodsCmd := &cobra.Command{
		Use:   "methods",
		Short: "list available methods",
		Args:  cobra.NoArgs,
		RunE:  listMethods,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [root|linear]",
		Short: "list available presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	animateCmd := &cobra.Command{
		Use:   "animate [f(x)]",
		Short: "step through a run in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runAnimate,
	}
	addRootFlags(animateCmd)
	animateCmd.Flags().StringVar(&matrixSpec, "a", "", `matrix rows separated by ";" (switches to a linear problem)`)
	animateCmd.Flags().Float64SliceVar(&bVec, "b", nil, "right-hand side")
	animateCmd.Flags().Float64SliceVar(&x0Vec, "x0-vec", nil, "initial guess for iterative solvers")
	animateCmd.Flags().Float64Var(&omega, "omega", 1.2, "relaxation factor (sor)")
	animateCmd.Flags().IntVar(&interval, "interval", 400, "milliseconds per step")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "find the SOR relaxation factor needing the fewest sweeps",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addLinearFlags(sweepCmd)
	sweepCmd.Flags().Float64Var(&gridLo, "lo", 0.1, "smallest omega")
	sweepCmd.Flags().Float64Var(&gridHi, "hi", 1.9, "largest omega")
	sweepCmd.Flags().IntVar(&gridN, "n", 19, "number of omega values")

	batchCmd := &cobra.Command{
		Use:   "batch [scenario]",
		Short: "run every problem of a scenario file",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}
	batchCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the runs")

	multiStartCmd := &cobra.Command{
		Use:   "multistart [f(x)]",
		Short: "run a root method from random starting points and group the roots found",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runMultiStart,
	}
	addRootFlags(multiStartCmd)
	multiStartCmd.Flags().Float64Var(&gridLo, "lo", -10, "smallest starting point")
	multiStartCmd.Flags().Float64Var(&gridHi, "hi", 10, "largest starting point")
	multiStartCmd.Flags().IntVar(&trials, "trials", 100, "number of starting points")
	multiStartCmd.Flags().Uint64Var(&seed, "seed", 1, "random seed")

	tuneCmd := &cobra.Command{
		Use:   "tune [f(x)]",
		Short: "grid-search problem parameters for the fewest iterations",
		Long: `Runs the problem once per combination of --param values and reports the
converged run with the smallest --metric. Ranges are name=lo:hi:n or
name=v1,v2,... (root: x0, x1, tol, max_iter, update_interval, damping_tries;
linear: omega, tol, max_iter).`,
		Args: cobra.MaximumNArgs(1),
		RunE: runTune,
	}
	addRootFlags(tuneCmd)
	tuneCmd.Flags().StringVar(&matrixSpec, "a", "", `matrix rows separated by ";" (switches to a linear problem)`)
	tuneCmd.Flags().Float64SliceVar(&bVec, "b", nil, "right-hand side")
	tuneCmd.Flags().Float64SliceVar(&x0Vec, "x0-vec", nil, "initial guess for iterative solvers")
	tuneCmd.Flags().Float64Var(&omega, "omega", 1.2, "relaxation factor (sor)")
	tuneCmd.Flags().StringArrayVar(&paramRanges, "param", nil, "parameter range, repeatable (e.g. omega=0.5:1.9:15)")
	tuneCmd.Flags().StringVar(&metricName, "metric", "iterations", "metric to minimise")
	_ = tuneCmd.MarkFlagRequired("param")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "chart the error of a stored run in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id] [file]",
		Short: "export a stored run as JSON",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  exportJSON,
	}

	exportPlotCmd := &cobra.Command{
		Use:   "export-plot [run_id] [file]",
		Short: "export a convergence plot of a stored run",
		Args:  cobra.ExactArgs(2),
		RunE:  exportPlot,
	}
	exportPlotCmd.Flags().BoolVar(&withCurve, "function", false, "plot f(x) with the iterates instead (root runs)")

	rootCmd.AddCommand(rootFindCmd, linearCmd, compareCmd, methodsCmd, presetsCmd, animateCmd, sweepCmd, batchCmd, multiStartCmd, tuneCmd, listCmd, plotCmd, exportJSONCmd, exportPlotCmd)
	return rootCmd
}

func addProblemFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "problem file (yaml or cue)")
	cmd.Flags().StringVar(&preset, "preset", "", "use a named preset")
	cmd.Flags().StringVar(&method, "method", "", "solution method")
}

func addRootFlags(cmd *cobra.Command) {
	addProblemFlags(cmd)
	cmd.Flags().StringVar(&gSource, "g", "", "iteration function g(x) for x = g(x) methods")
	cmd.Flags().Float64Var(&x0, "x0", 1, "initial point")
	cmd.Flags().Float64Var(&x1, "x1", 0, "second initial point for secant methods (default x0+1)")
	cmd.Flags().Float64Var(&tol, "tol", 1e-10, "stop once a step moves by at most tol")
	cmd.Flags().IntVar(&maxIter, "max-iter", 50, "maximum iterations")
	cmd.Flags().IntVar(&updateInterval, "update-interval", 1, "slope refresh interval (modified-secant)")
	cmd.Flags().IntVar(&dampingTries, "damping-tries", 10, "step halvings (damped-newton)")
}

func addLinearFlags(cmd *cobra.Command) {
	addProblemFlags(cmd)
	cmd.Flags().StringVar(&matrixSpec, "a", "", `matrix rows separated by ";", e.g. "4,1;1,3"`)
	cmd.Flags().Float64SliceVar(&bVec, "b", nil, "right-hand side")
	cmd.Flags().Float64SliceVar(&x0Vec, "x0", nil, "initial guess for iterative solvers")
	cmd.Flags().Float64Var(&tol, "tol", 1e-6, "residual tolerance (iterative)")
	cmd.Flags().IntVar(&maxIter, "max-iter", 100, "maximum sweeps (iterative)")
	cmd.Flags().Float64Var(&omega, "omega", 1.2, "relaxation factor (sor)")
}
