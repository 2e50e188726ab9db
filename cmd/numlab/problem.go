package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/san-kum/numlab/internal/config"
)

// loadProblem builds the problem from, in increasing priority, the
// defaults, a preset, a problem file and explicitly set flags. An empty
// kind accepts whatever the preset or file describes.
func loadProblem(cmd *cobra.Command, kind string, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if kind != "" {
		cfg.Kind = kind
	}
	if preset != "" {
		p, err := config.GetPreset(preset)
		if err != nil {
			return nil, err
		}
		cfg = p
	}
	if configFile != "" {
		c, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = c
	}
	if kind == "" && preset == "" && configFile == "" && matrixSpec != "" {
		cfg.Kind = config.KindLinear
	}
	if kind != "" && cfg.Kind != kind {
		return nil, fmt.Errorf("%w: expected a %s problem, got %s", config.ErrInvalid, kind, cfg.Kind)
	}

	var err error
	if cfg.Kind == config.KindLinear {
		err = applyLinearFlags(cmd, cfg)
	} else {
		applyRootFlags(cmd, cfg, args)
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyRootFlags(cmd *cobra.Command, cfg *config.Config, args []string) {
	rc := &cfg.Root
	if len(args) > 0 {
		rc.F = args[0]
	}
	flags := cmd.Flags()
	if flags.Changed("g") {
		rc.G = gSource
	}
	if flags.Changed("method") {
		rc.Method = method
	}
	if flags.Changed("x0") {
		rc.X0 = x0
	}
	if flags.Changed("x1") {
		rc.X1 = x1
	} else if preset == "" && configFile == "" {
		rc.X1 = rc.X0 + 1
	}
	if flags.Changed("tol") {
		rc.Tol = tol
	}
	if flags.Changed("max-iter") {
		rc.MaxIter = maxIter
	}
	if flags.Changed("update-interval") {
		rc.UpdateInterval = updateInterval
	}
	if flags.Changed("damping-tries") {
		rc.DampingTries = dampingTries
	}
}

func applyLinearFlags(cmd *cobra.Command, cfg *config.Config) error {
	lc := &cfg.Linear
	flags := cmd.Flags()
	if matrixSpec != "" {
		a, err := parseMatrix(matrixSpec)
		if err != nil {
			return err
		}
		lc.A = a
	}
	if flags.Changed("b") {
		lc.B = bVec
	}
	vecFlag := "x0"
	if flags.Lookup("x0-vec") != nil {
		vecFlag = "x0-vec"
	}
	if flags.Changed(vecFlag) {
		lc.X0 = x0Vec
	}
	if flags.Changed("method") {
		lc.Method = method
	}
	if flags.Changed("tol") {
		lc.Tol = tol
	}
	if flags.Changed("max-iter") {
		lc.MaxIter = maxIter
	}
	if flags.Changed("omega") {
		lc.Omega = omega
	}
	return nil
}

// parseMatrix reads rows separated by ";" with entries separated by commas
// or spaces.
func parseMatrix(text string) ([][]float64, error) {
	var rows [][]float64
	for i, line := range strings.Split(text, ";") {
		fields := strings.FieldsFunc(line, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' })
		if len(fields) == 0 {
			continue
		}
		row := make([]float64, len(fields))
		for j, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: matrix row %d entry %d: %v", config.ErrInvalid, i, j, err)
			}
			row[j] = v
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: empty matrix", config.ErrInvalid)
	}
	return rows, nil
}
