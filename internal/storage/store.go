package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/numlab/internal/config"
	"github.com/san-kum/numlab/internal/experiment"
	"github.com/san-kum/numlab/internal/linsys"
)

var (
	ErrEmptyOutcome = errors.New("storage: outcome has no states")
	ErrNoStates     = errors.New("storage: run has no states file")
	ErrNoColumn     = errors.New("storage: no such column")
)

const (
	metadataFile = "metadata.json"
	statesFile   = "states.csv"
	historyFile  = "history.json"
)

var rootHeader = []string{"k", "x", "x_prev", "fx", "abs_error", "error_ratio"}

type Store struct {
	baseDir string
	logger  *slog.Logger
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir, logger: slog.New(slog.DiscardHandler)}
}

func (s *Store) SetLogger(l *slog.Logger) {
	if l != nil {
		s.logger = l
	}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Kind      string             `json:"kind"`
	Method    string             `json:"method"`
	Problem   string             `json:"problem"`
	Timestamp time.Time          `json:"timestamp"`
	Converged bool               `json:"converged"`
	Steps     int                `json:"steps"`
	Params    map[string]float64 `json:"params"`
	Metrics   map[string]float64 `json:"metrics,omitempty"`
	Config    *config.Config     `json:"config"`
}

// Save writes metadata.json plus states.csv (iterative runs) or
// history.json (direct solves) into a new run directory.
func (s *Store) Save(out *experiment.Outcome) (string, error) {
	if out == nil || out.Steps() == 0 {
		return "", ErrEmptyOutcome
	}
	now := time.Now()
	cfg := out.Config
	runID := fmt.Sprintf("%s_%s_%d", cfg.Kind, out.Method(), now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Kind:      cfg.Kind,
		Method:    out.Method(),
		Problem:   problem(cfg),
		Timestamp: now,
		Converged: out.Converged(),
		Steps:     out.Steps(),
		Params:    params(cfg),
		Metrics:   finiteOnly(out.Metrics()),
		Config:    cfg,
	}
	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}

	var err error
	switch {
	case out.Root != nil:
		err = s.writeStates(runDir, rootHeader, len(out.Root.States), func(i int) []float64 {
			st := out.Root.States[i]
			return []float64{float64(st.K), st.X, st.XPrev, st.FX, st.AbsError, st.ErrorRatio}
		})
	case out.Iterative != nil:
		n := len(out.Iterative.States[0].X)
		header := []string{"k", "residual"}
		for i := 0; i < n; i++ {
			header = append(header, fmt.Sprintf("x%d", i))
		}
		err = s.writeStates(runDir, header, len(out.Iterative.States), func(i int) []float64 {
			st := out.Iterative.States[i]
			return append([]float64{float64(st.K), st.Residual}, st.X...)
		})
	case out.Direct != nil:
		err = writeJSON(filepath.Join(runDir, historyFile), out.Direct)
	}
	if err != nil {
		return "", err
	}

	s.logger.Debug("saved run", "id", runID, "dir", runDir, "steps", meta.Steps)
	return runID, nil
}

func (s *Store) writeStates(runDir string, header []string, n int, row func(int) []float64) error {
	f, err := os.Create(filepath.Join(runDir, statesFile))
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		vals := row(i)
		rec := make([]string, len(vals))
		for j, v := range vals {
			rec[j] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			s.logger.Debug("skipping run directory", "dir", entry.Name(), "error", err)
			continue
		}
		runs = append(runs, *meta)
	}

	sort.SliceStable(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadStates returns the header and rows of states.csv. Direct solves have
// no states file and yield ErrNoStates.
func (s *Store) LoadStates(runID string) ([]string, [][]float64, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, statesFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, fmt.Errorf("%w: %s", ErrNoStates, runID)
		}
		return nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("run %s: %w", runID, err)
	}
	if len(records) == 0 {
		return nil, [][]float64{}, nil
	}

	header := records[0]
	rows := make([][]float64, 0, len(records)-1)
	for i, record := range records[1:] {
		row := make([]float64, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("run %s row %d column %s: %w", runID, i+1, header[j], err)
			}
			row[j] = v
		}
		rows = append(rows, row)
	}
	return header, rows, nil
}

func (s *Store) LoadHistory(runID string) (*linsys.DirectSolution, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, historyFile))
	if err != nil {
		return nil, err
	}
	var sol linsys.DirectSolution
	if err := json.Unmarshal(data, &sol); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &sol, nil
}

// Column extracts one named column from LoadStates output.
func Column(header []string, rows [][]float64, name string) ([]float64, error) {
	idx := -1
	for i, h := range header {
		if h == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoColumn, name)
	}
	out := make([]float64, len(rows))
	for i, row := range rows {
		out[i] = row[idx]
	}
	return out, nil
}

func problem(cfg *config.Config) string {
	if cfg.Kind == config.KindLinear {
		return fmt.Sprintf("%dx%d system", len(cfg.Linear.A), len(cfg.Linear.A))
	}
	if cfg.Root.G != "" {
		return fmt.Sprintf("f(x)=%s, g(x)=%s", cfg.Root.F, cfg.Root.G)
	}
	return fmt.Sprintf("f(x)=%s", cfg.Root.F)
}

func params(cfg *config.Config) map[string]float64 {
	if cfg.Kind == config.KindLinear {
		return map[string]float64{
			"tol":      cfg.Linear.Tol,
			"max_iter": float64(cfg.Linear.MaxIter),
			"omega":    cfg.Linear.Omega,
		}
	}
	return map[string]float64{
		"x0":       cfg.Root.X0,
		"x1":       cfg.Root.X1,
		"tol":      cfg.Root.Tol,
		"max_iter": float64(cfg.Root.MaxIter),
	}
}

// encoding/json rejects NaN and Inf.
func finiteOnly(m map[string]float64) map[string]float64 {
	if m == nil {
		return nil
	}
	out := make(map[string]float64, len(m))
	for k, v := range m {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out[k] = v
		}
	}
	return out
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	return f.Close()
}
