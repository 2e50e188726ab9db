package export

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/san-kum/numlab/internal/equation"
	"github.com/san-kum/numlab/internal/rootfind"
)

var (
	ErrFormat  = errors.New("export: unsupported image format")
	ErrNoData  = errors.New("export: nothing to plot")
	plotWidth  = 6 * vg.Inch
	plotHeight = 4 * vg.Inch
	samples    = 400
)

// Series is one curve of a convergence plot; Values[k] belongs to step k.
type Series struct {
	Name   string
	Values []float64
}

// ConvergencePlot draws each series against the step index on a log y
// axis. Non-positive and non-finite values are left out.
func ConvergencePlot(path, title string, series []Series) error {
	if err := checkFormat(path); err != nil {
		return err
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "k"
	p.Y.Label.Text = "error"
	p.Y.Scale = plot.LogScale{}
	p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
	p.Add(plotter.NewGrid())

	drawn := 0
	lo, hi := math.Inf(1), math.Inf(-1)
	for i, s := range series {
		pts := make(plotter.XYs, 0, len(s.Values))
		for k, v := range s.Values {
			if v > 0 && !math.IsInf(v, 0) {
				pts = append(pts, plotter.XY{X: float64(k), Y: v})
				lo, hi = math.Min(lo, v), math.Max(hi, v)
			}
		}
		if len(pts) == 0 {
			continue
		}
		line, points, err := plotter.NewLinePoints(pts)
		if err != nil {
			return fmt.Errorf("series %s: %w", s.Name, err)
		}
		line.Color = plotutil.Color(i)
		points.Color = plotutil.Color(i)
		points.Shape = plotutil.Shape(i)
		p.Add(line, points)
		p.Legend.Add(s.Name, line, points)
		drawn++
	}
	if drawn == 0 {
		return ErrNoData
	}
	p.Legend.Top = true
	// a flat log axis would be widened below zero
	if lo == hi {
		p.Y.Min, p.Y.Max = lo/10, hi*10
	}

	return p.Save(plotWidth, plotHeight, path)
}

// FunctionPlot draws f (and g when set) over the window rootfind.Bounds
// picks for the iterates, the x axis, and the iterates on f.
func FunctionPlot(path string, eq *equation.Equation, points []float64) error {
	if err := checkFormat(path); err != nil {
		return err
	}
	if eq == nil {
		return ErrNoData
	}
	win := rootfind.Bounds(eq, points)

	p := plot.New()
	f, g := eq.Source()
	p.Title.Text = "f(x) = " + f
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"
	p.Add(plotter.NewGrid())

	axis, err := plotter.NewLine(plotter.XYs{{X: win.XMin, Y: 0}, {X: win.XMax, Y: 0}})
	if err != nil {
		return err
	}
	axis.Color = color.Gray{Y: 128}
	axis.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
	p.Add(axis)

	if err := addCurve(p, "f(x)", eq.F, win, 0); err != nil {
		return err
	}
	if eq.HasG() {
		if err := addCurve(p, "g(x) = "+g, eq.G, win, 1); err != nil {
			return err
		}
	}

	iterates := make(plotter.XYs, 0, len(points))
	for _, x := range points {
		y := eq.F(x)
		if inWindow(x, y, win) {
			iterates = append(iterates, plotter.XY{X: x, Y: y})
		}
	}
	if len(iterates) > 0 {
		sc, err := plotter.NewScatter(iterates)
		if err != nil {
			return err
		}
		sc.Color = plotutil.Color(2)
		sc.Shape = plotutil.Shape(1)
		p.Add(sc)
		p.Legend.Add("iterates", sc)
	}

	p.X.Min, p.X.Max = win.XMin, win.XMax
	p.Y.Min, p.Y.Max = win.YMin, win.YMax
	return p.Save(plotWidth, plotHeight, path)
}

// addCurve samples fn across the window and draws it as line segments
// split wherever fn is undefined or leaves the window.
func addCurve(p *plot.Plot, name string, fn func(float64) float64, win rootfind.Window, color int) error {
	var segment plotter.XYs
	var first *plotter.Line
	flush := func() error {
		if len(segment) < 2 {
			segment = nil
			return nil
		}
		line, err := plotter.NewLine(segment)
		if err != nil {
			return err
		}
		line.Color = plotutil.Color(color)
		line.Width = vg.Points(1.5)
		p.Add(line)
		if first == nil {
			first = line
		}
		segment = nil
		return nil
	}

	step := (win.XMax - win.XMin) / float64(samples-1)
	for i := 0; i < samples; i++ {
		x := win.XMin + float64(i)*step
		y := fn(x)
		if !inWindow(x, y, win) {
			if err := flush(); err != nil {
				return err
			}
			continue
		}
		segment = append(segment, plotter.XY{X: x, Y: y})
	}
	if err := flush(); err != nil {
		return err
	}
	if first != nil {
		p.Legend.Add(name, first)
	}
	return nil
}

func inWindow(x, y float64, win rootfind.Window) bool {
	if math.IsNaN(y) || math.IsInf(y, 0) {
		return false
	}
	return x >= win.XMin && x <= win.XMax && y >= win.YMin && y <= win.YMax
}

func checkFormat(path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".svg", ".pdf", ".eps", ".jpg", ".jpeg", ".tif", ".tiff":
		return nil
	}
	return fmt.Errorf("%w: %q", ErrFormat, filepath.Ext(path))
}
