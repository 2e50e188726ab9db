package rootfind

import (
	"math"

	"github.com/san-kum/numlab/internal/equation"
)

// EstimateOrder returns, for each state, the convergence-order estimate
//
//	p_k = ln(e_k / e_{k-1}) / ln(e_{k-1} / e_{k-2})
//
// where e_k is the step's AbsError. Entries without three usable errors
// are NaN.
func EstimateOrder(states []IterationState) []float64 {
	out := make([]float64, len(states))
	for i := range out {
		out[i] = math.NaN()
		if i < 2 {
			continue
		}
		e0, e1, e2 := states[i-2].AbsError, states[i-1].AbsError, states[i].AbsError
		if !(e0 > 0 && e1 > 0 && e2 > 0) {
			continue
		}
		den := math.Log(e1 / e0)
		if den == 0 {
			continue
		}
		out[i] = math.Log(e2/e1) / den
	}
	return out
}

// Window is a plotting region.
type Window struct {
	XMin, XMax float64
	YMin, YMax float64
}

const boundsSamples = 200

// Bounds picks a window covering the iterates and the curves of f and g
// over that x range.
func Bounds(eq *equation.Equation, points []float64) Window {
	xmin, xmax, ok := finiteRange(points)
	if !ok {
		xmin, xmax = -5, 5
	}
	pad := math.Max((xmax-xmin)*0.2, 1)
	w := Window{XMin: xmin - pad, XMax: xmax + pad}

	ys := make([]float64, 0, 2*(boundsSamples+1))
	for i := 0; i <= boundsSamples; i++ {
		x := w.XMin + (w.XMax-w.XMin)*float64(i)/boundsSamples
		ys = append(ys, eq.F(x))
		if eq.HasG() {
			ys = append(ys, eq.G(x))
		}
	}

	ymin, ymax, ok := finiteRange(ys)
	if !ok {
		w.YMin, w.YMax = -5, 5
		return w
	}
	ypad := (ymax - ymin) * 0.15
	if ypad == 0 {
		ypad = 1
	}
	w.YMin, w.YMax = ymin-ypad, ymax+ypad
	return w
}

func finiteRange(vs []float64) (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range vs {
		if !isFinite(v) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
		ok = true
	}
	return lo, hi, ok
}
