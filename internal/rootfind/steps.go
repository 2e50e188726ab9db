package rootfind

import (
	"math"

	"github.com/san-kum/numlab/internal/equation"
)

// step advances r by one iteration of m. It never mutates r.
func step(m Method, r record, eq *equation.Equation, cfg Config) (record, IterationState) {
	xp := r.x
	var x float64
	var support []float64

	switch m {
	case SimpleIteration:
		x = eq.G(xp)
		support = []float64{xp}

	case Newton:
		x = newtonStep(eq, xp, eq.DF(xp))
		support = []float64{xp}

	case SimplifiedNewton:
		x = newtonStep(eq, xp, r.df0)
		support = []float64{xp}

	case DampedNewton:
		x = dampedStep(eq, xp, cfg.DampingTries)
		support = []float64{xp}

	case ModifiedSecant:
		if r.k == 1 || (r.k-1)%cfg.UpdateInterval == 0 {
			r.slope = (eq.F(xp+forwardStep) - eq.F(xp)) / forwardStep
		}
		x = newtonStep(eq, xp, r.slope)
		support = []float64{xp, xp + forwardStep}

	case Aitken:
		x1 := eq.G(xp)
		x2 := eq.G(x1)
		den := x2 - 2*x1 + xp
		if math.Abs(den) < derivativeEps || math.IsNaN(den) {
			x = math.NaN()
		} else {
			d := x1 - xp
			x = xp - d*d/den
		}
		support = []float64{xp, x1, x2}

	case SinglePointSecant:
		if r.k == 1 {
			x = r.x1
			support = []float64{r.x0}
		} else {
			x = secantStep(eq, r.x0, xp)
			support = []float64{r.x0, xp}
		}

	case TwoPointSecant:
		if r.k == 1 {
			x = r.x1
			support = []float64{r.x0}
		} else {
			x = secantStep(eq, r.xPrev, xp)
			support = []float64{r.xPrev, xp}
		}
	}

	abs := math.Abs(x - xp)
	ratio := math.NaN()
	if r.prevAbs > ratioEps {
		ratio = abs / r.prevAbs
	}

	st := IterationState{
		K:          r.k,
		X:          x,
		XPrev:      xp,
		FX:         eq.F(x),
		AbsError:   abs,
		ErrorRatio: ratio,
		Support:    support,
	}

	r.xPrev = xp
	r.x = x
	r.prevAbs = abs
	r.k++
	return r, st
}

func newtonStep(eq *equation.Equation, xp, d float64) float64 {
	if math.Abs(d) < derivativeEps || math.IsNaN(d) {
		return math.NaN()
	}
	return xp - eq.F(xp)/d
}

// dampedStep halves the Newton step until |f| decreases.
func dampedStep(eq *equation.Equation, xp float64, tries int) float64 {
	d := eq.DF(xp)
	if math.Abs(d) < derivativeEps || math.IsNaN(d) {
		return math.NaN()
	}
	fx := eq.F(xp)
	if fx == 0 {
		return xp
	}
	lambda := 1.0
	for i := 0; i < tries; i++ {
		cand := xp - lambda*fx/d
		if math.Abs(eq.F(cand)) < math.Abs(fx) {
			return cand
		}
		lambda /= 2
	}
	return math.NaN()
}

// secantStep moves xp along the line through (xq, f(xq)) and (xp, f(xp)).
func secantStep(eq *equation.Equation, xq, xp float64) float64 {
	fp := eq.F(xp)
	den := fp - eq.F(xq)
	if math.Abs(den) < derivativeEps || math.IsNaN(den) {
		return math.NaN()
	}
	return xp - fp*(xp-xq)/den
}
