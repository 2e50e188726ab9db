package viz

import (
	"math"

	"github.com/guptarohit/asciigraph"
)

// Chart plots log10 of the positive finite values, the usual view of an
// error or residual sequence. Other values are skipped.
func Chart(values []float64, caption string, width, height int) string {
	logs := make([]float64, 0, len(values))
	for _, v := range values {
		if v > 0 && !math.IsInf(v, 0) {
			logs = append(logs, math.Log10(v))
		}
	}
	if len(logs) == 0 {
		return keyHintStyle().Render("(no data for " + caption + ")")
	}
	opts := []asciigraph.Option{
		asciigraph.Height(height),
		asciigraph.Caption("log10 " + caption),
		asciigraph.Precision(1),
	}
	if width > 0 {
		opts = append(opts, asciigraph.Width(width))
	}
	return asciigraph.Plot(logs, opts...)
}
