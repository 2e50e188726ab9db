package viz

import (
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles are built from CurrentTheme on every render so a theme switch
// takes effect on the next frame.

func titleStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(CurrentTheme.Primary).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(CurrentTheme.Muted)
}

func panelStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(CurrentTheme.Muted).
		Padding(0, 1)
}

func labelStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(CurrentTheme.Muted).Width(12)
}

func valueStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(CurrentTheme.Text).Bold(true)
}

func highlightStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(CurrentTheme.Accent).Bold(true)
}

func keyHintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(CurrentTheme.Muted).Italic(true)
}

func statusStyle(s Status) lipgloss.Style {
	st := lipgloss.NewStyle().Bold(true)
	switch s {
	case StatusRunning:
		return st.Foreground(CurrentTheme.Primary)
	case StatusPaused:
		return st.Foreground(CurrentTheme.Warning)
	case StatusConverged:
		return st.Foreground(CurrentTheme.Success)
	case StatusFailed:
		return st.Foreground(CurrentTheme.Error)
	}
	return st.Foreground(CurrentTheme.Muted)
}

// ProgressBar renders fraction in [0, 1] as a bar of width cells.
func ProgressBar(fraction float64, width int) string {
	filled := int(fraction * float64(width))
	filled = max(0, min(filled, width))
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return lipgloss.NewStyle().Foreground(CurrentTheme.Primary).Render(bar)
}

func label(name, value string) string {
	return labelStyle().Render(name) + valueStyle().Render(value)
}

// num formats a table cell; undefined values print as a dash.
func num(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	if math.IsInf(v, 0) {
		if v > 0 {
			return "+inf"
		}
		return "-inf"
	}
	return strconv.FormatFloat(v, 'g', 10, 64)
}
