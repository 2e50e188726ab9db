package viz

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/san-kum/numlab/internal/linsys"
	"github.com/san-kum/numlab/internal/rootfind"
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(CurrentTheme.Muted)).
		Headers(headers...)
}

// tail keeps the last limit items; limit <= 0 keeps everything.
func tail[S any](states []S, limit int) []S {
	if limit > 0 && len(states) > limit {
		return states[len(states)-limit:]
	}
	return states
}

// RenderRootTable shows the last limit root-finding states.
func RenderRootTable(states []rootfind.IterationState, limit int) string {
	t := newTable("k", "x", "f(x)", "|x - x_prev|", "ratio")
	for _, st := range tail(states, limit) {
		t.Row(strconv.Itoa(st.K), num(st.X), num(st.FX), num(st.AbsError), num(st.ErrorRatio))
	}
	return t.StyleFunc(func(row, col int) lipgloss.Style {
		s := lipgloss.NewStyle().Padding(0, 1)
		if row == table.HeaderRow {
			return s.Foreground(CurrentTheme.Primary).Bold(true)
		}
		return s.Foreground(CurrentTheme.Text)
	}).String()
}

// RenderLinearTable shows the last limit iterative states, one column per
// unknown.
func RenderLinearTable(states []linsys.VectorIterationState, limit int) string {
	n := 0
	if len(states) > 0 {
		n = len(states[0].X)
	}
	headers := []string{"k"}
	for i := 0; i < n; i++ {
		headers = append(headers, fmt.Sprintf("x%d", i))
	}
	headers = append(headers, "residual")

	t := newTable(headers...)
	for _, st := range tail(states, limit) {
		row := []string{strconv.Itoa(st.K)}
		for _, v := range st.X {
			row = append(row, num(v))
		}
		t.Row(append(row, num(st.Residual))...)
	}
	last := len(headers) - 1
	return t.StyleFunc(func(row, col int) lipgloss.Style {
		s := lipgloss.NewStyle().Padding(0, 1)
		switch {
		case row == table.HeaderRow:
			return s.Foreground(CurrentTheme.Primary).Bold(true)
		case col == last:
			return s.Foreground(CurrentTheme.Accent)
		}
		return s.Foreground(CurrentTheme.Text)
	}).String()
}

// RenderMatrixState shows one snapshot of a direct solve. The touched rows
// are highlighted and the augmented column is set off by a bar.
func RenderMatrixState(ms linsys.MatrixState) string {
	var b strings.Builder
	b.WriteString(highlightStyle().Render(ms.Kind.String()))
	if ms.Description != "" {
		b.WriteString("  " + ms.Description)
	}
	b.WriteByte('\n')
	if len(ms.Matrix) == 0 {
		return b.String()
	}

	cols := len(ms.Matrix[0])
	headers := make([]string, 0, cols+1)
	for j := 0; j < cols-1; j++ {
		headers = append(headers, fmt.Sprintf("c%d", j))
	}
	headers = append(headers, "|", "b")

	t := newTable(headers...)
	for _, r := range ms.Matrix {
		row := make([]string, 0, cols+1)
		for _, v := range r[:cols-1] {
			row = append(row, num(v))
		}
		row = append(row, "|", num(r[cols-1]))
		t.Row(row...)
	}
	b.WriteString(t.StyleFunc(func(row, col int) lipgloss.Style {
		s := lipgloss.NewStyle().Padding(0, 1).Align(lipgloss.Right)
		switch {
		case row == table.HeaderRow:
			return s.Foreground(CurrentTheme.Muted)
		case slices.Contains(ms.Highlighted, row):
			return s.Foreground(CurrentTheme.Accent).Bold(true)
		}
		return s.Foreground(CurrentTheme.Text)
	}).String())
	return b.String()
}

// RenderDirectSummary lists the solution of a direct solve, or the fault.
func RenderDirectSummary(sol *linsys.DirectSolution) string {
	if sol == nil {
		return ""
	}
	if sol.Solution == nil {
		return statusStyle(StatusFailed).Render("no solution: " + sol.Final().Description)
	}
	t := newTable("unknown", "value")
	for i, v := range sol.Solution {
		t.Row(fmt.Sprintf("x%d", i), num(v))
	}
	return t.String()
}
