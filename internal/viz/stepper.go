package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

type TickMsg time.Time

type Status int

const (
	StatusRunning Status = iota
	StatusPaused
	StatusConverged
	StatusFinished
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "RUNNING"
	case StatusPaused:
		return "PAUSED"
	case StatusConverged:
		return "CONVERGED"
	case StatusFinished:
		return "STOPPED"
	case StatusFailed:
		return "FAILED"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

const tableRows = 10

// Stepper is a bubbletea model that pulls one step from its source per
// tick. Space pauses, n steps once while paused, t cycles themes, q quits.
type Stepper struct {
	src      Source
	interval time.Duration
	running  bool
	err      error
	showHelp bool
}

func NewStepper(src Source, interval time.Duration) Stepper {
	if interval <= 0 {
		interval = 300 * time.Millisecond
	}
	return Stepper{src: src, interval: interval, running: true}
}

func (m Stepper) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Stepper) Init() tea.Cmd {
	return m.tick()
}

func (m Stepper) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ":
			m.running = !m.running
			if m.running {
				return m, m.tick()
			}
		case "n":
			if !m.running {
				m.advance()
			}
		case "t":
			NextTheme()
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if !m.running || m.done() {
			return m, nil
		}
		m.advance()
		return m, m.tick()
	}
	return m, nil
}

func (m *Stepper) advance() {
	if m.done() {
		return
	}
	if err := m.src.Step(); err != nil {
		m.err = err
	}
}

func (m Stepper) done() bool {
	return m.err != nil || !m.src.HasNext()
}

func (m Stepper) Status() Status {
	switch {
	case m.err != nil:
		return StatusFailed
	case m.src.Converged():
		return StatusConverged
	case !m.src.HasNext():
		return StatusFinished
	case !m.running:
		return StatusPaused
	}
	return StatusRunning
}

// Err returns the step error that stopped the stepper, if any.
func (m Stepper) Err() error { return m.err }

func (m Stepper) View() string {
	var s strings.Builder
	status := m.Status()
	s.WriteString(titleStyle().Render(m.src.Title()) + "\n")
	s.WriteString(statusStyle(status).Render(status.String()))
	s.WriteString("  " + ProgressBar(float64(m.src.Steps())/float64(max(m.src.Limit(), 1)), 30))
	s.WriteString(fmt.Sprintf(" %d/%d\n\n", m.src.Steps(), m.src.Limit()))

	if body := m.src.Render(tableRows); body != "" {
		s.WriteString(body + "\n")
	}
	if errs := m.src.Errors(); len(errs) > 1 {
		s.WriteString("\n" + Chart(errs, "error", 50, 6) + "\n")
	}
	if m.err != nil {
		s.WriteString("\n" + label("error", m.err.Error()) + "\n")
	}

	s.WriteString("\n")
	if m.showHelp {
		s.WriteString(keyHintStyle().Render("space  pause/resume\nn      single step (paused)\nt      cycle theme\nq      quit") + "\n")
	} else {
		s.WriteString(keyHintStyle().Render("space pause  n step  t theme  ? help  q quit") + "\n")
	}
	return s.String()
}
