package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"

	"github.com/entrhq/dossier/pkg/events"
)

// maxLogLines is how many recent event lines stay on screen.
const maxLogLines = 12

// model is the progress view for one batch run.
type model struct {
	// Bubble Tea components
	spinner  spinner.Model
	progress progress.Model

	title string
	total int

	// Run state
	finished   int
	successful int
	failed     int
	skipped    int
	paused     int
	current    string
	lines      []string

	// cancel stops the batch between records.
	cancel     context.CancelFunc
	cancelling bool

	summary string
	err     error
	done    bool

	width int
}

// eventMsg carries one engine event into the program.
type eventMsg struct {
	event events.Event
}

// doneMsg signals that the batch returned.
type doneMsg struct {
	summary string
	err     error
}

func newModel(title string, total int, cancel context.CancelFunc) *model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = currentStyle

	return &model{
		spinner:  s,
		progress: progress.New(progress.WithGradient(string(salmonPink), string(mintGreen))),
		title:    title,
		total:    total,
		cancel:   cancel,
		width:    80,
	}
}

func (m *model) percent() float64 {
	if m.total == 0 {
		return 0
	}
	return float64(m.finished) / float64(m.total)
}

func (m *model) appendLine(line string) {
	m.lines = append(m.lines, line)
	if len(m.lines) > maxLogLines {
		m.lines = m.lines[len(m.lines)-maxLogLines:]
	}
}
