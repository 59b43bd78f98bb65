package tui

import (
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/entrhq/dossier/pkg/events"
	"github.com/entrhq/dossier/pkg/types"
)

// Init starts the spinner.
func (m *model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles Bubble Tea messages.
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progress.Width = max(msg.Width-4, 10)
		return m, nil

	case eventMsg:
		m.handleEvent(msg.event)
		return m, nil

	case doneMsg:
		m.summary = msg.summary
		m.err = msg.err
		m.done = true
		m.current = ""
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progress.FrameMsg:
		pm, cmd := m.progress.Update(msg)
		if p, ok := pm.(progress.Model); ok {
			m.progress = p
		}
		return m, cmd
	}
	return m, nil
}

// handleKey treats Ctrl+C and q as a request to stop after the current
// record. The view keeps running until the batch returns.
func (m *model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q", "esc":
		if m.done {
			return m, tea.Quit
		}
		if !m.cancelling {
			m.cancelling = true
			if m.cancel != nil {
				m.cancel()
			}
			m.appendLine(pausedStyle.Render("Cancellation requested; finishing the current record..."))
		}
	}
	return m, nil
}

func (m *model) handleEvent(e events.Event) {
	switch e.Type {
	case events.EventTypeLog:
		m.appendLine(timeStyle.Render(e.Time.Format("15:04:05")) + " " + logStyle.Render(e.Message))

	case events.EventTypeStatusChange:
		if e.Status == types.StatusProcessing {
			m.current = e.Identifier
			return
		}
		if !e.Status.IsTerminal() {
			return
		}

		m.finished++
		switch e.Status {
		case types.StatusSuccess:
			m.successful++
		case types.StatusFailed:
			m.failed++
		case types.StatusSkipped:
			m.skipped++
		case types.StatusPausedForReview:
			m.paused++
		}
		if m.current == e.Identifier {
			m.current = ""
		}
		m.appendLine(statusLine(e))
	}
}

// statusLine renders a terminal status change with its color.
func statusLine(e events.Event) string {
	style := successStyle
	switch e.Status {
	case types.StatusFailed:
		style = failedStyle
	case types.StatusSkipped, types.StatusPausedForReview:
		style = pausedStyle
	}
	return timeStyle.Render(e.Time.Format("15:04:05")) + " " + style.Render(e.Identifier+" -> "+statusText(e))
}

func statusText(e events.Event) string {
	if e.Error != "" {
		return string(e.Status) + ": " + e.Error
	}
	return string(e.Status)
}
