package tui

import (
	"fmt"
	"strings"
)

// View renders the progress view.
func (m *model) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("dossier · " + m.title))
	b.WriteString("\n\n")
	b.WriteString(m.progress.ViewAs(m.percent()))
	b.WriteString("\n")
	b.WriteString(tipsStyle.Render(m.counts()))
	b.WriteString("\n\n")

	for _, line := range m.lines {
		b.WriteString(line)
		b.WriteString("\n")
	}

	if m.done {
		b.WriteString("\n")
		result := m.summary
		if m.err != nil {
			result = fmt.Sprintf("%s\n%s", result, failedStyle.Render("Error: "+m.err.Error()))
		}
		b.WriteString(summaryStyle.Render(result))
		b.WriteString("\n")
		return b.String()
	}

	if m.current != "" {
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("%s Processing %s", m.spinner.View(), m.current))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.cancelling {
		b.WriteString(tipsStyle.Render("  Stopping after the current record..."))
	} else {
		b.WriteString(tipsStyle.Render("  Ctrl+C to stop after the current record"))
	}
	return b.String()
}

func (m *model) counts() string {
	s := fmt.Sprintf("  %d/%d done · %d successful · %d failed", m.finished, m.total, m.successful, m.failed)
	if m.skipped > 0 {
		s += fmt.Sprintf(" · %d skipped", m.skipped)
	}
	if m.paused > 0 {
		s += fmt.Sprintf(" · %d paused", m.paused)
	}
	return s
}
