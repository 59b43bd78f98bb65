// Package cli prints a batch run's events as plain terminal lines, for
// terminals where the progress view is unwanted.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"

	"github.com/entrhq/dossier/pkg/batch"
	"github.com/entrhq/dossier/pkg/events"
	"github.com/entrhq/dossier/pkg/types"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#A8E6CF"))
	failedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFB3BA"))
	pausedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FDE2A7"))
	summaryStyle = lipgloss.NewStyle().Bold(true)
)

// Executor writes one line per event while a batch runs.
type Executor struct {
	bus    *events.Bus
	reader *bufio.Reader
	writer io.Writer
}

// ExecutorOption is a function that configures an Executor.
type ExecutorOption func(*Executor)

// WithWriter sets a custom output writer (default is os.Stdout).
func WithWriter(w io.Writer) ExecutorOption {
	return func(e *Executor) {
		e.writer = w
	}
}

// WithReader sets a custom input reader (default is os.Stdin).
func WithReader(r io.Reader) ExecutorOption {
	return func(e *Executor) {
		e.reader = bufio.NewReader(r)
	}
}

// NewExecutor creates a line printer listening on bus.
func NewExecutor(bus *events.Bus, opts ...ExecutorOption) *Executor {
	e := &Executor{
		bus:    bus,
		reader: bufio.NewReader(os.Stdin),
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run prints events while job runs, then the summary line.
func (e *Executor) Run(ctx context.Context, job func(context.Context) (batch.Summary, error)) (batch.Summary, error) {
	unsubscribe := e.bus.Subscribe(func(ev events.Event) {
		fmt.Fprintln(e.writer, FormatEvent(ev))
	})
	summary, err := job(ctx)
	unsubscribe()

	fmt.Fprintln(e.writer, summaryStyle.Render(summary.String()))
	return summary, err
}

// WaitForEnter prints prompt and blocks until a line is read or ctx ends.
func (e *Executor) WaitForEnter(ctx context.Context, prompt string) {
	fmt.Fprint(e.writer, prompt)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = e.reader.ReadString('\n')
	}()

	select {
	case <-done:
	case <-ctx.Done():
	}
}

// FormatEvent renders e as one line, colored by status.
func FormatEvent(e events.Event) string {
	line := e.String()
	if e.Type != events.EventTypeStatusChange {
		return line
	}
	switch e.Status {
	case types.StatusSuccess:
		return successStyle.Render(line)
	case types.StatusFailed:
		return failedStyle.Render(line)
	case types.StatusSkipped, types.StatusPausedForReview:
		return pausedStyle.Render(line)
	default:
		return line
	}
}
