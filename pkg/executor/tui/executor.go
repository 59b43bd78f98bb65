// Package tui provides a terminal progress view for a batch run, fed by
// the engine's event channel.
//
// The package is split into:
// - executor.go: program lifecycle next to the batch
// - model.go: model state and messages
// - update.go: Bubble Tea Update and event handling
// - view.go: rendering
// - styles.go: colors and styles
package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/entrhq/dossier/pkg/batch"
	"github.com/entrhq/dossier/pkg/events"
)

// Job runs the batch. It must return once ctx is cancelled and the record
// in flight has finished.
type Job func(ctx context.Context) (batch.Summary, error)

// Executor shows a progress view while a Job runs.
type Executor struct {
	bus         *events.Bus
	title       string
	total       int
	programOpts []tea.ProgramOption
}

// ExecutorOption is a function that configures an Executor.
type ExecutorOption func(*Executor)

// WithProgramOptions passes options through to the Bubble Tea program.
func WithProgramOptions(opts ...tea.ProgramOption) ExecutorOption {
	return func(e *Executor) {
		e.programOpts = append(e.programOpts, opts...)
	}
}

// NewExecutor creates a progress view for total records, listening on bus.
func NewExecutor(bus *events.Bus, title string, total int, opts ...ExecutorOption) *Executor {
	e := &Executor{
		bus:   bus,
		title: title,
		total: total,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run starts the view, runs job next to it and blocks until both are done.
// Pressing Ctrl+C in the view cancels the context handed to job. The
// job's summary and error are returned as is.
func (e *Executor) Run(ctx context.Context, job Job) (batch.Summary, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := newModel(e.title, e.total, cancel)
	p := tea.NewProgram(m, e.programOpts...)

	unsubscribe := e.bus.Subscribe(func(ev events.Event) {
		p.Send(eventMsg{event: ev})
	})
	defer unsubscribe()

	var (
		summary batch.Summary
		jobErr  error
	)

	var g errgroup.Group
	g.Go(func() error {
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("progress view failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		summary, jobErr = job(ctx)
		p.Send(doneMsg{summary: summary.String(), err: jobErr})
		return nil
	})

	if err := g.Wait(); err != nil && jobErr == nil {
		return summary, err
	}
	return summary, jobErr
}
