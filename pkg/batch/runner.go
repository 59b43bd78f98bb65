// Package batch runs a list of records through the automation engine in
// input order, one at a time.
package batch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/entrhq/dossier/pkg/automation"
	"github.com/entrhq/dossier/pkg/events"
	"github.com/entrhq/dossier/pkg/metrics"
	"github.com/entrhq/dossier/pkg/types"
)

// Mode selects the workflow applied to each record.
type Mode string

const (
	ModeAccept Mode = "accept" // ModeAccept applies offers to Accept records only.
	ModeReject Mode = "reject" // ModeReject applies rejections to Reject records only.
	ModeDecide Mode = "decide" // ModeDecide applies each record's own decision.
	ModeMerge  Mode = "merge"  // ModeMerge merges documents for every record.
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeAccept, ModeReject, ModeDecide, ModeMerge:
		return m, nil
	default:
		return "", fmt.Errorf("%w: unknown mode %q", automation.ErrInvalidInput, s)
	}
}

// Processor is the part of the engine a batch needs. *automation.Engine
// implements it.
type Processor interface {
	NavigateToEntry(ctx context.Context) error
	ProcessAccept(ctx context.Context, rec *types.Record) error
	ProcessReject(ctx context.Context, rec *types.Record) error
	ProcessMerge(ctx context.Context, rec *types.Record, outputDir string) error
	Debug() bool
	Bus() *events.Bus
}

// Options configures a run.
type Options struct {
	Mode Mode

	// OutputDir receives merged documents. Required for ModeMerge.
	OutputDir string

	// Metrics is optional.
	Metrics *metrics.Metrics
}

// Runner processes batches on one engine.
type Runner struct {
	proc Processor
	bus  *events.Bus
}

// NewRunner creates a runner for proc.
func NewRunner(proc Processor) *Runner {
	return &Runner{proc: proc, bus: proc.Bus()}
}

// Run processes records front to back and returns the summary. Records
// are updated in place and Summary.Records keeps their input order.
//
// Cancelling ctx stops the run between records: the record in flight still
// reaches a terminal status, later records stay pending, and Run returns
// ErrCancelled along with the summary. In debug mode only the first
// eligible record is processed. The only other error is a fatal engine
// error such as ErrNotReady.
func (r *Runner) Run(ctx context.Context, records []*types.Record, opts Options) (Summary, error) {
	summary := Summary{
		RunID:     uuid.NewString(),
		Mode:      opts.Mode,
		StartTime: time.Now(),
		Records:   records,
	}
	if _, err := ParseMode(string(opts.Mode)); err != nil {
		return summary, err
	}
	if opts.Mode == ModeMerge && opts.OutputDir == "" {
		return summary, fmt.Errorf("%w: merge needs an output folder", automation.ErrInvalidInput)
	}

	var existing *OutputIndex
	if opts.Mode == ModeMerge {
		idx, err := ScanOutput(opts.OutputDir)
		if err != nil {
			return summary, err
		}
		existing = idx
		r.bus.Logf("Output folder %s holds %d files", opts.OutputDir, idx.Len())
	}

	r.bus.Logf("Starting %s run of %d records", opts.Mode, len(records))

	var runErr error
	for _, rec := range records {
		if ctx.Err() != nil {
			r.bus.Logf("Cancellation requested; stopping before %s", rec.Identifier)
			summary.Cancelled = true
			runErr = automation.ErrCancelled
			break
		}
		if rec.Status.IsTerminal() {
			continue
		}

		if reason, skip := r.skipReason(rec, opts.Mode, existing); skip {
			rec.SetStatus(types.StatusSkipped, "")
			r.bus.StatusChanged(rec)
			r.bus.Logf("Skipped %s (%s)", rec.Identifier, reason)
			opts.Metrics.RecordResult(string(opts.Mode), string(rec.Status), 0)
			continue
		}

		// The record in flight is never interrupted.
		started := time.Now()
		if err := r.process(context.WithoutCancel(ctx), rec, opts); err != nil {
			runErr = err
			break
		}
		opts.Metrics.RecordResult(string(opts.Mode), string(rec.Status), time.Since(started))

		if r.proc.Debug() {
			r.bus.Logf("Debug mode: browser paused for inspection after %s", rec.Identifier)
			break
		}
	}

	summary.EndTime = time.Now()
	summary.Duration = summary.EndTime.Sub(summary.StartTime)
	summary.Tally(records)
	opts.Metrics.RunFinished(string(opts.Mode), summary.Cancelled, summary.EndTime)

	r.bus.Logf("%s (%s)", summary, summary.Duration.Round(time.Second))
	return summary, runErr
}

// skipReason decides whether rec is outside this run.
func (r *Runner) skipReason(rec *types.Record, mode Mode, existing *OutputIndex) (string, bool) {
	switch mode {
	case ModeAccept:
		if rec.Decision != types.DecisionAccept {
			return fmt.Sprintf("Decision: %s", rec.Decision), true
		}
	case ModeReject:
		if rec.Decision != types.DecisionReject {
			return fmt.Sprintf("Decision: %s", rec.Decision), true
		}
	case ModeDecide:
		if rec.Decision != types.DecisionAccept && rec.Decision != types.DecisionReject {
			return fmt.Sprintf("Decision: %s", rec.Decision), true
		}
	case ModeMerge:
		if name, ok := existing.Find(rec.Identifier); ok {
			return fmt.Sprintf("already saved as %s", name), true
		}
	}
	return "", false
}

func (r *Runner) process(ctx context.Context, rec *types.Record, opts Options) error {
	var err error
	switch {
	case opts.Mode == ModeMerge:
		err = r.proc.ProcessMerge(ctx, rec, opts.OutputDir)
	case rec.Decision == types.DecisionAccept:
		err = r.proc.ProcessAccept(ctx, rec)
	default:
		err = r.proc.ProcessReject(ctx, rec)
	}
	if err != nil {
		return err
	}

	// Accept and reject leave the page inside the record; go back to
	// search for the next one. A paused record is left for inspection.
	if opts.Mode != ModeMerge && rec.Status != types.StatusPausedForReview {
		if err := r.proc.NavigateToEntry(ctx); err != nil && !errors.Is(err, automation.ErrNotReady) {
			r.bus.Logf("Could not return to search after %s: %v", rec.Identifier, err)
		}
	}
	return nil
}
