// Package poll waits for a page condition to clear.
package poll

import (
	"context"
	"errors"
	"time"
)

// ErrTimeout is returned when the condition is still present at the deadline.
var ErrTimeout = errors.New("poll: condition still present at deadline")

// Defaults for zero Options fields.
const (
	DefaultInterval = time.Second
	DefaultDeadline = 120 * time.Second
)

// Options configures UntilGone.
type Options struct {
	// Interval is the sleep before every check. Zero means DefaultInterval.
	Interval time.Duration

	// Deadline is the total time allowed. Zero means DefaultDeadline; there
	// is no unbounded wait.
	Deadline time.Duration

	// OnTick is called after every check that found the condition still
	// present, with the elapsed time so far. Optional.
	OnTick func(elapsed time.Duration)
}

func (o Options) interval() time.Duration {
	if o.Interval <= 0 {
		return DefaultInterval
	}
	return o.Interval
}

func (o Options) deadline() time.Duration {
	if o.Deadline <= 0 {
		return DefaultDeadline
	}
	return o.Deadline
}

// Predicate reports whether the watched condition is still present.
type Predicate func(ctx context.Context) (bool, error)

// UntilGone sleeps one interval, then evaluates present, and repeats until
// present reports false. A predicate error counts as "still present", since
// the page may be mid-navigation. It returns ErrTimeout once the elapsed time
// reaches the deadline, and ctx.Err() if the context ends first.
func UntilGone(ctx context.Context, opts Options, present Predicate) error {
	interval, deadline := opts.interval(), opts.deadline()

	start := time.Now()
	timer := time.NewTimer(interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}

		still, err := present(ctx)
		if err != nil {
			still = true
		}
		if !still {
			return nil
		}

		elapsed := time.Since(start)
		if opts.OnTick != nil {
			opts.OnTick(elapsed)
		}
		if elapsed >= deadline {
			return ErrTimeout
		}

		timer.Reset(interval)
	}
}
