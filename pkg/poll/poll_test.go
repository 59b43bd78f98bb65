package poll

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestUntilGone_ClearsAfterFewChecks(t *testing.T) {
	var calls atomic.Int32
	err := UntilGone(context.Background(), Options{Interval: 5 * time.Millisecond, Deadline: time.Second},
		func(context.Context) (bool, error) {
			return calls.Add(1) < 3, nil
		})

	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestUntilGone_SleepsBeforeFirstCheck(t *testing.T) {
	start := time.Now()
	err := UntilGone(context.Background(), Options{Interval: 30 * time.Millisecond},
		func(context.Context) (bool, error) { return false, nil })

	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestUntilGone_PredicateErrorCountsAsPresent(t *testing.T) {
	var calls atomic.Int32
	err := UntilGone(context.Background(), Options{Interval: 5 * time.Millisecond, Deadline: time.Second},
		func(context.Context) (bool, error) {
			if calls.Add(1) == 1 {
				return false, errors.New("execution context was destroyed")
			}
			return false, nil
		})

	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestUntilGone_TimeoutOnlyAfterDeadline(t *testing.T) {
	deadline := 40 * time.Millisecond
	start := time.Now()

	var ticks []time.Duration
	err := UntilGone(context.Background(), Options{
		Interval: 10 * time.Millisecond,
		Deadline: deadline,
		OnTick:   func(elapsed time.Duration) { ticks = append(ticks, elapsed) },
	}, func(context.Context) (bool, error) { return true, nil })

	assert.ErrorIs(t, err, ErrTimeout)
	assert.GreaterOrEqual(t, time.Since(start), deadline)
	require.NotEmpty(t, ticks)
	assert.GreaterOrEqual(t, ticks[len(ticks)-1], deadline)
}

func TestUntilGone_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int32

	go func() {
		time.Sleep(15 * time.Millisecond)
		cancel()
	}()

	err := UntilGone(ctx, Options{Interval: 5 * time.Millisecond}, func(context.Context) (bool, error) {
		calls.Add(1)
		return true, nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Positive(t, calls.Load())
}

func TestOptions_ZeroValuesAreBounded(t *testing.T) {
	var opts Options
	assert.Equal(t, DefaultInterval, opts.interval())
	assert.Equal(t, DefaultDeadline, opts.deadline())

	opts = Options{Interval: -time.Second, Deadline: -time.Second}
	assert.Equal(t, DefaultInterval, opts.interval())
	assert.Equal(t, DefaultDeadline, opts.deadline())

	opts = Options{Interval: 2 * time.Second, Deadline: time.Minute}
	assert.Equal(t, 2*time.Second, opts.interval())
	assert.Equal(t, time.Minute, opts.deadline())
}
