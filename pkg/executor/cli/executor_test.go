package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/dossier/pkg/batch"
	"github.com/entrhq/dossier/pkg/events"
	"github.com/entrhq/dossier/pkg/types"
)

func TestExecutor_Run(t *testing.T) {
	bus := events.NewBus()
	var out bytes.Buffer
	exec := NewExecutor(bus, WithWriter(&out))

	summary, err := exec.Run(context.Background(), func(ctx context.Context) (batch.Summary, error) {
		bus.Logf("Searching for R1...")
		r := types.NewRecord("R1", "CF", types.DecisionAccept)
		r.SetStatus(types.StatusFailed, "no matching row")
		bus.StatusChanged(r)
		return batch.Summary{Failed: 1}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failed)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "Searching for R1...")
	assert.Contains(t, lines[1], "R1 -> failed: no matching row")
	assert.Contains(t, lines[2], "Complete: 0 successful, 1 failed")

	// Events after the run are not printed.
	bus.Logf("late")
	assert.NotContains(t, out.String(), "late")
}

func TestExecutor_WaitForEnter(t *testing.T) {
	var out bytes.Buffer
	exec := NewExecutor(events.NewBus(), WithWriter(&out), WithReader(strings.NewReader("\n")))

	exec.WaitForEnter(context.Background(), "Press Enter to close the browser...")
	assert.Equal(t, "Press Enter to close the browser...", out.String())
}

func TestExecutor_WaitForEnterCancelled(t *testing.T) {
	exec := NewExecutor(events.NewBus(), WithWriter(&bytes.Buffer{}), WithReader(blockingReader{}))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	exec.WaitForEnter(ctx, "")
	assert.Less(t, time.Since(start), time.Second)
}

type blockingReader struct{}

func (blockingReader) Read([]byte) (int, error) {
	select {}
}

func TestFormatEvent(t *testing.T) {
	log := events.NewLogEvent("Browser initialised.")
	assert.True(t, strings.HasSuffix(FormatEvent(log), "] Browser initialised."))

	r := types.NewRecord("R9", "ML", types.DecisionAccept)
	r.SetStatus(types.StatusPausedForReview, "")
	assert.Contains(t, FormatEvent(events.NewStatusEvent(r)), "R9 -> paused_for_review")
}
