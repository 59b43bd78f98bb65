package tui

import (
	"context"
	"errors"
	"io"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/dossier/pkg/batch"
	"github.com/entrhq/dossier/pkg/events"
	"github.com/entrhq/dossier/pkg/types"
)

func status(id string, s types.Status, errMsg string) eventMsg {
	r := types.NewRecord(id, "CF", types.DecisionAccept)
	r.Status = s
	r.Error = errMsg
	return eventMsg{event: events.NewStatusEvent(r)}
}

func TestModel_TracksStatuses(t *testing.T) {
	m := newModel("accept", 4, nil)

	m.Update(eventMsg{event: events.NewLogEvent("Searching for R1...")})
	m.Update(status("R1", types.StatusProcessing, ""))
	assert.Equal(t, "R1", m.current)
	assert.Contains(t, m.View(), "Processing R1")

	m.Update(status("R1", types.StatusSuccess, ""))
	m.Update(status("R2", types.StatusProcessing, ""))
	m.Update(status("R2", types.StatusFailed, "reason not found"))
	m.Update(status("R3", types.StatusSkipped, ""))

	assert.Equal(t, 3, m.finished)
	assert.Equal(t, 1, m.successful)
	assert.Equal(t, 1, m.failed)
	assert.Equal(t, 1, m.skipped)
	assert.Empty(t, m.current)
	assert.InDelta(t, 0.75, m.percent(), 1e-9)

	view := m.View()
	assert.Contains(t, view, "3/4 done · 1 successful · 1 failed · 1 skipped")
	assert.Contains(t, view, "Searching for R1...")
	assert.Contains(t, view, "R2 -> failed: reason not found")
}

func TestModel_KeepsRecentLines(t *testing.T) {
	m := newModel("merge", 1, nil)
	for i := 0; i < maxLogLines+5; i++ {
		m.Update(eventMsg{event: events.NewLogEvent("line")})
	}
	assert.Len(t, m.lines, maxLogLines)
}

func TestModel_CtrlCCancelsOnce(t *testing.T) {
	calls := 0
	m := newModel("reject", 2, func() { calls++ })

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.Nil(t, cmd, "the view waits for the batch to return")
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})

	assert.Equal(t, 1, calls)
	assert.True(t, m.cancelling)
	assert.Contains(t, m.View(), "Stopping after the current record")
}

func TestModel_DoneQuits(t *testing.T) {
	m := newModel("accept", 1, nil)

	_, cmd := m.Update(doneMsg{summary: "Complete: 1 successful, 0 failed", err: errors.New("boom")})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	view := m.View()
	assert.Contains(t, view, "Complete: 1 successful, 0 failed")
	assert.Contains(t, view, "Error: boom")
}

func TestExecutor_RunsJob(t *testing.T) {
	bus := events.NewBus()
	exec := NewExecutor(bus, "accept", 1, WithProgramOptions(
		tea.WithInput(nil),
		tea.WithOutput(io.Discard),
		tea.WithoutRenderer(),
		tea.WithoutSignalHandler(),
	))

	want := batch.Summary{Mode: batch.ModeAccept, Successful: 1}
	got, err := exec.Run(context.Background(), func(ctx context.Context) (batch.Summary, error) {
		bus.Logf("working")
		return want, nil
	})
	require.NoError(t, err)
	assert.Equal(t, want.Successful, got.Successful)
}

func TestExecutor_ReturnsJobError(t *testing.T) {
	bus := events.NewBus()
	exec := NewExecutor(bus, "merge", 0, WithProgramOptions(
		tea.WithInput(nil),
		tea.WithOutput(io.Discard),
		tea.WithoutRenderer(),
		tea.WithoutSignalHandler(),
	))

	boom := errors.New("not ready")
	_, err := exec.Run(context.Background(), func(ctx context.Context) (batch.Summary, error) {
		return batch.Summary{}, boom
	})
	assert.ErrorIs(t, err, boom)
}
