package batch

import (
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/dossier/pkg/types"
)

func TestArtifactWriter_WriteAll(t *testing.T) {
	dir := t.TempDir()

	failed := types.NewRecord("R2", "CF", types.DecisionReject)
	failed.SetStatus(types.StatusFailed, "no reason | matched\nthe rules")
	ok := types.NewRecord("R1", "CF", types.DecisionAccept)
	ok.SetStatus(types.StatusSuccess, "")

	start := time.Date(2026, 3, 4, 9, 30, 0, 0, time.UTC)
	summary := &Summary{
		RunID:     "0f8fad5b-d9cb-469f-a165-70867728950e",
		Mode:      ModeDecide,
		StartTime: start,
		EndTime:   start.Add(90 * time.Second),
		Duration:  90 * time.Second,
		Records:   []*types.Record{ok, failed},
	}
	summary.Tally(summary.Records)

	paths, err := NewArtifactWriter(dir).WriteAll(summary)
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.True(t, strings.HasSuffix(paths[0], "20260304-093000-decide-0f8fad5b.json"))
	assert.True(t, strings.HasSuffix(paths[1], "20260304-093000-decide-0f8fad5b.md"))

	data, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	var decoded Summary
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, 1, decoded.Failed)
	require.Len(t, decoded.Records, 2)
	assert.Equal(t, types.StatusFailed, decoded.Records[1].Status)

	md, err := os.ReadFile(paths[1])
	require.NoError(t, err)
	assert.Contains(t, string(md), "**Result:** Complete: 1 successful, 1 failed")
	assert.Contains(t, string(md), "**Duration:** 1m30s")
	assert.Contains(t, string(md), `| 2 | R2 | CF | reject | ❌ failed | no reason \| matched the rules |`)
}

func TestArtifactWriter_BadDirectory(t *testing.T) {
	file := t.TempDir() + "/not-a-dir"
	require.NoError(t, os.WriteFile(file, nil, 0o600))

	_, err := NewArtifactWriter(file).WriteAll(&Summary{Mode: ModeAccept})
	assert.Error(t, err)
}

func TestOutputIndex_Find(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(dir+"/12345-01-01-OVERVIEW.PDF", nil, 0o600))
	require.NoError(t, os.Mkdir(dir+"/99999", 0o755))

	idx, err := ScanOutput(dir)
	require.NoError(t, err)
	assert.Equal(t, 1, idx.Len())

	name, ok := idx.Find("12345")
	assert.True(t, ok)
	assert.Equal(t, "12345-01-01-overview.pdf", name)

	_, ok = idx.Find("99999")
	assert.False(t, ok, "directories are not documents")
	_, ok = idx.Find("  ")
	assert.False(t, ok)
	_, ok = idx.Find("1234*")
	assert.False(t, ok, "identifiers are matched literally")
}

func TestScanOutput_MissingFolder(t *testing.T) {
	idx, err := ScanOutput(t.TempDir() + "/later")
	require.NoError(t, err)
	assert.Equal(t, 0, idx.Len())
	_, ok := idx.Find("12345")
	assert.False(t, ok)
}
