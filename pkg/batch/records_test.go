package batch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/dossier/pkg/automation"
	"github.com/entrhq/dossier/pkg/types"
)

func TestParseRecords(t *testing.T) {
	records, err := ParseRecords([]byte(`
- identifier: " 12345 "
  programme: AIBH
  decision: Accept
  forename: Jane
  surname: Doe
- identifier: "67890"
  programme: cf
  decision: REJECT
- identifier: 11111
  decision: maybe
`))
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "12345", records[0].Identifier)
	assert.Equal(t, types.DecisionAccept, records[0].Decision)
	assert.Equal(t, "Jane Doe", records[0].Name())
	assert.Equal(t, types.StatusPending, records[0].Status)

	assert.Equal(t, "cf", records[1].Programme)
	assert.Equal(t, types.DecisionReject, records[1].Decision)

	assert.Equal(t, "11111", records[2].Identifier)
	assert.Equal(t, types.DecisionUnknown, records[2].Decision)
	assert.Empty(t, records[2].Programme)
}

func TestParseRecords_JSON(t *testing.T) {
	records, err := ParseRecords([]byte(`[{"identifier": "1", "programme": "ML", "decision": "reject"}]`))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, types.DecisionReject, records[0].Decision)
}

func TestParseRecords_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"not a list", "identifier: 1\n", "records"},
		{"missing identifier", "- programme: CF\n", "record 1 has no identifier"},
		{"duplicate", "- identifier: A\n- identifier: B\n- identifier: A\n", "identifier A appears in records 1 and 3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRecords([]byte(tt.data))
			require.ErrorIs(t, err, automation.ErrInvalidInput)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- identifier: X1\n  decision: accept\n"), 0o600))

	records, err := LoadRecords(path)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "X1", records[0].Identifier)

	_, err = LoadRecords(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
