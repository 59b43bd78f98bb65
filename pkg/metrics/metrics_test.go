package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_RecordResult(t *testing.T) {
	m := New()

	m.RecordResult("accept", "success", 3*time.Second)
	m.RecordResult("accept", "success", 5*time.Second)
	m.RecordResult("accept", "failed", time.Second)
	m.RecordResult("accept", "skipped", 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RecordsTotal.WithLabelValues("accept", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RecordsTotal.WithLabelValues("accept", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RecordsTotal.WithLabelValues("accept", "skipped")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.RecordDuration))
}

func TestMetrics_IndependentRegistries(t *testing.T) {
	a, b := New(), New()
	a.RecordResult("merge", "success", time.Second)

	assert.Equal(t, 1.0, testutil.ToFloat64(a.RecordsTotal.WithLabelValues("merge", "success")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.RecordsTotal.WithLabelValues("merge", "success")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordResult("accept", "success", time.Second)
		m.RunFinished("accept", false, time.Now())
	})
}

func TestMetrics_WriteTextfile(t *testing.T) {
	m := New()
	m.RecordResult("reject", "failed", 2*time.Second)
	m.RunFinished("reject", true, time.Unix(1700000000, 0))

	path := filepath.Join(t.TempDir(), "dossier.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, `dossier_records_total{mode="reject",status="failed"} 1`)
	assert.Contains(t, out, `dossier_batch_runs_total{mode="reject",outcome="cancelled"} 1`)
	assert.Contains(t, out, "dossier_batch_last_run_timestamp_seconds ")
}
