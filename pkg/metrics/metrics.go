// Package metrics records batch run metrics in Prometheus form.
//
// A batch run is a short-lived process, so nothing is served over HTTP.
// Instead the registry is written once at the end of the run in the text
// exposition format, which node_exporter's textfile collector picks up.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the batch metrics. Each instance owns its registry, so
// several can coexist in one process.
//
// Metrics:
//   - dossier_records_total{mode,status} - records that reached a terminal status
//   - dossier_record_duration_seconds{mode} - time spent per processed record
//   - dossier_batch_runs_total{mode,outcome} - completed and cancelled runs
//   - dossier_batch_last_run_timestamp_seconds - end time of the last run
type Metrics struct {
	registry *prometheus.Registry

	RecordsTotal   *prometheus.CounterVec
	RecordDuration *prometheus.HistogramVec
	RunsTotal      *prometheus.CounterVec
	LastRun        prometheus.Gauge
}

// New creates and registers the batch metrics on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		RecordsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dossier_records_total",
				Help: "Records that reached a terminal status",
			},
			[]string{"mode", "status"},
		),

		RecordDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dossier_record_duration_seconds",
				Help:    "Time spent processing one record",
				Buckets: prometheus.ExponentialBuckets(1, 2, 9), // 1s to ~4m
			},
			[]string{"mode"},
		),

		RunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dossier_batch_runs_total",
				Help: "Batch runs by outcome",
			},
			[]string{"mode", "outcome"}, // "completed" or "cancelled"
		),

		LastRun: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "dossier_batch_last_run_timestamp_seconds",
				Help: "Unix time the last batch run finished",
			},
		),
	}
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordResult counts a record's terminal status. Processed records also
// contribute their duration; skipped records pass zero.
func (m *Metrics) RecordResult(mode, status string, took time.Duration) {
	if m == nil {
		return
	}
	m.RecordsTotal.WithLabelValues(mode, status).Inc()
	if took > 0 {
		m.RecordDuration.WithLabelValues(mode).Observe(took.Seconds())
	}
}

// RunFinished counts a finished run.
func (m *Metrics) RunFinished(mode string, cancelled bool, at time.Time) {
	if m == nil {
		return
	}
	outcome := "completed"
	if cancelled {
		outcome = "cancelled"
	}
	m.RunsTotal.WithLabelValues(mode, outcome).Inc()
	m.LastRun.Set(float64(at.Unix()))
}

// WriteTextfile writes the registry to path in the text exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
