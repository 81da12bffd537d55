// Package metrics counts attendance operations for Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels.
const (
	OutcomeOK         = "ok"
	OutcomeInvalid    = "invalid"
	OutcomeStoreError = "store_error"
)

// Metrics holds the collectors registered for one process.
type Metrics struct {
	Operations      *prometheus.CounterVec
	Duration        *prometheus.HistogramVec
	BulkSkipped     prometheus.Counter
	ExportedRecords prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "attendance",
			Name:      "operations_total",
			Help:      "Attendance operations by name and outcome.",
		}, []string{"operation", "outcome"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "attendance",
			Name:      "operation_duration_seconds",
			Help:      "Store round-trip time per attendance operation.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		BulkSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "attendance",
			Name:      "bulk_skipped_total",
			Help:      "Bulk entries skipped because they failed validation.",
		}),
		ExportedRecords: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "attendance",
			Name:      "exported_records_total",
			Help:      "Records written by exports.",
		}),
	}
	reg.MustRegister(m.Operations, m.Duration, m.BulkSkipped, m.ExportedRecords)
	return m
}

// Observe records one finished operation. A nil receiver is a no-op.
func (m *Metrics) Observe(operation, outcome string, started time.Time) {
	if m == nil {
		return
	}
	m.Operations.WithLabelValues(operation, outcome).Inc()
	m.Duration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}

// Skipped adds n to the bulk skip counter.
func (m *Metrics) Skipped(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.BulkSkipped.Add(float64(n))
}

// Exported adds n to the exported record counter.
func (m *Metrics) Exported(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.ExportedRecords.Add(float64(n))
}
