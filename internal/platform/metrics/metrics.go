package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the dispatch and SLA engine.
type Metrics struct {
	ProtocolsCreated   prometheus.Counter
	DispatchFailures   *prometheus.CounterVec
	SequenceLatency    prometheus.Histogram
	WorkflowsApplied   prometheus.Counter
	SLAsCreated        prometheus.Counter
	SLAOverdue         prometheus.Gauge
	AuditPublishErrors prometheus.Counter
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		ProtocolsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "civicdesk_protocols_created_total",
			Help: "Total number of protocols created.",
		}),
		DispatchFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "civicdesk_dispatch_failures_total",
			Help: "Dispatch failures by error code.",
		}, []string{"code"}),
		SequenceLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "civicdesk_sequence_allocation_seconds",
			Help:    "Time spent allocating a protocol number, including lock waits.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
		}),
		WorkflowsApplied: promauto.NewCounter(prometheus.CounterOpts{
			Name: "civicdesk_workflows_applied_total",
			Help: "Workflow applications to protocols.",
		}),
		SLAsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "civicdesk_slas_created_total",
			Help: "SLA records created.",
		}),
		SLAOverdue: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "civicdesk_slas_overdue",
			Help: "Active SLAs currently overdue, as of the last refresh.",
		}),
		AuditPublishErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "civicdesk_audit_publish_errors_total",
			Help: "Audit events that could not be published.",
		}),
	}
}

// RecordDispatchFailure increments the failure counter for an error code.
func (m *Metrics) RecordDispatchFailure(code string) {
	if m == nil {
		return
	}
	m.DispatchFailures.WithLabelValues(code).Inc()
}

// ObserveSequenceLatency records one number allocation duration in seconds.
func (m *Metrics) ObserveSequenceLatency(seconds float64) {
	if m == nil {
		return
	}
	m.SequenceLatency.Observe(seconds)
}
