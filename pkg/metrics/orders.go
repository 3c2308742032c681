package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics tracks the order creation workflow.
type OrderMetrics struct {
	created   prometheus.Counter
	failures  *prometheus.CounterVec
	lineItems prometheus.Counter
	duration  prometheus.Histogram
}

// NewOrderMetrics registers the order workflow metrics on reg. A nil registerer
// yields a no-op recorder.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	created := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "orders",
		Name:      "created_total",
		Help:      "Production orders committed.",
	})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "orders",
		Name:      "failures_total",
		Help:      "Order creations rolled back, by error code.",
	}, []string{"reason"})
	lineItems := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "orders",
		Name:      "line_items_total",
		Help:      "Line items persisted by committed orders.",
	})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "orders",
		Name:      "create_duration_seconds",
		Help:      "Duration of the order creation transaction.",
		Buckets:   prometheus.DefBuckets,
	})
	reg.MustRegister(created, failures, lineItems, duration)
	return &OrderMetrics{
		created:   created,
		failures:  failures,
		lineItems: lineItems,
		duration:  duration,
	}
}

// ObserveCreated records a committed order with its line item count.
func (m *OrderMetrics) ObserveCreated(lineItems int, elapsed time.Duration) {
	if m == nil || m.created == nil {
		return
	}
	m.created.Inc()
	m.lineItems.Add(float64(lineItems))
	m.duration.Observe(elapsed.Seconds())
}

// IncFailure records a rolled back order creation.
func (m *OrderMetrics) IncFailure(reason string) {
	if m == nil || m.failures == nil {
		return
	}
	m.failures.WithLabelValues(normalizeLabel(reason)).Inc()
}
