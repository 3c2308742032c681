package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "mes"

// CronJobMetrics tracks the maintenance jobs of the cron worker, labeled by
// job name. The zero value and a nil pointer discard everything.
type CronJobMetrics struct {
	duration    *prometheus.HistogramVec
	success     *prometheus.CounterVec
	failure     *prometheus.CounterVec
	lastSuccess *prometheus.GaugeVec
}

// Refreshing the summary view over a large history table can take minutes.
var cronBuckets = []float64{0.05, 0.25, 1, 5, 15, 60, 180, 600}

func NewCronJobMetrics(reg prometheus.Registerer) *CronJobMetrics {
	if reg == nil {
		return &CronJobMetrics{}
	}
	m := &CronJobMetrics{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "cron",
			Name:      "job_duration_seconds",
			Help:      "Wall time of one cron job run.",
			Buckets:   cronBuckets,
		}, []string{"job"}),
		success: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cron",
			Name:      "job_success_total",
			Help:      "Cron job runs that returned no error.",
		}, []string{"job"}),
		failure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cron",
			Name:      "job_failure_total",
			Help:      "Cron job runs that returned an error.",
		}, []string{"job"}),
		lastSuccess: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "cron",
			Name:      "job_last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run, for staleness alerts.",
		}, []string{"job"}),
	}
	reg.MustRegister(m.duration, m.success, m.failure, m.lastSuccess)
	return m
}

func (c *CronJobMetrics) ObserveDuration(job string, duration time.Duration) {
	if c == nil || c.duration == nil {
		return
	}
	c.duration.WithLabelValues(normalizeLabel(job)).Observe(duration.Seconds())
}

// IncSuccess counts a successful run and stamps the last-success gauge.
func (c *CronJobMetrics) IncSuccess(job string) {
	if c == nil || c.success == nil {
		return
	}
	c.success.WithLabelValues(normalizeLabel(job)).Inc()
	c.lastSuccess.WithLabelValues(normalizeLabel(job)).SetToCurrentTime()
}

func (c *CronJobMetrics) IncFailure(job string) {
	if c == nil || c.failure == nil {
		return
	}
	c.failure.WithLabelValues(normalizeLabel(job)).Inc()
}

// SuccessCounter exposes the per-job success series, mainly for tests.
func (c *CronJobMetrics) SuccessCounter(job string) prometheus.Counter {
	if c == nil || c.success == nil {
		return prometheus.NewCounter(prometheus.CounterOpts{Name: "discarded"})
	}
	return c.success.WithLabelValues(normalizeLabel(job))
}

func (c *CronJobMetrics) FailureCounter(job string) prometheus.Counter {
	if c == nil || c.failure == nil {
		return prometheus.NewCounter(prometheus.CounterOpts{Name: "discarded"})
	}
	return c.failure.WithLabelValues(normalizeLabel(job))
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
