package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestOrderMetricsRecordsCreationsAndFailures(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewOrderMetrics(reg)
	m.ObserveCreated(3, 40*time.Millisecond)
	m.ObserveCreated(0, 10*time.Millisecond)
	m.IncFailure("INSUFFICIENT_INVENTORY")
	m.IncFailure("")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got := singleCounter(t, mfs, "mes_orders_created_total"); got != 2 {
		t.Fatalf("expected created=2, got %f", got)
	}
	if got := singleCounter(t, mfs, "mes_orders_line_items_total"); got != 3 {
		t.Fatalf("expected line items=3, got %f", got)
	}
	if got, err := fetchCounterValue(mfs, "mes_orders_failures_total", "reason", "INSUFFICIENT_INVENTORY"); err != nil || got != 1 {
		t.Fatalf("expected failure=1, got %f err=%v", got, err)
	}
	if got, err := fetchCounterValue(mfs, "mes_orders_failures_total", "reason", "unknown"); err != nil || got != 1 {
		t.Fatalf("expected unknown failure=1, got %f err=%v", got, err)
	}
}

func TestHTTPMetricsLabelsByRoute(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)
	m.Observe("/api/v1/orders/{orderId}", "GET", 404, 5*time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "mes_http_requests_total", "status", "404"); err != nil || got != 1 {
		t.Fatalf("expected one 404, got %f err=%v", got, err)
	}
	if got, err := fetchHistogramSum(mfs, "mes_http_request_duration_seconds", "route", "/api/v1/orders/{orderId}"); err != nil || got <= 0 {
		t.Fatalf("expected latency sum > 0, got %f err=%v", got, err)
	}
}

func singleCounter(t *testing.T, mfs []*dto.MetricFamily, name string) float64 {
	t.Helper()
	mf := findMetricFamily(mfs, name)
	if mf == nil || len(mf.GetMetric()) != 1 {
		t.Fatalf("metric %q not found", name)
	}
	return mf.GetMetric()[0].GetCounter().GetValue()
}
