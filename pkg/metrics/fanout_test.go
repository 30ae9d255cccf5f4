package metrics

import (
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestFanoutMetricsTrackSubscriptions(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewFanoutMetrics(reg)

	m.SubscriptionOpened("orders")
	m.SubscriptionOpened("orders")
	m.SubscriptionClosed("orders")
	m.SnapshotDelivered("orders")
	m.SnapshotDelivered("orders")
	m.ObserveQuery("orders", 3*time.Millisecond)
	m.PublishFailed("notifications")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	mf := findMetricFamily(mfs, "afrifood_store_active_subscriptions")
	if mf == nil || len(mf.GetMetric()) != 1 || mf.GetMetric()[0].GetGauge().GetValue() != 1 {
		t.Fatalf("expected one active orders subscription, got %v", mf)
	}
	if got, err := fetchCounterValue(mfs, "afrifood_store_snapshots_delivered_total", "collection", "orders"); err != nil || got != 2 {
		t.Fatalf("expected 2 snapshots, got %f (%v)", got, err)
	}
	if got, err := fetchCounterValue(mfs, "afrifood_store_change_publish_failures_total", "collection", "notifications"); err != nil || got != 1 {
		t.Fatalf("expected 1 publish failure, got %f (%v)", got, err)
	}
	if got, err := fetchHistogramSum(mfs, "afrifood_store_snapshot_query_seconds", "collection", "orders"); err != nil || got <= 0 {
		t.Fatalf("expected query duration, got %f (%v)", got, err)
	}
}

func TestHTTPMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)
	m.Observe(http.MethodPost, "/api/public/orders", http.StatusCreated, 20*time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "afrifood_http_requests_total", "route", "/api/public/orders"); err != nil || got != 1 {
		t.Fatalf("expected one request, got %f (%v)", got, err)
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var fan *FanoutMetrics
	fan.SubscriptionOpened("orders")
	fan.SnapshotDelivered("orders")

	var cron *CronJobMetrics
	cron.IncSuccess("job")

	NewHTTPMetrics(nil).Observe(http.MethodGet, "", http.StatusOK, time.Millisecond)
}
