package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// FanoutMetrics tracks live collection subscriptions and the snapshots pushed to them.
type FanoutMetrics struct {
	subscriptions  *prometheus.GaugeVec
	snapshots      *prometheus.CounterVec
	queryDuration  *prometheus.HistogramVec
	publishFailure *prometheus.CounterVec
}

func NewFanoutMetrics(reg prometheus.Registerer) *FanoutMetrics {
	if reg == nil {
		return &FanoutMetrics{}
	}
	m := &FanoutMetrics{
		subscriptions: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "store_active_subscriptions",
			Help:      "Open collection subscriptions.",
		}, []string{"collection"}),
		snapshots: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_snapshots_delivered_total",
			Help:      "Snapshots delivered to subscribers.",
		}, []string{"collection"}),
		queryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "store_snapshot_query_seconds",
			Help:      "Time spent loading a collection snapshot.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"collection"}),
		publishFailure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_change_publish_failures_total",
			Help:      "Change signals that could not be published to the bus.",
		}, []string{"collection"}),
	}
	reg.MustRegister(m.subscriptions, m.snapshots, m.queryDuration, m.publishFailure)
	return m
}

func (m *FanoutMetrics) SubscriptionOpened(collection string) {
	if m == nil || m.subscriptions == nil {
		return
	}
	m.subscriptions.WithLabelValues(normalizeLabel(collection)).Inc()
}

func (m *FanoutMetrics) SubscriptionClosed(collection string) {
	if m == nil || m.subscriptions == nil {
		return
	}
	m.subscriptions.WithLabelValues(normalizeLabel(collection)).Dec()
}

func (m *FanoutMetrics) SnapshotDelivered(collection string) {
	if m == nil || m.snapshots == nil {
		return
	}
	m.snapshots.WithLabelValues(normalizeLabel(collection)).Inc()
}

func (m *FanoutMetrics) ObserveQuery(collection string, d time.Duration) {
	if m == nil || m.queryDuration == nil {
		return
	}
	m.queryDuration.WithLabelValues(normalizeLabel(collection)).Observe(d.Seconds())
}

func (m *FanoutMetrics) PublishFailed(collection string) {
	if m == nil || m.publishFailure == nil {
		return
	}
	m.publishFailure.WithLabelValues(normalizeLabel(collection)).Inc()
}
