// Package metrics exposes Prometheus instrumentation for the gateway.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Drop reasons used with MessageDropped.
const (
	ReasonTopic  = "topic"
	ReasonDecode = "decode"
)

// Metrics bundles the gateway's collectors behind nil-safe methods, so
// components can run without instrumentation in tests.
type Metrics struct {
	registry *prometheus.Registry

	received    prometheus.Counter
	dropped     *prometheus.CounterVec
	accepted    *prometheus.CounterVec
	stale       prometheus.Counter
	subscribers prometheus.Gauge
	queueDrops  prometheus.Counter
}

// New creates the gateway collectors on a dedicated registry.
func New() *Metrics {
	received := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vdagw_messages_received_total",
		Help: "Raw messages delivered by the broker.",
	})
	dropped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vdagw_messages_dropped_total",
		Help: "Messages dropped before reaching the store, by reason.",
	}, []string{"reason"})
	accepted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vdagw_records_accepted_total",
		Help: "Records accepted into the store, by kind.",
	}, []string{"kind"})
	stale := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vdagw_records_stale_total",
		Help: "Records rejected by the per-kind headerId floor.",
	})
	subscribers := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "vdagw_stream_subscribers",
		Help: "Currently registered stream subscriptions.",
	})
	queueDrops := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vdagw_stream_queue_dropped_total",
		Help: "Records displaced from saturated subscriber queues.",
	})

	registry := prometheus.NewRegistry()
	registry.MustRegister(received, dropped, accepted, stale, subscribers, queueDrops)

	return &Metrics{
		registry:    registry,
		received:    received,
		dropped:     dropped,
		accepted:    accepted,
		stale:       stale,
		subscribers: subscribers,
		queueDrops:  queueDrops,
	}
}

// Handler returns the exposition endpoint for this registry.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// MessageReceived counts one raw broker delivery.
func (m *Metrics) MessageReceived() {
	if m == nil {
		return
	}
	m.received.Inc()
}

// MessageDropped counts one message discarded before the store.
func (m *Metrics) MessageDropped(reason string) {
	if m == nil {
		return
	}
	m.dropped.WithLabelValues(reason).Inc()
}

// RecordAccepted counts one accepted record.
func (m *Metrics) RecordAccepted(kind string) {
	if m == nil {
		return
	}
	m.accepted.WithLabelValues(kind).Inc()
}

// RecordStale counts one record rejected by the floor check.
func (m *Metrics) RecordStale() {
	if m == nil {
		return
	}
	m.stale.Inc()
}

// SetSubscribers records the current subscription count.
func (m *Metrics) SetSubscribers(n int) {
	if m == nil {
		return
	}
	m.subscribers.Set(float64(n))
}

// QueueDrop counts one record displaced from a full subscriber queue.
func (m *Metrics) QueueDrop() {
	if m == nil {
		return
	}
	m.queueDrops.Inc()
}
