package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCountersIncrement(t *testing.T) {
	m := New()

	m.MessageReceived()
	m.MessageReceived()
	m.MessageDropped(ReasonTopic)
	m.MessageDropped(ReasonDecode)
	m.MessageDropped(ReasonDecode)
	m.RecordAccepted("state")
	m.RecordStale()
	m.SetSubscribers(3)
	m.QueueDrop()

	if got := testutil.ToFloat64(m.received); got != 2 {
		t.Errorf("messages_received_total = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.dropped.WithLabelValues(ReasonTopic)); got != 1 {
		t.Errorf("messages_dropped_total{reason=topic} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.dropped.WithLabelValues(ReasonDecode)); got != 2 {
		t.Errorf("messages_dropped_total{reason=decode} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.accepted.WithLabelValues("state")); got != 1 {
		t.Errorf("records_accepted_total{kind=state} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.stale); got != 1 {
		t.Errorf("records_stale_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.subscribers); got != 3 {
		t.Errorf("stream_subscribers = %v, want 3", got)
	}
	if got := testutil.ToFloat64(m.queueDrops); got != 1 {
		t.Errorf("stream_queue_dropped_total = %v, want 1", got)
	}
}

func TestNilMetricsAreNoOps(t *testing.T) {
	var m *Metrics

	// Must not panic.
	m.MessageReceived()
	m.MessageDropped(ReasonTopic)
	m.RecordAccepted("state")
	m.RecordStale()
	m.SetSubscribers(5)
	m.QueueDrop()

	if m.Handler() == nil {
		t.Error("Handler() on nil metrics should still return a handler")
	}
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := New()
	m.MessageReceived()
	m.RecordAccepted("connection")

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("Exposition returned status %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "vdagw_messages_received_total 1") {
		t.Errorf("Exposition missing received counter:\n%s", body)
	}
	if !strings.Contains(body, `vdagw_records_accepted_total{kind="connection"} 1`) {
		t.Errorf("Exposition missing accepted counter:\n%s", body)
	}
}
