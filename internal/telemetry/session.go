//
//
package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/fleet-control/vdagw/internal/store"
	"github.com/fleet-control/vdagw/internal/vda"
)

// SnapshotSource is the read side of the robot state store a session
// seeds new consumers from.
type SnapshotSource interface {
	Snapshot() []store.Snapshot
	SnapshotFor(id vda.Identity) (store.Snapshot, bool)
}

// Streamer serves SSE streaming sessions against the hub and store.
type Streamer struct {
	hub       *Hub
	source    SnapshotSource
	heartbeat time.Duration
}

// NewStreamer creates a streamer. heartbeat is the idle interval after
// which a keepalive comment is written so intermediaries do not sever
// quiet streams.
func NewStreamer(hub *Hub, source SnapshotSource, heartbeat time.Duration) *Streamer {
	if heartbeat <= 0 {
		heartbeat = 15 * time.Second
	}
	return &Streamer{
		hub:       hub,
		source:    source,
		heartbeat: heartbeat,
	}
}

// ServeAll runs one session delivering every robot's records.
func (s *Streamer) ServeAll(ctx context.Context, w http.ResponseWriter) error {
	snapshot := make([]vda.Record, 0)
	for _, snap := range s.source.Snapshot() {
		snapshot = append(snapshot, snap.Records()...)
	}
	return s.serve(ctx, w, AllRobots(), snapshot)
}

// ServeRobot runs one session scoped to a single robot. An identity the
// store has never seen still gets a stream: the snapshot is empty and
// records arrive once the robot first publishes.
func (s *Streamer) ServeRobot(ctx context.Context, w http.ResponseWriter, id vda.Identity) error {
	snapshot := make([]vda.Record, 0)
	if snap, ok := s.source.SnapshotFor(id); ok {
		snapshot = snap.Records()
	}
	return s.serve(ctx, w, OneRobot(id), snapshot)
}

// serve emits the snapshot, registers with the hub, then relays queued
// records until the consumer disconnects or the hub stops. The snapshot
// is read before registration, so an update racing the window may appear
// in both the snapshot and the queue but can never be lost.
func (s *Streamer) serve(ctx context.Context, w http.ResponseWriter, filter Filter, snapshot []vda.Record) error {
	w.Header().Set("Content-Type", "text/event-stream; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	var eventID int64

	eventID++
	if err := writeEvent(w, eventID, "snapshot", snapshot); err != nil {
		return fmt.Errorf("failed to write snapshot event: %w", err)
	}

	sub := s.hub.Register(filter)
	defer s.hub.Unregister(sub)

	ticker := time.NewTicker(s.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-ticker.C:
			if err := writeKeepalive(w); err != nil {
				return fmt.Errorf("failed to write keepalive: %w", err)
			}

		case rec, ok := <-sub.Records():
			if !ok {
				// Hub shut down.
				return nil
			}
			eventID++
			if err := writeEvent(w, eventID, "update", rec); err != nil {
				return fmt.Errorf("failed to write update event: %w", err)
			}
		}
	}
}

// writeEvent writes one SSE frame and flushes it.
func writeEvent(w http.ResponseWriter, id int64, eventType string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", eventType, err)
	}

	if _, err := fmt.Fprintf(w, "id: %d\nevent: %s\ndata: %s\n\n", id, eventType, payload); err != nil {
		return err
	}

	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
	return nil
}

// writeKeepalive writes an SSE comment line and flushes it.
func writeKeepalive(w http.ResponseWriter) error {
	if _, err := fmt.Fprint(w, ": keepalive\n\n"); err != nil {
		return err
	}
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
	return nil
}
