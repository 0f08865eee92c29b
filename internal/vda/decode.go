//
//
package vda

import (
	"encoding/json"
	"fmt"
	"time"
)

// Decode validates a raw payload against the schema for the given kind
// and builds the telemetry record. The payload's own headerId and
// timestamp are the source of truth; the gateway never invents sequence
// numbers. The raw bytes are retained on the record for delivery.
func Decode(id Identity, kind Kind, payload []byte) (Record, error) {
	var header Header

	switch kind {
	case KindConnection:
		var msg ConnectionMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			return Record{}, fmt.Errorf("connection payload: %w", err)
		}
		switch msg.ConnectionState {
		case ConnectionOnline, ConnectionOffline, ConnectionBroken:
		default:
			return Record{}, fmt.Errorf("connection payload: invalid connectionState %q", msg.ConnectionState)
		}
		header = msg.Header

	case KindState:
		var msg StateMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			return Record{}, fmt.Errorf("state payload: %w", err)
		}
		if c := msg.BatteryState.BatteryCharge; c < 0 || c > 100 {
			return Record{}, fmt.Errorf("state payload: batteryCharge %.1f out of range", c)
		}
		header = msg.Header

	case KindVisualization:
		var msg VisualizationMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			return Record{}, fmt.Errorf("visualization payload: %w", err)
		}
		header = msg.Header

	default:
		return Record{}, fmt.Errorf("unknown message kind %q", kind)
	}

	ts, err := validateHeader(header)
	if err != nil {
		return Record{}, fmt.Errorf("%s payload: %w", kind, err)
	}

	raw := make(json.RawMessage, len(payload))
	copy(raw, payload)

	return Record{
		Identity:  id,
		Kind:      kind,
		HeaderID:  header.HeaderID,
		Timestamp: ts,
		Payload:   raw,
	}, nil
}

// validateHeader checks the fields common to all kinds and parses the
// timestamp. HeaderID zero is rejected: the VDA5050 counters start at 1
// and zero is indistinguishable from an absent field.
func validateHeader(h Header) (time.Time, error) {
	if h.HeaderID == 0 {
		return time.Time{}, fmt.Errorf("missing or zero headerId")
	}
	if h.Version == "" {
		return time.Time{}, fmt.Errorf("missing version")
	}
	if h.Manufacturer == "" || h.SerialNumber == "" {
		return time.Time{}, fmt.Errorf("missing manufacturer or serialNumber")
	}

	ts, err := time.Parse(time.RFC3339, h.Timestamp)
	if err != nil {
		return time.Time{}, fmt.Errorf("timestamp %q: %w", h.Timestamp, err)
	}
	return ts.UTC(), nil
}
