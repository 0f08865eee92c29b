package vda

import (
	"fmt"
	"strings"
	"testing"
	"time"
)

var testIdentity = Identity{Manufacturer: "Acme", Serial: "A1"}

func connectionPayload(headerID uint64, state string) []byte {
	return []byte(fmt.Sprintf(`{
		"headerId": %d,
		"timestamp": "2026-08-28T10:00:00Z",
		"version": "2.0.0",
		"manufacturer": "Acme",
		"serialNumber": "A1",
		"connectionState": %q
	}`, headerID, state))
}

func statePayload(headerID uint64, battery float64) []byte {
	return []byte(fmt.Sprintf(`{
		"headerId": %d,
		"timestamp": "2026-08-28T10:00:00Z",
		"version": "2.0.0",
		"manufacturer": "Acme",
		"serialNumber": "A1",
		"driving": true,
		"operatingMode": "AUTOMATIC",
		"batteryState": {"batteryCharge": %g},
		"position": {"x": 1.5, "y": 2.5, "theta": 90},
		"errors": [],
		"information": []
	}`, headerID, battery))
}

func TestDecodeConnection(t *testing.T) {
	rec, err := Decode(testIdentity, KindConnection, connectionPayload(7, ConnectionOnline))
	if err != nil {
		t.Fatalf("Decode() failed: %v", err)
	}

	if rec.Identity != testIdentity {
		t.Errorf("Expected identity %v, got %v", testIdentity, rec.Identity)
	}
	if rec.Kind != KindConnection {
		t.Errorf("Expected kind connection, got %q", rec.Kind)
	}
	if rec.HeaderID != 7 {
		t.Errorf("Expected headerId 7, got %d", rec.HeaderID)
	}

	want := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	if !rec.Timestamp.Equal(want) {
		t.Errorf("Expected timestamp %v, got %v", want, rec.Timestamp)
	}
	if !strings.Contains(string(rec.Payload), ConnectionOnline) {
		t.Error("Record payload should retain the wire JSON")
	}
}

func TestDecodeState(t *testing.T) {
	rec, err := Decode(testIdentity, KindState, statePayload(3, 87.5))
	if err != nil {
		t.Fatalf("Decode() failed: %v", err)
	}
	if rec.Kind != KindState || rec.HeaderID != 3 {
		t.Errorf("Unexpected record %v", rec)
	}
}

func TestDecodeVisualization(t *testing.T) {
	payload := []byte(`{
		"headerId": 1,
		"timestamp": "2026-08-28T10:00:00Z",
		"version": "2.0.0",
		"manufacturer": "Acme",
		"serialNumber": "A1",
		"visualizationData": {"path": [{"x": 0, "y": 0}, {"x": 1, "y": 1}]}
	}`)

	rec, err := Decode(testIdentity, KindVisualization, payload)
	if err != nil {
		t.Fatalf("Decode() failed: %v", err)
	}
	if rec.Kind != KindVisualization {
		t.Errorf("Expected kind visualization, got %q", rec.Kind)
	}
}

func TestDecodeRejectsMalformedJSON(t *testing.T) {
	if _, err := Decode(testIdentity, KindState, []byte("{not json")); err == nil {
		t.Error("Decode() should reject malformed JSON")
	}
}

func TestDecodeRejectsInvalidConnectionState(t *testing.T) {
	if _, err := Decode(testIdentity, KindConnection, connectionPayload(1, "SLEEPING")); err == nil {
		t.Error("Decode() should reject an unknown connectionState")
	}
}

func TestDecodeRejectsZeroHeaderID(t *testing.T) {
	if _, err := Decode(testIdentity, KindConnection, connectionPayload(0, ConnectionOnline)); err == nil {
		t.Error("Decode() should reject headerId 0")
	}
}

func TestDecodeRejectsBatteryOutOfRange(t *testing.T) {
	if _, err := Decode(testIdentity, KindState, statePayload(1, 140)); err == nil {
		t.Error("Decode() should reject batteryCharge above 100")
	}
	if _, err := Decode(testIdentity, KindState, statePayload(1, -1)); err == nil {
		t.Error("Decode() should reject negative batteryCharge")
	}
}

func TestDecodeRejectsBadTimestamp(t *testing.T) {
	payload := []byte(`{
		"headerId": 1,
		"timestamp": "yesterday",
		"version": "2.0.0",
		"manufacturer": "Acme",
		"serialNumber": "A1",
		"connectionState": "ONLINE"
	}`)
	if _, err := Decode(testIdentity, KindConnection, payload); err == nil {
		t.Error("Decode() should reject an unparseable timestamp")
	}
}

func TestDecodeRejectsMissingHeaderFields(t *testing.T) {
	payload := []byte(`{
		"headerId": 1,
		"timestamp": "2026-08-28T10:00:00Z",
		"connectionState": "ONLINE"
	}`)
	if _, err := Decode(testIdentity, KindConnection, payload); err == nil {
		t.Error("Decode() should reject a payload missing version and identity fields")
	}
}
