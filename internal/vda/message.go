//
//
package vda

import (
	"encoding/json"
	"fmt"
	"time"
)

// Identity identifies a robot across the system.
type Identity struct {
	Manufacturer string `json:"manufacturer"`
	Serial       string `json:"serialNumber"`
}

// String returns the "manufacturer/serial" form used in topics and logs.
func (id Identity) String() string {
	return id.Manufacturer + "/" + id.Serial
}

// Kind is the VDA5050 message kind carried on the last topic level.
type Kind string

const (
	KindConnection    Kind = "connection"
	KindState         Kind = "state"
	KindVisualization Kind = "visualization"
)

// Kinds returns all message kinds in their canonical order.
func Kinds() []Kind {
	return []Kind{KindConnection, KindState, KindVisualization}
}

// ParseKind maps a topic token to a message kind.
func ParseKind(token string) (Kind, error) {
	switch Kind(token) {
	case KindConnection, KindState, KindVisualization:
		return Kind(token), nil
	}
	return "", fmt.Errorf("unknown message kind %q", token)
}

// Record is one accepted telemetry update. Payload holds the original
// wire JSON so downstream consumers see exactly what the robot sent.
type Record struct {
	Identity  Identity        `json:"identity"`
	Kind      Kind            `json:"kind"`
	HeaderID  uint64          `json:"headerId"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// Header holds the fields common to every VDA5050 message.
type Header struct {
	HeaderID     uint64 `json:"headerId"`
	Timestamp    string `json:"timestamp"`
	Version      string `json:"version"`
	Manufacturer string `json:"manufacturer"`
	SerialNumber string `json:"serialNumber"`
}

// Connection state values per VDA5050.
const (
	ConnectionOnline  = "ONLINE"
	ConnectionOffline = "OFFLINE"
	ConnectionBroken  = "CONNECTIONBROKEN"
)

// ConnectionMessage reports the robot's broker connection state.
type ConnectionMessage struct {
	Header
	ConnectionState string `json:"connectionState"`
}

// StateMessage reports the robot's operational state.
type StateMessage struct {
	Header
	Driving       bool         `json:"driving"`
	OperatingMode string       `json:"operatingMode"`
	BatteryState  BatteryState `json:"batteryState"`
	Position      Position     `json:"position"`
	Errors        []ErrorEntry `json:"errors"`
	Information   []InfoEntry  `json:"information"`
}

// BatteryState holds the battery charge in percent.
type BatteryState struct {
	BatteryCharge float64 `json:"batteryCharge"`
}

// Position is the robot pose in the plant coordinate system.
type Position struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Theta float64 `json:"theta"`
}

// ErrorEntry is one active robot error.
type ErrorEntry struct {
	ErrorType        string `json:"errorType"`
	ErrorLevel       string `json:"errorLevel,omitempty"`
	ErrorDescription string `json:"errorDescription,omitempty"`
}

// InfoEntry is one informational message from the robot.
type InfoEntry struct {
	InfoType        string `json:"infoType"`
	InfoLevel       string `json:"infoLevel,omitempty"`
	InfoDescription string `json:"infoDescription,omitempty"`
}

// VisualizationMessage carries path data for display.
type VisualizationMessage struct {
	Header
	VisualizationData VisualizationData `json:"visualizationData"`
}

// VisualizationData holds the planned path points.
type VisualizationData struct {
	Path []Point `json:"path"`
}

// Point is one path vertex.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}
