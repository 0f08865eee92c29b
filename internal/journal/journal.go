// Package journal implements the accepted-record journal for the gateway.
//
// The journal appends one JSON line per accepted telemetry record to a
// size-rotated file. It is an operational trace, not a delivery log: a
// write failure is reported to stderr and never propagates to the
// ingest path.
package journal

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/fleet-control/vdagw/internal/config"
	"github.com/fleet-control/vdagw/internal/vda"
)

// Entry is one journal line.
type Entry struct {
	LoggedAt     time.Time       `json:"loggedAt"`
	Manufacturer string          `json:"manufacturer"`
	Serial       string          `json:"serialNumber"`
	Kind         vda.Kind        `json:"kind"`
	HeaderID     uint64          `json:"headerId"`
	Timestamp    time.Time       `json:"timestamp"`
	Payload      json.RawMessage `json:"payload"`
}

// Journal writes accepted records as JSONL with size-based rotation.
// A nil *Journal is valid and records nothing.
type Journal struct {
	mu sync.Mutex
	w  io.WriteCloser
}

// New creates a journal per the configuration. Returns nil when the
// journal is disabled.
func New(cfg config.JournalConfig) *Journal {
	if !cfg.Enabled {
		return nil
	}
	return &Journal{
		w: &lumberjack.Logger{
			Filename:   cfg.Path,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
		},
	}
}

// Record appends one accepted record to the journal.
func (j *Journal) Record(rec vda.Record) {
	if j == nil {
		return
	}

	entry := Entry{
		LoggedAt:     time.Now().UTC(),
		Manufacturer: rec.Identity.Manufacturer,
		Serial:       rec.Identity.Serial,
		Kind:         rec.Kind,
		HeaderID:     rec.HeaderID,
		Timestamp:    rec.Timestamp,
		Payload:      rec.Payload,
	}

	line, err := json.Marshal(entry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to marshal journal entry: %v\n", err)
		return
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	if _, err := j.w.Write(append(line, '\n')); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write journal entry: %v\n", err)
	}
}

// Close closes the underlying file.
func (j *Journal) Close() error {
	if j == nil {
		return nil
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	return j.w.Close()
}
