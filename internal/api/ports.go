// Ports (interfaces) for API server dependencies.
package api

import (
	"context"
	"net/http"

	"github.com/fleet-control/vdagw/internal/ingest"
	"github.com/fleet-control/vdagw/internal/store"
	"github.com/fleet-control/vdagw/internal/telemetry"
	"github.com/fleet-control/vdagw/internal/vda"
)

// StateReadPort is the minimal interface the API needs from the store.
type StateReadPort interface {
	Snapshot() []store.Snapshot
	SnapshotFor(id vda.Identity) (store.Snapshot, bool)
}

// StreamPort is the minimal interface the API needs from the streamer.
type StreamPort interface {
	ServeAll(ctx context.Context, w http.ResponseWriter) error
	ServeRobot(ctx context.Context, w http.ResponseWriter, id vda.Identity) error
}

// CommandPort is the minimal interface the API needs from the bridge.
type CommandPort interface {
	PublishCommand(id vda.Identity, body []byte) error
}

// Compile-time assertions for port conformance
var _ StateReadPort = (*store.Store)(nil)
var _ StreamPort = (*telemetry.Streamer)(nil)
var _ CommandPort = (*ingest.Bridge)(nil)
