//
//
package api

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fleet-control/vdagw/internal/vda"
)

// maxCommandBody bounds forwarded command payloads.
const maxCommandBody = 1 << 20

// RegisterRoutes registers all v1 endpoints.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	apiV1 := "/api/v1"

	mux.HandleFunc(apiV1+"/health", s.handleHealth)

	mux.HandleFunc(apiV1+"/robots", s.handleRobots)
	mux.HandleFunc(apiV1+"/robots/", s.handleRobotEndpoints)

	mux.HandleFunc(apiV1+"/stream", s.handleStream)
	mux.HandleFunc(apiV1+"/stream/", s.handleStreamRobot)

	if s.metrics != nil {
		mux.Handle("/metrics", s.metrics)
	}
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED",
			"Only GET method is allowed", nil)
		return
	}

	subsystems := map[string]bool{
		"store":    s.state != nil,
		"streamer": s.streamer != nil,
		"bridge":   s.commands != nil,
	}

	status := "ok"
	if !subsystems["store"] || !subsystems["streamer"] {
		status = "degraded"
	}

	uptime := 0.0
	if !s.startTime.IsZero() {
		uptime = time.Since(s.startTime).Seconds()
	}

	health := map[string]interface{}{
		"status":     status,
		"uptimeSec":  uptime,
		"subsystems": subsystems,
	}

	if status == "ok" {
		WriteSuccess(w, health)
	} else {
		WriteError(w, http.StatusServiceUnavailable, "SERVICE_DEGRADED",
			"One or more subsystems are unavailable", health)
	}
}

// handleRobots handles GET /robots
func (s *Server) handleRobots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED",
			"Only GET method is allowed", nil)
		return
	}

	if s.state == nil {
		WriteError(w, http.StatusServiceUnavailable, "UNAVAILABLE",
			"State store not available", nil)
		return
	}

	snapshots := s.state.Snapshot()
	WriteSuccess(w, map[string]interface{}{"robots": snapshots})
}

// handleRobotEndpoints routes /robots/{manufacturer}/{serial}[/command].
func (s *Server) handleRobotEndpoints(w http.ResponseWriter, r *http.Request) {
	id, rest, ok := extractIdentity(r.URL.Path, "/api/v1/robots/")
	if !ok {
		WriteError(w, http.StatusBadRequest, "BAD_REQUEST",
			"Path must be /robots/{manufacturer}/{serial}", nil)
		return
	}

	switch rest {
	case "":
		s.handleRobotByID(w, r, id)
	case "command":
		s.handleRobotCommand(w, r, id)
	default:
		WriteError(w, http.StatusNotFound, "NOT_FOUND", "Unknown robot endpoint", nil)
	}
}

// handleRobotByID handles GET /robots/{manufacturer}/{serial}
func (s *Server) handleRobotByID(w http.ResponseWriter, r *http.Request, id vda.Identity) {
	if r.Method != http.MethodGet {
		WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED",
			"Only GET method is allowed", nil)
		return
	}

	if s.state == nil {
		WriteError(w, http.StatusServiceUnavailable, "UNAVAILABLE",
			"State store not available", nil)
		return
	}

	snap, found := s.state.SnapshotFor(id)
	if !found {
		WriteError(w, http.StatusNotFound, "NOT_FOUND", "Robot not found", nil)
		return
	}

	WriteSuccess(w, snap)
}

// handleRobotCommand handles POST /robots/{manufacturer}/{serial}/command
func (s *Server) handleRobotCommand(w http.ResponseWriter, r *http.Request, id vda.Identity) {
	if r.Method != http.MethodPost {
		WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED",
			"Only POST method is allowed", nil)
		return
	}

	if s.commands == nil {
		WriteError(w, http.StatusServiceUnavailable, "UNAVAILABLE",
			"Command forwarding not available", nil)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxCommandBody))
	if err != nil || len(body) == 0 {
		WriteError(w, http.StatusBadRequest, "BAD_REQUEST",
			"Command body is required", nil)
		return
	}

	if err := s.commands.PublishCommand(id, body); err != nil {
		WriteError(w, http.StatusServiceUnavailable, "UNAVAILABLE",
			"Failed to forward command", map[string]string{"error": err.Error()})
		return
	}

	WriteSuccess(w, map[string]string{"robot": id.String(), "status": "published"})
}

// handleStream handles GET /stream (SSE, all robots)
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED",
			"Only GET method is allowed", nil)
		return
	}

	if s.streamer == nil {
		WriteError(w, http.StatusServiceUnavailable, "UNAVAILABLE",
			"Streaming not available", nil)
		return
	}

	// Blocks until the consumer disconnects. Session errors are write
	// failures to a gone consumer; there is nobody left to report to.
	_ = s.streamer.ServeAll(r.Context(), w)
}

// handleStreamRobot handles GET /stream/{manufacturer}/{serial} (SSE)
func (s *Server) handleStreamRobot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED",
			"Only GET method is allowed", nil)
		return
	}

	id, rest, ok := extractIdentity(r.URL.Path, "/api/v1/stream/")
	if !ok || rest != "" {
		WriteError(w, http.StatusBadRequest, "BAD_REQUEST",
			"Path must be /stream/{manufacturer}/{serial}", nil)
		return
	}

	if s.streamer == nil {
		WriteError(w, http.StatusServiceUnavailable, "UNAVAILABLE",
			"Streaming not available", nil)
		return
	}

	_ = s.streamer.ServeRobot(r.Context(), w, id)
}

// extractIdentity parses {manufacturer}/{serial} after the prefix and
// returns any remaining path segment.
func extractIdentity(path, prefix string) (vda.Identity, string, bool) {
	if !strings.HasPrefix(path, prefix) {
		return vda.Identity{}, "", false
	}

	parts := strings.Split(strings.Trim(path[len(prefix):], "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return vda.Identity{}, "", false
	}

	id := vda.Identity{Manufacturer: parts[0], Serial: parts[1]}
	rest := strings.Join(parts[2:], "/")
	return id, rest, true
}
