//
//
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Server is the HTTP API server.
type Server struct {
	httpServer  *http.Server
	state       StateReadPort
	streamer    StreamPort
	commands    CommandPort
	metrics     http.Handler
	startTime   time.Time
	readTimeout time.Duration
	idleTimeout time.Duration
}

// NewServer creates an API server. metricsHandler may be nil to disable
// the exposition endpoint; commands may be nil when no broker client is
// wired (command requests then report UNAVAILABLE).
func NewServer(state StateReadPort, streamer StreamPort, commands CommandPort, metricsHandler http.Handler, readTimeout, idleTimeout time.Duration) *Server {
	return &Server{
		state:       state,
		streamer:    streamer,
		commands:    commands,
		metrics:     metricsHandler,
		startTime:   time.Now(),
		readTimeout: readTimeout,
		idleTimeout: idleTimeout,
	}
}

// Start runs the HTTP server until Stop is called. The write timeout is
// deliberately zero: SSE sessions hold their response open indefinitely.
func (s *Server) Start(addr string) error {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)

	s.httpServer = &http.Server{
		Addr:        addr,
		Handler:     mux,
		ReadTimeout: s.readTimeout,
		IdleTimeout: s.idleTimeout,
	}

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Stop gracefully stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}
	return nil
}
