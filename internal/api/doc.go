// Package api implements the HTTP gateway surface.
//
// It exposes robot snapshot reads, SSE streaming endpoints, command
// forwarding to robots, health, and Prometheus metrics, translating
// HTTP requests into store, streamer, and bridge calls.
package api
