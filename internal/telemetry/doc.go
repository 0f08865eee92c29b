// Package telemetry implements the broadcast hub for the VDA5050 gateway.
//
// The hub fans each accepted telemetry record out to every registered
// subscription over private bounded queues, so a slow consumer can never
// stall the ingest path or another consumer. Streaming sessions serve one
// SSE consumer each: an initial snapshot, then live updates until
// disconnect.
package telemetry
