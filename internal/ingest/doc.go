// Package ingest bridges the MQTT broker into the gateway.
//
// The broker client invokes the message handler from its own delivery
// goroutines. The bridge parses the topic, decodes and validates the
// payload, applies the record to the store, and publishes accepted
// records to the broadcast hub. Malformed external input is dropped and
// counted, never fatal.
package ingest
