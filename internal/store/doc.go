// Package store holds the authoritative latest telemetry per robot.
package store
