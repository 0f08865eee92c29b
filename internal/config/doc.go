// Package config loads the gateway configuration.
//
// Values resolve in order: built-in baseline, optional YAML file,
// VDAGW_* environment overrides. The final result is validated before
// any component starts.
package config
