// Package vda defines the VDA5050 message subset carried by the gateway:
// robot identities, message kinds, topic layout, and payload decoding.
package vda
