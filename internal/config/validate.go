//
//
package config

import (
	"fmt"
	"strings"
)

// Validate checks the resolved configuration for values no component can
// run with.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	if cfg.MQTT.BrokerURL == "" {
		return fmt.Errorf("mqtt.brokerUrl must not be empty")
	}
	if !strings.Contains(cfg.MQTT.BrokerURL, "://") {
		return fmt.Errorf("mqtt.brokerUrl %q must include a scheme (e.g. tcp://host:1883)", cfg.MQTT.BrokerURL)
	}
	if cfg.MQTT.ClientID == "" {
		return fmt.Errorf("mqtt.clientId must not be empty")
	}
	if cfg.MQTT.Namespace == "" || strings.ContainsAny(cfg.MQTT.Namespace, "/#+") {
		return fmt.Errorf("mqtt.namespace %q must be a single topic level", cfg.MQTT.Namespace)
	}
	if cfg.MQTT.QoS < 0 || cfg.MQTT.QoS > 2 {
		return fmt.Errorf("mqtt.qos %d out of range 0..2", cfg.MQTT.QoS)
	}

	if cfg.HTTP.Addr == "" {
		return fmt.Errorf("http.addr must not be empty")
	}
	if cfg.HTTP.ReadTimeoutSec < 0 || cfg.HTTP.IdleTimeoutSec < 0 {
		return fmt.Errorf("http timeouts must not be negative")
	}

	if cfg.Stream.QueueSize < 1 {
		return fmt.Errorf("stream.queueSize %d must be at least 1", cfg.Stream.QueueSize)
	}
	if cfg.Stream.HeartbeatSec < 1 {
		return fmt.Errorf("stream.heartbeatSec %d must be at least 1", cfg.Stream.HeartbeatSec)
	}

	if cfg.Journal.Enabled {
		if cfg.Journal.Path == "" {
			return fmt.Errorf("journal.path must not be empty when the journal is enabled")
		}
		if cfg.Journal.MaxSizeMB < 1 {
			return fmt.Errorf("journal.maxSizeMb %d must be at least 1", cfg.Journal.MaxSizeMB)
		}
	}

	return nil
}
