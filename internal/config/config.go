//
//
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"
)

// Config is the complete gateway configuration.
type Config struct {
	MQTT    MQTTConfig    `yaml:"mqtt"`
	HTTP    HTTPConfig    `yaml:"http"`
	Stream  StreamConfig  `yaml:"stream"`
	Journal JournalConfig `yaml:"journal"`
}

// MQTTConfig holds broker client settings.
type MQTTConfig struct {
	BrokerURL string `yaml:"brokerUrl"`
	ClientID  string `yaml:"clientId"`
	Namespace string `yaml:"namespace"`
	QoS       int    `yaml:"qos"`
}

// HTTPConfig holds API server settings. The write timeout is zero: the
// server carries long-lived SSE streams.
type HTTPConfig struct {
	Addr           string `yaml:"addr"`
	ReadTimeoutSec int    `yaml:"readTimeoutSec"`
	IdleTimeoutSec int    `yaml:"idleTimeoutSec"`
}

// StreamConfig holds fan-out settings.
type StreamConfig struct {
	// QueueSize bounds each subscriber's private queue; on overflow the
	// oldest queued record is displaced by the newest.
	QueueSize int `yaml:"queueSize"`
	// HeartbeatSec is the idle interval after which a session writes an
	// SSE keepalive comment.
	HeartbeatSec int `yaml:"heartbeatSec"`
}

// JournalConfig holds the accepted-record journal settings.
type JournalConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Path       string `yaml:"path"`
	MaxSizeMB  int    `yaml:"maxSizeMb"`
	MaxBackups int    `yaml:"maxBackups"`
	MaxAgeDays int    `yaml:"maxAgeDays"`
}

// ReadTimeout returns the HTTP read timeout as a duration.
func (h HTTPConfig) ReadTimeout() time.Duration {
	return time.Duration(h.ReadTimeoutSec) * time.Second
}

// IdleTimeout returns the HTTP idle timeout as a duration.
func (h HTTPConfig) IdleTimeout() time.Duration {
	return time.Duration(h.IdleTimeoutSec) * time.Second
}

// Heartbeat returns the stream keepalive interval as a duration.
func (s StreamConfig) Heartbeat() time.Duration {
	return time.Duration(s.HeartbeatSec) * time.Second
}

// Load resolves the configuration. An explicit path is required to
// exist; otherwise the file named by VDAGW_CONFIG, or config.yaml in the
// working directory, is merged when present.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		if env := os.Getenv("VDAGW_CONFIG"); env != "" {
			path, explicit = env, true
		} else {
			path = "config.yaml"
		}
	}

	if err := loadFromFile(cfg, path); err != nil {
		if explicit || !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Default returns the built-in baseline.
func Default() *Config {
	return &Config{
		MQTT: MQTTConfig{
			BrokerURL: "tcp://localhost:1883",
			ClientID:  "vdagw",
			Namespace: "vda5050",
			QoS:       0,
		},
		HTTP: HTTPConfig{
			Addr:           ":8000",
			ReadTimeoutSec: 30,
			IdleTimeoutSec: 120,
		},
		Stream: StreamConfig{
			QueueSize:    100,
			HeartbeatSec: 15,
		},
		Journal: JournalConfig{
			Enabled:    false,
			Path:       "logs/telemetry.jsonl",
			MaxSizeMB:  50,
			MaxBackups: 5,
			MaxAgeDays: 14,
		},
	}
}

// loadFromFile merges a YAML file over the current config.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// applyEnvOverrides applies VDAGW_* environment variables.
func applyEnvOverrides(cfg *Config) {
	cfg.MQTT.BrokerURL = GetEnvVar("VDAGW_MQTT_BROKER_URL", cfg.MQTT.BrokerURL)
	cfg.MQTT.ClientID = GetEnvVar("VDAGW_MQTT_CLIENT_ID", cfg.MQTT.ClientID)
	cfg.MQTT.Namespace = GetEnvVar("VDAGW_MQTT_NAMESPACE", cfg.MQTT.Namespace)
	cfg.MQTT.QoS = GetEnvInt("VDAGW_MQTT_QOS", cfg.MQTT.QoS)

	cfg.HTTP.Addr = GetEnvVar("VDAGW_HTTP_ADDR", cfg.HTTP.Addr)
	cfg.HTTP.ReadTimeoutSec = GetEnvInt("VDAGW_HTTP_READ_TIMEOUT_SEC", cfg.HTTP.ReadTimeoutSec)
	cfg.HTTP.IdleTimeoutSec = GetEnvInt("VDAGW_HTTP_IDLE_TIMEOUT_SEC", cfg.HTTP.IdleTimeoutSec)

	cfg.Stream.QueueSize = GetEnvInt("VDAGW_STREAM_QUEUE_SIZE", cfg.Stream.QueueSize)
	cfg.Stream.HeartbeatSec = GetEnvInt("VDAGW_STREAM_HEARTBEAT_SEC", cfg.Stream.HeartbeatSec)

	cfg.Journal.Enabled = GetEnvBool("VDAGW_JOURNAL_ENABLED", cfg.Journal.Enabled)
	cfg.Journal.Path = GetEnvVar("VDAGW_JOURNAL_PATH", cfg.Journal.Path)
	cfg.Journal.MaxSizeMB = GetEnvInt("VDAGW_JOURNAL_MAX_SIZE_MB", cfg.Journal.MaxSizeMB)
	cfg.Journal.MaxBackups = GetEnvInt("VDAGW_JOURNAL_MAX_BACKUPS", cfg.Journal.MaxBackups)
	cfg.Journal.MaxAgeDays = GetEnvInt("VDAGW_JOURNAL_MAX_AGE_DAYS", cfg.Journal.MaxAgeDays)
}

// GetEnvVar returns the value of an environment variable with a default.
func GetEnvVar(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetEnvInt returns the value of an environment variable as an int with a default.
func GetEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// GetEnvBool returns the value of an environment variable as a bool with a default.
func GetEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
