package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for a commlink agent.
// All configuration is loaded from YAML and can be overridden by
// environment variables.
type Config struct {
	Broker    BrokerConfig    `yaml:"broker"`
	Auth      AuthConfig      `yaml:"auth"`
	Topics    TopicsConfig    `yaml:"topics"`
	Logging   LoggingConfig   `yaml:"logging"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Heartbeat HeartbeatConfig `yaml:"heartbeat"`
}

// BrokerConfig contains MQTT broker connection details.
//
// ClientID doubles as the broker session identifier and the adapter's
// direct-address name. It must be unique per broker namespace: a
// collision causes broker-level session takeover, which the adapter
// neither detects nor prevents.
type BrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	ClientID string `yaml:"client_id"`
	TLS      bool   `yaml:"tls"`

	// CAFile is a path to a PEM-encoded CA certificate, used only
	// when TLS is enabled. CAPEM takes precedence when both are set.
	CAFile string `yaml:"ca_file"`
	CAPEM  string `yaml:"ca_pem"`
}

// AuthConfig contains broker authentication credentials.
// Credentials are attached to the connection only when Username is
// non-empty.
type AuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// TopicsConfig contains the logical addressing settings.
type TopicsConfig struct {
	// Prefix is the namespace root for all adapter topics,
	// e.g. "commlink" yields "commlink/direct/{id}".
	Prefix string `yaml:"prefix"`

	// Categories are the broadcast groups to join on Connect.
	Categories []string `yaml:"categories"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// TelemetryConfig contains InfluxDB traffic-metrics settings.
type TelemetryConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// HeartbeatConfig contains the demo agent's periodic publish settings.
type HeartbeatConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Category string `yaml:"category"`
	Interval int    `yaml:"interval"` // seconds
}

// Load reads configuration from a YAML file and applies environment
// variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: COMMLINK_SECTION_KEY
// For example: COMMLINK_BROKER_HOST, COMMLINK_AUTH_PASSWORD
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	ApplyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns a Config with sensible defaults for a local broker.
func Default() *Config {
	return &Config{
		Broker: BrokerConfig{
			Host: "localhost",
			Port: 1883,
		},
		Topics: TopicsConfig{
			Prefix: "commlink",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Telemetry: TelemetryConfig{
			BatchSize:     100,
			FlushInterval: 10,
		},
		Heartbeat: HeartbeatConfig{
			Category: "status",
			Interval: 60,
		},
	}
}

// ApplyEnvOverrides applies environment variable overrides to the
// configuration. Variables follow the pattern: COMMLINK_SECTION_KEY.
func ApplyEnvOverrides(cfg *Config) {
	// Broker
	if v := os.Getenv("COMMLINK_BROKER_HOST"); v != "" {
		cfg.Broker.Host = v
	}
	if v := os.Getenv("COMMLINK_BROKER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Broker.Port = port
		}
	}
	if v := os.Getenv("COMMLINK_BROKER_CLIENT_ID"); v != "" {
		cfg.Broker.ClientID = v
	}
	if v := os.Getenv("COMMLINK_BROKER_TLS"); v != "" {
		if tls, err := strconv.ParseBool(v); err == nil {
			cfg.Broker.TLS = tls
		}
	}
	if v := os.Getenv("COMMLINK_BROKER_CA_FILE"); v != "" {
		cfg.Broker.CAFile = v
	}
	if v := os.Getenv("COMMLINK_BROKER_CA_PEM"); v != "" {
		cfg.Broker.CAPEM = v
	}

	// Auth
	if v := os.Getenv("COMMLINK_AUTH_USERNAME"); v != "" {
		cfg.Auth.Username = v
	}
	if v := os.Getenv("COMMLINK_AUTH_PASSWORD"); v != "" {
		cfg.Auth.Password = v
	}

	// Topics
	if v := os.Getenv("COMMLINK_TOPICS_PREFIX"); v != "" {
		cfg.Topics.Prefix = v
	}

	// Logging
	if v := os.Getenv("COMMLINK_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("COMMLINK_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("COMMLINK_LOGGING_OUTPUT"); v != "" {
		cfg.Logging.Output = v
	}

	// Telemetry
	if v := os.Getenv("COMMLINK_TELEMETRY_TOKEN"); v != "" {
		cfg.Telemetry.Token = v
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []string

	if c.Broker.Host == "" {
		errs = append(errs, "broker.host is required")
	}
	if c.Broker.Port < 1 || c.Broker.Port > 65535 {
		errs = append(errs, "broker.port must be between 1 and 65535")
	}
	if c.Topics.Prefix == "" {
		errs = append(errs, "topics.prefix is required")
	}

	if c.Telemetry.Enabled {
		if c.Telemetry.URL == "" {
			errs = append(errs, "telemetry.url is required when telemetry is enabled")
		}
		if c.Telemetry.Bucket == "" {
			errs = append(errs, "telemetry.bucket is required when telemetry is enabled")
		}
	}

	if c.Heartbeat.Enabled && c.Heartbeat.Interval < 1 {
		errs = append(errs, "heartbeat.interval must be at least 1 second")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}
