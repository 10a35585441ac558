package config

import (
	"fmt"
	"time"

	"github.com/justapithecus/flightlog/lode"
)

// Adapter types.
const (
	AdapterWebhook = "webhook"
	AdapterRedis   = "redis"
)

// Config represents a flightlog.yaml configuration file.
// All values are optional and act as defaults for flightlog analyze flags.
// CLI flags always override config values.
type Config struct {
	Reader            string        `yaml:"reader"`
	Directory         string        `yaml:"directory"`
	Workers           int           `yaml:"workers"`
	MaxSessions       int           `yaml:"max_sessions"`
	MovementThreshold *float64      `yaml:"movement_threshold,omitempty"`
	Pilot             string        `yaml:"pilot"`
	CacheDir          string        `yaml:"cache_dir"`
	LogLevel          string        `yaml:"log_level"`
	Storage           StorageConfig `yaml:"storage"`
	Adapter           AdapterConfig `yaml:"adapter"`
}

// StorageConfig holds report storage defaults from the config file.
type StorageConfig struct {
	Dataset     string `yaml:"dataset"`
	Backend     string `yaml:"backend"`
	Path        string `yaml:"path"`
	Region      string `yaml:"region"`
	Endpoint    string `yaml:"endpoint"`
	S3PathStyle bool   `yaml:"s3_path_style"`
}

// Enabled reports whether report storage is configured.
func (s StorageConfig) Enabled() bool {
	return s.Backend != ""
}

// Options converts the section to dataset options.
func (s StorageConfig) Options() lode.Options {
	return lode.Options{
		Dataset:      s.Dataset,
		Backend:      s.Backend,
		Path:         s.Path,
		Region:       s.Region,
		Endpoint:     s.Endpoint,
		UsePathStyle: s.S3PathStyle,
	}
}

// AdapterConfig holds completion adapter defaults from the config file.
type AdapterConfig struct {
	Type    string            `yaml:"type"`
	URL     string            `yaml:"url"`
	Channel string            `yaml:"channel,omitempty"`
	Headers map[string]string `yaml:"headers,omitempty"`
	Timeout Duration          `yaml:"timeout,omitempty"`
	Retries *int              `yaml:"retries,omitempty"`
}

// Duration wraps time.Duration for YAML string parsing (e.g. "10s", "5m").
type Duration struct {
	time.Duration
}

// UnmarshalYAML parses a duration string like "10s" or "5m30s".
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

// Validate checks value ranges. Errors name the offending key.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("workers: must be >= 0, got %d", c.Workers)
	}
	if c.MaxSessions < 0 {
		return fmt.Errorf("max_sessions: must be >= 0, got %d", c.MaxSessions)
	}
	if c.MovementThreshold != nil && *c.MovementThreshold < 0 {
		return fmt.Errorf("movement_threshold: must be >= 0, got %v", *c.MovementThreshold)
	}
	if c.Storage.Enabled() {
		if err := c.Storage.Options().Validate(); err != nil {
			return fmt.Errorf("storage: %w", err)
		}
	}
	switch c.Adapter.Type {
	case "":
	case AdapterWebhook, AdapterRedis:
		if c.Adapter.URL == "" {
			return fmt.Errorf("adapter.url: required for %s adapter", c.Adapter.Type)
		}
	default:
		return fmt.Errorf("adapter.type: unknown adapter %q (want %s or %s)", c.Adapter.Type, AdapterWebhook, AdapterRedis)
	}
	if c.Adapter.Retries != nil && *c.Adapter.Retries < 0 {
		return fmt.Errorf("adapter.retries: must be >= 0, got %d", *c.Adapter.Retries)
	}
	if c.Adapter.Timeout.Duration < 0 {
		return fmt.Errorf("adapter.timeout: must be positive, got %v", c.Adapter.Timeout.Duration)
	}
	return nil
}
