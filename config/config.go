// Package config provides configuration loading and management for semconv.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Repository backends.
const (
	BackendMemory = "memory"
	BackendNATS   = "nats"
)

// Config represents the complete semconv configuration
type Config struct {
	Repository RepositoryConfig `yaml:"repository"`
	NATS       NATSConfig       `yaml:"nats"`
	Reporting  ReportingConfig  `yaml:"reporting"`
	Metrics    MetricsConfig    `yaml:"metrics"`

	// BaseDir is the directory relative fixture patterns are resolved
	// against. The loader sets it to the directory of the project config.
	BaseDir string `yaml:"-"`
}

// RepositoryConfig selects where records are read from
type RepositoryConfig struct {
	// Backend is "memory" (records from fixture files) or "nats" (KV buckets)
	Backend string `yaml:"backend"`
	// Fixtures are glob patterns of YAML record files; ** is supported
	Fixtures []string `yaml:"fixtures"`
	// EntityBucket is the KV bucket holding entities
	EntityBucket string `yaml:"entity_bucket"`
	// RelationshipBucket is the KV bucket holding relationships
	RelationshipBucket string `yaml:"relationship_bucket"`
	// WatchDebounce is how long the fixture watcher waits for more changes
	WatchDebounce time.Duration `yaml:"watch_debounce"`
}

// NATSConfig configures the NATS connection
type NATSConfig struct {
	// URL is the NATS server URL, comma separated for a cluster
	URL string `yaml:"url"`
}

// ReportingConfig configures where projection failures go
type ReportingConfig struct {
	// Quiet disables logging of failure reports
	Quiet bool `yaml:"quiet"`
	// Publish sends failure reports to NATS
	Publish bool `yaml:"publish"`
	// Subject is the NATS subject for failure reports
	Subject string `yaml:"subject"`
}

// MetricsConfig configures the Prometheus endpoint
type MetricsConfig struct {
	// Addr is the listen address for /metrics (empty = disabled)
	Addr string `yaml:"addr"`
	// Namespace prefixes every metric name
	Namespace string `yaml:"namespace"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Repository: RepositoryConfig{
			Backend:            BackendMemory,
			Fixtures:           []string{"fixtures/**/*.yaml"},
			EntityBucket:       "SEMCONV_ENTITIES",
			RelationshipBucket: "SEMCONV_RELATIONSHIPS",
			WatchDebounce:      200 * time.Millisecond,
		},
		NATS: NATSConfig{
			URL: "nats://localhost:4222",
		},
		Reporting: ReportingConfig{
			Subject: "semconv.projection.failure",
		},
		Metrics: MetricsConfig{
			Addr:      "",
			Namespace: "semconv",
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	switch c.Repository.Backend {
	case BackendMemory:
		if len(c.Repository.Fixtures) == 0 {
			return fmt.Errorf("repository.fixtures is required for the memory backend")
		}
	case BackendNATS:
		if c.Repository.EntityBucket == "" || c.Repository.RelationshipBucket == "" {
			return fmt.Errorf("repository buckets are required for the nats backend")
		}
	default:
		return fmt.Errorf("repository.backend must be %q or %q, got %q", BackendMemory, BackendNATS, c.Repository.Backend)
	}
	if c.Repository.WatchDebounce < 0 {
		return fmt.Errorf("repository.watch_debounce must not be negative")
	}
	if c.NeedsNATS() && c.NATS.URL == "" {
		return fmt.Errorf("nats.url is required")
	}
	if c.Reporting.Publish && c.Reporting.Subject == "" {
		return fmt.Errorf("reporting.subject is required when publishing")
	}
	return nil
}

// NeedsNATS reports whether the configuration requires a NATS connection.
func (c *Config) NeedsNATS() bool {
	return c.Repository.Backend == BackendNATS || c.Reporting.Publish
}

// FixturePatterns returns the fixture patterns with relative patterns
// resolved against BaseDir.
func (c *Config) FixturePatterns() []string {
	patterns := make([]string, len(c.Repository.Fixtures))
	for i, p := range c.Repository.Fixtures {
		if c.BaseDir != "" && !filepath.IsAbs(p) {
			p = filepath.Join(c.BaseDir, p)
		}
		patterns[i] = p
	}
	return patterns
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Repository
	if other.Repository.Backend != "" {
		c.Repository.Backend = other.Repository.Backend
	}
	if len(other.Repository.Fixtures) > 0 {
		c.Repository.Fixtures = other.Repository.Fixtures
	}
	if other.Repository.EntityBucket != "" {
		c.Repository.EntityBucket = other.Repository.EntityBucket
	}
	if other.Repository.RelationshipBucket != "" {
		c.Repository.RelationshipBucket = other.Repository.RelationshipBucket
	}
	if other.Repository.WatchDebounce != 0 {
		c.Repository.WatchDebounce = other.Repository.WatchDebounce
	}

	// NATS
	if other.NATS.URL != "" {
		c.NATS.URL = other.NATS.URL
	}

	// Reporting
	if other.Reporting.Quiet {
		c.Reporting.Quiet = true
	}
	if other.Reporting.Publish {
		c.Reporting.Publish = true
	}
	if other.Reporting.Subject != "" {
		c.Reporting.Subject = other.Reporting.Subject
	}

	// Metrics
	if other.Metrics.Addr != "" {
		c.Metrics.Addr = other.Metrics.Addr
	}
	if other.Metrics.Namespace != "" {
		c.Metrics.Namespace = other.Metrics.Namespace
	}

	if other.BaseDir != "" {
		c.BaseDir = other.BaseDir
	}
}
