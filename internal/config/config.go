// Package config provides configuration for cqlkit sessions and the
// cqlkit CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cqlkit/cqlkit/pkg/types"
)

// Config holds cluster and execution configuration.
type Config struct {
	// Hosts are the Cassandra contact points
	Hosts []string `json:"hosts" yaml:"hosts"`

	// Port is the CQL port
	Port int `json:"port" yaml:"port"`

	// Keyspace is the keyspace statements run against
	Keyspace string `json:"keyspace" yaml:"keyspace"`

	// KeyColumn is the key column name as returned in result rows
	KeyColumn string `json:"key_column" yaml:"key_column"`

	// Consistency is the default consistency level (CQL keyword)
	Consistency string `json:"consistency" yaml:"consistency"`

	// Timeout is the per-request transport timeout
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// Concurrency bounds parallel fan-out statements
	Concurrency int `json:"concurrency" yaml:"concurrency"`

	// BatchSize is the wide-row column page size
	BatchSize int `json:"batch_size" yaml:"batch_size"`
}

// DefaultConfig returns the default configuration for local development.
func DefaultConfig() *Config {
	return &Config{
		Hosts:       []string{"127.0.0.1"},
		Port:        9042,
		Keyspace:    "cqlkit",
		KeyColumn:   "key",
		Consistency: "QUORUM",
		Timeout:     10 * time.Second,
		Concurrency: 4,
		BatchSize:   1000,
	}
}

// DefaultConsistency returns the configured default consistency level.
func (c *Config) DefaultConsistency() types.Consistency {
	return types.ParseConsistency(c.Consistency)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if len(c.Hosts) == 0 {
		return fmt.Errorf("hosts is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.Keyspace == "" {
		return fmt.Errorf("keyspace is required")
	}
	if c.KeyColumn == "" {
		return fmt.Errorf("key_column is required")
	}
	if c.Consistency != "" && types.ParseConsistency(c.Consistency) == types.ConsistencyDefault {
		return fmt.Errorf("invalid consistency: %s", c.Consistency)
	}
	if c.BatchSize < 0 {
		return fmt.Errorf("batch_size must not be negative, got %d", c.BatchSize)
	}
	return nil
}

// LoadFromFile loads configuration from a YAML or JSON file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s", ext)
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables use the CQLKIT_ prefix.
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv("CQLKIT_HOSTS"); v != "" {
		cfg.Hosts = strings.Split(v, ",")
	}
	if v := os.Getenv("CQLKIT_PORT"); v != "" {
		fmt.Sscanf(v, "%d", &cfg.Port)
	}
	if v := os.Getenv("CQLKIT_KEYSPACE"); v != "" {
		cfg.Keyspace = v
	}
	if v := os.Getenv("CQLKIT_KEY_COLUMN"); v != "" {
		cfg.KeyColumn = v
	}
	if v := os.Getenv("CQLKIT_CONSISTENCY"); v != "" {
		cfg.Consistency = v
	}
	if v := os.Getenv("CQLKIT_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Timeout = d
		}
	}
	if v := os.Getenv("CQLKIT_CONCURRENCY"); v != "" {
		fmt.Sscanf(v, "%d", &cfg.Concurrency)
	}
	if v := os.Getenv("CQLKIT_BATCH_SIZE"); v != "" {
		fmt.Sscanf(v, "%d", &cfg.BatchSize)
	}
}
