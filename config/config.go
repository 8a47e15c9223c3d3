// Package config provides YAML configuration parsing for the driftwatch CLI.
//
// This package enables running driftwatch as a standalone binary with a
// configuration file, as an alternative to the programmatic SDK approach.
//
// Example configuration:
//
//	base_url: https://feed.driftwatch.dev
//	api_key: ${DRIFTWATCH_API_KEY:-}
//	timeout: 15s
//	interval: 5m
//
//	tags: [security]
//	buckets: [new, updated, flagged]
package config

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// minInterval is the minimum allowed watch interval. This prevents
// accidental DoS of the feed service with overly aggressive polling.
const minInterval = 1 * time.Second

// Config is the root configuration structure for the driftwatch CLI.
//
// It maps directly to the YAML configuration file structure.
// Use [Load] or [Parse] to create a Config from YAML.
type Config struct {
	// BaseURL is the feed service origin. Empty means the SDK default.
	// Supports environment variable substitution: ${VAR} or ${VAR:-default}
	BaseURL string `yaml:"base_url"`

	// APIKey is the API key for elevated service tiers.
	// Values support environment variable substitution.
	APIKey string `yaml:"api_key"`

	// Timeout is the per-request timeout. Empty means the SDK default (15s).
	Timeout Duration `yaml:"timeout"`

	// CursorFile is an explicit cursor document path.
	// Values support environment variable substitution.
	CursorFile string `yaml:"cursor_file"`

	// MemoryCursors disables cursor persistence entirely.
	// Mutually exclusive with CursorFile.
	MemoryCursors bool `yaml:"memory_cursors"`

	// Interval is the time between watch cycles. Empty means the interval
	// is derived from the server-advertised TTL.
	Interval Duration `yaml:"interval"`

	// Source targets a per-source feed instead of the global feed.
	Source string `yaml:"source"`

	// Buckets restricts results to the given change buckets
	// (new, updated, removed, flagged). Empty means the default set,
	// which excludes removed.
	Buckets []string `yaml:"buckets"`

	// Sources restricts results to items from the given source ids.
	Sources []string `yaml:"sources"`

	// Tags restricts results to items whose source carries one of the
	// given tags.
	Tags []string `yaml:"tags"`
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part (if present, indicates a default was specified)
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with
// environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		// already have an error, skip processing
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		// submatches[2] is ":-..." (non-empty if default syntax was used)
		// submatches[3] is the actual default value (may be empty for ${VAR:-})
		hasDefault := len(submatches) > 2 && submatches[2] != ""
		defaultVal := ""
		if hasDefault && len(submatches) > 3 {
			defaultVal = submatches[3]
		}

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return defaultVal
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Load reads and parses a YAML configuration file.
//
// Environment variables in the file are expanded before validation.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration data.
//
// Environment variables are expanded in BaseURL, APIKey, and CursorFile.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.expandAndValidate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// validBuckets are the bucket names accepted in the buckets list.
var validBuckets = map[string]bool{
	"new":     true,
	"updated": true,
	"removed": true,
	"flagged": true,
}

// expandAndValidate expands environment variables and validates the config.
func (c *Config) expandAndValidate() error {
	if c.BaseURL != "" {
		expanded, err := expandEnvVars(c.BaseURL)
		if err != nil {
			return fmt.Errorf("base_url: %w", err)
		}
		c.BaseURL = expanded

		parsed, err := url.Parse(c.BaseURL)
		if err != nil {
			return fmt.Errorf("invalid base_url: %w", err)
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			return fmt.Errorf("base_url scheme must be http or https, got %q", parsed.Scheme)
		}
	}

	expanded, err := expandEnvVars(c.APIKey)
	if err != nil {
		return fmt.Errorf("api_key: %w", err)
	}
	c.APIKey = expanded

	expanded, err = expandEnvVars(c.CursorFile)
	if err != nil {
		return fmt.Errorf("cursor_file: %w", err)
	}
	c.CursorFile = expanded

	if c.MemoryCursors && c.CursorFile != "" {
		return fmt.Errorf("memory_cursors and cursor_file are mutually exclusive")
	}

	if c.Timeout != 0 && c.Timeout.Duration() < time.Second {
		return fmt.Errorf("timeout must be at least 1s if specified, got %s", c.Timeout.Duration())
	}

	if c.Interval != 0 && c.Interval.Duration() < minInterval {
		return fmt.Errorf("interval must be at least %s, got %s", minInterval, c.Interval.Duration())
	}

	for _, b := range c.Buckets {
		if !validBuckets[b] {
			return fmt.Errorf("unknown bucket %q (expected new, updated, removed, or flagged)", b)
		}
	}

	return nil
}
