// Package config handles TOML configuration loading with sensible defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config is the top-level configuration for awscheck. Everything in it can
// also be set per-run on the command line; the file only supplies defaults.
type Config struct {
	AWS       AWSConfig       `toml:"aws"`
	Log       LogConfig       `toml:"log"`
	GuardDuty GuardDutyConfig `toml:"guardduty"`
}

// AWSConfig carries client session defaults applied when the matching
// flags are unset.
type AWSConfig struct {
	Region  string `toml:"region"`
	Profile string `toml:"profile"`
}

// LogConfig controls diagnostic logging.
type LogConfig struct {
	Level string `toml:"level"`
}

// GuardDutyConfig tunes the findings check.
type GuardDutyConfig struct {
	NoiseFilters []NoiseFilter `toml:"noise_filters"`
}

// NoiseFilter suppresses findings by exact type and, optionally, network
// connection direction. Filtered findings are dropped before banding, the
// same way archived findings are.
type NoiseFilter struct {
	FindingType         string `toml:"finding_type"`
	ConnectionDirection string `toml:"connection_direction"`
}

// Match reports whether a finding with the given type and connection
// direction hits this filter. An empty ConnectionDirection matches any
// direction.
func (f NoiseFilter) Match(findingType, direction string) bool {
	if f.FindingType != findingType {
		return false
	}
	return f.ConnectionDirection == "" || strings.EqualFold(f.ConnectionDirection, direction)
}

// Default returns a Config with sensible defaults. The stock noise filter
// drops inbound hits against custom threat lists: those findings mirror the
// list's own contents rather than new activity.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level: "error",
		},
		GuardDuty: GuardDutyConfig{
			NoiseFilters: []NoiseFilter{
				{
					FindingType:         "UnauthorizedAccess:EC2/MaliciousIPCaller.Custom",
					ConnectionDirection: "INBOUND",
				},
			},
		},
	}
}

// DefaultPath returns the default config file path.
func DefaultPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(configDir, "awscheck", "config.toml")
}

// Load reads configuration from the given path, falling back to defaults
// for any unset fields. If the file does not exist, returns defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}
