package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rustyeddy/proptrack/account"
	"gopkg.in/yaml.v3"
)

// Environment variables that override file settings.
const (
	EnvStorageType = "PROPTRACK_STORAGE_TYPE"
	EnvStoragePath = "PROPTRACK_STORAGE_PATH"
	EnvLogLevel    = "PROPTRACK_LOG_LEVEL"
	EnvTimezone    = "PROPTRACK_TIMEZONE"
	EnvMetricsAddr = "PROPTRACK_METRICS_ADDR"
)

// Config represents the complete tracker configuration
type Config struct {
	Storage   StorageConfig  `json:"storage" yaml:"storage"`
	Log       LogConfig      `json:"log" yaml:"log"`
	Metrics   MetricsConfig  `json:"metrics" yaml:"metrics"`
	Defaults  DefaultsConfig `json:"defaults" yaml:"defaults"`
	Challenge account.Rules  `json:"challenge" yaml:"challenge"`
}

// StorageConfig selects the account repository.
type StorageConfig struct {
	Type string `json:"type" yaml:"type"` // "bolt" or "sqlite"
	Path string `json:"path" yaml:"path"`
}

type LogConfig struct {
	Level  string `json:"level" yaml:"level"`
	Pretty bool   `json:"pretty" yaml:"pretty"`
}

type MetricsConfig struct {
	Addr string `json:"addr" yaml:"addr"`
}

// DefaultsConfig holds values applied when the user gives none.
type DefaultsConfig struct {
	PersonalAccountSize float64 `json:"personal_account_size" yaml:"personal_account_size"`
	Timezone            string  `json:"timezone" yaml:"timezone"`
}

// LoadFromFile loads configuration from a file (YAML or JSON), then applies
// an optional .env file and PROPTRACK_* environment overrides.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Load reads path when it exists and otherwise starts from Default. The
// environment is applied either way.
func Load(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return LoadFromFile(path)
		}
	}
	cfg := Default()
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ApplyEnv loads ./.env if present and overrides fields from the
// PROPTRACK_* variables that are set.
func (c *Config) ApplyEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	if v := os.Getenv(EnvStorageType); v != "" {
		c.Storage.Type = v
	}
	if v := os.Getenv(EnvStoragePath); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv(EnvTimezone); v != "" {
		c.Defaults.Timezone = v
	}
	if v := os.Getenv(EnvMetricsAddr); v != "" {
		c.Metrics.Addr = v
	}
	return nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Storage.Type != "bolt" && c.Storage.Type != "sqlite" {
		return fmt.Errorf("storage.type must be 'bolt' or 'sqlite'")
	}
	if c.Storage.Path == "" {
		return fmt.Errorf("storage.path is required")
	}
	switch strings.ToLower(c.Log.Level) {
	case "", "trace", "debug", "info", "warn", "error", "disabled":
	default:
		return fmt.Errorf("unknown log.level: %s", c.Log.Level)
	}
	if c.Defaults.PersonalAccountSize <= 0 {
		return fmt.Errorf("defaults.personal_account_size must be positive")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("defaults.timezone: %w", err)
	}
	if err := c.Challenge.Validate(); err != nil {
		return fmt.Errorf("challenge: %w", err)
	}
	return nil
}

// Location resolves the timezone that decides which calendar day is today.
func (c *Config) Location() (*time.Location, error) {
	if c.Defaults.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.Defaults.Timezone)
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			Type: "bolt",
			Path: "./proptrack.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Metrics: MetricsConfig{
			Addr: ":9090",
		},
		Defaults: DefaultsConfig{
			PersonalAccountSize: account.DefaultPersonalSize,
			Timezone:            "UTC",
		},
		Challenge: account.Rules{
			AccountSize:           100000,
			ProfitTarget:          10000,
			MaxDailyDrawdownPct:   5,
			MaxOverallDrawdownPct: 10,
			DrawdownType:          account.Static,
			MinTradingDays:        4,
		},
	}
}
