package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all service configuration.
type Config struct {
	Server    ServerConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
	Fetch     FetchConfig
	Minimap   MinimapDefaults
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8000"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// FetchConfig holds source page fetching configuration.
type FetchConfig struct {
	TimeoutSeconds int   `envconfig:"FETCH_TIMEOUT" default:"15"`
	RetryCount     int   `envconfig:"FETCH_RETRIES" default:"2"`
	MaxBodyBytes   int64 `envconfig:"FETCH_MAX_BODY" default:"10485760"`
}

// MinimapDefaults overrides the library's documented defaults service-wide.
// Zero values mean "keep the documented default"; the overlay file can set
// any subset.
type MinimapDefaults struct {
	File string `envconfig:"MINIMAP_DEFAULTS_FILE" default:""`

	HeightRatio       *float64 `yaml:"heightRatio" ignored:"true"`
	WidthRatio        *float64 `yaml:"widthRatio" ignored:"true"`
	OffsetHeightRatio *float64 `yaml:"offsetHeightRatio" ignored:"true"`
	OffsetWidthRatio  *float64 `yaml:"offsetWidthRatio" ignored:"true"`
	Position          *string  `yaml:"position" ignored:"true"`
	SmoothScroll      *bool    `yaml:"smoothScroll" ignored:"true"`
	SmoothScrollDelay *int     `yaml:"smoothScrollDelay" ignored:"true"`
	DisableFind       *bool    `yaml:"disableFind" ignored:"true"`
	Touch             *bool    `yaml:"touch" ignored:"true"`
	AllowClick        *bool    `yaml:"allowClick" ignored:"true"`
}

// Load loads configuration from environment variables and, when configured,
// merges the YAML defaults overlay.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Minimap.File != "" {
		overlay, err := LoadMinimapDefaults(cfg.Minimap.File)
		if err != nil {
			return nil, err
		}
		overlay.File = cfg.Minimap.File
		cfg.Minimap = overlay
	}
	return &cfg, nil
}

// LoadMinimapDefaults parses a YAML overlay file of minimap defaults.
func LoadMinimapDefaults(path string) (MinimapDefaults, error) {
	var d MinimapDefaults
	data, err := os.ReadFile(path)
	if err != nil {
		return d, fmt.Errorf("failed to read minimap defaults: %w", err)
	}
	if err := yaml.Unmarshal(data, &d); err != nil {
		return d, fmt.Errorf("failed to parse minimap defaults: %w", err)
	}
	return d, nil
}

// LoadOrDefault loads configuration or falls back to defaults.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server:    ServerConfig{Port: "8000", Host: "0.0.0.0"},
		Logging:   LogConfig{Level: "info"},
		RateLimit: RateLimitConfig{RequestsPerSecond: 100, Burst: 200, Enabled: true},
		Fetch:     FetchConfig{TimeoutSeconds: 15, RetryCount: 2, MaxBodyBytes: 10485760},
	}
}
