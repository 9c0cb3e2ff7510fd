// Package config loads service configuration from the environment.
package config

import "time"

// Config is the complete service configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Storage  StorageConfig  `mapstructure:"storage"`
	OpenAI   OpenAIConfig   `mapstructure:"openai"`
	Security SecurityConfig `mapstructure:"security"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig points at the Postgres instance holding quiz_data.
type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

// StorageConfig configures the S3 bucket and which hosts images may be
// fetched from for upload.
type StorageConfig struct {
	Region             string   `mapstructure:"region"`
	Bucket             string   `mapstructure:"bucket"`
	AllowedSourceHosts []string `mapstructure:"-"`
}

// OpenAIConfig configures the upstream generation API.
type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

// SecurityConfig configures the gate: origin allow-list, pre-shared API
// key, and the rate-limit window.
type SecurityConfig struct {
	APISecret       string        `mapstructure:"api_secret"`
	AllowedOrigins  []string      `mapstructure:"-"`
	RateLimitWindow time.Duration `mapstructure:"rate_limit_window"`
	RateLimitMax    int           `mapstructure:"rate_limit_max"`

	// GeneratedSecret is true when no API secret was configured and a
	// random one was generated for this process. Cross-origin callers
	// cannot know a generated secret, so it should be treated as a
	// misconfiguration outside local development.
	GeneratedSecret bool `mapstructure:"-"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}
