// Package config loads aquascope configuration: built-in defaults, then an
// optional YAML file, then AQUASCOPE_* environment overrides, in that
// order of precedence.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all aquascope configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Uploads   UploadsConfig   `yaml:"uploads"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Chemistry ChemistryConfig `yaml:"chemistry"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	CORSOrigins     []string      `yaml:"cors_origins"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DatabaseConfig points at the SQLite file.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// AuthConfig configures token issuance.
type AuthConfig struct {
	// Secret signs JWT access tokens. Required outside of tests.
	Secret string `yaml:"secret"`
	// TokenTTL is how long an access token stays valid.
	TokenTTL time.Duration `yaml:"token_ttl"`
	// RegistrationEnabled is the default for the registration_enabled
	// app setting when the database has none.
	RegistrationEnabled bool `yaml:"registration_enabled"`
}

// UploadsConfig configures photo storage.
type UploadsConfig struct {
	Dir               string   `yaml:"dir"`
	MaxUploadBytes    int64    `yaml:"max_upload_bytes"`
	AllowedExtensions []string `yaml:"allowed_extensions"`
}

// LoggingConfig configures zap.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// SchedulerConfig configures the background sweep.
type SchedulerConfig struct {
	Enabled bool `yaml:"enabled"`
	// SweepSpec is a cron expression for the consumable/reminder sweep.
	SweepSpec string `yaml:"sweep_spec"`
}

// ChemistryConfig tunes the calculators.
type ChemistryConfig struct {
	// RatioPairWindow is how far apart two readings may be taken and
	// still count as one ratio observation.
	RatioPairWindow time.Duration `yaml:"ratio_pair_window"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Path: "aquascope.db",
		},
		Auth: AuthConfig{
			TokenTTL:            30 * time.Minute,
			RegistrationEnabled: true,
		},
		Uploads: UploadsConfig{
			Dir:               "uploads",
			MaxUploadBytes:    10 << 20,
			AllowedExtensions: []string{"jpg", "jpeg", "png", "gif", "webp"},
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
		Scheduler: SchedulerConfig{
			Enabled:   true,
			SweepSpec: "0 3 * * *",
		},
		Chemistry: ChemistryConfig{
			RatioPairWindow: 24 * time.Hour,
		},
	}
}

// Load reads configuration from path (ignored when empty or missing) on
// top of defaults, then applies environment overrides and validates.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Missing file means defaults + env only.
		case err != nil:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("AQUASCOPE_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("AQUASCOPE_DB"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("AQUASCOPE_SECRET"); v != "" {
		c.Auth.Secret = v
	}
	if v := os.Getenv("AQUASCOPE_TOKEN_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Auth.TokenTTL = d
		}
	}
	if v := os.Getenv("AQUASCOPE_UPLOAD_DIR"); v != "" {
		c.Uploads.Dir = v
	}
	if v := os.Getenv("AQUASCOPE_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("AQUASCOPE_CORS_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		c.Server.CORSOrigins = origins
	}
	if v := os.Getenv("AQUASCOPE_METRICS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Metrics.Enabled = b
		}
	}
}

// Validate rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr must not be empty")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth.token_ttl must be positive, got %s", c.Auth.TokenTTL)
	}
	if c.Uploads.MaxUploadBytes <= 0 {
		return fmt.Errorf("uploads.max_upload_bytes must be positive")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug|info|warn|error, got %q", c.Logging.Level)
	}
	if c.Chemistry.RatioPairWindow <= 0 {
		return fmt.Errorf("chemistry.ratio_pair_window must be positive")
	}
	return nil
}

// AllowedExtension reports whether a filename extension (without dot,
// case-insensitive) may be uploaded.
func (c *UploadsConfig) AllowedExtension(ext string) bool {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	for _, e := range c.AllowedExtensions {
		if e == ext {
			return true
		}
	}
	return false
}
