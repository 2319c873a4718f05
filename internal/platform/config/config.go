// Package config loads application configuration from environment variables.
// All variables use the QUIZ_ prefix.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Data sources for course and quiz documents.
const (
	SourceFile     = "file"
	SourceHTTP     = "http"
	SourcePostgres = "postgres"
)

// DefaultBaseURL is used by the http source when QUIZ_DATA_BASE_URL is unset.
const DefaultBaseURL = "http://localhost:3000"

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Data     DataConfig
	Database DatabaseConfig
	Cache    CacheConfig
	Session  SessionConfig
	Locale   LocaleConfig
	Log      LogConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int
	Host string
}

// DataConfig selects where course and quiz documents come from.
type DataConfig struct {
	Source  string // "file", "http" or "postgres"
	Dir     string
	BaseURL string
}

// DatabaseConfig holds PostgreSQL connection settings. An empty URL runs
// without a database.
type DatabaseConfig struct {
	URL      string
	MaxConns int
	MinConns int
}

// CacheConfig holds Redis connection settings. An empty URL disables the
// document cache.
type CacheConfig struct {
	URL string
	TTL time.Duration
}

// SessionConfig holds quiz session settings.
type SessionConfig struct {
	IdleTTL      time.Duration
	SoundDefault bool
}

// LocaleConfig holds language settings.
type LocaleConfig struct {
	Default string
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables with QUIZ_ prefix.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: envInt("QUIZ_SERVER_PORT", 8080),
			Host: envStr("QUIZ_SERVER_HOST", "0.0.0.0"),
		},
		Data: DataConfig{
			Dir:     envStr("QUIZ_DATA_DIR", "./public"),
			BaseURL: envStr("QUIZ_DATA_BASE_URL", ""),
		},
		Database: DatabaseConfig{
			URL:      envStr("QUIZ_DATABASE_URL", ""),
			MaxConns: envInt("QUIZ_DATABASE_MAX_CONNS", 25),
			MinConns: envInt("QUIZ_DATABASE_MIN_CONNS", 5),
		},
		Cache: CacheConfig{
			URL: envStr("QUIZ_CACHE_URL", ""),
			TTL: envDuration("QUIZ_CACHE_TTL", 10*time.Minute),
		},
		Session: SessionConfig{
			IdleTTL:      envDuration("QUIZ_SESSION_IDLE_TTL", 30*time.Minute),
			SoundDefault: envBool("QUIZ_SOUND_DEFAULT", true),
		},
		Locale: LocaleConfig{
			Default: envStr("QUIZ_DEFAULT_LANG", "ar"),
		},
		Log: LogConfig{
			Level:  envStr("QUIZ_LOG_LEVEL", "info"),
			Format: envStr("QUIZ_LOG_FORMAT", "json"),
		},
	}

	defaultSource := SourceFile
	if cfg.Data.BaseURL != "" {
		defaultSource = SourceHTTP
	}
	cfg.Data.Source = strings.ToLower(envStr("QUIZ_DATA_SOURCE", defaultSource))
	if cfg.Data.Source == SourceHTTP && cfg.Data.BaseURL == "" {
		cfg.Data.BaseURL = DefaultBaseURL
	}

	return cfg, nil
}

// Validate checks that the configuration is consistent.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("QUIZ_SERVER_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}

	switch c.Data.Source {
	case SourceFile:
		if c.Data.Dir == "" {
			return fmt.Errorf("QUIZ_DATA_DIR is required for the file source")
		}
	case SourceHTTP:
		if c.Data.BaseURL == "" {
			return fmt.Errorf("QUIZ_DATA_BASE_URL is required for the http source")
		}
	case SourcePostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("QUIZ_DATABASE_URL is required for the postgres source")
		}
	default:
		return fmt.Errorf("QUIZ_DATA_SOURCE must be 'file', 'http' or 'postgres', got %q", c.Data.Source)
	}

	if c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("QUIZ_DATABASE_MIN_CONNS (%d) exceeds QUIZ_DATABASE_MAX_CONNS (%d)",
			c.Database.MinConns, c.Database.MaxConns)
	}

	if c.Cache.TTL < 0 {
		return fmt.Errorf("QUIZ_CACHE_TTL must not be negative")
	}

	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return fmt.Errorf("QUIZ_LOG_FORMAT must be 'json' or 'text', got %q", c.Log.Format)
	}

	return nil
}

// HasDatabase returns true if a PostgreSQL URL is configured.
func (c *Config) HasDatabase() bool {
	return c.Database.URL != ""
}

// HasCache returns true if a Redis URL is configured.
func (c *Config) HasCache() bool {
	return c.Cache.URL != ""
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// SlogLevel parses the configured level name.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("QUIZ_LOG_LEVEL: %w", err)
	}
	return level, nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		return strings.EqualFold(v, "true") || v == "1"
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
