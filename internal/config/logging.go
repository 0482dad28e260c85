package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

const (
	EnvLogLevel  = "COVENANT_LOG_LEVEL"
	EnvLogFormat = "COVENANT_LOG_FORMAT"
)

// LoggingConfig selects the slog handler and minimum level.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *LoggingConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *LoggingConfig) Merge(overlay *LoggingConfig) {
	if overlay.Level != "" {
		c.Level = overlay.Level
	}
	if overlay.Format != "" {
		c.Format = overlay.Format
	}
}

// SlogLevel maps Level to a slog.Level.
func (c *LoggingConfig) SlogLevel() slog.Level {
	switch strings.ToLower(c.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger builds a text or JSON slog.Logger writing to w.
func (c *LoggingConfig) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.SlogLevel()}
	if c.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func (c *LoggingConfig) loadDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "text"
	}
}

func (c *LoggingConfig) loadEnv() {
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Level = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		c.Format = v
	}
}

func (c *LoggingConfig) validate() error {
	switch strings.ToLower(c.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid level %q", c.Level)
	}
	switch c.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid format %q", c.Format)
	}
	return nil
}
