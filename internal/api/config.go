// Package api provides the HTTP server infrastructure for SmartFarm.
// Endpoint handlers live in the handlers subpackage.
package api

import (
	"fmt"
	"time"

	"github.com/smartfarm/smartfarm-go/internal/conf"
	"github.com/smartfarm/smartfarm-go/internal/logger"
)

// GetLogger returns the api package logger.
func GetLogger() logger.Logger {
	return logger.Global().Module("api")
}

// Default constants for the HTTP server.
const (
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
)

// Config holds the HTTP server configuration.
type Config struct {
	Host string // Host to bind to (empty for all interfaces)
	Port string // Port to listen on

	AllowedOrigins []string // CORS allowed origins

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	BodyLimit string  // Maximum request body size (e.g., "10M")
	RateLimit float64 // Requests per second per client IP, 0 disables
	RateBurst int

	UploadsPath    string // Blob directory for uploaded sounds
	MetricsEnabled bool   // Expose GET /metrics

	Debug bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Port:            conf.DefaultPort,
		AllowedOrigins:  []string{"*"},
		ReadTimeout:     DefaultReadTimeout,
		WriteTimeout:    DefaultWriteTimeout,
		IdleTimeout:     DefaultIdleTimeout,
		ShutdownTimeout: DefaultShutdownTimeout,
		BodyLimit:       conf.DefaultBodyLimit,
		UploadsPath:     conf.DefaultUploadsPath,
		MetricsEnabled:  true,
	}
}

// ConfigFromSettings creates a Config from the application settings.
func ConfigFromSettings(settings *conf.Settings) *Config {
	cfg := DefaultConfig()

	cfg.Port = settings.WebServer.Port
	if len(settings.WebServer.AllowedOrigins) > 0 {
		cfg.AllowedOrigins = settings.WebServer.AllowedOrigins
	}
	if settings.WebServer.ShutdownTimeout > 0 {
		cfg.ShutdownTimeout = settings.WebServer.ShutdownTimeout
	}
	if settings.WebServer.BodyLimit != "" {
		cfg.BodyLimit = settings.WebServer.BodyLimit
	}
	cfg.RateLimit = settings.WebServer.RateLimit
	cfg.RateBurst = settings.WebServer.RateBurst
	cfg.UploadsPath = settings.Uploads.Path
	cfg.MetricsEnabled = settings.Telemetry.Enabled
	cfg.Debug = settings.WebServer.Debug || settings.Debug

	return cfg
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("port is required")
	}
	if c.UploadsPath == "" {
		return fmt.Errorf("uploads path is required")
	}
	if c.ReadTimeout <= 0 {
		return fmt.Errorf("read timeout must be positive")
	}
	if c.WriteTimeout <= 0 {
		return fmt.Errorf("write timeout must be positive")
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate limit must not be negative")
	}
	return nil
}

// Address returns the full address string for the server to listen on.
func (c *Config) Address() string {
	if c.Host == "" {
		return ":" + c.Port
	}
	return c.Host + ":" + c.Port
}

// String returns a human-readable representation of the config.
func (c *Config) String() string {
	return fmt.Sprintf("Server Config: address=%s, uploads=%s, metrics=%v, debug=%v",
		c.Address(), c.UploadsPath, c.MetricsEnabled, c.Debug)
}
