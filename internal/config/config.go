// Package config provides centralized configuration management for the dashboard.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Data     DataConfig
	View     ViewConfig
	Session  SessionConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading a request (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing a response (default: 30s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"30s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 30s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"30s"`
}

// DataConfig selects where the record collection is loaded from.
// At least one of Sources or DatabaseURL must be set.
type DataConfig struct {
	// Sources is a comma-separated list of .json, .yaml or .csv files
	Sources []string `env:"DATA_SOURCES"`

	// DatabaseURL is a PostgreSQL connection string; used when set
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	DatabaseURL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// Table is the table queried when loading from PostgreSQL (default: electric_vehicles)
	Table string `env:"DATA_TABLE" default:"electric_vehicles"`

	// MaxConns is the maximum number of pool connections (default: 4)
	MaxConns int `env:"DB_MAX_CONNS" default:"4"`

	// LoadTimeout bounds the startup load (default: 30s)
	LoadTimeout time.Duration `env:"DATA_LOAD_TIMEOUT" default:"30s"`
}

// ViewConfig holds table and chart settings.
type ViewConfig struct {
	// PageSize is the number of table rows per page (default: 10)
	PageSize int `env:"VIEW_PAGE_SIZE" default:"10"`

	// TopN is the number of make/model pairs in the top chart (default: 5)
	TopN int `env:"VIEW_TOP_N" default:"5"`
}

// SessionConfig holds the browser session settings that bind a visitor
// to a table view.
type SessionConfig struct {
	// Secret signs the session cookie (required, at least 32 bytes)
	Secret string `env:"SESSION_SECRET" required:"true"`

	// IdleTimeout expires views not touched for this long (default: 30m)
	IdleTimeout time.Duration `env:"SESSION_IDLE_TIMEOUT" default:"30m"`

	// CookieName is the session cookie name (default: evdash_session)
	CookieName string `env:"SESSION_COOKIE_NAME" default:"evdash_session"`

	// Secure marks the cookie HTTPS-only (default: false)
	Secure bool `env:"SESSION_COOKIE_SECURE" default:"false"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// MinSecretLength is the minimum SESSION_SECRET length in bytes.
const MinSecretLength = 32

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// UsesDatabase reports whether records are loaded from PostgreSQL.
func (c *DataConfig) UsesDatabase() bool {
	return c.DatabaseURL != ""
}
