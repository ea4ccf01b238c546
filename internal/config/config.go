// Package config handles application configuration loading from environment
// variables, an optional YAML file and command-line flags. It provides a
// centralized Config struct used across the application.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Cache backends.
const (
	CacheValkey = "valkey"
	CacheMemory = "memory"
)

// Config holds all application configuration values.
type Config struct {
	// Server settings
	Host string
	Port string
	Env  string // "development", "production", "testing"

	// PostgreSQL connection
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Valkey (Redis-compatible cache)
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string

	// Template resolution
	CacheBackend     string        // "valkey" or "memory"
	TemplateCacheTTL time.Duration // lifetime of the cached template list
	ProMode          string        // "on", "off" or "license"
	ResolveRateLimit int           // requests per minute per client IP, 0 disables

	// Admin API bearer token, stored as a bcrypt hash
	AdminTokenHash string

	// Logging
	LogLevel  string
	LogFormat string // "text" or "json", empty picks by environment
	LogFile   string

	// Development fixture loaded on startup when set
	SeedFile string
}

var defaults = map[string]any{
	"APP_HOST":           "0.0.0.0",
	"APP_PORT":           "8080",
	"APP_ENV":            "development",
	"POSTGRES_HOST":      "localhost",
	"POSTGRES_PORT":      "5432",
	"POSTGRES_USER":      "themebuilder",
	"POSTGRES_PASSWORD":  "changeme",
	"POSTGRES_DB":        "themebuilder",
	"VALKEY_HOST":        "localhost",
	"VALKEY_PORT":        "6379",
	"VALKEY_PASSWORD":    "",
	"CACHE_BACKEND":      CacheValkey,
	"TEMPLATE_CACHE_TTL": time.Hour,
	"PRO_MODE":           "license",
	"RESOLVE_RATE_LIMIT": 600,
	"ADMIN_TOKEN_HASH":   "",
	"LOG_LEVEL":          "info",
	"LOG_FORMAT":         "",
	"LOG_FILE":           "",
	"SEED_FILE":          "",
}

// Flags registers the command-line flags Load understands.
func Flags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("themebuilder", pflag.ContinueOnError)
	fs.String("config", "", "optional YAML configuration file")
	fs.String("port", "", "HTTP listen port (APP_PORT)")
	fs.String("env", "", "environment: development, production, testing (APP_ENV)")
	fs.String("log-level", "", "log level: debug, info, warn, error (LOG_LEVEL)")
	fs.String("pro-mode", "", "pro entitlement: on, off, license (PRO_MODE)")
	fs.String("seed", "", "YAML template fixture to load on startup (SEED_FILE)")
	return fs
}

var flagKeys = map[string]string{
	"port":      "APP_PORT",
	"env":       "APP_ENV",
	"log-level": "LOG_LEVEL",
	"pro-mode":  "PRO_MODE",
	"seed":      "SEED_FILE",
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. A YAML file named by --config may set
// the same keys; environment variables and flags override it. Returns an
// error if critical values are missing in production mode.
func Load(args ...string) (*Config, error) {
	fs := Flags()
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if path, _ := fs.GetString("config"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	for name, key := range flagKeys {
		if f := fs.Lookup(name); f != nil && f.Changed {
			v.Set(key, f.Value.String())
		}
	}

	cfg := &Config{
		Host: v.GetString("APP_HOST"),
		Port: v.GetString("APP_PORT"),
		Env:  v.GetString("APP_ENV"),

		DBHost:     v.GetString("POSTGRES_HOST"),
		DBPort:     v.GetString("POSTGRES_PORT"),
		DBUser:     v.GetString("POSTGRES_USER"),
		DBPassword: v.GetString("POSTGRES_PASSWORD"),
		DBName:     v.GetString("POSTGRES_DB"),

		ValkeyHost:     v.GetString("VALKEY_HOST"),
		ValkeyPort:     v.GetString("VALKEY_PORT"),
		ValkeyPassword: v.GetString("VALKEY_PASSWORD"),

		CacheBackend:     strings.ToLower(v.GetString("CACHE_BACKEND")),
		TemplateCacheTTL: v.GetDuration("TEMPLATE_CACHE_TTL"),
		ProMode:          strings.ToLower(v.GetString("PRO_MODE")),
		ResolveRateLimit: v.GetInt("RESOLVE_RATE_LIMIT"),

		AdminTokenHash: v.GetString("ADMIN_TOKEN_HASH"),

		LogLevel:  v.GetString("LOG_LEVEL"),
		LogFormat: strings.ToLower(v.GetString("LOG_FORMAT")),
		LogFile:   v.GetString("LOG_FILE"),

		SeedFile: v.GetString("SEED_FILE"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration and returns the first problem found.
func (c *Config) Validate() error {
	if c.Env == "production" {
		if c.DBPassword == "changeme" {
			return errors.New("POSTGRES_PASSWORD must be set in production")
		}
		if c.AdminTokenHash == "" {
			return errors.New("ADMIN_TOKEN_HASH must be set in production")
		}
	}

	switch c.CacheBackend {
	case CacheValkey, CacheMemory:
	default:
		return fmt.Errorf("CACHE_BACKEND: unsupported backend %q", c.CacheBackend)
	}

	switch c.ProMode {
	case "on", "off", "license":
	default:
		return fmt.Errorf("PRO_MODE: unsupported mode %q", c.ProMode)
	}

	if c.TemplateCacheTTL <= 0 {
		return fmt.Errorf("TEMPLATE_CACHE_TTL: must be positive, got %s", c.TemplateCacheTTL)
	}
	if c.ResolveRateLimit < 0 {
		return fmt.Errorf("RESOLVE_RATE_LIMIT: must not be negative, got %d", c.ResolveRateLimit)
	}

	valid := map[string]bool{"debug": true, "info": true, "warn": true, "warning": true, "error": true}
	if !valid[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("LOG_LEVEL: unsupported level %q", c.LogLevel)
	}

	switch c.LogFormat {
	case "", "text", "json":
	default:
		return fmt.Errorf("LOG_FORMAT: unsupported format %q", c.LogFormat)
	}

	return nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}
