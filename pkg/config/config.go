// Package config loads process-level settings for applications embedding
// statetable tables
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/anggasct/statetable/pkg/log"
)

type (
	// Config holds configuration settings for an embedding application
	Config struct {
		LogLevel     string
		LogFormat    string
		StrictErrors bool
		Store        StoreConfig
	}

	// StoreConfig holds the Redis settings used by store.Redis
	StoreConfig struct {
		Addr     string
		Password string
		DB       int
		Prefix   string
		TTL      time.Duration
	}
)

const (
	DefaultLogLevel      = "info"
	DefaultLogFormat     = log.FormatJSON
	DefaultRedisEndpoint = "localhost:6379"
	DefaultRedisDB       = 0
	DefaultRedisPrefix   = "statetable"

	MaxRedisDB = 15
)

var (
	ErrInvalidLogLevel  = errors.New("invalid log level")
	ErrInvalidLogFormat = errors.New("invalid log format")
	ErrInvalidRedisDB   = errors.New("invalid redis db")
	ErrEmptyRedisAddr   = errors.New("redis address must not be empty")
	ErrEmptyRedisPrefix = errors.New("redis prefix must not be empty")
	ErrInvalidStoreTTL  = errors.New("store TTL must not be negative")
)

// NewDefaultConfig creates a configuration with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		LogLevel:  DefaultLogLevel,
		LogFormat: DefaultLogFormat,
		Store: StoreConfig{
			Addr:   DefaultRedisEndpoint,
			DB:     DefaultRedisDB,
			Prefix: DefaultRedisPrefix,
		},
	}
}

// LoadFromEnv populates configuration values from environment variables.
// Returns an error if any env var cannot be parsed
func (c *Config) LoadFromEnv() error {
	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		c.LogLevel = logLevel
	}
	if logFormat := os.Getenv("LOG_FORMAT"); logFormat != "" {
		c.LogFormat = logFormat
	}
	if strict := os.Getenv("STATETABLE_STRICT_ERRORS"); strict != "" {
		v, err := strconv.ParseBool(strict)
		if err != nil {
			return fmt.Errorf("invalid STATETABLE_STRICT_ERRORS: %q", strict)
		}
		c.StrictErrors = v
	}
	return c.Store.LoadFromEnv()
}

// LoadFromEnv loads Redis store settings from environment variables
func (s *StoreConfig) LoadFromEnv() error {
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		s.Addr = addr
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		s.Password = password
	}
	if prefix := os.Getenv("REDIS_PREFIX"); prefix != "" {
		s.Prefix = prefix
	}
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		db, err := strconv.Atoi(dbStr)
		if err != nil {
			return fmt.Errorf("invalid REDIS_DB: %q", dbStr)
		}
		s.DB = db
	}
	if ttl := os.Getenv("REDIS_TTL"); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil {
			return fmt.Errorf("invalid REDIS_TTL: %q", ttl)
		}
		s.TTL = d
	}
	return nil
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	if _, ok := log.ParseLevel(c.LogLevel); !ok {
		return fmt.Errorf("%w: %s", ErrInvalidLogLevel, c.LogLevel)
	}
	if c.LogFormat != log.FormatJSON && c.LogFormat != log.FormatText {
		return fmt.Errorf("%w: %s", ErrInvalidLogFormat, c.LogFormat)
	}
	return c.Store.Validate()
}

// Validate checks the Redis store settings
func (s *StoreConfig) Validate() error {
	if s.Addr == "" {
		return ErrEmptyRedisAddr
	}
	if s.Prefix == "" {
		return ErrEmptyRedisPrefix
	}
	if s.DB < 0 || s.DB > MaxRedisDB {
		return fmt.Errorf("%w: %d", ErrInvalidRedisDB, s.DB)
	}
	if s.TTL < 0 {
		return ErrInvalidStoreTTL
	}
	return nil
}

// SlogLevel returns the configured level as a slog.Level
func (c *Config) SlogLevel() slog.Level {
	lvl, _ := log.ParseLevel(c.LogLevel)
	return lvl
}

// NewLogger builds the logger described by the configuration
func (c *Config) NewLogger(service string) *slog.Logger {
	return log.NewWithLevel(os.Stdout, service, c.LogFormat, c.SlogLevel())
}
