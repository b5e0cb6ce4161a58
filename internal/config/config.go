// Package config loads the clothes store settings from an optional YAML file
// and CLOTHES_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Store drivers.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Listing layouts.
const (
	ViewText  = "text"
	ViewTable = "table"
)

// Environment variable names.
const (
	EnvConfigPath     = "CLOTHES_CONFIG"
	EnvListen         = "CLOTHES_LISTEN"
	EnvLogLevel       = "CLOTHES_LOG_LEVEL"
	EnvView           = "CLOTHES_VIEW"
	EnvStoreDriver    = "CLOTHES_STORE_DRIVER"
	EnvMongoURI       = "CLOTHES_MONGO_URI"
	EnvDatabase       = "CLOTHES_DATABASE"
	EnvCollection     = "CLOTHES_COLLECTION"
	EnvPostgresDSN    = "CLOTHES_POSTGRES_DSN"
	EnvStoreTimeout   = "CLOTHES_STORE_TIMEOUT"
	EnvMetricsEnabled = "CLOTHES_METRICS_ENABLED"
	EnvMetricsToken   = "CLOTHES_METRICS_TOKEN" //nolint:gosec // env var name, not a credential
	EnvRateLimit      = "CLOTHES_RATE_LIMIT"
	EnvTrustProxy     = "CLOTHES_TRUST_PROXY"
)

type Window struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

type Store struct {
	Driver      string        `yaml:"driver"`
	MongoURI    string        `yaml:"mongo_uri"`
	Database    string        `yaml:"database"`
	Collection  string        `yaml:"collection"`
	PostgresDSN string        `yaml:"postgres_dsn"`
	Timeout     time.Duration `yaml:"timeout"`
}

type Metrics struct {
	Enabled bool   `yaml:"enabled"`
	Token   string `yaml:"token"`
}

type RateLimit struct {
	// PerMinute caps mutating requests per client IP; 0 disables the limit.
	PerMinute int `yaml:"per_minute"`
	// TrustProxy keys clients by X-Forwarded-For instead of the peer address.
	TrustProxy bool `yaml:"trust_proxy"`
}

type Config struct {
	Listen          string        `yaml:"listen"`
	LogLevel        string        `yaml:"log_level"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	View            string        `yaml:"view"`
	Window          Window        `yaml:"window"`
	Store           Store         `yaml:"store"`
	Metrics         Metrics       `yaml:"metrics"`
	RateLimit       RateLimit     `yaml:"rate_limit"`
}

// Validation errors.
var (
	ErrInvalidListen      = errors.New("listen address must be host:port")
	ErrInvalidLogLevel    = errors.New("log level must be one of: debug, info, warn, error")
	ErrInvalidView        = errors.New("view must be one of: text, table")
	ErrInvalidWindow      = errors.New("window width and height must be positive")
	ErrInvalidDriver      = errors.New("store driver must be one of: mongo, postgres, memory")
	ErrMissingMongoURI    = errors.New("mongo uri, database and collection must be set for the mongo driver")
	ErrMissingPostgresDSN = errors.New("postgres dsn must be set for the postgres driver")
	ErrInvalidTimeout     = errors.New("store timeout must be positive")
	ErrInvalidRateLimit   = errors.New("rate limit must not be negative")
)

// Default returns the settings of a local install: MongoDB on localhost,
// database clothes_db, collection items.
func Default(view string, w Window) Config {
	return Config{
		Listen:          ":8080",
		LogLevel:        "info",
		ShutdownTimeout: 10 * time.Second,
		View:            view,
		Window:          w,
		Store: Store{
			Driver:     DriverMongo,
			MongoURI:   "mongodb://localhost:27017/",
			Database:   "clothes_db",
			Collection: "items",
			Timeout:    3 * time.Second,
		},
		Metrics: Metrics{Enabled: true},
	}
}

// Load overlays the YAML file at path on cfg. Keys absent from the file keep
// their current values.
func Load(path string, cfg Config) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return cfg, fmt.Errorf("read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config file: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overlays the CLOTHES_* variables found by lookup on cfg.
func ApplyEnv(cfg Config, lookup func(string) (string, bool)) (Config, error) {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	str(EnvListen, &cfg.Listen)
	str(EnvLogLevel, &cfg.LogLevel)
	str(EnvView, &cfg.View)
	str(EnvStoreDriver, &cfg.Store.Driver)
	str(EnvMongoURI, &cfg.Store.MongoURI)
	str(EnvDatabase, &cfg.Store.Database)
	str(EnvCollection, &cfg.Store.Collection)
	str(EnvPostgresDSN, &cfg.Store.PostgresDSN)
	str(EnvMetricsToken, &cfg.Metrics.Token)

	if v, ok := lookup(EnvStoreTimeout); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", EnvStoreTimeout, err)
		}
		cfg.Store.Timeout = d
	}

	if v, ok := lookup(EnvMetricsEnabled); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", EnvMetricsEnabled, err)
		}
		cfg.Metrics.Enabled = b
	}

	if v, ok := lookup(EnvRateLimit); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", EnvRateLimit, err)
		}
		cfg.RateLimit.PerMinute = n
	}

	if v, ok := lookup(EnvTrustProxy); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", EnvTrustProxy, err)
		}
		cfg.RateLimit.TrustProxy = b
	}

	return cfg, nil
}

// Resolve builds the effective config: defaults, then the file named by
// CLOTHES_CONFIG if set, then the environment. The result is validated.
func Resolve(def Config, lookup func(string) (string, bool)) (Config, error) {
	cfg := def

	if path, ok := lookup(EnvConfigPath); ok && path != "" {
		var err error
		if cfg, err = Load(path, cfg); err != nil {
			return cfg, err
		}
	}

	cfg, err := ApplyEnv(cfg, lookup)
	if err != nil {
		return cfg, err
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error

	if !strings.Contains(c.Listen, ":") {
		errs = append(errs, ErrInvalidListen)
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, ErrInvalidLogLevel)
	}

	switch c.View {
	case ViewText, ViewTable:
	default:
		errs = append(errs, ErrInvalidView)
	}

	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, ErrInvalidWindow)
	}

	switch c.Store.Driver {
	case DriverMongo:
		if c.Store.MongoURI == "" || c.Store.Database == "" || c.Store.Collection == "" {
			errs = append(errs, ErrMissingMongoURI)
		}
	case DriverPostgres:
		if c.Store.PostgresDSN == "" {
			errs = append(errs, ErrMissingPostgresDSN)
		}
	case DriverMemory:
	default:
		errs = append(errs, ErrInvalidDriver)
	}

	if c.Store.Timeout <= 0 {
		errs = append(errs, ErrInvalidTimeout)
	}

	if c.RateLimit.PerMinute < 0 {
		errs = append(errs, ErrInvalidRateLimit)
	}

	return errors.Join(errs...)
}
