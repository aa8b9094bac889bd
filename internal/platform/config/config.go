package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/bruhmagedon/advanced-jwt-server/internal/platform/environment"
	apperrors "github.com/bruhmagedon/advanced-jwt-server/internal/platform/errors"
	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

// Required keys, in the order they are resolved.
const (
	KeyNodeEnv       = environment.Variable
	KeyCookiesSecret = "COOKIES_SECRET"
	KeyAllowedOrigin = "ALLOWED_ORIGIN"
	KeyPort          = "PORT"
)

const defaultEnvFile = ".env"

// Config holds the resolved startup parameters. It is built once by Load and
// passed explicitly to the components that need it.
type Config struct {
	Mode          environment.Mode
	CookiesSecret string
	AllowedOrigin string
	Port          string

	LogLevel        string
	LogFormat       string
	CookieMaxAge    time.Duration
	ShutdownTimeout time.Duration
	RateLimitRPS    float64
	RateLimitBurst  int

	store *Store
}

// Store returns the entry snapshot the config was resolved from.
func (c *Config) Store() *Store {
	return c.store
}

// Options control how Load sources its entries.
type Options struct {
	// EnvFile is merged into the process environment unless IgnoreEnvFile is set.
	EnvFile string
	// IgnoreEnvFile skips the env file entirely; it is never opened.
	IgnoreEnvFile bool
}

// DefaultOptions only loads the env file in development mode, as decided by DevMode.
func DefaultOptions() Options {
	envFile := defaultEnvFile
	if v := os.Getenv("ENV_FILE"); v != "" {
		envFile = v
	}
	return Options{
		EnvFile:       envFile,
		IgnoreEnvFile: !DevMode(envFile).IsDevelopment(),
	}
}

// DevMode is the eager mode snapshot that gates the env file. NODE_ENV is read
// from the process environment; the env file is only consulted, without being
// merged, when the process leaves NODE_ENV unset.
func DevMode(envFile string) environment.Mode {
	return environment.Snapshot(environment.Fallback(os.LookupEnv, envFileLookup(envFile)))
}

// envFileLookup parses path on every call. An unreadable file has no keys.
func envFileLookup(path string) environment.LookupFunc {
	return func(key string) (string, bool) {
		entries, err := godotenv.Read(path)
		if err != nil {
			return "", false
		}
		value, ok := entries[key]
		return value, ok
	}
}

// ambient settings mapped by go-simpler.org/env; required keys go through Store.Require.
type ambient struct {
	LogLevel        string        `env:"LOG_LEVEL" default:"info"`
	LogFormat       string        `env:"LOG_FORMAT" default:"text"`
	CookieMaxAge    time.Duration `env:"COOKIE_MAX_AGE" default:"720h"` // 30 days
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" default:"10s"`
	RateLimitRPS    float64       `env:"RATE_LIMIT_RPS" default:"20"` // per client IP, 0 disables
	RateLimitBurst  int           `env:"RATE_LIMIT_BURST" default:"40"`
}

// Load merges the env file when opts allow it, then resolves and validates the
// configuration. The first missing required key aborts with a
// missing-configuration error.
func Load(opts Options) (*Config, error) {
	if err := loadEnvFile(opts); err != nil {
		return nil, err
	}

	store := StoreFromEnviron()

	var amb ambient
	if err := env.Load(&amb, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{
		LogLevel:        amb.LogLevel,
		LogFormat:       amb.LogFormat,
		CookieMaxAge:    amb.CookieMaxAge,
		ShutdownTimeout: amb.ShutdownTimeout,
		RateLimitRPS:    amb.RateLimitRPS,
		RateLimitBurst:  amb.RateLimitBurst,
		store:           store,
	}

	if err := resolveRequired(cfg, store); err != nil {
		return nil, err
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadEnvFile(opts Options) error {
	if opts.IgnoreEnvFile {
		return nil
	}

	path := opts.EnvFile
	if path == "" {
		path = defaultEnvFile
	}

	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.Info("No env file found, using environment variables", "path", path)
			return nil
		}
		return apperrors.InvalidConfigurationError("ENV_FILE", "could not be loaded", err).WithContext("path", path)
	}

	slog.Debug("Loaded env file", "path", path)
	return nil
}

func resolveRequired(cfg *Config, store *Store) error {
	mode, err := environment.Require(store.Lookup)
	if err != nil {
		return err
	}
	cfg.Mode = mode

	if cfg.CookiesSecret, err = store.Require(KeyCookiesSecret); err != nil {
		return err
	}
	if cfg.AllowedOrigin, err = store.Require(KeyAllowedOrigin); err != nil {
		return err
	}
	if cfg.Port, err = store.Require(KeyPort); err != nil {
		return err
	}
	return nil
}

func validate(cfg *Config) error {
	port, err := strconv.Atoi(cfg.Port)
	if err != nil {
		return apperrors.InvalidConfigurationError(KeyPort, "must be a number", err)
	}
	if port < 0 || port > 65535 {
		return apperrors.InvalidConfigurationError(KeyPort, "must be between 0 and 65535", nil)
	}

	if err := validateOrigin(cfg.AllowedOrigin); err != nil {
		return err
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return apperrors.InvalidConfigurationError("LOG_LEVEL", "must be one of debug, info, warn, error", nil)
	}

	switch cfg.LogFormat {
	case "text", "json":
	default:
		return apperrors.InvalidConfigurationError("LOG_FORMAT", "must be text or json", nil)
	}

	if cfg.CookieMaxAge < 0 {
		return apperrors.InvalidConfigurationError("COOKIE_MAX_AGE", "must not be negative", nil)
	}
	if cfg.ShutdownTimeout <= 0 {
		return apperrors.InvalidConfigurationError("SHUTDOWN_TIMEOUT", "must be positive", nil)
	}
	if cfg.RateLimitRPS < 0 {
		return apperrors.InvalidConfigurationError("RATE_LIMIT_RPS", "must not be negative", nil)
	}
	if cfg.RateLimitRPS > 0 && cfg.RateLimitBurst < 1 {
		return apperrors.InvalidConfigurationError("RATE_LIMIT_BURST", "must be at least 1 when rate limiting is enabled", nil)
	}

	return nil
}

// validateOrigin accepts a bare scheme://host[:port]. CORS origins are matched
// verbatim, so a path or trailing slash would never match a browser Origin header.
func validateOrigin(origin string) error {
	u, err := url.Parse(origin)
	if err != nil {
		return apperrors.InvalidConfigurationError(KeyAllowedOrigin, "must be a valid URL", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return apperrors.InvalidConfigurationError(KeyAllowedOrigin, "must use http or https", nil)
	}
	if u.Host == "" {
		return apperrors.InvalidConfigurationError(KeyAllowedOrigin, "must include a host", nil)
	}
	if u.Path != "" || u.RawQuery != "" || u.Fragment != "" || u.User != nil {
		return apperrors.InvalidConfigurationError(KeyAllowedOrigin, "must be a bare origin without path, query or credentials", nil)
	}
	return nil
}
