// Package config loads the settings of the aggql command from the environment.
package config

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/hugr-lab/aggql"
	"github.com/hugr-lab/aggql/filter"
)

// Environment variables read by LoadFromEnv.
const (
	EnvLogLevel         = "AGGQL_LOG_LEVEL"
	EnvFlightAddr       = "AGGQL_FLIGHT_ADDR"
	EnvHTTPAddr         = "AGGQL_HTTP_ADDR"
	EnvDuckDBPath       = "AGGQL_DUCKDB_PATH"
	EnvSubqueryAlias    = "AGGQL_SUBQUERY_ALIAS"
	EnvQuoteIdentifiers = "AGGQL_QUOTE_IDENTIFIERS"
	EnvBucketSize       = "AGGQL_BUCKET_SIZE"
	EnvAuthTokens       = "AGGQL_AUTH_TOKENS"
)

// Config holds the command configuration.
type Config struct {
	LogLevel   string // log level: debug, info, warn, error (default "info")
	FlightAddr string // Flight listen address (default ":8815")
	HTTPAddr   string // HTTP listen address (default ":8080")
	DuckDBPath string // DuckDB database file; empty opens an in-memory database

	SubqueryAlias    string // derived table alias (default "agg_view")
	QuoteIdentifiers bool   // quote column names that are not plain identifiers
	BucketSize       int    // terms bucket size of search bodies (default 10000)

	// AuthTokens are the accepted bearer tokens of the servers.
	// Empty disables authentication.
	AuthTokens []string

	// Warnings collects non-fatal warnings generated during config loading.
	// These are logged by the caller after the logger is initialised.
	Warnings []string
}

// SlogLevel maps the LogLevel string to an slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
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

// Compiler returns the compiler configuration.
func (c *Config) Compiler(logger *slog.Logger) aggql.Config {
	cfg := aggql.Config{
		Logger:        logger,
		SubqueryAlias: c.SubqueryAlias,
		BucketSize:    c.BucketSize,
	}
	if logger == nil {
		level := c.SlogLevel()
		cfg.LogLevel = &level
	}
	if c.QuoteIdentifiers {
		cfg.Encoder = &filter.EncoderOptions{QuoteIdentifiers: true}
	}
	return cfg
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		LogLevel:         os.Getenv(EnvLogLevel),
		FlightAddr:       os.Getenv(EnvFlightAddr),
		HTTPAddr:         os.Getenv(EnvHTTPAddr),
		DuckDBPath:       os.Getenv(EnvDuckDBPath),
		SubqueryAlias:    strings.TrimSpace(os.Getenv(EnvSubqueryAlias)),
		QuoteIdentifiers: parseBoolEnvDefault(EnvQuoteIdentifiers, false),
	}

	if v := os.Getenv(EnvBucketSize); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%s must be a non-negative integer, got %q", EnvBucketSize, v)
		}
		cfg.BucketSize = n
	}

	if v := os.Getenv(EnvAuthTokens); v != "" {
		tokens := strings.Split(v, ",")
		for i := range tokens {
			tokens[i] = strings.TrimSpace(tokens[i])
		}
		cfg.AuthTokens = compactNonEmpty(tokens)
	}

	// Defaults
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.FlightAddr == "" {
		cfg.FlightAddr = ":8815"
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}
	switch strings.ToLower(cfg.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("unknown %s %q, using info", EnvLogLevel, cfg.LogLevel))
	}
	if len(cfg.AuthTokens) == 0 {
		cfg.Warnings = append(cfg.Warnings, EnvAuthTokens+" not set, servers accept unauthenticated requests")
	}
	if cfg.DuckDBPath == "" {
		cfg.Warnings = append(cfg.Warnings, EnvDuckDBPath+" not set, using an in-memory DuckDB database")
	}

	return cfg, nil
}

func parseBoolEnvDefault(key string, defaultVal bool) bool {
	v := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	if v == "" {
		return defaultVal
	}
	if v == "0" || v == "false" || v == "no" || v == "off" {
		return false
	}
	if v == "1" || v == "true" || v == "yes" || v == "on" {
		return true
	}
	return defaultVal
}

func compactNonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// LoadDotEnv reads a .env file and sets any variables not already in the environment.
// Lines must be in KEY=VALUE format. Comments (#) and blank lines are skipped.
func LoadDotEnv(path string) error {
	f, err := os.Open(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(strings.TrimPrefix(key, "export "))
		value = stripQuotes(strings.TrimSpace(value))
		// Environment variables take precedence.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("setenv %s: %w", key, err)
			}
		}
	}
	return scanner.Err()
}

// stripQuotes removes matching surrounding double or single quotes.
func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
