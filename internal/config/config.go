// Package config provides application configuration with support for
// command-line flags, environment variables, .env files and a TOML file.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Lookup cache backends.
const (
	CacheMemory = "memory"
	CacheBadger = "badger"
)

// Config holds the application configuration.
type Config struct {
	App     AppConfig
	Logger  LoggerConfig
	Data    DataConfig
	Library LibraryConfig
	Lookup  LookupConfig
	Search  SearchConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level  string
	Format string // json or pretty; empty picks from the environment
}

// DataConfig holds where the organizer keeps its own state.
type DataConfig struct {
	BasePath string
}

// DatabasePath is the SQLite catalog location.
func (d DataConfig) DatabasePath() string { return filepath.Join(d.BasePath, "library.db") }

// CachePath is the persistent lookup cache directory.
func (d DataConfig) CachePath() string { return filepath.Join(d.BasePath, "cache", "lookup") }

// IndexPath is the search index directory.
func (d DataConfig) IndexPath() string { return filepath.Join(d.BasePath, "search") }

// LibraryConfig holds the ebook folders.
type LibraryConfig struct {
	// Path is the folder imported and watched for new ebooks.
	Path string
	// DestinationPath is the default root for reorganization.
	DestinationPath string
}

// LookupConfig configures the external metadata lookup.
type LookupConfig struct {
	Enabled   bool
	BaseURL   string
	Timeout   time.Duration
	Interval  time.Duration // minimum spacing between live requests
	Cache     string        // memory or badger
	CacheSize int
	CacheTTL  time.Duration
}

// SearchConfig configures the search index.
type SearchConfig struct {
	Enabled bool
}

// Flags carries raw command-line values. Empty strings mean "not set".
type Flags struct {
	ConfigFile      string
	EnvFile         string
	Env             string
	LogLevel        string
	LogFormat       string
	DataPath        string
	LibraryPath     string
	DestinationPath string
	LookupEnabled   string
	LookupBaseURL   string
	LookupCache     string
	SearchEnabled   string
}

// fileConfig is the TOML layout. It sits between the .env file and defaults.
type fileConfig struct {
	Environment string `toml:"environment"`
	Log         struct {
		Level  string `toml:"level"`
		Format string `toml:"format"`
	} `toml:"log"`
	Paths struct {
		Data        string `toml:"data"`
		Library     string `toml:"library"`
		Destination string `toml:"destination"`
	} `toml:"paths"`
	Lookup struct {
		Enabled   *bool  `toml:"enabled"`
		BaseURL   string `toml:"base_url"`
		Timeout   string `toml:"timeout"`
		Interval  string `toml:"interval"`
		Cache     string `toml:"cache"`
		CacheSize int    `toml:"cache_size"`
		CacheTTL  string `toml:"cache_ttl"`
	} `toml:"lookup"`
	Search struct {
		Enabled *bool `toml:"enabled"`
	} `toml:"search"`
}

// Load builds the configuration with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. TOML config file.
// 5. Default values (lowest priority).
func Load(flags Flags) (*Config, error) {
	envFile := flags.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	// A missing .env file is fine.
	if err := loadEnvFile(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	var file fileConfig
	if path := getConfigValue(flags.ConfigFile, "CONFIG_FILE", ""); path != "" {
		if err := loadTOMLFile(path, &file); err != nil {
			return nil, err
		}
	}

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(flags.Env, "ENV", or(file.Environment, "development")),
		},
		Logger: LoggerConfig{
			Level:  getConfigValue(flags.LogLevel, "LOG_LEVEL", or(file.Log.Level, "info")),
			Format: getConfigValue(flags.LogFormat, "LOG_FORMAT", file.Log.Format),
		},
		Data: DataConfig{
			BasePath: getConfigValue(flags.DataPath, "DATA_PATH", file.Paths.Data),
		},
		Library: LibraryConfig{
			Path:            getConfigValue(flags.LibraryPath, "LIBRARY_PATH", file.Paths.Library),
			DestinationPath: getConfigValue(flags.DestinationPath, "DESTINATION_PATH", file.Paths.Destination),
		},
		Lookup: LookupConfig{
			Enabled:   getBoolConfigValue(flags.LookupEnabled, "LOOKUP_ENABLED", boolOr(file.Lookup.Enabled, true)),
			BaseURL:   getConfigValue(flags.LookupBaseURL, "LOOKUP_BASE_URL", or(file.Lookup.BaseURL, "https://openlibrary.org")),
			Cache:     strings.ToLower(getConfigValue(flags.LookupCache, "LOOKUP_CACHE", or(file.Lookup.Cache, CacheMemory))),
			CacheSize: getIntConfigValue("", "LOOKUP_CACHE_SIZE", intOr(file.Lookup.CacheSize, 2048)),
		},
		Search: SearchConfig{
			Enabled: getBoolConfigValue(flags.SearchEnabled, "SEARCH_ENABLED", boolOr(file.Search.Enabled, true)),
		},
	}

	var err error
	if cfg.Lookup.Timeout, err = getDurationConfigValue("LOOKUP_TIMEOUT", or(file.Lookup.Timeout, "10s")); err != nil {
		return nil, err
	}
	if cfg.Lookup.Interval, err = getDurationConfigValue("LOOKUP_INTERVAL", or(file.Lookup.Interval, "100ms")); err != nil {
		return nil, err
	}
	if cfg.Lookup.CacheTTL, err = getDurationConfigValue("LOOKUP_CACHE_TTL", or(file.Lookup.CacheTTL, "720h")); err != nil {
		return nil, err
	}

	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all config values are present and valid.
func (c *Config) Validate() error {
	validEnvs := map[string]bool{"development": true, "staging": true, "production": true}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Logger.Format != "" && c.Logger.Format != "json" && c.Logger.Format != "pretty" {
		return fmt.Errorf("invalid log format: %s (must be json or pretty)", c.Logger.Format)
	}

	if c.Data.BasePath == "" {
		return errors.New("data path cannot be empty after expansion")
	}

	if c.Lookup.Cache != CacheMemory && c.Lookup.Cache != CacheBadger {
		return fmt.Errorf("invalid lookup cache: %s (must be memory or badger)", c.Lookup.Cache)
	}
	if c.Lookup.CacheSize <= 0 {
		return fmt.Errorf("lookup cache size must be positive, got %d", c.Lookup.CacheSize)
	}
	if c.Lookup.Timeout <= 0 {
		return errors.New("lookup timeout must be positive")
	}
	if c.Lookup.Interval < 0 {
		return errors.New("lookup interval cannot be negative")
	}

	return nil
}

func (c *Config) expandPaths() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	if c.Data.BasePath, err = expandPath(c.Data.BasePath, filepath.Join(homeDir, ".ebook-organizer")); err != nil {
		return fmt.Errorf("invalid data path: %w", err)
	}
	if c.Library.Path, err = expandPath(c.Library.Path, ""); err != nil {
		return fmt.Errorf("invalid library path: %w", err)
	}
	if c.Library.DestinationPath, err = expandPath(c.Library.DestinationPath, ""); err != nil {
		return fmt.Errorf("invalid destination path: %w", err)
	}
	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty the default is returned unchanged.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

func or(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}

func boolOr(value *bool, fallback bool) bool {
	if value != nil {
		return *value
	}
	return fallback
}

func intOr(value, fallback int) int {
	if value != 0 {
		return value
	}
	return fallback
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getBoolConfigValue returns a bool from flag, env var, or default.
// Accepts "true", "1", "yes" (case-insensitive) as true; anything else is false.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result int
	if _, err := fmt.Sscanf(strValue, "%d", &result); err != nil {
		return defaultValue
	}
	return result
}

func getDurationConfigValue(envKey, defaultValue string) (time.Duration, error) {
	raw := getConfigValue("", envKey, defaultValue)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", strings.ToLower(envKey), raw, err)
	}
	return d, nil
}

func loadTOMLFile(path string, out *fileConfig) error {
	data, err := os.ReadFile(path) //#nosec G304 -- config path is supplied by the operator
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := toml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- env file path is supplied by the operator
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		// Real environment variables win over the file.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
