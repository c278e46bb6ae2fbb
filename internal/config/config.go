package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds all application configuration.
type Config struct {
	Server      ServerConfig      `toml:"server"`
	Database    DatabaseConfig    `toml:"database"`
	OpenLibrary OpenLibraryConfig `toml:"openlibrary"`
	Goals       GoalsConfig       `toml:"goals"`
	Log         LogConfig         `toml:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port                   int      `toml:"port"`
	Host                   string   `toml:"host"`
	ShutdownTimeoutSeconds int      `toml:"shutdown_timeout_seconds"`
	CORSOrigins            []string `toml:"cors_origins"`
}

// DatabaseConfig holds SQLite settings. An empty path means booker.db in
// the data directory.
type DatabaseConfig struct {
	Path string `toml:"path"`
}

// OpenLibraryConfig holds settings for the external book search provider.
type OpenLibraryConfig struct {
	BaseURL           string  `toml:"base_url"`
	CoversURL         string  `toml:"covers_url"`
	TimeoutSeconds    int     `toml:"timeout_seconds"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	UserAgent         string  `toml:"user_agent"`
}

// GoalsConfig holds reading goal settings.
type GoalsConfig struct {
	DefaultBooksTarget int `toml:"default_books_target"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

const (
	defaultPort            = 8080
	defaultHost            = "localhost"
	defaultShutdownTimeout = 10
	defaultBaseURL         = "https://openlibrary.org"
	defaultCoversURL       = "https://covers.openlibrary.org/b"
	defaultTimeout         = 10
	defaultUserAgent       = "booker/1.0 (+https://github.com/hoanghai1803/booker)"
	defaultBooksTarget     = 12
	defaultLogLevel        = "info"
	defaultLogFormat       = "human"
)

const defaultConfigContent = `[server]
port = 8080
host = "localhost"
shutdown_timeout_seconds = 10
cors_origins = ["*"]

[database]
path = ""                         # Defaults to <data-dir>/booker.db

[openlibrary]
base_url = "https://openlibrary.org"
covers_url = "https://covers.openlibrary.org/b"
timeout_seconds = 10
requests_per_second = 0.0         # 0 disables client-side throttling
user_agent = "booker/1.0 (+https://github.com/hoanghai1803/booker)"

[goals]
default_books_target = 12

[log]
level = "info"                    # debug, info, warn, error
format = "human"                  # "human" or "json"
`

// Load reads and parses the TOML config from the given path. If the file does
// not exist, it creates a default config file at that path. Environment
// variables override values from the file with highest priority.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := createDefault(path); err != nil {
			return nil, fmt.Errorf("creating default config: %w", err)
		}
		slog.Info("created default config file", "path", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Validate explicitly-set values before applying defaults, so that
	// explicitly writing "port = 0" is an error rather than silently
	// being replaced with the default.
	if err := validateExplicit(&cfg, md); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	applyDefaults(&cfg)
	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, fmt.Errorf("applying environment overrides: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// DBPath returns the configured database path, or booker.db under dataDir.
func (c *Config) DBPath(dataDir string) string {
	if c.Database.Path != "" {
		return c.Database.Path
	}
	return filepath.Join(dataDir, "booker.db")
}

// Addr returns the host:port the HTTP server listens on.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ShutdownTimeout returns the graceful shutdown bound.
func (c *ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}

// Timeout returns the per-request bound for provider calls.
func (c *OpenLibraryConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// SlogLevel maps the configured level name to a slog.Level.
func (c *LogConfig) SlogLevel() slog.Level {
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

// createDefault writes the default config content to the given path,
// creating any parent directories as needed.
func createDefault(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultConfigContent), 0o644); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}

// validateExplicit checks values that were explicitly set in the TOML file.
// This catches cases like "port = 0" which would otherwise be silently
// replaced by the default value.
func validateExplicit(cfg *Config, md toml.MetaData) error {
	if md.IsDefined("server", "port") {
		if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
			return fmt.Errorf("invalid server.port %d: must be between 1 and 65535", cfg.Server.Port)
		}
	}
	if md.IsDefined("openlibrary", "timeout_seconds") && cfg.OpenLibrary.TimeoutSeconds < 1 {
		return fmt.Errorf("invalid openlibrary.timeout_seconds %d: must be >= 1", cfg.OpenLibrary.TimeoutSeconds)
	}
	if md.IsDefined("openlibrary", "requests_per_second") && cfg.OpenLibrary.RequestsPerSecond < 0 {
		return fmt.Errorf("invalid openlibrary.requests_per_second %g: must be >= 0", cfg.OpenLibrary.RequestsPerSecond)
	}
	if md.IsDefined("goals", "default_books_target") && cfg.Goals.DefaultBooksTarget < 1 {
		return fmt.Errorf("invalid goals.default_books_target %d: must be >= 1", cfg.Goals.DefaultBooksTarget)
	}
	return nil
}

// applyDefaults sets default values for any zero-valued fields.
func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = defaultPort
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = defaultHost
	}
	if cfg.Server.ShutdownTimeoutSeconds == 0 {
		cfg.Server.ShutdownTimeoutSeconds = defaultShutdownTimeout
	}
	if len(cfg.Server.CORSOrigins) == 0 {
		cfg.Server.CORSOrigins = []string{"*"}
	}
	if cfg.OpenLibrary.BaseURL == "" {
		cfg.OpenLibrary.BaseURL = defaultBaseURL
	}
	if cfg.OpenLibrary.CoversURL == "" {
		cfg.OpenLibrary.CoversURL = defaultCoversURL
	}
	if cfg.OpenLibrary.TimeoutSeconds == 0 {
		cfg.OpenLibrary.TimeoutSeconds = defaultTimeout
	}
	if cfg.OpenLibrary.UserAgent == "" {
		cfg.OpenLibrary.UserAgent = defaultUserAgent
	}
	if cfg.Goals.DefaultBooksTarget == 0 {
		cfg.Goals.DefaultBooksTarget = defaultBooksTarget
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = defaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = defaultLogFormat
	}
}

// applyEnvOverrides applies environment variable overrides. Environment
// variables take highest priority over config file values.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("BOOKER_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("BOOKER_PORT %q is not a number", v)
		}
		cfg.Server.Port = port
	}
	if v := os.Getenv("BOOKER_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("BOOKER_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("OPENLIBRARY_BASE_URL"); v != "" {
		cfg.OpenLibrary.BaseURL = v
	}
	return nil
}

// validate checks that configuration values are within acceptable ranges.
func validate(cfg *Config) error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d: must be between 1 and 65535", cfg.Server.Port)
	}
	if cfg.Server.ShutdownTimeoutSeconds < 1 {
		return fmt.Errorf("invalid server.shutdown_timeout_seconds %d: must be >= 1", cfg.Server.ShutdownTimeoutSeconds)
	}

	switch strings.ToLower(cfg.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
		// valid
	default:
		return fmt.Errorf("invalid log.level %q: must be debug, info, warn or error", cfg.Log.Level)
	}

	switch cfg.Log.Format {
	case "human", "json":
		// valid
	default:
		return fmt.Errorf("invalid log.format %q: must be \"human\" or \"json\"", cfg.Log.Format)
	}

	if !strings.HasPrefix(cfg.OpenLibrary.BaseURL, "http://") && !strings.HasPrefix(cfg.OpenLibrary.BaseURL, "https://") {
		return fmt.Errorf("invalid openlibrary.base_url %q: must be an http(s) URL", cfg.OpenLibrary.BaseURL)
	}

	if cfg.OpenLibrary.TimeoutSeconds < 1 {
		return fmt.Errorf("invalid openlibrary.timeout_seconds %d: must be >= 1", cfg.OpenLibrary.TimeoutSeconds)
	}

	if cfg.Goals.DefaultBooksTarget < 1 {
		return fmt.Errorf("invalid goals.default_books_target %d: must be >= 1", cfg.Goals.DefaultBooksTarget)
	}

	return nil
}
