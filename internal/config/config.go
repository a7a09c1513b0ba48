// Package config loads the server configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Store backends.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendLevelDB  = "leveldb"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Id schemes.
const (
	IDSchemeTimestamp = "timestamp"
	IDSchemeUUID      = "uuid"
)

// Auth modes. Legacy keeps the reversible password encoding and unsigned
// tokens found in existing data stores; secure uses bcrypt and signed JWTs.
const (
	AuthModeLegacy = "legacy"
	AuthModeSecure = "secure"
)

type Config struct {
	// Server
	Port         string `env:"PORT" envDefault:"8080"`
	Address      string `env:"ADDRESS" envDefault:"127.0.0.1"`
	Env          string `env:"APP_ENV" envDefault:"dev"`
	CORSOrigins  string `env:"CORS_ORIGINS" envDefault:"*"`
	RateLimitMax int    `env:"RATE_LIMIT_MAX" envDefault:"120"`
	SentryDSN    string `env:"SENTRY_DSN"`

	// Logging
	LogLevel         string `env:"LOG_LEVEL" envDefault:"info"`
	LogRetentionDays int    `env:"LOG_RETENTION_DAYS" envDefault:"30"`

	// Data store
	StoreBackend string `env:"STORE_BACKEND" envDefault:"file"`
	StorePath    string `env:"STORE_PATH"` // defaults per backend, see DefaultStorePath
	StoreKey     string `env:"STORE_KEY" envDefault:"app-data-store"`
	IDScheme     string `env:"ID_SCHEME" envDefault:"timestamp"`

	// Database (postgres backend)
	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER" envDefault:"postgres"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME" envDefault:"cabinet_db"`
	DBSSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`

	// Auth
	AuthMode    string        `env:"AUTH_MODE" envDefault:"legacy"`
	JWTSecret   string        `env:"JWT_SECRET"`
	JWTExpiry   time.Duration `env:"JWT_EXPIRY" envDefault:"24h"`
	AdminEmails []string      `env:"ADMIN_EMAILS" envSeparator:","`
	AdminToken  string        `env:"ADMIN_TOKEN"`
}

// Load reads an optional .env file, parses the environment and validates the
// result.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return Parse()
}

// Parse reads the process environment only.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.StoreBackend = strings.ToLower(cfg.StoreBackend)
	cfg.IDScheme = strings.ToLower(cfg.IDScheme)
	cfg.AuthMode = strings.ToLower(cfg.AuthMode)
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	if cfg.StorePath == "" {
		cfg.StorePath = DefaultStorePath(cfg.StoreBackend)
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// DefaultStorePath is the STORE_PATH used when none is set: a JSON file, a
// LevelDB directory or an SQLite database file. Other backends need none.
func DefaultStorePath(backend string) string {
	switch backend {
	case BackendFile:
		return "data/app-data-store.json"
	case BackendLevelDB:
		return "data/app-data-store.ldb"
	case BackendSQLite:
		return "data/app-data-store.db"
	}
	return ""
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

// ListenAddr is the address passed to the HTTP listener.
func (c *Config) ListenAddr() string {
	return c.Address + ":" + c.Port
}

// IsAdminEmail reports whether email is listed in ADMIN_EMAILS.
func (c *Config) IsAdminEmail(email string) bool {
	for _, e := range c.AdminEmails {
		if strings.TrimSpace(e) != "" && strings.EqualFold(strings.TrimSpace(e), email) {
			return true
		}
	}
	return false
}

func validateConfig(cfg *Config) error {
	if err := validatePort(cfg.Port); err != nil {
		return fmt.Errorf("invalid PORT: %w", err)
	}
	if cfg.Address == "" {
		return fmt.Errorf("ADDRESS cannot be empty")
	}
	if err := oneOf("LOG_LEVEL", cfg.LogLevel, "debug", "info", "warn", "error"); err != nil {
		return err
	}
	if err := oneOf("STORE_BACKEND", cfg.StoreBackend,
		BackendMemory, BackendFile, BackendLevelDB, BackendSQLite, BackendPostgres); err != nil {
		return err
	}
	if err := oneOf("ID_SCHEME", cfg.IDScheme, IDSchemeTimestamp, IDSchemeUUID); err != nil {
		return err
	}
	if err := oneOf("AUTH_MODE", cfg.AuthMode, AuthModeLegacy, AuthModeSecure); err != nil {
		return err
	}

	if cfg.StoreKey == "" {
		return fmt.Errorf("STORE_KEY cannot be empty")
	}
	switch cfg.StoreBackend {
	case BackendFile, BackendLevelDB, BackendSQLite:
		if cfg.StorePath == "" {
			return fmt.Errorf("STORE_PATH is required for the %s backend", cfg.StoreBackend)
		}
	case BackendPostgres:
		if cfg.DBPassword == "" {
			return fmt.Errorf("DB_PASSWORD is required for the postgres backend")
		}
	}

	if cfg.AuthMode == AuthModeSecure {
		if cfg.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required when AUTH_MODE=secure")
		}
		if cfg.JWTExpiry <= 0 {
			return fmt.Errorf("JWT_EXPIRY must be positive, got: %s", cfg.JWTExpiry)
		}
	}

	if cfg.RateLimitMax <= 0 {
		return fmt.Errorf("RATE_LIMIT_MAX must be positive, got: %d", cfg.RateLimitMax)
	}
	if cfg.LogRetentionDays <= 0 {
		return fmt.Errorf("LOG_RETENTION_DAYS must be positive, got: %d", cfg.LogRetentionDays)
	}
	return nil
}

func validatePort(port string) error {
	if port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	portNum, err := strconv.Atoi(port)
	if err != nil {
		return fmt.Errorf("PORT must be a valid number: %w", err)
	}
	if portNum < 1 || portNum > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535")
	}
	return nil
}

func oneOf(name, value string, valid ...string) error {
	for _, v := range valid {
		if value == v {
			return nil
		}
	}
	return fmt.Errorf("%s must be one of: %v, got: %s", name, valid, value)
}
