package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/moura-tracker/timeclock/internal/domain/shift"
)

const (
	RecordSourceAPI      = "api"
	RecordSourcePostgres = "postgres"
)

type Config struct {
	Database DatabaseConfig
	JWT      JWTConfig
	App      AppConfig
	Backend  BackendConfig
	Shift    ShiftConfig
	Jobs     JobsConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port               int
	Env                string
	LogLevel           string
	CORSAllowedOrigins []string
	RecordSource       string
}

// BackendConfig points at the time-tracking backend.
type BackendConfig struct {
	URL     string
	Timeout time.Duration
}

type ShiftConfig struct {
	TargetMinutes int64
	TickInterval  time.Duration
}

type JobsConfig struct {
	RevokedTokenPurgeInterval time.Duration
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file loaded, using process environment", "error", err)
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "moura_time_tracker"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:               appPort,
		Env:                getEnv("APP_ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		CORSAllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
		RecordSource:       strings.ToLower(getEnv("RECORD_SOURCE", RecordSourceAPI)),
	}

	// Backend configuration
	backendTimeout, err := time.ParseDuration(getEnv("BACKEND_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid BACKEND_TIMEOUT: %w", err)
	}

	config.Backend = BackendConfig{
		URL:     strings.TrimRight(getEnv("BACKEND_URL", "http://localhost:8081"), "/"),
		Timeout: backendTimeout,
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret: getEnv("JWT_SECRET_KEY", ""),
	}

	// Shift configuration
	tickInterval, err := time.ParseDuration(getEnv("TICK_INTERVAL", "1s"))
	if err != nil {
		return nil, fmt.Errorf("invalid TICK_INTERVAL: %w", err)
	}

	config.Shift = ShiftConfig{
		TargetMinutes: parseShiftMinutes(os.Getenv("SHIFT_MINUTES")),
		TickInterval:  tickInterval,
	}

	// Background jobs
	purgeInterval, err := time.ParseDuration(getEnv("REVOKED_TOKEN_PURGE_INTERVAL", "15m"))
	if err != nil {
		return nil, fmt.Errorf("invalid REVOKED_TOKEN_PURGE_INTERVAL: %w", err)
	}

	config.Jobs = JobsConfig{
		RevokedTokenPurgeInterval: purgeInterval,
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// parseShiftMinutes never fails: an absent, malformed or non-positive value
// yields the default target.
func parseShiftMinutes(raw string) int64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return shift.DefaultTargetMinutes
	}
	minutes, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || minutes <= 0 {
		slog.Warn("Invalid SHIFT_MINUTES, using default", "value", raw, "default", shift.DefaultTargetMinutes)
		return shift.DefaultTargetMinutes
	}
	return minutes
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if u, err := url.Parse(c.Backend.URL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("BACKEND_URL must be an absolute URL")
	}
	if c.Backend.Timeout <= 0 {
		return fmt.Errorf("BACKEND_TIMEOUT must be positive")
	}
	if c.Shift.TickInterval <= 0 {
		return fmt.Errorf("TICK_INTERVAL must be positive")
	}
	if c.Jobs.RevokedTokenPurgeInterval <= 0 {
		return fmt.Errorf("REVOKED_TOKEN_PURGE_INTERVAL must be positive")
	}

	switch c.App.RecordSource {
	case RecordSourceAPI:
	case RecordSourcePostgres:
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required when RECORD_SOURCE=postgres")
		}
	default:
		return fmt.Errorf("RECORD_SOURCE must be %q or %q", RecordSourceAPI, RecordSourcePostgres)
	}
	return nil
}

// ShiftTarget builds the immutable shift target.
func (c *Config) ShiftTarget() shift.Config {
	return shift.NewConfig(c.Shift.TargetMinutes)
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		url.QueryEscape(c.Database.Password),
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// SlogLevel maps LOG_LEVEL onto slog.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.App.LogLevel) {
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

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string, fallback []string) []string {
	value := getEnv(env, "")
	if value == "" {
		return fallback
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
