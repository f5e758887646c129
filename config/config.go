// config/config.go
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fadhlanhapp/tripplanner-backend/utils"
)

// Store backends
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// DB holds the Postgres connection settings
type DB struct {
	Host       string
	Port       string
	User       string
	Password   string
	Name       string
	SSLMode    string
	AutoSchema bool
}

// DSN builds the lib/pq connection string
func (d DB) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// Config is everything the server reads from the environment
type Config struct {
	Port         string
	GinMode      string
	StoreBackend string
	DB           DB

	AccessTokenSecret  string
	AccessTokenTTL     time.Duration
	RefreshTokenSecret string
	RefreshTokenTTL    time.Duration

	CORSAllowedOrigins []string
	RequestTimeout     time.Duration
	ReportLocation     *time.Location

	NewRelicLicenseKey string
	NewRelicAppName    string
}

// Load reads the configuration from environment variables, applying defaults
func Load() (*Config, error) {
	cfg := &Config{
		Port:         getEnvOrDefault("PORT", "8080"),
		GinMode:      strings.TrimSpace(os.Getenv("GIN_MODE")),
		StoreBackend: strings.ToLower(getEnvOrDefault("STORE_BACKEND", StorePostgres)),
		DB: DB{
			Host:       getEnvOrDefault("DB_HOST", "localhost"),
			Port:       getEnvOrDefault("DB_PORT", "5432"),
			User:       getEnvOrDefault("DB_USER", "postgres"),
			Password:   getEnvOrDefault("DB_PASSWORD", "postgres"),
			Name:       getEnvOrDefault("DB_NAME", "tripplanner"),
			SSLMode:    getEnvOrDefault("DB_SSLMODE", "disable"),
			AutoSchema: getBool("DB_AUTO_SCHEMA", false),
		},
		AccessTokenSecret:  os.Getenv("ACCESS_TOKEN_SECRET"),
		RefreshTokenSecret: os.Getenv("REFRESH_TOKEN_SECRET"),
		NewRelicLicenseKey: os.Getenv("NEW_RELIC_LICENSE_KEY"),
		NewRelicAppName:    getEnvOrDefault("NEW_RELIC_APP_NAME", "TripPlanner API"),
	}

	var err error
	if cfg.AccessTokenTTL, err = getDuration("ACCESS_TOKEN_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.RefreshTokenTTL, err = getDuration("REFRESH_TOKEN_TTL", 240*time.Hour); err != nil {
		return nil, err
	}
	if cfg.RequestTimeout, err = getDuration("REQUEST_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}
	if cfg.ReportLocation, err = utils.ParseUTCOffset(getEnvOrDefault("REPORT_TZ_OFFSET", "+05:30")); err != nil {
		return nil, fmt.Errorf("REPORT_TZ_OFFSET: %w", err)
	}

	for _, origin := range strings.Split(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "*"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
		}
	}

	switch cfg.StoreBackend {
	case StorePostgres, StoreMemory:
	default:
		return nil, fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", StorePostgres, StoreMemory, cfg.StoreBackend)
	}

	if cfg.AccessTokenSecret == "" || cfg.RefreshTokenSecret == "" {
		return nil, fmt.Errorf("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET are required")
	}

	return cfg, nil
}

// AllowsAnyOrigin reports whether CORS is open to every origin
func (c *Config) AllowsAnyOrigin() bool {
	return len(c.CORSAllowedOrigins) == 1 && c.CORSAllowedOrigins[0] == "*"
}

// Helper function to get environment variable with default value
func getEnvOrDefault(key, defaultValue string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value
}

func getBool(key string, defaultValue bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		slog.Warn("ignoring invalid boolean", "key", key, "value", raw)
		return defaultValue
	}
	return value
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return value, nil
}
