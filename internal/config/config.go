package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	App       AppConfig
	LinkAPI   LinkAPIConfig
	Analytics AnalyticsConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	RequestTimeout time.Duration
	AllowedOrigin  string
}

// DatabaseConfig holds PostgreSQL connection settings
type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Environment        string
	LogLevel           string
	RateLimitEnabled   bool
	RateLimitPerMinute int
	EnableMetrics      bool
}

// LinkAPIConfig points at the external service that mints links
type LinkAPIConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// AnalyticsConfig bounds the analytics queries
type AnalyticsConfig struct {
	// ScanLimit caps how many recent events a session listing reads.
	// Session totals are counted inside that sample.
	ScanLimit       int
	DefaultPageSize int
	MaxPageSize     int
	StatsWindowDays int
	StatsCacheTTL   time.Duration
}

// Load reads configuration from environment variables. Values from a .env
// file in the working directory are used for variables not already set.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnv("SERVER_PORT", "8080"),
			ReadTimeout:    parseDuration("SERVER_READ_TIMEOUT", "10s"),
			WriteTimeout:   parseDuration("SERVER_WRITE_TIMEOUT", "30s"),
			IdleTimeout:    parseDuration("SERVER_IDLE_TIMEOUT", "120s"),
			RequestTimeout: parseDuration("SERVER_REQUEST_TIMEOUT", "25s"),
			AllowedOrigin:  getEnv("CORS_ALLOWED_ORIGIN", "*"),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "linktracker"),
			Password:        getEnv("DB_PASSWORD", ""),
			DBName:          getEnv("DB_NAME", "linktracker"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:    parseInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    parseInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: parseDuration("DB_CONN_MAX_LIFETIME", "5m"),
			AutoMigrate:     parseBool("DB_AUTO_MIGRATE", true),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       parseInt("REDIS_DB", 0),
		},
		App: AppConfig{
			Environment:        getEnv("APP_ENV", "development"),
			LogLevel:           getEnv("LOG_LEVEL", "info"),
			RateLimitEnabled:   parseBool("RATE_LIMIT_ENABLED", true),
			RateLimitPerMinute: parseInt("RATE_LIMIT_REQUESTS_PER_MINUTE", 300),
			EnableMetrics:      parseBool("ENABLE_METRICS", true),
		},
		LinkAPI: LinkAPIConfig{
			BaseURL: getEnv("LINK_API_BASE_URL", "http://localhost:3001"),
			APIKey:  getEnv("LINK_API_KEY", ""),
			Timeout: parseDuration("LINK_API_TIMEOUT", "10s"),
		},
		Analytics: AnalyticsConfig{
			ScanLimit:       parseInt("ANALYTICS_SCAN_LIMIT", 1000),
			DefaultPageSize: parseInt("ANALYTICS_DEFAULT_PAGE_SIZE", 50),
			MaxPageSize:     parseInt("ANALYTICS_MAX_PAGE_SIZE", 500),
			StatsWindowDays: parseInt("STATS_WINDOW_DAYS", 30),
			StatsCacheTTL:   parseDuration("STATS_CACHE_TTL", "1m"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var problems []string

	if c.Analytics.ScanLimit < 1 {
		problems = append(problems, "ANALYTICS_SCAN_LIMIT must be positive")
	}
	if c.Analytics.DefaultPageSize < 1 {
		problems = append(problems, "ANALYTICS_DEFAULT_PAGE_SIZE must be positive")
	}
	if c.Analytics.MaxPageSize < c.Analytics.DefaultPageSize {
		problems = append(problems, "ANALYTICS_MAX_PAGE_SIZE must not be below ANALYTICS_DEFAULT_PAGE_SIZE")
	}
	if c.Analytics.StatsWindowDays < 1 {
		problems = append(problems, "STATS_WINDOW_DAYS must be positive")
	}
	if c.App.RateLimitEnabled && c.App.RateLimitPerMinute < 1 {
		problems = append(problems, "RATE_LIMIT_REQUESTS_PER_MINUTE must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// RedisAddr returns the Redis address in host:port format
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func parseBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func parseDuration(key string, defaultValue string) time.Duration {
	duration, err := time.ParseDuration(getEnv(key, defaultValue))
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}
	return duration
}
