// Package config loads service configuration from the environment, with
// optional .env and config/services.yaml overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/ornge/orange-services/pkg/logger"
)

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig controls the shared Postgres pool.
type DatabaseConfig struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // seconds
}

// RedisConfig controls the notification queue connection.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Queue    string
}

// NotifyConfig controls outbound notification delivery.
type NotifyConfig struct {
	// EndpointURL is where the sweeper posts composed notifications
	// (the notification-service enqueue endpoint).
	EndpointURL string
	// PushRelayURL is where the queue worker forwards resolved push payloads.
	PushRelayURL string
}

// SweepConfig controls the notification sweeper.
type SweepConfig struct {
	ExpiringEvery time.Duration
	LowStockEvery time.Duration
	ExpiredEvery  time.Duration
	ExpiringDays  int
	LowStockMax   int
}

// RateLimitConfig controls per-client request throttling.
type RateLimitConfig struct {
	RequestsPerSecond int
	Burst             int
}

// Config is the full configuration for one service process.
type Config struct {
	Service     string
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Notify      NotifyConfig
	Sweeps      SweepConfig
	RateLimit   RateLimitConfig
	CORSOrigins []string
	Logging     logger.LoggingConfig
}

// Load reads configuration for the named service. A .env file is applied
// when present; explicit environment variables win.
func Load(service string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Service: service,
		Server: ServerConfig{
			Host: getEnv("HOST", "0.0.0.0"),
			Port: getEnvInt("PORT", defaultPort(service)),
		},
		Database: DatabaseConfig{
			Driver:          getEnv("DATABASE_DRIVER", "postgres"),
			DSN:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    getEnvInt("DATABASE_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvInt("DATABASE_CONN_MAX_LIFETIME", 300),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getEnvInt("REDIS_DB", 0),
			Queue:    getEnv("NOTIFICATION_QUEUE", "notification_queue"),
		},
		Notify: NotifyConfig{
			EndpointURL:  os.Getenv("NOTIFICATION_ENDPOINT_URL"),
			PushRelayURL: os.Getenv("PUSH_RELAY_URL"),
		},
		Sweeps: SweepConfig{
			ExpiringEvery: getEnvDuration("SWEEP_EXPIRING_EVERY", 12*time.Hour),
			LowStockEvery: getEnvDuration("SWEEP_LOW_STOCK_EVERY", 6*time.Hour),
			ExpiredEvery:  getEnvDuration("SWEEP_EXPIRED_EVERY", 24*time.Hour),
			ExpiringDays:  getEnvInt("SWEEP_EXPIRING_DAYS", 3),
			LowStockMax:   getEnvInt("SWEEP_LOW_STOCK_MAX", 2),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: getEnvInt("RATE_LIMIT_RPS", 20),
			Burst:             getEnvInt("RATE_LIMIT_BURST", 40),
		},
		CORSOrigins: splitList(getEnv("CORS_ORIGIN", "*")),
		Logging: logger.LoggingConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			Format:     getEnv("LOG_FORMAT", "text"),
			Output:     getEnv("LOG_OUTPUT", "stdout"),
			FilePrefix: service,
		},
	}

	if ports, err := LoadServicePortsOrDefault(); err == nil {
		if p, ok := ports[service]; ok && os.Getenv("PORT") == "" {
			cfg.Server.Port = p
		}
	}

	if cfg.Database.DSN == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func defaultPort(service string) int {
	switch service {
	case "user-service":
		return 3001
	case "notification-service":
		return 3002
	case "badal-service":
		return 3003
	case "cash-kundi-service":
		return 3004
	default:
		return 8080
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
