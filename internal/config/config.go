// internal/config/config.go
// Configuration management using environment variables and optional .env files.

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration shared by the league's three binaries. Each
// cmd/ entrypoint reads only the sections relevant to its role.
type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	Auth        AuthConfig
	Retry       RetryConfig
	Features    FeatureFlags
}

// ServerConfig contains HTTP server settings for the agent's own listener.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DatabaseConfig contains the data store settings. MySQL and MongoDB are
// optional side channels and are skipped when their DSN/URI is empty; Redis
// is always connected (it defaults to localhost:6379) and start-up fails if
// it is unreachable.
type DatabaseConfig struct {
	MySQL   MySQLConfig
	MongoDB MongoDBConfig
	Redis   RedisConfig
}

// MySQLConfig configures the optional standings snapshot store.
type MySQLConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// MongoDBConfig configures the optional event audit log.
type MongoDBConfig struct {
	URI      string
	Database string
}

// RedisConfig configures the idempotency cache and rate limiter.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// AuthConfig contains bearer auth_token settings.
type AuthConfig struct {
	TokenSecret     string
	BootstrapSecret string
}

// RetryConfig holds outbound-call retry settings read from the environment.
// The protocol client does not read them; it always uses
// protocol.DefaultRetryPolicy.
type RetryConfig struct {
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	MaxRetries int
}

// FeatureFlags allows toggling optional side channels without code changes.
type FeatureFlags struct {
	EnableEventStream bool
	EnableSnapshots   bool
	EnableEventAudit  bool
	MaintenanceMode   bool
}

// Load reads configuration from environment variables, applying an optional
// .env file in the working directory first.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	cfg := &Config{
		Environment: getEnvOrDefault("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Port:         getEnvOrDefault("PORT", "8080"),
			ReadTimeout:  getDurationOrDefault("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getDurationOrDefault("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:  getDurationOrDefault("SERVER_IDLE_TIMEOUT", 60*time.Second),
		},
		Database: DatabaseConfig{
			MySQL: MySQLConfig{
				DSN:             getEnvOrDefault("MYSQL_DSN", ""),
				MaxOpenConns:    getIntOrDefault("MYSQL_MAX_OPEN_CONNS", 10),
				MaxIdleConns:    getIntOrDefault("MYSQL_MAX_IDLE_CONNS", 2),
				ConnMaxLifetime: getDurationOrDefault("MYSQL_CONN_MAX_LIFETIME", 5*time.Minute),
			},
			MongoDB: MongoDBConfig{
				URI:      getEnvOrDefault("MONGO_URI", ""),
				Database: getEnvOrDefault("MONGO_DATABASE", "evenodd_league"),
			},
			Redis: RedisConfig{
				Addr:     getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
				Password: getEnvOrDefault("REDIS_PASSWORD", ""),
				DB:       getIntOrDefault("REDIS_DB", 0),
			},
		},
		Auth: AuthConfig{
			TokenSecret:     getEnvOrDefault("LEAGUE_TOKEN_SECRET", ""),
			BootstrapSecret: getEnvOrDefault("LEAGUE_BOOTSTRAP_SECRET", ""),
		},
		Retry: RetryConfig{
			BaseDelay:  getDurationOrDefault("RETRY_BASE_DELAY", 1*time.Second),
			MaxDelay:   getDurationOrDefault("RETRY_MAX_DELAY", 30*time.Second),
			MaxRetries: getIntOrDefault("RETRY_MAX_ATTEMPTS", 3),
		},
		Features: FeatureFlags{
			EnableEventStream: getBoolOrDefault("ENABLE_EVENT_STREAM", true),
			EnableSnapshots:   getBoolOrDefault("ENABLE_SNAPSHOTS", false),
			EnableEventAudit:  getBoolOrDefault("ENABLE_EVENT_AUDIT", false),
			MaintenanceMode:   getBoolOrDefault("MAINTENANCE_MODE", false),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration is present. Database
// settings are intentionally excluded: the snapshot store and event audit
// log are optional side channels, not core dependencies.
func (c *Config) Validate() error {
	if c.Auth.TokenSecret == "" {
		return fmt.Errorf("LEAGUE_TOKEN_SECRET is required")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
