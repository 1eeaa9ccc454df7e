// Package config loads service settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds every runtime setting.
type Config struct {
	HTTPAddr        string
	ShutdownTimeout time.Duration

	DBDriver     string
	DBPath       string
	DatabaseURL  string
	DBDebug      bool
	StoreTimeout time.Duration

	RedisAddr     string
	RedisPassword string
	CacheTTL      time.Duration

	JWTSecret    string
	JWTIssuer    string
	JWTTTL       time.Duration
	AuthDisabled bool

	SubscriberBuffer int
	RelayBuffer      int
	CORSOrigins      string
}

// Load reads envFile when it exists, then the process environment.
// Variables already set in the environment win over the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	cfg := &Config{
		HTTPAddr:         getEnv("HTTP_ADDR", ":3000"),
		ShutdownTimeout:  getDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
		DBDriver:         strings.ToLower(getEnv("DB_DRIVER", DriverSQLite)),
		DBPath:           getEnv("DB_PATH", "tasks.db"),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		DBDebug:          getBool("DB_DEBUG", false),
		StoreTimeout:     getDuration("STORE_TIMEOUT", 5*time.Second),
		RedisAddr:        getEnv("REDIS_ADDR", ""),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		CacheTTL:         getDuration("CACHE_TTL", 5*time.Minute),
		JWTSecret:        getEnv("JWT_SECRET", "change-me-in-production"),
		JWTIssuer:        getEnv("JWT_ISSUER", "kanban-task-service"),
		JWTTTL:           getDuration("JWT_TTL", 24*time.Hour),
		AuthDisabled:     getBool("AUTH_DISABLED", false),
		SubscriberBuffer: getInt("SUBSCRIBER_BUFFER", 64),
		RelayBuffer:      getInt("RELAY_BUFFER", 1024),
		CORSOrigins:      getEnv("CORS_ALLOWED_ORIGINS", "*"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects combinations the service cannot start with.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case DriverSQLite:
		if c.DBPath == "" {
			return errors.New("DB_PATH is required for the sqlite driver")
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.StoreTimeout <= 0 {
		return errors.New("STORE_TIMEOUT must be positive")
	}
	if c.SubscriberBuffer <= 0 || c.RelayBuffer <= 0 {
		return errors.New("SUBSCRIBER_BUFFER and RELAY_BUFFER must be positive")
	}
	if !c.AuthDisabled && c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required unless AUTH_DISABLED is set")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return defaultValue
}
