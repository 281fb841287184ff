// Package config loads service settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/msvee3/Interview-prep/internal/users"
)

type Config struct {
	Port        string
	CORSOrigins []string
	JWTSecret   string

	MongoURI             string
	MongoDB              string
	InterviewsCollection string

	Postgres users.PostgresConfig

	RedisAddr        string
	IdentityCacheTTL time.Duration

	Provider         string
	OracleTimeout    time.Duration
	OracleMaxRetries uint64
	OracleBackoff    time.Duration
}

// LoadConfig reads .env when present, then the environment. Variables
// already set in the environment win over the file.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var err error
	config := &Config{
		Port:                 getEnvOrDefault("PORT", "8000"),
		CORSOrigins:          splitList(getEnvOrDefault("CORS_ORIGINS", "http://localhost:5173")),
		JWTSecret:            os.Getenv("JWT_SECRET"),
		MongoURI:             os.Getenv("MONGO_URI"),
		MongoDB:              getEnvOrDefault("MONGO_DB", "interview_prep"),
		InterviewsCollection: getEnvOrDefault("INTERVIEWS_COLLECTION", "interviews"),
		Postgres: users.PostgresConfig{
			Host:     getEnvOrDefault("POSTGRES_HOST", "localhost"),
			Port:     getEnvOrDefault("POSTGRES_PORT", "5432"),
			User:     getEnvOrDefault("POSTGRES_USER", "postgres"),
			Password: getEnvOrDefault("POSTGRES_PASSWORD", "postgres"),
			DBName:   getEnvOrDefault("POSTGRES_DB", "interview_prep"),
			SSLMode:  getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
		},
		RedisAddr: os.Getenv("REDIS_ADDR"),
		Provider:  getEnvOrDefault("AI_PROVIDER", "gemini"),
	}

	if config.IdentityCacheTTL, err = getEnvDuration("IDENTITY_CACHE_TTL", 5*time.Minute); err != nil {
		return nil, err
	}
	if config.OracleTimeout, err = getEnvDuration("ORACLE_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if config.OracleBackoff, err = getEnvDuration("ORACLE_BACKOFF", 500*time.Millisecond); err != nil {
		return nil, err
	}
	if config.OracleMaxRetries, err = getEnvUint("ORACLE_MAX_RETRIES", 2); err != nil {
		return nil, err
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

func validateConfig(config *Config) error {
	if config.Provider != "gemini" {
		return errors.New("unsupported AI provider: " + config.Provider + ". Currently supported: gemini")
	}
	if config.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if _, err := strconv.Atoi(config.Port); err != nil {
		return fmt.Errorf("PORT must be numeric, got %q", config.Port)
	}
	if len(config.CORSOrigins) == 0 {
		return errors.New("CORS_ORIGINS must list at least one origin")
	}
	if config.OracleTimeout <= 0 {
		return errors.New("ORACLE_TIMEOUT must be positive")
	}
	// Gemini validation is handled by gemini.NewConfig()
	return nil
}

// MemoryStore reports whether sessions are kept in process memory.
func (c *Config) MemoryStore() bool {
	return c.MongoURI == ""
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func getEnvUint(key string, defaultValue uint64) (uint64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
