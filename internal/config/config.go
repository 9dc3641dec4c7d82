package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Supported storage backends
const (
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Config holds all configuration values for the application
type Config struct {
	Port           string
	AllowedOrigins []string
	LogLevel       string
	Environment    string
	StorageBackend string
	DatabaseURL    string
	RedisURL       string

	// IPSalt is the secret salt mixed into visitor fingerprints. Loaded once
	// at startup and never logged. When empty, recording requests fail with a
	// configuration error; read-only count queries still work.
	IPSalt string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	return &Config{
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: parseOrigins(getEnv("ALLOWED_ORIGINS", "*")),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		Environment:    getEnv("ENVIRONMENT", "production"),
		StorageBackend: strings.ToLower(getEnv("STORAGE_BACKEND", BackendPostgres)),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		RedisURL:       getEnv("REDIS_URL", ""),
		IPSalt:         getEnv("IP_SALT", ""),
	}, nil
}

// getEnv gets an environment variable with a fallback value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// parseOrigins parses comma-separated origins into a slice
func parseOrigins(origins string) []string {
	if origins == "" {
		return []string{}
	}

	parts := strings.Split(origins, ",")
	result := make([]string, 0, len(parts))

	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
