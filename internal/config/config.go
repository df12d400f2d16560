// Package config provides environment configuration for the client.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the client.
type Config struct {
	// Backend settings
	BaseURL        string
	APIToken       string
	RequestTimeout time.Duration

	// Streaming
	ParsePolicy string // "fail" or "skip"

	// Logging
	LogLevel string

	// Tracing
	TracingEndpoint string
	TracingEnabled  bool
}

// Load reads configuration from environment variables.
func Load() *Config {
	return &Config{
		// Backend
		BaseURL:        getEnv("STUDYHALL_API_URL", "https://api.studyhall.app"),
		APIToken:       getEnv("STUDYHALL_API_TOKEN", ""),
		RequestTimeout: getDurationEnv("STUDYHALL_REQUEST_TIMEOUT", 30*time.Second),

		// Streaming
		ParsePolicy: getEnv("STUDYHALL_PARSE_POLICY", "fail"),

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "info"),

		// Tracing
		TracingEndpoint: getEnv("TRACING_ENDPOINT", "localhost:4318"),
		TracingEnabled:  getBoolEnv("TRACING_ENABLED", false),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
