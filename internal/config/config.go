// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// AppConfig is the top-level service configuration.
type AppConfig struct {
	Port         int
	DatabaseURL  string // empty means the in-memory store is used
	GeminiAPIKey string

	// Bootstrap admin account, seeded at startup if absent.
	AdminUsername string
	AdminEmail    string
	AdminPassword string

	AllowedOrigin string
}

// NewAppConfig reads the service configuration from environment variables.
// PORT defaults to 8080, DATABASE_URL is optional, GEMINI_API_KEY is required.
func NewAppConfig() (*AppConfig, error) {
	port := 8080
	if portStr := os.Getenv("PORT"); portStr != "" {
		p, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT: %v", err)
		}
		port = p
	}
	if port < 1 || port > 65535 {
		return nil, fmt.Errorf("PORT out of range: %d", port)
	}

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required but not set")
	}

	cfg := &AppConfig{
		Port:          port,
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		GeminiAPIKey:  apiKey,
		AdminUsername: envOrDefault("ADMIN_USERNAME", "admin"),
		AdminEmail:    envOrDefault("ADMIN_EMAIL", "admin@fraudguard.ai"),
		AdminPassword: envOrDefault("ADMIN_PASSWORD", "admin123"),
		AllowedOrigin: envOrDefault("ALLOWED_ORIGIN", "*"),
	}
	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
