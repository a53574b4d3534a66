// Package config loads server configuration from the environment.
//
// A .env file is honored when present (development convenience); real
// environment variables always win. Every knob has a usable default so
// the server starts with zero configuration.
package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config is the resolved server configuration.
type Config struct {
	Port     string
	DBPath   string
	LogLevel string
}

// Load reads .env (if any) and the environment.
func Load() Config {
	// Missing .env is fine; env vars may come from the real environment.
	_ = godotenv.Load()

	return Config{
		Port:     getenv("PORT", "8080"),
		DBPath:   getenv("DB_PATH", "fiscal.db"),
		LogLevel: getenv("LOG_LEVEL", "info"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
