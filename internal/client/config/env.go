package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Environment variable names. A .env file in the working directory is read
// first; real environment variables win over it.
const (
	envServerURL    = "SHELFSYNC_SERVER_URL"
	envDatabasePath = "SHELFSYNC_DATABASE_PATH"
	envTimeout      = "SHELFSYNC_REQUEST_TIMEOUT"
)

// parseEnv overlays Config with values from the environment. Missing
// variables leave the current value untouched; a malformed timeout is
// ignored rather than fatal, the flag layer can still fix it.
func parseEnv(cfg *Config) {
	// Load does not override variables already present in the environment.
	_ = godotenv.Load()

	if v := os.Getenv(envServerURL); v != "" {
		cfg.ServerURL = v
	}
	if v := os.Getenv(envDatabasePath); v != "" {
		cfg.DatabasePath = v
	}
	if v := os.Getenv(envTimeout); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.RequestTimeout = d
		}
	}
}
