package config

import "time"

// Config holds runtime settings for the ShelfSync CLI.
type Config struct {
	// ServerURL is the base URL of the backend REST endpoint.
	ServerURL string
	// DatabasePath is the location of the local SQLite file.
	DatabasePath string
	// RequestTimeout bounds every network round trip.
	RequestTimeout time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:3000/api/v1/"
	c.DatabasePath = "shelfsync.db"
	c.RequestTimeout = 30 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the environment, JSON (if present) and command-line flags. Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
