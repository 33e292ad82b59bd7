package config

import "time"

// Config holds runtime settings for the journal client.
//
// Fields:
//   - ServerURL: base URL of the sync server.
//   - DatabaseDSN: path to the local SQLite database file.
//   - SyncInterval: gap between scheduled sync rounds.
//   - RequestTimeout: per-request deadline for server calls.
type Config struct {
	ServerURL      string
	DatabaseDSN    string
	SyncInterval   time.Duration
	RequestTimeout time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://localhost:5000"
	c.DatabaseDSN = "daybook.db"
	c.SyncInterval = 10 * time.Second
	c.RequestTimeout = 2 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
