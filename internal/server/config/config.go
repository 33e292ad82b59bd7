// Package config handles configuration for the server component,
// including defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the journal server.
//
// Fields:
//   - EndpointAddr: bind address for the HTTP endpoint.
//   - DatabaseDSN: path to the SQLite database file.
//   - ShutdownGrace: how long to wait for in-flight requests on shutdown.
type Config struct {
	EndpointAddr  string
	DatabaseDSN   string
	ShutdownGrace time.Duration
}

// LoadDefaults populates Config with sensible development defaults.
func (c *Config) LoadDefaults() {
	c.EndpointAddr = ":5000"
	c.DatabaseDSN = "daybook-server.db"
	c.ShutdownGrace = 5 * time.Second
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
