package config

import "time"

// Config holds runtime settings for the lifedash CLI.
//
// Fields:
//   - ServerEndpointAddr: base URL of the backend HTTP endpoint.
//   - DatabaseDSN: path to the local SQLite database holding durable slots.
//   - RedisAddr: optional redis address; when set, slot changes propagate
//     through pub/sub instead of local polling.
//   - PollInterval: how often local slot polling samples for changes.
//
// Units: PollInterval is a time.Duration (e.g., 2*time.Second).
type Config struct {
	ServerEndpointAddr string
	DatabaseDSN        string
	RedisAddr          string
	PollInterval       time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "http://127.0.0.1:8080"
	c.DatabaseDSN = "lifedash.db"
	c.RedisAddr = ""
	c.PollInterval = 2 * time.Second
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
