package config

import (
	"fmt"
	"os"
	"time"
)

// APIKeyEnv names the environment variable consulted when no -k flag is given.
const APIKeyEnv = "VOXGATE_API_KEY"

// Config holds runtime settings for the voxgate CLI.
type Config struct {
	ServerURL      string
	RequestTimeout time.Duration
	APIKey         string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://localhost:3000"
	c.RequestTimeout = 90 * time.Second
	c.APIKey = os.Getenv(APIKeyEnv)
}

// LoadConfig applies defaults, then overlays values from JSON (if present)
// and command-line flags. Later sources take precedence over earlier ones.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJSON(cfg); err != nil {
		return nil, fmt.Errorf("json config: %w", err)
	}
	if err := parseFlags(cfg); err != nil {
		return nil, fmt.Errorf("flags: %w", err)
	}
	return cfg, nil
}
