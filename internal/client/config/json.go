package config

import (
	"encoding/json"
	"os"

	"github.com/voxgate/voxgate/internal/flagx"
	"github.com/voxgate/voxgate/internal/timex"
)

// JSONConfig is a DTO used exclusively for JSON unmarshalling.
type JSONConfig struct {
	ServerURL      string         `json:"server_url"`
	RequestTimeout timex.Duration `json:"request_timeout"`
	APIKey         string         `json:"api_key"`
}

// parseJSON overlays cfg with the fields present in the file named by -c or
// -config. Without either flag it does nothing.
func parseJSON(cfg *Config) error {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var jc JSONConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return err
	}

	if jc.ServerURL != "" {
		cfg.ServerURL = jc.ServerURL
	}
	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.APIKey != "" {
		cfg.APIKey = jc.APIKey
	}
	return nil
}
