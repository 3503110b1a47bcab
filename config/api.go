package config

import "fmt"

// APIConfig configures the HTTP service surface.
type APIConfig struct {
	// Addr is the listen address of the JSON API.
	Addr string `json:"addr"`
	// LogsToken guards the advice log endpoint when non-empty.
	LogsToken string `json:"logs_token"`
	// BundlePath is the model artifact served by predict and advise.
	BundlePath string `json:"bundle_path"`
}

// SetDefaults applies the standard listen address and artifact path.
func (c *APIConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.BundlePath == "" {
		c.BundlePath = "models/bundle.json"
	}
}

// Validate checks mandatory fields.
func (c APIConfig) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr is required")
	}
	if c.BundlePath == "" {
		return fmt.Errorf("bundle_path is required")
	}
	return nil
}
