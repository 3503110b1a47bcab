package config

import "fmt"

// AdviceLogConfig defines storage and rotation for the advice audit log.
type AdviceLogConfig struct {
	// Backend selects the store type: "jsonl", "sqlite" or "memory".
	Backend string `json:"backend"`
	// Path is the file location of the store. Ignored for "memory".
	Path string `json:"path"`
	// MaxSizeMB triggers JSONL rotation when the file exceeds this size.
	// Zero disables rotation.
	MaxSizeMB int `json:"max_size_mb"`
	// MaxBackups limits the number of rotated files to keep.
	MaxBackups int `json:"max_backups"`
	// MaxAgeDays removes rotated files older than this number of days.
	MaxAgeDays int `json:"max_age_days"`
}

// SetDefaults applies sane defaults.
func (c *AdviceLogConfig) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "jsonl"
	}
	if c.Path == "" {
		c.Path = "advice.log"
	}
}

// Validate checks mandatory fields.
func (c AdviceLogConfig) Validate() error {
	switch c.Backend {
	case "jsonl", "sqlite", "memory":
	default:
		return fmt.Errorf("unknown backend %s", c.Backend)
	}
	if c.Backend != "memory" && c.Path == "" {
		return fmt.Errorf("path is required")
	}
	return nil
}
