package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/smartcommute/smartcommute/core/advisor"
	"github.com/smartcommute/smartcommute/core/metrics"
	"github.com/smartcommute/smartcommute/core/quantile"
	"github.com/smartcommute/smartcommute/core/sim"
	"github.com/smartcommute/smartcommute/infra/mqtt"
)

// Config is the full service configuration.
type Config struct {
	Simulation sim.Config      `json:"simulation"`
	Training   quantile.Config `json:"training"`
	Advisor    advisor.Config  `json:"advisor"`
	API        APIConfig       `json:"api"`
	MQTT       mqtt.Config     `json:"mqtt"`
	Metrics    metrics.Config  `json:"metrics"`
	AdviceLog  AdviceLogConfig `json:"advice_log"`
	Sentry     SentryConfig    `json:"sentry"`
}

// Load reads the configuration file at path (YAML or JSON by extension),
// applies SC_-prefixed environment overrides, then fills defaults and
// validates every section.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides, e.g. SC_API__ADDR=:9090.
	if err := k.Load(env.Provider("SC_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "sc_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	if err := cfg.Finalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Finalize fills defaults and validates every section. Load calls it;
// hand-built configs in tests use it directly.
func (c *Config) Finalize() error {
	c.Simulation.SetDefaults()
	c.Training.SetDefaults()
	c.Advisor.SetDefaults()
	c.API.SetDefaults()
	c.MQTT.SetDefaults()
	c.AdviceLog.SetDefaults()
	if err := c.Simulation.Validate(); err != nil {
		return fmt.Errorf("simulation: %w", err)
	}
	if err := c.Training.Validate(); err != nil {
		return fmt.Errorf("training: %w", err)
	}
	if err := c.Advisor.Validate(); err != nil {
		return fmt.Errorf("advisor: %w", err)
	}
	if err := c.API.Validate(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.MQTT.Validate(); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}
	if err := c.AdviceLog.Validate(); err != nil {
		return fmt.Errorf("advice_log: %w", err)
	}
	if err := c.Sentry.Validate(); err != nil {
		return fmt.Errorf("sentry: %w", err)
	}
	return nil
}
