package plan

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/smartcommute/smartcommute/core/model"
)

// PlanConfig defines weekly planning parameters loaded from configuration.
type PlanConfig struct {
	Targets    []string `json:"targets" yaml:"targets"`
	Confidence float64  `json:"confidence" yaml:"confidence"`
	// Weather maps weekday names to a forecast category. Days without an
	// entry use DefaultWeather.
	Weather        map[string]string `json:"weather" yaml:"weather"`
	DefaultWeather string            `json:"default_weather" yaml:"default_weather"`
}

// SetDefaults fills the standard targets and confidence.
func (c *PlanConfig) SetDefaults() {
	if len(c.Targets) == 0 {
		c.Targets = []string{"08:00", "09:00"}
	}
	if c.Confidence == 0 {
		c.Confidence = 0.95
	}
	if c.DefaultWeather == "" {
		c.DefaultWeather = string(model.WeatherClear)
	}
}

// Validate checks targets, confidence and every weather category.
func (c PlanConfig) Validate() error {
	if len(c.Targets) == 0 {
		return fmt.Errorf("targets must not be empty")
	}
	for _, t := range c.Targets {
		if _, err := model.ParseHHMM(t); err != nil {
			return fmt.Errorf("targets: %w", err)
		}
	}
	if c.Confidence <= 0 || c.Confidence >= 1 {
		return fmt.Errorf("confidence %v outside (0,1)", c.Confidence)
	}
	if !model.Weather(c.DefaultWeather).Valid() {
		return fmt.Errorf("default_weather %q unknown", c.DefaultWeather)
	}
	for day, w := range c.Weather {
		if _, err := model.ParseWeekday(day); err != nil {
			return fmt.Errorf("weather: %w", err)
		}
		if !model.Weather(w).Valid() {
			return fmt.Errorf("weather for %s: %q unknown", day, w)
		}
	}
	return nil
}

func (c PlanConfig) weatherFor(d time.Weekday) string {
	for day, w := range c.Weather {
		if wd, err := model.ParseWeekday(day); err == nil && wd == d {
			return w
		}
	}
	return c.DefaultWeather
}

// LoadConfig loads PlanConfig from a JSON or YAML file.
func LoadConfig(path string) (PlanConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return PlanConfig{}, err
	}
	ext := strings.ToLower(filepath.Ext(path))
	var cfg PlanConfig
	switch ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &cfg)
	case ".json":
		err = json.Unmarshal(b, &cfg)
	default:
		return PlanConfig{}, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err != nil {
		return PlanConfig{}, err
	}
	cfg.SetDefaults()
	return cfg, nil
}

// DecodeConfig reads from r to decode a PlanConfig.
func DecodeConfig(r io.Reader, format string) (PlanConfig, error) {
	var cfg PlanConfig
	switch strings.ToLower(format) {
	case "yaml", "yml":
		dec := yaml.NewDecoder(r)
		if err := dec.Decode(&cfg); err != nil {
			return cfg, err
		}
	case "json":
		dec := json.NewDecoder(r)
		if err := dec.Decode(&cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported format: %s", format)
	}
	cfg.SetDefaults()
	return cfg, nil
}
