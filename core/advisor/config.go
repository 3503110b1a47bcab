package advisor

import (
	"fmt"

	"github.com/smartcommute/smartcommute/core/model"
)

// Config sets the defaults for departure optimization queries and
// the tomorrow job.
type Config struct {
	WindowStart   string  `json:"window_start"` // earliest candidate, HH:MM
	WindowEnd     string  `json:"window_end"`   // latest candidate, HH:MM
	StepMinutes   int     `json:"step_minutes"`
	DefaultLevel  float64 `json:"default_level"`
	DistanceScale float64 `json:"distance_scale"`

	// Targets are the arrival times the tomorrow job advises for.
	Targets []string `json:"targets"`
	// TomorrowWeather is the job's forecast category when no flag is given.
	TomorrowWeather string `json:"tomorrow_weather"`
}

// SetDefaults applies the standard morning window.
func (c *Config) SetDefaults() {
	if c.WindowStart == "" {
		c.WindowStart = "05:00"
	}
	if c.WindowEnd == "" {
		c.WindowEnd = "10:00"
	}
	if c.StepMinutes == 0 {
		c.StepMinutes = 5
	}
	if c.DefaultLevel == 0 {
		c.DefaultLevel = 0.95
	}
	if c.DistanceScale == 0 {
		c.DistanceScale = 1.0
	}
	if len(c.Targets) == 0 {
		c.Targets = []string{"08:00", "09:00"}
	}
	if c.TomorrowWeather == "" {
		c.TomorrowWeather = string(model.WeatherClear)
	}
}

// Validate checks the window and the level.
func (c Config) Validate() error {
	start, err := model.ParseHHMM(c.WindowStart)
	if err != nil {
		return fmt.Errorf("window_start: %w", err)
	}
	end, err := model.ParseHHMM(c.WindowEnd)
	if err != nil {
		return fmt.Errorf("window_end: %w", err)
	}
	if end <= start {
		return fmt.Errorf("window_end %s not after window_start %s", c.WindowEnd, c.WindowStart)
	}
	if c.StepMinutes <= 0 {
		return fmt.Errorf("step_minutes must be positive")
	}
	if c.DefaultLevel <= 0 || c.DefaultLevel >= 1 {
		return fmt.Errorf("default_level %v outside (0,1)", c.DefaultLevel)
	}
	if c.DistanceScale <= 0 {
		return fmt.Errorf("distance_scale must be positive")
	}
	for _, t := range c.Targets {
		if _, err := model.ParseHHMM(t); err != nil {
			return fmt.Errorf("targets: %w", err)
		}
	}
	if !model.Weather(c.TomorrowWeather).Valid() {
		return fmt.Errorf("tomorrow_weather %q unknown", c.TomorrowWeather)
	}
	return nil
}

// Window returns the parsed candidate window.
func (c Config) Window() (start, end model.MinuteOfDay) {
	start, _ = model.ParseHHMM(c.WindowStart)
	end, _ = model.ParseHHMM(c.WindowEnd)
	return start, end
}
