package quantile

import "fmt"

// Config controls quantile model fitting.
type Config struct {
	// Levels are the quantiles to fit, each in (0,1).
	Levels []float64 `json:"levels"`
	// TimeBinMinutes is the width of the departure-time bins.
	TimeBinMinutes int `json:"time_bin_minutes"`
	// MinCellSamples is the smallest cell a prediction may come from
	// before backing off to a coarser conditioning.
	MinCellSamples int `json:"min_cell_samples"`
	// MinRecords is the smallest corpus accepted for fitting.
	MinRecords int `json:"min_records"`
	// HoldoutFrac is the fraction of records held out for evaluation.
	HoldoutFrac float64 `json:"holdout_frac"`
	// Seed drives the deterministic train/holdout shuffle.
	Seed int64 `json:"seed"`
}

// SetDefaults applies the standard training setup.
func (c *Config) SetDefaults() {
	if len(c.Levels) == 0 {
		c.Levels = []float64{0.50, 0.75, 0.90, 0.95}
	}
	if c.TimeBinMinutes == 0 {
		c.TimeBinMinutes = 15
	}
	if c.MinCellSamples == 0 {
		c.MinCellSamples = 20
	}
	if c.MinRecords == 0 {
		c.MinRecords = 50
	}
	if c.HoldoutFrac == 0 {
		c.HoldoutFrac = 0.2
	}
	if c.Seed == 0 {
		c.Seed = 42
	}
}

// Validate checks level and bin sanity.
func (c Config) Validate() error {
	if len(c.Levels) == 0 {
		return fmt.Errorf("levels must not be empty")
	}
	seen := map[float64]bool{}
	for _, l := range c.Levels {
		if l <= 0 || l >= 1 {
			return fmt.Errorf("level %v outside (0,1)", l)
		}
		if seen[l] {
			return fmt.Errorf("duplicate level %v", l)
		}
		seen[l] = true
	}
	if c.TimeBinMinutes <= 0 || c.TimeBinMinutes%5 != 0 {
		return fmt.Errorf("time_bin_minutes %d must be a positive multiple of 5", c.TimeBinMinutes)
	}
	if c.MinCellSamples < 1 {
		return fmt.Errorf("min_cell_samples must be at least 1")
	}
	if c.MinRecords < 2 {
		return fmt.Errorf("min_records must be at least 2")
	}
	if c.HoldoutFrac <= 0 || c.HoldoutFrac >= 1 {
		return fmt.Errorf("holdout_frac %v outside (0,1)", c.HoldoutFrac)
	}
	return nil
}
