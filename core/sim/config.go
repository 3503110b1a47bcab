package sim

import (
	"fmt"
	"time"

	"github.com/smartcommute/smartcommute/core/model"
)

// RushBump is one Gaussian congestion bump on the time-of-day axis.
// Centers and widths are fractional hours.
type RushBump struct {
	Height     float64 `json:"height"`
	CenterHour float64 `json:"center_hour"`
	WidthHour  float64 `json:"width_hour"`
}

// Config drives the synthetic commute generator. All constants are
// tunable; the defaults reproduce the calibration corpus.
type Config struct {
	Seed      int64  `json:"seed"`
	StartDate string `json:"start_date"` // first civil day, YYYY-MM-DD
	EndDate   string `json:"end_date"`   // last civil day, inclusive

	BaseTravelMin float64 `json:"base_travel_min"` // fixed route constant
	DistanceMiles float64 `json:"distance_miles"`
	MinTravelMin  float64 `json:"min_travel_min"` // clip floor
	MaxTravelMin  float64 `json:"max_travel_min"` // clip ceiling

	RushBumps             []RushBump         `json:"rush_bumps"`
	WeekdayFactors        map[string]float64 `json:"weekday_factors"` // scales the bump term only
	MultiplierJitterSigma float64            `json:"multiplier_jitter_sigma"`

	WeatherProbs            map[string]map[string]float64 `json:"weather_probs"` // season -> weather -> prob
	WeatherPenaltyMean      map[string]float64            `json:"weather_penalty_mean"`
	WeatherPenaltyNoiseFrac float64                       `json:"weather_penalty_noise_frac"`

	CrashBaseProb         float64            `json:"crash_base_prob"`
	CrashRushBoosts       []RushBump         `json:"crash_rush_boosts"`
	CrashWeatherBoost     map[string]float64 `json:"crash_weather_boost"` // monotone in severity
	CrashProbCap          float64            `json:"crash_prob_cap"`
	CrashDelayMu          float64            `json:"crash_delay_mu"`    // log scale
	CrashDelaySigma       float64            `json:"crash_delay_sigma"` // log scale
	CrashDelayCapQuantile float64            `json:"crash_delay_cap_quantile"`
}

// SetDefaults applies the calibration constants for unset fields.
func (c *Config) SetDefaults() {
	if c.Seed == 0 {
		c.Seed = 42
	}
	if c.StartDate == "" {
		c.StartDate = "2023-01-02"
	}
	if c.EndDate == "" {
		c.EndDate = "2024-12-31"
	}
	if c.BaseTravelMin == 0 {
		c.BaseTravelMin = 54
	}
	if c.DistanceMiles == 0 {
		c.DistanceMiles = 54
	}
	if c.MinTravelMin == 0 {
		c.MinTravelMin = 40
	}
	if c.MaxTravelMin == 0 {
		c.MaxTravelMin = 210
	}
	if len(c.RushBumps) == 0 {
		c.RushBumps = []RushBump{
			{Height: 0.40, CenterHour: 7.75, WidthHour: 0.6},
			{Height: 0.15, CenterHour: 8.75, WidthHour: 0.5},
			{Height: 0.35, CenterHour: 17.25, WidthHour: 0.7},
			{Height: 0.12, CenterHour: 16.25, WidthHour: 0.5},
		}
	}
	if len(c.WeekdayFactors) == 0 {
		c.WeekdayFactors = map[string]float64{
			"Mon": 0.95, "Tue": 1.05, "Wed": 1.08, "Thu": 1.03, "Fri": 0.92,
		}
	}
	if c.MultiplierJitterSigma == 0 {
		c.MultiplierJitterSigma = 0.05
	}
	if len(c.WeatherProbs) == 0 {
		c.WeatherProbs = map[string]map[string]float64{
			"winter": {"Clear": 0.50, "Rain": 0.25, "Heavy Rain": 0.15, "Fog": 0.10},
			"spring": {"Clear": 0.55, "Rain": 0.25, "Heavy Rain": 0.12, "Fog": 0.08},
			"summer": {"Clear": 0.45, "Rain": 0.30, "Heavy Rain": 0.20, "Fog": 0.05},
			"fall":   {"Clear": 0.60, "Rain": 0.20, "Heavy Rain": 0.10, "Fog": 0.10},
		}
	}
	if len(c.WeatherPenaltyMean) == 0 {
		c.WeatherPenaltyMean = map[string]float64{
			"Clear": 0, "Rain": 6, "Heavy Rain": 14, "Fog": 4,
		}
	}
	if c.WeatherPenaltyNoiseFrac == 0 {
		c.WeatherPenaltyNoiseFrac = 0.3
	}
	if c.CrashBaseProb == 0 {
		c.CrashBaseProb = 0.04
	}
	if len(c.CrashRushBoosts) == 0 {
		c.CrashRushBoosts = []RushBump{
			{Height: 0.08, CenterHour: 7.75, WidthHour: 0.7},
			{Height: 0.06, CenterHour: 17.25, WidthHour: 0.7},
		}
	}
	if len(c.CrashWeatherBoost) == 0 {
		c.CrashWeatherBoost = map[string]float64{
			"Clear": 0, "Fog": 0.04, "Rain": 0.06, "Heavy Rain": 0.10,
		}
	}
	if c.CrashProbCap == 0 {
		c.CrashProbCap = 0.35
	}
	if c.CrashDelayMu == 0 {
		c.CrashDelayMu = 2.5
	}
	if c.CrashDelaySigma == 0 {
		c.CrashDelaySigma = 0.6
	}
	if c.CrashDelayCapQuantile == 0 {
		c.CrashDelayCapQuantile = 0.995
	}
}

// Start returns the parsed first day of the range.
func (c Config) Start() (time.Time, error) {
	return time.Parse("2006-01-02", c.StartDate)
}

// End returns the parsed last day of the range.
func (c Config) End() (time.Time, error) {
	return time.Parse("2006-01-02", c.EndDate)
}

// Validate checks ranges, probability tables and the severity ordering of
// the crash boosts.
func (c Config) Validate() error {
	start, err := c.Start()
	if err != nil {
		return fmt.Errorf("start_date: %w", err)
	}
	end, err := c.End()
	if err != nil {
		return fmt.Errorf("end_date: %w", err)
	}
	if end.Before(start) {
		return fmt.Errorf("end_date %s before start_date %s", c.EndDate, c.StartDate)
	}
	if c.BaseTravelMin <= 0 {
		return fmt.Errorf("base_travel_min must be positive")
	}
	if c.MinTravelMin <= 0 || c.MinTravelMin >= c.MaxTravelMin {
		return fmt.Errorf("travel bounds [%v, %v] invalid", c.MinTravelMin, c.MaxTravelMin)
	}
	if c.MultiplierJitterSigma < 0 {
		return fmt.Errorf("multiplier_jitter_sigma must not be negative")
	}
	for _, season := range model.Seasons() {
		probs, ok := c.WeatherProbs[string(season)]
		if !ok {
			return fmt.Errorf("weather_probs missing season %s", season)
		}
		sum := 0.0
		for _, w := range model.Weathers() {
			p, ok := probs[string(w)]
			if !ok {
				return fmt.Errorf("weather_probs[%s] missing %s", season, w)
			}
			if p < 0 {
				return fmt.Errorf("weather_probs[%s][%s] negative", season, w)
			}
			sum += p
		}
		if sum < 0.999 || sum > 1.001 {
			return fmt.Errorf("weather_probs[%s] sums to %.3f, want 1", season, sum)
		}
	}
	for _, w := range model.Weathers() {
		mean, ok := c.WeatherPenaltyMean[string(w)]
		if !ok {
			return fmt.Errorf("weather_penalty_mean missing %s", w)
		}
		if mean < 0 {
			return fmt.Errorf("weather_penalty_mean[%s] negative", w)
		}
	}
	if c.CrashBaseProb < 0 || c.CrashBaseProb > 1 {
		return fmt.Errorf("crash_base_prob %v outside [0,1]", c.CrashBaseProb)
	}
	if c.CrashProbCap <= 0 || c.CrashProbCap > 1 {
		return fmt.Errorf("crash_prob_cap %v outside (0,1]", c.CrashProbCap)
	}
	prev := -1.0
	for _, w := range model.Weathers() {
		boost, ok := c.CrashWeatherBoost[string(w)]
		if !ok {
			return fmt.Errorf("crash_weather_boost missing %s", w)
		}
		if boost < prev {
			return fmt.Errorf("crash_weather_boost must not decrease with severity (%s)", w)
		}
		prev = boost
	}
	for _, d := range []string{"Mon", "Tue", "Wed", "Thu", "Fri"} {
		if f, ok := c.WeekdayFactors[d]; !ok || f <= 0 {
			return fmt.Errorf("weekday_factors[%s] missing or not positive", d)
		}
	}
	if c.CrashDelaySigma <= 0 {
		return fmt.Errorf("crash_delay_sigma must be positive")
	}
	if c.CrashDelayCapQuantile <= 0 || c.CrashDelayCapQuantile >= 1 {
		return fmt.Errorf("crash_delay_cap_quantile %v outside (0,1)", c.CrashDelayCapQuantile)
	}
	return nil
}
