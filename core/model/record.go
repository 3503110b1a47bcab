package model

import (
	"fmt"
	"time"
)

// CommuteRecord is one simulated home-to-work trip. Travel time decomposes
// as BaseTravelMin*RushMultiplier + WeatherPenaltyMin + CrashDelayMin,
// possibly clipped to the generator's travel bounds.
type CommuteRecord struct {
	Date              time.Time    // civil date at UTC midnight
	Weekday           time.Weekday // Monday through Friday
	Season            Season
	Departure         MinuteOfDay // five minute grid inside [GridStart, GridEnd)
	Weather           Weather     // one category per day
	CrashOnRoute      bool
	BaseTravelMin     float64 // fixed route constant, identical across a corpus
	RushMultiplier    float64 // >= 1.0
	WeatherPenaltyMin float64 // >= 0, zero under Clear
	CrashDelayMin     float64 // >= 0, zero unless CrashOnRoute
	TravelTimeMin     float64 // > 0
	DistanceMiles     float64 // fixed route constant
}

// ArrivalMin returns the arrival as fractional minutes since midnight.
// Arrival is always derived; it is never stored independently.
func (r CommuteRecord) ArrivalMin() float64 {
	return float64(r.Departure) + r.TravelTimeMin
}

// Arrival returns the arrival truncated to the minute.
func (r CommuteRecord) Arrival() MinuteOfDay {
	return MinuteOfDay(int(r.ArrivalMin()))
}

// TotalDelayMin is the travel time in excess of the baseline.
func (r CommuteRecord) TotalDelayMin() float64 {
	return r.TravelTimeMin - r.BaseTravelMin
}

// Validate checks the structural invariants every record must satisfy.
// The travel decomposition itself is checked by the generator tests, which
// know the clipping bounds.
func (r CommuteRecord) Validate() error {
	if !IsCommuteDay(r.Weekday) {
		return fmt.Errorf("record %s: weekday %s is not a commute day", r.Date.Format("2006-01-02"), r.Weekday)
	}
	if !r.Season.Valid() {
		return fmt.Errorf("record %s: unknown season %q", r.Date.Format("2006-01-02"), r.Season)
	}
	if !r.Weather.Valid() {
		return fmt.Errorf("record %s: unknown weather %q", r.Date.Format("2006-01-02"), r.Weather)
	}
	if !r.Departure.OnGrid() {
		return fmt.Errorf("record %s: departure %s off the slot grid", r.Date.Format("2006-01-02"), r.Departure)
	}
	if r.TravelTimeMin <= 0 {
		return fmt.Errorf("record %s: travel time %.2f not positive", r.Date.Format("2006-01-02"), r.TravelTimeMin)
	}
	if r.RushMultiplier < 1.0 {
		return fmt.Errorf("record %s: rush multiplier %.3f below 1", r.Date.Format("2006-01-02"), r.RushMultiplier)
	}
	if r.WeatherPenaltyMin < 0 {
		return fmt.Errorf("record %s: negative weather penalty %.2f", r.Date.Format("2006-01-02"), r.WeatherPenaltyMin)
	}
	if r.CrashDelayMin < 0 {
		return fmt.Errorf("record %s: negative crash delay %.2f", r.Date.Format("2006-01-02"), r.CrashDelayMin)
	}
	if !r.CrashOnRoute && r.CrashDelayMin != 0 {
		return fmt.Errorf("record %s: crash delay %.2f without a crash", r.Date.Format("2006-01-02"), r.CrashDelayMin)
	}
	return nil
}

// Context is the conditioning tuple shared by the predictor and the
// optimizer: which kind of day the commute happens on.
type Context struct {
	Weekday time.Weekday
	Weather Weather
	Season  Season
}

// ContextOf extracts the conditioning tuple from a record.
func ContextOf(r CommuteRecord) Context {
	return Context{Weekday: r.Weekday, Weather: r.Weather, Season: r.Season}
}
