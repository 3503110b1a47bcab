package model

import "fmt"

// MinuteOfDay counts minutes since local midnight.
type MinuteOfDay int

// The commute grid spans 05:00 to 20:00 in five minute steps.
const (
	GridStart   MinuteOfDay = 300
	GridEnd     MinuteOfDay = 1200
	SlotMinutes             = 5
)

// ParseHHMM parses a clock time in "HH:MM" form.
func ParseHHMM(s string) (MinuteOfDay, error) {
	var h, m int
	if n, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil || n != 2 {
		return 0, fmt.Errorf("invalid clock time %q", s)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("clock time %q out of range", s)
	}
	return MinuteOfDay(h*60 + m), nil
}

// String formats the minute as "HH:MM".
func (t MinuteOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// HourFrac returns the time as fractional hours, e.g. 465 -> 7.75.
func (t MinuteOfDay) HourFrac() float64 {
	return float64(t) / 60.0
}

// Valid reports whether the minute falls inside a single day.
func (t MinuteOfDay) Valid() bool {
	return t >= 0 && t < 24*60
}

// OnGrid reports whether the minute is a departure slot: inside
// [GridStart, GridEnd) and aligned to the five minute grid.
func (t MinuteOfDay) OnGrid() bool {
	return t >= GridStart && t < GridEnd && int(t)%SlotMinutes == 0
}
