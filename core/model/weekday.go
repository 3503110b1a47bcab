package model

import (
	"fmt"
	"strings"
	"time"
)

// IsCommuteDay reports whether d is a working day (Monday through Friday).
func IsCommuteDay(d time.Weekday) bool {
	return d >= time.Monday && d <= time.Friday
}

// WeekdayIndex maps Monday..Friday to 0..4. The second return value is
// false for weekend days.
func WeekdayIndex(d time.Weekday) (int, bool) {
	if !IsCommuteDay(d) {
		return 0, false
	}
	return int(d) - int(time.Monday), true
}

// WeekdayName returns the three letter weekday abbreviation, e.g. "Wed".
func WeekdayName(d time.Weekday) string {
	return d.String()[:3]
}

// ParseWeekday accepts full or three letter English weekday names.
func ParseWeekday(s string) (time.Weekday, error) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(s, d.String()) || strings.EqualFold(s, WeekdayName(d)) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("invalid weekday %q", s)
}
