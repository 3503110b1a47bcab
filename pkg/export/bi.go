package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/smartcommute/smartcommute/core/model"
)

// BIRow is a corpus record enriched with the pre-computed columns dashboard
// tools want ready-made: bucket labels with sort keys, on-time flags per
// common target, calendar breakdowns and severity ordinals.
type BIRow struct {
	model.CommuteRecord

	TimePeriod          string
	TimePeriodSort      int
	DepartureLabel      string
	DepartureHourBucket string
	TravelCategory      string
	OnTime8h            bool
	OnTime9h            bool
	OnTime17h           bool
	OnTime18h           bool
	Month               int
	MonthName           string
	Year                int
	YearMonth           string
	WeekNumber          int
	IsAMRush            bool
	IsPMRush            bool
	IsRushHour          bool
	CongestionPct       float64
	TotalDelayMin       float64
	WeatherSeverity     int
	DayType             string
	CrashLabel          string
}

var biColumns = []string{
	"time_period",
	"time_period_sort",
	"departure_time_label",
	"departure_hour_bucket",
	"travel_time_category",
	"on_time_8h",
	"on_time_9h",
	"on_time_17h",
	"on_time_18h",
	"month",
	"month_name",
	"year",
	"year_month",
	"week_number",
	"is_am_rush",
	"is_pm_rush",
	"is_rush_hour",
	"congestion_pct",
	"total_delay_min",
	"weather_severity",
	"day_type",
	"crash_label",
}

// timePeriods maps the commute day onto named buckets with a stable sort
// order. Bounds are half-open on the right except the final bucket.
var timePeriods = []struct {
	until float64
	label string
}{
	{6, "Early Morning (5-6 AM)"},
	{7, "Pre-Rush (6-7 AM)"},
	{9, "AM Rush Hour (7-9 AM)"},
	{11, "Late Morning (9-11 AM)"},
	{13, "Midday (11 AM-1 PM)"},
	{15, "Early Afternoon (1-3 PM)"},
	{16.5, "Pre-PM Rush (3-4:30 PM)"},
	{18.5, "PM Rush Hour (4:30-6:30 PM)"},
	{math.Inf(1), "Evening (6:30-8 PM)"},
}

func timePeriod(hourFrac float64) (string, int) {
	for i, p := range timePeriods {
		if hourFrac < p.until {
			return p.label, i + 1
		}
	}
	last := len(timePeriods) - 1
	return timePeriods[last].label, last + 1
}

func travelCategory(travelMin float64) string {
	switch {
	case travelMin < 55:
		return "Fast (< 55 min)"
	case travelMin < 65:
		return "Normal (55-65 min)"
	case travelMin < 80:
		return "Slow (65-80 min)"
	case travelMin < 100:
		return "Very Slow (80-100 min)"
	default:
		return "Extreme (100+ min)"
	}
}

// EnrichBI derives the dashboard columns for every record in the corpus.
func EnrichBI(corpus []model.CommuteRecord) []BIRow {
	rows := make([]BIRow, 0, len(corpus))
	for _, r := range corpus {
		hourFrac := r.Departure.HourFrac()
		arrival := r.Arrival()
		_, week := r.Date.ISOWeek()

		period, order := timePeriod(hourFrac)
		amRush := hourFrac >= 7.0 && hourFrac <= 9.0
		pmRush := hourFrac >= 16.5 && hourFrac <= 18.5

		dayType := "Tue-Thu (Heavier)"
		if r.Weekday == time.Monday || r.Weekday == time.Friday {
			dayType = "Mon/Fri (Lighter)"
		}
		crashLabel := "No Crash"
		if r.CrashOnRoute {
			crashLabel = "Crash on Route"
		}

		rows = append(rows, BIRow{
			CommuteRecord:       r,
			TimePeriod:          period,
			TimePeriodSort:      order,
			DepartureLabel:      r.Departure.String(),
			DepartureHourBucket: fmt.Sprintf("%02d:00", int(r.Departure)/60),
			TravelCategory:      travelCategory(r.TravelTimeMin),
			OnTime8h:            arrival <= 8*60,
			OnTime9h:            arrival <= 9*60,
			OnTime17h:           arrival <= 17*60,
			OnTime18h:           arrival <= 18*60,
			Month:               int(r.Date.Month()),
			MonthName:           r.Date.Month().String(),
			Year:                r.Date.Year(),
			YearMonth:           r.Date.Format("2006-01"),
			WeekNumber:          week,
			IsAMRush:            amRush,
			IsPMRush:            pmRush,
			IsRushHour:          amRush || pmRush,
			CongestionPct:       round1((r.RushMultiplier - 1) * 100),
			TotalDelayMin:       round1(r.WeatherPenaltyMin + r.CrashDelayMin),
			WeatherSeverity:     r.Weather.Severity(),
			DayType:             dayType,
			CrashLabel:          crashLabel,
		})
	}
	return rows
}

// WriteBICSV writes enriched rows to w: the canonical corpus columns
// followed by the dashboard columns.
func WriteBICSV(w io.Writer, rows []BIRow) error {
	cw := csv.NewWriter(w)
	header := append(append([]string{}, corpusHeader...), biColumns...)
	if err := cw.Write(header); err != nil {
		return err
	}
	for i, row := range rows {
		base, err := corpusRow(row.CommuteRecord)
		if err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
		rec := append(base,
			row.TimePeriod,
			strconv.Itoa(row.TimePeriodSort),
			row.DepartureLabel,
			row.DepartureHourBucket,
			row.TravelCategory,
			flag(row.OnTime8h),
			flag(row.OnTime9h),
			flag(row.OnTime17h),
			flag(row.OnTime18h),
			strconv.Itoa(row.Month),
			row.MonthName,
			strconv.Itoa(row.Year),
			row.YearMonth,
			strconv.Itoa(row.WeekNumber),
			flag(row.IsAMRush),
			flag(row.IsPMRush),
			flag(row.IsRushHour),
			strconv.FormatFloat(row.CongestionPct, 'f', 1, 64),
			strconv.FormatFloat(row.TotalDelayMin, 'f', 1, 64),
			strconv.Itoa(row.WeatherSeverity),
			row.DayType,
			row.CrashLabel,
		)
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
