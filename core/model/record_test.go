package model

import (
	"testing"
	"time"
)

func validRecord() CommuteRecord {
	return CommuteRecord{
		Date:              time.Date(2023, 3, 8, 0, 0, 0, 0, time.UTC),
		Weekday:           time.Wednesday,
		Season:            SeasonSpring,
		Departure:         465,
		Weather:           WeatherClear,
		BaseTravelMin:     54,
		RushMultiplier:    1.38,
		WeatherPenaltyMin: 0,
		CrashDelayMin:     0,
		TravelTimeMin:     74.5,
		DistanceMiles:     54,
	}
}

func TestRecordValidate(t *testing.T) {
	if err := validRecord().Validate(); err != nil {
		t.Fatalf("valid record rejected: %v", err)
	}
}

func TestRecordValidateRejects(t *testing.T) {
	cases := map[string]func(*CommuteRecord){
		"weekend":           func(r *CommuteRecord) { r.Weekday = time.Saturday },
		"bad season":        func(r *CommuteRecord) { r.Season = "monsoon" },
		"bad weather":       func(r *CommuteRecord) { r.Weather = "Tornado" },
		"off grid":          func(r *CommuteRecord) { r.Departure = 463 },
		"zero travel":       func(r *CommuteRecord) { r.TravelTimeMin = 0 },
		"multiplier low":    func(r *CommuteRecord) { r.RushMultiplier = 0.92 },
		"negative penalty":  func(r *CommuteRecord) { r.WeatherPenaltyMin = -1 },
		"negative delay":    func(r *CommuteRecord) { r.CrashDelayMin = -1 },
		"delay without hit": func(r *CommuteRecord) { r.CrashDelayMin = 12 },
	}
	for name, mutate := range cases {
		r := validRecord()
		mutate(&r)
		if err := r.Validate(); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
}

func TestArrivalDerived(t *testing.T) {
	r := validRecord()
	r.Departure = 415 // 06:55
	r.TravelTimeMin = 94
	if got := r.ArrivalMin(); got != 509 {
		t.Fatalf("expected arrival 509 got %v", got)
	}
	if got := r.Arrival().String(); got != "08:29" {
		t.Fatalf("expected 08:29 got %s", got)
	}
}

func TestSeasonOf(t *testing.T) {
	cases := map[time.Month]Season{
		time.December:  SeasonWinter,
		time.January:   SeasonWinter,
		time.February:  SeasonWinter,
		time.March:     SeasonSpring,
		time.May:       SeasonSpring,
		time.June:      SeasonSummer,
		time.August:    SeasonSummer,
		time.September: SeasonFall,
		time.November:  SeasonFall,
	}
	for m, want := range cases {
		if got := SeasonOf(m); got != want {
			t.Errorf("%s: expected %s got %s", m, want, got)
		}
	}
}

func TestWeatherSeverityOrder(t *testing.T) {
	ws := Weathers()
	for i := 1; i < len(ws); i++ {
		if ws[i].Severity() <= ws[i-1].Severity() {
			t.Fatalf("severity not strictly increasing at %s", ws[i])
		}
	}
	if Weather("Tornado").Severity() != 0 {
		t.Error("unknown weather should have severity 0")
	}
}

func TestWeekdayIndex(t *testing.T) {
	if idx, ok := WeekdayIndex(time.Monday); !ok || idx != 0 {
		t.Fatalf("Monday: expected 0 got %d ok=%v", idx, ok)
	}
	if idx, ok := WeekdayIndex(time.Friday); !ok || idx != 4 {
		t.Fatalf("Friday: expected 4 got %d ok=%v", idx, ok)
	}
	if _, ok := WeekdayIndex(time.Sunday); ok {
		t.Fatal("Sunday should not index")
	}
}

func TestParseWeekday(t *testing.T) {
	d, err := ParseWeekday("Wed")
	if err != nil || d != time.Wednesday {
		t.Fatalf("expected Wednesday got %v err=%v", d, err)
	}
	d, err = ParseWeekday("friday")
	if err != nil || d != time.Friday {
		t.Fatalf("expected Friday got %v err=%v", d, err)
	}
	if _, err := ParseWeekday("Someday"); err == nil {
		t.Fatal("expected error for unknown weekday")
	}
}

func TestWeatherFromWMO(t *testing.T) {
	cases := map[int]Weather{
		0:  WeatherClear,
		45: WeatherFog,
		61: WeatherRain,
		65: WeatherHeavyRain,
		95: WeatherHeavyRain,
		71: WeatherClear,
	}
	for code, want := range cases {
		got, ok := WeatherFromWMO(code)
		if !ok || got != want {
			t.Errorf("code %d: expected %s got %s ok=%v", code, want, got, ok)
		}
	}
	if _, ok := WeatherFromWMO(42); ok {
		t.Error("unmapped code should report false")
	}
}
