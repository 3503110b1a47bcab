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

// corpusHeader is the canonical corpus column order. ReadCorpusCSV rejects
// files with any other header, so schema drift fails loudly.
var corpusHeader = []string{
	"date",
	"day_of_week",
	"day_of_week_num",
	"season",
	"departure_time",
	"departure_hour_frac",
	"weather",
	"crash_on_route",
	"base_travel_min",
	"rush_multiplier",
	"weather_penalty_min",
	"crash_delay_min",
	"travel_time_min",
	"arrival_time",
	"distance_miles",
}

const dateLayout = "2006-01-02"

// WriteCorpusCSV writes commute records to w in the canonical corpus schema.
// Stored floats keep full precision so a write/read cycle reproduces the
// records exactly; derived columns (hour fraction, arrival) are for
// downstream consumers and are recomputed on read.
func WriteCorpusCSV(w io.Writer, corpus []model.CommuteRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(corpusHeader); err != nil {
		return err
	}
	for i, r := range corpus {
		row, err := corpusRow(r)
		if err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// corpusRow renders one record in canonical column order.
func corpusRow(r model.CommuteRecord) ([]string, error) {
	idx, ok := model.WeekdayIndex(r.Weekday)
	if !ok {
		return nil, fmt.Errorf("weekday %s is not a commute day", r.Weekday)
	}
	crash := "0"
	if r.CrashOnRoute {
		crash = "1"
	}
	return []string{
		r.Date.Format(dateLayout),
		r.Weekday.String(),
		strconv.Itoa(idx),
		string(r.Season),
		r.Departure.String(),
		strconv.FormatFloat(math.Round(r.Departure.HourFrac()*1e4)/1e4, 'f', -1, 64),
		string(r.Weather),
		crash,
		strconv.FormatFloat(r.BaseTravelMin, 'f', -1, 64),
		strconv.FormatFloat(r.RushMultiplier, 'f', -1, 64),
		strconv.FormatFloat(r.WeatherPenaltyMin, 'f', -1, 64),
		strconv.FormatFloat(r.CrashDelayMin, 'f', -1, 64),
		strconv.FormatFloat(r.TravelTimeMin, 'f', -1, 64),
		r.Arrival().String(),
		strconv.FormatFloat(r.DistanceMiles, 'f', -1, 64),
	}, nil
}

// ReadCorpusCSV parses a canonical corpus file and validates every record.
func ReadCorpusCSV(r io.Reader) ([]model.CommuteRecord, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading corpus header: %w", err)
	}
	if len(header) != len(corpusHeader) {
		return nil, fmt.Errorf("corpus header has %d columns, expected %d", len(header), len(corpusHeader))
	}
	for i, name := range corpusHeader {
		if header[i] != name {
			return nil, fmt.Errorf("corpus column %d is %q, expected %q", i, header[i], name)
		}
	}

	var corpus []model.CommuteRecord
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading corpus row: %w", err)
		}
		rec, err := parseCorpusRow(row)
		if err != nil {
			return nil, fmt.Errorf("corpus line %d: %w", line, err)
		}
		if err := rec.Validate(); err != nil {
			return nil, fmt.Errorf("corpus line %d: %w", line, err)
		}
		corpus = append(corpus, rec)
	}
	return corpus, nil
}

func parseCorpusRow(row []string) (model.CommuteRecord, error) {
	var rec model.CommuteRecord

	date, err := time.Parse(dateLayout, row[0])
	if err != nil {
		return rec, fmt.Errorf("date: %w", err)
	}
	weekday, err := model.ParseWeekday(row[1])
	if err != nil {
		return rec, err
	}
	departure, err := model.ParseHHMM(row[4])
	if err != nil {
		return rec, fmt.Errorf("departure_time: %w", err)
	}
	crash, err := strconv.ParseBool(row[7])
	if err != nil {
		return rec, fmt.Errorf("crash_on_route: %w", err)
	}

	floats := make([]float64, 6)
	for i, col := range []int{8, 9, 10, 11, 12, 14} {
		v, err := strconv.ParseFloat(row[col], 64)
		if err != nil {
			return rec, fmt.Errorf("%s: %w", corpusHeader[col], err)
		}
		floats[i] = v
	}

	rec = model.CommuteRecord{
		Date:              date,
		Weekday:           weekday,
		Season:            model.Season(row[3]),
		Departure:         departure,
		Weather:           model.Weather(row[6]),
		CrashOnRoute:      crash,
		BaseTravelMin:     floats[0],
		RushMultiplier:    floats[1],
		WeatherPenaltyMin: floats[2],
		CrashDelayMin:     floats[3],
		TravelTimeMin:     floats[4],
		DistanceMiles:     floats[5],
	}
	return rec, nil
}
