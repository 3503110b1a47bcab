package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/smartcommute/smartcommute/core/plan"
)

// WriteJSON writes v to w as indented JSON. It serves model bundles, fit
// reports, week plans and advice dumps alike.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WritePlanCSV writes a week-ahead departure plan to w in CSV format.
func WritePlanCSV(w io.Writer, entries []plan.Entry) error {
	cw := csv.NewWriter(w)
	header := []string{"date", "weekday", "weather", "target_arrival", "departure", "travel_min", "buffer_min", "feasible"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, e := range entries {
		rec := []string{
			e.Date,
			e.Weekday,
			e.Weather,
			e.Target,
			e.Departure,
			strconv.FormatFloat(e.TravelMin, 'f', -1, 64),
			strconv.FormatFloat(e.BufferMin, 'f', -1, 64),
			strconv.FormatBool(e.Feasible),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
