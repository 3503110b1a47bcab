package logging

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/smartcommute/smartcommute/core/advisor"
	"github.com/smartcommute/smartcommute/core/model"
)

// AdviceRecord captures one served recommendation for the audit log.
// Clock fields are stored as HH:MM so the JSONL files stay greppable.
type AdviceRecord struct {
	ID            string    `json:"id"`
	Timestamp     time.Time `json:"timestamp"`
	Source        string    `json:"source"` // api, cli or job
	Weekday       string    `json:"weekday"`
	Weather       string    `json:"weather"`
	Season        string    `json:"season"`
	TargetArrival string    `json:"target_arrival"`
	Level         float64   `json:"level"`
	Departure     string    `json:"departure"`
	TravelMin     float64   `json:"travel_min"`
	ArrivalMin    float64   `json:"arrival_min"`
	BufferMin     float64   `json:"buffer_min"`
	Feasible      bool      `json:"feasible"`
}

// NewAdviceRecord flattens a query and its result into a record with a
// fresh ID.
func NewAdviceRecord(source string, q advisor.Query, res advisor.Result) AdviceRecord {
	return AdviceRecord{
		ID:            uuid.NewString(),
		Timestamp:     time.Now().UTC(),
		Source:        source,
		Weekday:       model.WeekdayName(q.Context.Weekday),
		Weather:       string(q.Context.Weather),
		Season:        string(q.Context.Season),
		TargetArrival: q.TargetArrival.String(),
		Level:         q.Level,
		Departure:     res.Departure.String(),
		TravelMin:     res.TravelMin,
		ArrivalMin:    res.ArrivalMin,
		BufferMin:     res.BufferMin,
		Feasible:      res.Feasible,
	}
}

// AdviceQuery filters stored records. Zero fields match everything.
type AdviceQuery struct {
	Start        time.Time
	End          time.Time
	Source       string
	Weather      string
	Level        float64
	FeasibleOnly bool
	// Limit bounds the result set; zero means unbounded.
	Limit int
}

func (q AdviceQuery) matches(r AdviceRecord) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.Source != "" && r.Source != q.Source {
		return false
	}
	if q.Weather != "" && r.Weather != q.Weather {
		return false
	}
	if q.Level != 0 && r.Level != q.Level {
		return false
	}
	if q.FeasibleOnly && !r.Feasible {
		return false
	}
	return true
}

// Store persists AdviceRecords and supports querying.
type Store interface {
	Append(ctx context.Context, rec AdviceRecord) error
	Query(ctx context.Context, q AdviceQuery) ([]AdviceRecord, error)
	Close() error
}
