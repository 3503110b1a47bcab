package advisor

import (
	"errors"
	"fmt"

	"github.com/smartcommute/smartcommute/core/model"
)

// ErrInvalidQuery tags every query validation failure so transport layers
// can tell client errors from internal ones.
var ErrInvalidQuery = errors.New("invalid query")

// Predictor yields conditional travel-time quantiles for a fixed set of
// fitted levels. A fitted quantile model implements it; implementations
// must be safe for concurrent readers.
type Predictor interface {
	Predict(ctx model.Context, departure model.MinuteOfDay, level float64) (float64, error)
	Levels() []float64
}

// Query asks for the latest departure that still meets the target arrival
// at the requested confidence level. Queries are transient, one per
// request.
type Query struct {
	Context       model.Context
	TargetArrival model.MinuteOfDay
	Level         float64
	// DistanceScale stretches predicted travel times for what-if route
	// lengths. Zero means no scaling.
	DistanceScale float64
	// WindowStart and WindowEnd narrow the candidate window for this
	// query only. Zero values keep the configured window.
	WindowStart model.MinuteOfDay
	WindowEnd   model.MinuteOfDay
}

// Validate checks the target and the level range. Categorical context
// values are checked by the predictor so that unknown categories surface
// as UnknownCategoryError, not as a generic validation failure.
func (q Query) Validate() error {
	if !q.TargetArrival.Valid() {
		return fmt.Errorf("%w: target arrival %d outside a day", ErrInvalidQuery, int(q.TargetArrival))
	}
	if q.Level <= 0 || q.Level >= 1 {
		return fmt.Errorf("%w: confidence level %v outside (0,1)", ErrInvalidQuery, q.Level)
	}
	if q.DistanceScale < 0 {
		return fmt.Errorf("%w: distance scale must not be negative", ErrInvalidQuery)
	}
	if q.WindowStart != 0 && !q.WindowStart.Valid() {
		return fmt.Errorf("%w: window start %d outside a day", ErrInvalidQuery, int(q.WindowStart))
	}
	if q.WindowEnd != 0 && !q.WindowEnd.Valid() {
		return fmt.Errorf("%w: window end %d outside a day", ErrInvalidQuery, int(q.WindowEnd))
	}
	if q.WindowStart != 0 && q.WindowEnd != 0 && q.WindowEnd <= q.WindowStart {
		return fmt.Errorf("%w: window end %s not after window start %s", ErrInvalidQuery, q.WindowEnd, q.WindowStart)
	}
	return nil
}

func (q Query) scale() float64 {
	if q.DistanceScale <= 0 {
		return 1
	}
	return q.DistanceScale
}

// Result is the outcome of one optimization. When Feasible is false the
// window cannot meet the target and the fields describe the earliest
// candidate as a best effort.
type Result struct {
	Departure  model.MinuteOfDay
	TravelMin  float64
	ArrivalMin float64
	// BufferMin is the slack between predicted arrival and the target,
	// negative when the prediction runs late.
	BufferMin float64
	Feasible  bool
	// Evaluated counts scanned candidates, for diagnostics.
	Evaluated int
}

// Arrival returns the predicted arrival as a clock minute, truncated.
func (r Result) Arrival() model.MinuteOfDay {
	return model.MinuteOfDay(int(r.ArrivalMin))
}
