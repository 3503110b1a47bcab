package advisor

import (
	"fmt"

	"github.com/smartcommute/smartcommute/core/model"
)

// Optimizer scans a fixed departure window against a fitted predictor. It
// holds no mutable state; one instance serves concurrent queries.
type Optimizer struct {
	pred  Predictor
	start model.MinuteOfDay
	end   model.MinuteOfDay
	step  model.MinuteOfDay
}

// NewOptimizer validates the window configuration and builds an Optimizer.
func NewOptimizer(pred Predictor, cfg Config) (*Optimizer, error) {
	if pred == nil {
		return nil, fmt.Errorf("nil predictor")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("advisor config: %w", err)
	}
	start, end := cfg.Window()
	return &Optimizer{
		pred:  pred,
		start: start,
		end:   end,
		step:  model.MinuteOfDay(cfg.StepMinutes),
	}, nil
}

// window resolves the candidate window for one query, applying per-query
// overrides to the configured bounds.
func (o *Optimizer) window(q Query) (start, end model.MinuteOfDay) {
	start, end = o.start, o.end
	if q.WindowStart != 0 {
		start = q.WindowStart
	}
	if q.WindowEnd != 0 {
		end = q.WindowEnd
	}
	return start, end
}

// latest returns the last grid candidate inside the window, both window
// ends inclusive.
func (o *Optimizer) latest(start, end model.MinuteOfDay) model.MinuteOfDay {
	return start + ((end-start)/o.step)*o.step
}

// Optimize walks the candidates from the latest to the earliest and returns
// the first one whose predicted arrival meets the target. Predicted travel
// time is not monotonic in departure time around the rush peaks, so every
// later candidate must have been evaluated and rejected before an earlier
// one may win; a binary search over feasibility would be incorrect here.
//
// When no candidate fits, the earliest one is returned with Feasible false
// so callers can show how close the window gets.
func (o *Optimizer) Optimize(q Query) (Result, error) {
	if err := q.Validate(); err != nil {
		return Result{}, err
	}

	start, end := o.window(q)
	target := float64(q.TargetArrival)
	evaluated := 0
	var travel, arrival float64
	for t := o.latest(start, end); t >= start; t -= o.step {
		pred, err := o.pred.Predict(q.Context, t, q.Level)
		if err != nil {
			return Result{}, err
		}
		evaluated++
		travel = pred * q.scale()
		arrival = float64(t) + travel
		if arrival <= target {
			return Result{
				Departure:  t,
				TravelMin:  travel,
				ArrivalMin: arrival,
				BufferMin:  target - arrival,
				Feasible:   true,
				Evaluated:  evaluated,
			}, nil
		}
	}

	// The loop ends on the earliest candidate, so travel and arrival
	// already describe it.
	return Result{
		Departure:  start,
		TravelMin:  travel,
		ArrivalMin: arrival,
		BufferMin:  target - arrival,
		Feasible:   false,
		Evaluated:  evaluated,
	}, nil
}
