package advisor

import "github.com/smartcommute/smartcommute/core/model"

// Candidate is one departure option with its prediction, for presentation
// layers that render the whole window.
type Candidate struct {
	Departure  model.MinuteOfDay `json:"departure"`
	TravelMin  float64           `json:"travel_min"`
	ArrivalMin float64           `json:"arrival_min"`
	Feasible   bool              `json:"feasible"`
}

// Scan evaluates every candidate in ascending order. Optimize is the
// decision procedure; Scan exists for tables and charts and never stops
// early.
func (o *Optimizer) Scan(q Query) ([]Candidate, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	start, end := o.window(q)
	target := float64(q.TargetArrival)
	out := make([]Candidate, 0, int((end-start)/o.step)+1)
	for t := start; t <= end; t += o.step {
		pred, err := o.pred.Predict(q.Context, t, q.Level)
		if err != nil {
			return nil, err
		}
		travel := pred * q.scale()
		arrival := float64(t) + travel
		out = append(out, Candidate{
			Departure:  t,
			TravelMin:  travel,
			ArrivalMin: arrival,
			Feasible:   arrival <= target,
		})
	}
	return out, nil
}
