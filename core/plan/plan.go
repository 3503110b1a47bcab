package plan

import (
	"fmt"
	"time"

	"github.com/smartcommute/smartcommute/core/advisor"
	"github.com/smartcommute/smartcommute/core/model"
)

// Entry is one planned departure for an upcoming commute day.
type Entry struct {
	Date      string  `json:"date"`
	Weekday   string  `json:"weekday"`
	Weather   string  `json:"weather"`
	Target    string  `json:"target"`
	Departure string  `json:"departure"`
	TravelMin float64 `json:"travel_min"`
	BufferMin float64 `json:"buffer_min"`
	Feasible  bool    `json:"feasible"`
}

// Planner generates week-ahead departure plans from a fitted optimizer.
type Planner struct {
	Config    PlanConfig
	Optimizer *advisor.Optimizer
}

// GenerateWeek builds the plan for the five commute days following from.
// It returns one entry per day and target arrival.
func (p *Planner) GenerateWeek(from time.Time) ([]Entry, error) {
	if p.Optimizer == nil {
		return nil, fmt.Errorf("planner has no optimizer")
	}
	if err := p.Config.Validate(); err != nil {
		return nil, err
	}

	var entries []Entry
	day := from
	for covered := 0; covered < 5; {
		day = day.AddDate(0, 0, 1)
		if !model.IsCommuteDay(day.Weekday()) {
			continue
		}
		covered++

		weather := p.Config.weatherFor(day.Weekday())
		mctx := model.Context{
			Weekday: day.Weekday(),
			Weather: model.Weather(weather),
			Season:  model.SeasonOf(day.Month()),
		}
		for _, target := range p.Config.Targets {
			arrival, err := model.ParseHHMM(target)
			if err != nil {
				return nil, fmt.Errorf("target %q: %w", target, err)
			}
			res, err := p.Optimizer.Optimize(advisor.Query{
				Context:       mctx,
				TargetArrival: arrival,
				Level:         p.Config.Confidence,
			})
			if err != nil {
				return nil, fmt.Errorf("%s %s: %w", day.Format("2006-01-02"), target, err)
			}
			entries = append(entries, Entry{
				Date:      day.Format("2006-01-02"),
				Weekday:   model.WeekdayName(day.Weekday()),
				Weather:   weather,
				Target:    target,
				Departure: res.Departure.String(),
				TravelMin: res.TravelMin,
				BufferMin: res.BufferMin,
				Feasible:  res.Feasible,
			})
		}
	}
	return entries, nil
}
