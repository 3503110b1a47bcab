package tomorrow

import (
	"context"
	"fmt"
	"time"

	"github.com/smartcommute/smartcommute/core/advisor"
	"github.com/smartcommute/smartcommute/core/advisor/logging"
	"github.com/smartcommute/smartcommute/core/logger"
	"github.com/smartcommute/smartcommute/core/model"
)

// Advisor produces one advice record per query. The app service implements
// it; the job stays free of storage and transport concerns.
type Advisor interface {
	Advise(ctx context.Context, source string, q advisor.Query) (logging.AdviceRecord, error)
}

// Job computes the recommended departures for the next commute day across
// the configured target arrivals.
type Job struct {
	Advisor Advisor
	Config  advisor.Config
	Log     logger.Logger
	// Weather overrides the configured forecast category when non-empty.
	Weather string
	// Now is the clock, injectable for tests. Nil means time.Now.
	Now func() time.Time
}

// NextCommuteDay returns the first working day after t.
func NextCommuteDay(t time.Time) time.Time {
	d := t.AddDate(0, 0, 1)
	for !model.IsCommuteDay(d.Weekday()) {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

// Run resolves tomorrow's context and serves one advice per target.
func (j *Job) Run(ctx context.Context) ([]logging.AdviceRecord, error) {
	now := time.Now()
	if j.Now != nil {
		now = j.Now()
	}
	day := NextCommuteDay(now)

	weather := j.Config.TomorrowWeather
	if j.Weather != "" {
		weather = j.Weather
	}
	mctx := model.Context{
		Weekday: day.Weekday(),
		Weather: model.Weather(weather),
		Season:  model.SeasonOf(day.Month()),
	}

	records := make([]logging.AdviceRecord, 0, len(j.Config.Targets))
	for _, target := range j.Config.Targets {
		arrival, err := model.ParseHHMM(target)
		if err != nil {
			return nil, fmt.Errorf("target %q: %w", target, err)
		}
		rec, err := j.Advisor.Advise(ctx, "job", advisor.Query{
			Context:       mctx,
			TargetArrival: arrival,
			Level:         j.Config.DefaultLevel,
			DistanceScale: j.Config.DistanceScale,
		})
		if err != nil {
			return records, fmt.Errorf("advise for %s: %w", target, err)
		}
		if j.Log != nil {
			j.Log.Infof("%s %s: leave at %s to arrive by %s (buffer %.1f min, feasible=%v)",
				model.WeekdayName(mctx.Weekday), weather, rec.Departure, target, rec.BufferMin, rec.Feasible)
		}
		records = append(records, rec)
	}
	return records, nil
}
