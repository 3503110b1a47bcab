package tomorrow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/smartcommute/smartcommute/core/advisor"
	"github.com/smartcommute/smartcommute/core/advisor/logging"
	"github.com/smartcommute/smartcommute/core/model"
)

type stubAdvisor struct {
	queries []advisor.Query
	sources []string
	err     error
}

func (s *stubAdvisor) Advise(_ context.Context, source string, q advisor.Query) (logging.AdviceRecord, error) {
	if s.err != nil {
		return logging.AdviceRecord{}, s.err
	}
	s.queries = append(s.queries, q)
	s.sources = append(s.sources, source)
	return logging.AdviceRecord{
		ID:        "rec",
		Source:    source,
		Departure: "07:05",
		Feasible:  true,
	}, nil
}

func jobConfig() advisor.Config {
	cfg := advisor.Config{}
	cfg.SetDefaults()
	return cfg
}

func TestNextCommuteDay(t *testing.T) {
	cases := map[string]struct {
		now  time.Time
		want time.Weekday
	}{
		"tuesday to wednesday": {time.Date(2024, 3, 5, 18, 0, 0, 0, time.UTC), time.Wednesday},
		"friday skips weekend": {time.Date(2024, 3, 8, 18, 0, 0, 0, time.UTC), time.Monday},
		"saturday to monday":   {time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC), time.Monday},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			if got := NextCommuteDay(tc.now).Weekday(); got != tc.want {
				t.Fatalf("got %s, want %s", got, tc.want)
			}
		})
	}
}

func TestJobRun(t *testing.T) {
	adv := &stubAdvisor{}
	job := &Job{
		Advisor: adv,
		Config:  jobConfig(),
		Now:     func() time.Time { return time.Date(2024, 3, 5, 18, 0, 0, 0, time.UTC) },
	}

	records, err := job.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected one record per default target, got %d", len(records))
	}
	for _, src := range adv.sources {
		if src != "job" {
			t.Errorf("source = %q, want job", src)
		}
	}
	q := adv.queries[0]
	if q.Context.Weekday != time.Wednesday {
		t.Errorf("weekday = %s, want Wednesday", q.Context.Weekday)
	}
	if q.Context.Season != model.SeasonSpring {
		t.Errorf("season = %s, want spring for March 6", q.Context.Season)
	}
	if q.Context.Weather != model.WeatherClear {
		t.Errorf("weather = %s, want configured default", q.Context.Weather)
	}
	if q.Level != 0.95 {
		t.Errorf("level = %v, want config default", q.Level)
	}
	if adv.queries[0].TargetArrival.String() != "08:00" || adv.queries[1].TargetArrival.String() != "09:00" {
		t.Errorf("targets = %s, %s", adv.queries[0].TargetArrival, adv.queries[1].TargetArrival)
	}
}

func TestJobRunWeatherOverride(t *testing.T) {
	adv := &stubAdvisor{}
	job := &Job{
		Advisor: adv,
		Config:  jobConfig(),
		Weather: "Heavy Rain",
		Now:     func() time.Time { return time.Date(2024, 7, 5, 18, 0, 0, 0, time.UTC) },
	}
	if _, err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	q := adv.queries[0]
	if q.Context.Weather != model.WeatherHeavyRain {
		t.Errorf("weather = %s, want override", q.Context.Weather)
	}
	if q.Context.Weekday != time.Monday {
		t.Errorf("weekday = %s, want Monday after a Friday run", q.Context.Weekday)
	}
	if q.Context.Season != model.SeasonSummer {
		t.Errorf("season = %s, want summer for July", q.Context.Season)
	}
}

func TestJobRunPropagatesError(t *testing.T) {
	boom := errors.New("no model")
	job := &Job{Advisor: &stubAdvisor{err: boom}, Config: jobConfig()}
	if _, err := job.Run(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("got %v, want advise error", err)
	}
}

func TestJobRunBadTarget(t *testing.T) {
	cfg := jobConfig()
	cfg.Targets = []string{"25:99"}
	job := &Job{Advisor: &stubAdvisor{}, Config: cfg}
	if _, err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error for unparseable target")
	}
}
