package advisor

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/smartcommute/smartcommute/core/model"
)

type stubPredictor struct {
	levels   []float64
	travel   map[model.MinuteOfDay]float64
	byLevel  map[float64]map[model.MinuteOfDay]float64
	fallback float64
	err      error
}

func (s *stubPredictor) Predict(_ model.Context, dep model.MinuteOfDay, level float64) (float64, error) {
	if s.err != nil {
		return 0, s.err
	}
	if m, ok := s.byLevel[level]; ok {
		if v, ok := m[dep]; ok {
			return v, nil
		}
	}
	if v, ok := s.travel[dep]; ok {
		return v, nil
	}
	return s.fallback, nil
}

func (s *stubPredictor) Levels() []float64 {
	if len(s.levels) > 0 {
		return s.levels
	}
	return []float64{0.5, 0.75, 0.9, 0.95}
}

func mm(t *testing.T, s string) model.MinuteOfDay {
	t.Helper()
	v, err := model.ParseHHMM(s)
	if err != nil {
		t.Fatalf("ParseHHMM(%q): %v", s, err)
	}
	return v
}

func newTestOptimizer(t *testing.T, pred Predictor) *Optimizer {
	t.Helper()
	cfg := Config{}
	cfg.SetDefaults()
	o, err := NewOptimizer(pred, cfg)
	if err != nil {
		t.Fatalf("NewOptimizer: %v", err)
	}
	return o
}

func wednesday() model.Context {
	return model.Context{Weekday: time.Wednesday, Weather: model.WeatherClear, Season: model.SeasonWinter}
}

// A later feasible pocket must win even when the candidates between it and
// an earlier feasible one are all infeasible.
func TestOptimizeNonMonotonicWindow(t *testing.T) {
	pred := &stubPredictor{
		fallback: 500,
		travel: map[model.MinuteOfDay]float64{
			mm(t, "06:40"): 110,
			mm(t, "06:45"): 120,
			mm(t, "06:50"): 120,
			mm(t, "06:55"): 95,
		},
	}
	o := newTestOptimizer(t, pred)

	res, err := o.Optimize(Query{Context: wednesday(), TargetArrival: mm(t, "08:30"), Level: 0.95})
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	if !res.Feasible {
		t.Fatalf("expected feasible result, got %+v", res)
	}
	if got, want := res.Departure, mm(t, "06:55"); got != want {
		t.Fatalf("departure = %s, want %s", got, want)
	}
	// Every candidate after 06:55 was evaluated and rejected first.
	if want := int((mm(t, "10:00")-mm(t, "06:55"))/5) + 1; res.Evaluated != want {
		t.Errorf("evaluated %d candidates, want %d", res.Evaluated, want)
	}
	if res.BufferMin != 0 {
		t.Errorf("buffer = %v, want 0 for an exact arrival", res.BufferMin)
	}
}

func TestOptimizeMorningTarget(t *testing.T) {
	pred := &stubPredictor{
		fallback: 200,
		travel: map[model.MinuteOfDay]float64{
			mm(t, "06:55"): 94,
			mm(t, "07:00"): 96,
		},
	}
	o := newTestOptimizer(t, pred)

	res, err := o.Optimize(Query{Context: wednesday(), TargetArrival: mm(t, "08:30"), Level: 0.95})
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	if !res.Feasible || res.Departure != mm(t, "06:55") {
		t.Fatalf("got %+v, want feasible departure 06:55", res)
	}
	if res.TravelMin != 94 {
		t.Errorf("travel = %v, want 94", res.TravelMin)
	}
	if got := res.Arrival().String(); got != "08:29" {
		t.Errorf("arrival = %s, want 08:29", got)
	}
}

func TestOptimizeInfeasibleWindow(t *testing.T) {
	o := newTestOptimizer(t, &stubPredictor{fallback: 500})

	res, err := o.Optimize(Query{Context: wednesday(), TargetArrival: mm(t, "08:30"), Level: 0.95})
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	if res.Feasible {
		t.Fatalf("expected infeasible result")
	}
	if got, want := res.Departure, mm(t, "05:00"); got != want {
		t.Errorf("departure = %s, want earliest candidate %s", got, want)
	}
	if res.TravelMin != 500 || res.ArrivalMin != 800 {
		t.Errorf("earliest candidate prediction = %v/%v, want 500/800", res.TravelMin, res.ArrivalMin)
	}
	if res.BufferMin >= 0 {
		t.Errorf("buffer = %v, want negative", res.BufferMin)
	}
	if want := int((mm(t, "10:00")-mm(t, "05:00"))/5) + 1; res.Evaluated != want {
		t.Errorf("evaluated %d candidates, want the whole window (%d)", res.Evaluated, want)
	}
}

func TestOptimizeRepeatable(t *testing.T) {
	pred := &stubPredictor{fallback: 90}
	o := newTestOptimizer(t, pred)
	q := Query{Context: wednesday(), TargetArrival: mm(t, "08:30"), Level: 0.9}

	a, err := o.Optimize(q)
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	b, err := o.Optimize(q)
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("identical queries disagree: %+v vs %+v", a, b)
	}
}

func TestOptimizeDistanceScale(t *testing.T) {
	pred := &stubPredictor{fallback: 100}
	o := newTestOptimizer(t, pred)

	// Doubling the route doubles the prediction, so the latest feasible
	// slot is 05:10 (310 + 200 = 510).
	res, err := o.Optimize(Query{
		Context: wednesday(), TargetArrival: mm(t, "08:30"), Level: 0.9, DistanceScale: 2,
	})
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	if res.TravelMin != 200 {
		t.Fatalf("scaled travel = %v, want 200", res.TravelMin)
	}
	if got, want := res.Departure, mm(t, "05:10"); got != want {
		t.Fatalf("departure = %s, want %s", got, want)
	}
}

func TestOptimizeWindowOverride(t *testing.T) {
	o := newTestOptimizer(t, &stubPredictor{fallback: 60})

	// With a 60 minute prediction the configured window would pick 07:30,
	// but the query caps the window at 07:00.
	res, err := o.Optimize(Query{
		Context: wednesday(), TargetArrival: mm(t, "08:30"), Level: 0.9,
		WindowStart: mm(t, "06:00"), WindowEnd: mm(t, "07:00"),
	})
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	if got, want := res.Departure, mm(t, "07:00"); got != want {
		t.Fatalf("departure = %s, want %s", got, want)
	}

	candidates, err := o.Scan(Query{
		Context: wednesday(), TargetArrival: mm(t, "08:30"), Level: 0.9,
		WindowStart: mm(t, "06:00"), WindowEnd: mm(t, "07:00"),
	})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(candidates) != 13 {
		t.Fatalf("got %d candidates, want 13 for 06:00-07:00 at 5min", len(candidates))
	}

	if _, err := o.Optimize(Query{
		Context: wednesday(), TargetArrival: mm(t, "08:30"), Level: 0.9,
		WindowStart: mm(t, "07:00"), WindowEnd: mm(t, "06:00"),
	}); err == nil {
		t.Fatal("expected error for inverted override")
	}
}

func TestOptimizePropagatesPredictorError(t *testing.T) {
	boom := errors.New("boom")
	o := newTestOptimizer(t, &stubPredictor{err: boom})
	if _, err := o.Optimize(Query{Context: wednesday(), TargetArrival: 510, Level: 0.95}); !errors.Is(err, boom) {
		t.Fatalf("got %v, want predictor error", err)
	}
}

func TestOptimizeRejectsBadQuery(t *testing.T) {
	o := newTestOptimizer(t, &stubPredictor{fallback: 90})
	cases := map[string]Query{
		"level zero":     {Context: wednesday(), TargetArrival: 510},
		"level one":      {Context: wednesday(), TargetArrival: 510, Level: 1},
		"target outside": {Context: wednesday(), TargetArrival: 2000, Level: 0.9},
		"negative scale": {Context: wednesday(), TargetArrival: 510, Level: 0.9, DistanceScale: -1},
	}
	for name, q := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := o.Optimize(q); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestNewOptimizerRejects(t *testing.T) {
	cfg := Config{}
	cfg.SetDefaults()
	if _, err := NewOptimizer(nil, cfg); err == nil {
		t.Fatalf("expected error for nil predictor")
	}

	bad := Config{}
	bad.SetDefaults()
	bad.WindowStart, bad.WindowEnd = "10:00", "05:00"
	if _, err := NewOptimizer(&stubPredictor{}, bad); err == nil {
		t.Fatalf("expected error for inverted window")
	}
}
