package advisor

import (
	"math"
	"testing"

	"github.com/smartcommute/smartcommute/core/model"
)

func TestLateRisk(t *testing.T) {
	dep := model.MinuteOfDay(420) // 07:00
	pred := &stubPredictor{
		byLevel: map[float64]map[model.MinuteOfDay]float64{
			0.5:  {dep: 60},
			0.75: {dep: 70},
			0.9:  {dep: 80},
			0.95: {dep: 95},
		},
	}
	o := newTestOptimizer(t, pred)

	cases := map[string]struct {
		target model.MinuteOfDay
		want   float64
	}{
		"q90 makes it, q95 misses": {target: 505, want: 0.075},
		"every level makes it":     {target: 600, want: 0.025},
		"every level misses":       {target: 470, want: 0.75},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := o.LateRisk(wednesday(), dep, tc.target, 1)
			if err != nil {
				t.Fatalf("LateRisk: %v", err)
			}
			if math.Abs(got-tc.want) > 1e-9 {
				t.Fatalf("risk = %v, want %v", got, tc.want)
			}
		})
	}
}

// Crossed quantiles must not hide a feasible high level behind an
// infeasible lower one.
func TestLateRiskQuantileCrossing(t *testing.T) {
	dep := model.MinuteOfDay(420)
	pred := &stubPredictor{
		levels: []float64{0.9, 0.95},
		byLevel: map[float64]map[model.MinuteOfDay]float64{
			0.9:  {dep: 100},
			0.95: {dep: 80},
		},
	}
	o := newTestOptimizer(t, pred)

	got, err := o.LateRisk(wednesday(), dep, 505, 1)
	if err != nil {
		t.Fatalf("LateRisk: %v", err)
	}
	if math.Abs(got-0.025) > 1e-9 {
		t.Fatalf("risk = %v, want 0.025 from the feasible 0.95 level", got)
	}
}

func TestScanWindow(t *testing.T) {
	o := newTestOptimizer(t, &stubPredictor{fallback: 90})
	q := Query{Context: wednesday(), TargetArrival: mm(t, "08:00"), Level: 0.9}

	candidates, err := o.Scan(q)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(candidates) != 61 {
		t.Fatalf("got %d candidates, want 61 for 05:00-10:00 at 5min", len(candidates))
	}
	for i, c := range candidates {
		if i > 0 && c.Departure <= candidates[i-1].Departure {
			t.Fatalf("candidates not ascending at %d", i)
		}
		wantFeasible := float64(c.Departure)+90 <= 480
		if c.Feasible != wantFeasible {
			t.Errorf("candidate %s feasible = %v, want %v", c.Departure, c.Feasible, wantFeasible)
		}
	}
}

// weatherPredictor returns a flat travel time per weather category,
// ignoring departure and level.
type weatherPredictor struct {
	travel map[model.Weather]float64
}

func (p *weatherPredictor) Predict(ctx model.Context, _ model.MinuteOfDay, _ float64) (float64, error) {
	return p.travel[ctx.Weather], nil
}

func (p *weatherPredictor) Levels() []float64 { return []float64{0.5, 0.75, 0.9, 0.95} }

func TestRiskMatrix(t *testing.T) {
	pred := &weatherPredictor{travel: map[model.Weather]float64{
		model.WeatherClear:     60,
		model.WeatherHeavyRain: 120,
	}}
	o := newTestOptimizer(t, pred)
	weathers := []model.Weather{model.WeatherClear, model.WeatherHeavyRain}

	grid, err := o.RiskMatrix(wednesday(), weathers, mm(t, "08:30"), 1)
	if err != nil {
		t.Fatalf("RiskMatrix: %v", err)
	}
	if len(grid.Departures) != 61 || len(grid.Risk) != 61 {
		t.Fatalf("grid has %d departures and %d rows, want 61", len(grid.Departures), len(grid.Risk))
	}
	for i, row := range grid.Risk {
		if len(row) != len(weathers) {
			t.Fatalf("row %d has %d entries, want %d", i, len(row), len(weathers))
		}
		dep := grid.Departures[i]
		// Flat 60 minute travel makes every level feasible through 07:30,
		// infeasible after; 120 minutes moves the boundary to 06:30.
		wantClear, wantHeavy := 0.025, 0.025
		if dep > mm(t, "07:30") {
			wantClear = 0.75
		}
		if dep > mm(t, "06:30") {
			wantHeavy = 0.75
		}
		if math.Abs(row[0]-wantClear) > 1e-9 || math.Abs(row[1]-wantHeavy) > 1e-9 {
			t.Fatalf("risk at %s = %v, want [%v %v]", dep, row, wantClear, wantHeavy)
		}
		if row[1] < row[0] {
			t.Fatalf("heavier weather lowered the risk at %s: %v", dep, row)
		}
	}
}
