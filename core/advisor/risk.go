package advisor

import (
	"sort"

	"github.com/smartcommute/smartcommute/core/model"
)

// LateRisk estimates the probability of missing the target when leaving at
// departure. The fitted levels bracket the true on-time probability: it
// lies between the highest level that still makes it and the next one that
// does not, so the midpoint of that bracket is reported. Arriving on time
// at every level gives (1-maxLevel)/2; missing at every level gives
// 1-minLevel/2. Because levels may cross, every level is evaluated.
func (o *Optimizer) LateRisk(ctx model.Context, departure, target model.MinuteOfDay, scale float64) (float64, error) {
	if scale <= 0 {
		scale = 1
	}
	levels := o.pred.Levels()
	sort.Float64s(levels)

	best := -1
	for i, level := range levels {
		pred, err := o.pred.Predict(ctx, departure, level)
		if err != nil {
			return 0, err
		}
		if float64(departure)+pred*scale <= float64(target) {
			best = i
		}
	}
	if best < 0 {
		return 1 - levels[0]/2, nil
	}
	next := 1.0
	if best+1 < len(levels) {
		next = levels[best+1]
	}
	return 1 - (levels[best]+next)/2, nil
}

// RiskGrid holds LateRisk for every window candidate under each weather
// category, for one target arrival. Risk is indexed [departure][weather].
type RiskGrid struct {
	Departures []model.MinuteOfDay `json:"departures"`
	Weathers   []model.Weather     `json:"weathers"`
	Risk       [][]float64         `json:"risk"`
}

// RiskMatrix evaluates LateRisk across the whole window under each weather,
// holding weekday and season fixed. BI exports feed on the result.
func (o *Optimizer) RiskMatrix(ctx model.Context, weathers []model.Weather, target model.MinuteOfDay, scale float64) (*RiskGrid, error) {
	grid := &RiskGrid{Weathers: weathers}
	for t := o.start; t <= o.end; t += o.step {
		grid.Departures = append(grid.Departures, t)
		row := make([]float64, 0, len(weathers))
		for _, w := range weathers {
			wctx := ctx
			wctx.Weather = w
			risk, err := o.LateRisk(wctx, t, target, scale)
			if err != nil {
				return nil, err
			}
			row = append(row, risk)
		}
		grid.Risk = append(grid.Risk, row)
	}
	return grid, nil
}
