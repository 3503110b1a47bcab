package quantile

import "math"

// LevelReport is the holdout evaluation of one quantile level. Coverage is
// the fraction of held-out travel times at or below the prediction and
// should sit near the level itself.
type LevelReport struct {
	Level    float64 `json:"level"`
	MAE      float64 `json:"mae"`
	Coverage float64 `json:"coverage"`
	Pinball  float64 `json:"pinball"`
}

// FitReport summarizes one training run.
type FitReport struct {
	TrainRecords int           `json:"train_records"`
	TestRecords  int           `json:"test_records"`
	Levels       []LevelReport `json:"levels"`
}

// Level returns the report row for tau, if one was fitted.
func (r *FitReport) Level(tau float64) (LevelReport, bool) {
	for _, lr := range r.Levels {
		if math.Abs(lr.Level-tau) < 1e-9 {
			return lr, true
		}
	}
	return LevelReport{}, false
}

// pinball is the quantile loss: underprediction weighted by tau,
// overprediction by 1-tau. The empirical tau-quantile minimizes its mean.
func pinball(tau, actual, pred float64) float64 {
	if actual >= pred {
		return tau * (actual - pred)
	}
	return (1 - tau) * (pred - actual)
}
