package quantile

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/smartcommute/smartcommute/core/logger"
	"github.com/smartcommute/smartcommute/core/metrics"
	"github.com/smartcommute/smartcommute/core/model"
)

// splitStream distinguishes the shuffle stream from other consumers of the
// training seed.
const splitStream = 1

// Fit trains one empirical quantile per configured level and cell, and
// evaluates the fitted model on a deterministic holdout split. A nil sink
// disables metrics.
func Fit(corpus []model.CommuteRecord, cfg Config, log logger.Logger, sink metrics.MetricsSink) (*Model, *FitReport, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("training config: %w", err)
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	if len(corpus) < cfg.MinRecords {
		return nil, nil, &InsufficientDataError{
			Records: len(corpus),
			Reason:  fmt.Sprintf("need at least %d records", cfg.MinRecords),
		}
	}
	if singleValued(corpus) {
		return nil, nil, &InsufficientDataError{
			Records: len(corpus),
			Reason:  "travel time is single-valued",
		}
	}

	levels := make([]float64, len(cfg.Levels))
	copy(levels, cfg.Levels)
	sort.Float64s(levels)

	train, test := split(corpus, cfg.HoldoutFrac, cfg.Seed)
	m := &Model{
		levels:     levels,
		binMinutes: cfg.TimeBinMinutes,
		minCell:    cfg.MinCellSamples,
		enc:        FitEncoder(corpus),
	}
	m.fitCells(train)

	report, err := m.evaluate(test)
	if err != nil {
		return nil, nil, fmt.Errorf("holdout evaluation: %w", err)
	}
	report.TrainRecords = len(train)
	report.TestRecords = len(test)

	for _, lr := range report.Levels {
		log.Infof("fitted q%.2f over %d cells: mae=%.2fmin coverage=%.3f pinball=%.3f",
			lr.Level, len(m.exact), lr.MAE, lr.Coverage, lr.Pinball)
		if rec, ok := sink.(metrics.FitRecorder); ok {
			err := rec.RecordFitReport(metrics.FitEvent{
				Level:        lr.Level,
				MAE:          lr.MAE,
				Coverage:     lr.Coverage,
				Pinball:      lr.Pinball,
				TrainRecords: report.TrainRecords,
				TestRecords:  report.TestRecords,
				Time:         time.Now(),
			})
			if err != nil {
				log.Warnf("fit metrics: %v", err)
			}
		}
	}
	return m, report, nil
}

// split shuffles deterministically and carves off the holdout fraction,
// preserving corpus order inside each part.
func split(corpus []model.CommuteRecord, frac float64, seed int64) (train, test []model.CommuteRecord) {
	r := rand.New(rand.NewPCG(uint64(seed), splitStream))
	perm := r.Perm(len(corpus))

	nTest := int(float64(len(corpus)) * frac)
	if nTest < 1 {
		nTest = 1
	}
	held := make([]bool, len(corpus))
	for _, i := range perm[:nTest] {
		held[i] = true
	}

	train = make([]model.CommuteRecord, 0, len(corpus)-nTest)
	test = make([]model.CommuteRecord, 0, nTest)
	for i, rec := range corpus {
		if held[i] {
			test = append(test, rec)
		} else {
			train = append(train, rec)
		}
	}
	return train, test
}

func singleValued(corpus []model.CommuteRecord) bool {
	for _, r := range corpus[1:] {
		if r.TravelTimeMin != corpus[0].TravelTimeMin {
			return false
		}
	}
	return true
}

// fitCells accumulates travel times per tier and reduces each cell to its
// empirical quantiles.
func (m *Model) fitCells(train []model.CommuteRecord) {
	exact := make(map[string][]float64)
	noSeason := make(map[string][]float64)
	noWeekday := make(map[string][]float64)
	timeBin := make(map[string][]float64)
	global := make([]float64, 0, len(train))

	for _, r := range train {
		wd := model.WeekdayName(r.Weekday)
		we, se := string(r.Weather), string(r.Season)
		bin := int(r.Departure) / m.binMinutes

		exact[keyExact(bin, wd, we, se)] = append(exact[keyExact(bin, wd, we, se)], r.TravelTimeMin)
		noSeason[keyNoSeason(bin, wd, we)] = append(noSeason[keyNoSeason(bin, wd, we)], r.TravelTimeMin)
		noWeekday[keyNoWeekday(bin, we)] = append(noWeekday[keyNoWeekday(bin, we)], r.TravelTimeMin)
		timeBin[keyTimeBin(bin)] = append(timeBin[keyTimeBin(bin)], r.TravelTimeMin)
		global = append(global, r.TravelTimeMin)
	}

	m.exact = quantize(exact, m.levels)
	m.noSeason = quantize(noSeason, m.levels)
	m.noWeekday = quantize(noWeekday, m.levels)
	m.timeBin = quantize(timeBin, m.levels)
	m.global = newNode(global, m.levels)
}

func quantize(cells map[string][]float64, levels []float64) map[string]node {
	out := make(map[string]node, len(cells))
	for k, samples := range cells {
		out[k] = newNode(samples, levels)
	}
	return out
}

func newNode(samples []float64, levels []float64) node {
	sort.Float64s(samples)
	q := make([]float64, len(levels))
	for i, level := range levels {
		q[i] = stat.Quantile(level, stat.Empirical, samples, nil)
	}
	return node{N: len(samples), Q: q}
}

// evaluate scores every fitted level against the holdout split.
func (m *Model) evaluate(test []model.CommuteRecord) (*FitReport, error) {
	report := &FitReport{}
	for _, level := range m.levels {
		var absErr, pin float64
		covered := 0
		for _, r := range test {
			pred, err := m.Predict(model.ContextOf(r), r.Departure, level)
			if err != nil {
				return nil, err
			}
			absErr += math.Abs(r.TravelTimeMin - pred)
			if r.TravelTimeMin <= pred {
				covered++
			}
			pin += pinball(level, r.TravelTimeMin, pred)
		}
		n := float64(len(test))
		report.Levels = append(report.Levels, LevelReport{
			Level:    level,
			MAE:      absErr / n,
			Coverage: float64(covered) / n,
			Pinball:  pin / n,
		})
	}
	return report, nil
}
