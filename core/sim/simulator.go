package sim

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/smartcommute/smartcommute/core/logger"
	"github.com/smartcommute/smartcommute/core/metrics"
	"github.com/smartcommute/smartcommute/core/model"
)

// Corpus is an ordered collection of simulated commutes, sorted by date and
// departure slot.
type Corpus []model.CommuteRecord

// Days counts the distinct civil days in the corpus.
func (c Corpus) Days() int {
	days := 0
	var prev time.Time
	for _, r := range c {
		if !r.Date.Equal(prev) {
			days++
			prev = r.Date
		}
	}
	return days
}

// CrashRate returns the fraction of records with a crash on the route.
func (c Corpus) CrashRate() float64 {
	if len(c) == 0 {
		return 0
	}
	n := 0
	for _, r := range c {
		if r.CrashOnRoute {
			n++
		}
	}
	return float64(n) / float64(len(c))
}

// splitStream separates the holdout shuffle from the per-day generation
// streams.
const splitStream = 1

// Split carves a deterministic holdout off the corpus: frac of the records
// land in test, the rest in train, both preserving corpus order. Repeated
// splits with the same seed agree.
func (c Corpus) Split(frac float64, seed int64) (train, test Corpus) {
	if len(c) == 0 || frac <= 0 {
		return c, nil
	}
	if frac >= 1 {
		return nil, c
	}

	r := rand.New(rand.NewPCG(uint64(seed), splitStream))
	perm := r.Perm(len(c))
	nTest := int(float64(len(c)) * frac)
	if nTest < 1 {
		nTest = 1
	}
	held := make([]bool, len(c))
	for _, i := range perm[:nTest] {
		held[i] = true
	}

	train = make(Corpus, 0, len(c)-nTest)
	test = make(Corpus, 0, nTest)
	for i, rec := range c {
		if held[i] {
			test = append(test, rec)
		} else {
			train = append(train, rec)
		}
	}
	return train, test
}

// Simulator generates synthetic commute corpora. Generation is seeded and
// bit-identical across runs for the same configuration.
type Simulator struct {
	cfg           Config
	log           logger.Logger
	sink          metrics.MetricsSink
	crashDelayCap float64
}

// New validates the configuration and builds a Simulator. A nil sink
// disables metrics.
func New(cfg Config, log logger.Logger, sink metrics.MetricsSink) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("simulation config: %w", err)
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	delay := distuv.LogNormal{Mu: cfg.CrashDelayMu, Sigma: cfg.CrashDelaySigma}
	return &Simulator{
		cfg:           cfg,
		log:           log,
		sink:          sink,
		crashDelayCap: delay.Quantile(cfg.CrashDelayCapQuantile),
	}, nil
}

// Generate simulates every commute slot of every business day in the
// configured range.
//
// Each day consumes its own random sub-stream in a fixed order: one
// categorical draw for the day's weather, then per slot the crash flag, the
// multiplier jitter, the weather delay (skipped under Clear) and the crash
// delay (skipped without a crash). Changing this order would change every
// seeded corpus.
func (s *Simulator) Generate(ctx context.Context) (Corpus, error) {
	start, err := s.cfg.Start()
	if err != nil {
		return nil, err
	}
	end, err := s.cfg.End()
	if err != nil {
		return nil, err
	}

	var corpus Corpus
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !model.IsCommuteDay(day.Weekday()) {
			continue
		}
		corpus = append(corpus, s.simulateDay(day)...)
	}

	s.log.Infof("generated %d commute records over %d days (seed %d)", len(corpus), corpus.Days(), s.cfg.Seed)
	if rec, ok := s.sink.(metrics.CorpusRecorder); ok {
		err := rec.RecordCorpus(metrics.CorpusEvent{
			Records:   len(corpus),
			Days:      corpus.Days(),
			Seed:      s.cfg.Seed,
			CrashRate: corpus.CrashRate(),
			Time:      time.Now(),
		})
		if err != nil {
			s.log.Warnf("corpus metrics: %v", err)
		}
	}
	return corpus, nil
}

// simulateDay draws one weather category and then every departure slot of
// the day.
func (s *Simulator) simulateDay(day time.Time) []model.CommuteRecord {
	src := dayStream(s.cfg.Seed, day)

	weights := make([]float64, 0, 4)
	probs := s.cfg.WeatherProbs[string(model.SeasonOf(day.Month()))]
	for _, w := range model.Weathers() {
		weights = append(weights, probs[string(w)])
	}
	weather := model.Weathers()[int(distuv.NewCategorical(weights, src).Rand())]

	jitterDist := distuv.Normal{Mu: 0, Sigma: s.cfg.MultiplierJitterSigma, Src: src}
	penaltyMean := s.cfg.WeatherPenaltyMean[string(weather)]
	penaltyDist := distuv.Normal{Mu: penaltyMean, Sigma: s.cfg.WeatherPenaltyNoiseFrac * penaltyMean, Src: src}
	delayDist := distuv.LogNormal{Mu: s.cfg.CrashDelayMu, Sigma: s.cfg.CrashDelaySigma, Src: src}

	records := make([]model.CommuteRecord, 0, int(model.GridEnd-model.GridStart)/model.SlotMinutes)
	for slot := model.GridStart; slot < model.GridEnd; slot += model.SlotMinutes {
		crash := distuv.Bernoulli{P: s.crashProb(slot, weather), Src: src}.Rand() == 1
		mult := s.rushMultiplier(slot, day.Weekday(), jitterDist.Rand())

		penalty := 0.0
		if penaltyMean > 0 {
			penalty = math.Max(0, penaltyDist.Rand())
		}
		delay := 0.0
		if crash {
			delay = math.Min(delayDist.Rand(), s.crashDelayCap)
		}

		travel := s.cfg.BaseTravelMin*mult + penalty + delay
		travel = math.Min(math.Max(travel, s.cfg.MinTravelMin), s.cfg.MaxTravelMin)

		records = append(records, model.CommuteRecord{
			Date:              day,
			Weekday:           day.Weekday(),
			Season:            model.SeasonOf(day.Month()),
			Departure:         slot,
			Weather:           weather,
			CrashOnRoute:      crash,
			BaseTravelMin:     s.cfg.BaseTravelMin,
			RushMultiplier:    mult,
			WeatherPenaltyMin: penalty,
			CrashDelayMin:     delay,
			TravelTimeMin:     travel,
			DistanceMiles:     s.cfg.DistanceMiles,
		})
	}
	return records
}

// rushMultiplier evaluates the double-peak congestion curve. The weekday
// factor scales the bump term only; the result never drops below 1.
func (s *Simulator) rushMultiplier(t model.MinuteOfDay, weekday time.Weekday, jitter float64) float64 {
	bump := 0.0
	for _, b := range s.cfg.RushBumps {
		bump += gauss(t.HourFrac(), b)
	}
	m := 1 + bump*s.cfg.WeekdayFactors[model.WeekdayName(weekday)] + jitter
	if m < 1 {
		m = 1
	}
	return m
}

// crashProb combines the base rate, the rush-hour boosts and the weather
// boost, capped at the configured maximum.
func (s *Simulator) crashProb(t model.MinuteOfDay, w model.Weather) float64 {
	p := s.cfg.CrashBaseProb + s.cfg.CrashWeatherBoost[string(w)]
	for _, b := range s.cfg.CrashRushBoosts {
		p += gauss(t.HourFrac(), b)
	}
	if p > s.cfg.CrashProbCap {
		p = s.cfg.CrashProbCap
	}
	return p
}

func gauss(hour float64, b RushBump) float64 {
	z := (hour - b.CenterHour) / b.WidthHour
	return b.Height * math.Exp(-0.5*z*z)
}
