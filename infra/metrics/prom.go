package metrics

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/smartcommute/smartcommute/core/metrics"
)

// PromSink exposes advisory traffic, training quality and corpus size as
// Prometheus collectors.
type PromSink struct {
	advice   *prometheus.CounterVec
	travel   *prometheus.HistogramVec
	coverage *prometheus.GaugeVec
	mae      *prometheus.GaugeVec
	corpus   prometheus.Gauge
}

// NewPromSink registers the sink's collectors on the default registerer.
func NewPromSink() (coremetrics.MetricsSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers the collectors on reg. Collectors that
// are already registered (for example across repeated factory calls) are
// reused instead of failing.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (coremetrics.MetricsSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	advice := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "advice_requests_total",
		Help: "Number of departure recommendations served, by source, weather and feasibility.",
	}, []string{"source", "weather", "feasible"})
	if err := reg.Register(advice); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, err
		}
		advice = are.ExistingCollector.(*prometheus.CounterVec)
	}

	travel := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "advice_travel_minutes",
		Help:    "Predicted travel time of served recommendations, in minutes.",
		Buckets: prometheus.LinearBuckets(40, 20, 9),
	}, []string{"weather"})
	if err := reg.Register(travel); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, err
		}
		travel = are.ExistingCollector.(*prometheus.HistogramVec)
	}

	coverage := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "training_coverage_ratio",
		Help: "Holdout coverage of each fitted quantile level.",
	}, []string{"level"})
	if err := reg.Register(coverage); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, err
		}
		coverage = are.ExistingCollector.(*prometheus.GaugeVec)
	}

	mae := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "training_mae_minutes",
		Help: "Holdout mean absolute error of each fitted quantile level, in minutes.",
	}, []string{"level"})
	if err := reg.Register(mae); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, err
		}
		mae = are.ExistingCollector.(*prometheus.GaugeVec)
	}

	corpus := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "corpus_records",
		Help: "Size of the most recently generated commute corpus.",
	})
	if err := reg.Register(corpus); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, err
		}
		corpus = are.ExistingCollector.(prometheus.Gauge)
	}

	return &PromSink{
		advice:   advice,
		travel:   travel,
		coverage: coverage,
		mae:      mae,
		corpus:   corpus,
	}, nil
}

// RecordAdvice counts the served recommendation and observes its predicted
// travel time.
func (s *PromSink) RecordAdvice(ev coremetrics.AdviceEvent) error {
	weather := string(ev.Context.Weather)
	s.advice.WithLabelValues(ev.Source, weather, strconv.FormatBool(ev.Feasible)).Inc()
	s.travel.WithLabelValues(weather).Observe(ev.TravelMin)
	return nil
}

// RecordFitReport publishes the holdout quality of one fitted level.
func (s *PromSink) RecordFitReport(ev coremetrics.FitEvent) error {
	level := strconv.FormatFloat(ev.Level, 'g', -1, 64)
	s.coverage.WithLabelValues(level).Set(ev.Coverage)
	s.mae.WithLabelValues(level).Set(ev.MAE)
	return nil
}

// RecordCorpus publishes the record count of the latest generated corpus.
func (s *PromSink) RecordCorpus(ev coremetrics.CorpusEvent) error {
	s.corpus.Set(float64(ev.Records))
	return nil
}
