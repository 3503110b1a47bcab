package metrics

import (
	"time"

	"github.com/smartcommute/smartcommute/core/model"
)

// AdviceEvent is one served departure recommendation.
type AdviceEvent struct {
	QueryID       string
	Source        string // api, cli or job
	Context       model.Context
	TargetArrival model.MinuteOfDay
	Level         float64
	Departure     model.MinuteOfDay
	TravelMin     float64
	ArrivalMin    float64
	BufferMin     float64
	Feasible      bool
	Time          time.Time
}

// MetricsSink records advice events for observability purposes.
type MetricsSink interface {
	RecordAdvice(ev AdviceEvent) error
}

// FitEvent captures the holdout evaluation of one fitted quantile level.
type FitEvent struct {
	Level        float64
	MAE          float64
	Coverage     float64
	Pinball      float64
	TrainRecords int
	TestRecords  int
	Time         time.Time
}

// FitRecorder records fit reports.
type FitRecorder interface {
	RecordFitReport(ev FitEvent) error
}

// CorpusEvent captures one corpus generation run.
type CorpusEvent struct {
	Records   int
	Days      int
	Seed      int64
	CrashRate float64
	Time      time.Time
}

// CorpusRecorder records corpus generations.
type CorpusRecorder interface {
	RecordCorpus(ev CorpusEvent) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordAdvice(AdviceEvent) error { return nil }
func (NopSink) RecordFitReport(FitEvent) error { return nil }
func (NopSink) RecordCorpus(CorpusEvent) error { return nil }
