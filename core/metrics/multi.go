package metrics

// MultiSink fans events out to multiple sinks. Advice events go to every
// sink; fit and corpus events only to sinks that record them.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordAdvice forwards the event to all sinks, returning the first error.
func (m *MultiSink) RecordAdvice(ev AdviceEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordAdvice(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordFitReport forwards fit reports to sinks that support them.
func (m *MultiSink) RecordFitReport(ev FitEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(FitRecorder); ok {
			if err := rec.RecordFitReport(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordCorpus forwards corpus events to sinks that support them.
func (m *MultiSink) RecordCorpus(ev CorpusEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(CorpusRecorder); ok {
			if err := rec.RecordCorpus(ev); err != nil {
				return err
			}
		}
	}
	return nil
}
