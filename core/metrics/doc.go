// Package metrics defines interfaces and event types for observing the
// commute advisor. Sinks like PromSink and InfluxSink record advice
// requests, fit reports and corpus generations, and can be combined with
// NewMultiSink. The factory helpers return a MultiSink automatically when
// multiple sinks are configured.
package metrics
