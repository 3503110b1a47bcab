package metrics

import "github.com/smartcommute/smartcommute/core/factory"

// Config defines settings for metrics sinks and the Prometheus exposition
// endpoint.
type Config struct {
	Sinks             []factory.ModuleConfig `json:"sinks"`
	PrometheusEnabled bool                   `json:"prometheus_enabled"`
	PrometheusAddr    string                 `json:"prometheus_addr"`
}
