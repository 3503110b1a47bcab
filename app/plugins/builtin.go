package plugins

import (
	"github.com/smartcommute/smartcommute/config"
	"github.com/smartcommute/smartcommute/core/advisor/logging"
	"github.com/smartcommute/smartcommute/core/factory"
	coremetrics "github.com/smartcommute/smartcommute/core/metrics"
	inframetrics "github.com/smartcommute/smartcommute/infra/metrics"
)

func init() {
	RegisterAdviceStore("jsonl", func(cfg config.AdviceLogConfig) (logging.Store, error) {
		if cfg.MaxSizeMB > 0 {
			return logging.NewRotatingJSONLStore(cfg.Path, cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays)
		}
		return logging.NewJSONLStore(cfg.Path)
	})
	RegisterAdviceStore("sqlite", func(cfg config.AdviceLogConfig) (logging.Store, error) {
		return logging.NewSQLiteStore(cfg.Path)
	})
	RegisterAdviceStore("memory", func(config.AdviceLogConfig) (logging.Store, error) {
		return logging.NewMemoryStore(), nil
	})

	must(coremetrics.RegisterMetricsSink("nop", func(map[string]any) (coremetrics.MetricsSink, error) {
		return coremetrics.NopSink{}, nil
	}))
	must(coremetrics.RegisterMetricsSink("prometheus", func(map[string]any) (coremetrics.MetricsSink, error) {
		return inframetrics.NewPromSink()
	}))
	must(coremetrics.RegisterMetricsSink("influx", func(conf map[string]any) (coremetrics.MetricsSink, error) {
		var ic inframetrics.InfluxConfig
		if err := factory.Decode(conf, &ic); err != nil {
			return nil, err
		}
		return inframetrics.NewInfluxSinkWithFallback(ic), nil
	}))
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
