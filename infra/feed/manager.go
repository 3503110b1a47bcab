// Package feed drains served advice from the in-process bus and publishes
// it through the outbound notifier, keeping broker latency off the serving
// path.
package feed

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/smartcommute/smartcommute/core/advisor/logging"
	"github.com/smartcommute/smartcommute/core/notify"
	"github.com/smartcommute/smartcommute/infra/logger"
	"github.com/smartcommute/smartcommute/internal/eventbus"
)

// publishTimeout bounds a single notifier publish so one stuck broker
// write cannot stall the drain loop.
const publishTimeout = 5 * time.Second

// Manager forwards advice records from the bus to the notifier.
type Manager struct {
	bus      *eventbus.TypedBus[logging.AdviceRecord]
	notifier notify.Notifier
	log      logger.Logger

	forwarded prometheus.Counter
	failed    prometheus.Counter
	lastSent  prometheus.Gauge
	latency   prometheus.Histogram
}

// NewManager registers the feed collectors on the default registerer.
func NewManager(bus *eventbus.TypedBus[logging.AdviceRecord], n notify.Notifier) (*Manager, error) {
	return NewManagerWithRegistry(bus, n, prometheus.DefaultRegisterer)
}

// NewManagerWithRegistry registers the collectors on reg, reusing any that
// are already present.
func NewManagerWithRegistry(bus *eventbus.TypedBus[logging.AdviceRecord], n notify.Notifier, reg prometheus.Registerer) (*Manager, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	forwarded := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "advice_feed_forwarded_total",
		Help: "Number of advice records published to the notifier.",
	})
	if err := reg.Register(forwarded); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, err
		}
		forwarded = are.ExistingCollector.(prometheus.Counter)
	}

	failed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "advice_feed_errors_total",
		Help: "Number of advice records the notifier failed to publish.",
	})
	if err := reg.Register(failed); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, err
		}
		failed = are.ExistingCollector.(prometheus.Counter)
	}

	lastSent := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "advice_feed_last_publish_timestamp_seconds",
		Help: "Unix timestamp of the last successful publish.",
	})
	if err := reg.Register(lastSent); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, err
		}
		lastSent = are.ExistingCollector.(prometheus.Gauge)
	}

	latency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "advice_feed_publish_latency_seconds",
		Help:    "Latency of notifier publishes.",
		Buckets: prometheus.DefBuckets,
	})
	if err := reg.Register(latency); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, err
		}
		latency = are.ExistingCollector.(prometheus.Histogram)
	}

	return &Manager{
		bus:       bus,
		notifier:  n,
		log:       logger.New("feed"),
		forwarded: forwarded,
		failed:    failed,
		lastSent:  lastSent,
		latency:   latency,
	}, nil
}

// Start drains the bus until ctx is done or the bus closes.
func (m *Manager) Start(ctx context.Context) {
	ch := m.bus.Subscribe()
	for {
		select {
		case <-ctx.Done():
			m.bus.Unsubscribe(ch)
			return
		case rec, ok := <-ch:
			if !ok {
				return
			}
			m.forward(ctx, rec)
		}
	}
}

func (m *Manager) forward(ctx context.Context, rec logging.AdviceRecord) {
	start := time.Now()
	pctx, cancel := context.WithTimeout(ctx, publishTimeout)
	err := m.notifier.PublishAdvice(pctx, rec)
	cancel()
	if err != nil {
		m.failed.Inc()
		m.log.Errorf("publish advice %s: %v", rec.ID, err)
		return
	}
	m.forwarded.Inc()
	m.latency.Observe(time.Since(start).Seconds())
	m.lastSent.SetToCurrentTime()
}
