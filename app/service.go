package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	apiadvisor "github.com/smartcommute/smartcommute/api/advisor"
	"github.com/smartcommute/smartcommute/app/plugins"
	"github.com/smartcommute/smartcommute/config"
	coreadvisor "github.com/smartcommute/smartcommute/core/advisor"
	"github.com/smartcommute/smartcommute/core/advisor/logging"
	coremetrics "github.com/smartcommute/smartcommute/core/metrics"
	"github.com/smartcommute/smartcommute/core/model"
	"github.com/smartcommute/smartcommute/core/monitoring"
	"github.com/smartcommute/smartcommute/core/notify"
	"github.com/smartcommute/smartcommute/core/quantile"
	"github.com/smartcommute/smartcommute/infra/feed"
	"github.com/smartcommute/smartcommute/infra/logger"
	inframetrics "github.com/smartcommute/smartcommute/infra/metrics"
	inframon "github.com/smartcommute/smartcommute/infra/monitoring"
	inframqtt "github.com/smartcommute/smartcommute/infra/mqtt"
	"github.com/smartcommute/smartcommute/internal/eventbus"
)

// ErrNoModel is returned by advisory operations before a bundle is loaded.
var ErrNoModel = errors.New("no model loaded")

// Service wires the fitted model, the optimizer, the audit log, metrics and
// the outbound feed behind the JSON API.
type Service struct {
	cfg      *config.Config
	log      logger.Logger
	sink     coremetrics.MetricsSink
	store    logging.Store
	notifier notify.Notifier
	bus      *eventbus.TypedBus[logging.AdviceRecord]
	feed     *feed.Manager

	mu        sync.RWMutex
	model     *quantile.Model
	optimizer *coreadvisor.Optimizer

	addrMu sync.Mutex
	addr   string
}

// New creates a Service from the configuration. A missing model bundle is
// not an error: the service starts degraded and reports Ready false until
// LoadBundle succeeds.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	monitor, err := inframon.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	monitoring.Init(monitor)

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sinks: %w", err)
	}
	store, err := plugins.NewAdviceStore(cfg.AdviceLog)
	if err != nil {
		return nil, fmt.Errorf("advice store: %w", err)
	}

	var notifier notify.Notifier = notify.NopNotifier{}
	if cfg.MQTT.Enabled {
		notifier, err = inframqtt.NewPahoNotifier(cfg.MQTT)
		if err != nil {
			return nil, fmt.Errorf("mqtt notifier: %w", err)
		}
	}

	bus := eventbus.NewTyped[logging.AdviceRecord]()
	feedMgr, err := feed.NewManager(bus, notifier)
	if err != nil {
		return nil, fmt.Errorf("advice feed: %w", err)
	}

	svc := &Service{
		cfg:      cfg,
		log:      logg,
		sink:     sink,
		store:    store,
		notifier: notifier,
		bus:      bus,
		feed:     feedMgr,
	}

	if _, err := os.Stat(cfg.API.BundlePath); err != nil {
		logg.Warnf("model bundle %s not found, serving degraded until one is loaded", cfg.API.BundlePath)
		return svc, nil
	}
	if err := svc.LoadBundle(cfg.API.BundlePath); err != nil {
		return nil, err
	}
	return svc, nil
}

// LoadBundle reads a fitted model bundle and swaps it in atomically.
// In-flight queries finish on the model they started with.
func (s *Service) LoadBundle(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open bundle: %w", err)
	}
	defer func() { _ = f.Close() }()

	m, err := quantile.ReadBundle(f)
	if err != nil {
		return fmt.Errorf("read bundle %s: %w", path, err)
	}
	opt, err := coreadvisor.NewOptimizer(m, s.cfg.Advisor)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.model = m
	s.optimizer = opt
	s.mu.Unlock()
	s.log.Infof("loaded model bundle %s (levels %v)", path, m.Levels())
	return nil
}

// Ready reports whether a model bundle is loaded.
func (s *Service) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.optimizer != nil
}

// normalize fills the per-query defaults from the advisor configuration.
func (s *Service) normalize(q coreadvisor.Query) coreadvisor.Query {
	if q.Level == 0 {
		q.Level = s.cfg.Advisor.DefaultLevel
	}
	if q.DistanceScale == 0 {
		q.DistanceScale = s.cfg.Advisor.DistanceScale
	}
	return q
}

// Advise runs one optimization, appends the outcome to the audit log,
// records it on the metrics sink and publishes it on the bus. Audit and
// metrics failures are reported but do not fail the request.
func (s *Service) Advise(ctx context.Context, source string, q coreadvisor.Query) (logging.AdviceRecord, error) {
	s.mu.RLock()
	opt := s.optimizer
	s.mu.RUnlock()
	if opt == nil {
		return logging.AdviceRecord{}, ErrNoModel
	}

	q = s.normalize(q)
	res, err := opt.Optimize(q)
	if err != nil {
		return logging.AdviceRecord{}, err
	}

	rec := logging.NewAdviceRecord(source, q, res)
	if err := s.store.Append(ctx, rec); err != nil {
		s.log.Errorf("append advice %s: %v", rec.ID, err)
		monitoring.CaptureException(err, map[string]string{"component": "advice_store"})
	}
	if err := s.sink.RecordAdvice(coremetrics.AdviceEvent{
		QueryID:       rec.ID,
		Source:        source,
		Context:       q.Context,
		TargetArrival: q.TargetArrival,
		Level:         q.Level,
		Departure:     res.Departure,
		TravelMin:     res.TravelMin,
		ArrivalMin:    res.ArrivalMin,
		BufferMin:     res.BufferMin,
		Feasible:      res.Feasible,
		Time:          rec.Timestamp,
	}); err != nil {
		s.log.Warnf("advice metrics: %v", err)
	}
	s.bus.Publish(rec)

	s.log.Infof("advice %s: %s %s %s target %s -> depart %s (feasible %v)",
		rec.ID, rec.Weekday, rec.Weather, rec.Season, rec.TargetArrival, rec.Departure, rec.Feasible)
	return rec, nil
}

// Scan evaluates the whole candidate window for one query.
func (s *Service) Scan(q coreadvisor.Query) ([]coreadvisor.Candidate, error) {
	s.mu.RLock()
	opt := s.optimizer
	s.mu.RUnlock()
	if opt == nil {
		return nil, ErrNoModel
	}
	return opt.Scan(s.normalize(q))
}

// PredictAll returns the per-level travel predictions for one departure.
func (s *Service) PredictAll(mctx model.Context, departure model.MinuteOfDay) (map[float64]float64, error) {
	s.mu.RLock()
	m := s.model
	s.mu.RUnlock()
	if m == nil {
		return nil, ErrNoModel
	}
	return m.PredictAll(mctx, departure)
}

// Addr returns the listening address once Run has bound its listener.
func (s *Service) Addr() string {
	s.addrMu.Lock()
	defer s.addrMu.Unlock()
	return s.addr
}

// Run serves the JSON API until the context is canceled. The advice feed
// and, when enabled, the Prometheus exposition server run alongside it.
func (s *Service) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.API.Addr)
	if err != nil {
		return err
	}
	s.addrMu.Lock()
	s.addr = ln.Addr().String()
	s.addrMu.Unlock()

	go s.feed.Start(ctx)
	if s.cfg.Metrics.PrometheusEnabled {
		go func() {
			if err := inframetrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusAddr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	srv := &http.Server{Handler: apiadvisor.New(s, s.store, s.cfg.API.LogsToken)}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Errorf("shutdown server: %v", err)
		}
		cancel()
	}()

	s.log.Infof("advisor API listening on %s", s.addr)
	err = srv.Serve(ln)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Close releases the feed, the notifier and the audit store.
func (s *Service) Close() error {
	s.bus.Close()
	err := errors.Join(s.notifier.Close(), s.store.Close())
	monitoring.Flush(2 * time.Second)
	return err
}
