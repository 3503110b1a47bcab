package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/smartcommute/smartcommute/core/metrics"
	"github.com/smartcommute/smartcommute/core/model"
	"github.com/smartcommute/smartcommute/infra/logger"
)

// InfluxConfig holds the connection settings for the InfluxDB sink.
type InfluxConfig struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

// InfluxSink writes advice, fit and corpus events to an InfluxDB instance
// using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(cfg InfluxConfig) *InfluxSink {
	base := strings.TrimSuffix(cfg.URL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		log:      logger.New("influx_sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(cfg InfluxConfig) coremetrics.MetricsSink {
	sink := NewInfluxSink(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordAdvice writes the served recommendation as a point tagged by
// source, commute context and feasibility.
func (s *InfluxSink) RecordAdvice(ev coremetrics.AdviceEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("advice_event").
		AddTag("query_id", ev.QueryID).
		AddTag("source", ev.Source).
		AddTag("weekday", model.WeekdayName(ev.Context.Weekday)).
		AddTag("weather", string(ev.Context.Weather)).
		AddTag("season", string(ev.Context.Season)).
		AddTag("feasible", strconv.FormatBool(ev.Feasible)).
		AddField("level", ev.Level).
		AddField("target_arrival_min", int(ev.TargetArrival)).
		AddField("departure_min", int(ev.Departure)).
		AddField("travel_min", round3(ev.TravelMin)).
		AddField("arrival_min", round3(ev.ArrivalMin)).
		AddField("buffer_min", round3(ev.BufferMin)).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordFitReport writes the holdout evaluation of one fitted level.
func (s *InfluxSink) RecordFitReport(ev coremetrics.FitEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("fit_report").
		AddTag("level", strconv.FormatFloat(ev.Level, 'g', -1, 64)).
		AddField("mae_min", round3(ev.MAE)).
		AddField("coverage", round3(ev.Coverage)).
		AddField("pinball", round3(ev.Pinball)).
		AddField("train_records", ev.TrainRecords).
		AddField("test_records", ev.TestRecords).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordCorpus writes the size and settings of one corpus generation run.
func (s *InfluxSink) RecordCorpus(ev coremetrics.CorpusEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("corpus_run").
		AddField("records", ev.Records).
		AddField("days", ev.Days).
		AddField("seed", ev.Seed).
		AddField("crash_rate", round3(ev.CrashRate)).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the underlying HTTP client.
func (s *InfluxSink) Close() {
	s.client.Close()
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
