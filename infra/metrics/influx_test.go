package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/smartcommute/smartcommute/core/metrics"
	"github.com/smartcommute/smartcommute/core/model"
)

func TestInfluxSink_RecordAdvice(t *testing.T) {
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		body = string(data)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	sink := NewInfluxSink(InfluxConfig{URL: srv.URL, Token: "token", Org: "org", Bucket: "bucket"})
	now := time.Date(2024, 3, 6, 7, 0, 0, 0, time.UTC)
	ev := coremetrics.AdviceEvent{
		QueryID:       "q-1",
		Source:        "api",
		Context:       model.Context{Weekday: time.Wednesday, Weather: model.WeatherClear, Season: model.SeasonWinter},
		TargetArrival: 510,
		Level:         0.9,
		Departure:     425,
		TravelMin:     71,
		ArrivalMin:    496,
		BufferMin:     14,
		Feasible:      true,
		Time:          now,
	}

	if err := sink.RecordAdvice(ev); err != nil {
		t.Fatalf("record error: %v", err)
	}
	p := write.NewPointWithMeasurement("advice_event").
		AddTag("query_id", "q-1").
		AddTag("source", "api").
		AddTag("weekday", "Wed").
		AddTag("weather", "Clear").
		AddTag("season", "winter").
		AddTag("feasible", "true").
		AddField("level", 0.9).
		AddField("target_arrival_min", 510).
		AddField("departure_min", 425).
		AddField("travel_min", 71.0).
		AddField("arrival_min", 496.0).
		AddField("buffer_min", 14.0).
		SetTime(now)
	expected := strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond))
	if strings.TrimSpace(body) != expected {
		t.Errorf("unexpected body: %s", body)
	}
}

func TestInfluxSink_RecordFitReport(t *testing.T) {
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		body = string(data)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	sink := NewInfluxSink(InfluxConfig{URL: srv.URL, Token: "token", Org: "org", Bucket: "bucket"})
	now := time.Date(2024, 3, 6, 7, 0, 0, 0, time.UTC)
	ev := coremetrics.FitEvent{
		Level:        0.95,
		MAE:          6.25,
		Coverage:     0.951,
		Pinball:      1.5,
		TrainRecords: 900,
		TestRecords:  100,
		Time:         now,
	}
	if err := sink.RecordFitReport(ev); err != nil {
		t.Fatalf("record error: %v", err)
	}
	if !strings.Contains(body, `fit_report,level=0.95`) {
		t.Errorf("missing measurement or level tag: %s", body)
	}
	if !strings.Contains(body, "coverage=0.951") {
		t.Errorf("missing coverage field: %s", body)
	}
}

func TestNewInfluxSinkWithFallback(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			called = true
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}))
	defer srv.Close()

	cfg := InfluxConfig{
		URL:    srv.URL + "/api/v2/write",
		Token:  "tok",
		Org:    "org",
		Bucket: "bucket",
	}
	sink := NewInfluxSinkWithFallback(cfg)
	if _, ok := sink.(*InfluxSink); ok {
		t.Fatalf("expected NopSink on failing health check")
	}
	if !called {
		t.Fatalf("health endpoint not called")
	}
}
