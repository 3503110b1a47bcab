package feed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/smartcommute/smartcommute/core/advisor/logging"
	"github.com/smartcommute/smartcommute/infra/mqtt"
	"github.com/smartcommute/smartcommute/internal/eventbus"
)

func testRecord(id string) logging.AdviceRecord {
	return logging.AdviceRecord{
		ID:            id,
		Timestamp:     time.Date(2024, 3, 6, 7, 0, 0, 0, time.UTC),
		Source:        "api",
		Weekday:       "Wed",
		Weather:       "Clear",
		Season:        "spring",
		TargetArrival: "08:30",
		Level:         0.95,
		Departure:     "07:05",
		TravelMin:     71,
		ArrivalMin:    496,
		BufferMin:     14,
		Feasible:      true,
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for !cond() {
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for %s", what)
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestManagerForwards(t *testing.T) {
	bus := eventbus.NewTyped[logging.AdviceRecord]()
	notifier := mqtt.NewMockNotifier()
	mgr, err := NewManagerWithRegistry(bus, notifier, prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("NewManagerWithRegistry: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		mgr.Start(ctx)
		close(done)
	}()

	bus.Publish(testRecord("a"))
	bus.Publish(testRecord("b"))
	waitFor(t, "two publishes", func() bool { return len(notifier.Published()) == 2 })

	got := notifier.Published()
	if got[0].ID != "a" || got[1].ID != "b" {
		t.Errorf("unexpected order: %s, %s", got[0].ID, got[1].ID)
	}
	if v := testutil.ToFloat64(mgr.forwarded); v != 2 {
		t.Errorf("forwarded = %v, want 2", v)
	}
	if v := testutil.ToFloat64(mgr.failed); v != 0 {
		t.Errorf("failed = %v, want 0", v)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Start did not return after cancel")
	}
}

func TestManagerCountsFailures(t *testing.T) {
	bus := eventbus.NewTyped[logging.AdviceRecord]()
	notifier := mqtt.NewMockNotifier()
	notifier.Err = errors.New("broker down")
	mgr, err := NewManagerWithRegistry(bus, notifier, prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("NewManagerWithRegistry: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go mgr.Start(ctx)

	bus.Publish(testRecord("a"))
	waitFor(t, "failure count", func() bool { return testutil.ToFloat64(mgr.failed) == 1 })

	if len(notifier.Published()) != 0 {
		t.Errorf("failed publish should not be recorded")
	}
}

func TestManagerStopsWhenBusCloses(t *testing.T) {
	bus := eventbus.NewTyped[logging.AdviceRecord]()
	mgr, err := NewManagerWithRegistry(bus, mqtt.NewMockNotifier(), prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("NewManagerWithRegistry: %v", err)
	}

	done := make(chan struct{})
	go func() {
		mgr.Start(context.Background())
		close(done)
	}()

	bus.Close()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Start did not return after bus close")
	}
}

func TestManagerRegistersOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	bus := eventbus.NewTyped[logging.AdviceRecord]()
	if _, err := NewManagerWithRegistry(bus, mqtt.NewMockNotifier(), reg); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	if _, err := NewManagerWithRegistry(bus, mqtt.NewMockNotifier(), reg); err != nil {
		t.Fatalf("second registration should reuse collectors: %v", err)
	}
}
