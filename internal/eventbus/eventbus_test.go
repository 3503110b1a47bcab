package eventbus

import "testing"

type adviceEvent struct {
	Departure string
	Feasible  bool
}

func TestTypedBusPublishSubscribe(t *testing.T) {
	bus := NewTyped[adviceEvent]()
	ch := bus.Subscribe()
	bus.Publish(adviceEvent{Departure: "06:55", Feasible: true})
	got := <-ch
	if got.Departure != "06:55" || !got.Feasible {
		t.Fatalf("got %+v", got)
	}
	bus.Unsubscribe(ch)
}

func TestTypedBusDropsWhenFull(t *testing.T) {
	bus := NewTyped[int]()
	ch := bus.Subscribe()
	for i := 0; i < 20; i++ {
		bus.Publish(i)
	}
	// The buffer holds eight; later events are dropped, never blocked on.
	if len(ch) != 8 {
		t.Fatalf("buffered %d events, want 8", len(ch))
	}
}

func TestTypedBusClose(t *testing.T) {
	bus := NewTyped[int]()
	ch1 := bus.Subscribe()
	ch2 := bus.Subscribe()
	bus.Close()
	if _, ok := <-ch1; ok {
		t.Fatalf("expected ch1 closed")
	}
	if _, ok := <-ch2; ok {
		t.Fatalf("expected ch2 closed")
	}
}

func TestTypedBusUnsubscribeAfterClose(t *testing.T) {
	bus := NewTyped[float64]()
	ch := bus.Subscribe()
	bus.Close()
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("panic on Unsubscribe after Close: %v", r)
		}
	}()
	bus.Unsubscribe(ch)
}
