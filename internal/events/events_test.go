package events

import (
	"testing"
	"time"
)

func TestSubscribeReceivesMatchingType(t *testing.T) {
	bus := NewEventBus(8)
	sub := bus.Subscribe(EventListingChanged)

	bus.Publish(&ListingChangedEvent{BaseEvent: Base(EventListingChanged), Pane: "remote"})
	bus.Publish(&BatchStartedEvent{BaseEvent: Base(EventBatchStarted), BatchID: "b"})

	select {
	case ev := <-sub:
		if ev.Type() != EventListingChanged {
			t.Errorf("received %v, want listing_changed", ev.Type())
		}
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}

	select {
	case ev := <-sub:
		t.Errorf("unexpected second event %v on a typed subscription", ev.Type())
	default:
	}
}

func TestSubscribeAllReceivesEverything(t *testing.T) {
	bus := NewEventBus(8)
	sub := bus.SubscribeAll()

	bus.Publish(&ListingChangedEvent{BaseEvent: Base(EventListingChanged)})
	bus.Publish(&BatchFinishedEvent{BaseEvent: Base(EventBatchFinished)})
	bus.Close()

	var got []EventType
	for ev := range sub {
		got = append(got, ev.Type())
	}
	if len(got) != 2 || got[0] != EventListingChanged || got[1] != EventBatchFinished {
		t.Errorf("received %v, want both events in order", got)
	}
}

func TestPublishNeverBlocksOnFullBuffer(t *testing.T) {
	bus := NewEventBus(1)
	_ = bus.Subscribe(EventItemDiagnostic)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 10; i++ {
			bus.Publish(&ItemDiagnosticEvent{BaseEvent: Base(EventItemDiagnostic), Chunk: "x"})
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full subscriber buffer")
	}
	if got := bus.DroppedEventCount(); got != 9 {
		t.Errorf("DroppedEventCount() = %d, want 9", got)
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	bus := NewEventBus(8)
	sub := bus.Subscribe(EventBatchStarted)
	bus.Unsubscribe(EventBatchStarted, sub)

	bus.Publish(&BatchStartedEvent{BaseEvent: Base(EventBatchStarted)})
	select {
	case ev := <-sub:
		t.Errorf("received %v after Unsubscribe", ev.Type())
	default:
	}
}

func TestCloseIsIdempotentAndStopsPublishing(t *testing.T) {
	bus := NewEventBus(8)
	sub := bus.SubscribeAll()

	bus.Close()
	bus.Close()
	bus.Publish(&BatchStartedEvent{BaseEvent: Base(EventBatchStarted)})

	if _, open := <-sub; open {
		t.Error("subscriber channel still open after Close")
	}
}

func TestSubscribeAfterCloseReturnsClosedChannel(t *testing.T) {
	bus := NewEventBus(8)
	bus.Close()

	if _, open := <-bus.Subscribe(EventBatchStarted); open {
		t.Error("Subscribe after Close returned an open channel")
	}
	if _, open := <-bus.SubscribeAll(); open {
		t.Error("SubscribeAll after Close returned an open channel")
	}
}

func TestBaseStampsTime(t *testing.T) {
	before := time.Now()
	ev := Base(EventBatchStarted)
	after := time.Now()

	if ev.Type() != EventBatchStarted {
		t.Errorf("Type() = %v, want batch_started", ev.Type())
	}
	if ev.Timestamp().Before(before) || ev.Timestamp().After(after) {
		t.Errorf("Timestamp() = %v, want between %v and %v", ev.Timestamp(), before, after)
	}
}
