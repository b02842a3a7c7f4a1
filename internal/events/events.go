// Package events provides the event bus the sshpanes core publishes on.
// Frontends (CLI today, GUI later) subscribe to listing and transfer
// lifecycle events instead of being called back on a UI thread.
package events

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/sshpanes/sshpanes/internal/models"
)

// EventType defines the types of events that can be emitted.
type EventType string

const (
	// Listing lifecycle
	EventListingLoading EventType = "listing_loading" // Listing started or finished loading
	EventListingChanged EventType = "listing_changed" // New entries available
	EventListingError   EventType = "listing_error"   // Listing command failed

	// Transfer lifecycle
	EventBatchStarted     EventType = "batch_started"      // Transfer batch began
	EventItemStateChanged EventType = "item_state_changed" // One item moved pending->running->terminal
	EventItemDiagnostic   EventType = "item_diagnostic"    // Incremental diagnostic chunk for running item
	EventBatchFinished    EventType = "batch_finished"     // All items reached a terminal state
)

// DefaultBuffer is the default per-subscriber channel buffer.
const DefaultBuffer = 256

// MaxBuffer caps subscriber buffers.
const MaxBuffer = 4096

// Event is the base interface for all events.
type Event interface {
	Type() EventType
	Timestamp() time.Time
}

// BaseEvent provides common event fields.
type BaseEvent struct {
	EventType EventType
	Time      time.Time
}

func (e BaseEvent) Type() EventType      { return e.EventType }
func (e BaseEvent) Timestamp() time.Time { return e.Time }

// Base constructs a BaseEvent stamped with the current time.
func Base(t EventType) BaseEvent {
	return BaseEvent{EventType: t, Time: time.Now()}
}

// ListingLoadingEvent is published when a pane starts or stops loading.
type ListingLoadingEvent struct {
	BaseEvent
	Pane    string // "local" or "remote"
	Path    string
	Loading bool
}

// ListingChangedEvent carries a fresh remote listing for a pane.
type ListingChangedEvent struct {
	BaseEvent
	Pane    string
	Path    string
	Entries []models.RemoteEntry
}

// ListingErrorEvent is published when a listing command fails.
type ListingErrorEvent struct {
	BaseEvent
	Pane  string
	Path  string
	Error error
}

// BatchStartedEvent is published when a transfer batch begins.
type BatchStartedEvent struct {
	BaseEvent
	BatchID   string
	Direction string // "download" or "upload"
	Total     int
}

// ItemStateChangedEvent is published on every per-item state transition.
type ItemStateChangedEvent struct {
	BaseEvent
	BatchID string
	ItemID  string
	Name    string
	State   string
	Message string
}

// ItemDiagnosticEvent carries one incremental chunk of the copy
// subprocess's diagnostic stream for a running item.
type ItemDiagnosticEvent struct {
	BaseEvent
	BatchID string
	ItemID  string
	Chunk   string
}

// BatchFinishedEvent is published once every item is terminal.
type BatchFinishedEvent struct {
	BaseEvent
	BatchID   string
	Succeeded int
	Failed    int
	Duration  time.Duration
}

// EventBus manages event subscriptions and publishing.
// Publishing never blocks: slow subscribers drop events, counted for
// observability.
type EventBus struct {
	subscribers   map[EventType][]chan Event
	all           []chan Event
	mu            sync.RWMutex
	bufferSize    int
	closed        bool
	droppedEvents atomic.Int64
}

// NewEventBus creates a new event bus with the specified buffer size.
func NewEventBus(bufferSize int) *EventBus {
	if bufferSize <= 0 {
		bufferSize = DefaultBuffer
	}
	if bufferSize > MaxBuffer {
		bufferSize = MaxBuffer
	}
	return &EventBus{
		subscribers: make(map[EventType][]chan Event),
		all:         make([]chan Event, 0),
		bufferSize:  bufferSize,
	}
}

// Subscribe creates a subscription to a specific event type.
func (eb *EventBus) Subscribe(eventType EventType) <-chan Event {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		ch := make(chan Event)
		close(ch)
		return ch
	}

	ch := make(chan Event, eb.bufferSize)
	eb.subscribers[eventType] = append(eb.subscribers[eventType], ch)
	return ch
}

// SubscribeAll creates a subscription to all events.
func (eb *EventBus) SubscribeAll() <-chan Event {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		ch := make(chan Event)
		close(ch)
		return ch
	}

	ch := make(chan Event, eb.bufferSize)
	eb.all = append(eb.all, ch)
	return ch
}

// Publish sends an event to all subscribers without blocking.
func (eb *EventBus) Publish(event Event) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	if eb.closed {
		return
	}

	for _, ch := range eb.subscribers[event.Type()] {
		select {
		case ch <- event:
		default:
			eb.droppedEvents.Add(1)
		}
	}

	for _, ch := range eb.all {
		select {
		case ch <- event:
		default:
			eb.droppedEvents.Add(1)
		}
	}
}

// Unsubscribe removes a subscription channel from a specific event type.
func (eb *EventBus) Unsubscribe(eventType EventType, ch <-chan Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return
	}

	subscribers := eb.subscribers[eventType]
	for i, subCh := range subscribers {
		if subCh == ch {
			subscribers[i] = subscribers[len(subscribers)-1]
			eb.subscribers[eventType] = subscribers[:len(subscribers)-1]
			break
		}
	}
}

// Close shuts down the event bus and closes all subscriber channels.
func (eb *EventBus) Close() {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return
	}
	eb.closed = true

	for _, channels := range eb.subscribers {
		for _, ch := range channels {
			close(ch)
		}
	}
	for _, ch := range eb.all {
		close(ch)
	}
}

// DroppedEventCount returns the number of events dropped on full buffers.
func (eb *EventBus) DroppedEventCount() int64 {
	return eb.droppedEvents.Load()
}
