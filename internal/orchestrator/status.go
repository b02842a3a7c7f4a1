// Package orchestrator sequences multi-item transfer batches with per-item
// state tracking and failure isolation.
package orchestrator

import (
	"fmt"
	"sync"

	"github.com/sshpanes/sshpanes/internal/models"
)

// ItemState is the per-item transfer state.
type ItemState string

const (
	StatePending   ItemState = "pending"
	StateRunning   ItemState = "running"
	StateSucceeded ItemState = "succeeded"
	StateFailed    ItemState = "failed"
)

// terminal reports whether a state admits no further transitions.
func (s ItemState) terminal() bool {
	return s == StateSucceeded || s == StateFailed
}

// ItemStatus tracks one item through a transfer batch. Transitions are
// strictly one-directional: pending -> running -> succeeded|failed, each
// taken at most once. Thread-safe.
type ItemStatus struct {
	// ID is unique within one batch run.
	ID string

	// Item is the entry being transferred.
	Item models.RemoteEntry

	mu      sync.RWMutex
	state   ItemState
	message string
}

func newItemStatus(id string, item models.RemoteEntry) *ItemStatus {
	return &ItemStatus{ID: id, Item: item, state: StatePending}
}

// State returns the current state.
func (s *ItemStatus) State() ItemState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Message returns the status detail (failure text, usually).
func (s *ItemStatus) Message() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.message
}

// transition enforces the one-way lifecycle. An illegal transition is a
// programming error in the coordinator, reported loudly.
func (s *ItemStatus) transition(to ItemState, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	legal := (s.state == StatePending && to == StateRunning) ||
		(s.state == StateRunning && to.terminal())
	if !legal {
		return fmt.Errorf("illegal status transition %s -> %s for %s", s.state, to, s.ID)
	}
	s.state = to
	s.message = message
	return nil
}

// Snapshot is an immutable copy of an item's status for display.
type Snapshot struct {
	ID      string
	Item    models.RemoteEntry
	State   ItemState
	Message string
}

// snapshot returns the current status as a value.
func (s *ItemStatus) snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{ID: s.ID, Item: s.Item, State: s.state, Message: s.message}
}
