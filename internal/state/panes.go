// Package state provides the observable pane containers the UI reads.
// Containers publish events on change; frontends subscribe instead of
// being called on a UI thread.
package state

import (
	"sync"

	"github.com/sshpanes/sshpanes/internal/events"
	"github.com/sshpanes/sshpanes/internal/models"
)

// RemotePane holds the remote listing for one view. Thread-safe.
type RemotePane struct {
	eventBus *events.EventBus

	mu        sync.RWMutex
	path      string
	entries   []models.RemoteEntry
	loading   bool
	lastError error
}

// NewRemotePane creates a remote pane publishing on eventBus (may be nil).
func NewRemotePane(eventBus *events.EventBus, initialPath string) *RemotePane {
	return &RemotePane{eventBus: eventBus, path: initialPath}
}

// Path returns the current remote directory.
func (p *RemotePane) Path() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.path
}

// SetPath updates the current remote directory.
func (p *RemotePane) SetPath(path string) {
	p.mu.Lock()
	p.path = path
	p.mu.Unlock()
}

// Entries returns a copy of the current listing.
func (p *RemotePane) Entries() []models.RemoteEntry {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]models.RemoteEntry, len(p.entries))
	copy(out, p.entries)
	return out
}

// SetEntries replaces the listing and publishes a change event.
func (p *RemotePane) SetEntries(entries []models.RemoteEntry) {
	p.mu.Lock()
	p.entries = entries
	p.loading = false
	p.lastError = nil
	path := p.path
	snapshot := make([]models.RemoteEntry, len(entries))
	copy(snapshot, entries)
	p.mu.Unlock()

	p.publish(&events.ListingChangedEvent{
		BaseEvent: events.Base(events.EventListingChanged),
		Pane:      "remote",
		Path:      path,
		Entries:   snapshot,
	})
}

// SetLoading flips the loading flag and publishes the transition.
func (p *RemotePane) SetLoading(loading bool) {
	p.mu.Lock()
	p.loading = loading
	path := p.path
	p.mu.Unlock()

	p.publish(&events.ListingLoadingEvent{
		BaseEvent: events.Base(events.EventListingLoading),
		Pane:      "remote",
		Path:      path,
		Loading:   loading,
	})
}

// Loading reports whether a listing is in flight.
func (p *RemotePane) Loading() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.loading
}

// SetError clears the listing, records the error, and publishes it.
// The error is surfaced distinctly rather than silently reduced to an
// empty list.
func (p *RemotePane) SetError(err error) {
	p.mu.Lock()
	p.entries = nil
	p.loading = false
	p.lastError = err
	path := p.path
	p.mu.Unlock()

	if err != nil {
		p.publish(&events.ListingErrorEvent{
			BaseEvent: events.Base(events.EventListingError),
			Pane:      "remote",
			Path:      path,
			Error:     err,
		})
	}
}

// LastError returns the most recent listing error, nil after a successful
// refresh.
func (p *RemotePane) LastError() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastError
}

func (p *RemotePane) publish(ev events.Event) {
	if p.eventBus != nil {
		p.eventBus.Publish(ev)
	}
}

// LocalPane holds the local directory snapshot for one view. Thread-safe.
type LocalPane struct {
	eventBus *events.EventBus

	mu        sync.RWMutex
	path      string
	entries   []models.LocalEntry
	lastError error
}

// NewLocalPane creates a local pane publishing on eventBus (may be nil).
func NewLocalPane(eventBus *events.EventBus, initialPath string) *LocalPane {
	return &LocalPane{eventBus: eventBus, path: initialPath}
}

// Path returns the current local directory.
func (p *LocalPane) Path() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.path
}

// SetPath updates the current local directory.
func (p *LocalPane) SetPath(path string) {
	p.mu.Lock()
	p.path = path
	p.mu.Unlock()
}

// Entries returns a copy of the current snapshot.
func (p *LocalPane) Entries() []models.LocalEntry {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]models.LocalEntry, len(p.entries))
	copy(out, p.entries)
	return out
}

// SetEntries replaces the snapshot wholesale.
func (p *LocalPane) SetEntries(entries []models.LocalEntry) {
	p.mu.Lock()
	p.entries = entries
	p.lastError = nil
	p.mu.Unlock()
}

// SetError records a scan failure and clears the snapshot.
func (p *LocalPane) SetError(err error) {
	p.mu.Lock()
	p.entries = nil
	p.lastError = err
	p.mu.Unlock()
}

// LastError returns the most recent scan error.
func (p *LocalPane) LastError() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastError
}
