package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Settings holds the persisted connection and pane state.
// The passphrase is deliberately absent: it lives in the credential store,
// keyed by "<username>@<server>", never in plain preference storage.
type Settings struct {
	ServerAddress string `json:"serverAddress"`
	Username      string `json:"username"`
	BaseDirectory string `json:"baseDirectory"`

	// IdentityKeyPath is the configured private key path. A ".pub" path is
	// accepted and resolved to its private counterpart at use time.
	IdentityKeyPath string `json:"identityKeyPath,omitempty"`

	// IdentityKeyBookmark is the opaque bookmark token for the identity key,
	// when one has been saved. Takes precedence over IdentityKeyPath.
	IdentityKeyBookmark string `json:"identityKeyBookmark,omitempty"`

	// LocalRootBookmark is the opaque bookmark token for the granted local
	// root folder.
	LocalRootBookmark string `json:"localRootBookmark,omitempty"`

	LastLocalPath  string `json:"lastLocalPath,omitempty"`
	LastRemotePath string `json:"lastRemotePath,omitempty"`
}

// Listener is notified after a settings field changes and is persisted.
type Listener func(Settings)

// Store is an observable settings container persisted to a JSON file on
// every write. Thread-safe.
type Store struct {
	path      string
	settings  Settings
	listeners []Listener
	mu        sync.RWMutex
}

// NewStore loads settings from path, returning an empty store when the file
// does not exist yet.
func NewStore(path string) (*Store, error) {
	s := &Store{path: path}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}
	if err := json.Unmarshal(data, &s.settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}
	return s, nil
}

// NewDefaultStore loads settings from the default location.
func NewDefaultStore() (*Store, error) {
	return NewStore(SettingsPath())
}

// Get returns a copy of the current settings.
func (s *Store) Get() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// Update applies fn to the settings, persists the result, and notifies
// listeners. The write is atomic via a temp-file rename.
func (s *Store) Update(fn func(*Settings)) error {
	s.mu.Lock()
	fn(&s.settings)
	snapshot := s.settings
	listeners := make([]Listener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	if err := s.save(snapshot); err != nil {
		return err
	}
	for _, l := range listeners {
		l(snapshot)
	}
	return nil
}

// OnChange registers a listener invoked after every persisted update.
func (s *Store) OnChange(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

func (s *Store) save(snapshot Settings) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace settings file: %w", err)
	}
	return nil
}
