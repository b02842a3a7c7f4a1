package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// CredentialStore persists secrets keyed by account ("<username>@<server>").
// Read failures must degrade to an empty passphrase at the call site; they
// are never fatal.
type CredentialStore interface {
	// Get returns the stored secret for the account, or "" when absent.
	Get(account string) (string, error)

	// Set stores the secret for the account.
	Set(account, secret string) error

	// Delete removes the stored secret for the account.
	Delete(account string) error
}

// FileCredentialStore stores one secret per file with owner-only
// permissions, the same layout the platform uses for API tokens.
type FileCredentialStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileCredentialStore creates a store rooted at dir.
func NewFileCredentialStore(dir string) *FileCredentialStore {
	return &FileCredentialStore{dir: dir}
}

// NewDefaultCredentialStore creates a store at the default location.
func NewDefaultCredentialStore() *FileCredentialStore {
	return NewFileCredentialStore(CredentialDir())
}

// Get implements CredentialStore.
func (s *FileCredentialStore) Get(account string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.pathFor(account))
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read credential for %s: %w", account, err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Set implements CredentialStore.
func (s *FileCredentialStore) Set(account, secret string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("failed to create credential directory: %w", err)
	}
	if err := os.WriteFile(s.pathFor(account), []byte(secret), 0600); err != nil {
		return fmt.Errorf("failed to write credential for %s: %w", account, err)
	}
	return nil
}

// Delete implements CredentialStore.
func (s *FileCredentialStore) Delete(account string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.pathFor(account))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete credential for %s: %w", account, err)
	}
	return nil
}

// pathFor maps an account to a file name, escaping path separators so a
// hostile account string cannot traverse out of the store directory.
func (s *FileCredentialStore) pathFor(account string) string {
	safe := strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(account)
	return filepath.Join(s.dir, safe)
}

// Account builds the credential key for a username/server pair.
func Account(username, server string) string {
	return username + "@" + server
}

// MemoryCredentialStore is an in-memory CredentialStore for tests.
type MemoryCredentialStore struct {
	mu      sync.Mutex
	secrets map[string]string
}

// NewMemoryCredentialStore creates an empty in-memory store.
func NewMemoryCredentialStore() *MemoryCredentialStore {
	return &MemoryCredentialStore{secrets: make(map[string]string)}
}

// Get implements CredentialStore.
func (s *MemoryCredentialStore) Get(account string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.secrets[account], nil
}

// Set implements CredentialStore.
func (s *MemoryCredentialStore) Set(account, secret string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.secrets[account] = secret
	return nil
}

// Delete implements CredentialStore.
func (s *MemoryCredentialStore) Delete(account string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.secrets, account)
	return nil
}
