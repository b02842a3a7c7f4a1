package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")

	store, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	err = store.Update(func(s *Settings) {
		s.ServerAddress = "host.example"
		s.Username = "alice"
		s.LastRemotePath = "~/projects"
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	reloaded, err := NewStore(path)
	if err != nil {
		t.Fatalf("reload error = %v", err)
	}
	got := reloaded.Get()
	if got.ServerAddress != "host.example" || got.Username != "alice" || got.LastRemotePath != "~/projects" {
		t.Errorf("reloaded settings = %+v, want persisted values", got)
	}
}

func TestStoreMissingFileIsEmpty(t *testing.T) {
	store, err := NewStore(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	if got := store.Get(); got != (Settings{}) {
		t.Errorf("Get() = %+v, want zero settings", got)
	}
}

func TestStoreCorruptFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := NewStore(path); err == nil {
		t.Error("NewStore() error = nil, want parse failure")
	}
}

func TestStoreWritePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	store, _ := NewStore(path)
	if err := store.Update(func(s *Settings) { s.Username = "bob" }); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("settings file mode = %o, want 0600", perm)
	}
}

func TestStoreNotifiesListeners(t *testing.T) {
	store, _ := NewStore(filepath.Join(t.TempDir(), "settings.json"))

	var seen []string
	store.OnChange(func(s Settings) { seen = append(seen, s.Username) })

	if err := store.Update(func(s *Settings) { s.Username = "first" }); err != nil {
		t.Fatal(err)
	}
	if err := store.Update(func(s *Settings) { s.Username = "second" }); err != nil {
		t.Fatal(err)
	}
	if len(seen) != 2 || seen[0] != "first" || seen[1] != "second" {
		t.Errorf("listener saw %v, want [first second]", seen)
	}
}

func TestSettingsNeverSerializePassphrase(t *testing.T) {
	data, err := json.Marshal(Settings{ServerAddress: "h", Username: "u"})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(strings.ToLower(string(data)), "passphrase") {
		t.Errorf("serialized settings contain a passphrase field: %s", data)
	}
}
