package browser

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestScanOrdersNewestFirst(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "old.txt")
	mid := filepath.Join(dir, "mid.txt")
	recent := filepath.Join(dir, "recent.txt")

	for i, path := range []string{old, mid, recent} {
		if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
		stamp := time.Now().Add(time.Duration(i-3) * time.Hour)
		if err := os.Chtimes(path, stamp, stamp); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := Scan(dir)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("Scan() returned %d entries, want 3", len(entries))
	}
	wantOrder := []string{"recent.txt", "mid.txt", "old.txt"}
	for i, want := range wantOrder {
		if entries[i].Name != want {
			t.Errorf("entries[%d].Name = %q, want %q", i, entries[i].Name, want)
		}
	}
}

func TestScanEntryFields(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "data.bin")
	if err := os.WriteFile(file, []byte("12345"), 0644); err != nil {
		t.Fatal(err)
	}
	sub := filepath.Join(dir, "nested")
	if err := os.Mkdir(sub, 0755); err != nil {
		t.Fatal(err)
	}

	entries, err := Scan(dir)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	byName := map[string]int{}
	for i, e := range entries {
		byName[e.Name] = i
	}
	f := entries[byName["data.bin"]]
	if f.IsDirectory || f.Size != 5 || f.AbsolutePath != file || f.ID != file {
		t.Errorf("file entry = %+v, want size 5 at %s", f, file)
	}
	d := entries[byName["nested"]]
	if !d.IsDirectory || d.Size != 0 {
		t.Errorf("dir entry = %+v, want directory with size 0", d)
	}
}

func TestScanMissingDirectoryFails(t *testing.T) {
	if _, err := Scan(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Error("Scan() error = nil, want failure for a missing directory")
	}
}

func TestScanEmptyDirectory(t *testing.T) {
	entries, err := Scan(t.TempDir())
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Scan() = %v, want empty", entries)
	}
}
