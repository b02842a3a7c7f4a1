// Package browser lists local directories for the local pane.
package browser

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/sshpanes/sshpanes/internal/models"
)

// Scan reads a local directory into an immutable snapshot of entries,
// newest modification first. Entries that cannot be stat'ed (racing
// deletes, permission holes) are skipped rather than failing the scan.
func Scan(dir string) ([]models.LocalEntry, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}

	type stamped struct {
		entry   models.LocalEntry
		modTime time.Time
	}

	stampedEntries := make([]stamped, 0, len(dirEntries))
	for _, de := range dirEntries {
		info, err := de.Info()
		if err != nil {
			continue
		}
		abs := filepath.Join(dir, de.Name())
		var size int64
		if !de.IsDir() {
			size = info.Size()
		}
		stampedEntries = append(stampedEntries, stamped{
			entry: models.LocalEntry{
				ID:           abs,
				AbsolutePath: abs,
				Name:         de.Name(),
				IsDirectory:  de.IsDir(),
				Size:         size,
			},
			modTime: info.ModTime(),
		})
	}

	sort.SliceStable(stampedEntries, func(i, j int) bool {
		return stampedEntries[i].modTime.After(stampedEntries[j].modTime)
	})

	entries := make([]models.LocalEntry, len(stampedEntries))
	for i, s := range stampedEntries {
		entries[i] = s.entry
	}
	return entries, nil
}
