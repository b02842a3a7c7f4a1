// Package listing turns remote directory listing text into structured
// entries. The input is untyped ls output; parsing is tolerant by design
// and discards anything it cannot understand.
package listing

import (
	"sort"
	"strings"

	"github.com/sshpanes/sshpanes/internal/models"
)

// minFields is the minimum whitespace-separated field count for a listing
// line: permission string, link count, owner, group, size, three date
// fields, then the name.
const minFields = 9

// Parse converts long-format listing output into entries. Blank lines, the
// "total" aggregate line, and lines with fewer than minFields fields are
// discarded; a malformed line is never fatal. Entries come back with all
// directories first, then the rest, each group in case-insensitive
// ascending name order.
func Parse(raw string) []models.RemoteEntry {
	var entries []models.RemoteEntry

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.HasPrefix(line, "total") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < minFields {
			continue
		}

		perms := fields[0]
		// Rejoin from the 9th field so names with spaces survive.
		name := strings.Join(fields[minFields-1:], " ")

		name, kind := classify(name, perms)
		if name == "" {
			continue
		}

		entries = append(entries, models.RemoteEntry{
			ID:           name,
			Name:         name,
			Kind:         kind,
			RelativePath: name,
		})
	}

	sortEntries(entries)
	return entries
}

// classify strips any indicator suffix from the name and determines the
// entry kind. A trailing "/" marks a directory; a trailing "@" marks a
// symlink only when the permission string agrees, otherwise the suffix is
// part of classification noise and the entry is a file. Without a suffix
// the permission string's first character decides.
func classify(name, perms string) (string, models.EntryKind) {
	switch {
	case strings.HasSuffix(name, "/"):
		return strings.TrimSuffix(name, "/"), models.KindDirectory
	case strings.HasSuffix(name, "@"):
		name = strings.TrimSuffix(name, "@")
		if strings.HasPrefix(perms, "l") {
			return name, models.KindSymlink
		}
		return name, models.KindFile
	}

	switch {
	case strings.HasPrefix(perms, "d"):
		return name, models.KindDirectory
	case strings.HasPrefix(perms, "l"):
		return name, models.KindSymlink
	case strings.HasPrefix(perms, "-"):
		return name, models.KindFile
	default:
		return name, models.KindOther
	}
}

// sortEntries orders directories before non-directories, each group in
// case-insensitive ascending name order.
func sortEntries(entries []models.RemoteEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		di, dj := entries[i].IsDirectory(), entries[j].IsDirectory()
		if di != dj {
			return di
		}
		return strings.ToLower(entries[i].Name) < strings.ToLower(entries[j].Name)
	})
}
