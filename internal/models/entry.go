// Package models defines the core data types shared by the sshpanes
// transfer and listing layers.
package models

// EntryKind classifies a remote directory entry.
type EntryKind string

const (
	KindFile      EntryKind = "file"
	KindDirectory EntryKind = "directory"
	KindSymlink   EntryKind = "symlink"
	KindOther     EntryKind = "other"
)

// RemoteEntry represents a file, directory or symlink reported by a remote
// host's directory listing. Identity is the name within a single listing;
// names are not globally unique across listings.
type RemoteEntry struct {
	// ID is the entry name (identity within one listing).
	ID string

	// Name is the display name with any classify suffix stripped.
	Name string

	// Kind is the entry classification.
	Kind EntryKind

	// RelativePath is the path of the entry relative to the listed directory.
	RelativePath string
}

// IsDirectory reports whether the entry is a directory.
func (e RemoteEntry) IsDirectory() bool {
	return e.Kind == KindDirectory
}

// LocalEntry represents a single item in a local directory snapshot.
// Identity is the absolute path, which is unique within a filesystem.
// A snapshot is immutable; the next scan replaces it wholesale.
type LocalEntry struct {
	// ID is the absolute path.
	ID string

	// AbsolutePath is the absolute filesystem path of the entry.
	AbsolutePath string

	// Name is the base name.
	Name string

	// IsDirectory indicates whether this is a directory.
	IsDirectory bool

	// Size is the file size in bytes (0 for directories).
	Size int64
}

// SessionResult is the structured outcome of one subprocess invocation.
// Produced once per invocation; immutable.
type SessionResult struct {
	ExitCode int32
	Stdout   string
	Stderr   string
}

// Succeeded reports whether the subprocess exited cleanly.
func (r SessionResult) Succeeded() bool {
	return r.ExitCode == 0
}
