// Package remotepath provides helpers for remote path strings.
//
// Remote paths are plain strings manipulated by textual concatenation; they
// are never validated against a path grammar, so separator handling has to
// be explicit at every join site.
package remotepath

import "strings"

// PublicKeySuffix is the extension OpenSSH uses for public key files.
const PublicKeySuffix = ".pub"

// Join concatenates a directory and a child name with exactly one "/"
// between them, regardless of whether dir already ends in a separator.
func Join(dir, name string) string {
	if dir == "" {
		return name
	}
	return strings.TrimSuffix(dir, "/") + "/" + name
}

// StripPublicKeySuffix maps a public key path to its private counterpart.
// Paths without the suffix are returned unchanged.
func StripPublicKeySuffix(path string) string {
	return strings.TrimSuffix(path, PublicKeySuffix)
}

// IsHomeRelative reports whether a path is the home shorthand or rooted at
// it. Shell tilde expansion does not happen inside quoted arguments, so
// callers must expand these server-side.
func IsHomeRelative(path string) bool {
	return path == "~" || strings.HasPrefix(path, "~/")
}

// HomeRemainder returns the part of a home-relative path after the "~"
// shorthand, without a leading separator. Returns "" for "~" itself.
func HomeRemainder(path string) string {
	if path == "~" {
		return ""
	}
	return strings.TrimPrefix(path, "~/")
}
