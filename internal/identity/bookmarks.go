// Package identity resolves which SSH private key to authenticate with.
package identity

// BookmarkStore grants access to filesystem locations through persisted,
// revocable tokens. The GUI layer backs this with security-scoped bookmarks;
// the CLI uses a pass-through implementation.
type BookmarkStore interface {
	// Save persists a grant for path and returns an opaque token.
	Save(path string) (token string, err error)

	// Resolve maps a token back to a path. stale reports that the token
	// should be re-saved by the caller.
	Resolve(token string) (path string, stale bool, err error)

	// Acquire starts scoped access to the resolved path. The returned
	// release function must be called exactly once, on success and failure
	// paths alike.
	Acquire(token string) (release func(), err error)
}

// PassthroughBookmarks is a BookmarkStore whose tokens are the paths
// themselves. Used by the CLI, where no sandbox grant is needed.
type PassthroughBookmarks struct{}

// Save implements BookmarkStore.
func (PassthroughBookmarks) Save(path string) (string, error) {
	return path, nil
}

// Resolve implements BookmarkStore.
func (PassthroughBookmarks) Resolve(token string) (string, bool, error) {
	return token, false, nil
}

// Acquire implements BookmarkStore.
func (PassthroughBookmarks) Acquire(string) (func(), error) {
	return func() {}, nil
}
