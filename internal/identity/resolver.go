package identity

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/sshpanes/sshpanes/internal/logging"
	"github.com/sshpanes/sshpanes/internal/util/remotepath"
)

// fallbackKeyNames are probed, in order, under the SSH directory when no
// key is configured.
var fallbackKeyNames = []string{"id_rsa", "id_ed25519"}

// ResolvedKey is the outcome of identity resolution.
type ResolvedKey struct {
	// Path is the private key file to pass to ssh/scp.
	Path string

	// Release ends scoped access to the key. Never nil; callers must invoke
	// it unconditionally once the subprocess has exited.
	Release func()
}

// Resolver determines which private key (if any) to use for
// authentication, and stabilizes it into the application's key cache.
type Resolver struct {
	// ConfiguredPath is the identity key path from settings ("" when unset).
	ConfiguredPath string

	// BookmarkToken is the saved bookmark for the identity key ("" when
	// unset). Takes precedence over ConfiguredPath.
	BookmarkToken string

	// Bookmarks resolves bookmark tokens. Required when BookmarkToken is set.
	Bookmarks BookmarkStore

	// SSHDir is the directory probed for fallback keys. Defaults to
	// ~/.ssh when empty.
	SSHDir string

	// CacheDir is where resolved keys are copied. Stabilizing the path lets
	// the key agent remember passphrases across runs. Empty disables caching.
	CacheDir string

	Logger *logging.Logger
}

// Resolve produces one resolved private key path, or nil when no key is
// available and agent authentication should be used instead.
func (r *Resolver) Resolve() (*ResolvedKey, error) {
	logger := r.Logger
	if logger == nil {
		logger = logging.Nop()
	}

	// 1. Bookmark grant, when present and resolvable.
	if r.BookmarkToken != "" && r.Bookmarks != nil {
		path, stale, err := r.Bookmarks.Resolve(r.BookmarkToken)
		if err == nil && path != "" {
			if stale {
				logger.Warn().Str("path", path).Msg("Identity key bookmark is stale")
			}
			release, err := r.Bookmarks.Acquire(r.BookmarkToken)
			if err != nil {
				logger.Warn().Err(err).Msg("Failed to acquire bookmarked identity key, falling back")
			} else {
				return r.finish(remotepath.StripPublicKeySuffix(path), release, logger), nil
			}
		} else if err != nil {
			logger.Warn().Err(err).Msg("Failed to resolve identity key bookmark, falling back")
		}
	}

	// 2. Configured path.
	if r.ConfiguredPath != "" {
		return r.finish(remotepath.StripPublicKeySuffix(r.ConfiguredPath), func() {}, logger), nil
	}

	// 3. Fallback probe under the SSH directory.
	sshDir := r.SSHDir
	if sshDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to locate home directory: %w", err)
		}
		sshDir = filepath.Join(home, ".ssh")
	}
	for _, name := range fallbackKeyNames {
		candidate := filepath.Join(sshDir, name)
		if _, err := os.Stat(candidate); err == nil {
			return r.finish(candidate, func() {}, logger), nil
		}
	}

	// 4. No key: agent-based authentication.
	return nil, nil
}

// finish stabilizes the key into the cache. A copy failure is non-fatal:
// the original path is used directly.
func (r *Resolver) finish(path string, release func(), logger *logging.Logger) *ResolvedKey {
	stable, err := r.stabilize(path)
	if err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("Key cache copy failed, using original path")
		return &ResolvedKey{Path: path, Release: release}
	}
	return &ResolvedKey{Path: stable, Release: release}
}

// stabilize copies the key into the cache directory keyed by its original
// filename, owner-read/write-only, re-copying only when the source is newer
// or differs in size. The key agent remembers unlocks per file path, so a
// stable path makes repeated runs reuse the cached unlock.
func (r *Resolver) stabilize(path string) (string, error) {
	if r.CacheDir == "" {
		return path, nil
	}

	srcInfo, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("failed to stat identity key: %w", err)
	}

	if err := os.MkdirAll(r.CacheDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create key cache directory: %w", err)
	}

	// Concurrent instances stabilize the same key; serialize the copy.
	lock := flock.New(filepath.Join(r.CacheDir, ".lock"))
	if err := lock.Lock(); err != nil {
		return "", fmt.Errorf("failed to lock key cache: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	dest := filepath.Join(r.CacheDir, filepath.Base(path))
	destInfo, err := os.Stat(dest)
	if err == nil &&
		destInfo.Size() == srcInfo.Size() &&
		!srcInfo.ModTime().After(destInfo.ModTime()) {
		return dest, nil
	}

	if err := copyKeyFile(path, dest); err != nil {
		return "", err
	}
	return dest, nil
}

func copyKeyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open identity key: %w", err)
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create cached key: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy identity key: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to finalize cached key: %w", err)
	}
	return nil
}
