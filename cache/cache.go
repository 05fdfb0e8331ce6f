// Package cache implements the on-disk layout of the DotSlash artifact
// cache: where the root directory lives, and how an artifact entry maps to
// a directory, an executable path, and an advisory lock path underneath it.
package cache

import (
	"os"
	"path/filepath"
)

// EnvVar is the environment variable that overrides the cache root.
const EnvVar = "DOTSLASH_CACHE"

// Cache is the root of the DotSlash artifact cache.
//
// The cache is organized as follows:
//   - Any subdirectory whose name is two lowercase hex digits is the parent
//     directory for artifacts whose cache key starts with those two hex
//     digits (see Location).
//   - The only other subdirectory is "locks", which mirrors that same
//     two-hex-digit sharding so it can be torn down independently of the
//     artifacts themselves.
//
// Keeping the two-digit shard close to the root keeps artifact paths short,
// which matters on Windows' MAX_PATH.
type Cache struct {
	dir string
}

// New returns a Cache rooted at the directory named by $DOTSLASH_CACHE, or
// at the platform cache directory's "dotslash" subdirectory if the
// environment variable is unset. When that subdirectory is not safe for the
// current user to own, the root is a "dotslash-<uid>" directory under the
// system temp directory instead.
func New() (Cache, error) {
	if dir := os.Getenv(EnvVar); dir != "" {
		return NewAt(dir), nil
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return Cache{}, err
	}
	dir := filepath.Join(base, "dotslash")

	// os.UserCacheDir relies on $HOME, which under a non-"-H" `sudo` may
	// still name the sudoer's home directory even though the process is
	// running as another user (e.g. root). Refuse to let that user's cache
	// dir end up owned by a different uid nested inside someone else's
	// home; fall back to a uid-named directory under the system temp dir
	// instead (spec.md §6 Environment).
	if !isPathSafeToOwn(dir) {
		return NewAt(fallbackCacheDir()), nil
	}
	return NewAt(dir), nil
}

// NewAt returns a Cache rooted at dir, bypassing environment lookup. Tests
// use this to point the cache at a temporary directory.
func NewAt(dir string) Cache { return Cache{dir: dir} }

// Dir returns the cache root.
func (c Cache) Dir() string { return c.dir }

// ArtifactsDir returns the directory under which sharded artifact
// directories live. It is currently the same as Dir, but callers should use
// this accessor rather than Dir when building an artifact path, since the
// two are allowed to diverge.
func (c Cache) ArtifactsDir() string { return c.dir }

// LocksDir returns the lock-shard directory for a two-hex-digit artifact
// key prefix.
func (c Cache) LocksDir(keyPrefix string) string {
	return filepath.Join(c.dir, "locks", keyPrefix)
}
