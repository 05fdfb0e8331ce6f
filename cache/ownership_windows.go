//go:build windows

package cache

// isPathSafeToOwn is always true on Windows: the sudo-style "$HOME owned by
// someone else" scenario this guards against (spec.md §6) is POSIX-specific.
func isPathSafeToOwn(path string) bool { return true }

// fallbackCacheDir is unreachable on Windows since isPathSafeToOwn never
// returns false there, but is kept so New's call sites don't need a build
// tag of their own.
func fallbackCacheDir() string { return "" }
