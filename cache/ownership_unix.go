//go:build !windows

package cache

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"

	"golang.org/x/sys/unix"
)

// isPathSafeToOwn reports whether path is safe to use as (a parent of) the
// cache root: either it exists and is owned by the current user, or it
// doesn't exist and the nearest existing ancestor is. This guards against
// the case where $HOME points at one user's home directory but the process
// is actually running as another (e.g. a non-"-H" `sudo`), which would
// otherwise make a privileged user own a cache directory nested inside
// another user's home.
func isPathSafeToOwn(path string) bool {
	uid := unix.Getuid()
	for {
		var st unix.Stat_t
		// Lstat, not Stat: a broken symlink should still be judged by its
		// own ownership rather than treated as "doesn't exist yet".
		err := unix.Lstat(path, &st)
		switch {
		case err == nil:
			return int(st.Uid) == uid
		case errors.Is(err, os.ErrNotExist):
			parent := filepath.Dir(path)
			if parent == path {
				return false
			}
			path = parent
		default:
			return false
		}
	}
}

// fallbackCacheDir returns the per-user cache directory under the system
// temp directory used when the preferred cache directory isn't safe to own.
func fallbackCacheDir() string {
	return filepath.Join(os.TempDir(), "dotslash-"+strconv.Itoa(unix.Getuid()))
}
