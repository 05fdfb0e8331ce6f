// Package lockfile implements the advisory, cross-process exclusive lock
// taken on an artifact while it's being fetched. The lock is best-effort:
// callers fall back to proceeding unlocked rather than failing outright,
// since a missed or lost lock only risks redundant work, never corruption
// (the final publish step is itself safe to race - see fsutil.MoveNoClobber's
// no-clobber rename).
package lockfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// pollInterval is how often TryLockContext re-attempts the lock while
// waiting for ctx to expire or the holder to release it.
const pollInterval = 50 * time.Millisecond

// Lock is a held advisory lock on a single file. The zero value is not
// usable; construct one with Acquire.
type Lock struct {
	fl *flock.Flock
}

// Acquire creates path's parent directory if needed, then blocks until an
// exclusive lock on path is obtained or ctx is done.
//
// Acquire distinguishes two kinds of failure, per the orchestrator's
// best-effort locking policy:
//   - If the lock directory can't be created, or the lock file itself can't
//     be opened, Acquire returns (nil, nil): the caller should proceed
//     without a lock rather than fail the fetch over an unwritable lock
//     shard.
//   - If the lock file opens fine but the platform locking call itself
//     fails, or ctx expires while waiting for a concurrent holder to
//     release, Acquire returns a non-nil error: this is treated as fatal,
//     since it suggests the cache itself is unusable rather than merely
//     uncontended.
func Acquire(ctx context.Context, path string) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o777); err != nil {
		return nil, nil
	}

	// Probe openability separately from locking so an unwritable lock file
	// degrades to "proceed without a lock" instead of a fatal error; only a
	// failure of the locking call itself (below) is fatal.
	probe, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o666)
	if err != nil {
		return nil, nil
	}
	probe.Close()

	fl := flock.New(path)
	locked, err := fl.TryLockContext(ctx, pollInterval)
	if err != nil {
		return nil, fmt.Errorf("lockfile: acquire %s: %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("lockfile: acquire %s: %w", path, ctx.Err())
	}
	return &Lock{fl: fl}, nil
}

// Release unlocks the file. It is safe to call on a nil *Lock (a no-op),
// which is what a caller holds after a failed best-effort Acquire.
func (l *Lock) Release() error {
	if l == nil || l.fl == nil {
		return nil
	}
	return l.fl.Unlock()
}
