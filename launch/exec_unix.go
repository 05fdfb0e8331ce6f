//go:build !windows

package launch

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

// isNotADirectory reports whether err is ENOTDIR: an intermediate
// component of program's path is a regular file rather than a directory,
// which happens when an older DotSlash cache layout left a stale file
// where the current one expects a directory (spec.md §4.I step 7).
func isNotADirectory(err error) bool {
	var errno unix.Errno
	return errors.As(err, &errno) && errno == unix.ENOTDIR
}

// isExecNotFound reports whether err is ENOENT from the exec syscall
// itself. unix.Errno is syscall.Errno, which already matches
// errors.Is(err, os.ErrNotExist) for ENOENT, so this overlaps IsNotFound's
// os.ErrNotExist check; it names the exec-syscall case explicitly.
func isExecNotFound(err error) bool {
	var errno unix.Errno
	return errors.As(err, &errno) && errno == unix.ENOENT
}

// doExec replaces the current process image with program, setting argv[0]
// to argv0 and the remaining argument vector to args. On success it never
// returns - the calling process no longer exists.
//
// This calls golang.org/x/sys/unix directly rather than the standard
// library's syscall package: x/sys/unix is this module's (and the
// teacher's) POSIX syscall dependency of record, kept in sync with new
// kernel interfaces in a way the frozen stdlib syscall package no longer
// is.
func doExec(program string, args []string, argv0 string) error {
	argv := append([]string{argv0}, args...)
	return unix.Exec(program, argv, os.Environ())
}
