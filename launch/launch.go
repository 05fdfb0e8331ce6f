// Package launch implements the exec hand-off (spec.md §4.I): attempt to
// run a DotSlash file's cached artifact directly; if that fails because the
// artifact is missing from the cache, fetch it and retry exactly once.
package launch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/facebook/dotslash/artifact"
	"github.com/facebook/dotslash/cache"
	"github.com/facebook/dotslash/fetch"
	"github.com/facebook/dotslash/locate"
	"github.com/facebook/dotslash/provider"
)

var tracer = otel.Tracer("github.com/facebook/dotslash/launch")

// execFn is a seam over doExec so tests can observe the hand-off logic
// (argv0 selection, NotFound classification, fetch-then-retry) without
// actually replacing the test binary's process image.
var execFn = doExec

// ErrExecFailure is wrapped by the error Run returns when an exec attempt
// fails and Run gives up: a first attempt that fails for a reason other than
// NotFound, or a failed retry after a fetch. An error from the fetch itself
// does not wrap it.
var ErrExecFailure = errors.New("exec failure")

// Arg0 resolves what argv[0] the child process should see.
//
// On Windows this is always executable, regardless of policy: the OS has
// no notion of a process overriding its own argv[0], and CreateProcess
// always reports the program path it was given.
func Arg0(policy artifact.Arg0Policy, dotslashFile, executable string) string {
	if runtime.GOOS == "windows" {
		return executable
	}
	if policy == artifact.Underlying {
		return executable
	}
	return dotslashFile
}

// IsNotFound reports whether err (as returned by a failed exec attempt)
// indicates the target executable itself is missing, as opposed to some
// other launch failure (permission denied, bad interpreter, I/O error).
//
// This is true for the standard "no such file" case on every platform, and
// - POSIX only - also true when an intermediate path component turns out to
// be a regular file rather than a directory, which happens when an older
// DotSlash cache layout left a stale file where the current layout expects
// a directory.
func IsNotFound(err error) bool {
	return errors.Is(err, os.ErrNotExist) || isNotADirectory(err) || isExecNotFound(err)
}

// Run resolves dotslashPath's entry from raw, execs its cached executable
// forwarding args, and - if the exec fails because the artifact is missing
// - fetches it via factory and retries exactly once.
//
// On success, Run never returns: the process has been replaced (POSIX) or
// has exited with the child's code (Windows). It only returns when every
// remedy has failed.
func Run(ctx context.Context, dotslashPath string, raw []byte, args []string, c cache.Cache, factory provider.Factory) error {
	ctx, span := tracer.Start(ctx, "launch.Run")
	span.SetAttributes(attribute.String("dotslash.file", dotslashPath))
	var err error
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	result, locErr := locate.Locate(raw, c)
	if locErr != nil {
		err = locErr
		return err
	}

	argv0 := Arg0(result.Entry.Arg0, dotslashPath, result.Location.Executable)
	logger := slog.With("dotslash_file", dotslashPath, "executable", result.Location.Executable)

	execErr := execFn(result.Location.Executable, args, argv0)
	if execErr == nil {
		return nil
	}
	if !IsNotFound(execErr) {
		err = fmt.Errorf("%w: run %s: %w", ErrExecFailure, result.Location.Executable, execErr)
		return err
	}

	logger.InfoContext(ctx, "artifact missing from cache, fetching", "error", execErr)
	if fetchErr := fetch.Download(ctx, result.Entry, result.Location, factory); fetchErr != nil {
		err = fmt.Errorf("failed to fetch artifact for %s: %w", dotslashPath, fetchErr)
		return err
	}

	execErr = execFn(result.Location.Executable, args, argv0)
	if execErr == nil {
		return nil
	}
	err = diagnose(result.Location.Executable, execErr)
	return err
}

// diagnose turns a post-fetch exec failure into a context-rich message,
// distinguishing "still not found" from "exists but can't be executed
// (likely a bad shebang interpreter)" from anything else.
func diagnose(executable string, execErr error) error {
	if IsNotFound(execErr) {
		return fmt.Errorf("%w: %s still not found in cache after fetch: %w", ErrExecFailure, executable, execErr)
	}
	if info, statErr := os.Stat(executable); statErr == nil && !info.IsDir() {
		return fmt.Errorf("%w: %s exists but could not be executed (check its shebang interpreter): %w", ErrExecFailure, executable, execErr)
	}
	return fmt.Errorf("%w: %s: %w", ErrExecFailure, executable, execErr)
}
