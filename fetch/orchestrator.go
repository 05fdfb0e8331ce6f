// Package fetch implements the download orchestrator: given an artifact
// entry and its cache location, it walks the entry's providers in order,
// verifies whatever bytes a provider produces, unpacks them into a staging
// directory, and atomically publishes that staging directory into the
// cache.
package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/facebook/dotslash/artifact"
	"github.com/facebook/dotslash/cache"
	"github.com/facebook/dotslash/format"
	"github.com/facebook/dotslash/internal/fsutil"
	"github.com/facebook/dotslash/internal/lockfile"
	"github.com/facebook/dotslash/provider"
	"github.com/facebook/dotslash/unarchive"
)

var tracer = otel.Tracer("github.com/facebook/dotslash/fetch")

// sealedDirMode is applied to an artifact directory after publication when
// the entry is readonly. fsutil.MakeTreeEntriesReadOnly only clears the write
// bits of the entries underneath it; the top-level directory is instead set
// to this fixed mode, which has no write bits and keeps it listable.
const sealedDirMode = 0o555

// Download ensures loc.Executable exists and is ready to run, fetching and
// unpacking entry's artifact via its providers if it doesn't already.
//
// It returns nil as soon as the artifact directory exists, whether this
// call populated it or a concurrent launcher already had. If every provider
// fails, the returned error wraps ErrNoProviderSucceeded and its message
// concatenates every provider's failure in order, per the DotSlash file
// format's provider-fallback contract.
func Download(ctx context.Context, entry artifact.Entry, loc cache.Location, factory provider.Factory) (err error) {
	ctx, span := tracer.Start(ctx, "fetch.Download")
	span.SetAttributes(attribute.String("dotslash.artifact_directory", loc.ArtifactDirectory))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()
	}()

	logger := slog.With("artifact_directory", loc.ArtifactDirectory)

	if _, statErr := os.Stat(loc.ArtifactDirectory); statErr == nil {
		logger.DebugContext(ctx, "artifact already present")
		return nil
	}

	parent := filepath.Dir(loc.ArtifactDirectory)
	if err := os.MkdirAll(parent, 0o777); err != nil {
		return fmt.Errorf("fetch: create cache directory %s: %w", parent, err)
	}

	lock, err := lockfile.Acquire(ctx, loc.LockPath)
	if err != nil {
		return fmt.Errorf("fetch: acquire lock: %w", err)
	}
	defer lock.Release()

	// Another launcher may have published while we waited for the lock.
	if _, statErr := os.Stat(loc.ArtifactDirectory); statErr == nil {
		logger.DebugContext(ctx, "artifact published by concurrent launcher")
		return nil
	}

	order, err := providerOrder(entry.Providers, entry.ProvidersOrder, rand.New(rand.NewSource(time.Now().UnixNano())))
	if err != nil {
		return fmt.Errorf("fetch: determine provider order: %w", err)
	}

	var warnings []string
	for _, i := range order {
		cfg := entry.Providers[i]
		if err := attempt(ctx, cfg, entry, loc, parent, factory, logger); err != nil {
			logger.WarnContext(ctx, "provider attempt failed", "error", err)
			warnings = append(warnings, err.Error())
			continue
		}
		return nil
	}

	return fmt.Errorf("%w: %s", ErrNoProviderSucceeded, strings.Join(warnings, "; "))
}

// attempt runs one provider config end-to-end: fetch, verify, unpack, seal,
// publish. A non-nil error here is always recoverable - the caller tries
// the next provider.
func attempt(ctx context.Context, cfg artifact.ProviderConfig, entry artifact.Entry, loc cache.Location, parent string, factory provider.Factory, logger *slog.Logger) error {
	providerType, err := cfg.Type()
	if err != nil {
		return fmt.Errorf("failed to fetch artifact: %w", err)
	}
	p, err := factory.Provider(providerType)
	if err != nil {
		return fmt.Errorf("failed to fetch artifact: %w", err)
	}

	stage, err := os.MkdirTemp(parent, "stage-")
	if err != nil {
		return fmt.Errorf("fetch: create stage directory: %w", err)
	}
	defer os.RemoveAll(stage)

	dl, err := uniquePath(parent, "dl-")
	if err != nil {
		return fmt.Errorf("fetch: allocate download path: %w", err)
	}
	defer os.Remove(dl)

	logger.DebugContext(ctx, "fetching artifact", "provider_type", providerType)
	if err := p.Fetch(ctx, cfg.Raw(), dl, entry); err != nil {
		return fmt.Errorf("failed to fetch artifact: %w", err)
	}

	if err := verify(dl, entry); err != nil {
		return fmt.Errorf("failed to fetch artifact: %w", err)
	}

	if err := unpack(dl, stage, entry); err != nil {
		return fmt.Errorf("fetch: unpack artifact: %w", err)
	}

	if entry.IsReadonly() {
		if err := fsutil.MakeTreeEntriesReadOnly(stage); err != nil {
			return fmt.Errorf("fetch: seal staged artifact: %w", err)
		}
	}

	if err := fsutil.MoveNoClobber(stage, loc.ArtifactDirectory); err != nil {
		return fmt.Errorf("fetch: publish artifact: %w", err)
	}

	if entry.IsReadonly() {
		// Sealing the top-level directory must happen after the rename:
		// some platforms refuse to rename a read-only directory. A failure
		// here doesn't undo the publish that already succeeded.
		if err := os.Chmod(loc.ArtifactDirectory, sealedDirMode); err != nil {
			logger.WarnContext(ctx, "failed to seal artifact directory", "error", err)
		}
	}

	return nil
}

// unpack decodes dl (the raw fetched bytes) into stage according to entry's
// format: an archive is extracted directly into stage; a single file is
// placed at entry.Path underneath it.
func unpack(dl, stage string, entry artifact.Entry) error {
	policy := format.ExtractionPolicy(entry.Format)
	if format.IsContainer(entry.Format) {
		return unarchive.ExtractArchive(dl, stage, policy)
	}

	final := filepath.Join(stage, filepath.FromSlash(entry.Path.String()))
	if err := os.MkdirAll(filepath.Dir(final), 0o777); err != nil {
		return fmt.Errorf("create parent directory for %s: %w", final, err)
	}
	return unarchive.DecodeFile(dl, final, policy.Decompressor)
}

// uniquePath reserves a unique path under dir (removing the placeholder
// file it creates to do so) for a caller that wants to hand an empty,
// known-unique path to something else that will create it - here, a
// Provider's destination file.
func uniquePath(dir, prefix string) (string, error) {
	f, err := os.CreateTemp(dir, prefix+"*")
	if err != nil {
		return "", err
	}
	name := f.Name()
	f.Close()
	if err := os.Remove(name); err != nil {
		return "", err
	}
	return name, nil
}
