package cache

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/facebook/dotslash/artifact"
	"github.com/facebook/dotslash/format"
)

func mustPath(t *testing.T, s string) artifact.Path {
	t.Helper()
	p, err := artifact.NewPath(s)
	if err != nil {
		t.Fatalf("NewPath(%q): %v", s, err)
	}
	return p
}

func mustDigest(t *testing.T, s string) artifact.Digest {
	t.Helper()
	d, err := artifact.NewDigest(s)
	if err != nil {
		t.Fatalf("NewDigest(%q): %v", s, err)
	}
	return d
}

func mustHash(t *testing.T, tag string) artifact.HashAlgorithm {
	t.Helper()
	var h artifact.HashAlgorithm
	if err := json.Unmarshal([]byte(`"`+tag+`"`), &h); err != nil {
		t.Fatalf("unmarshal hash %q: %v", tag, err)
	}
	return h
}

const testDigest = "7f83b1657ff1fc53b92dc18148a1d65dfc2d4b1fa3d677284addd200126d9069"

func TestDetermineLocationRenameCase(t *testing.T) {
	c := NewAt("/cache")
	entry := artifact.Entry{
		Size:   381654729,
		Hash:   mustHash(t, "sha256"),
		Digest: mustDigest(t, testDigest),
		Format: format.Plain,
		Path:   mustPath(t, "minesweeper.exe"),
	}

	loc := DetermineLocation(entry, c)

	wantDir := filepath.Join("/cache", "0d", "fd21d5ac7f30378d523758d64d902698559d72")
	if loc.ArtifactDirectory != wantDir {
		t.Errorf("ArtifactDirectory = %q, want %q", loc.ArtifactDirectory, wantDir)
	}
	wantExe := filepath.Join(wantDir, "minesweeper.exe")
	if loc.Executable != wantExe {
		t.Errorf("Executable = %q, want %q", loc.Executable, wantExe)
	}
	wantLock := filepath.Join("/cache", "locks", "0d", "fd21d5ac7f30378d523758d64d902698559d72")
	if loc.LockPath != wantLock {
		t.Errorf("LockPath = %q, want %q", loc.LockPath, wantLock)
	}
}

func TestDetermineLocationExtractCase(t *testing.T) {
	c := NewAt("/cache")
	entry := artifact.Entry{
		Size:   8675309,
		Hash:   mustHash(t, "blake3"),
		Digest: mustDigest(t, testDigest),
		Format: format.TarGz,
		Path:   mustPath(t, "bin/sapling"),
	}

	loc := DetermineLocation(entry, c)

	wantDir := filepath.Join("/cache", "0c", "7cc25be015e0ab6855aaa7bfea49d5dffe5e4c")
	if loc.ArtifactDirectory != wantDir {
		t.Errorf("ArtifactDirectory = %q, want %q", loc.ArtifactDirectory, wantDir)
	}
	wantExe := filepath.Join(wantDir, "bin", "sapling")
	if loc.Executable != wantExe {
		t.Errorf("Executable = %q, want %q", loc.Executable, wantExe)
	}
}

func TestDetermineLocationReadonlyAffectsKey(t *testing.T) {
	c := NewAt("/cache")
	entryRO := artifact.Entry{
		Size:   1,
		Hash:   mustHash(t, "blake3"),
		Digest: mustDigest(t, testDigest),
		Format: format.Plain,
		Path:   mustPath(t, "a"),
	}
	readonlyFalse := false
	entryRW := entryRO
	entryRW.Readonly = &readonlyFalse

	a := DetermineLocation(entryRO, c)
	b := DetermineLocation(entryRW, c)
	if a.ArtifactDirectory == b.ArtifactDirectory {
		t.Error("expected readonly flag to change the artifact key")
	}
}

func TestDetermineLocationPathAffectsKeyOnlyForSingleFile(t *testing.T) {
	c := NewAt("/cache")
	base := artifact.Entry{
		Size:   1,
		Hash:   mustHash(t, "blake3"),
		Digest: mustDigest(t, testDigest),
		Format: format.Plain,
	}
	a := base
	a.Path = mustPath(t, "one")
	b := base
	b.Path = mustPath(t, "two")
	if DetermineLocation(a, c).ArtifactDirectory == DetermineLocation(b, c).ArtifactDirectory {
		t.Error("expected path to affect the cache key for a single-file format")
	}

	base.Format = format.TarGz
	a = base
	a.Path = mustPath(t, "one")
	b = base
	b.Path = mustPath(t, "two")
	if DetermineLocation(a, c).ArtifactDirectory != DetermineLocation(b, c).ArtifactDirectory {
		t.Error("expected path not to affect the cache key for an archive format")
	}
}
