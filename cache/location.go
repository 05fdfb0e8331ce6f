package cache

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/zeebo/blake3"

	"github.com/facebook/dotslash/artifact"
	"github.com/facebook/dotslash/format"
)

// numHashBytesForPath bounds the BLAKE3 digest used to derive a cache key to
// keep $DOTSLASH_CACHE paths short enough to stay under MAX_PATH on
// Windows. The collision risk at 20 bytes (160 bits) is negligible for this
// use case.
const numHashBytesForPath = 20

// Location is the set of paths derived from an artifact entry: where its
// unpacked contents live, where its executable is, and where its advisory
// lock file is. All three are absolute paths rooted at the owning Cache.
type Location struct {
	ArtifactDirectory string
	Executable        string
	LockPath          string
}

// DetermineLocation computes where entry's artifact lives in c.
//
// The location is a function of the artifact's content identity (size,
// hash algorithm, digest), its format, its readonly flag, and - for
// single-file formats only - its path. It is deliberately independent of
// which provider fetched the bytes.
func DetermineLocation(entry artifact.Entry, c Cache) Location {
	key := artifactKey(entry)
	prefix, rest := key[:2], key[2:]

	artifactDirectory := filepath.Join(c.ArtifactsDir(), prefix, rest)
	executable := filepath.Join(artifactDirectory, filepath.FromSlash(entry.Path.String()))
	lockPath := filepath.Join(c.LocksDir(prefix), rest)

	return Location{
		ArtifactDirectory: artifactDirectory,
		Executable:        executable,
		LockPath:          lockPath,
	}
}

// identityFields are the canonical per-entry identity tuple, joined by a
// single NUL byte between each consecutive pair before hashing.
func identityFields(entry artifact.Entry) []string {
	readonly := "0"
	if entry.IsReadonly() {
		readonly = "1"
	}
	return []string{
		strconv.FormatUint(entry.Size, 10),
		entry.Hash.String(),
		entry.Digest.String(),
		formatKey(entry.Format, entry.Path),
		readonly,
	}
}

func artifactKey(entry artifact.Entry) string {
	h := blake3.New()
	for i, field := range identityFields(entry) {
		if i > 0 {
			h.Write([]byte{0})
		}
		h.Write([]byte(field))
	}

	sum := h.Sum(nil)[:numHashBytesForPath]
	return fmt.Sprintf("%x", sum)
}

// formatKey returns the format component of the cache key identity tuple.
// Archive formats use their literal tag; single-file formats fold the
// artifact path into the key (prefixed to avoid colliding with an archive
// tag of the same text), since for those formats the file name is part of
// what's being cached.
func formatKey(f format.Format, path artifact.Path) string {
	policy := format.ExtractionPolicy(f)
	if policy.Archive != format.NoArchive {
		return f.String()
	}
	switch policy.Decompressor {
	case format.GzipDecompressor:
		return "file.gz:" + path.String()
	case format.XzDecompressor:
		return "file.xz:" + path.String()
	case format.ZstdDecompressor:
		return "file.zst:" + path.String()
	default:
		return "file:" + path.String()
	}
}
