package fetch

import (
	"crypto/sha256"
	"fmt"
	"hash"
	"io"
	"os"

	"github.com/zeebo/blake3"

	"github.com/facebook/dotslash/artifact"
)

// verify opens path and checks its size and digest against entry, per
// entry.Hash. It hashes the whole file in one streaming pass rather than
// reading it twice.
func verify(path string, entry artifact.Entry) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open fetched artifact %s: %w", path, err)
	}
	defer f.Close()

	var h hash.Hash
	switch entry.Hash {
	case artifact.Blake3:
		h = blake3.New()
	case artifact.SHA256:
		h = sha256.New()
	default:
		return fmt.Errorf("verify: unhandled hash algorithm %v", entry.Hash)
	}

	size, err := io.Copy(h, f)
	if err != nil {
		return fmt.Errorf("calculate digest for fetched artifact %s: %w", path, err)
	}

	if uint64(size) != entry.Size {
		return fmt.Errorf("fetched artifact %s has incorrect size: %d bytes vs expected %d bytes", path, size, entry.Size)
	}

	got := fmt.Sprintf("%x", h.Sum(nil))
	want := entry.Digest.String()
	if got != want {
		return fmt.Errorf("fetched artifact %s has incorrect digest: %s vs expected %s", path, got, want)
	}
	return nil
}
