// Package unarchive implements the decode pipeline that turns a fetched,
// still-possibly-compressed artifact into its final on-disk form: either a
// single decompressed file, or the extracted contents of a tar/zip archive.
//
// Archive extraction goes through github.com/google/safearchive's tar/zip
// wrappers so that a maliciously crafted archive can't write outside the
// destination directory via ".." path components or symlink traversal.
package unarchive

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"

	"github.com/facebook/dotslash/format"
)

// decompress wraps r with the streaming decompressor named by d. For
// format.NoDecompressor it returns r unchanged, wrapped so Close is always
// safe to call.
func decompress(r io.Reader, d format.Decompressor) (io.ReadCloser, error) {
	switch d {
	case format.NoDecompressor:
		return io.NopCloser(r), nil
	case format.GzipDecompressor:
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("unarchive: open gzip stream: %w", err)
		}
		return gz, nil
	case format.XzDecompressor:
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("unarchive: open xz stream: %w", err)
		}
		return io.NopCloser(xr), nil
	case format.ZstdDecompressor:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("unarchive: open zstd stream: %w", err)
		}
		return zstdCloser{zr}, nil
	default:
		return nil, fmt.Errorf("unarchive: unhandled decompressor %d", d)
	}
}

// zstdCloser adapts *zstd.Decoder's no-return-value Close to io.Closer.
type zstdCloser struct{ *zstd.Decoder }

func (z zstdCloser) Close() error {
	z.Decoder.Close()
	return nil
}
