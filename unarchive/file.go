package unarchive

import (
	"fmt"
	"io"
	"os"

	"github.com/facebook/dotslash/format"
	"github.com/facebook/dotslash/internal/fsutil"
)

// DecodeFile produces destPath from srcPath according to d:
//   - format.NoDecompressor: renames srcPath to destPath directly.
//   - otherwise: streams srcPath through the matching decompressor into a
//     newly created destPath; srcPath is left in place.
//
// destPath's parent directory must already exist. On return, destPath has
// its executable bit set per fsutil.Chmodx's preserve-existing-bits policy.
func DecodeFile(srcPath, destPath string, d format.Decompressor) error {
	if d == format.NoDecompressor {
		if err := os.Rename(srcPath, destPath); err != nil {
			return fmt.Errorf("unarchive: rename %s to %s: %w", srcPath, destPath, err)
		}
		return fsutil.Chmodx(destPath)
	}

	in, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("unarchive: open %s: %w", srcPath, err)
	}
	defer in.Close()

	r, err := decompress(in, d)
	if err != nil {
		return err
	}
	defer r.Close()

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("unarchive: create %s: %w", destPath, err)
	}
	_, copyErr := io.Copy(out, r)
	closeErr := out.Close()
	if copyErr != nil {
		return fmt.Errorf("unarchive: write %s: %w", destPath, copyErr)
	}
	if closeErr != nil {
		return fmt.Errorf("unarchive: close %s: %w", destPath, closeErr)
	}

	return fsutil.Chmodx(destPath)
}
