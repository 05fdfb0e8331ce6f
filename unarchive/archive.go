package unarchive

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	safetar "github.com/google/safearchive/tar"
	safezip "github.com/google/safearchive/zip"

	"github.com/facebook/dotslash/format"
)

// ExtractArchive decompresses (per policy.Decompressor) and extracts the
// archive at srcPath into destDir. destDir is created if it doesn't exist,
// then made absolute and has its symlinks resolved, the same way on every
// platform. No extended-length (\\?\) prefix is added to it on Windows.
//
// policy.Archive must not be format.NoArchive.
func ExtractArchive(srcPath, destDir string, policy format.Policy) error {
	if err := os.MkdirAll(destDir, 0o777); err != nil {
		return fmt.Errorf("unarchive: create destination directory %s: %w", destDir, err)
	}
	destDir, err := filepath.Abs(destDir)
	if err != nil {
		return fmt.Errorf("unarchive: resolve destination directory %s: %w", destDir, err)
	}
	if resolved, err := filepath.EvalSymlinks(destDir); err == nil {
		destDir = resolved
	}

	switch policy.Archive {
	case format.TarArchive:
		return extractTar(srcPath, destDir, policy.Decompressor)
	case format.ZipArchive:
		return extractZip(srcPath, destDir)
	default:
		return fmt.Errorf("unarchive: ExtractArchive called with no archive type")
	}
}

func extractTar(srcPath, destDir string, d format.Decompressor) error {
	f, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("unarchive: open %s: %w", srcPath, err)
	}
	defer f.Close()

	r, err := decompress(f, d)
	if err != nil {
		return err
	}
	defer r.Close()

	tr := safetar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("unarchive: read tar entry: %w", err)
		}

		target := filepath.Join(destDir, filepath.FromSlash(hdr.Name))
		switch hdr.Typeflag {
		case safetar.TypeDir:
			if err := os.MkdirAll(target, 0o777); err != nil {
				return fmt.Errorf("unarchive: create directory %s: %w", target, err)
			}
		case safetar.TypeSymlink, safetar.TypeLink:
			// Symlink/hardlink targets are not followed or recreated; the
			// safearchive reader has already dropped entries that would
			// escape destDir through one, and DotSlash artifacts have no
			// legitimate use for a link inside the cache.
			continue
		default:
			if err := os.MkdirAll(filepath.Dir(target), 0o777); err != nil {
				return fmt.Errorf("unarchive: create directory for %s: %w", target, err)
			}
			if err := writeEntry(target, tr, fs.FileMode(hdr.Mode&0o777)); err != nil {
				return err
			}
			if !hdr.ModTime.IsZero() {
				_ = os.Chtimes(target, hdr.ModTime, hdr.ModTime)
			}
		}
	}
}

func writeEntry(target string, r io.Reader, mode fs.FileMode) error {
	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("unarchive: create %s: %w", target, err)
	}
	defer out.Close()
	if _, err := io.Copy(out, r); err != nil {
		return fmt.Errorf("unarchive: write %s: %w", target, err)
	}
	return nil
}

func extractZip(srcPath, destDir string) error {
	zr, err := safezip.OpenReader(srcPath)
	if err != nil {
		return fmt.Errorf("unarchive: open zip %s: %w", srcPath, err)
	}
	defer zr.Close()

	for _, entry := range zr.File {
		target := filepath.Join(destDir, filepath.FromSlash(entry.Name))
		mode := entry.Mode()

		if mode&os.ModeSymlink != 0 {
			continue
		}
		if entry.FileInfo().IsDir() || len(entry.Name) > 0 && entry.Name[len(entry.Name)-1] == '/' {
			if err := os.MkdirAll(target, 0o777); err != nil {
				return fmt.Errorf("unarchive: create directory %s: %w", target, err)
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0o777); err != nil {
			return fmt.Errorf("unarchive: create directory for %s: %w", target, err)
		}

		rc, err := entry.Open()
		if err != nil {
			return fmt.Errorf("unarchive: open zip entry %s: %w", entry.Name, err)
		}
		err = writeEntry(target, rc, mode.Perm())
		rc.Close()
		if err != nil {
			return err
		}
	}
	return nil
}
