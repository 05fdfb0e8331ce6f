package fsutil

import (
	"os"
	"path/filepath"
)

// MakeTreeEntriesReadOnly recursively clears the write bit on every entry
// inside dir - but not on dir itself, so it can still be renamed into place
// by the caller afterward. Symlinks are left untouched and not followed.
func MakeTreeEntriesReadOnly(dir string) error {
	return walkTreeEntries(dir, func(path string, mode os.FileMode) os.FileMode {
		return mode &^ 0o222
	})
}

// MakeTreeEntriesWritable recursively sets the owner write bit on every entry
// inside dir, but not on dir itself. It undoes MakeTreeEntriesReadOnly for the
// owner only: group and other write bits are not restored.
func MakeTreeEntriesWritable(dir string) error {
	return walkTreeEntries(dir, func(path string, mode os.FileMode) os.FileMode {
		return mode | 0o200
	})
}

func walkTreeEntries(dir string, adjust func(path string, mode os.FileMode) os.FileMode) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		info, err := os.Lstat(path)
		if err != nil {
			return err
		}
		if info.Mode()&os.ModeSymlink != 0 {
			continue
		}
		if info.IsDir() {
			if err := walkTreeEntries(path, adjust); err != nil {
				return err
			}
		}
		if err := os.Chmod(path, adjust(path, info.Mode())); err != nil {
			return err
		}
	}
	return nil
}
