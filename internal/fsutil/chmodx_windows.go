//go:build windows

package fsutil

// Chmodx is a no-op on Windows, which has no execute-bit concept; a file's
// executability there is determined by its extension and PATHEXT.
func Chmodx(path string) error { return nil }
