// Package artifact holds the small value types that make up an artifact
// entry: the artifact-relative path and the content digest.
package artifact

import (
	"fmt"
	"strings"
)

// Path is a validated artifact-relative path: forward-slash separated,
// relative, and normalized. It is a string newtype rather than a
// filepath.FromSlash conversion because the on-disk representation of a
// DotSlash file must be unambiguous across platforms: the string is always
// interpreted with '/' as the separator, regardless of GOOS.
type Path struct {
	s string
}

// NewPath validates s and returns a Path, or an error describing which
// invariant was violated.
func NewPath(s string) (Path, error) {
	if s == "" {
		return Path{}, fmt.Errorf("artifact: %w: path cannot be the empty string", ErrInvalidValue)
	}
	if i := strings.IndexByte(s, '\\'); i >= 0 {
		return Path{}, fmt.Errorf("artifact: %w: path cannot contain a backslash: %q", ErrInvalidValue, s)
	}
	if i := strings.IndexByte(s, 0); i >= 0 {
		return Path{}, fmt.Errorf("artifact: %w: path cannot contain a NUL byte: %q", ErrInvalidValue, s)
	}
	if hasDrivePrefix(s) {
		return Path{}, fmt.Errorf("artifact: %w: path cannot have a drive-prefix component: %q", ErrInvalidValue, s)
	}

	parts := strings.Split(s, "/")
	for i, part := range parts {
		switch part {
		case "":
			// Empty components happen for a leading '/', a trailing '/', or
			// "//" in the middle - all rejected.
			if len(parts) == 1 {
				return Path{}, fmt.Errorf("artifact: %w: path cannot be the empty string", ErrInvalidValue)
			}
			if i == 0 {
				return Path{}, fmt.Errorf("artifact: %w: path cannot have a root component: %q", ErrInvalidValue, s)
			}
			return Path{}, fmt.Errorf("artifact: %w: path must be relative and normalized using '/' as a separator: %q", ErrInvalidValue, s)
		case ".":
			return Path{}, fmt.Errorf("artifact: %w: path cannot contain a '.' component: %q", ErrInvalidValue, s)
		case "..":
			return Path{}, fmt.Errorf("artifact: %w: path cannot contain a '..' component: %q", ErrInvalidValue, s)
		}
	}

	// Round-trip check: the canonical form (what we'd produce by rejoining
	// the accepted components) must byte-equal the input. Given the checks
	// above this is always true, but keeping the check makes the invariant
	// explicit and catches future refactors that loosen component handling.
	if strings.Join(parts, "/") != s {
		return Path{}, fmt.Errorf("artifact: %w: path is not in normalized form: %q", ErrInvalidValue, s)
	}

	return Path{s: s}, nil
}

// hasDrivePrefix reports whether s begins with a Windows-style drive-letter
// prefix component (e.g. "C:" or "c:foo"). DotSlash file paths are always
// interpreted as forward-slash-separated UNIX-style paths regardless of the
// host platform (spec.md §3), so this is rejected uniformly rather than
// only on a Windows build.
func hasDrivePrefix(s string) bool {
	if len(s) < 2 || s[1] != ':' {
		return false
	}
	c := s[0]
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// String returns the original, validated string. It is always the exact
// bytes the Path was constructed from.
func (p Path) String() string { return p.s }

// Equal reports whether two paths are byte-equal.
func (p Path) Equal(other Path) bool { return p.s == other.s }

// MarshalText implements encoding.TextMarshaler.
func (p Path) MarshalText() ([]byte, error) { return []byte(p.s), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Path) UnmarshalText(text []byte) error {
	v, err := NewPath(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}
