package artifact

import (
	"errors"
	"fmt"
)

// ErrInvalidValue is wrapped by every validation error raised while
// constructing a Path, Digest, or ArtifactEntry field.
var ErrInvalidValue = errors.New("invalid value")

// Digest is a validated 64-character lowercase hex digest. Equality is byte
// equality; no attempt is made to normalize case since only lowercase is
// accepted.
type Digest struct {
	s string
}

// NewDigest validates s and returns a Digest.
func NewDigest(s string) (Digest, error) {
	if len(s) != 64 {
		return Digest{}, fmt.Errorf("artifact: %w: invalid digest length (want 64, got %d): %q", ErrInvalidValue, len(s), s)
	}
	for _, c := range s {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return Digest{}, fmt.Errorf("artifact: %w: invalid digest characters: %q", ErrInvalidValue, s)
		}
	}
	return Digest{s: s}, nil
}

// String returns the digest as its original 64-character hex string.
func (d Digest) String() string { return d.s }

// Equal reports whether two digests are byte-equal.
func (d Digest) Equal(other Digest) bool { return d.s == other.s }

// MarshalText implements encoding.TextMarshaler.
func (d Digest) MarshalText() ([]byte, error) { return []byte(d.s), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Digest) UnmarshalText(text []byte) error {
	v, err := NewDigest(string(text))
	if err != nil {
		return err
	}
	*d = v
	return nil
}
