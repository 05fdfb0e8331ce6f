package artifact

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/facebook/dotslash/format"
)

// HashAlgorithm selects the hash function used to verify a fetched artifact.
type HashAlgorithm int

const (
	// Blake3 selects BLAKE3, the recommended algorithm for new entries.
	Blake3 HashAlgorithm = iota
	// SHA256 selects SHA-256, kept for compatibility with older entries.
	SHA256
)

// String returns the wire representation of the algorithm.
func (h HashAlgorithm) String() string {
	switch h {
	case Blake3:
		return "blake3"
	case SHA256:
		return "sha256"
	default:
		return "unknown"
	}
}

// MarshalJSON implements json.Marshaler.
func (h HashAlgorithm) MarshalJSON() ([]byte, error) { return json.Marshal(h.String()) }

// UnmarshalJSON implements json.Unmarshaler.
func (h *HashAlgorithm) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "blake3":
		*h = Blake3
	case "sha256":
		*h = SHA256
	default:
		return fmt.Errorf("artifact: %w: unknown hash algorithm %q", ErrInvalidValue, s)
	}
	return nil
}

// Arg0Policy determines what argv[0] is set to for the underlying executable.
// It has no effect on Windows, where the behavior is always Underlying.
type Arg0Policy int

const (
	// DotslashFile sets argv[0] to the DotSlash file path the user invoked.
	DotslashFile Arg0Policy = iota
	// Underlying leaves argv[0] unset, so it defaults to the path of the
	// cached executable.
	Underlying
)

// MarshalJSON implements json.Marshaler.
func (a Arg0Policy) MarshalJSON() ([]byte, error) {
	switch a {
	case DotslashFile:
		return json.Marshal("dotslash-file")
	case Underlying:
		return json.Marshal("underlying-executable")
	default:
		return nil, fmt.Errorf("artifact: unknown arg0 policy %d", a)
	}
}

// UnmarshalJSON implements json.Unmarshaler.
func (a *Arg0Policy) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "", "dotslash-file":
		*a = DotslashFile
	case "underlying-executable":
		*a = Underlying
	default:
		return fmt.Errorf("artifact: %w: unknown arg0 policy %q", ErrInvalidValue, s)
	}
	return nil
}

// ProvidersOrder determines how the ordered list of providers is walked.
type ProvidersOrder int

const (
	// Sequential tries providers strictly in file order. This is the default.
	Sequential ProvidersOrder = iota
	// WeightedRandom picks a starting provider by weighted sampling over each
	// provider config's "weight" field, then falls through the rest in their
	// original relative order.
	WeightedRandom
)

// UnmarshalJSON implements json.Unmarshaler.
func (o *ProvidersOrder) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "", "sequential":
		*o = Sequential
	case "weighted-random":
		*o = WeightedRandom
	default:
		return fmt.Errorf("artifact: %w: unknown providers_order %q", ErrInvalidValue, s)
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (o ProvidersOrder) MarshalJSON() ([]byte, error) {
	if o == WeightedRandom {
		return json.Marshal("weighted-random")
	}
	return json.Marshal("sequential")
}

// ProviderConfig is one entry of an ArtifactEntry's providers list: an
// opaque, provider-specific JSON object that always carries a "type"
// discriminator (defaulting to "http" when absent) and, for
// providers_order=weighted-random, an optional non-zero integer "weight".
type ProviderConfig struct {
	raw json.RawMessage
}

// NewProviderConfig wraps an already-decoded JSON object.
func NewProviderConfig(raw json.RawMessage) ProviderConfig { return ProviderConfig{raw: raw} }

// Raw returns the underlying JSON object bytes.
func (p ProviderConfig) Raw() json.RawMessage { return p.raw }

// Type returns the provider's "type" discriminator, defaulting to "http".
func (p ProviderConfig) Type() (string, error) {
	var header struct {
		Type string `json:"type"`
	}
	if len(p.raw) == 0 {
		return DefaultProviderType, nil
	}
	if err := json.Unmarshal(p.raw, &header); err != nil {
		return "", fmt.Errorf("artifact: provider config: %w", err)
	}
	if header.Type == "" {
		return DefaultProviderType, nil
	}
	return header.Type, nil
}

// Weight returns the provider's "weight" field, or 0 if absent.
func (p ProviderConfig) Weight() (int, error) {
	var header struct {
		Weight int `json:"weight"`
	}
	if len(p.raw) == 0 {
		return 0, nil
	}
	if err := json.Unmarshal(p.raw, &header); err != nil {
		return 0, fmt.Errorf("artifact: provider config: %w", err)
	}
	return header.Weight, nil
}

func (p ProviderConfig) MarshalJSON() ([]byte, error) {
	if len(p.raw) == 0 {
		return []byte("{}"), nil
	}
	return p.raw, nil
}

func (p *ProviderConfig) UnmarshalJSON(data []byte) error {
	p.raw = append(p.raw[:0], data...)
	return nil
}

// Equal reports whether p and other hold byte-identical raw JSON. It lets
// github.com/google/go-cmp compare values containing a ProviderConfig
// without panicking on its unexported field.
func (p ProviderConfig) Equal(other ProviderConfig) bool {
	return bytes.Equal(p.raw, other.raw)
}

// DefaultProviderType is used for a provider config whose "type" field is
// absent.
const DefaultProviderType = "http"

// Entry is a single platform's record from a DotSlash file.
type Entry struct {
	Size           uint64           `json:"size"`
	Hash           HashAlgorithm    `json:"hash"`
	Digest         Digest           `json:"digest"`
	Format         format.Format    `json:"format"`
	Path           Path             `json:"path"`
	Providers      []ProviderConfig `json:"providers"`
	ProvidersOrder ProvidersOrder   `json:"providers_order"`
	Arg0           Arg0Policy       `json:"arg0"`
	Readonly       *bool            `json:"readonly"`
}

// IsReadonly reports the effective readonly setting, defaulting to true when
// the field was absent from the DotSlash file.
func (e Entry) IsReadonly() bool {
	if e.Readonly == nil {
		return true
	}
	return *e.Readonly
}

// Validate checks structural invariants that aren't already enforced by
// UnmarshalJSON (non-empty providers list).
func (e Entry) Validate() error {
	if len(e.Providers) == 0 {
		return fmt.Errorf("artifact: %w: providers list must not be empty", ErrInvalidValue)
	}
	return nil
}
