// Package provider implements the pluggable artifact-fetch backends that the
// fetch package drives in turn: given a provider-specific JSON config object
// from a DotSlash file's "providers" list, fetch the artifact bytes into a
// destination file.
package provider

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/facebook/dotslash/artifact"
)

// Provider fetches a single artifact as described by a provider config.
//
// Fetch should write the complete artifact to destination. The caller
// guarantees destination's parent directory already exists and, when the
// lock file could be opened, holds the per-artifact fetch lock for the
// duration of the call. entry is supplied
// only for context (e.g. expected size for a progress indicator); a Provider
// should not need anything from it beyond what's already encoded in config.
type Provider interface {
	Fetch(ctx context.Context, config json.RawMessage, destination string, entry artifact.Entry) error
}

// Factory resolves a provider config's "type" discriminator to a Provider
// implementation.
type Factory interface {
	Provider(providerType string) (Provider, error)
}

// DefaultFactory is the Factory used by the fetch package unless a caller
// substitutes its own (e.g. for testing). It recognizes "http",
// "github-release", and "s3".
type DefaultFactory struct {
	HTTP          Provider
	GitHubRelease Provider
	S3            Provider
}

// NewDefaultFactory builds a DefaultFactory with production providers: an
// HTTP client-backed provider shared by the plain-HTTP and GitHub-release
// paths, and an AWS SDK-backed S3 provider.
func NewDefaultFactory() *DefaultFactory {
	http := NewHTTPProvider()
	return &DefaultFactory{
		HTTP:          http,
		GitHubRelease: NewGitHubReleaseProvider(http),
		S3:            NewS3Provider(),
	}
}

// Provider implements Factory.
func (f *DefaultFactory) Provider(providerType string) (Provider, error) {
	switch providerType {
	case "http":
		return f.HTTP, nil
	case "github-release":
		return f.GitHubRelease, nil
	case "s3":
		return f.S3, nil
	default:
		return nil, fmt.Errorf("provider: unknown provider type %q", providerType)
	}
}
