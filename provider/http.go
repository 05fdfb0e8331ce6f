package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/facebook/dotslash/artifact"
)

// httpProviderConfig is the "http" provider's config object.
type httpProviderConfig struct {
	URL string `json:"url"`
}

// HTTPProvider fetches an artifact with a plain GET request.
//
// The Rust original shells out to curl; here the fetch is a
// *http.Client request retried with github.com/cenkalti/backoff/v5,
// which is the idiomatic Go replacement for curl's own retry/backoff
// handling of transient failures and HTTP 429/5xx responses.
type HTTPProvider struct {
	Client *http.Client

	// MaxElapsedTime bounds the whole retry loop, not any single attempt.
	MaxElapsedTime time.Duration
}

// NewHTTPProvider returns an HTTPProvider using a client with no built-in
// timeout (the backoff loop and request context govern how long a fetch may
// run) and a five-minute overall retry budget.
func NewHTTPProvider() *HTTPProvider {
	return &HTTPProvider{
		Client:         &http.Client{},
		MaxElapsedTime: 5 * time.Minute,
	}
}

// Fetch implements Provider.
func (p *HTTPProvider) Fetch(ctx context.Context, config json.RawMessage, destination string, entry artifact.Entry) error {
	var cfg httpProviderConfig
	if err := json.Unmarshal(config, &cfg); err != nil {
		return fmt.Errorf("provider: http: decode config: %w", err)
	}
	if cfg.URL == "" {
		return fmt.Errorf("provider: http: config missing \"url\"")
	}
	return p.fetchURL(ctx, cfg.URL, destination)
}

func (p *HTTPProvider) fetchURL(ctx context.Context, url, destination string) error {
	operation := func() (struct{}, error) {
		if err := p.attempt(ctx, url, destination); err != nil {
			if isPermanentHTTPError(err) {
				return struct{}{}, backoff.Permanent(err)
			}
			return struct{}{}, err
		}
		return struct{}{}, nil
	}

	b := backoff.NewExponentialBackOff()
	_, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(b),
		backoff.WithMaxElapsedTime(p.MaxElapsedTime),
	)
	if err != nil {
		return fmt.Errorf("failed to fetch `%s`: %w", url, err)
	}
	return nil
}

// httpStatusError wraps a non-2xx response so isPermanentHTTPError can
// distinguish a client error (bad URL, 404, 403) from a transient one worth
// retrying (429, 5xx).
type httpStatusError struct {
	StatusCode int
	Status     string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("unexpected status: %s", e.Status)
}

func isPermanentHTTPError(err error) bool {
	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		if statusErr.StatusCode == http.StatusTooManyRequests || statusErr.StatusCode >= 500 {
			return false
		}
		return true
	}
	return false
}

func (p *HTTPProvider) attempt(ctx context.Context, url, destination string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return backoff.Permanent(fmt.Errorf("build request: %w", err))
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return &httpStatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	out, err := os.Create(destination)
	if err != nil {
		return backoff.Permanent(fmt.Errorf("create %s: %w", destination, err))
	}
	_, copyErr := io.Copy(out, resp.Body)
	closeErr := out.Close()
	if copyErr != nil {
		return fmt.Errorf("write %s: %w", destination, copyErr)
	}
	if closeErr != nil {
		return fmt.Errorf("close %s: %w", destination, closeErr)
	}
	return nil
}
