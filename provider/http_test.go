package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/facebook/dotslash/artifact"
)

func TestHTTPProviderFetchSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("payload"))
	}))
	defer srv.Close()

	p := NewHTTPProvider()
	dir := t.TempDir()
	dest := filepath.Join(dir, "out")

	cfg, _ := json.Marshal(map[string]string{"url": srv.URL})
	if err := p.Fetch(context.Background(), cfg, dest, artifact.Entry{}); err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "payload" {
		t.Errorf("content = %q", data)
	}
}

func TestHTTPProviderFetchMissingURL(t *testing.T) {
	p := NewHTTPProvider()
	cfg, _ := json.Marshal(map[string]string{})
	err := p.Fetch(context.Background(), cfg, filepath.Join(t.TempDir(), "out"), artifact.Entry{})
	if err == nil {
		t.Fatal("expected error for missing url")
	}
}

func TestHTTPProviderRetriesOn503ThenSucceeds(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	p := NewHTTPProvider()
	p.MaxElapsedTime = 10 * time.Second
	dest := filepath.Join(t.TempDir(), "out")
	cfg, _ := json.Marshal(map[string]string{"url": srv.URL})

	if err := p.Fetch(context.Background(), cfg, dest, artifact.Entry{}); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if calls < 3 {
		t.Errorf("expected at least 3 attempts, got %d", calls)
	}
}

func TestHTTPProviderDoesNotRetryOn404(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	p := NewHTTPProvider()
	p.MaxElapsedTime = 3 * time.Second
	dest := filepath.Join(t.TempDir(), "out")
	cfg, _ := json.Marshal(map[string]string{"url": srv.URL})

	if err := p.Fetch(context.Background(), cfg, dest, artifact.Entry{}); err == nil {
		t.Fatal("expected error for 404")
	}
	if calls != 1 {
		t.Errorf("expected exactly 1 attempt for a permanent error, got %d", calls)
	}
}
