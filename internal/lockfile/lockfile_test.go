package lockfile

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func TestAcquireCreatesParentDirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "locks", "0d", "fd21d5ac7f30378d523758d64d902698559d72")

	l, err := Acquire(context.Background(), path)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer l.Release()
}

func TestAcquireThenReleaseAllowsReacquire(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "artifact.lock")

	l1, err := Acquire(context.Background(), path)
	if err != nil {
		t.Fatalf("first Acquire: %v", err)
	}
	if err := l1.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}

	l2, err := Acquire(context.Background(), path)
	if err != nil {
		t.Fatalf("second Acquire: %v", err)
	}
	defer l2.Release()
}

func TestAcquireBlocksConcurrentHolder(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "artifact.lock")

	l1, err := Acquire(context.Background(), path)
	if err != nil {
		t.Fatalf("first Acquire: %v", err)
	}
	defer l1.Release()

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	if _, err := Acquire(ctx, path); err == nil {
		t.Fatal("expected second Acquire to fail while first holder is live")
	}
}

func TestReleaseOnNilLockIsNoop(t *testing.T) {
	var l *Lock
	if err := l.Release(); err != nil {
		t.Errorf("Release on nil *Lock: %v", err)
	}
}
