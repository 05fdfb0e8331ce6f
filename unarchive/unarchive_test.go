package unarchive

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/facebook/dotslash/format"
)

func buildTar(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	for name, content := range files {
		hdr := &tar.Header{
			Name:    name,
			Mode:    0o644,
			Size:    int64(len(content)),
			ModTime: time.Unix(1700000000, 0),
		}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("WriteHeader(%s): %v", name, err)
		}
		if _, err := tw.Write([]byte(content)); err != nil {
			t.Fatalf("Write(%s): %v", name, err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("tar Close: %v", err)
	}
	return buf.Bytes()
}

func gzipBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	if _, err := gw.Write(data); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := gw.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
	return buf.Bytes()
}

func TestExtractArchiveTar(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "archive.tar")
	if err := os.WriteFile(src, buildTar(t, map[string]string{
		"bin/sapling":   "#!/bin/sh\necho hi\n",
		"share/doc.txt": "hello",
	}), 0o644); err != nil {
		t.Fatal(err)
	}

	dest := filepath.Join(dir, "dest")
	if err := ExtractArchive(src, dest, format.ExtractionPolicy(format.Tar)); err != nil {
		t.Fatalf("ExtractArchive: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dest, "bin", "sapling"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "#!/bin/sh\necho hi\n" {
		t.Errorf("content = %q", data)
	}
}

func TestExtractArchiveTarGz(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "archive.tar.gz")
	tarBytes := buildTar(t, map[string]string{"a/b": "content"})
	if err := os.WriteFile(src, gzipBytes(t, tarBytes), 0o644); err != nil {
		t.Fatal(err)
	}

	dest := filepath.Join(dir, "dest")
	if err := ExtractArchive(src, dest, format.ExtractionPolicy(format.TarGz)); err != nil {
		t.Fatalf("ExtractArchive: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dest, "a", "b"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "content" {
		t.Errorf("content = %q", data)
	}
}

func TestExtractArchiveTarRejectsTraversal(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "evil.tar")
	if err := os.WriteFile(src, buildTar(t, map[string]string{
		"../../etc/passwd": "pwned",
	}), 0o644); err != nil {
		t.Fatal(err)
	}

	dest := filepath.Join(dir, "dest")
	if err := ExtractArchive(src, dest, format.ExtractionPolicy(format.Tar)); err != nil {
		t.Fatalf("ExtractArchive: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dest, "..", "..", "etc", "passwd")); !os.IsNotExist(err) {
		t.Error("expected traversal entry to be sanitized, not written outside dest")
	}
}

func TestExtractArchiveZip(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "archive.zip")
	f, err := os.Create(src)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	w, err := zw.Create("bin/tool")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte("zip-content")); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	dest := filepath.Join(dir, "dest")
	if err := ExtractArchive(src, dest, format.ExtractionPolicy(format.Zip)); err != nil {
		t.Fatalf("ExtractArchive: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dest, "bin", "tool"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "zip-content" {
		t.Errorf("content = %q", data)
	}
}

func TestDecodeFilePlainRenames(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	if err := os.WriteFile(src, []byte("payload"), 0o644); err != nil {
		t.Fatal(err)
	}
	dest := filepath.Join(dir, "dest")

	if err := DecodeFile(src, dest, format.NoDecompressor); err != nil {
		t.Fatalf("DecodeFile: %v", err)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "payload" {
		t.Errorf("content = %q", data)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Error("expected src to be gone after rename")
	}
}

func TestDecodeFileGzip(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.gz")
	if err := os.WriteFile(src, gzipBytes(t, []byte("payload")), 0o644); err != nil {
		t.Fatal(err)
	}
	dest := filepath.Join(dir, "dest")

	if err := DecodeFile(src, dest, format.GzipDecompressor); err != nil {
		t.Fatalf("DecodeFile: %v", err)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "payload" {
		t.Errorf("content = %q", data)
	}
}
