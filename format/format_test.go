package format

import (
	"encoding/json"
	"testing"
)

func TestFormatRoundTrip(t *testing.T) {
	all := []Format{Plain, Gz, Xz, Zstd, Tar, TarGz, TarXz, TarZstd, Zip}
	for _, f := range all {
		data, err := json.Marshal(f)
		if err != nil {
			t.Fatalf("Marshal(%v): %v", f, err)
		}
		var got Format
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("Unmarshal(%s): %v", data, err)
		}
		if got != f {
			t.Errorf("round trip = %v, want %v", got, f)
		}
	}
}

func TestFormatUnmarshalEmptyIsPlain(t *testing.T) {
	var f Format = Zip
	if err := json.Unmarshal([]byte(`""`), &f); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if f != Plain {
		t.Errorf("empty format = %v, want Plain", f)
	}
}

func TestFormatUnmarshalRejectsUnknown(t *testing.T) {
	var f Format
	if err := json.Unmarshal([]byte(`"rar"`), &f); err == nil {
		t.Fatal("expected error for unknown format tag")
	}
}

func TestIsContainer(t *testing.T) {
	cases := map[Format]bool{
		Plain:   false,
		Gz:      false,
		Xz:      false,
		Zstd:    false,
		Tar:     true,
		TarGz:   true,
		TarXz:   true,
		TarZstd: true,
		Zip:     true,
	}
	for f, want := range cases {
		if got := IsContainer(f); got != want {
			t.Errorf("IsContainer(%v) = %v, want %v", f, got, want)
		}
	}
}

func TestExtractionPolicyArchiveConsistentWithIsContainer(t *testing.T) {
	all := []Format{Plain, Gz, Xz, Zstd, Tar, TarGz, TarXz, TarZstd, Zip}
	for _, f := range all {
		p := ExtractionPolicy(f)
		hasArchive := p.Archive != NoArchive
		if hasArchive != IsContainer(f) {
			t.Errorf("ExtractionPolicy(%v).Archive presence disagrees with IsContainer", f)
		}
	}
}

func TestExtractionPolicyDecompressors(t *testing.T) {
	cases := map[Format]Decompressor{
		Plain:   NoDecompressor,
		Gz:      GzipDecompressor,
		Xz:      XzDecompressor,
		Zstd:    ZstdDecompressor,
		Tar:     NoDecompressor,
		TarGz:   GzipDecompressor,
		TarXz:   XzDecompressor,
		TarZstd: ZstdDecompressor,
		Zip:     NoDecompressor,
	}
	for f, want := range cases {
		if got := ExtractionPolicy(f).Decompressor; got != want {
			t.Errorf("ExtractionPolicy(%v).Decompressor = %v, want %v", f, got, want)
		}
	}
}
