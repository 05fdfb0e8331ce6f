package artifact

import (
	"errors"
	"strings"
	"testing"
)

func TestNewDigestInvalid(t *testing.T) {
	cases := []string{
		"",
		"z",
		"7f83b1657ff1fc53b92dc18148a1d65dfc2d4b1fa3d677284addd200126d906",   // 63 chars
		"7f83b1657ff1fc53b92dc18148a1d65dfc2d4b1fa3d677284addd200126d90690", // 65 chars
		"7F83B1657FF1FC53B92DC18148A1D65DFC2D4B1FA3D677284ADDD200126D9069",  // uppercase
	}
	for _, s := range cases {
		if _, err := NewDigest(s); err == nil {
			t.Errorf("NewDigest(%q): expected error, got none", s)
		} else if !errors.Is(err, ErrInvalidValue) {
			t.Errorf("NewDigest(%q): error %v does not wrap ErrInvalidValue", s, err)
		}
	}
}

func TestNewDigestValid(t *testing.T) {
	const s = "7f83b1657ff1fc53b92dc18148a1d65dfc2d4b1fa3d677284addd200126d9069"[:64]
	d, err := NewDigest(s)
	if err != nil {
		t.Fatalf("NewDigest(%q): unexpected error: %v", s, err)
	}
	if got := d.String(); got != s {
		t.Errorf("String() = %q, want %q", got, s)
	}
}

func TestDigestEqual(t *testing.T) {
	const s = "7f83b1657ff1fc53b92dc18148a1d65dfc2d4b1fa3d677284addd200126d9069"[:64]
	a, err := NewDigest(s)
	if err != nil {
		t.Fatalf("NewDigest: %v", err)
	}
	b, err := NewDigest(s)
	if err != nil {
		t.Fatalf("NewDigest: %v", err)
	}
	if !a.Equal(b) {
		t.Error("expected equal digests to compare equal")
	}

	other, err := NewDigest(strings.Repeat("0", 63) + "f")
	if err != nil {
		t.Fatalf("NewDigest: %v", err)
	}
	if a.Equal(other) {
		t.Error("expected different digests to compare unequal")
	}
}

func TestDigestTextRoundTrip(t *testing.T) {
	const s = "7f83b1657ff1fc53b92dc18148a1d65dfc2d4b1fa3d677284addd200126d9069"[:64]
	var d Digest
	if err := d.UnmarshalText([]byte(s)); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}
	text, err := d.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText: %v", err)
	}
	if string(text) != s {
		t.Errorf("round trip = %q, want %q", text, s)
	}
}
