// Package format implements the closed tagged union of artifact formats and
// the extraction policy derived from each one: whether the fetched bytes
// need decompressing, and whether they're a single file or an archive that
// needs extracting.
package format

import (
	"encoding/json"
	"fmt"
)

// Format is the on-the-wire "format" tag of an artifact entry.
type Format int

const (
	// Plain is a single file with no compression applied. It is the
	// zero value and the default when the field is absent.
	Plain Format = iota
	Gz
	Xz
	Zstd
	Tar
	TarGz
	TarXz
	TarZstd
	Zip
)

var tags = map[Format]string{
	Plain:   "plain",
	Gz:      "gz",
	Xz:      "xz",
	Zstd:    "zst",
	Tar:     "tar",
	TarGz:   "tar.gz",
	TarXz:   "tar.xz",
	TarZstd: "tar.zst",
	Zip:     "zip",
}

var byTag = func() map[string]Format {
	m := make(map[string]Format, len(tags))
	for f, s := range tags {
		m[s] = f
	}
	return m
}()

// String returns the wire tag, e.g. "tar.gz".
func (f Format) String() string {
	if s, ok := tags[f]; ok {
		return s
	}
	return fmt.Sprintf("format(%d)", int(f))
}

// MarshalJSON implements json.Marshaler.
func (f Format) MarshalJSON() ([]byte, error) { return json.Marshal(f.String()) }

// UnmarshalJSON implements json.Unmarshaler. The empty string is accepted as
// a synonym for "plain", matching a DotSlash file that omits the field.
func (f *Format) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*f = Plain
		return nil
	}
	v, ok := byTag[s]
	if !ok {
		return fmt.Errorf("format: unknown format %q", s)
	}
	*f = v
	return nil
}

// Decompressor is the streaming decompression applied before extraction (or
// before writing out a single file).
type Decompressor int

const (
	NoDecompressor Decompressor = iota
	GzipDecompressor
	XzDecompressor
	ZstdDecompressor
)

// Archive is the container format extracted after decompression.
type Archive int

const (
	NoArchive Archive = iota
	TarArchive
	ZipArchive
)

// Policy is the (decompressor?, archive?) pair for a Format.
type Policy struct {
	Decompressor Decompressor
	Archive      Archive
}

var policies = map[Format]Policy{
	Plain:   {NoDecompressor, NoArchive},
	Gz:      {GzipDecompressor, NoArchive},
	Xz:      {XzDecompressor, NoArchive},
	Zstd:    {ZstdDecompressor, NoArchive},
	Tar:     {NoDecompressor, TarArchive},
	TarGz:   {GzipDecompressor, TarArchive},
	TarXz:   {XzDecompressor, TarArchive},
	TarZstd: {ZstdDecompressor, TarArchive},
	Zip:     {NoDecompressor, ZipArchive},
}

// ExtractionPolicy returns the decompressor/archive pair for f. Every Format
// value has an entry, so this never needs an "ok" return: the union is
// closed and every variant is handled in policies above.
func ExtractionPolicy(f Format) Policy {
	p, ok := policies[f]
	if !ok {
		panic(fmt.Sprintf("format: unhandled format variant %d", int(f)))
	}
	return p
}

// IsContainer reports whether f unpacks into more than one file, i.e.
// whether its extraction policy carries an archive type.
func IsContainer(f Format) bool {
	return ExtractionPolicy(f).Archive != NoArchive
}
