// Package locate implements the DotSlash file grammar and the selection of
// an artifact entry for the current platform: strip the required shebang
// header, parse the remainder as JSON-with-comments, look up the current
// platform key, and compute that entry's cache location.
package locate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/tailscale/hujson"

	"github.com/facebook/dotslash/artifact"
	"github.com/facebook/dotslash/cache"
	"github.com/facebook/dotslash/internal/platform"
)

// Header is the literal ASCII bytes every DotSlash file must begin with,
// followed by an LF or CRLF line ending.
const Header = "#!/usr/bin/env dotslash"

// ErrInvalidDotslashFile is wrapped by any error raised while parsing a
// DotSlash file: missing header, malformed JSON-with-comments, or a field
// that fails its own validation.
var ErrInvalidDotslashFile = errors.New("invalid dotslash file")

// ErrUnsupportedPlatform is wrapped when the current platform key isn't
// present in the file's platforms map.
var ErrUnsupportedPlatform = errors.New("unsupported platform")

// document mirrors a DotSlash file's top-level JSON object.
type document struct {
	Name      string                    `json:"name"`
	Platforms map[string]artifact.Entry `json:"platforms"`
}

// Result is what Locate resolves a DotSlash file down to: the entry chosen
// for the current platform, and where its artifact lives (or will live) in
// the cache.
type Result struct {
	Entry    artifact.Entry
	Location cache.Location
}

// Locate parses data as a DotSlash file, selects the entry matching the
// current build platform, and computes its location in c.
func Locate(data []byte, c cache.Cache) (Result, error) {
	body, err := stripHeader(data)
	if err != nil {
		return Result{}, err
	}

	std, err := hujson.Standardize(body)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %s", ErrInvalidDotslashFile, err)
	}

	var doc document
	if err := json.Unmarshal(std, &doc); err != nil {
		return Result{}, fmt.Errorf("%w: %s", ErrInvalidDotslashFile, err)
	}

	entry, ok := doc.Platforms[platform.Current]
	if !ok {
		return Result{}, fmt.Errorf("%w: no entry for %q; available platforms: %s",
			ErrUnsupportedPlatform, platform.Current, quotedSortedKeys(doc.Platforms))
	}
	if err := entry.Validate(); err != nil {
		return Result{}, fmt.Errorf("%w: %s", ErrInvalidDotslashFile, err)
	}

	loc := cache.DetermineLocation(entry, c)
	touchMtime(loc.Executable)

	return Result{Entry: entry, Location: loc}, nil
}

// stripHeader verifies data begins with Header followed by LF or CRLF and
// returns everything after that line ending.
func stripHeader(data []byte) ([]byte, error) {
	prefix := []byte(Header)
	if !bytes.HasPrefix(data, prefix) {
		return nil, fmt.Errorf("%w: DotSlash file must start with '%s'", ErrInvalidDotslashFile, Header)
	}
	rest := data[len(prefix):]
	switch {
	case bytes.HasPrefix(rest, []byte("\r\n")):
		return rest[2:], nil
	case bytes.HasPrefix(rest, []byte("\n")):
		return rest[1:], nil
	default:
		return nil, fmt.Errorf("%w: DotSlash file must start with '%s'", ErrInvalidDotslashFile, Header)
	}
}

func quotedSortedKeys(m map[string]artifact.Entry) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	quoted := make([]string, len(keys))
	for i, k := range keys {
		quoted[i] = strconv.Quote(k)
	}
	return strings.Join(quoted, ", ")
}
