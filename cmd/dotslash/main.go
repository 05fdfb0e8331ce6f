// Command dotslash is the DotSlash launcher: it makes a DotSlash file
// behave like the native executable it describes.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/facebook/dotslash/cache"
	"github.com/facebook/dotslash/launch"
	"github.com/facebook/dotslash/provider"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run implements the CLI surface of spec.md §6: the primary
// "dotslash <file> [args...]" pass-through form, plus the alternative
// "--help"/"--version"/"-- <subcommand>" forms, which only come into play
// when the first argument can't be read as a file.
func run(argv []string) int {
	if len(argv) == 0 {
		fmt.Fprintln(os.Stderr, "dotslash error: usage: dotslash <dotslash-file> [args...]")
		return 1
	}

	first := argv[0]
	raw, readErr := os.ReadFile(first)
	if readErr != nil {
		if errors.Is(readErr, os.ErrNotExist) {
			if code, handled := tryDashForm(first, argv[1:]); handled {
				return code
			}
		}
		printErrorChain(fmt.Errorf("failed to read %s: %w", first, readErr))
		return 1
	}

	c, err := cache.New()
	if err != nil {
		printErrorChain(fmt.Errorf("failed to determine cache directory: %w", err))
		return 1
	}

	factory := provider.NewDefaultFactory()
	if err := launch.Run(context.Background(), first, raw, argv[1:], c, factory); err != nil {
		printErrorChain(err)
		return 1
	}
	// A successful hand-off never reaches here: on POSIX the process image is
	// replaced, and on Windows launch's doExec exits with the child's exit
	// code itself.
	return 0
}

// tryDashForm recognizes the first-argument-only alternative CLI forms.
// handled is false when first isn't one of them, so the caller can fall
// back to reporting the original file-read error.
func tryDashForm(first string, rest []string) (code int, handled bool) {
	switch first {
	case "--help":
		printHelp(os.Stdout)
		return 0, true
	case "--version":
		printVersion(os.Stdout)
		return 0, true
	case "--":
		return runSubcommand(rest), true
	default:
		return 0, false
	}
}

// printErrorChain prints err and every error it wraps, one per "caused by"
// line, matching the causal-chain diagnostics spec.md §7 requires.
func printErrorChain(err error) {
	fmt.Fprintf(os.Stderr, "dotslash error: %s\n", err)
	for next := errors.Unwrap(err); next != nil; next = errors.Unwrap(next) {
		fmt.Fprintf(os.Stderr, "caused by: %s\n", next)
	}
}
