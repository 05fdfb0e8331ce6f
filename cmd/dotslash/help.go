package main

import (
	"fmt"
	"io"
)

// version is stamped at release time; "dev" is what a source checkout
// reports.
var version = "dev"

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "dotslash %s\n", version)
}

func printHelp(w io.Writer) {
	fmt.Fprint(w, `dotslash <dotslash-file> [args...]

Runs the executable described by <dotslash-file>, forwarding [args...] to
it. The artifact is fetched into a local content-addressed cache on first
use and reused on every subsequent invocation.

Alternative forms (must be the only/first argument):
  --help                 print this message
  --version              print the launcher's version
  -- <subcommand> [args]  run a launcher subcommand; see "dotslash -- help"
`)
}
