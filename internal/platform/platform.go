// Package platform exposes the build-time platform key used to select an
// artifact entry out of a DotSlash file's platforms map.
package platform

// Current is the platform key for the binary as it was built, one of
// "linux-aarch64", "linux-x86_64", "macos-aarch64", "macos-x86_64",
// "windows-aarch64", or "windows-x86_64".
//
// It is assigned by exactly one of the per-arch build-tagged files in this
// package; an unsupported GOOS/GOARCH combination fails the build rather than
// producing a runtime surprise.
var Current = current
