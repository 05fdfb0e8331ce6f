//go:build darwin && arm64

package platform

const current = "macos-aarch64"
