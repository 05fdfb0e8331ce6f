//go:build linux && arm64

package platform

const current = "linux-aarch64"
