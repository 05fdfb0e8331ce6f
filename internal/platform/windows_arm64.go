//go:build windows && arm64

package platform

const current = "windows-aarch64"
