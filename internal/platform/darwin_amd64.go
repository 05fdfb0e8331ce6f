//go:build darwin && amd64

package platform

const current = "macos-x86_64"
