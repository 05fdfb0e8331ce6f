//go:build linux && amd64

package platform

const current = "linux-x86_64"
