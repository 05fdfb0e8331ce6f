//go:build windows && amd64

package platform

const current = "windows-x86_64"
