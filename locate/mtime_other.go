//go:build !linux

package locate

// touchMtime is a no-op outside Linux: the /tmp-reaper concern it defends
// against is Linux-distro-specific (e.g. systemd-tmpfiles).
func touchMtime(path string) {}
