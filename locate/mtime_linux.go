//go:build linux

package locate

import (
	"os"
	"time"
)

// touchMtime opportunistically bumps path's modification time to defeat
// /tmp reapers that clear out files unused for some threshold. It's best
// effort by design (spec.md §4.H step 5, §9 Open Question ii): a failure
// here - the file not existing yet, or a permission error - must never
// fail the launch it's part of.
func touchMtime(path string) {
	now := time.Now()
	_ = os.Chtimes(path, now, now)
}
