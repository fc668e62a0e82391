//go:build !linux

package gpio

import "time"

var processStart = time.Now()

// Monotonic returns the time since process start. There are no hardware
// edges on these platforms, so only the fake watcher uses it.
func Monotonic() time.Duration {
	return time.Since(processStart)
}
