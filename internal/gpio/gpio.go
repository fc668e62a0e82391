// Package gpio watches the IR receiver line for edges with hardware abstraction.
// The real implementation uses the Linux GPIO character device, which stamps
// every edge with the kernel's monotonic clock.
// The fake implementation allows testing without hardware.
package gpio

import "time"

// EdgeHandler is called for every edge with its monotonic timestamp.
// It runs on the watcher's goroutine and must return quickly.
type EdgeHandler func(ts time.Duration)

// Watcher delivers edges of one input line to an EdgeHandler.
type Watcher interface {
	// Pin returns the line offset being watched.
	Pin() int

	// Close stops edge delivery and releases the line.
	Close() error
}

var (
	_ Watcher = (*RealWatcher)(nil)
	_ Watcher = (*FakeWatcher)(nil)
)

// Defaults for the receiver wiring (BCM numbering on gpiochip0).
const (
	DefaultChip = "gpiochip0"
	DefaultPin  = 23
)
