package gpio

import (
	"errors"
	"time"
)

// FakeWatcher is a test double that delivers scripted edges on demand.
type FakeWatcher struct {
	pin     int
	handler EdgeHandler

	// Closed tracks if Close was called
	Closed bool

	// CloseError, if set, will be returned by Close()
	CloseError error
}

// NewFakeWatcher creates a FakeWatcher that delivers edges to handler.
func NewFakeWatcher(pin int, handler EdgeHandler) *FakeWatcher {
	return &FakeWatcher{pin: pin, handler: handler}
}

// Edge delivers one edge at ts. Edges after Close are dropped.
func (f *FakeWatcher) Edge(ts time.Duration) {
	if f.Closed {
		return
	}
	f.handler(ts)
}

// Transmit delivers a leading edge at start followed by one edge after each
// gap, and returns the timestamp of the last edge.
func (f *FakeWatcher) Transmit(start time.Duration, gaps []time.Duration) time.Duration {
	ts := start
	f.Edge(ts)
	for _, g := range gaps {
		ts += g
		f.Edge(ts)
	}
	return ts
}

// Pin returns the configured pin.
func (f *FakeWatcher) Pin() int {
	return f.pin
}

// Close marks the watcher as closed.
func (f *FakeWatcher) Close() error {
	if f.Closed {
		return errors.New("already closed")
	}
	f.Closed = true
	return f.CloseError
}

// Gaps converts tick counts into the inter-edge gaps that reproduce them.
func Gaps(tickDuration time.Duration, ticks ...uint16) []time.Duration {
	out := make([]time.Duration, len(ticks))
	for i, n := range ticks {
		out[i] = time.Duration(n-1) * tickDuration
	}
	return out
}
