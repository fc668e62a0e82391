// Package capture records the inter-edge timing of an IR receiver pin.
//
// A Receiver is shared by two goroutines: the GPIO edge handler, which calls
// HandleEdge for every transition, and the main loop, which polls
// SnapshotIfComplete and calls Reset. All access goes through mu, which plays
// the part of masking interrupts: the edge handler holds it for a constant
// number of field updates, the main loop holds it only long enough to copy the
// buffer out.
package capture

import (
	"sync"
	"time"
)

// Timing constants. These are compile-time on purpose: the calibration table
// is only valid for the values it was recorded with.
const (
	// TickDuration is the unit inter-edge times are quantized to.
	TickDuration = 50 * time.Microsecond
	// Timeout is the silence after which a transmission is considered over.
	Timeout = 15 * time.Millisecond
	// TimeoutTicks is Timeout expressed in ticks.
	TimeoutTicks = int64(Timeout / TickDuration)
	// Capacity is the maximum number of ticks kept per capture.
	Capacity = 100
	// FirstTick is recorded for the leading mark, whose length is unknown.
	FirstTick = 20
)

// State is the receiver state.
type State int

const (
	StateIdle State = iota
	StateCapturing
	StateComplete
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateCapturing:
		return "CAPTURING"
	case StateComplete:
		return "COMPLETE"
	}
	return "INVALID"
}

// Snapshot is a consistent copy of a completed capture.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	Ticks        [Capacity]uint16
	Len          int
	CaptureStart time.Duration
	// Stale is set when the capture was completed by the silence check
	// rather than by a timed-out edge.
	Stale bool
}

// Samples returns the valid ticks.
func (s *Snapshot) Samples() []uint16 {
	return s.Ticks[:s.Len]
}

// Counters are cumulative receiver counters.
type Counters struct {
	Captures  int
	Overflows int
	Stale     int
}

// Receiver is the raw pulse buffer for one GPIO line.
type Receiver struct {
	pin int

	mu           sync.Mutex
	state        State
	ticks        [Capacity]uint16
	length       int
	captureStart time.Duration
	lastEdge     time.Duration
	counters     Counters
}

// NewReceiver creates an idle receiver for the given pin.
func NewReceiver(pin int) *Receiver {
	return &Receiver{pin: pin}
}

// Pin returns the GPIO line this receiver monitors.
func (r *Receiver) Pin() int {
	return r.pin
}

// HandleEdge records a transition at ts, a monotonic timestamp from the edge
// clock. It does not block, allocate or perform I/O.
func (r *Receiver) HandleEdge(ts time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delta := ts - r.lastEdge
	r.lastEdge = ts

	switch r.state {
	case StateComplete:
		return
	case StateIdle:
		r.captureStart = ts
		r.state = StateCapturing
		r.counters.Captures++
		r.ticks[0] = FirstTick
		r.length = 1
		return
	}

	ticks := int64(delta/TickDuration) + 1
	if ticks > TimeoutTicks {
		r.state = StateComplete
		return
	}
	if r.length >= Capacity {
		r.counters.Overflows++
		return
	}
	r.ticks[r.length] = uint16(ticks)
	r.length++
}

// SnapshotIfComplete returns a copy of the capture when it is complete.
// A capture that has received no edge for longer than Timeout is completed
// here, so a transmission that ends without a final edge is not left hanging.
func (r *Receiver) SnapshotIfComplete(now time.Duration) (Snapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var snap Snapshot
	if r.state == StateCapturing && r.length > 0 && now-r.lastEdge > Timeout {
		r.state = StateComplete
		r.counters.Stale++
		snap.Stale = true
	}
	if r.state != StateComplete {
		return snap, false
	}

	snap.Ticks = r.ticks
	snap.Len = r.length
	snap.CaptureStart = r.captureStart
	return snap, true
}

// Reset clears the buffer and makes the receiver ready for the next capture.
func (r *Receiver) Reset() {
	r.mu.Lock()
	r.state = StateIdle
	r.length = 0
	r.ticks = [Capacity]uint16{}
	r.mu.Unlock()
}

// State returns the current receiver state.
func (r *Receiver) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Counters returns a copy of the receiver counters.
func (r *Receiver) Counters() Counters {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counters
}
