// Package logic contains the pure button classification logic for the IR remote.
// This package has NO external dependencies (no GPIO, MQTT, OS, or time.Sleep).
// Time is always injectable: capture times are monotonic durations taken from
// the edge clock, wall-clock times are passed in by the caller.
package logic

import (
	"fmt"
	"time"
)

// Button identifies a physical key on the remote.
type Button string

const (
	ButtonUnknown Button = "UNKNOWN"
	ButtonMenu    Button = "MENU"
	ButtonEsc     Button = "ESC"
	ButtonUp      Button = "UP"
	ButtonDown    Button = "DOWN"
	ButtonLeft    Button = "LEFT"
	ButtonRight   Button = "RIGHT"
	ButtonVal     Button = "VAL"
	ButtonMode    Button = "MODE"
)

// Buttons lists every known button in display order.
var Buttons = []Button{
	ButtonMenu,
	ButtonEsc,
	ButtonUp,
	ButtonDown,
	ButtonLeft,
	ButtonRight,
	ButtonVal,
	ButtonMode,
}

// ParseButton returns the button with the given name.
func ParseButton(name string) (Button, bool) {
	for _, b := range Buttons {
		if string(b) == name {
			return b, true
		}
	}
	return ButtonUnknown, false
}

// Repeats reports whether holding the button produces repeat events.
// MENU and MODE fire once per press.
func (b Button) Repeats() bool {
	switch b {
	case ButtonMenu, ButtonMode:
		return false
	}
	return true
}

// FingerprintBits is the width of a fingerprint.
const FingerprintBits = 32

// FormatFingerprint renders a fingerprint the way calibration tables list it.
func FormatFingerprint(fp uint32) string {
	return fmt.Sprintf("0x%08X", fp)
}

// Signal is a successfully decoded capture.
type Signal struct {
	Fingerprint uint32
	Bits        int
	Button      Button
	// CapturedAt is the monotonic edge-clock time of the first edge.
	CapturedAt time.Duration
	// Samples is the number of ticks the fingerprint was computed from.
	Samples int
}

// ButtonEvent is a press that survived held/repeat classification.
type ButtonEvent struct {
	Timestamp   time.Time
	Button      Button
	Held        bool
	Firing      int
	Fingerprint uint32
}

// Phase is the phase of a held press.
type Phase string

const (
	PhaseDelaying  Phase = "DELAYING"
	PhaseRepeating Phase = "REPEATING"
)

// RepeatState tracks the running history of one remote.
type RepeatState struct {
	LastFingerprint uint32
	LastTime        time.Duration
	Phase           Phase
	// Countdown is the number of nominal intervals left before the next firing.
	Countdown int
	// FiringCount is the number of firings in the current held run.
	FiringCount int
	// Started is set once the first press after startup has been seen.
	Started bool
}

// EventCounts tracks emitted and suppressed events since startup.
type EventCounts struct {
	Presses    int
	Repeats    int
	Suppressed int
	PerButton  map[Button]int
}

// Clone returns a copy that does not share the PerButton map.
func (c EventCounts) Clone() EventCounts {
	out := c
	out.PerButton = make(map[Button]int, len(c.PerButton))
	for b, n := range c.PerButton {
		out.PerButton[b] = n
	}
	return out
}

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
	Counts    EventCounts
}
