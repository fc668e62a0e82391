// Package status provides a thread-safe status tracker for the ir-remote daemon.
// It is written by the main loop and read by HTTP handlers and MQTT system events.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/ir-remote/internal/decoder"
	"github.com/sweeney/ir-remote/internal/logic"
)

// NetworkInfo contains network state. This is a local copy to avoid
// importing internal/mqtt from status.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	Chip        string
	Pin         int
	PollMs      int64
	HeartbeatMs int64
	Broker      string
	HTTPPort    string
	Buttons     int // number of calibrated fingerprints
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type and safe to use after the lock is released.
type Snapshot struct {
	LastEvent     logic.ButtonEvent
	HasEvent      bool
	Counts        logic.EventCounts
	Decoder       decoder.Stats
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// RecordEvent stores the most recent button event.
func (t *Tracker) RecordEvent(ev logic.ButtonEvent) {
	t.mu.Lock()
	t.snap.LastEvent = ev
	t.snap.HasEvent = true
	t.mu.Unlock()
}

// Update sets event counts and decoder statistics.
// Called from runLoop on every tick.
func (t *Tracker) Update(counts logic.EventCounts, stats decoder.Stats) {
	counts = counts.Clone()
	t.mu.Lock()
	t.snap.Counts = counts
	t.snap.Decoder = stats
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	s.Counts = t.snap.Counts.Clone()
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
