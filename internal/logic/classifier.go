package logic

import "time"

// RepeatConfig holds the held/repeat tuning constants.
// The values reproduce the auto-repeat cadence of the original head unit and
// must not be changed without checking against the hardware.
type RepeatConfig struct {
	// HeldWindow is the largest gap between two decodes of the same
	// fingerprint that still counts as one continuous press.
	HeldWindow time.Duration
	// NominalInterval is the remote's frame interval while a key is held.
	NominalInterval time.Duration
	// DelayIntervals is the number of intervals before the first repeat.
	DelayIntervals int
	// RepeatIntervals is the number of intervals between later repeats.
	RepeatIntervals int
	// FirstPressMargin is added to DelayIntervals on the first press after startup.
	FirstPressMargin int
	// SpeedCorrectionEvery makes every Nth firing come one interval sooner.
	// Zero disables the correction.
	SpeedCorrectionEvery int
}

// DefaultRepeatConfig returns the cadence measured on the development remote.
func DefaultRepeatConfig() RepeatConfig {
	return RepeatConfig{
		HeldWindow:           120 * time.Millisecond,
		NominalInterval:      50 * time.Millisecond,
		DelayIntervals:       13,
		RepeatIntervals:      4,
		FirstPressMargin:     1,
		SpeedCorrectionEvery: 10,
	}
}

// Classifier turns decoded signals into button events with auto-repeat.
type Classifier struct {
	cfg    RepeatConfig
	state  RepeatState
	counts EventCounts
}

// NewClassifier creates a classifier in the DELAYING phase.
func NewClassifier(cfg RepeatConfig) *Classifier {
	return &Classifier{
		cfg:    cfg,
		state:  RepeatState{Phase: PhaseDelaying},
		counts: EventCounts{PerButton: map[Button]int{}},
	}
}

// Classify takes a decoded signal and returns the event to emit, or nil when
// this decode is part of a held press that should not fire yet.
// The returned event has no Timestamp; the caller stamps wall-clock time.
func (c *Classifier) Classify(sig Signal) *ButtonEvent {
	s := &c.state
	interval := sig.CapturedAt - s.LastTime
	held := s.Started && sig.Fingerprint == s.LastFingerprint && interval < c.cfg.HeldWindow

	s.LastFingerprint = sig.Fingerprint
	s.LastTime = sig.CapturedAt

	if held && !sig.Button.Repeats() {
		c.counts.Suppressed++
		return nil
	}

	if !held {
		s.Phase = PhaseDelaying
		s.Countdown = c.cfg.DelayIntervals
		if !s.Started {
			s.Countdown += c.cfg.FirstPressMargin
			s.Started = true
		}
		s.FiringCount = 1
		return c.fire(sig, false)
	}

	s.Countdown -= c.elapsedIntervals(interval)
	if s.Countdown > 0 {
		c.counts.Suppressed++
		return nil
	}

	switch s.Phase {
	case PhaseDelaying:
		s.Phase = PhaseRepeating
		s.Countdown = c.cfg.RepeatIntervals - 1
		s.FiringCount = 2
	default:
		s.Countdown = c.cfg.RepeatIntervals
		s.FiringCount++
		if c.cfg.SpeedCorrectionEvery > 0 && s.FiringCount%c.cfg.SpeedCorrectionEvery == 0 {
			s.Countdown--
		}
	}
	return c.fire(sig, true)
}

// elapsedIntervals rounds the gap to whole nominal intervals, so decodes
// missed between two polls still advance the countdown.
func (c *Classifier) elapsedIntervals(interval time.Duration) int {
	if c.cfg.NominalInterval <= 0 {
		return 1
	}
	return int((interval + c.cfg.NominalInterval/2) / c.cfg.NominalInterval)
}

func (c *Classifier) fire(sig Signal, held bool) *ButtonEvent {
	if held {
		c.counts.Repeats++
	} else {
		c.counts.Presses++
	}
	c.counts.PerButton[sig.Button]++

	return &ButtonEvent{
		Button:      sig.Button,
		Held:        held,
		Firing:      c.state.FiringCount,
		Fingerprint: sig.Fingerprint,
	}
}

// State returns a copy of the repeat state.
func (c *Classifier) State() RepeatState {
	return c.state
}

// EventCountsSnapshot returns a copy of the event counters.
func (c *Classifier) EventCountsSnapshot() EventCounts {
	return c.counts.Clone()
}

// Heartbeat decides when a periodic heartbeat is due.
type Heartbeat struct {
	startTime     time.Time
	lastHeartbeat time.Time
}

// NewHeartbeat creates a heartbeat timer. The startTime is used for uptime.
func NewHeartbeat(startTime time.Time) *Heartbeat {
	return &Heartbeat{startTime: startTime, lastHeartbeat: startTime}
}

// Check returns heartbeat data if the interval has elapsed since the last
// heartbeat (or startup). Returns nil if the interval has not elapsed or if
// interval is <= 0 (disabled).
func (h *Heartbeat) Check(now time.Time, interval time.Duration, counts EventCounts) *HeartbeatData {
	if interval <= 0 {
		return nil
	}

	if now.Sub(h.lastHeartbeat) < interval {
		return nil
	}

	h.lastHeartbeat = now
	return &HeartbeatData{
		Timestamp: now,
		Uptime:    now.Sub(h.startTime),
		Counts:    counts,
	}
}
