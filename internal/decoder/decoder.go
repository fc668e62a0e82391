// Package decoder reduces completed pulse captures to 32-bit fingerprints and
// maps them to buttons.
//
// No IR protocol is decoded. Each pair of ticks two apart is compared with a
// 20% tolerance and the three-way result is folded into an FNV-1 hash, which
// is stable for one remote while ignoring timing jitter.
package decoder

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sweeney/ir-remote/internal/capture"
	"github.com/sweeney/ir-remote/internal/logic"
)

const (
	// MinSamples is the shortest capture that is not treated as noise.
	MinSamples = 6

	fnvBasis32 uint32 = 2166136261
	fnvPrime32 uint32 = 16777619
)

// Source is the consumer side of a capture buffer.
type Source interface {
	// SnapshotIfComplete returns a copy of the capture once it is complete.
	SnapshotIfComplete(now time.Duration) (capture.Snapshot, bool)
	// Reset makes the buffer ready for the next capture.
	Reset()
}

// Result describes the outcome of one poll.
type Result int

const (
	// ResultNone means no capture was complete.
	ResultNone Result = iota
	// ResultNoise means the capture was too short and was discarded.
	ResultNoise
	// ResultUnknown means the fingerprint matched no button.
	ResultUnknown
	// ResultDecoded means a button was recognized.
	ResultDecoded
)

func (r Result) String() string {
	switch r {
	case ResultNone:
		return "none"
	case ResultNoise:
		return "noise"
	case ResultUnknown:
		return "unknown"
	case ResultDecoded:
		return "decoded"
	}
	return fmt.Sprintf("Result(%d)", int(r))
}

// Compare is a ternary comparison with 20% tolerance: 0 when cur is more than
// 20% shorter than prev, 2 when prev is more than 20% shorter than cur, 1
// otherwise. An exact 0.8 ratio compares equal.
func Compare(prev, cur uint16) uint32 {
	p, c := uint32(prev), uint32(cur)
	if 5*c < 4*p {
		return 0
	}
	if 5*p < 4*c {
		return 2
	}
	return 1
}

// Fingerprint hashes a tick sequence. The first tick is the sentinel for the
// leading mark and is skipped.
func Fingerprint(ticks []uint16) uint32 {
	hash := fnvBasis32
	for i := 1; i+2 < len(ticks); i++ {
		hash = hash*fnvPrime32 ^ Compare(ticks[i], ticks[i+2])
	}
	return hash
}

// Decoder drains completed captures from a Source.
// It is not safe for concurrent use; the main loop owns it.
type Decoder struct {
	src   Source
	table Table
	clock func() time.Duration
	log   *logrus.Entry
	stats Stats

	// OnUnknown, if set, is called with every fingerprint that matches no
	// button. Used to calibrate a new remote.
	OnUnknown func(fp uint32, samples int)
}

// New creates a decoder. The clock must be the same monotonic clock the edge
// timestamps are taken from.
func New(src Source, table Table, clock func() time.Duration) *Decoder {
	return &Decoder{
		src:   src,
		table: table,
		clock: clock,
		log:   logrus.WithField("component", "decoder"),
	}
}

// Decode polls once and returns the decoded signal when a known button was
// received. It never blocks and is safe to call when nothing was captured.
func (d *Decoder) Decode() (logic.Signal, bool) {
	sig, res := d.Poll()
	return sig, res == ResultDecoded
}

// Poll polls once and reports what happened to the capture, if any.
func (d *Decoder) Poll() (logic.Signal, Result) {
	snap, ok := d.src.SnapshotIfComplete(d.clock())
	if !ok {
		return logic.Signal{}, ResultNone
	}
	d.src.Reset()
	d.stats.Captures++
	if snap.Stale {
		d.stats.Stale++
	}

	if snap.Len < MinSamples {
		d.stats.Noise++
		return logic.Signal{}, ResultNoise
	}

	fp := Fingerprint(snap.Samples())
	sig := logic.Signal{
		Fingerprint: fp,
		Bits:        logic.FingerprintBits,
		CapturedAt:  snap.CaptureStart,
		Samples:     snap.Len,
	}

	b, known := d.table.Lookup(fp)
	if !known {
		d.stats.Unknown++
		d.log.WithFields(logrus.Fields{
			"fingerprint": logic.FormatFingerprint(fp),
			"samples":     snap.Len,
		}).Debug("unknown fingerprint")
		if d.OnUnknown != nil {
			d.OnUnknown(fp, snap.Len)
		}
		sig.Button = logic.ButtonUnknown
		return sig, ResultUnknown
	}

	d.stats.Decoded++
	sig.Button = b
	d.log.WithFields(logrus.Fields{
		"button":      b,
		"fingerprint": logic.FormatFingerprint(fp),
		"samples":     snap.Len,
	}).Debug("decoded")
	return sig, ResultDecoded
}

// Stats returns a copy of the decode statistics. Buffer overflows are taken
// from the source when it keeps receiver counters.
func (d *Decoder) Stats() Stats {
	s := d.stats
	if c, ok := d.src.(interface{ Counters() capture.Counters }); ok {
		s.Overflows = c.Counters().Overflows
	}
	return s
}
