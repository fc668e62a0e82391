package decoder

import (
	"fmt"
	"sort"

	"github.com/sweeney/ir-remote/internal/logic"
)

// Table maps fingerprints to buttons. It is calibration data for one
// remote/receiver pair and can be replaced from the config file.
type Table map[uint32]logic.Button

// DefaultTable returns the fingerprints recorded for the development remote
// (a TSOP4838 receiver with the head unit's original remote).
func DefaultTable() Table {
	return Table{
		0x52E6B438: logic.ButtonMenu,
		0xF2A74DE4: logic.ButtonEsc,
		0x269E0D37: logic.ButtonUp,
		0x6513270E: logic.ButtonDown,
		0xA6A3A450: logic.ButtonLeft,
		0x0C5C7FD0: logic.ButtonRight,
		0x128B2F33: logic.ButtonVal,
		0xD23F0824: logic.ButtonMode,
	}
}

// NewTable builds a table from button names to fingerprints, as found in the
// config file. Each known button may appear once and fingerprints must be unique.
func NewTable(byName map[string]uint32) (Table, error) {
	t := make(Table, len(byName))
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		b, ok := logic.ParseButton(name)
		if !ok {
			return nil, fmt.Errorf("unknown button %q", name)
		}
		fp := byName[name]
		if prev, dup := t[fp]; dup {
			return nil, fmt.Errorf("fingerprint %s used by both %s and %s", logic.FormatFingerprint(fp), prev, b)
		}
		t[fp] = b
	}
	return t, nil
}

// Lookup returns the button for a fingerprint.
func (t Table) Lookup(fp uint32) (logic.Button, bool) {
	b, ok := t[fp]
	if !ok {
		return logic.ButtonUnknown, false
	}
	return b, true
}
