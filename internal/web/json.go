package web

import (
	"encoding/json"
	"time"

	"github.com/sweeney/ir-remote/internal/logic"
)

// EventMessage is the websocket frame for one button event. It has the same
// shape as the MQTT event payload so the page can share its handling.
type EventMessage struct {
	Remote EventJSON `json:"remote"`
}

// EventJSON contains the button event details.
type EventJSON struct {
	Timestamp   string `json:"timestamp"`
	Button      string `json:"button"`
	Held        bool   `json:"held"`
	Firing      int    `json:"firing"`
	Fingerprint string `json:"fingerprint"`
}

func formatEvent(ev logic.ButtonEvent) []byte {
	data, _ := json.Marshal(EventMessage{Remote: EventJSON{
		Timestamp:   ev.Timestamp.UTC().Format(time.RFC3339Nano),
		Button:      string(ev.Button),
		Held:        ev.Held,
		Firing:      ev.Firing,
		Fingerprint: logic.FormatFingerprint(ev.Fingerprint),
	}})
	return data
}
