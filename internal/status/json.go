package status

import (
	"encoding/json"
	"time"

	"github.com/sweeney/ir-remote/internal/logic"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string         `json:"event,omitempty"`
	Reason        string         `json:"reason,omitempty"`
	UptimeSeconds int64          `json:"uptime_seconds"`
	StartTime     string         `json:"start_time"`
	Timestamp     string         `json:"timestamp"`
	MQTT          MQTTStatus     `json:"mqtt"`
	LastEvent     *LastEventJSON `json:"last_event,omitempty"`
	Counts        CountsJSON     `json:"event_counts"`
	Decoder       DecoderJSON    `json:"decoder"`
	Network       *NetworkJSON   `json:"network,omitempty"`
	Config        ConfigJSON     `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// LastEventJSON is the most recent button event.
type LastEventJSON struct {
	Timestamp   string `json:"timestamp"`
	Button      string `json:"button"`
	Held        bool   `json:"held"`
	Firing      int    `json:"firing"`
	Fingerprint string `json:"fingerprint"`
}

// CountsJSON is the JSON representation of event counts.
// PerButton always lists every known button.
type CountsJSON struct {
	Presses    int            `json:"presses"`
	Repeats    int            `json:"repeats"`
	Suppressed int            `json:"suppressed"`
	PerButton  map[string]int `json:"per_button"`
}

// DecoderJSON is the JSON representation of decoder statistics.
type DecoderJSON struct {
	Captures  int    `json:"captures"`
	Decoded   int    `json:"decoded"`
	Noise     int    `json:"noise"`
	Unknown   int    `json:"unknown"`
	Stale     int    `json:"stale"`
	Overflows int    `json:"overflows"`
	Summary   string `json:"summary"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	Chip        string `json:"chip"`
	Pin         int    `json:"pin"`
	PollMs      int64  `json:"poll_ms"`
	HeartbeatMs int64  `json:"heartbeat_ms"`
	Broker      string `json:"broker"`
	HTTPPort    string `json:"http_port"`
	Buttons     int    `json:"buttons"`
}

func buildInner(snap Snapshot) StatusInner {
	perButton := make(map[string]int, len(logic.Buttons))
	for _, b := range logic.Buttons {
		perButton[string(b)] = snap.Counts.PerButton[b]
	}

	inner := StatusInner{
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Presses:    snap.Counts.Presses,
			Repeats:    snap.Counts.Repeats,
			Suppressed: snap.Counts.Suppressed,
			PerButton:  perButton,
		},
		Decoder: DecoderJSON{
			Captures:  snap.Decoder.Captures,
			Decoded:   snap.Decoder.Decoded,
			Noise:     snap.Decoder.Noise,
			Unknown:   snap.Decoder.Unknown,
			Stale:     snap.Decoder.Stale,
			Overflows: snap.Decoder.Overflows,
			Summary:   snap.Decoder.String(),
		},
		Config: ConfigJSON{
			Chip:        snap.Config.Chip,
			Pin:         snap.Config.Pin,
			PollMs:      snap.Config.PollMs,
			HeartbeatMs: snap.Config.HeartbeatMs,
			Broker:      snap.Config.Broker,
			HTTPPort:    snap.Config.HTTPPort,
			Buttons:     snap.Config.Buttons,
		},
	}

	if snap.HasEvent {
		ev := snap.LastEvent
		inner.LastEvent = &LastEventJSON{
			Timestamp:   ev.Timestamp.UTC().Format(time.RFC3339Nano),
			Button:      string(ev.Button),
			Held:        ev.Held,
			Firing:      ev.Firing,
			Fingerprint: logic.FormatFingerprint(ev.Fingerprint),
		}
	}

	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
	return inner
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
