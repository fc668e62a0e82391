// Package mqtt provides MQTT publishing with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/ir-remote/internal/logic"
)

// Topic is the MQTT topic for button events.
const Topic = "home/ir-remote/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "home/ir-remote/system"

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a button event to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event logic.ButtonEvent) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT", "RECONNECTED"
	Reason     string // e.g., "SIGTERM", "SIGINT", "MQTT_DISCONNECT"
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	Remote RemotePayload `json:"remote"`
}

// RemotePayload contains the button event details.
type RemotePayload struct {
	Timestamp   string `json:"timestamp"`
	Button      string `json:"button"`
	Held        bool   `json:"held"`
	Firing      int    `json:"firing"`
	Fingerprint string `json:"fingerprint"`
}

// FormatPayload creates the JSON payload for a button event.
func FormatPayload(event logic.ButtonEvent) ([]byte, error) {
	payload := Payload{
		Remote: RemotePayload{
			Timestamp:   event.Timestamp.UTC().Format(time.RFC3339Nano),
			Button:      string(event.Button),
			Held:        event.Held,
			Firing:      event.Firing,
			Fingerprint: logic.FormatFingerprint(event.Fingerprint),
		},
	}
	return json.Marshal(payload)
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT, RECONNECTED) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}
