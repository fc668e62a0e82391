package status

import (
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sweeney/ir-remote/internal/decoder"
	"github.com/sweeney/ir-remote/internal/logic"
)

func TestNewTracker(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := Config{Chip: "gpiochip0", Pin: 23, PollMs: 10, Broker: "tcp://localhost:1883", HTTPPort: ":80"}
	tr := NewTracker(start, cfg)

	snap := tr.Snapshot()
	if !snap.StartTime.Equal(start) {
		t.Errorf("StartTime: got %v, want %v", snap.StartTime, start)
	}
	if snap.Config.Pin != 23 {
		t.Errorf("Config.Pin: got %d, want 23", snap.Config.Pin)
	}
	if snap.HasEvent {
		t.Error("expected no event initially")
	}
	if snap.MQTTConnected {
		t.Error("expected MQTTConnected=false initially")
	}
}

func TestRecordEvent(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})
	ev := logic.ButtonEvent{Timestamp: time.Now(), Button: logic.ButtonLeft, Held: true, Firing: 4, Fingerprint: 0xA6A3A450}

	tr.RecordEvent(ev)

	snap := tr.Snapshot()
	if !snap.HasEvent {
		t.Fatal("expected HasEvent=true")
	}
	if snap.LastEvent != ev {
		t.Errorf("LastEvent: got %+v, want %+v", snap.LastEvent, ev)
	}
}

func TestUpdateAndSnapshot(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})
	counts := logic.EventCounts{Presses: 3, Repeats: 7, PerButton: map[logic.Button]int{logic.ButtonUp: 10}}

	tr.Update(counts, decoder.Stats{Captures: 12, Decoded: 10})

	snap := tr.Snapshot()
	if snap.Counts.Presses != 3 || snap.Counts.Repeats != 7 {
		t.Errorf("Counts: got %+v", snap.Counts)
	}
	if snap.Counts.PerButton[logic.ButtonUp] != 10 {
		t.Errorf("PerButton[UP]: got %d, want 10", snap.Counts.PerButton[logic.ButtonUp])
	}
	if snap.Decoder.Captures != 12 || snap.Decoder.Decoded != 10 {
		t.Errorf("Decoder: got %+v", snap.Decoder)
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})
	counts := logic.EventCounts{PerButton: map[logic.Button]int{logic.ButtonUp: 1}}
	tr.Update(counts, decoder.Stats{})

	counts.PerButton[logic.ButtonUp] = 99
	snap := tr.Snapshot()
	snap.Counts.PerButton[logic.ButtonDown] = 5

	again := tr.Snapshot()
	if again.Counts.PerButton[logic.ButtonUp] != 1 {
		t.Error("tracker shares the caller's map")
	}
	if again.Counts.PerButton[logic.ButtonDown] != 0 {
		t.Error("snapshot shares the tracker's map")
	}
}

func TestSetMQTTConnectedAndNetwork(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})
	tr.SetMQTTConnected(true)
	tr.SetNetwork(&NetworkInfo{Type: "wifi", IP: "192.168.1.50"})

	snap := tr.Snapshot()
	if !snap.MQTTConnected {
		t.Error("expected MQTTConnected=true")
	}
	if snap.Network == nil || snap.Network.IP != "192.168.1.50" {
		t.Errorf("unexpected network: %+v", snap.Network)
	}
}

func TestSnapshotUptime(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	snap := Snapshot{StartTime: start, Now: start.Add(90 * time.Second)}
	if snap.Uptime() != 90*time.Second {
		t.Errorf("Uptime: got %v, want 90s", snap.Uptime())
	}
}

func testSnapshot() Snapshot {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return Snapshot{
		LastEvent: logic.ButtonEvent{
			Timestamp:   start.Add(10 * time.Minute),
			Button:      logic.ButtonVal,
			Firing:      1,
			Fingerprint: 0x128B2F33,
		},
		HasEvent: true,
		Counts: logic.EventCounts{
			Presses:    5,
			Repeats:    9,
			Suppressed: 2,
			PerButton:  map[logic.Button]int{logic.ButtonVal: 4, logic.ButtonUp: 10},
		},
		Decoder:       decoder.Stats{Captures: 20, Decoded: 16, Noise: 3, Unknown: 1},
		StartTime:     start,
		Now:           start.Add(15 * time.Minute),
		MQTTConnected: true,
		Config:        Config{Chip: "gpiochip0", Pin: 23, PollMs: 10, HeartbeatMs: 900000, Broker: "tcp://localhost:1883", HTTPPort: ":80", Buttons: 8},
	}
}

func TestFormatJSON(t *testing.T) {
	data := FormatJSON(testSnapshot())

	var parsed StatusJSON
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	s := parsed.Status

	if s.UptimeSeconds != 900 {
		t.Errorf("UptimeSeconds: got %d, want 900", s.UptimeSeconds)
	}
	if !s.MQTT.Connected || s.MQTT.Broker != "tcp://localhost:1883" {
		t.Errorf("unexpected MQTT status: %+v", s.MQTT)
	}
	if s.LastEvent == nil {
		t.Fatal("expected last_event")
	}
	if s.LastEvent.Button != "VAL" || s.LastEvent.Fingerprint != "0x128B2F33" {
		t.Errorf("unexpected last event: %+v", s.LastEvent)
	}
	if s.Counts.Presses != 5 || s.Counts.Repeats != 9 || s.Counts.Suppressed != 2 {
		t.Errorf("unexpected counts: %+v", s.Counts)
	}
	if len(s.Counts.PerButton) != len(logic.Buttons) {
		t.Errorf("expected every button listed, got %v", s.Counts.PerButton)
	}
	if s.Counts.PerButton["UP"] != 10 || s.Counts.PerButton["MENU"] != 0 {
		t.Errorf("unexpected per-button counts: %v", s.Counts.PerButton)
	}
	if s.Decoder.Captures != 20 || s.Decoder.Noise != 3 {
		t.Errorf("unexpected decoder stats: %+v", s.Decoder)
	}
	if s.Decoder.Summary != "captures: 20, decoded: 16 (80.0%)" {
		t.Errorf("unexpected decoder summary: %q", s.Decoder.Summary)
	}
	if s.Config.Chip != "gpiochip0" || s.Config.Pin != 23 || s.Config.Buttons != 8 {
		t.Errorf("unexpected config: %+v", s.Config)
	}
	if s.Event != "" || s.Reason != "" {
		t.Errorf("web format should not carry event/reason, got %q/%q", s.Event, s.Reason)
	}
	if s.Network != nil {
		t.Error("network should be omitted when nil")
	}
}

func TestFormatJSONWithoutEvent(t *testing.T) {
	snap := testSnapshot()
	snap.HasEvent = false

	data := FormatJSON(snap)
	if strings.Contains(string(data), "last_event") {
		t.Errorf("last_event should be omitted before the first press:\n%s", data)
	}
}

func TestFormatStatusEvent(t *testing.T) {
	data := FormatStatusEvent(testSnapshot(), "SHUTDOWN", "SIGTERM")

	if strings.Contains(string(data), "\n") {
		t.Error("MQTT payload should be compact")
	}

	var parsed StatusJSON
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed.Status.Event != "SHUTDOWN" || parsed.Status.Reason != "SIGTERM" {
		t.Errorf("got event %q reason %q", parsed.Status.Event, parsed.Status.Reason)
	}
}

func TestFormatStatusEventOmitsReasonWhenEmpty(t *testing.T) {
	data := FormatStatusEvent(testSnapshot(), "STARTUP", "")

	var raw map[string]map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if _, ok := raw["status"]["reason"]; ok {
		t.Error("reason should be omitted when empty")
	}
	if raw["status"]["event"] != "STARTUP" {
		t.Errorf("unexpected event: %v", raw["status"]["event"])
	}
}

func TestFormatJSONWithNetwork(t *testing.T) {
	snap := testSnapshot()
	snap.Network = &NetworkInfo{Type: "wifi", IP: "10.0.0.5", Status: "up", Gateway: "10.0.0.1", WifiStatus: "connected", SSID: "MyNet"}

	var parsed StatusJSON
	if err := json.Unmarshal(FormatJSON(snap), &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed.Status.Network == nil {
		t.Fatal("expected network")
	}
	if parsed.Status.Network.SSID != "MyNet" || parsed.Status.Network.Gateway != "10.0.0.1" {
		t.Errorf("unexpected network: %+v", parsed.Status.Network)
	}
}

func TestConcurrentAccess(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			tr.Update(logic.EventCounts{Presses: i, PerButton: map[logic.Button]int{logic.ButtonUp: i}}, decoder.Stats{Captures: i})
			tr.RecordEvent(logic.ButtonEvent{Button: logic.ButtonUp, Firing: i})
			tr.SetMQTTConnected(i%2 == 0)
			tr.SetNetwork(&NetworkInfo{IP: "1.2.3.4"})
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			snap := tr.Snapshot()
			_ = FormatJSON(snap)
		}
	}()

	wg.Wait()
}
