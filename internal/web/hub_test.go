package web

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/sweeney/ir-remote/internal/logic"
)

func dialHub(t *testing.T, url string, hub *Hub) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(url, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", wsURL, err)
	}
	t.Cleanup(func() { conn.Close() })

	// registration happens on the server goroutine after the handshake
	deadline := time.Now().Add(2 * time.Second)
	for hub.Clients() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(time.Millisecond)
	}
	return conn
}

func TestHubDeliversEvents(t *testing.T) {
	ts, _, hub := newTestServer(t)
	conn := dialHub(t, ts.URL, hub)

	ev := logic.ButtonEvent{
		Timestamp:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Button:      logic.ButtonDown,
		Held:        true,
		Firing:      2,
		Fingerprint: 0x6513270E,
	}
	if err := hub.Send(ev); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	mt, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if mt != websocket.TextMessage {
		t.Errorf("expected text message, got %d", mt)
	}

	var msg EventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	want := EventJSON{
		Timestamp:   "2026-03-01T12:00:00Z",
		Button:      "DOWN",
		Held:        true,
		Firing:      2,
		Fingerprint: "0x6513270E",
	}
	if msg.Remote != want {
		t.Errorf("got %+v, want %+v", msg.Remote, want)
	}
}

func TestHubSendWithoutClients(t *testing.T) {
	hub := NewHub()
	if err := hub.Send(logic.ButtonEvent{Button: logic.ButtonUp}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hub.Dropped() != 0 {
		t.Errorf("nothing to drop without clients, got %d", hub.Dropped())
	}
}

func TestHubDropsForSlowClient(t *testing.T) {
	hub := NewHub()
	// a registered client with no writer behaves like a stalled connection
	c := &wsClient{send: make(chan []byte, sendQueue)}
	hub.clients[c] = struct{}{}

	for i := 0; i < sendQueue+5; i++ {
		hub.Send(logic.ButtonEvent{Button: logic.ButtonUp, Firing: i + 1})
	}

	if len(c.send) != sendQueue {
		t.Errorf("expected %d queued, got %d", sendQueue, len(c.send))
	}
	if hub.Dropped() != 5 {
		t.Errorf("expected 5 dropped, got %d", hub.Dropped())
	}
}

func TestHubUnregistersOnClose(t *testing.T) {
	ts, _, hub := newTestServer(t)
	conn := dialHub(t, ts.URL, hub)

	conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.Clients() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never unregistered")
		}
		time.Sleep(time.Millisecond)
	}

	// sending after the client left must not panic
	hub.Send(logic.ButtonEvent{Button: logic.ButtonUp})
}

func TestHubCloseDisconnectsClients(t *testing.T) {
	ts, _, hub := newTestServer(t)
	conn := dialHub(t, ts.URL, hub)

	hub.Close()

	if hub.Clients() != 0 {
		t.Errorf("expected no clients after close, got %d", hub.Clients())
	}
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("expected read error after hub close")
	}
}
