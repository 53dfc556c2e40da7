package feed

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func newTestHub(t *testing.T, opts ...Option) (*Hub, string) {
	t.Helper()
	opts = append([]Option{WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, opts...)
	hub := New(opts...)
	srv := httptest.NewServer(hub)
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() != n {
		if time.Now().After(deadline) {
			t.Fatalf("ClientCount() = %d, want %d", hub.ClientCount(), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() error: %v", err)
	}
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("decode message: %v", err)
	}
	return msg
}

func TestPublish(t *testing.T) {
	hub, url := newTestHub(t)
	a := dial(t, url)
	b := dial(t, url)
	waitClients(t, hub, 2)

	hub.Publish("state", map[string]string{"path": "/account"})

	for _, conn := range []*websocket.Conn{a, b} {
		msg := readMessage(t, conn)
		if msg.Type != "state" {
			t.Errorf("Type = %q, want state", msg.Type)
		}
		data, ok := msg.Data.(map[string]any)
		if !ok || data["path"] != "/account" {
			t.Errorf("Data = %v", msg.Data)
		}
	}
}

func TestLateSubscriberGetsLastMessage(t *testing.T) {
	hub, url := newTestHub(t)

	hub.Publish("state", "first")
	hub.Publish("state", "second")

	conn := dial(t, url)
	msg := readMessage(t, conn)
	if msg.Data != "second" {
		t.Errorf("Data = %v, want second", msg.Data)
	}
	waitClients(t, hub, 1)
}

func TestDisconnectRemovesClient(t *testing.T) {
	hub, url := newTestHub(t)
	conn := dial(t, url)
	waitClients(t, hub, 1)

	conn.Close()
	waitClients(t, hub, 0)

	// Publishing with no clients is a no-op.
	hub.Publish("state", nil)
}

func TestClose(t *testing.T) {
	hub, url := newTestHub(t)
	conn := dial(t, url)
	waitClients(t, hub, 1)

	hub.Close()
	if hub.ClientCount() != 0 {
		t.Errorf("ClientCount() = %d after Close", hub.ClientCount())
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("expected closed connection")
	}

	// Publish after Close must not panic.
	hub.Publish("state", nil)
}

func TestWithQueueSize(t *testing.T) {
	hub := New(WithQueueSize(3))
	if hub.queueSize != 3 {
		t.Errorf("queueSize = %d, want 3", hub.queueSize)
	}
	hub = New(WithQueueSize(0))
	if hub.queueSize != DefaultQueueSize {
		t.Errorf("queueSize = %d, want default", hub.queueSize)
	}
}
