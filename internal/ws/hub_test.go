package ws

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"
)

func testHub() *Hub {
	return NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// mockClient creates a Client with a send channel but no real connection.
func mockClient(hub *Hub) *Client {
	return &Client{hub: hub, send: make(chan []byte, sendBufferSize)}
}

func TestRegisterUnregister(t *testing.T) {
	hub := testHub()

	c1 := mockClient(hub)
	c2 := mockClient(hub)
	hub.Register(c1)
	hub.Register(c2)
	if got := hub.ClientCount(); got != 2 {
		t.Fatalf("expected 2 clients, got %d", got)
	}

	hub.Unregister(c1)
	// Double unregister must not panic.
	hub.Unregister(c1)
	if got := hub.ClientCount(); got != 1 {
		t.Fatalf("expected 1 client, got %d", got)
	}
}

func TestBroadcastStatus(t *testing.T) {
	hub := testHub()
	c := mockClient(hub)
	hub.Register(c)

	hub.Broadcast(StatusMessage("syncing"))

	select {
	case data := <-c.send:
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if msg.Type != "sync_status" || msg.State != "syncing" {
			t.Errorf("msg = %+v", msg)
		}
	default:
		t.Fatal("expected a queued message")
	}
}

func TestBroadcastSkipsFullBuffers(t *testing.T) {
	hub := testHub()
	c := mockClient(hub)
	hub.Register(c)

	// Fill the buffer, then broadcast once more; the hub must not block.
	for i := 0; i < sendBufferSize; i++ {
		hub.Broadcast(StatusMessage("online"))
	}
	hub.Broadcast(StatusMessage("offline"))

	if got := len(c.send); got != sendBufferSize {
		t.Errorf("buffered = %d, want %d", got, sendBufferSize)
	}
}
