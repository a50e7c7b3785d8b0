package ws

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/kavia-common/surgical-schedule-management-system-1461-1484/internal/application"
)

func dialHub(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()
	server := httptest.NewServer(hub)
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) frame {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg frame
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg
}

func TestHubWelcomeAndBroadcast(t *testing.T) {
	hub := NewHub(nil, nil)
	conn := dialHub(t, hub)

	if msg := readFrame(t, conn); msg.Type != "welcome" {
		t.Fatalf("expected welcome frame, got %q", msg.Type)
	}

	hub.Broadcast(application.Event{
		Kind:    application.EventScheduleCreated,
		Payload: application.ScheduleEventPayload{ID: "s1"},
	})

	msg := readFrame(t, conn)
	if msg.Type != string(application.EventScheduleCreated) {
		t.Fatalf("expected schedule.created frame, got %q", msg.Type)
	}
	if msg.TS.IsZero() {
		t.Fatal("expected a timestamp on the frame")
	}
}

func TestHubPingPong(t *testing.T) {
	hub := NewHub(nil, nil)
	conn := dialHub(t, hub)
	readFrame(t, conn)

	if err := conn.WriteJSON(map[string]string{"type": "ping"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if msg := readFrame(t, conn); msg.Type != "pong" {
		t.Fatalf("expected pong, got %q", msg.Type)
	}
}

func TestHubDropsSlowClients(t *testing.T) {
	hub := NewHub(nil, nil)
	dialHub(t, hub)

	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	// Flood well past the send buffer without the client reading. Broadcast
	// must stay non-blocking and eventually shed the client.
	done := make(chan struct{})
	go func() {
		for i := 0; i < sendBufferSize*4; i++ {
			hub.Broadcast(application.Event{Kind: application.EventScheduleUpdated})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("broadcast blocked on a slow client")
	}
}
