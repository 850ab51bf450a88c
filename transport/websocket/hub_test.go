package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wricardo/puzzle-arcade/game/engine"
)

func slideSnapshot(moves int) engine.Snapshot {
	return engine.Snapshot{
		Kind: engine.KindSlide,
		Slide: &engine.SlideState{
			Tiles: []int{1, 2, 3, 4, 5, 6, 7, 0, 8},
			Moves: moves,
		},
	}
}

func newTestClient(hub *Hub, sessionID string, buffer int) *Client {
	return &Client{
		hub:       hub,
		sessionID: sessionID,
		send:      make(chan []byte, buffer),
	}
}

func TestNewHub(t *testing.T) {
	hub := NewHub()

	if hub == nil {
		t.Fatal("NewHub() returned nil")
	}
	if hub.sessions == nil {
		t.Error("Hub sessions map is nil")
	}
	if hub.broadcast == nil || hub.register == nil || hub.unregister == nil {
		t.Error("Hub channels are not initialized")
	}
}

func TestHubRegisterUnregister(t *testing.T) {
	hub := NewHub()
	client := newTestClient(hub, "test-session", 256)

	hub.registerClient(client)
	if hub.ClientCount("test-session") != 1 {
		t.Errorf("Expected 1 client in session, got %d", hub.ClientCount("test-session"))
	}

	hub.unregisterClient(client)
	if _, exists := hub.sessions["test-session"]; exists {
		t.Error("Session should have been cleaned up after last client unregistered")
	}

	// A second unregister must not close the channel twice
	hub.unregisterClient(client)
}

func TestHubMultipleClientsInSession(t *testing.T) {
	hub := NewHub()
	sessionID := "multi"

	client1 := newTestClient(hub, sessionID, 256)
	client2 := newTestClient(hub, sessionID, 256)
	hub.registerClient(client1)
	hub.registerClient(client2)

	if hub.ClientCount(sessionID) != 2 {
		t.Errorf("Expected 2 clients in session, got %d", hub.ClientCount(sessionID))
	}

	hub.unregisterClient(client1)
	if !hub.sessions[sessionID][client2] {
		t.Error("client2 should still be registered")
	}
}

func TestHubBroadcastToSession(t *testing.T) {
	hub := NewHub()
	client := newTestClient(hub, "ab12", 256)
	other := newTestClient(hub, "cd34", 256)
	hub.registerClient(client)
	hub.registerClient(other)

	// Session IDs are matched case-insensitively
	hub.BroadcastToSession("AB12", slideSnapshot(7))

	select {
	case data := <-client.send:
		var message Message
		if err := json.Unmarshal(data, &message); err != nil {
			t.Fatalf("Failed to unmarshal message: %v", err)
		}
		if message.Event != EventStateUpdate {
			t.Errorf("Expected event %q, got %q", EventStateUpdate, message.Event)
		}
		if message.GameState == nil || message.GameState.Kind != engine.KindSlide {
			t.Fatalf("Expected slide snapshot, got %+v", message.GameState)
		}
		if message.GameState.Slide.Moves != 7 {
			t.Errorf("Expected 7 moves, got %d", message.GameState.Slide.Moves)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("No message received within timeout")
	}

	select {
	case <-other.send:
		t.Error("Client of another session received the broadcast")
	default:
	}
}

func TestHubDropsSlowClient(t *testing.T) {
	hub := NewHub()
	slow := newTestClient(hub, "slow", 1)
	hub.registerClient(slow)

	hub.BroadcastToSession("slow", slideSnapshot(1))
	hub.BroadcastToSession("slow", slideSnapshot(2))

	if hub.ClientCount("slow") != 0 {
		t.Error("Expected slow client to be dropped")
	}
	<-slow.send
	if _, ok := <-slow.send; ok {
		t.Error("Expected send channel to be closed")
	}
}

func TestHubConcurrentBroadcasts(t *testing.T) {
	hub := NewHub()
	client := newTestClient(hub, "busy", 1024)
	hub.registerClient(client)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			hub.BroadcastToSession("busy", slideSnapshot(n))
		}(i)
		go func() {
			defer wg.Done()
			c := newTestClient(hub, "busy", 1)
			hub.registerClient(c)
			hub.unregisterClient(c)
		}()
	}
	wg.Wait()

	if len(client.send) != 50 {
		t.Errorf("Expected 50 queued messages, got %d", len(client.send))
	}
}

func TestHubBroadcastEvent(t *testing.T) {
	hub := NewHub()
	client := newTestClient(hub, "event-test", 256)
	hub.registerClient(client)
	go hub.Run()

	hub.BroadcastEvent("event-test", "session_deleted", "bye")

	select {
	case data := <-client.send:
		var message Message
		if err := json.Unmarshal(data, &message); err != nil {
			t.Fatalf("Failed to unmarshal message: %v", err)
		}
		if message.Event != "session_deleted" || message.Data != "bye" {
			t.Errorf("Unexpected message %+v", message)
		}
		if message.GameState != nil {
			t.Error("Custom events carry no game state")
		}
	case <-time.After(time.Second):
		t.Error("No broadcast message received within timeout")
	}
}

func TestWebSocketRoundTrip(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, r.URL.Query().Get("session"))
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?session=ws01"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(time.Second)
	for hub.ClientCount("ws01") != 1 {
		if time.Now().After(deadline) {
			t.Fatal("Client was not registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	hub.BroadcastToSession("ws01", slideSnapshot(3))
	hub.BroadcastToSession("ws01", slideSnapshot(4))

	conn.SetReadDeadline(time.Now().Add(time.Second))
	for _, want := range []int{3, 4} {
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("Failed to read WebSocket message: %v", err)
		}
		var message Message
		if err := json.Unmarshal(data, &message); err != nil {
			t.Fatalf("Each frame should hold one JSON message: %v", err)
		}
		if message.GameState.Slide.Moves != want {
			t.Errorf("Expected moves %d, got %d", want, message.GameState.Slide.Moves)
		}
	}

	conn.Close()
	deadline = time.Now().Add(time.Second)
	for hub.ClientCount("ws01") != 0 {
		if time.Now().After(deadline) {
			t.Fatal("Session should have been cleaned up after WebSocket close")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
