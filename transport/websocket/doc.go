// Package websocket provides WebSocket transport for the Puzzle Arcade.
//
// The websocket package implements:
//   - Session-aware WebSocket connections
//   - Automatic snapshot broadcasting on every engine change
//   - Connection lifecycle management
//
// Architecture:
//
// The package uses a hub-and-spoke model where a central Hub manages all
// WebSocket connections. Each client connection is handled by a read and a
// write goroutine that manage keepalive and cleanup.
//
// Message Protocol:
//
// Every frame is one JSON Message:
//
//	{"session_id": "ab12", "event": "state_update", "game_state": {"kind": "slide", "slide": {...}}}
//
// Clients only listen; actions go through the REST API or MCP tools.
//
// Session Integration:
//
// Clients pick a session with the ?session=ab12 query parameter. Hub.BroadcastToSession
// matches session.Observer, so the session manager pushes every snapshot an
// engine publishes (moves, timer ticks, delayed memory resolutions) straight
// to the clients watching that session.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//
//	sessions := session.NewManager(hub.BroadcastToSession)
//
// Concurrency:
//
// BroadcastToSession never blocks. A client whose buffer is full is dropped
// rather than stalling the engine that published the snapshot.
package websocket
