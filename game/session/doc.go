// Package session provides session management for the Puzzle Arcade.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Unique session ID generation
//   - Forwarding engine snapshots to an observer
//   - Session cleanup and expiration
//
// Core Types:
//
// Manager is the main session manager that handles all session operations.
// Each session owns exactly one engine (slide, memory or tile match) together
// with the theme it was created with and its access timestamps.
//
// Session Identifiers:
//
// Sessions use 4-character hex IDs for easy reference. Lookups are
// case-insensitive. Generated IDs come from crypto/rand and are retried on
// collision.
//
// Observers:
//
// The observer passed to NewManager receives every snapshot an engine
// publishes, including timer ticks and delayed memory resolutions that happen
// outside any request. The WebSocket hub registers itself here.
//
// Usage:
//
//	manager := session.NewManager(hub.BroadcastToSession)
//	defer manager.CloseAll()
//
//	sess, err := manager.Create("", engine.KindSlide, nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//
// Cleanup:
//
// Deleting or expiring a session detaches its observer and closes its engine,
// which stops the elapsed timer and cancels any pending resolution. Sessions
// live in memory only.
package session
