package service

import (
	"time"

	"github.com/wricardo/puzzle-arcade/game/engine"
)

// Event types reported in ActionResult.Events
const (
	EventSlide       = "slide"
	EventSolved      = "solved"
	EventFlip        = "flip"
	EventPairPending = "pair_pending"
	EventMatch       = "match"
	EventNoMatch     = "no_match"
	EventWin         = "win"
	EventNewGame     = "new_game"
)

// GameInfo describes a playable game for menus
type GameInfo struct {
	Kind        engine.Kind `json:"kind"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
}

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string           `json:"id"`
	Kind           engine.Kind      `json:"kind"`
	Title          string           `json:"title"`
	ThemeName      string           `json:"theme_name"`
	CreatedAt      time.Time        `json:"created_at"`
	LastAccessedAt time.Time        `json:"last_accessed_at"`
	GameState      *engine.Snapshot `json:"game_state"`
}

// ActionResult contains the outcome of a player action. Rejected input is not an
// error: Accepted is false and the state is unchanged.
type ActionResult struct {
	Accepted  bool             `json:"accepted"`
	GameState *engine.Snapshot `json:"game_state"`
	Message   string           `json:"message"`
	Events    []GameEvent      `json:"events,omitempty"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string    `json:"type"` // "slide", "solved", "flip", "pair_pending", "match", "no_match", "win", "new_game"
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// ThemeInfo provides information about a symbol theme
type ThemeInfo struct {
	Filename      string   `json:"filename"`
	ThemeID       string   `json:"theme_id"` // The identifier to use for session creation
	Name          string   `json:"name"`     // Display name
	Description   string   `json:"description"`
	MemorySymbols []string `json:"memory_symbols"`
	TileSymbols   []string `json:"tile_symbols"`
}
