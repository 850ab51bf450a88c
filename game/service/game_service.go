package service

import (
	"context"
	"errors"
	"time"

	"github.com/wricardo/puzzle-arcade/game/engine"
)

var (
	// ErrWrongGame is returned when an action targets a session running another game
	ErrWrongGame = errors.New("action does not apply to this game")

	// ErrSessionNotFound and ErrThemeNotFound are shared with the session and
	// config packages so transports can map them to status codes
	ErrSessionNotFound = errors.New("session not found")
	ErrThemeNotFound   = errors.New("theme not found")
)

// GameService defines all game-related operations
type GameService interface {
	// Catalog
	ListGames(ctx context.Context) []*GameInfo

	// Session Management
	CreateSession(ctx context.Context, kind engine.Kind, themeName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Game Operations
	NewGame(ctx context.Context, sessionID string) (*ActionResult, error)
	SlideTile(ctx context.Context, sessionID string, index int) (*ActionResult, error)
	TapCard(ctx context.Context, sessionID string, cardID int) (*ActionResult, error)
	SwapTiles(ctx context.Context, sessionID string, from, to engine.Position) (*ActionResult, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*engine.Snapshot, error)

	// Themes
	ListThemes(ctx context.Context) ([]*ThemeInfo, error)
	LoadTheme(ctx context.Context, themeName string) (*engine.Theme, error)
	SaveTheme(ctx context.Context, themeName string, theme *engine.Theme) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, kind engine.Kind, theme *engine.Theme) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
}

// ConfigManager handles theme loading
type ConfigManager interface {
	LoadTheme(name string) (*engine.Theme, error)
	ListThemes() ([]*ThemeInfo, error)
	GetDefault() *engine.Theme
	SaveTheme(name string, theme *engine.Theme) error
}

// Session represents an active game session
type Session struct {
	ID             string
	Kind           engine.Kind
	Engine         engine.Engine
	Theme          *engine.Theme
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
