package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/wricardo/puzzle-arcade/game/engine"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	mu       sync.RWMutex
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
	}
}

// ListGames returns the playable games in menu order
func (s *gameServiceImpl) ListGames(ctx context.Context) []*GameInfo {
	kinds := engine.Kinds()
	games := make([]*GameInfo, 0, len(kinds))
	for _, k := range kinds {
		title, desc := engine.Describe(k)
		games = append(games, &GameInfo{Kind: k, Title: title, Description: desc})
	}
	return games
}

// CreateSession starts a new session running the given game
func (s *gameServiceImpl) CreateSession(ctx context.Context, kind engine.Kind, themeName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var theme *engine.Theme
	if themeName != "" {
		var err error
		theme, err = s.configs.LoadTheme(themeName)
		if err != nil {
			if errors.Is(err, ErrThemeNotFound) {
				return nil, s.themeNotFound(themeName)
			}
			return nil, fmt.Errorf("failed to load theme %s: %w", themeName, err)
		}
	} else {
		theme = s.configs.GetDefault()
	}

	// Let session manager generate a proper 4-character ID
	session, err := s.sessions.Create("", kind, theme)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return s.sessionInfo(session), nil
}

// themeNotFound lists the available themes alongside the error
func (s *gameServiceImpl) themeNotFound(name string) error {
	available, err := s.configs.ListThemes()
	if err != nil || len(available) == 0 {
		return fmt.Errorf("%w: '%s'. Use /api/themes to list available themes", ErrThemeNotFound, name)
	}
	ids := make([]string, 0, len(available))
	for _, t := range available {
		ids = append(ids, t.ThemeID)
	}
	return fmt.Errorf("%w: '%s'. Available themes: %v", ErrThemeNotFound, name, ids)
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, err := s.touch(sessionID)
	if err != nil {
		return nil, err
	}
	return s.sessionInfo(session), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess))
	}
	return result, nil
}

// DeleteSession removes a session and stops its timers
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sessions.Delete(sessionID)
}

// NewGame restarts the session's game from a fresh board
func (s *gameServiceImpl) NewGame(ctx context.Context, sessionID string) (*ActionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.touch(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Engine.StartNewGame()
	snap := sess.Engine.Snapshot()
	title, _ := engine.Describe(sess.Kind)
	msg := fmt.Sprintf("New %s game started", title)
	return &ActionResult{
		Accepted:  true,
		GameState: &snap,
		Message:   msg,
		Events:    []GameEvent{newEvent(EventNewGame, msg)},
	}, nil
}

// GetGameState returns the current snapshot of a session's game
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.touch(sessionID)
	if err != nil {
		return nil, err
	}
	snap := sess.Engine.Snapshot()
	return &snap, nil
}

// SlideTile moves the tile at index into the empty slot of a slide puzzle
func (s *gameServiceImpl) SlideTile(ctx context.Context, sessionID string, index int) (*ActionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.touch(sessionID)
	if err != nil {
		return nil, err
	}
	puzzle, ok := sess.Engine.(*engine.SlidePuzzle)
	if !ok {
		return nil, wrongGame("slide_tile", sess.Kind)
	}

	before := puzzle.State()
	accepted := puzzle.SlideTile(index)
	snap := puzzle.Snapshot()
	result := &ActionResult{Accepted: accepted, GameState: &snap}

	switch {
	case !accepted && before.IsSolved:
		result.Message = "Puzzle already solved. Start a new game to play again"
	case !accepted:
		result.Message = fmt.Sprintf("Tile at index %d cannot move", index)
	default:
		result.Message = fmt.Sprintf("Moved tile %d", before.Tiles[index])
		result.Events = append(result.Events, newEvent(EventSlide, result.Message))
		if snap.Slide.IsSolved {
			result.Message = fmt.Sprintf("Solved in %d moves (%s)!", snap.Slide.Moves, snap.Slide.Elapsed)
			result.Events = append(result.Events, newEvent(EventSolved, result.Message))
		}
	}
	return result, nil
}

// TapCard flips a memory card. The second card of a turn is resolved
// engine.ResolveDelay later; the result reports whether the pair will match.
func (s *gameServiceImpl) TapCard(ctx context.Context, sessionID string, cardID int) (*ActionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.touch(sessionID)
	if err != nil {
		return nil, err
	}
	game, ok := sess.Engine.(*engine.MemoryMatch)
	if !ok {
		return nil, wrongGame("tap_card", sess.Kind)
	}

	accepted := game.TapCard(cardID)
	snap := game.Snapshot()
	st := snap.Memory
	result := &ActionResult{Accepted: accepted, GameState: &snap}

	if !accepted {
		switch {
		case st.IsWon:
			result.Message = "Game already won. Start a new game to play again"
		case !st.AcceptingInput:
			result.Message = "A pair is resolving, try again shortly"
		default:
			result.Message = fmt.Sprintf("Card %d cannot be flipped", cardID)
		}
		return result, nil
	}

	for _, c := range st.Cards {
		if c.ID == cardID {
			result.Message = fmt.Sprintf("Flipped card %d: %s", cardID, c.Symbol)
			break
		}
	}
	result.Events = append(result.Events, newEvent(EventFlip, result.Message))

	if st.AcceptingInput {
		return result, nil
	}
	var revealed []engine.Card
	for _, c := range st.Cards {
		if c.IsFlipped && !c.IsMatched {
			revealed = append(revealed, c)
		}
	}
	result.Events = append(result.Events, newEvent(EventPairPending,
		fmt.Sprintf("Resolving in %s", engine.ResolveDelay)))
	if len(revealed) == 2 && revealed[0].Symbol == revealed[1].Symbol {
		result.Message = fmt.Sprintf("Match! %s", revealed[0].Symbol)
		result.Events = append(result.Events, newEvent(EventMatch, result.Message))
		if st.Matches == st.TotalPairs-1 {
			result.Events = append(result.Events, newEvent(EventWin,
				fmt.Sprintf("All %d pairs found in %d moves!", st.TotalPairs, st.Moves)))
		}
	} else {
		result.Message = "No match, cards will turn back"
		result.Events = append(result.Events, newEvent(EventNoMatch, result.Message))
	}
	return result, nil
}

// SwapTiles swaps two adjacent tiles of a match-3 game
func (s *gameServiceImpl) SwapTiles(ctx context.Context, sessionID string, from, to engine.Position) (*ActionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.touch(sessionID)
	if err != nil {
		return nil, err
	}
	game, ok := sess.Engine.(*engine.TileMatch)
	if !ok {
		return nil, wrongGame("swap_tiles", sess.Kind)
	}

	before := game.State()
	accepted := game.SwapTiles(from, to)
	snap := game.Snapshot()
	st := snap.TileMatch
	result := &ActionResult{Accepted: accepted, GameState: &snap, Message: st.Message}

	switch {
	case before.IsGameOver:
		result.Message = "Game over. Start a new game to play again"
	case !from.In(engine.TileGridSize) || !to.In(engine.TileGridSize) || !from.Adjacent(to):
		result.Message = "Tiles must be adjacent and inside the grid"
	case !accepted:
		result.Events = append(result.Events, newEvent(EventNoMatch, st.Message))
	default:
		result.Events = append(result.Events, newEvent(EventMatch,
			fmt.Sprintf("Match! +%d", st.Score-before.Score)))
		if st.IsGameOver {
			result.Events = append(result.Events, newEvent(EventWin,
				fmt.Sprintf("Reached %d points in %d moves", st.Score, st.MovesCount)))
		}
	}
	return result, nil
}

// ListThemes returns all available themes
func (s *gameServiceImpl) ListThemes(ctx context.Context) ([]*ThemeInfo, error) {
	return s.configs.ListThemes()
}

// LoadTheme loads a theme by name
func (s *gameServiceImpl) LoadTheme(ctx context.Context, themeName string) (*engine.Theme, error) {
	return s.configs.LoadTheme(themeName)
}

// SaveTheme validates and stores a theme
func (s *gameServiceImpl) SaveTheme(ctx context.Context, themeName string, theme *engine.Theme) error {
	return s.configs.SaveTheme(themeName, theme)
}

// touch refreshes a session's last access time and returns its current record
func (s *gameServiceImpl) touch(sessionID string) (*Session, error) {
	if err := s.sessions.UpdateLastAccessed(sessionID); err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}
	return sess, nil
}

func (s *gameServiceImpl) sessionInfo(sess *Session) *SessionInfo {
	title, _ := engine.Describe(sess.Kind)
	snap := sess.Engine.Snapshot()
	info := &SessionInfo{
		ID:             sess.ID,
		Kind:           sess.Kind,
		Title:          title,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      &snap,
	}
	if sess.Theme != nil {
		info.ThemeName = sess.Theme.Name
	}
	return info
}

func wrongGame(action string, kind engine.Kind) error {
	return fmt.Errorf("%w: %s is not available in a %s session", ErrWrongGame, action, kind)
}

func newEvent(typ, msg string) GameEvent {
	return GameEvent{Type: typ, Message: msg, Timestamp: time.Now()}
}
