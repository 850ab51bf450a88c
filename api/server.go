package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/wricardo/puzzle-arcade/game/engine"
	"github.com/wricardo/puzzle-arcade/game/service"
	"github.com/wricardo/puzzle-arcade/transport/websocket"
)

// Server represents the REST API server
type Server struct {
	service service.GameService
	hub     *websocket.Hub
	router  *mux.Router
}

// NewServer creates a new API server. hub may be nil when WebSocket updates are not wanted.
func NewServer(gameService service.GameService, hub *websocket.Hub) *Server {
	s := &Server{
		service: gameService,
		hub:     hub,
		router:  mux.NewRouter(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	// Catalog
	api.HandleFunc("/games", s.handleListGames).Methods("GET")

	// Session management
	api.HandleFunc("/sessions", s.handleCreateSession).Methods("POST")
	api.HandleFunc("/sessions", s.handleListSessions).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleDeleteSession).Methods("DELETE")

	// Game operations
	api.HandleFunc("/sessions/{id}/state", s.handleGetGameState).Methods("GET")
	api.HandleFunc("/sessions/{id}/new-game", s.handleNewGame).Methods("POST")
	api.HandleFunc("/sessions/{id}/slide", s.handleSlide).Methods("POST")
	api.HandleFunc("/sessions/{id}/tap", s.handleTap).Methods("POST")
	api.HandleFunc("/sessions/{id}/swap", s.handleSwap).Methods("POST")

	// Themes
	api.HandleFunc("/themes", s.handleListThemes).Methods("GET")
	api.HandleFunc("/themes", s.handleCreateTheme).Methods("POST")
	api.HandleFunc("/themes/{name}", s.handleGetTheme).Methods("GET")

	// WebSocket
	s.router.HandleFunc("/ws", s.handleWebSocket)

	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps service and engine errors onto status codes
func respondServiceError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrSessionNotFound), errors.Is(err, service.ErrThemeNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrWrongGame):
		status = http.StatusConflict
	case errors.Is(err, engine.ErrUnknownKind), errors.Is(err, engine.ErrInvalidTheme):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg("request failed")
	}
	respondError(w, status, err.Error())
}

// Catalog Handlers

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.service.ListGames(r.Context()))
}

// Session Handlers

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Game  string `json:"game"`
		Theme string `json:"theme,omitempty"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Game == "" {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("game is required, one of %v", engine.Kinds()))
		return
	}
	kind, err := engine.ParseKind(req.Game)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	session, err := s.service.CreateSession(r.Context(), kind, req.Theme)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	log.Info().Str("session", session.ID).Str("game", string(kind)).Str("theme", session.ThemeName).Msg("session created")
	respondJSON(w, http.StatusCreated, session)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.service.ListSessions(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	query := r.URL.Query()
	sortBy := query.Get("sort")    // "created", "accessed" (default)
	order := query.Get("order")    // "asc", "desc" (default: "desc")
	limitStr := query.Get("limit") // number of sessions to return
	total := len(sessions)

	if sortBy == "" {
		sortBy = "accessed"
	}
	if order == "" {
		order = "desc"
	}

	if game := query.Get("game"); game != "" {
		kind, err := engine.ParseKind(game)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		filtered := sessions[:0]
		for _, sess := range sessions {
			if sess.Kind == kind {
				filtered = append(filtered, sess)
			}
		}
		sessions = filtered
	}

	sort.Slice(sessions, func(i, j int) bool {
		var ti, tj time.Time
		if sortBy == "created" {
			ti, tj = sessions[i].CreatedAt, sessions[j].CreatedAt
		} else {
			ti, tj = sessions[i].LastAccessedAt, sessions[j].LastAccessedAt
		}

		if order == "asc" {
			return ti.Before(tj)
		}
		return ti.After(tj)
	})

	if limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l < len(sessions) {
			sessions = sessions[:l]
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(sessions),
		"total":    total,
		"sessions": sessions,
		"sort":     sortBy,
		"order":    order,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.service.GetSession(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, session)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	if err := s.service.DeleteSession(r.Context(), sessionID); err != nil {
		respondServiceError(w, err)
		return
	}

	if s.hub != nil {
		s.hub.BroadcastEvent(sessionID, "session_deleted", nil)
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Session %s deleted", sessionID),
	})
}

// Game Operation Handlers

func (s *Server) handleGetGameState(w http.ResponseWriter, r *http.Request) {
	state, err := s.service.GetGameState(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, state)
}

func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	result, err := s.service.NewGame(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleSlide(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		Index *int `json:"index"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Index == nil {
		respondError(w, http.StatusBadRequest, "Invalid request body, expected {\"index\": 0-8}")
		return
	}

	result, err := s.service.SlideTile(r.Context(), sessionID, *req.Index)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	log.Debug().Str("session", sessionID).Int("index", *req.Index).Bool("accepted", result.Accepted).Msg("slide")
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleTap(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		CardID *int `json:"card_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.CardID == nil {
		respondError(w, http.StatusBadRequest, "Invalid request body, expected {\"card_id\": 0-15}")
		return
	}

	result, err := s.service.TapCard(r.Context(), sessionID, *req.CardID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	log.Debug().Str("session", sessionID).Int("card", *req.CardID).Bool("accepted", result.Accepted).Msg("tap")
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleSwap(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		From *engine.Position `json:"from"`
		To   *engine.Position `json:"to"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.From == nil || req.To == nil {
		respondError(w, http.StatusBadRequest, "Invalid request body, expected {\"from\": {\"row\", \"col\"}, \"to\": {\"row\", \"col\"}}")
		return
	}

	result, err := s.service.SwapTiles(r.Context(), sessionID, *req.From, *req.To)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	log.Debug().Str("session", sessionID).Interface("from", req.From).Interface("to", req.To).
		Bool("accepted", result.Accepted).Msg("swap")
	respondJSON(w, http.StatusOK, result)
}

// Theme Handlers

func (s *Server) handleListThemes(w http.ResponseWriter, r *http.Request) {
	themes, err := s.service.ListThemes(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, themes)
}

func (s *Server) handleGetTheme(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	theme, err := s.service.LoadTheme(r.Context(), name)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, theme)
}

func (s *Server) handleCreateTheme(w http.ResponseWriter, r *http.Request) {
	var theme engine.Theme
	if err := json.NewDecoder(r.Body).Decode(&theme); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if theme.Name == "" {
		respondError(w, http.StatusBadRequest, "Theme name is required")
		return
	}
	if strings.ContainsAny(theme.Name, `/\.`) {
		respondError(w, http.StatusBadRequest, "Theme name must not contain path characters")
		return
	}

	if err := s.service.SaveTheme(r.Context(), theme.Name, &theme); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message":  "Theme saved successfully",
		"theme_id": theme.Name,
	})
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		http.Error(w, "WebSocket updates are disabled", http.StatusNotFound)
		return
	}

	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		http.Error(w, "session parameter required", http.StatusBadRequest)
		return
	}

	// Verify session exists
	if _, err := s.service.GetSession(r.Context(), sessionID); err != nil {
		http.Error(w, "Invalid session", http.StatusNotFound)
		return
	}

	s.hub.ServeWS(w, r, sessionID)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
