package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/puzzle-arcade/game/engine"
	"github.com/wricardo/puzzle-arcade/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Puzzle Arcade",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Puzzle Arcade - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAMES:
- slide: 3x3 sliding puzzle, order tiles 1-8 with the blank last
- memory: 4x4 memory match, find all 8 pairs
- tilematch: 4x4 match-3, swap adjacent tiles to reach 500 points

AVAILABLE TOOLS:
- list_games: List the games
- create_session: Start a session for one game
- list_sessions / get_session / delete_session: Manage sessions
- game_state: Get the board of a session
- new_game: Deal a fresh game in the same session
- slide_tile: Slide puzzle move
- tap_card: Memory match move
- swap_tiles: Tile match move
- list_themes: List symbol themes
- game_instructions: Full rules and tips

Each action reports whether it was accepted. Rejected moves leave the board unchanged.`),
	)

	// Register all tools
	c.registerTools()
}

func sessionIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Catalog
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_games",
		Description: "List the games that can be played",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListGames)

	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session for one of the games",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"slide", "memory", "tilematch"},
					"description": "Game to play",
				},
				"theme": map[string]interface{}{
					"type":        "string",
					"description": "Name of the symbol theme to use (optional)",
				},
			},
			Required: []string{"game"},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game": map[string]interface{}{
					"type":        "string",
					"description": "Only list sessions of this game (optional)",
				},
			},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "delete_session",
		Description: "Delete a session and stop its timers",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleDeleteSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current board of a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "new_game",
		Description: "Start a fresh game in an existing session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleNewGame)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "slide_tile",
		Description: "Slide the tile at a board index into the blank. Only tiles next to the blank move.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"index": map[string]interface{}{
					"type":        "integer",
					"minimum":     0,
					"maximum":     8,
					"description": "Board index of the tile, 0-8 in row-major order",
				},
			},
			Required: []string{"session_id", "index"},
		},
	}, c.handleSlideTile)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "tap_card",
		Description: "Flip a memory card. The second card of a pair resolves after a short delay.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"card_id": map[string]interface{}{
					"type":        "integer",
					"minimum":     0,
					"maximum":     15,
					"description": "Card ID shown on the board",
				},
			},
			Required: []string{"session_id", "card_id"},
		},
	}, c.handleTapCard)

	position := func(what string) map[string]interface{} {
		return map[string]interface{}{
			"type":        "integer",
			"minimum":     0,
			"maximum":     3,
			"description": what,
		}
	}
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "swap_tiles",
		Description: "Swap two adjacent tiles. The swap only stays when it lines up three or more.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"from_row":   position("Row of the first tile"),
				"from_col":   position("Column of the first tile"),
				"to_row":     position("Row of the second tile"),
				"to_col":     position("Column of the second tile"),
			},
			Required: []string{"session_id", "from_row", "from_col", "to_row", "to_col"},
		},
	}, c.handleSwapTiles)

	// Themes
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_themes",
		Description: "List the symbol themes available for memory and tile match",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListThemes)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get the rules of every game and tips for playing them",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// Tool handlers

func (c *Client) handleListGames(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var games []service.GameInfo
	if err := c.apiCall(ctx, "GET", "/api/games", nil, &games); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Games:\n\n")
	for _, g := range games {
		fmt.Fprintf(&b, "• %s (%s)\n  %s\n\n", g.Title, g.Kind, g.Description)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	game, err := request.RequireString("game")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	body := map[string]string{"game": game}
	if theme := request.GetString("theme", ""); theme != "" {
		body["theme"] = theme
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nGame: %s\nTheme: %s\n\n%s",
		session.ID, session.Title, session.ThemeName, formatSnapshot(session.GameState))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	path := "/api/sessions"
	if game := request.GetString("game", ""); game != "" {
		path += "?game=" + url.QueryEscape(game)
	}

	if err := c.apiCall(ctx, "GET", path, nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		fmt.Fprintf(&b, "- %s (%s, Theme: %s, Created: %s)%s\n",
			s.ID, s.Kind, s.ThemeName, s.CreatedAt.Format("15:04:05"), finishedMarker(s.GameState))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleDeleteSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var response struct {
		Message string `json:"message"`
	}
	if err := c.apiCall(ctx, "DELETE", sessionPath(sessionID, ""), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(response.Message), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var state engine.Snapshot
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSnapshot(&state)), nil
}

func (c *Client) handleNewGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return c.action(ctx, sessionPath(sessionID, "/new-game"), nil)
}

func (c *Client) handleSlideTile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	index, err := request.RequireInt("index")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return c.action(ctx, sessionPath(sessionID, "/slide"), map[string]int{"index": index})
}

func (c *Client) handleTapCard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	cardID, err := request.RequireInt("card_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return c.action(ctx, sessionPath(sessionID, "/tap"), map[string]int{"card_id": cardID})
}

func (c *Client) handleSwapTiles(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var coords [4]int
	for i, name := range []string{"from_row", "from_col", "to_row", "to_col"} {
		if coords[i], err = request.RequireInt(name); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	body := map[string]engine.Position{
		"from": {Row: coords[0], Col: coords[1]},
		"to":   {Row: coords[2], Col: coords[3]},
	}
	return c.action(ctx, sessionPath(sessionID, "/swap"), body)
}

// action posts a game action and renders the result
func (c *Client) action(ctx context.Context, path string, body interface{}) (*mcp.CallToolResult, error) {
	var result service.ActionResult
	if err := c.apiCall(ctx, "POST", path, body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatActionResult(&result)), nil
}

func (c *Client) handleListThemes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var themes []service.ThemeInfo
	if err := c.apiCall(ctx, "GET", "/api/themes", nil, &themes); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Themes:\n\n")
	for _, t := range themes {
		fmt.Fprintf(&b, "• %s (theme: %s)\n", t.Name, t.ThemeID)
		if t.Description != "" {
			fmt.Fprintf(&b, "  %s\n", t.Description)
		}
		fmt.Fprintf(&b, "  Memory: %s\n  Tiles: %s\n\n",
			strings.Join(t.MemorySymbols, " "), strings.Join(t.TileSymbols, " "))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `🧩 Puzzle Arcade - Complete Instructions

Start with create_session and pick one of three games. Every session keeps
its own board and clock. Use new_game to play again in the same session.

SLIDE PUZZLE (game: slide):
• Board: 3x3, indexes 0-8 in row-major order, "." marks the blank
• Move: slide_tile with the index of a tile directly above, below, left or
  right of the blank. Any other index is ignored.
• Goal: 1 2 3 / 4 5 6 / 7 8 .
• The clock starts with the deal and stops when the puzzle is solved.
• Tip: solve the top row first, then the left column, then rotate the last
  2x2 block into place.

MEMORY MATCH (game: memory):
• Board: 16 face-down cards, 8 pairs. Cards are shown as [id ??] until flipped.
• Move: tap_card with a card ID. After the second card of a pair both stay
  visible for 0.6 seconds, then a match stays face up and a miss flips back.
• Taps during that delay, on flipped cards or on matched cards are ignored.
• Goal: match all 8 pairs. Moves count completed pairs.
• Tip: remember every symbol you have seen; call game_state after a miss.

TILE MATCH (game: tilematch):
• Board: 4x4 grid of four tile types. Rows and columns are numbered 0-3.
• Move: swap_tiles with two orthogonally adjacent positions.
• A swap that lines up three or more of a kind horizontally or vertically
  stays. Every tile in a line scores 50 points, the tiles above fall and new
  tiles drop in from the top. New lines formed by the refill do not score.
• A swap that makes no line is undone and reports "No match!".
• Goal: reach 500 points. The game then stops accepting swaps.

RESPONSES:
• Accepted: the move changed the board
• Rejected: the move was ignored and the board is unchanged
• Events list what happened (slide, solved, flip, match, no_match, win)

Good luck and have fun!`

	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Session: %s\nGame: %s (%s)\nTheme: %s\nCreated: %s\nLast Accessed: %s\n\n",
		session.ID, session.Title, session.Kind, session.ThemeName,
		session.CreatedAt.Format(time.RFC3339), session.LastAccessedAt.Format(time.RFC3339))
	b.WriteString(formatSnapshot(session.GameState))
	return b.String()
}

func finishedMarker(snap *engine.Snapshot) string {
	if snap != nil && snap.Finished() {
		return " [finished]"
	}
	return ""
}

func formatActionResult(result *service.ActionResult) string {
	var b strings.Builder
	status := "✓"
	if !result.Accepted {
		status = "✗"
	}
	fmt.Fprintf(&b, "%s %s\n", status, result.Message)

	if len(result.Events) > 0 {
		b.WriteString("\nEvents:\n")
		for _, event := range result.Events {
			fmt.Fprintf(&b, "• %s: %s\n", event.Type, event.Message)
		}
	}

	b.WriteString("\n")
	b.WriteString(formatSnapshot(result.GameState))
	return b.String()
}

// formatSnapshot renders a board as text for agents
func formatSnapshot(snap *engine.Snapshot) string {
	if snap == nil {
		return "Game state unavailable\n"
	}
	switch {
	case snap.Slide != nil:
		return formatSlide(snap.Slide)
	case snap.Memory != nil:
		return formatMemory(snap.Memory)
	case snap.TileMatch != nil:
		return formatTileMatch(snap.TileMatch)
	}
	return fmt.Sprintf("No board for game %q\n", snap.Kind)
}

func formatSlide(state *engine.SlideState) string {
	var b strings.Builder
	b.WriteString("SLIDE PUZZLE\n\n")
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			i := row*3 + col
			if i >= len(state.Tiles) {
				break
			}
			if state.Tiles[i] == 0 {
				b.WriteString(" .")
			} else {
				fmt.Fprintf(&b, " %d", state.Tiles[i])
			}
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "\nMoves: %d | Time: %s\n", state.Moves, state.Elapsed)
	if state.IsSolved {
		b.WriteString("🎉 SOLVED!\n")
	}
	return b.String()
}

func formatMemory(state *engine.MemoryState) string {
	var b strings.Builder
	b.WriteString("MEMORY MATCH\n\n")
	for i, card := range state.Cards {
		symbol := "??"
		if card.IsFlipped || card.IsMatched {
			symbol = card.Symbol
		}
		marker := " "
		if card.IsMatched {
			marker = "✓"
		}
		fmt.Fprintf(&b, "[%2d %s%s]", card.ID, symbol, marker)
		if i%4 == 3 {
			b.WriteString("\n")
		} else {
			b.WriteString(" ")
		}
	}

	fmt.Fprintf(&b, "\nMatches: %d/%d | Moves: %d | Time: %s\n",
		state.Matches, state.TotalPairs, state.Moves, state.Elapsed)
	if state.IsWon {
		b.WriteString("🎉 ALL PAIRS FOUND!\n")
	} else if !state.AcceptingInput {
		b.WriteString("Resolving a pair, wait a moment before tapping\n")
	}
	return b.String()
}

func formatTileMatch(state *engine.TileMatchState) string {
	var b strings.Builder
	b.WriteString("TILE MATCH\n\n   ")
	if len(state.Grid) > 0 {
		for col := range state.Grid[0] {
			fmt.Fprintf(&b, " %d ", col)
		}
	}
	b.WriteString("\n")
	for row, tiles := range state.Grid {
		fmt.Fprintf(&b, "%d  ", row)
		for _, tile := range tiles {
			fmt.Fprintf(&b, " %s ", tile.Symbol)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "\nScore: %d/%d | Moves: %d\n", state.Score, state.TargetScore, state.MovesCount)
	if state.Message != "" {
		fmt.Fprintf(&b, "Message: %s\n", state.Message)
	}
	if state.IsGameOver {
		b.WriteString("🎉 TARGET REACHED!\n")
	}
	return b.String()
}
