// Package mcp exposes the puzzle arcade to AI agents over the Model Context Protocol.
//
// The Client is a thin MCP front end for the REST API: every tool call becomes
// an HTTP request against a running server and the JSON result is rendered as
// plain text boards an agent can read.
//
// MCP Tools:
//   - list_games: Describe the slide, memory and tile match puzzles
//   - create_session: Start a session for a game with an optional theme
//   - list_sessions, get_session, delete_session: Session management
//   - game_state: Render the current board
//   - new_game: Restart the session's puzzle
//   - slide_tile: Slide a tile into the blank (slide puzzle)
//   - tap_card: Turn a card face up (memory match)
//   - swap_tiles: Swap two adjacent tiles (tile match)
//   - list_themes: List available themes
//   - game_instructions: Rules for all three games
//
// Game tools take a required session_id.
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
