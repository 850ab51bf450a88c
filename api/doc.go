// Package api provides HTTP REST API handlers for the Puzzle Arcade.
//
// The api package implements:
//   - Game catalog and session management endpoints
//   - One action endpoint per game (slide, tap, swap)
//   - Theme listing, lookup and upload
//   - WebSocket upgrade handling
//
// Endpoints:
//
// Catalog:
//   - GET /api/games - List the playable games
//
// Session Management:
//   - POST /api/sessions - Create new session ({"game": "slide|memory|tilematch", "theme": "sea"})
//   - GET /api/sessions - List sessions (?sort=created|accessed&order=asc|desc&limit=N&game=memory)
//   - GET /api/sessions/{id} - Get specific session
//   - DELETE /api/sessions/{id} - Delete session
//
// Game Operations:
//   - GET /api/sessions/{id}/state - Current snapshot
//   - POST /api/sessions/{id}/new-game - Deal a fresh game of the same kind
//   - POST /api/sessions/{id}/slide - {"index": 0-8}
//   - POST /api/sessions/{id}/tap - {"card_id": 0-15}
//   - POST /api/sessions/{id}/swap - {"from": {"row": 0, "col": 1}, "to": {"row": 0, "col": 2}}
//
// Themes:
//   - GET /api/themes - List available themes
//   - GET /api/themes/{name} - Get a theme
//   - POST /api/themes - Save a theme
//
// Other:
//   - GET /ws?session={id} - WebSocket snapshot stream
//   - GET /health - Liveness probe
//
// Rejected moves are not errors. They return 200 with "accepted": false and
// the unchanged state.
//
// Error Handling:
//
// Errors are returned as JSON:
//
//	{"error": "session zz99: session not found"}
//
// Status codes follow the error kind: 404 for unknown sessions and themes,
// 409 when an action targets another game, 400 for malformed input, unknown
// games and invalid themes, 500 otherwise.
package api
