// Package service provides the business logic layer for the Puzzle Arcade.
//
// The service package implements:
//   - Multi-session game management across the three puzzle games
//   - Theme lookup for the symbol-based games
//   - Action dispatch with per-game event reporting
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager loads and stores display themes.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the game engines. Each session owns one engine. Actions are routed to the
// engine by type; an action aimed at the wrong game fails with ErrWrongGame,
// while input the engine rejects is reported as an ActionResult with
// Accepted set to false.
//
// Usage:
//
//	sessionMgr := session.NewManager(hub.BroadcastToSession)
//	configMgr, _ := config.NewManager("themes")
//	gameService := service.NewGameService(sessionMgr, configMgr)
//
//	info, err := gameService.CreateSession(ctx, engine.KindMemory, "fruit")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameService.TapCard(ctx, info.ID, 3)
//
// Memory resolution happens after the action returns; observers registered on
// the session manager receive the resolved snapshot.
package service
