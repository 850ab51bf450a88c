// Command puzzle-arcade starts the Puzzle Arcade server.
//
// It supports two modes:
//  1. "server" (default) – runs the HTTP server exposing REST API, WebSocket, and an /mcp HTTP endpoint
//  2. "stdio-mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//
// Flags control host/port, the themes directory, session expiry and logging.
// Every flag can also be set from the environment or a .env file.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/puzzle-arcade/api"
	"github.com/wricardo/puzzle-arcade/game/config"
	"github.com/wricardo/puzzle-arcade/game/service"
	"github.com/wricardo/puzzle-arcade/game/session"
	"github.com/wricardo/puzzle-arcade/transport/mcp"
	"github.com/wricardo/puzzle-arcade/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Puzzle Arcade Server"
)

// envLoaded records whether a .env file was read before flags were parsed
var envLoaded bool

func main() {
	// Load .env file if it exists so env-backed flags see its values
	if err := godotenv.Load(); err == nil {
		envLoaded = true
	} else if !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: Error loading .env file: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		log.Fatal().Err(err).Msg("exiting")
	}
}

// newApp builds the command tree. Flags are global so both modes share them.
func newApp() *cli.Command {
	return &cli.Command{
		Name:           "puzzle-arcade",
		Usage:          "Slide puzzle, memory match and tile match over REST, WebSocket and MCP",
		Version:        Version,
		DefaultCommand: "server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "host",
				Value:   "localhost",
				Usage:   "HTTP server host",
				Sources: cli.EnvVars("HOST"),
			},
			&cli.IntFlag{
				Name:    "port",
				Value:   8080,
				Usage:   "HTTP server port",
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "themes-dir",
				Value:   "themes",
				Usage:   "Directory containing symbol themes (.hcl or .json)",
				Sources: cli.EnvVars("THEMES_DIR"),
			},
			&cli.DurationFlag{
				Name:    "session-ttl",
				Value:   24 * time.Hour,
				Usage:   "Remove sessions not accessed for this long",
				Sources: cli.EnvVars("SESSION_TTL"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "Log level (trace, debug, info, warn, error)",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "Enable debug logging with human-readable output",
				Sources: cli.EnvVars("DEBUG"),
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if err := configureLogging(cmd.String("log-level"), cmd.Bool("debug")); err != nil {
				return ctx, err
			}
			if envLoaded {
				log.Debug().Msg("loaded environment variables from .env file")
			}
			return ctx, nil
		},
		Commands: []*cli.Command{
			{
				Name:    "server",
				Aliases: []string{"http"},
				Usage:   "Run HTTP server with API, WebSocket, and MCP endpoint",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					svc, err := initializeServices(ctx, cmd.String("themes-dir"), cmd.Duration("session-ttl"))
					if err != nil {
						return fmt.Errorf("failed to initialize services: %w", err)
					}
					defer svc.sessions.CloseAll()
					return runHTTPServer(ctx, svc, listenAddr(cmd))
				},
			},
			{
				Name:    "stdio-mcp",
				Aliases: []string{"mcp-stdio", "mcp"},
				Usage:   "Run MCP stdio server, reusing a running HTTP server or starting an internal one",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					svc, err := initializeServices(ctx, cmd.String("themes-dir"), cmd.Duration("session-ttl"))
					if err != nil {
						return fmt.Errorf("failed to initialize services: %w", err)
					}
					defer svc.sessions.CloseAll()
					return runStdioMCPWithInternalServer(ctx, svc, "http://"+listenAddr(cmd))
				},
			},
		},
	}
}

func listenAddr(cmd *cli.Command) string {
	return net.JoinHostPort(cmd.String("host"), fmt.Sprint(cmd.Int("port")))
}

// configureLogging sets the global zerolog level and writer. Logs go to stderr
// so they never mix with the MCP stdio stream.
func configureLogging(level string, debug bool) error {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	if debug {
		lvl = zerolog.DebugLevel
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
	zerolog.SetGlobalLevel(lvl)
	return nil
}

// services holds everything a mode needs
type services struct {
	game     service.GameService
	sessions *session.Manager
	configs  *config.Manager
	hub      *websocket.Hub
}

// initializeServices wires the WebSocket hub, session/config managers and the game service.
// It also starts a background cleanup routine to prune stale sessions.
func initializeServices(ctx context.Context, themesDir string, sessionTTL time.Duration) (*services, error) {
	configManager, err := config.NewManager(themesDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create theme manager: %w", err)
	}

	// Every engine publication goes straight to the session's WebSocket clients
	hub := websocket.NewHub()
	go hub.Run()

	sessionManager := session.NewManager(hub.BroadcastToSession)
	gameService := service.NewGameService(sessionManager, configManager)

	log.Info().Str("themes_dir", themesDir).Str("default_theme", configManager.GetDefault().Name).
		Msg("services initialized")

	if sessionTTL > 0 {
		go sessionCleanupRoutine(ctx, sessionManager, time.Hour, sessionTTL)
	}

	return &services{
		game:     gameService,
		sessions: sessionManager,
		configs:  configManager,
		hub:      hub,
	}, nil
}

// sessionCleanupRoutine periodically removes sessions that have not been accessed
// within the provided retention window.
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager, interval, maxAge time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.CleanupExpiredSessions(maxAge); removed > 0 {
				log.Info().Int("removed", removed).Int("remaining", manager.Count()).Msg("cleaned up expired sessions")
			}
		}
	}
}

// newHandler mounts the REST API and the /mcp endpoint. The MCP client proxies
// back to the API at baseURL.
func newHandler(svc *services, baseURL string) http.Handler {
	apiServer := api.NewServer(svc.game, svc.hub)
	mcpClient := mcp.NewClient(baseURL)

	mainRouter := http.NewServeMux()

	// Mount API server at root
	mainRouter.Handle("/", apiServer)

	mainRouter.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	})

	return mainRouter
}

// runHTTPServer serves the REST API, WebSocket hub and /mcp until ctx is cancelled.
func runHTTPServer(ctx context.Context, svc *services, addr string) error {
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      newHandler(svc, "http://"+addr),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msgf("%s v%s listening", AppName, Version)
		log.Info().Msgf("REST API: http://%s/api", addr)
		log.Info().Msgf("WebSocket: ws://%s/ws?session=<session_id>", addr)
		log.Info().Msgf("MCP endpoint: http://%s/mcp", addr)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP server shutdown: %w", err)
	}

	log.Info().Msg("server stopped")
	return nil
}

// apiAvailable reports whether a Puzzle Arcade API answers at baseURL
func apiAvailable(ctx context.Context, baseURL string) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// runStdioMCPWithInternalServer runs an MCP stdio server.
// It reuses an API already listening at externalURL; if unavailable, it starts a
// minimal internal HTTP API bound to a random loopback port and targets that.
func runStdioMCPWithInternalServer(ctx context.Context, svc *services, externalURL string) error {
	baseURL := externalURL

	if apiAvailable(ctx, externalURL) {
		log.Info().Str("url", externalURL).Msg("external API server found, using it for MCP")
	} else {
		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}

		internalAddr := listener.Addr().String()
		baseURL = "http://" + internalAddr
		log.Info().Str("addr", internalAddr).Msg("starting internal HTTP server for MCP stdio")

		httpServer := &http.Server{Handler: api.NewServer(svc.game, svc.hub)}
		go func() {
			if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("internal HTTP server error")
			}
		}()
		defer httpServer.Close()
	}

	mcpClient := mcp.NewClient(baseURL)
	log.Info().Str("api", baseURL).Msg("MCP stdio server ready")

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server: %w", err)
	}
	return nil
}
