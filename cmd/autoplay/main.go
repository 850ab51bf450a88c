// Command autoplay plays puzzle arcade sessions through the REST API until
// the puzzle is won. Slide puzzles follow an optimal solution, memory games
// remember every revealed card and tile match takes the swap that clears the
// most tiles, starting a new game when no swap is left.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/puzzle-arcade/game/engine"
)

// Config controls one autoplay run
type Config struct {
	Game        engine.Kind
	Theme       string
	SessionID   string
	MaxMoves    int
	MaxAttempts int
	Delay       time.Duration
	// PollInterval is how long to wait before re-reading a memory game that is resolving a pair
	PollInterval time.Duration
}

// Outcome reports how a run ended
type Outcome struct {
	SessionID string
	Attempts  int
	Moves     int
	Won       bool
	State     *engine.Snapshot
}

var errGaveUp = errors.New("failed to win")

// Run plays until the puzzle is won or the attempts run out
func Run(ctx context.Context, client *Client, cfg Config) (*Outcome, error) {
	var state *engine.Snapshot
	var err error

	kind := cfg.Game
	if cfg.SessionID != "" {
		kind, state, err = client.Resume(ctx, cfg.SessionID)
		if err != nil {
			return nil, fmt.Errorf("resume session %s: %w", cfg.SessionID, err)
		}
		log.Info().Str("session", client.sessionID).Str("game", string(kind)).Msg("Session resumed")
	} else {
		state, err = client.CreateSession(ctx, kind, cfg.Theme)
		if err != nil {
			return nil, err
		}
		log.Info().Str("session", client.sessionID).Str("game", string(kind)).Msg("Session created")
	}

	outcome := &Outcome{SessionID: client.sessionID}
	for outcome.Attempts < cfg.MaxAttempts {
		outcome.Attempts++

		if outcome.Attempts > 1 || state.Finished() {
			state, err = client.NewGame(ctx)
			if err != nil {
				return outcome, fmt.Errorf("start new game: %w", err)
			}
		}

		strategy, err := NewStrategy(kind)
		if err != nil {
			return outcome, err
		}

		log.Debug().Int("attempt", outcome.Attempts).Msg("Attempt started")
		moves := 0
		for !state.Finished() && moves < cfg.MaxMoves {
			action, ok := strategy.Next(state)
			if !ok {
				log.Debug().Int("moves", moves).Msg("No move left")
				break
			}

			if action.Wait {
				if err := sleep(ctx, cfg.PollInterval); err != nil {
					return outcome, err
				}
				if state, err = client.GetState(ctx); err != nil {
					return outcome, err
				}
				continue
			}

			result, err := client.Play(ctx, action)
			if err != nil {
				return outcome, err
			}
			if result.GameState != nil {
				state = result.GameState
			}
			if !result.Accepted {
				log.Warn().Interface("action", action).Str("message", result.Message).Msg("Move rejected")
			}
			moves++
			outcome.Moves++

			if err := sleep(ctx, cfg.Delay); err != nil {
				return outcome, err
			}
		}

		log.Info().Int("attempt", outcome.Attempts).Int("moves", moves).Bool("won", state.Finished()).Msg("Attempt finished")
		if state.Finished() {
			outcome.Won = true
			outcome.State = state
			return outcome, nil
		}
	}

	outcome.State = state
	return outcome, fmt.Errorf("%w after %d attempts", errGaveUp, outcome.Attempts)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "autoplay",
		Usage: "Play puzzle arcade sessions until they are won",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "url",
				Value: "http://localhost:8080",
				Usage: "Game server URL",
			},
			&cli.StringFlag{
				Name:  "game",
				Value: string(engine.KindSlide),
				Usage: "Game to play (slide, memory, tilematch)",
			},
			&cli.StringFlag{
				Name:  "theme",
				Usage: "Theme name (server default when empty)",
			},
			&cli.StringFlag{
				Name:  "continue",
				Usage: "Resume playing an existing session by ID",
			},
			&cli.IntFlag{
				Name:  "max-moves",
				Value: 500,
				Usage: "Maximum moves per attempt",
			},
			&cli.IntFlag{
				Name:  "max-attempts",
				Value: 20,
				Usage: "Maximum attempts before giving up",
			},
			&cli.DurationFlag{
				Name:  "delay",
				Usage: "Delay between moves",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Verbose output",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).With().Timestamp().Logger()
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
			if cmd.Bool("verbose") {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
			return ctx, nil
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			kind, err := engine.ParseKind(cmd.String("game"))
			if err != nil {
				return err
			}

			log.Info().Str("url", cmd.String("url")).Msg("Connecting to game server")
			outcome, err := Run(ctx, NewClient(cmd.String("url")), Config{
				Game:         kind,
				Theme:        cmd.String("theme"),
				SessionID:    cmd.String("continue"),
				MaxMoves:     int(cmd.Int("max-moves")),
				MaxAttempts:  int(cmd.Int("max-attempts")),
				Delay:        cmd.Duration("delay"),
				PollInterval: engine.ResolveDelay,
			})
			if err != nil {
				if outcome != nil {
					log.Error().Str("session", outcome.SessionID).Msg("❌ Gave up")
				}
				return err
			}

			log.Info().
				Str("session", outcome.SessionID).
				Int("attempts", outcome.Attempts).
				Int("moves", outcome.Moves).
				Msg("🎉 Puzzle won")
			return nil
		},
	}
}

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
