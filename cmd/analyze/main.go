// Command analyze prints quick, human-readable statistics about the boards the
// engines deal. It generates N slide puzzles and reports their parity,
// Manhattan distance and optimal solution length, then deals N tile match
// grids and reports how many start with a run already on the board.
//
// With --board it loads one slide board instead and prints its optimal
// solution, replaying every slide on the engine.
package main

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/benbjohnson/clock"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/puzzle-arcade/game/engine"
)

// SlideReport summarizes a batch of generated slide puzzles
type SlideReport struct {
	Puzzles       int
	Solvable      int
	AlreadySolved int
	MeanManhattan float64
	MinMoves      int
	MaxMoves      int
	MeanMoves     float64
	// Histogram maps optimal solution length to puzzle count; empty when solving is skipped
	Histogram map[int]int
}

// TileReport summarizes a batch of dealt tile match grids
type TileReport struct {
	Grids         int
	GridsWithRuns int
	MeanRunTiles  float64
	MaxRunTiles   int
}

// engineOptions returns options with a seeded generator and a clock that never
// advances, so no timer fires while boards are inspected
func engineOptions(seed uint64) []engine.Option {
	return []engine.Option{
		engine.WithRand(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))),
		engine.WithScheduler(engine.NewClockScheduler(clock.NewMock())),
	}
}

// manhattan sums each tile's distance from its solved position
func manhattan(tiles []int) int {
	total := 0
	for i, tile := range tiles {
		if tile == 0 {
			continue
		}
		at := engine.Position{Row: i / engine.SlideGridSize, Col: i % engine.SlideGridSize}
		home := engine.Position{Row: (tile - 1) / engine.SlideGridSize, Col: (tile - 1) % engine.SlideGridSize}
		total += engine.ManhattanDistance(at, home)
	}
	return total
}

// analyzeSlide deals n puzzles and, when solve is set, finds each optimal solution
func analyzeSlide(n int, seed uint64, solve bool) (*SlideReport, error) {
	report := &SlideReport{Puzzles: n, Histogram: map[int]int{}}
	puzzle := engine.NewSlidePuzzle(engineOptions(seed)...)
	defer puzzle.Close()

	totalManhattan, totalMoves := 0, 0
	for i := 0; i < n; i++ {
		if i > 0 {
			puzzle.StartNewGame()
		}
		tiles := puzzle.State().Tiles

		if engine.IsSolvable(tiles) {
			report.Solvable++
		}
		if puzzle.State().IsSolved {
			report.AlreadySolved++
		}
		totalManhattan += manhattan(tiles)

		if !solve {
			continue
		}
		path, err := engine.Solve(tiles)
		if err != nil {
			return nil, fmt.Errorf("puzzle %d %v: %w", i+1, tiles, err)
		}
		moves := len(path)
		report.Histogram[moves]++
		totalMoves += moves
		if i == 0 || moves < report.MinMoves {
			report.MinMoves = moves
		}
		if moves > report.MaxMoves {
			report.MaxMoves = moves
		}
	}

	if n > 0 {
		report.MeanManhattan = float64(totalManhattan) / float64(n)
		if solve {
			report.MeanMoves = float64(totalMoves) / float64(n)
		}
	}
	return report, nil
}

// analyzeTiles deals n tile match grids and counts the ones with runs
func analyzeTiles(n int, seed uint64) (*TileReport, error) {
	game, err := engine.NewTileMatch(engine.DefaultTheme().TileSymbols, engineOptions(seed)...)
	if err != nil {
		return nil, err
	}
	defer game.Close()

	report := &TileReport{Grids: n}
	totalRunTiles := 0
	for i := 0; i < n; i++ {
		if i > 0 {
			game.StartNewGame()
		}
		matched := len(engine.FindMatches(game.Types()))
		if matched > 0 {
			report.GridsWithRuns++
		}
		totalRunTiles += matched
		if matched > report.MaxRunTiles {
			report.MaxRunTiles = matched
		}
	}
	if n > 0 {
		report.MeanRunTiles = float64(totalRunTiles) / float64(n)
	}
	return report, nil
}

func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return 100 * float64(part) / float64(whole)
}

// parseBoard reads a comma separated board such as "1,2,3,4,5,6,7,0,8"
func parseBoard(s string) ([]int, error) {
	fields := strings.Split(s, ",")
	tiles := make([]int, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, fmt.Errorf("invalid board %q: %w", s, err)
		}
		tiles = append(tiles, v)
	}
	return tiles, nil
}

// analyzeBoard loads tiles into a puzzle, solves it and replays the solution
// on the engine, printing each board along the way
func analyzeBoard(w io.Writer, tiles []int) error {
	puzzle := engine.NewSlidePuzzle(engineOptions(1)...)
	defer puzzle.Close()

	if err := puzzle.SetState(engine.SlideState{Tiles: tiles}); err != nil {
		return err
	}
	path, err := engine.Solve(tiles)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "\n=== Slide board %v ===\n", tiles)
	fmt.Fprintf(w, "Manhattan distance: %d\n", manhattan(tiles))
	fmt.Fprintf(w, "Optimal moves: %d\n", len(path))
	for i, index := range path {
		if !puzzle.SlideTile(index) {
			return fmt.Errorf("move %d: slide of index %d rejected", i+1, index)
		}
		fmt.Fprintf(w, "  %2d. slide index %d -> %v\n", i+1, index, puzzle.State().Tiles)
	}
	if !puzzle.State().IsSolved {
		return fmt.Errorf("board %v not solved after %d moves", tiles, len(path))
	}
	fmt.Fprintf(w, "✅ Solved\n")
	return nil
}

func printSlide(w io.Writer, r *SlideReport) {
	fmt.Fprintf(w, "\n=== Slide puzzle (%d boards, %d shuffle moves each) ===\n", r.Puzzles, engine.SlideShuffleMoves)
	fmt.Fprintf(w, "Solvable (even parity): %d (%.1f%%)\n", r.Solvable, percent(r.Solvable, r.Puzzles))
	if r.Solvable == r.Puzzles {
		fmt.Fprintf(w, "✅ Every generated board is solvable\n")
	} else {
		fmt.Fprintf(w, "⚠️  WARNING: %d boards are unsolvable!\n", r.Puzzles-r.Solvable)
	}
	if r.AlreadySolved > 0 {
		fmt.Fprintf(w, "⚠️  WARNING: %d boards were dealt already solved\n", r.AlreadySolved)
	}
	fmt.Fprintf(w, "Mean Manhattan distance: %.2f\n", r.MeanManhattan)

	if len(r.Histogram) == 0 {
		return
	}
	fmt.Fprintf(w, "Optimal moves: min %d, mean %.2f, max %d\n", r.MinMoves, r.MeanMoves, r.MaxMoves)

	lengths := make([]int, 0, len(r.Histogram))
	peak := 0
	for moves, count := range r.Histogram {
		lengths = append(lengths, moves)
		peak = max(peak, count)
	}
	sort.Ints(lengths)
	for _, moves := range lengths {
		count := r.Histogram[moves]
		bar := strings.Repeat("█", (count*40+peak-1)/peak)
		fmt.Fprintf(w, "  %2d moves %5d %s\n", moves, count, bar)
	}
}

func printTiles(w io.Writer, r *TileReport) {
	fmt.Fprintf(w, "\n=== Tile match (%d grids, %dx%d, %d types) ===\n", r.Grids, engine.TileGridSize, engine.TileGridSize, engine.TileTypes)
	fmt.Fprintf(w, "Grids dealt with a run: %d (%.1f%%)\n", r.GridsWithRuns, percent(r.GridsWithRuns, r.Grids))
	fmt.Fprintf(w, "Tiles in runs: mean %.2f, max %d\n", r.MeanRunTiles, r.MaxRunTiles)
	fmt.Fprintf(w, "Points needed: %d (%d tiles at %d each)\n", engine.TargetScore, engine.TargetScore/engine.PointsPerTile, engine.PointsPerTile)
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "analyze",
		Usage: "Print statistics about generated boards",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "count",
				Aliases: []string{"n"},
				Value:   100,
				Usage:   "Boards to generate per game",
			},
			&cli.IntFlag{
				Name:  "seed",
				Value: 1,
				Usage: "Random seed, so runs are reproducible",
			},
			&cli.BoolFlag{
				Name:  "skip-solve",
				Usage: "Skip the optimal solution search for slide puzzles",
			},
			&cli.StringFlag{
				Name:  "board",
				Usage: "Solve one slide board given as 9 comma separated tiles, 0 for the blank",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			w := cmd.Writer
			if w == nil {
				w = os.Stdout
			}

			if board := cmd.String("board"); board != "" {
				tiles, err := parseBoard(board)
				if err != nil {
					return err
				}
				return analyzeBoard(w, tiles)
			}

			n := int(cmd.Int("count"))
			if n <= 0 {
				return fmt.Errorf("count must be positive, got %d", n)
			}
			seed := uint64(cmd.Int("seed"))

			slide, err := analyzeSlide(n, seed, !cmd.Bool("skip-solve"))
			if err != nil {
				return err
			}
			printSlide(w, slide)

			tiles, err := analyzeTiles(n, seed)
			if err != nil {
				return err
			}
			printTiles(w, tiles)
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
