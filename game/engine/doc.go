// Package engine provides the core game logic for the Puzzle Arcade.
//
// The engine package implements three independent single-player games:
//   - SlidePuzzle: the 3x3 sliding tile puzzle (8-puzzle)
//   - MemoryMatch: a 4x4 grid of eight symbol pairs to flip and match
//   - TileMatch: a 4x4 swap-adjacent match-3 grid with a score target
//
// Core Types:
//
// The Engine interface is the contract the session layer relies on. Each engine
// owns its state exclusively and publishes a Snapshot to its listeners after
// every mutation, including timer ticks. Invalid input is never an error: actions
// report whether they were accepted and otherwise leave the state untouched.
//
// Time and Randomness:
//
// Timers run on a Scheduler and shuffles draw from a Rand, both injectable via
// options. The default scheduler wraps github.com/benbjohnson/clock; tests use
// the manual scheduler in the enginetest package. Starting a new game cancels
// the elapsed timer and any pending memory resolution.
//
// Usage:
//
//	puzzle := engine.NewSlidePuzzle()
//	defer puzzle.Close()
//
//	unsubscribe := puzzle.Subscribe(func(s engine.Snapshot) {
//		render(s.Slide)
//	})
//	defer unsubscribe()
//
//	puzzle.SlideTile(7)
//
// Game Rules:
//
// The slide puzzle is shuffled by 50 random legal moves from the solved board, so
// it is always solvable. The memory game resolves a revealed pair 600ms after the
// second flip. The tile game commits a swap only when it lines up three or more
// identical tiles, scoring 50 points per cleared tile and ending at 500 points.
package engine
