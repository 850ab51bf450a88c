package engine

import (
	"fmt"
	"slices"
	"sync"
)

// SlidePuzzle is the 3x3 sliding tile puzzle. Tile 0 is the empty slot.
type SlidePuzzle struct {
	mu       sync.Mutex
	state    SlideState
	rng      Rand
	sched    Scheduler
	ticker   *repeater
	gen      int
	notifier notifier
}

var _ Engine = (*SlidePuzzle)(nil)

// NewSlidePuzzle creates a puzzle and starts its first game
func NewSlidePuzzle(opts ...Option) *SlidePuzzle {
	o := buildOptions(opts)
	p := &SlidePuzzle{rng: o.rng, sched: o.sched}
	p.StartNewGame()
	return p
}

// SolvedTiles returns the goal configuration 1..8 followed by the empty slot
func SolvedTiles() []int {
	tiles := make([]int, SlideTileCount)
	for i := range SlideTileCount - 1 {
		tiles[i] = i + 1
	}
	return tiles
}

// SlideNeighbors returns the indices that can slide into an empty slot at index,
// in up, down, left, right order
func SlideNeighbors(index int) []int {
	if index < 0 || index >= SlideTileCount {
		return nil
	}
	row, col := index/SlideGridSize, index%SlideGridSize
	moves := make([]int, 0, 4)
	if row > 0 {
		moves = append(moves, index-SlideGridSize)
	}
	if row < SlideGridSize-1 {
		moves = append(moves, index+SlideGridSize)
	}
	if col > 0 {
		moves = append(moves, index-1)
	}
	if col < SlideGridSize-1 {
		moves = append(moves, index+1)
	}
	return moves
}

// Kind implements Engine
func (p *SlidePuzzle) Kind() Kind {
	return KindSlide
}

// StartNewGame resets counters, shuffles with legal moves from the solved board
// and restarts the timer
func (p *SlidePuzzle) StartNewGame() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.halt()
	p.state = SlideState{Tiles: p.generate()}
	p.startTimer()
	p.publish()
}

// generate walks SlideShuffleMoves random legal moves away from the solved board.
// A walk that ends on the solved board is discarded.
func (p *SlidePuzzle) generate() []int {
	for {
		tiles := SolvedTiles()
		empty := SlideTileCount - 1
		for range SlideShuffleMoves {
			moves := SlideNeighbors(empty)
			next := moves[p.rng.IntN(len(moves))]
			tiles[empty], tiles[next] = tiles[next], tiles[empty]
			empty = next
		}
		if !isSolvedTiles(tiles) {
			return tiles
		}
	}
}

// SlideTile moves the tile at index into the empty slot. It reports whether the
// move was legal; illegal moves leave the puzzle untouched.
func (p *SlidePuzzle) SlideTile(index int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state.IsSolved {
		return false
	}
	empty := slices.Index(p.state.Tiles, 0)
	if empty < 0 || !slices.Contains(SlideNeighbors(empty), index) {
		return false
	}

	p.state.Tiles[index], p.state.Tiles[empty] = p.state.Tiles[empty], p.state.Tiles[index]
	p.state.Moves++

	if isSolvedTiles(p.state.Tiles) {
		p.state.IsSolved = true
		p.halt()
	}
	p.publish()
	return true
}

// State returns a copy of the current state
func (p *SlidePuzzle) State() SlideState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.copyState()
}

// SetState replaces the board and counters. Tiles must be a solvable
// permutation of 0..8.
func (p *SlidePuzzle) SetState(state SlideState) error {
	if err := validateTiles(state.Tiles); err != nil {
		return err
	}
	if !IsSolvable(state.Tiles) {
		return fmt.Errorf("%w: tiles %v cannot reach the solved board", ErrInvalidState, state.Tiles)
	}
	if state.Moves < 0 || state.ElapsedSeconds < 0 {
		return fmt.Errorf("%w: counters cannot be negative", ErrInvalidState)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.halt()
	p.state = SlideState{
		Tiles:          slices.Clone(state.Tiles),
		Moves:          state.Moves,
		ElapsedSeconds: state.ElapsedSeconds,
		IsSolved:       isSolvedTiles(state.Tiles),
	}
	if !p.state.IsSolved {
		p.startTimer()
	}
	p.publish()
	return nil
}

// Snapshot implements Engine
func (p *SlidePuzzle) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := p.copyState()
	return Snapshot{Kind: KindSlide, Slide: &s}
}

// Subscribe implements Engine
func (p *SlidePuzzle) Subscribe(fn Listener) func() {
	p.mu.Lock()
	id := p.notifier.subscribe(fn)
	p.mu.Unlock()
	return func() {
		p.mu.Lock()
		p.notifier.unsubscribe(id)
		p.mu.Unlock()
	}
}

// Close implements Engine
func (p *SlidePuzzle) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.halt()
}

func (p *SlidePuzzle) tick(gen int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.gen || p.state.IsSolved {
		return
	}
	p.state.ElapsedSeconds++
	p.publish()
}

// halt stops the timer and invalidates callbacks already in flight. Caller holds mu.
func (p *SlidePuzzle) halt() {
	p.ticker.Stop()
	p.ticker = nil
	p.gen++
}

func (p *SlidePuzzle) startTimer() {
	gen := p.gen
	p.ticker = startRepeater(p.sched, TickInterval, func() { p.tick(gen) })
}

func (p *SlidePuzzle) copyState() SlideState {
	s := p.state
	s.Tiles = slices.Clone(p.state.Tiles)
	s.Elapsed = FormatElapsed(s.ElapsedSeconds)
	return s
}

func (p *SlidePuzzle) publish() {
	s := p.copyState()
	p.notifier.publish(Snapshot{Kind: KindSlide, Slide: &s})
}

func isSolvedTiles(tiles []int) bool {
	return slices.Equal(tiles, SolvedTiles())
}

func validateTiles(tiles []int) error {
	if len(tiles) != SlideTileCount {
		return fmt.Errorf("%w: need %d tiles, got %d", ErrInvalidState, SlideTileCount, len(tiles))
	}
	seen := make([]bool, SlideTileCount)
	for _, t := range tiles {
		if t < 0 || t >= SlideTileCount || seen[t] {
			return fmt.Errorf("%w: tiles must be a permutation of 0..%d", ErrInvalidState, SlideTileCount-1)
		}
		seen[t] = true
	}
	return nil
}
