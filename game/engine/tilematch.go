package engine

import (
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// TileMatch is the 4x4 swap-adjacent match-3 game. Each committed swap runs a
// single resolution pass: runs are cleared, columns settle and empty cells are
// refilled. Runs formed by the refill are left for the next swap.
type TileMatch struct {
	mu      sync.Mutex
	symbols []string
	state   TileMatchState
	rng     Rand

	notifier notifier
}

var _ Engine = (*TileMatch)(nil)

// NewTileMatch creates a match-3 game with one display symbol per tile type
func NewTileMatch(symbols []string, opts ...Option) (*TileMatch, error) {
	if err := validateSymbols("tile", symbols, TileTypes); err != nil {
		return nil, err
	}
	o := buildOptions(opts)
	t := &TileMatch{symbols: slices.Clone(symbols), rng: o.rng}
	t.StartNewGame()
	return t, nil
}

// Kind implements Engine
func (t *TileMatch) Kind() Kind {
	return KindTileMatch
}

// StartNewGame regenerates the grid and zeroes score and moves
func (t *TileMatch) StartNewGame() {
	t.mu.Lock()
	defer t.mu.Unlock()

	grid := make([][]Tile, TileGridSize)
	for r := range grid {
		grid[r] = make([]Tile, TileGridSize)
		for c := range grid[r] {
			grid[r][c] = t.newTile(t.rng.IntN(TileTypes))
		}
	}
	t.state = TileMatchState{Grid: grid, TargetScore: TargetScore}
	t.publish()
}

// SwapTiles swaps two adjacent tiles and keeps the swap only if it produces a run.
// It reports whether the swap was committed. Non-adjacent or out-of-grid positions
// and swaps after the game is over are ignored.
func (t *TileMatch) SwapTiles(a, b Position) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state.IsGameOver || !a.In(TileGridSize) || !b.In(TileGridSize) || !a.Adjacent(b) {
		return false
	}

	t.swap(a, b)
	t.state.MovesCount++

	matched := FindMatches(t.types())
	committed := len(matched) > 0
	if !committed {
		t.swap(a, b)
		t.state.MovesCount--
		t.state.Message = "No match!"
	} else {
		points := len(matched) * PointsPerTile
		t.state.Score += points
		for p := range matched {
			t.state.Grid[p.Row][p.Col] = Tile{Type: EmptyTile}
		}
		t.settle()
		t.refill()
		t.state.Message = fmt.Sprintf("Match! +%d", points)
	}

	if t.state.Score >= t.state.TargetScore {
		t.state.IsGameOver = true
		t.state.Message = "YOU WIN!"
	}
	t.publish()
	return committed
}

// FindMatches returns every cell that belongs to a horizontal or vertical run of
// MinRunLength or more identical non-empty types
func FindMatches(types [][]int) map[Position]struct{} {
	matched := make(map[Position]struct{})
	rows := len(types)
	for r := 0; r < rows; r++ {
		cols := len(types[r])
		for c := 0; c+MinRunLength <= cols; c++ {
			if runAt(types, Position{r, c}, Position{0, 1}) {
				for k := range MinRunLength {
					matched[Position{r, c + k}] = struct{}{}
				}
			}
		}
	}
	if rows == 0 {
		return matched
	}
	for c := 0; c < len(types[0]); c++ {
		for r := 0; r+MinRunLength <= rows; r++ {
			if runAt(types, Position{r, c}, Position{1, 0}) {
				for k := range MinRunLength {
					matched[Position{r + k, c}] = struct{}{}
				}
			}
		}
	}
	return matched
}

func runAt(types [][]int, start, step Position) bool {
	first := types[start.Row][start.Col]
	if first == EmptyTile {
		return false
	}
	for k := 1; k < MinRunLength; k++ {
		if types[start.Row+k*step.Row][start.Col+k*step.Col] != first {
			return false
		}
	}
	return true
}

// settle drops the remaining tiles of every column to the bottom, keeping their order
func (t *TileMatch) settle() {
	g := t.state.Grid
	for c := 0; c < TileGridSize; c++ {
		write := TileGridSize - 1
		for r := TileGridSize - 1; r >= 0; r-- {
			if g[r][c].Type == EmptyTile {
				continue
			}
			if write != r {
				g[write][c] = g[r][c]
				g[r][c] = Tile{Type: EmptyTile}
			}
			write--
		}
	}
}

// refill fills empty cells in row-major order with fresh random tiles
func (t *TileMatch) refill() {
	for r := range t.state.Grid {
		for c := range t.state.Grid[r] {
			if t.state.Grid[r][c].Type == EmptyTile {
				t.state.Grid[r][c] = t.newTile(t.rng.IntN(TileTypes))
			}
		}
	}
}

// State returns a copy of the current state
func (t *TileMatch) State() TileMatchState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.copyState()
}

// SetState loads a grid of tile types (row-major, TileGridSize x TileGridSize, each
// 0..TileTypes-1) along with counters. Tiles get fresh identities and symbols.
func (t *TileMatch) SetState(types [][]int, score, moves int) error {
	if len(types) != TileGridSize {
		return fmt.Errorf("%w: need %d rows, got %d", ErrInvalidState, TileGridSize, len(types))
	}
	for r, row := range types {
		if len(row) != TileGridSize {
			return fmt.Errorf("%w: row %d needs %d cells, got %d", ErrInvalidState, r, TileGridSize, len(row))
		}
		for c, v := range row {
			if v < 0 || v >= TileTypes {
				return fmt.Errorf("%w: tile (%d,%d) has type %d", ErrInvalidState, r, c, v)
			}
		}
	}
	if score < 0 || moves < 0 {
		return fmt.Errorf("%w: counters cannot be negative", ErrInvalidState)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	grid := make([][]Tile, TileGridSize)
	for r := range types {
		grid[r] = make([]Tile, TileGridSize)
		for c, v := range types[r] {
			grid[r][c] = t.newTile(v)
		}
	}
	t.state = TileMatchState{
		Grid:        grid,
		Score:       score,
		MovesCount:  moves,
		TargetScore: TargetScore,
		IsGameOver:  score >= TargetScore,
	}
	t.publish()
	return nil
}

// Types returns the grid as a matrix of tile types
func (t *TileMatch) Types() [][]int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.types()
}

// Snapshot implements Engine
func (t *TileMatch) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := t.copyState()
	return Snapshot{Kind: KindTileMatch, TileMatch: &s}
}

// Subscribe implements Engine
func (t *TileMatch) Subscribe(fn Listener) func() {
	t.mu.Lock()
	id := t.notifier.subscribe(fn)
	t.mu.Unlock()
	return func() {
		t.mu.Lock()
		t.notifier.unsubscribe(id)
		t.mu.Unlock()
	}
}

// Close implements Engine. The match-3 game has no timers.
func (t *TileMatch) Close() {}

func (t *TileMatch) newTile(typ int) Tile {
	return Tile{ID: uuid.NewString(), Type: typ, Symbol: t.symbolFor(typ)}
}

// symbolFor maps a tile type onto its display symbol; empty tiles have none
func (t *TileMatch) symbolFor(typ int) string {
	if typ < 0 {
		return ""
	}
	return t.symbols[typ%len(t.symbols)]
}

func (t *TileMatch) swap(a, b Position) {
	g := t.state.Grid
	g[a.Row][a.Col], g[b.Row][b.Col] = g[b.Row][b.Col], g[a.Row][a.Col]
}

func (t *TileMatch) types() [][]int {
	out := make([][]int, len(t.state.Grid))
	for r, row := range t.state.Grid {
		out[r] = make([]int, len(row))
		for c, tile := range row {
			out[r][c] = tile.Type
		}
	}
	return out
}

func (t *TileMatch) copyState() TileMatchState {
	s := t.state
	s.Grid = make([][]Tile, len(t.state.Grid))
	for r := range t.state.Grid {
		s.Grid[r] = slices.Clone(t.state.Grid[r])
	}
	return s
}

func (t *TileMatch) publish() {
	s := t.copyState()
	t.notifier.publish(Snapshot{Kind: KindTileMatch, TileMatch: &s})
}
