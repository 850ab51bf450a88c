package engine

import "time"

// Kind identifies one of the three puzzle games
type Kind string

const (
	KindSlide     Kind = "slide"
	KindMemory    Kind = "memory"
	KindTileMatch Kind = "tilematch"
)

const (
	// Slide puzzle
	SlideGridSize     = 3
	SlideTileCount    = SlideGridSize * SlideGridSize
	SlideShuffleMoves = 50

	// Memory match
	MemoryGridSize = 4
	TotalPairs     = 8
	MemoryCards    = TotalPairs * 2

	// Tile match
	TileGridSize  = 4
	TileTypes     = 4
	EmptyTile     = -1
	PointsPerTile = 50
	TargetScore   = 500
	MinRunLength  = 3

	// Timing
	TickInterval = time.Second
	ResolveDelay = 600 * time.Millisecond
)

// Position is a row/column grid coordinate. It is comparable and usable as a map key.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Adjacent reports whether p and q differ by exactly one row or one column
func (p Position) Adjacent(q Position) bool {
	return ManhattanDistance(p, q) == 1
}

// In reports whether p lies inside a size x size grid
func (p Position) In(size int) bool {
	return p.Row >= 0 && p.Row < size && p.Col >= 0 && p.Col < size
}

// SlideState is the published state of the sliding puzzle
type SlideState struct {
	Tiles          []int  `json:"tiles"`
	Moves          int    `json:"moves"`
	ElapsedSeconds int    `json:"elapsed_seconds"`
	Elapsed        string `json:"elapsed"`
	IsSolved       bool   `json:"is_solved"`
}

// Card is a single memory card
type Card struct {
	ID        int    `json:"id"`
	Symbol    string `json:"symbol"`
	IsFlipped bool   `json:"is_flipped"`
	IsMatched bool   `json:"is_matched"`
}

// MemoryPhase is the per-turn selection state of the memory game
type MemoryPhase string

const (
	PhaseIdle        MemoryPhase = "idle"
	PhaseOneRevealed MemoryPhase = "one_revealed"
	PhaseResolving   MemoryPhase = "resolving"
)

// MemoryState is the published state of the memory game
type MemoryState struct {
	Cards          []Card `json:"cards"`
	Moves          int    `json:"moves"`
	Matches        int    `json:"matches"`
	TotalPairs     int    `json:"total_pairs"`
	IsWon          bool   `json:"is_won"`
	ElapsedSeconds int    `json:"elapsed_seconds"`
	Elapsed        string `json:"elapsed"`
	AcceptingInput bool   `json:"accepting_input"`
}

// Tile is a single match-3 tile. ID survives gravity so views can animate drops.
type Tile struct {
	ID     string `json:"id"`
	Type   int    `json:"type"`
	Symbol string `json:"symbol"`
}

// TileMatchState is the published state of the match-3 game
type TileMatchState struct {
	Grid        [][]Tile `json:"grid"`
	Score       int      `json:"score"`
	MovesCount  int      `json:"moves_count"`
	TargetScore int      `json:"target_score"`
	IsGameOver  bool     `json:"is_game_over"`
	Message     string   `json:"message"`
}

// Snapshot is the read model handed to observers and transports.
// Exactly one of the game fields is set, matching Kind.
type Snapshot struct {
	Kind      Kind            `json:"kind"`
	Slide     *SlideState     `json:"slide,omitempty"`
	Memory    *MemoryState    `json:"memory,omitempty"`
	TileMatch *TileMatchState `json:"tile_match,omitempty"`
}

// Finished reports whether the game in the snapshot has been won
func (s Snapshot) Finished() bool {
	switch {
	case s.Slide != nil:
		return s.Slide.IsSolved
	case s.Memory != nil:
		return s.Memory.IsWon
	case s.TileMatch != nil:
		return s.TileMatch.IsGameOver
	}
	return false
}

// Theme holds display symbols for the symbol-based games. Rules never depend on it.
type Theme struct {
	Name          string   `json:"name" hcl:"name"`
	Description   string   `json:"description" hcl:"description,optional"`
	MemorySymbols []string `json:"memory_symbols" hcl:"memory_symbols"`
	TileSymbols   []string `json:"tile_symbols" hcl:"tile_symbols"`
}
