package main

import (
	"slices"

	"github.com/wricardo/puzzle-arcade/game/engine"
)

// Action is one move for the engine named by Kind. Wait asks the caller to
// poll the state again instead of moving.
type Action struct {
	Kind   engine.Kind
	Index  int
	CardID int
	From   engine.Position
	To     engine.Position
	Wait   bool
}

// Strategy picks the next action from the latest snapshot. ok is false when
// the strategy has no move left.
type Strategy interface {
	Next(snap *engine.Snapshot) (a Action, ok bool)
}

func NewStrategy(kind engine.Kind) (Strategy, error) {
	switch kind {
	case engine.KindSlide:
		return &SlideStrategy{}, nil
	case engine.KindMemory:
		return NewMemoryStrategy(), nil
	case engine.KindTileMatch:
		return &TileStrategy{}, nil
	}
	return nil, engine.ErrUnknownKind
}

// SlideStrategy follows an optimal solution, replanning whenever the board
// is not the one it expected
type SlideStrategy struct {
	plan   []int
	expect []int
}

func (s *SlideStrategy) Next(snap *engine.Snapshot) (Action, bool) {
	if snap == nil || snap.Slide == nil || snap.Slide.IsSolved {
		return Action{}, false
	}
	tiles := snap.Slide.Tiles

	if len(s.plan) == 0 || !slices.Equal(tiles, s.expect) {
		plan, err := engine.Solve(tiles)
		if err != nil || len(plan) == 0 {
			return Action{}, false
		}
		s.plan = plan
	}

	index := s.plan[0]
	s.plan = s.plan[1:]

	s.expect = slices.Clone(tiles)
	blank := slices.Index(s.expect, 0)
	s.expect[blank], s.expect[index] = s.expect[index], 0

	return Action{Kind: engine.KindSlide, Index: index}, true
}

// MemoryStrategy remembers every symbol it has seen and taps known pairs first
type MemoryStrategy struct {
	seen map[int]string
}

func NewMemoryStrategy() *MemoryStrategy {
	return &MemoryStrategy{seen: make(map[int]string)}
}

func (s *MemoryStrategy) Next(snap *engine.Snapshot) (Action, bool) {
	if snap == nil || snap.Memory == nil || snap.Memory.IsWon {
		return Action{}, false
	}
	state := snap.Memory

	var faceUp *engine.Card
	var hidden []engine.Card
	for i, card := range state.Cards {
		if card.Symbol != "" {
			s.seen[card.ID] = card.Symbol
		}
		switch {
		case card.IsMatched:
		case card.IsFlipped:
			faceUp = &state.Cards[i]
		default:
			hidden = append(hidden, card)
		}
	}

	if !state.AcceptingInput {
		return Action{Kind: engine.KindMemory, Wait: true}, true
	}
	if len(hidden) == 0 {
		return Action{}, false
	}

	tap := func(id int) (Action, bool) {
		return Action{Kind: engine.KindMemory, CardID: id}, true
	}

	if faceUp != nil {
		// Complete the pair if its partner was seen before
		for _, card := range hidden {
			if s.seen[card.ID] == faceUp.Symbol {
				return tap(card.ID)
			}
		}
	} else {
		// Open a known pair
		bySymbol := make(map[string]int)
		for _, card := range hidden {
			symbol, ok := s.seen[card.ID]
			if !ok {
				continue
			}
			if _, dup := bySymbol[symbol]; dup {
				return tap(bySymbol[symbol])
			}
			bySymbol[symbol] = card.ID
		}
	}

	for _, card := range hidden {
		if _, known := s.seen[card.ID]; !known {
			return tap(card.ID)
		}
	}
	return tap(hidden[0].ID)
}

// TileStrategy plays the swap that clears the most tiles
type TileStrategy struct{}

func (s *TileStrategy) Next(snap *engine.Snapshot) (Action, bool) {
	if snap == nil || snap.TileMatch == nil || snap.TileMatch.IsGameOver {
		return Action{}, false
	}

	types := make([][]int, len(snap.TileMatch.Grid))
	for r, row := range snap.TileMatch.Grid {
		types[r] = make([]int, len(row))
		for c, tile := range row {
			types[r][c] = tile.Type
		}
	}

	from, to, cleared := BestSwap(types)
	if cleared == 0 {
		return Action{}, false
	}
	return Action{Kind: engine.KindTileMatch, From: from, To: to}, true
}

// BestSwap tries every adjacent swap and returns the one whose matches cover
// the most tiles. Ties go to the first swap in row-major order.
func BestSwap(types [][]int) (from, to engine.Position, cleared int) {
	for r := range types {
		for c := range types[r] {
			a := engine.Position{Row: r, Col: c}
			for _, b := range []engine.Position{{Row: r, Col: c + 1}, {Row: r + 1, Col: c}} {
				if b.Row >= len(types) || b.Col >= len(types[b.Row]) {
					continue
				}
				types[a.Row][a.Col], types[b.Row][b.Col] = types[b.Row][b.Col], types[a.Row][a.Col]
				n := len(engine.FindMatches(types))
				types[a.Row][a.Col], types[b.Row][b.Col] = types[b.Row][b.Col], types[a.Row][a.Col]

				if n > cleared {
					from, to, cleared = a, b, n
				}
			}
		}
	}
	return from, to, cleared
}
