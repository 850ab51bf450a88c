package engine

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	mrand "math/rand/v2"
	"strings"

	"github.com/benbjohnson/clock"
)

var (
	ErrUnknownKind  = errors.New("unknown game kind")
	ErrInvalidState = errors.New("invalid game state")
)

// Engine is the contract shared by the three game engines
type Engine interface {
	Kind() Kind

	// StartNewGame resets the board, counters and timers
	StartNewGame()

	// Snapshot returns a copy of the published state
	Snapshot() Snapshot

	// Subscribe registers a listener called after every published mutation
	Subscribe(fn Listener) (unsubscribe func())

	// Close stops all timers; the engine keeps its last state
	Close()
}

// Listener observes engine state changes. It runs while the engine lock is held
// and must not call back into the engine.
type Listener func(Snapshot)

// Rand is the randomness an engine needs. *math/rand/v2.Rand satisfies it.
type Rand interface {
	IntN(n int) int
}

type options struct {
	rng   Rand
	sched Scheduler
}

// Option customizes engine construction
type Option func(*options)

// WithRand sets the random source used for shuffles and refills
func WithRand(r Rand) Option {
	return func(o *options) { o.rng = r }
}

// WithScheduler sets the scheduler that drives the elapsed timer and delayed resolution
func WithScheduler(s Scheduler) Option {
	return func(o *options) { o.sched = s }
}

func buildOptions(opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rng == nil {
		o.rng = NewRand()
	}
	if o.sched == nil {
		o.sched = NewClockScheduler(clock.New())
	}
	return o
}

// NewRand returns a PCG generator seeded from crypto/rand
func NewRand() *mrand.Rand {
	var seed [16]byte
	_, _ = rand.Read(seed[:])
	return mrand.New(mrand.NewPCG(binary.LittleEndian.Uint64(seed[:8]), binary.LittleEndian.Uint64(seed[8:])))
}

// ParseKind maps user input onto a Kind
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "slide", "slide-puzzle", "slidepuzzle":
		return KindSlide, nil
	case "memory", "memory-match", "memorymatch":
		return KindMemory, nil
	case "tilematch", "tile-match", "match3", "match-3":
		return KindTileMatch, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Kinds lists every playable game in menu order
func Kinds() []Kind {
	return []Kind{KindSlide, KindMemory, KindTileMatch}
}

// Describe returns the menu title and blurb for a game
func Describe(k Kind) (title, description string) {
	switch k {
	case KindSlide:
		return "Slide Puzzle", "Arrange numbers in order"
	case KindMemory:
		return "Memory Puzzle", "Match pairs of cards"
	case KindTileMatch:
		return "Tile Match", "Swap tiles to line up three of a kind"
	}
	return string(k), ""
}

// New creates an engine of the given kind. A nil theme selects DefaultTheme.
func New(kind Kind, theme *Theme, opts ...Option) (Engine, error) {
	if theme == nil {
		theme = DefaultTheme()
	}
	switch kind {
	case KindSlide:
		return NewSlidePuzzle(opts...), nil
	case KindMemory:
		return NewMemoryMatch(theme.MemorySymbols, opts...)
	case KindTileMatch:
		return NewTileMatch(theme.TileSymbols, opts...)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}
