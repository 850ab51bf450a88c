package engine

import (
	"fmt"
	"slices"
	"sync"
)

// MemoryMatch is the 4x4 match-pairs card game.
//
// A turn moves through idle -> one_revealed -> resolving. The second flip locks
// input and schedules a resolution ResolveDelay later; the resolution marks the
// pair matched or turns both cards back, then unlocks input.
type MemoryMatch struct {
	mu      sync.Mutex
	symbols []string
	state   MemoryState
	phase   MemoryPhase
	first   int // index into state.Cards, -1 when unset
	second  int

	rng      Rand
	sched    Scheduler
	ticker   *repeater
	pending  Task
	gen      int
	notifier notifier
}

var _ Engine = (*MemoryMatch)(nil)

// NewMemoryMatch creates a memory game over TotalPairs distinct symbols and deals the first game
func NewMemoryMatch(symbols []string, opts ...Option) (*MemoryMatch, error) {
	if err := validateSymbols("memory", symbols, TotalPairs); err != nil {
		return nil, err
	}
	o := buildOptions(opts)
	m := &MemoryMatch{
		symbols: slices.Clone(symbols),
		rng:     o.rng,
		sched:   o.sched,
		first:   -1,
		second:  -1,
	}
	m.StartNewGame()
	return m, nil
}

// Kind implements Engine
func (m *MemoryMatch) Kind() Kind {
	return KindMemory
}

// StartNewGame deals a fresh shuffled deck, clears counters and selection, cancels
// any pending resolution and restarts the timer
func (m *MemoryMatch) StartNewGame() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.halt()
	m.state = MemoryState{
		Cards:          m.deal(),
		TotalPairs:     TotalPairs,
		AcceptingInput: true,
	}
	m.clearSelection()
	m.startTimer()
	m.publish()
}

func (m *MemoryMatch) deal() []Card {
	cards := make([]Card, 0, MemoryCards)
	for i, sym := range m.symbols {
		cards = append(cards,
			Card{ID: i * 2, Symbol: sym},
			Card{ID: i*2 + 1, Symbol: sym},
		)
	}
	shuffle(m.rng, len(cards), func(i, j int) { cards[i], cards[j] = cards[j], cards[i] })
	return cards
}

// TapCard flips the card with the given ID. Taps are ignored while a pair is
// resolving, after the game is won, and on cards already face up or matched.
func (m *MemoryMatch) TapCard(id int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.state.AcceptingInput || m.state.IsWon {
		return false
	}
	idx := slices.IndexFunc(m.state.Cards, func(c Card) bool { return c.ID == id })
	if idx < 0 {
		return false
	}
	card := &m.state.Cards[idx]
	if card.IsFlipped || card.IsMatched {
		return false
	}

	card.IsFlipped = true
	switch m.phase {
	case PhaseIdle:
		m.first = idx
		m.phase = PhaseOneRevealed
	case PhaseOneRevealed:
		m.second = idx
		m.phase = PhaseResolving
		m.state.AcceptingInput = false
		m.state.Moves++
		gen := m.gen
		m.pending = m.sched.AfterFunc(ResolveDelay, func() { m.resolve(gen) })
	}
	m.publish()
	return true
}

func (m *MemoryMatch) resolve(gen int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.gen || m.phase != PhaseResolving {
		return
	}
	m.pending = nil

	a, b := &m.state.Cards[m.first], &m.state.Cards[m.second]
	if a.Symbol == b.Symbol {
		a.IsMatched, b.IsMatched = true, true
		m.state.Matches++
		if m.state.Matches == TotalPairs {
			m.state.IsWon = true
			m.ticker.Stop()
			m.ticker = nil
		}
	} else {
		a.IsFlipped, b.IsFlipped = false, false
	}

	m.clearSelection()
	m.state.AcceptingInput = true
	m.publish()
}

// Phase reports where the current turn stands
func (m *MemoryMatch) Phase() MemoryPhase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

// State returns a copy of the full state, face-down symbols included
func (m *MemoryMatch) State() MemoryState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.copyState(false)
}

// SetState restores a deck between turns. The deck must hold MemoryCards cards with
// unique IDs and every symbol exactly twice; face-up cards must be matched and
// come in pairs. Matches and IsWon are derived from the cards.
func (m *MemoryMatch) SetState(state MemoryState) error {
	if err := validateDeck(state.Cards); err != nil {
		return err
	}
	if state.Moves < 0 || state.ElapsedSeconds < 0 {
		return fmt.Errorf("%w: counters cannot be negative", ErrInvalidState)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.halt()
	cards := slices.Clone(state.Cards)
	matched := 0
	for i := range cards {
		if cards[i].IsMatched {
			// Matched cards stay face up
			cards[i].IsFlipped = true
			matched++
		}
	}
	m.state = MemoryState{
		Cards:          cards,
		Moves:          state.Moves,
		Matches:        matched / 2,
		TotalPairs:     TotalPairs,
		IsWon:          matched/2 == TotalPairs,
		ElapsedSeconds: state.ElapsedSeconds,
		AcceptingInput: true,
	}
	m.clearSelection()
	if !m.state.IsWon {
		m.startTimer()
	}
	m.publish()
	return nil
}

// Snapshot implements Engine. Face-down cards have their symbol blanked.
func (m *MemoryMatch) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.copyState(true)
	return Snapshot{Kind: KindMemory, Memory: &s}
}

// Subscribe implements Engine
func (m *MemoryMatch) Subscribe(fn Listener) func() {
	m.mu.Lock()
	id := m.notifier.subscribe(fn)
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		m.notifier.unsubscribe(id)
		m.mu.Unlock()
	}
}

// Close implements Engine
func (m *MemoryMatch) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.halt()
}

func (m *MemoryMatch) tick(gen int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.gen || m.state.IsWon {
		return
	}
	m.state.ElapsedSeconds++
	m.publish()
}

// halt cancels the timer and any pending resolution. Caller holds mu.
func (m *MemoryMatch) halt() {
	m.ticker.Stop()
	m.ticker = nil
	if m.pending != nil {
		m.pending.Stop()
		m.pending = nil
	}
	m.gen++
}

func (m *MemoryMatch) startTimer() {
	gen := m.gen
	m.ticker = startRepeater(m.sched, TickInterval, func() { m.tick(gen) })
}

func (m *MemoryMatch) clearSelection() {
	m.first, m.second = -1, -1
	m.phase = PhaseIdle
}

func (m *MemoryMatch) copyState(masked bool) MemoryState {
	s := m.state
	s.Cards = slices.Clone(m.state.Cards)
	if masked {
		for i := range s.Cards {
			if !s.Cards[i].IsFlipped && !s.Cards[i].IsMatched {
				s.Cards[i].Symbol = ""
			}
		}
	}
	s.Elapsed = FormatElapsed(s.ElapsedSeconds)
	return s
}

func (m *MemoryMatch) publish() {
	s := m.copyState(true)
	m.notifier.publish(Snapshot{Kind: KindMemory, Memory: &s})
}

func validateDeck(cards []Card) error {
	if len(cards) != MemoryCards {
		return fmt.Errorf("%w: need %d cards, got %d", ErrInvalidState, MemoryCards, len(cards))
	}
	ids := make(map[int]bool, len(cards))
	counts := make(map[string]int)
	matched := make(map[string]int)
	for _, c := range cards {
		if ids[c.ID] {
			return fmt.Errorf("%w: duplicate card id %d", ErrInvalidState, c.ID)
		}
		ids[c.ID] = true
		if c.Symbol == "" {
			return fmt.Errorf("%w: card %d has no symbol", ErrInvalidState, c.ID)
		}
		counts[c.Symbol]++
		if c.IsFlipped && !c.IsMatched {
			return fmt.Errorf("%w: card %d is face up but unmatched", ErrInvalidState, c.ID)
		}
		if c.IsMatched {
			matched[c.Symbol]++
		}
	}
	if len(counts) != TotalPairs {
		return fmt.Errorf("%w: need %d distinct symbols, got %d", ErrInvalidState, TotalPairs, len(counts))
	}
	for sym, n := range counts {
		if n != 2 {
			return fmt.Errorf("%w: symbol %q appears %d times", ErrInvalidState, sym, n)
		}
		if matched[sym] == 1 {
			return fmt.Errorf("%w: symbol %q is half matched", ErrInvalidState, sym)
		}
	}
	return nil
}
