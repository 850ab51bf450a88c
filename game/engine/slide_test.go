package engine_test

import (
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/puzzle-arcade/game/engine"
	"github.com/wricardo/puzzle-arcade/game/engine/enginetest"
)

func newSlide(t *testing.T, opts ...engine.Option) (*engine.SlidePuzzle, *enginetest.Scheduler) {
	t.Helper()
	sched := enginetest.NewScheduler()
	p := engine.NewSlidePuzzle(append([]engine.Option{engine.WithScheduler(sched)}, opts...)...)
	t.Cleanup(p.Close)
	return p, sched
}

func TestSlideNeighbors(t *testing.T) {
	tests := []struct {
		index int
		want  []int
	}{
		{0, []int{3, 1}},
		{1, []int{4, 0, 2}},
		{4, []int{1, 7, 3, 5}},
		{7, []int{4, 6, 8}},
		{8, []int{5, 7}},
		{-1, nil},
		{9, nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, engine.SlideNeighbors(tt.index), "neighbors of %d", tt.index)
	}
}

func TestNewSlidePuzzle_ShuffledAndSolvable(t *testing.T) {
	for i := 0; i < 25; i++ {
		p, _ := newSlide(t)
		state := p.State()

		sorted := slices.Sorted(slices.Values(state.Tiles))
		require.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8}, sorted)
		assert.True(t, engine.IsSolvable(state.Tiles), "tiles %v", state.Tiles)
		assert.False(t, state.IsSolved)
		assert.NotEqual(t, engine.SolvedTiles(), state.Tiles)
		assert.Zero(t, state.Moves)
		assert.Zero(t, state.ElapsedSeconds)
	}
}

func TestNewSlidePuzzle_ShuffleFollowsLegalMoves(t *testing.T) {
	// Always taking the first neighbor bounces the empty slot between 5 and 2.
	p, _ := newSlide(t, engine.WithRand(enginetest.NewRand(0)))
	assert.Equal(t, []int{1, 2, 0, 4, 5, 3, 7, 8, 6}, p.State().Tiles)
}

func TestNewSlidePuzzle_ReshufflesWhenWalkReturnsHome(t *testing.T) {
	// The first 50 draws walk 8->5->8->... and end solved; the next 50 use the
	// first neighbor every time.
	values := make([]int, 0, 100)
	for range 25 {
		values = append(values, 0, 1)
	}
	values = append(values, make([]int, 50)...)

	p, _ := newSlide(t, engine.WithRand(enginetest.NewRand(values...)))
	assert.Equal(t, []int{1, 2, 0, 4, 5, 3, 7, 8, 6}, p.State().Tiles)
}

func TestSlidePuzzle_WinningMove(t *testing.T) {
	p, sched := newSlide(t)
	require.NoError(t, p.SetState(engine.SlideState{Tiles: []int{1, 2, 3, 4, 5, 6, 7, 0, 8}}))

	assert.True(t, p.SlideTile(8))

	state := p.State()
	assert.Equal(t, engine.SolvedTiles(), state.Tiles)
	assert.Equal(t, 1, state.Moves)
	assert.True(t, state.IsSolved)

	sched.Advance(5 * time.Second)
	assert.Zero(t, p.State().ElapsedSeconds, "timer must stop once solved")
	assert.Zero(t, sched.Pending())
}

func TestSlidePuzzle_IllegalMovesIgnored(t *testing.T) {
	p, _ := newSlide(t)
	start := []int{1, 2, 3, 4, 5, 6, 7, 0, 8}
	require.NoError(t, p.SetState(engine.SlideState{Tiles: start}))

	for _, idx := range []int{0, 2, 3, 5, 7, -1, 9, 100} {
		assert.False(t, p.SlideTile(idx), "index %d", idx)
	}

	state := p.State()
	assert.Equal(t, start, state.Tiles)
	assert.Zero(t, state.Moves)
}

func TestSlidePuzzle_SolvedBoardIgnoresMoves(t *testing.T) {
	p, _ := newSlide(t)
	require.NoError(t, p.SetState(engine.SlideState{Tiles: engine.SolvedTiles(), Moves: 12}))

	assert.True(t, p.State().IsSolved)
	assert.False(t, p.SlideTile(5))
	assert.Equal(t, 12, p.State().Moves)
}

func TestSlidePuzzle_Timer(t *testing.T) {
	p, sched := newSlide(t)

	sched.Advance(3 * time.Second)
	state := p.State()
	assert.Equal(t, 3, state.ElapsedSeconds)
	assert.Equal(t, "00:03", state.Elapsed)

	p.StartNewGame()
	assert.Zero(t, p.State().ElapsedSeconds)

	sched.Advance(1500 * time.Millisecond)
	assert.Equal(t, 1, p.State().ElapsedSeconds)
	assert.Equal(t, 1, sched.Pending(), "only one timer may be live after a restart")
}

func TestSlidePuzzle_CloseStopsTimer(t *testing.T) {
	p, sched := newSlide(t)
	p.Close()
	sched.Advance(10 * time.Second)
	assert.Zero(t, p.State().ElapsedSeconds)
}

func TestSlidePuzzle_SolverPathWins(t *testing.T) {
	p, _ := newSlide(t)

	path, err := engine.Solve(p.State().Tiles)
	require.NoError(t, err)
	require.NotEmpty(t, path)

	for _, idx := range path {
		require.True(t, p.SlideTile(idx), "solver produced illegal move %d", idx)
	}
	state := p.State()
	assert.True(t, state.IsSolved)
	assert.Equal(t, len(path), state.Moves)
}

func TestSlidePuzzle_Subscribe(t *testing.T) {
	p, sched := newSlide(t)
	require.NoError(t, p.SetState(engine.SlideState{Tiles: []int{1, 2, 3, 4, 5, 6, 0, 7, 8}}))

	var got []engine.SlideState
	unsubscribe := p.Subscribe(func(s engine.Snapshot) {
		require.Equal(t, engine.KindSlide, s.Kind)
		got = append(got, *s.Slide)
	})

	p.SlideTile(0) // illegal, no publication
	p.SlideTile(7)
	sched.Advance(time.Second)
	p.SlideTile(8)

	require.Len(t, got, 3)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 0, 8}, got[0].Tiles)
	assert.Equal(t, 1, got[1].ElapsedSeconds)
	assert.True(t, got[2].IsSolved)

	unsubscribe()
	p.StartNewGame()
	assert.Len(t, got, 3)
}

func TestSlidePuzzle_SetStateValidation(t *testing.T) {
	p, _ := newSlide(t)
	before := p.State()

	bad := [][]int{
		nil,
		{1, 2, 3},
		{1, 1, 2, 3, 4, 5, 6, 7, 0},
		{1, 2, 3, 4, 5, 6, 7, 8, 9},
		// Odd inversion count: a permutation no sequence of slides can solve
		{2, 1, 3, 4, 5, 6, 7, 8, 0},
		{1, 2, 3, 4, 5, 6, 8, 7, 0},
	}
	for _, tiles := range bad {
		err := p.SetState(engine.SlideState{Tiles: tiles})
		assert.ErrorIs(t, err, engine.ErrInvalidState, "tiles %v", tiles)
	}
	assert.ErrorIs(t, p.SetState(engine.SlideState{Tiles: engine.SolvedTiles(), Moves: -1}), engine.ErrInvalidState)
	assert.Equal(t, before, p.State())
}
