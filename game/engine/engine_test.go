package engine_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/puzzle-arcade/game/engine"
	"github.com/wricardo/puzzle-arcade/game/engine/enginetest"
)

func TestNew(t *testing.T) {
	sched := enginetest.NewScheduler()
	for _, kind := range engine.Kinds() {
		t.Run(string(kind), func(t *testing.T) {
			e, err := engine.New(kind, nil, engine.WithScheduler(sched))
			require.NoError(t, err)
			defer e.Close()

			assert.Equal(t, kind, e.Kind())
			snap := e.Snapshot()
			assert.Equal(t, kind, snap.Kind)
			assert.False(t, snap.Finished())
		})
	}

	_, err := engine.New("chess", nil)
	assert.ErrorIs(t, err, engine.ErrUnknownKind)
}

func TestNew_UsesThemeSymbols(t *testing.T) {
	theme := &engine.Theme{
		Name:          "letters",
		MemorySymbols: []string{"A", "B", "C", "D", "E", "F", "G", "H"},
		TileSymbols:   []string{"W", "X", "Y", "Z"},
	}
	e, err := engine.New(engine.KindTileMatch, theme)
	require.NoError(t, err)

	for _, row := range e.Snapshot().TileMatch.Grid {
		for _, tile := range row {
			assert.Equal(t, theme.TileSymbols[tile.Type], tile.Symbol)
		}
	}

	_, err = engine.New(engine.KindMemory, &engine.Theme{Name: "short", MemorySymbols: []string{"A"}})
	assert.Error(t, err)
}

func TestParseKind(t *testing.T) {
	tests := map[string]engine.Kind{
		"slide":          engine.KindSlide,
		" Slide-Puzzle ": engine.KindSlide,
		"memory":         engine.KindMemory,
		"MemoryMatch":    engine.KindMemory,
		"tilematch":      engine.KindTileMatch,
		"match3":         engine.KindTileMatch,
	}
	for in, want := range tests {
		got, err := engine.ParseKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := engine.ParseKind("sudoku")
	assert.ErrorIs(t, err, engine.ErrUnknownKind)
}

func TestDescribe(t *testing.T) {
	title, desc := engine.Describe(engine.KindSlide)
	assert.Equal(t, "Slide Puzzle", title)
	assert.Equal(t, "Arrange numbers in order", desc)

	title, desc = engine.Describe(engine.KindMemory)
	assert.Equal(t, "Memory Puzzle", title)
	assert.Equal(t, "Match pairs of cards", desc)

	title, _ = engine.Describe(engine.KindTileMatch)
	assert.Equal(t, "Tile Match", title)
}

func TestSnapshotJSON(t *testing.T) {
	p := engine.NewSlidePuzzle(engine.WithScheduler(enginetest.NewScheduler()))
	require.NoError(t, p.SetState(engine.SlideState{Tiles: []int{1, 2, 3, 4, 5, 6, 7, 0, 8}, ElapsedSeconds: 75}))

	data, err := json.Marshal(p.Snapshot())
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"kind": "slide",
		"slide": {
			"tiles": [1,2,3,4,5,6,7,0,8],
			"moves": 0,
			"elapsed_seconds": 75,
			"elapsed": "01:15",
			"is_solved": false
		}
	}`, string(data))
}

func TestValidateTheme(t *testing.T) {
	require.NoError(t, engine.ValidateTheme(engine.DefaultTheme()))

	tests := []struct {
		name   string
		mutate func(*engine.Theme)
	}{
		{"missing name", func(th *engine.Theme) { th.Name = "" }},
		{"seven memory symbols", func(th *engine.Theme) { th.MemorySymbols = th.MemorySymbols[:7] }},
		{"duplicate memory symbol", func(th *engine.Theme) { th.MemorySymbols[7] = th.MemorySymbols[0] }},
		{"empty tile symbol", func(th *engine.Theme) { th.TileSymbols[2] = "" }},
		{"five tile symbols", func(th *engine.Theme) { th.TileSymbols = append(th.TileSymbols, "x") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			theme := engine.DefaultTheme()
			tt.mutate(theme)
			assert.ErrorIs(t, engine.ValidateTheme(theme), engine.ErrInvalidTheme)
		})
	}
	assert.ErrorIs(t, engine.ValidateTheme(nil), engine.ErrInvalidTheme)
}

func TestThemeClone(t *testing.T) {
	theme := engine.DefaultTheme()
	clone := theme.Clone()
	clone.MemorySymbols[0] = "X"
	clone.TileSymbols[0] = "Y"
	assert.Equal(t, "🍎", theme.MemorySymbols[0])
	assert.Equal(t, "🍎", theme.TileSymbols[0])

	var nilTheme *engine.Theme
	assert.Nil(t, nilTheme.Clone())
}

func TestFormatElapsed(t *testing.T) {
	tests := map[int]string{
		0:    "00:00",
		9:    "00:09",
		60:   "01:00",
		754:  "12:34",
		3600: "60:00",
		-3:   "00:00",
	}
	for in, want := range tests {
		assert.Equal(t, want, engine.FormatElapsed(in), "seconds %d", in)
	}
}

func TestPosition(t *testing.T) {
	p := engine.Position{Row: 1, Col: 1}
	assert.True(t, p.Adjacent(engine.Position{Row: 0, Col: 1}))
	assert.True(t, p.Adjacent(engine.Position{Row: 1, Col: 2}))
	assert.False(t, p.Adjacent(engine.Position{Row: 2, Col: 2}))
	assert.False(t, p.Adjacent(p))

	assert.True(t, p.In(4))
	assert.False(t, engine.Position{Row: 4, Col: 0}.In(4))
	assert.False(t, engine.Position{Row: 0, Col: -1}.In(4))

	assert.Equal(t, 5, engine.ManhattanDistance(engine.Position{Row: 0, Col: 0}, engine.Position{Row: 3, Col: 2}))
}

func TestIsSolvable(t *testing.T) {
	assert.True(t, engine.IsSolvable(engine.SolvedTiles()))
	assert.True(t, engine.IsSolvable([]int{1, 2, 3, 4, 5, 6, 7, 0, 8}))
	assert.False(t, engine.IsSolvable([]int{2, 1, 3, 4, 5, 6, 7, 8, 0}))
	assert.False(t, engine.IsSolvable([]int{1, 2, 3}))
}

func TestClockScheduler(t *testing.T) {
	sched := engine.NewClockScheduler(clock.New())
	fired := make(chan struct{})
	sched.AfterFunc(time.Millisecond, func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("callback did not fire")
	}

	task := sched.AfterFunc(time.Hour, func() { t.Error("stopped task fired") })
	assert.True(t, task.Stop())
}

func TestManualScheduler(t *testing.T) {
	sched := enginetest.NewScheduler()
	var order []string
	sched.AfterFunc(2*time.Second, func() { order = append(order, "b") })
	sched.AfterFunc(time.Second, func() {
		order = append(order, "a")
		sched.AfterFunc(500*time.Millisecond, func() { order = append(order, "a2") })
	})
	stopped := sched.AfterFunc(1500*time.Millisecond, func() { order = append(order, "never") })
	require.True(t, stopped.Stop())
	assert.False(t, stopped.Stop())

	sched.Advance(2 * time.Second)
	assert.Equal(t, []string{"a", "a2", "b"}, order)
	assert.Equal(t, 2*time.Second, sched.Now())
	assert.Zero(t, sched.Pending())
}
