package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/puzzle-arcade/game/engine"
)

func TestManhattan(t *testing.T) {
	tests := []struct {
		name     string
		tiles    []int
		expected int
	}{
		{"Solved", []int{1, 2, 3, 4, 5, 6, 7, 8, 0}, 0},
		{"One slide away", []int{1, 2, 3, 4, 5, 6, 7, 0, 8}, 1},
		{"Two tiles off", []int{1, 2, 3, 4, 0, 6, 7, 5, 8}, 2},
		{"Reversed", []int{8, 7, 6, 5, 4, 3, 2, 1, 0}, 16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, manhattan(tt.tiles))
		})
	}
}

func TestAnalyzeSlide(t *testing.T) {
	report, err := analyzeSlide(10, 7, true)
	require.NoError(t, err)

	assert.Equal(t, 10, report.Puzzles)
	assert.Equal(t, 10, report.Solvable, "shuffles by legal moves stay solvable")
	assert.Equal(t, 0, report.AlreadySolved)

	total := 0
	for moves, count := range report.Histogram {
		assert.GreaterOrEqual(t, moves, 1)
		assert.LessOrEqual(t, moves, 31)
		total += count
	}
	assert.Equal(t, 10, total)
	assert.LessOrEqual(t, report.MinMoves, report.MaxMoves)
	assert.GreaterOrEqual(t, report.MeanMoves, float64(report.MinMoves))
	assert.LessOrEqual(t, report.MeanMoves, float64(report.MaxMoves))
}

func TestAnalyzeSlide_Reproducible(t *testing.T) {
	a, err := analyzeSlide(5, 42, false)
	require.NoError(t, err)
	b, err := analyzeSlide(5, 42, false)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Empty(t, a.Histogram)
	assert.Zero(t, a.MeanMoves)
}

func TestAnalyzeTiles(t *testing.T) {
	report, err := analyzeTiles(50, 3)
	require.NoError(t, err)

	assert.Equal(t, 50, report.Grids)
	assert.LessOrEqual(t, report.GridsWithRuns, 50)
	if report.GridsWithRuns > 0 {
		assert.GreaterOrEqual(t, report.MaxRunTiles, 3)
	}
	assert.LessOrEqual(t, report.MaxRunTiles, 16)
}

func TestPrintSlide(t *testing.T) {
	var out bytes.Buffer
	printSlide(&out, &SlideReport{
		Puzzles:   4,
		Solvable:  4,
		MinMoves:  2,
		MaxMoves:  6,
		MeanMoves: 4,
		Histogram: map[int]int{2: 1, 4: 2, 6: 1},
	})

	text := out.String()
	assert.Contains(t, text, "Every generated board is solvable")
	assert.Contains(t, text, "Optimal moves: min 2, mean 4.00, max 6")
	assert.Contains(t, text, "   4 moves     2 "+strings.Repeat("█", 40))
	assert.Contains(t, text, "   2 moves     1 "+strings.Repeat("█", 20)+"\n")
}

func TestApp(t *testing.T) {
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out

	err := app.Run(t.Context(), []string{"analyze", "--count", "3", "--seed", "9"})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "=== Slide puzzle (3 boards")
	assert.Contains(t, out.String(), "=== Tile match (3 grids")

	err = newApp().Run(t.Context(), []string{"analyze", "-n", "0"})
	assert.Error(t, err)
}

func TestAnalyzeBoard(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, analyzeBoard(&out, []int{1, 2, 0, 4, 5, 3, 7, 8, 6}))

	text := out.String()
	assert.Contains(t, text, "Optimal moves: 2")
	assert.Contains(t, text, "   1. slide index 5 -> [1 2 3 4 5 0 7 8 6]")
	assert.Contains(t, text, "   2. slide index 8 -> [1 2 3 4 5 6 7 8 0]")
	assert.Contains(t, text, "✅ Solved")
}

func TestAnalyzeBoard_Rejected(t *testing.T) {
	tests := []struct {
		name  string
		tiles []int
	}{
		{"Odd parity", []int{2, 1, 3, 4, 5, 6, 7, 8, 0}},
		{"Not a permutation", []int{1, 1, 3, 4, 5, 6, 7, 8, 0}},
		{"Too short", []int{1, 2, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			err := analyzeBoard(&out, tt.tiles)
			assert.ErrorIs(t, err, engine.ErrInvalidState)
			assert.Empty(t, out.String())
		})
	}
}

func TestApp_Board(t *testing.T) {
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out

	err := app.Run(t.Context(), []string{"analyze", "--board", "1, 2, 3, 4, 5, 6, 7, 0, 8"})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Optimal moves: 1")

	err = newApp().Run(t.Context(), []string{"analyze", "--board", "1,2,x"})
	assert.Error(t, err)
}
