package engine

import (
	"errors"
	"fmt"
	"slices"
)

var ErrInvalidTheme = errors.New("invalid theme")

// DefaultTheme returns the built-in fruit theme
func DefaultTheme() *Theme {
	return &Theme{
		Name:          "fruit",
		Description:   "Classic fruit stand",
		MemorySymbols: []string{"🍎", "🍌", "🍇", "🍊", "🍓", "🥝", "🍉", "🍒"},
		TileSymbols:   []string{"🍎", "🍌", "🍇", "🍊"},
	}
}

// ValidateTheme checks that a theme can drive both symbol-based games
func ValidateTheme(theme *Theme) error {
	if theme == nil {
		return fmt.Errorf("%w: theme is nil", ErrInvalidTheme)
	}
	if theme.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidTheme)
	}
	if err := validateSymbols("memory", theme.MemorySymbols, TotalPairs); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTheme, err)
	}
	if err := validateSymbols("tile", theme.TileSymbols, TileTypes); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTheme, err)
	}
	return nil
}

// Clone returns a deep copy of the theme
func (t *Theme) Clone() *Theme {
	if t == nil {
		return nil
	}
	c := *t
	c.MemorySymbols = slices.Clone(t.MemorySymbols)
	c.TileSymbols = slices.Clone(t.TileSymbols)
	return &c
}

func validateSymbols(what string, symbols []string, want int) error {
	if len(symbols) != want {
		return fmt.Errorf("%s symbols: need %d, got %d", what, want, len(symbols))
	}
	seen := make(map[string]bool, len(symbols))
	for i, s := range symbols {
		if s == "" {
			return fmt.Errorf("%s symbols: entry %d is empty", what, i)
		}
		if seen[s] {
			return fmt.Errorf("%s symbols: %q repeats", what, s)
		}
		seen[s] = true
	}
	return nil
}
