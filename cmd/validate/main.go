// Command validate checks the symbol theme files in a themes directory
// (default ./themes). For every .hcl and .json file it checks:
//   - The file parses as HCL native or JSON syntax
//   - A name is set
//   - Exactly 8 distinct memory symbols and 4 distinct tile symbols
//
// It also warns when a theme's name differs from its file name and when a
// .json file is shadowed by an .hcl file with the same stem. The command
// exits with a non-zero status if any theme is invalid.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/puzzle-arcade/game/config"
)

// ValidationResult captures the outcome of validating a single file.
// Messages holds errors when Valid is false; otherwise informational lines
// (prefixed ✓) and warnings (prefixed ⚠).
type ValidationResult struct {
	File     string
	Valid    bool
	Messages []string
}

// validateTheme loads and validates a single theme file
func validateTheme(path string) ValidationResult {
	result := ValidationResult{
		File:     filepath.Base(path),
		Valid:    true,
		Messages: []string{},
	}

	theme, err := config.DecodeThemeFile(path)
	if err != nil {
		result.Valid = false
		result.Messages = append(result.Messages, err.Error())
		return result
	}

	stem := strings.TrimSuffix(result.File, filepath.Ext(result.File))
	if theme.Name != stem {
		result.Messages = append(result.Messages,
			fmt.Sprintf("⚠ Name %q differs from file name; sessions select this theme as %q", theme.Name, stem))
	}

	shared := 0
	for _, tile := range theme.TileSymbols {
		for _, card := range theme.MemorySymbols {
			if tile == card {
				shared++
				break
			}
		}
	}

	result.Messages = append(result.Messages,
		fmt.Sprintf("✓ Name: %s", theme.Name),
		fmt.Sprintf("✓ Memory symbols: %s", strings.Join(theme.MemorySymbols, " ")),
		fmt.Sprintf("✓ Tile symbols: %s", strings.Join(theme.TileSymbols, " ")),
		fmt.Sprintf("✓ Tile symbols shared with memory: %d/%d", shared, len(theme.TileSymbols)),
	)
	return result
}

// validateDir validates every theme file in dir, in file name order
func validateDir(dir string) ([]ValidationResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read themes directory: %w", err)
	}

	var files []string
	stems := make(map[string][]string)
	for _, entry := range entries {
		if entry.IsDir() || !config.IsThemeFile(entry.Name()) {
			continue
		}
		files = append(files, entry.Name())
		stem := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		stems[stem] = append(stems[stem], entry.Name())
	}
	sort.Strings(files)

	results := make([]ValidationResult, 0, len(files))
	for _, name := range files {
		result := validateTheme(filepath.Join(dir, name))

		stem := strings.TrimSuffix(name, filepath.Ext(name))
		if filepath.Ext(name) == ".json" && len(stems[stem]) > 1 {
			result.Messages = append([]string{fmt.Sprintf("⚠ Shadowed by %s.hcl and never loaded", stem)}, result.Messages...)
		}
		results = append(results, result)
	}
	return results, nil
}

// report prints the results and returns true when every theme is valid
func report(w io.Writer, results []ValidationResult) bool {
	allValid := true
	for _, result := range results {
		fmt.Fprintf(w, "\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Fprintln(w, "✅ VALID")
			for _, info := range result.Messages {
				fmt.Fprintln(w, "  "+info)
			}
		} else {
			fmt.Fprintln(w, "❌ INVALID")
			allValid = false
			for _, err := range result.Messages {
				fmt.Fprintln(w, "  ❌ "+err)
			}
		}
	}

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 40))
	switch {
	case len(results) == 0:
		fmt.Fprintln(w, "⚠ No theme files found")
	case allValid:
		fmt.Fprintf(w, "✅ All %d themes are valid!\n", len(results))
	default:
		fmt.Fprintln(w, "❌ Some themes have errors")
	}
	return allValid
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "Validate symbol theme files",
		ArgsUsage: "[themes-dir]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			dir := "themes"
			if cmd.Args().Present() {
				dir = cmd.Args().First()
			}

			results, err := validateDir(dir)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}

			w := cmd.Writer
			if w == nil {
				w = os.Stdout
			}
			if !report(w, results) {
				return cli.Exit("", 1)
			}
			return nil
		},
	}
}

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
