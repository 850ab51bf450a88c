// Package config provides theme management for the Puzzle Arcade.
//
// The config package handles:
//   - Loading display themes from HCL or JSON files
//   - Theme validation
//   - Default theme selection
//   - Theme discovery and listing
//
// Theme Format:
//
// Themes live in the themes directory, one per file, and are decoded with
// hclsimple so both native HCL (.hcl) and HCL's JSON syntax (.json) work:
//
//	name        = "sea"
//	description = "Under the waves"
//
//	memory_symbols = ["🐙", "🐠", "🐬", "🦀", "🐳", "🦑", "🐚", "🦈"]
//	tile_symbols   = ["🐙", "🐠", "🐬", "🦀"]
//
// A theme only changes what the symbol-based games draw. Grid sizes, scoring and
// timing never come from a theme.
//
// Usage:
//
//	manager, err := config.NewManager("themes")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	theme, err := manager.LoadTheme("sea")
//	themes, err := manager.ListThemes()
//
// The default theme is fruit when that file exists, otherwise the first valid
// theme on disk, otherwise the built-in engine.DefaultTheme. Saved themes are
// written as JSON.
package config
