package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/hashicorp/hcl/v2/hclsimple"

	"github.com/wricardo/puzzle-arcade/game/engine"
	"github.com/wricardo/puzzle-arcade/game/service"
)

var (
	ErrThemeNotFound = service.ErrThemeNotFound
	ErrInvalidTheme  = engine.ErrInvalidTheme
)

// DefaultThemeName is loaded as the default when present
const DefaultThemeName = "fruit"

// Theme files are HCL native syntax or HCL's JSON syntax; .hcl wins when both exist
var themeExtensions = []string{".hcl", ".json"}

// Manager handles theme loading and caching
type Manager struct {
	themeDir     string
	defaultTheme *engine.Theme
	themes       map[string]*engine.Theme
	mu           sync.RWMutex
}

// NewManager creates a new theme manager over themeDir
func NewManager(themeDir string) (*Manager, error) {
	if _, err := os.Stat(themeDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("theme directory does not exist: %s", themeDir)
	}

	m := &Manager{
		themeDir: themeDir,
		themes:   make(map[string]*engine.Theme),
	}
	m.defaultTheme = m.findDefault()
	return m, nil
}

// LoadTheme loads a theme by name. The name may carry a .hcl or .json extension.
func (m *Manager) LoadTheme(name string) (*engine.Theme, error) {
	id := themeID(name)

	m.mu.RLock()
	if theme, exists := m.themes[id]; exists {
		m.mu.RUnlock()
		return theme, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if theme, exists := m.themes[id]; exists {
		return theme, nil
	}

	path, err := m.themePath(name)
	if err != nil {
		return nil, err
	}

	theme, err := DecodeThemeFile(path)
	if err != nil {
		return nil, err
	}

	m.themes[id] = theme
	return theme, nil
}

// DecodeThemeFile reads and validates a single .hcl or .json theme file
func DecodeThemeFile(path string) (*engine.Theme, error) {
	var theme engine.Theme
	if err := hclsimple.DecodeFile(path, nil, &theme); err != nil {
		return nil, fmt.Errorf("failed to parse theme %s: %w", filepath.Base(path), err)
	}
	if err := engine.ValidateTheme(&theme); err != nil {
		return nil, err
	}
	return &theme, nil
}

// ListThemes returns information about every valid theme in the directory
func (m *Manager) ListThemes() ([]*service.ThemeInfo, error) {
	entries, err := os.ReadDir(m.themeDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read theme directory: %w", err)
	}

	var themes []*service.ThemeInfo
	seen := make(map[string]bool)
	for _, entry := range entries {
		if entry.IsDir() || !IsThemeFile(entry.Name()) {
			continue
		}
		id := themeID(entry.Name())
		if seen[id] {
			continue
		}
		seen[id] = true

		theme, err := m.LoadTheme(id)
		if err != nil {
			// Skip invalid themes
			continue
		}
		path, _ := m.themePath(id)
		themes = append(themes, &service.ThemeInfo{
			Filename:      filepath.Base(path),
			ThemeID:       id,
			Name:          theme.Name,
			Description:   theme.Description,
			MemorySymbols: theme.MemorySymbols,
			TileSymbols:   theme.TileSymbols,
		})
	}
	return themes, nil
}

// GetDefault returns the default theme
func (m *Manager) GetDefault() *engine.Theme {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultTheme
}

// SetDefault sets the default theme by name
func (m *Manager) SetDefault(name string) error {
	theme, err := m.LoadTheme(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultTheme = theme
	return nil
}

// RefreshCache drops cached themes and re-resolves the default from disk
func (m *Manager) RefreshCache() {
	m.mu.Lock()
	m.themes = make(map[string]*engine.Theme)
	m.mu.Unlock()

	theme := m.findDefault()

	m.mu.Lock()
	m.defaultTheme = theme
	m.mu.Unlock()
}

// SaveTheme validates a theme and writes it as <name>.json
func (m *Manager) SaveTheme(name string, theme *engine.Theme) error {
	if err := engine.ValidateTheme(theme); err != nil {
		return err
	}
	id := themeID(name)
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return fmt.Errorf("%w: bad theme file name %q", ErrInvalidTheme, name)
	}

	data, err := json.MarshalIndent(theme, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal theme: %w", err)
	}

	path := filepath.Join(m.themeDir, id+".json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write theme file: %w", err)
	}

	m.mu.Lock()
	m.themes[id] = theme.Clone()
	m.mu.Unlock()
	return nil
}

// findDefault prefers DefaultThemeName, then the first valid theme on disk, then
// the built-in theme
func (m *Manager) findDefault() *engine.Theme {
	if theme, err := m.LoadTheme(DefaultThemeName); err == nil {
		return theme
	}
	themes, err := m.ListThemes()
	if err == nil && len(themes) > 0 {
		if theme, err := m.LoadTheme(themes[0].ThemeID); err == nil {
			return theme
		}
	}
	return engine.DefaultTheme()
}

// themePath finds the file backing a theme name inside the theme directory
func (m *Manager) themePath(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return "", ErrThemeNotFound
	}
	if IsThemeFile(name) {
		path := filepath.Join(m.themeDir, name)
		if _, err := os.Stat(path); err != nil {
			return "", ErrThemeNotFound
		}
		return path, nil
	}
	for _, ext := range themeExtensions {
		path := filepath.Join(m.themeDir, name+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", ErrThemeNotFound
}

// IsThemeFile reports whether a file name carries a theme extension
func IsThemeFile(name string) bool {
	ext := filepath.Ext(name)
	for _, e := range themeExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

func themeID(name string) string {
	if IsThemeFile(name) {
		return strings.TrimSuffix(name, filepath.Ext(name))
	}
	return name
}
