package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"marlin/internal/logger"
)

// Config is consumed read-only at startup; the core never reloads it.
type Config struct {
	Theme    ThemeConfig    `toml:"theme"`
	Panel    PanelConfig    `toml:"panel"`
	Font     FontConfig     `toml:"font"`
	UI       UIConfig       `toml:"ui"`
	Search   SearchConfig   `toml:"search"`
	Bookmark BookmarkConfig `toml:"bookmarks"`
	Preview  PreviewConfig  `toml:"previews"`
}

type ThemeConfig struct {
	// Mode is "dark" or "light".
	Mode string `toml:"mode"`
}

type PanelConfig struct {
	ParentWidth  float64 `toml:"parent_width"`
	PreviewWidth float64 `toml:"preview_width"`
}

type FontConfig struct {
	FontSize float64 `toml:"font_size"`
	IconSize float64 `toml:"icon_size"`
}

type UIConfig struct {
	ShowHidden bool `toml:"show_hidden"`
	// SortBy is "name", "size", "modified" or "extension".
	SortBy string `toml:"sort_by"`
	// SortOrder is "asc" or "desc".
	SortOrder string `toml:"sort_order"`
	DirsFirst bool   `toml:"dirs_first"`
}

type SearchConfig struct {
	MaxResults  int   `toml:"max_results"`
	MaxFileSize int64 `toml:"max_file_size"`
	// SkipDirs are glob patterns for directories the search never enters.
	SkipDirs []string `toml:"skip_dirs"`
}

// BookmarkConfig maps a single character to a directory path,
// e.g. {"d" = "~/Downloads", "h" = "~"}.
type BookmarkConfig struct {
	Shortcuts map[string]string `toml:"shortcuts"`
}

// PreviewConfig lists enabled preview handler names. Available:
// directory, image, markdown, archive, pdf, office, audio, text, binary.
type PreviewConfig struct {
	Enabled []string `toml:"enabled"`
}

func Default() *Config {
	return &Config{
		Theme: ThemeConfig{Mode: "dark"},
		Panel: PanelConfig{ParentWidth: 200, PreviewWidth: 350},
		Font:  FontConfig{FontSize: 12, IconSize: 14},
		UI: UIConfig{
			ShowHidden: false,
			SortBy:     "name",
			SortOrder:  "asc",
			DirsFirst:  true,
		},
		Search: SearchConfig{
			MaxResults:  1000,
			MaxFileSize: 4 << 20,
			SkipDirs: []string{
				".git", "node_modules", "vendor", "target",
				"__pycache__", ".venv", "dist", "build", ".cache",
			},
		},
		Bookmark: BookmarkConfig{
			Shortcuts: map[string]string{
				"h": "~",
				"r": "/",
				"d": "~/Downloads",
				"t": "/tmp",
			},
		},
		Preview: PreviewConfig{
			Enabled: []string{
				"directory", "image", "markdown", "archive",
				"pdf", "office", "audio", "text", "binary",
			},
		},
	}
}

// Path returns the config file location.
func Path() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "marlin", "config.toml"), nil
}

// Load reads the config file, writing defaults on first run. A malformed
// file logs a warning and falls back to defaults rather than failing.
func Load() *Config {
	path, err := Path()
	if err != nil {
		logger.Errorf("config: cannot resolve path: %v", err)
		return Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		cfg := Default()
		if err := Save(cfg); err != nil {
			logger.Warnf("config: failed to write defaults: %v", err)
		}
		return cfg
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		logger.Warnf("config: failed to parse %s: %v, using defaults", path, err)
		return Default()
	}
	cfg.validate()
	return cfg
}

// Save writes the config, creating the directory as needed.
func Save(cfg *Config) error {
	path, err := Path()
	if err != nil {
		return fmt.Errorf("cannot resolve config path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("cannot create config directory: %w", err)
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) validate() {
	switch c.Theme.Mode {
	case "dark", "light":
	default:
		logger.Warnf("config: unknown theme mode %q, using dark", c.Theme.Mode)
		c.Theme.Mode = "dark"
	}
	switch c.UI.SortBy {
	case "name", "size", "modified", "extension":
	default:
		c.UI.SortBy = "name"
	}
	switch c.UI.SortOrder {
	case "asc", "desc":
	default:
		c.UI.SortOrder = "asc"
	}
	if c.Search.MaxResults <= 0 {
		c.Search.MaxResults = 1000
	}
	if c.Search.MaxFileSize <= 0 {
		c.Search.MaxFileSize = 4 << 20
	}
}

// ResolveBookmark expands a bookmark path, translating a leading ~ to
// the user's home directory.
func (c *Config) ResolveBookmark(key string) (string, bool) {
	raw, ok := c.Bookmark.Shortcuts[key]
	if !ok {
		return "", false
	}
	return ExpandHome(raw), true
}

// ExpandHome replaces a leading ~ with the home directory.
func ExpandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
