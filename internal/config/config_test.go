package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"marlin/internal/logger"
)

func TestMain(m *testing.M) {
	logger.Disable()
	os.Exit(m.Run())
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	cfg.validate()

	if cfg.Theme.Mode != "dark" {
		t.Errorf("theme = %q", cfg.Theme.Mode)
	}
	if cfg.Search.MaxResults <= 0 || cfg.Search.MaxFileSize <= 0 {
		t.Error("search limits must be positive")
	}
	if len(cfg.Preview.Enabled) == 0 {
		t.Error("default config should enable preview handlers")
	}
}

func TestValidateRepairsBadValues(t *testing.T) {
	cfg := Default()
	cfg.Theme.Mode = "neon"
	cfg.UI.SortBy = "chaos"
	cfg.UI.SortOrder = "sideways"
	cfg.Search.MaxResults = -5

	cfg.validate()

	if cfg.Theme.Mode != "dark" {
		t.Errorf("theme not repaired: %q", cfg.Theme.Mode)
	}
	if cfg.UI.SortBy != "name" || cfg.UI.SortOrder != "asc" {
		t.Errorf("sort not repaired: %q %q", cfg.UI.SortBy, cfg.UI.SortOrder)
	}
	if cfg.Search.MaxResults != 1000 {
		t.Errorf("max results not repaired: %d", cfg.Search.MaxResults)
	}
}

func TestRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.UI.ShowHidden = true
	cfg.Bookmark.Shortcuts["x"] = "/srv/data"

	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	loaded := Default()
	if err := toml.Unmarshal(data, loaded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if !loaded.UI.ShowHidden {
		t.Error("show_hidden lost in round trip")
	}
	if loaded.Bookmark.Shortcuts["x"] != "/srv/data" {
		t.Error("bookmark lost in round trip")
	}
}

func TestResolveBookmarkExpandsHome(t *testing.T) {
	cfg := Default()
	cfg.Bookmark.Shortcuts["m"] = "~/Music"

	path, ok := cfg.ResolveBookmark("m")
	if !ok {
		t.Fatal("bookmark not found")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if path != filepath.Join(home, "Music") {
		t.Errorf("resolved = %q", path)
	}

	if _, ok := cfg.ResolveBookmark("missing"); ok {
		t.Error("unknown bookmark should not resolve")
	}
}

func TestExpandHome(t *testing.T) {
	if got := ExpandHome("/absolute/path"); got != "/absolute/path" {
		t.Errorf("absolute path altered: %q", got)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got := ExpandHome("~"); got != home {
		t.Errorf("~ = %q, want %q", got, home)
	}
	if got := ExpandHome("~/sub"); got != filepath.Join(home, "sub") {
		t.Errorf("~/sub = %q", got)
	}
}
