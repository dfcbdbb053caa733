package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"

	"marlin/internal/config"
	"marlin/internal/logger"
	"marlin/internal/search"
	"marlin/internal/worker"
)

func main() {
	if err := logger.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: logging disabled: %v\n", err)
	}
	defer logger.Close()

	cfg := config.Load()

	engine := search.NewEngine(cfg.Search.SkipDirs)
	w := worker.New(engine)
	w.Start()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Warnf("main: filesystem watching unavailable: %v", err)
		watcher = nil
	}

	m := initialModel(cfg, w, watcher, startDir())
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		logger.Errorf("main: %v", err)
		fmt.Fprintf(os.Stderr, "marlin: %v\n", err)
		os.Exit(1)
	}
}
