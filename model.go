package main

import (
	"os"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"

	"marlin/internal/app"
	"marlin/internal/config"
	"marlin/internal/entry"
	"marlin/internal/logger"
	"marlin/internal/preview"
	"marlin/internal/worker"
)

const (
	minTerminalWidth  = 60
	minTerminalHeight = 16

	previewDelay   = 250 * time.Millisecond // settle time after cursor movement
	previewMaxLine = 1000
	tickInterval   = time.Second
)

// workerResultMsg carries one drained worker result; ok is false once
// the worker's result channel has closed.
type workerResultMsg struct {
	res worker.Result
	ok  bool
}

type fsEventMsg struct{}

type previewTickMsg struct{}

// previewReadyMsg carries an asynchronously rendered preview, tagged
// with the path it was rendered for so stale ones can be dropped.
type previewReadyMsg struct {
	path    string
	content preview.Content
}

// fileOpDoneMsg reports a finished background copy, move or delete.
type fileOpDoneMsg struct {
	op     app.FileOp
	done   int
	failed int
}

type tickMsg time.Time

type model struct {
	app      *app.App
	cfg      *config.Config
	w        *worker.Worker
	registry *preview.Registry
	cache    *preview.Cache
	watcher  *fsnotify.Watcher

	input textinput.Model

	width  int
	height int

	previewPath    string // path the preview pane currently shows
	previewContent string
	watchedDir     string
}

func initialModel(cfg *config.Config, w *worker.Worker, watcher *fsnotify.Watcher, startDir string) *model {
	input := textinput.New()
	input.CharLimit = 255

	registry := preview.NewDefaultRegistry()
	if len(cfg.Preview.Enabled) > 0 {
		registry.SetEnabled(cfg.Preview.Enabled)
	}

	return &model{
		app:      app.New(cfg, w, startDir),
		cfg:      cfg,
		w:        w,
		registry: registry,
		cache:    preview.NewCache(0),
		watcher:  watcher,
		input:    input,
	}
}

func (m *model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.SetWindowTitle("marlin"),
		waitForResult(m.w),
		tick(),
	}
	if m.watcher != nil {
		cmds = append(cmds, waitForFSEvent(m.watcher))
	}
	return tea.Batch(cmds...)
}

// waitForResult blocks on the worker's result channel off the Update
// loop and republishes each result as a message.
func waitForResult(w *worker.Worker) tea.Cmd {
	return func() tea.Msg {
		res, ok := <-w.Results()
		return workerResultMsg{res: res, ok: ok}
	}
}

func waitForFSEvent(watcher *fsnotify.Watcher) tea.Cmd {
	return func() tea.Msg {
		for {
			select {
			case _, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				return fsEventMsg{}
			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				logger.Warnf("watcher: %v", err)
			}
		}
	}
}

func previewAfterDelay() tea.Cmd {
	return tea.Tick(previewDelay, func(time.Time) tea.Msg {
		return previewTickMsg{}
	})
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// runFileOp executes a staged copy, move or delete off the Update loop,
// the same way previews render: heavy I/O never blocks a redraw.
func runFileOp(op app.FileOp) tea.Cmd {
	return func() tea.Msg {
		done, failed := op.Execute()
		return fileOpDoneMsg{op: op, done: done, failed: failed}
	}
}

// renderPreviewCmd runs the handler off the Update loop; slow parses
// never block a redraw.
func (m *model) renderPreviewCmd(e entry.Entry) tea.Cmd {
	ctx := &preview.Context{
		Cache:      m.cache,
		DarkTheme:  m.cfg.Theme.Mode == "dark",
		ShowHidden: m.app.ShowHidden,
		Width:      m.previewWidth(),
		MaxSize:    preview.MaxPreviewSize,
		MaxLines:   previewMaxLine,
	}
	registry := m.registry
	return func() tea.Msg {
		return previewReadyMsg{path: e.Path, content: registry.Render(e, ctx)}
	}
}

// rewatch points the fsnotify watch at dir, dropping the previous one.
func (m *model) rewatch(dir string) {
	if m.watcher == nil || dir == m.watchedDir {
		return
	}
	if m.watchedDir != "" {
		_ = m.watcher.Remove(m.watchedDir)
	}
	if err := m.watcher.Add(dir); err != nil {
		logger.Debugf("watcher: cannot watch %s: %v", dir, err)
		m.watchedDir = ""
		return
	}
	m.watchedDir = dir
}

func startDir() string {
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "/"
}
