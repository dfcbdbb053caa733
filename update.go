package main

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"marlin/internal/state"
	"marlin/internal/worker"
)

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.width < minTerminalWidth {
			m.width = minTerminalWidth
		}
		if m.height < minTerminalHeight {
			m.height = minTerminalHeight
		}
		// Cached previews were wrapped for the old width.
		m.previewPath = ""
		return m, previewAfterDelay()

	case tea.KeyMsg:
		return m.handleKey(msg)

	case workerResultMsg:
		if !msg.ok {
			m.app.MarkWorkerDown()
			return m, nil
		}
		m.app.ApplyResult(msg.res)
		cmds := []tea.Cmd{waitForResult(m.w)}
		if _, ok := msg.res.(worker.DirectoryLoaded); ok {
			m.rewatch(m.app.Nav.CurrentPath)
			cmds = append(cmds, previewAfterDelay())
		}
		return m, tea.Batch(cmds...)

	case fsEventMsg:
		m.app.Reload()
		return m, waitForFSEvent(m.watcher)

	case fileOpDoneMsg:
		m.app.FinishFileOp(msg.op, msg.done, msg.failed)
		return m, previewAfterDelay()

	case previewTickMsg:
		return m, m.maybeRenderPreview()

	case previewReadyMsg:
		// Drop previews for entries the cursor has already left.
		if ent, ok := m.app.CursorEntry(); ok && ent.Path == msg.path {
			m.previewPath = msg.path
			m.previewContent = msg.content.Text
		}
		return m, nil

	case tickMsg:
		m.app.Tick(time.Time(msg))
		if m.app.Quitting {
			return m, m.quit()
		}
		return m, tick()
	}

	return m, nil
}

func (m *model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return m, m.quit()
	}

	if state.IsTextEntry(m.app.Mode) {
		return m.handleTextEntryKey(msg, key)
	}

	prevMode := m.app.Mode

	// Rename needs its buffer seeded with the current name, so it is
	// dispatched here where the text input lives.
	if _, ok := m.app.Mode.(state.Normal); ok && key == "r" {
		if name, ok := m.app.StartRename(); ok {
			m.startInput("rename: ", name)
		}
		return m, nil
	}

	m.app.HandleKey(key)

	if m.app.Quitting {
		return m, m.quit()
	}
	if state.IsTextEntry(m.app.Mode) && !state.IsTextEntry(prevMode) {
		switch m.app.Mode.(type) {
		case state.Filtering:
			m.startInput("/", "")
		case state.Command:
			m.startInput(":", "")
		case state.SearchInput:
			m.startInput("search: ", "")
		}
	}
	cmds := []tea.Cmd{previewAfterDelay()}
	if op := m.app.TakePendingOp(); op != nil {
		cmds = append(cmds, runFileOp(*op))
	}
	return m, tea.Batch(cmds...)
}

// handleTextEntryKey routes keystrokes into the text buffer, keeping
// the filter projection live and mapping Enter/Escape to the mode's
// submit and cancel transitions.
func (m *model) handleTextEntryKey(msg tea.KeyMsg, key string) (tea.Model, tea.Cmd) {
	switch key {
	case "esc":
		switch m.app.Mode.(type) {
		case state.Filtering:
			m.app.CancelFilter()
		case state.Rename:
			m.app.Mode = state.Normal{}
		default:
			m.app.Mode = state.Normal{}
		}
		m.input.Blur()
		return m, previewAfterDelay()

	case "enter":
		value := m.input.Value()
		switch m.app.Mode.(type) {
		case state.Filtering:
			m.app.AcceptFilter()
		case state.Command:
			m.app.ExecuteCommand(value)
		case state.Rename:
			m.app.SubmitRename(value)
		case state.SearchInput:
			m.app.SubmitSearch(value)
		}
		m.input.Blur()
		if m.app.Quitting {
			return m, m.quit()
		}
		return m, previewAfterDelay()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if _, ok := m.app.Mode.(state.Filtering); ok {
		m.app.SetFilterText(m.input.Value())
	}
	return m, cmd
}

func (m *model) startInput(prompt, seed string) {
	m.input.Prompt = prompt
	m.input.SetValue(seed)
	m.input.CursorEnd()
	m.input.Focus()
}

// maybeRenderPreview kicks off an async preview render once the cursor
// has settled on an entry the pane is not already showing.
func (m *model) maybeRenderPreview() tea.Cmd {
	ent, ok := m.app.CursorEntry()
	if !ok {
		m.previewPath = ""
		m.previewContent = ""
		return nil
	}
	if ent.Path == m.previewPath {
		return nil
	}
	// Still scrolling; check again shortly.
	if time.Since(m.app.Sel.LastMove) < 200*time.Millisecond {
		return previewAfterDelay()
	}
	return m.renderPreviewCmd(ent)
}

func (m *model) quit() tea.Cmd {
	m.app.Shutdown()
	m.w.Join()
	if m.watcher != nil {
		_ = m.watcher.Close()
	}
	return tea.Quit
}
