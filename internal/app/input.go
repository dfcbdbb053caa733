package app

import (
	"time"

	"marlin/internal/state"
)

// HandleKey dispatches one key intent for the modes that do not route
// keystrokes into a text buffer (the shell owns those buffers and calls
// the Submit/Cancel methods directly). Keys with no binding in the
// current mode are deliberate no-ops.
func (a *App) HandleKey(key string) {
	switch a.Mode.(type) {
	case state.Normal:
		a.handleNormalKey(key)
	case state.Visual:
		a.handleVisualKey(key)
	case state.SearchResults:
		a.handleSearchResultsKey(key)
	case state.DeleteConfirm:
		a.handleDeleteConfirmKey(key)
	case state.BookmarkJump:
		a.handleBookmarkKey(key)
	case state.Help:
		a.handleHelpKey(key)
	}
}

func (a *App) handleNormalKey(key string) {
	switch key {
	case "j", "down":
		a.moveCursor(1)
	case "k", "up":
		a.moveCursor(-1)
	case "g":
		a.handleG()
	case "G":
		a.cursorToEnd()
	case "h", "left", "backspace":
		a.goParent()
	case "l", "right", "enter":
		a.enterCursor()
	case "H":
		a.goBack()
	case "L":
		a.goForward()
	case "/":
		a.StartFilter()
	case ":":
		a.Mode = state.Command{}
	case "v":
		a.enterVisual()
	case "y":
		a.yank(state.OpCopy)
	case "x":
		a.yank(state.OpCut)
	case "p":
		a.paste()
	case "d":
		a.confirmDelete()
	case "S":
		a.Mode = state.SearchInput{}
	case "'":
		a.Mode = state.BookmarkJump{}
	case ".":
		a.toggleHidden()
	case "s":
		a.cycleSort()
	case "o":
		a.toggleSortOrder()
	case "O":
		a.toggleDirsFirst()
	case "R":
		a.Reload()
	case "t":
		a.NewTab()
	case "T":
		a.CloseTab()
	case "tab":
		a.NextTab()
	case "shift+tab":
		a.PrevTab()
	case "?":
		a.Mode = state.Help{}
	case "esc":
		a.Sel.ClearMulti()
		a.Status = nil
	}
}

func (a *App) handleVisualKey(key string) {
	switch key {
	case "j", "down":
		a.moveCursor(1)
		a.markCursor()
	case "k", "up":
		a.moveCursor(-1)
		a.markCursor()
	case " ", "space":
		a.toggleCursor()
	case "y":
		a.yank(state.OpCopy)
	case "x":
		a.yank(state.OpCut)
	case "d":
		a.confirmDelete()
	case "v", "esc":
		a.Mode = state.Normal{}
		a.Sel.ClearMulti()
	}
}

func (a *App) handleSearchResultsKey(key string) {
	mode, ok := a.Mode.(state.SearchResults)
	if !ok {
		return
	}
	switch key {
	case "j", "down":
		if mode.Selected < len(mode.Results)-1 {
			mode.Selected++
			a.Mode = mode
		}
	case "k", "up":
		if mode.Selected > 0 {
			mode.Selected--
			a.Mode = mode
		}
	case "enter", "l":
		a.openSearchResult()
	case "esc", "q":
		a.Mode = state.Normal{}
	}
}

func (a *App) handleDeleteConfirmKey(key string) {
	switch key {
	case "y", "enter":
		a.performDelete()
	case "n", "esc":
		a.Mode = state.Normal{}
	}
}

func (a *App) handleBookmarkKey(key string) {
	if key == "esc" {
		a.Mode = state.Normal{}
		return
	}
	if len([]rune(key)) == 1 {
		a.JumpToBookmark(key)
	}
}

func (a *App) handleHelpKey(key string) {
	switch key {
	case "esc", "q", "?":
		a.Mode = state.Normal{}
	}
}

func (a *App) moveCursor(delta int) {
	n := len(a.Entries.Visible)
	if n == 0 {
		return
	}
	a.Sel.Cursor += delta
	a.Sel.Validate(n)
	a.Sel.LastMove = time.Now()
}

// handleG implements the gg shortcut: two g presses within the window
// jump to the top, a lone g arms the window and does nothing yet.
func (a *App) handleG() {
	now := time.Now()
	if now.Sub(a.Sel.LastGPress) <= doubleGWindow {
		a.Sel.LastGPress = time.Time{}
		if len(a.Entries.Visible) > 0 {
			a.Sel.Cursor = 0
			a.Sel.LastMove = now
		}
		return
	}
	a.Sel.LastGPress = now
}

func (a *App) cursorToEnd() {
	if n := len(a.Entries.Visible); n > 0 {
		a.Sel.Cursor = n - 1
		a.Sel.LastMove = time.Now()
	}
}

// enterVisual seeds the multi-select with the cursor entry.
func (a *App) enterVisual() {
	ent, ok := a.CursorEntry()
	if !ok {
		return
	}
	a.Mode = state.Visual{}
	a.Sel.Multi[ent.Path] = struct{}{}
}

func (a *App) markCursor() {
	if ent, ok := a.CursorEntry(); ok {
		a.Sel.Multi[ent.Path] = struct{}{}
	}
}

func (a *App) toggleCursor() {
	if ent, ok := a.CursorEntry(); ok {
		a.Sel.Toggle(ent.Path)
	}
}
