package app

import "marlin/internal/state"

// tab is one independent browsing context: location, history, cursor
// memory and filter. The listing is stashed so switching back shows it
// immediately while a fresh load reconciles behind it.
type tab struct {
	nav        *state.Navigation
	sel        *state.Selection
	entries    state.Entries
	filterText string
}

// stashActiveTab writes the live records back into the active tab
// before another one takes over the working fields.
func (a *App) stashActiveTab() {
	a.Sel.Save(a.Nav.CurrentPath)
	t := a.tabs[a.active]
	t.entries = a.Entries
	t.filterText = a.FilterText
}

// activateTab points the working fields at tab i and refreshes its
// listing. Results still in flight for the previous tab's path fail
// the identity guard and are discarded.
func (a *App) activateTab(i int) {
	a.active = i
	t := a.tabs[i]
	a.Nav = t.nav
	a.Sel = t.sel
	a.Entries = t.entries
	a.FilterText = t.filterText
	a.requestLoad()
}

// NewTab opens a tab at the current directory and switches to it.
func (a *App) NewTab() {
	a.stashActiveTab()
	t := &tab{
		nav: state.NewNavigation(a.Nav.CurrentPath),
		sel: state.NewSelection(),
	}
	a.tabs = append(a.tabs, t)
	a.activateTab(len(a.tabs) - 1)
	a.setInfo("tab %d of %d", a.active+1, len(a.tabs))
}

// CloseTab drops the active tab and activates its neighbor. The last
// tab stays open.
func (a *App) CloseTab() {
	if len(a.tabs) == 1 {
		a.setError("cannot close the last tab")
		return
	}
	a.tabs = append(a.tabs[:a.active], a.tabs[a.active+1:]...)
	if a.active >= len(a.tabs) {
		a.active = len(a.tabs) - 1
	}
	t := a.tabs[a.active]
	a.Nav = t.nav
	a.Sel = t.sel
	a.Entries = t.entries
	a.FilterText = t.filterText
	a.requestLoad()
}

func (a *App) NextTab() { a.switchTab(1) }
func (a *App) PrevTab() { a.switchTab(-1) }

// switchTab cycles through tabs, wrapping at the ends.
func (a *App) switchTab(delta int) {
	if len(a.tabs) == 1 {
		return
	}
	a.stashActiveTab()
	a.activateTab((a.active + delta + len(a.tabs)) % len(a.tabs))
}

// TabPosition reports the 1-based active tab and the tab count.
func (a *App) TabPosition() (int, int) {
	return a.active + 1, len(a.tabs)
}
