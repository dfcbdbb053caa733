package app

import (
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"

	"marlin/internal/entry"
	"marlin/internal/state"
)

type entrySource []entry.Entry

func (s entrySource) String(i int) string { return s[i].Name }
func (s entrySource) Len() int            { return len(s) }

// applyFilter recomputes the visible list wholesale from the full
// listing, the filter text, and the sort options, then revalidates the
// cursor. Every visible-list mutation funnels through here.
func (a *App) applyFilter() {
	if a.FilterText == "" {
		a.Entries.Visible = sorted(a.Entries.All, a.Sort)
	} else {
		matches := fuzzy.FindFrom(a.FilterText, entrySource(a.Entries.All))
		visible := make([]entry.Entry, 0, len(matches))
		for _, m := range matches {
			visible = append(visible, a.Entries.All[m.Index])
		}
		a.Entries.Visible = visible
	}
	a.Sel.Validate(len(a.Entries.Visible))
}

// sorted returns a sorted copy; the full listing keeps enumeration
// order so search and reload semantics stay stable.
func sorted(entries []entry.Entry, opts state.SortOptions) []entry.Entry {
	out := make([]entry.Entry, len(entries))
	copy(out, entries)

	sort.SliceStable(out, func(i, j int) bool {
		x, y := out[i], out[j]
		if opts.DirsFirst && x.IsDir != y.IsDir {
			return x.IsDir
		}
		less := lessBy(x, y, opts.By)
		if opts.Ascending {
			return less
		}
		return lessBy(y, x, opts.By)
	})
	return out
}

func lessBy(x, y entry.Entry, by state.SortBy) bool {
	switch by {
	case state.SortBySize:
		if x.Size != y.Size {
			return x.Size < y.Size
		}
	case state.SortByModified:
		if !x.ModTime.Equal(y.ModTime) {
			return x.ModTime.Before(y.ModTime)
		}
	case state.SortByExtension:
		if x.Ext != y.Ext {
			return x.Ext < y.Ext
		}
	}
	return strings.ToLower(x.Name) < strings.ToLower(y.Name)
}

// StartFilter enters filtering mode, remembering the current selection
// so Escape can restore it.
func (a *App) StartFilter() {
	if ent, ok := a.CursorEntry(); ok {
		a.preFilterPath = ent.Path
	} else {
		a.preFilterPath = ""
	}
	a.FilterText = ""
	a.Mode = state.Filtering{}
}

// SetFilterText recomputes the visible list live on each keystroke.
func (a *App) SetFilterText(text string) {
	a.FilterText = text
	a.applyFilter()
}

// CancelFilter abandons the filter and restores the pre-filter selection.
func (a *App) CancelFilter() {
	a.Mode = state.Normal{}
	a.FilterText = ""
	a.applyFilter()
	if a.preFilterPath != "" {
		if idx := a.Entries.IndexOf(a.preFilterPath); idx >= 0 {
			a.Sel.Cursor = idx
		}
	}
	a.preFilterPath = ""
}

// AcceptFilter keeps the filtered view for normal navigation within it.
func (a *App) AcceptFilter() {
	a.Mode = state.Normal{}
	a.preFilterPath = ""
}

func (a *App) cycleSort() {
	a.Sort.CycleBy()
	a.applyFilter()
}

func (a *App) toggleSortOrder() {
	a.Sort.ToggleOrder()
	a.applyFilter()
}

func (a *App) toggleDirsFirst() {
	a.Sort.ToggleDirsFirst()
	a.applyFilter()
}
