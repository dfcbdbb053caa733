package state

import "marlin/internal/entry"

// Entries holds the unfiltered listing of the current directory, its
// filtered/sorted projection, and the parent directory's listing for the
// left pane. Visible is always recomputed wholesale from All plus the
// current filter/sort inputs, never patched incrementally.
type Entries struct {
	All     []entry.Entry
	Visible []entry.Entry
	Parent  []entry.Entry
}

func (e *Entries) Clear() {
	e.All = nil
	e.Visible = nil
	e.Parent = nil
}

// VisibleAt returns the visible entry at idx, if in bounds.
func (e *Entries) VisibleAt(idx int) (entry.Entry, bool) {
	if idx < 0 || idx >= len(e.Visible) {
		return entry.Entry{}, false
	}
	return e.Visible[idx], true
}

// IndexOf returns the visible index of path, or -1.
func (e *Entries) IndexOf(path string) int {
	for i, ent := range e.Visible {
		if ent.Path == path {
			return i
		}
	}
	return -1
}
