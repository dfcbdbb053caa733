package state

// Navigation holds the current directory, the visit history, and the
// per-directory cursor memory used to restore selection when revisiting.
//
// Invariant: whenever History is non-empty,
// 0 <= HistoryIndex < len(History) and CurrentPath == History[HistoryIndex].
type Navigation struct {
	CurrentPath  string
	History      []string
	HistoryIndex int

	// PendingSelection names an entry to select once the next listing
	// arrives (set when entering the parent so the child stays focused).
	PendingSelection string
}

func NewNavigation(start string) *Navigation {
	return &Navigation{
		CurrentPath:  start,
		History:      []string{start},
		HistoryIndex: 0,
	}
}

// Push records a navigation to path with browser-tab semantics: any
// forward history beyond the current index is truncated first.
func (n *Navigation) Push(path string) {
	if n.HistoryIndex < len(n.History)-1 {
		n.History = n.History[:n.HistoryIndex+1]
	}
	n.History = append(n.History, path)
	n.HistoryIndex = len(n.History) - 1
	n.CurrentPath = path
}

// Back moves toward older history, skipping entries for which alive
// returns false and pruning them. Returns the new current path, or ""
// when no older directory survives (the caller surfaces an error).
func (n *Navigation) Back(alive func(string) bool) string {
	for n.HistoryIndex > 0 {
		idx := n.HistoryIndex - 1
		target := n.History[idx]
		if alive(target) {
			n.HistoryIndex = idx
			n.CurrentPath = target
			return target
		}
		// Dead directory: prune lazily and keep moving backward.
		n.History = append(n.History[:idx], n.History[idx+1:]...)
		n.HistoryIndex--
	}
	return ""
}

// Forward is the mirror of Back.
func (n *Navigation) Forward(alive func(string) bool) string {
	for n.HistoryIndex < len(n.History)-1 {
		idx := n.HistoryIndex + 1
		target := n.History[idx]
		if alive(target) {
			n.HistoryIndex = idx
			n.CurrentPath = target
			return target
		}
		n.History = append(n.History[:idx], n.History[idx+1:]...)
	}
	return ""
}
