package state

import "time"

// Selection tracks the cursor into the visible entry list plus the
// multi-select set. Cursor is an index into the post-filter listing and
// must be revalidated after every mutation of that listing; -1 means no
// selection.
type Selection struct {
	Cursor int
	Multi  map[string]struct{} // absolute paths, independent of cursor

	// DirCursors remembers the cursor per directory for restore on revisit.
	DirCursors map[string]int

	LastMove   time.Time // for autoscroll suppression
	LastGPress time.Time // double-g detection window
}

func NewSelection() *Selection {
	return &Selection{
		Cursor:     -1,
		Multi:      make(map[string]struct{}),
		DirCursors: make(map[string]int),
	}
}

// Validate clamps the cursor to the bounds of a visible list of length n.
// It is the single idempotent post-mutation step: -1 iff the list is
// empty, otherwise strictly less than n.
func (s *Selection) Validate(n int) {
	switch {
	case n == 0:
		s.Cursor = -1
	case s.Cursor < 0:
		s.Cursor = 0
	case s.Cursor >= n:
		s.Cursor = n - 1
	}
}

// Save remembers the cursor for dir so it can be restored on revisit.
func (s *Selection) Save(dir string) {
	if s.Cursor >= 0 {
		s.DirCursors[dir] = s.Cursor
	}
}

// Restore returns the remembered cursor for dir, or -1.
func (s *Selection) Restore(dir string) int {
	if idx, ok := s.DirCursors[dir]; ok {
		return idx
	}
	return -1
}

// Toggle flips path in the multi-select set.
func (s *Selection) Toggle(path string) {
	if _, ok := s.Multi[path]; ok {
		delete(s.Multi, path)
	} else {
		s.Multi[path] = struct{}{}
	}
}

// ClearMulti empties the multi-select set (explicit mode exits only).
func (s *Selection) ClearMulti() {
	s.Multi = make(map[string]struct{})
}

// MultiPaths returns the multi-selected paths as a slice.
func (s *Selection) MultiPaths() []string {
	paths := make([]string, 0, len(s.Multi))
	for p := range s.Multi {
		paths = append(paths, p)
	}
	return paths
}
