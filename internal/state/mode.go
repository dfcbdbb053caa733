package state

// Mode is the single active interaction state. Exactly one mode is live
// at a time and it gates which key bindings apply. Variants that need
// data carry it themselves so an impossible combination (search results
// without a results mode, a rename without a target) cannot be built.
type Mode interface {
	modeName() string
}

type Normal struct{}

// Visual marks multi-select as active.
type Visual struct{}

// Filtering is live filter text entry over the current listing.
type Filtering struct{}

// Command is colon-command text entry.
type Command struct{}

// Rename is single-line text entry bound to one entry.
type Rename struct {
	TargetPath string
}

// SearchInput is query entry for content search.
type SearchInput struct{}

// SearchResults is browsing a completed content search.
type SearchResults struct {
	Query    string
	Results  []SearchResult
	Selected int
}

// DeleteConfirm is the blocking yes/no gate before a delete.
type DeleteConfirm struct{}

// BookmarkJump waits for the single bookmark character.
type BookmarkJump struct{}

// Help is the static key reference overlay.
type Help struct{}

func (Normal) modeName() string        { return "normal" }
func (Visual) modeName() string        { return "visual" }
func (Filtering) modeName() string     { return "filtering" }
func (Command) modeName() string       { return "command" }
func (Rename) modeName() string        { return "rename" }
func (SearchInput) modeName() string   { return "search-input" }
func (SearchResults) modeName() string { return "search-results" }
func (DeleteConfirm) modeName() string { return "delete-confirm" }
func (BookmarkJump) modeName() string  { return "bookmark-jump" }
func (Help) modeName() string          { return "help" }

// IsTextEntry reports whether the mode routes keystrokes into a buffer.
func IsTextEntry(m Mode) bool {
	switch m.(type) {
	case Filtering, Command, Rename, SearchInput:
		return true
	}
	return false
}
