// Package app owns all mutable application state and the transitions
// over it. Exactly one goroutine mutates an App: the interactive loop
// feeds it key intents and drained worker results, and the view reads
// it between updates. Blocking work never happens here; it is enqueued
// to the worker and reconciled when the tagged result comes back.
package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/skratchdot/open-golang/open"

	"marlin/internal/config"
	"marlin/internal/entry"
	"marlin/internal/fileops"
	"marlin/internal/logger"
	"marlin/internal/state"
	"marlin/internal/worker"
)

// doubleGWindow is how long after the first g a second g still counts
// as gg.
const doubleGWindow = 500 * time.Millisecond

type App struct {
	Nav     *state.Navigation
	Sel     *state.Selection
	Entries state.Entries
	Clip    state.Clipboard
	Sort    state.SortOptions
	Mode    state.Mode
	Status  *state.StatusMessage

	ShowHidden bool
	FilterText string
	Skipped    int // unreadable entries in the current listing

	// Search bookkeeping outside the mode: progress arrives while the
	// user may already be doing something else.
	SearchInProgress bool
	LastQuery        string
	FilesScanned     int

	// WorkerDown latches when the worker's result channel closes. It is
	// surfaced persistently and further commands are dropped.
	WorkerDown bool
	Quitting   bool

	cfg *config.Config
	w   *worker.Worker

	// preFilterPath restores the selection active before filtering began
	// when the filter is abandoned with Escape.
	preFilterPath string

	// pendingOp is a staged copy, move or delete waiting for the shell
	// to run it on a background goroutine.
	pendingOp *FileOp

	// tabs are independent browsing contexts; Nav, Sel, Entries and
	// FilterText above always alias the active one.
	tabs   []*tab
	active int
}

func New(cfg *config.Config, w *worker.Worker, startPath string) *App {
	first := &tab{
		nav: state.NewNavigation(startPath),
		sel: state.NewSelection(),
	}
	a := &App{
		Nav:        first.nav,
		Sel:        first.sel,
		Sort:       sortFromConfig(cfg),
		Mode:       state.Normal{},
		ShowHidden: cfg.UI.ShowHidden,
		cfg:        cfg,
		w:          w,
		tabs:       []*tab{first},
	}
	a.requestLoad()
	return a
}

func sortFromConfig(cfg *config.Config) state.SortOptions {
	opts := state.DefaultSort()
	switch cfg.UI.SortBy {
	case "size":
		opts.By = state.SortBySize
	case "modified":
		opts.By = state.SortByModified
	case "extension":
		opts.By = state.SortByExtension
	}
	opts.Ascending = cfg.UI.SortOrder != "desc"
	opts.DirsFirst = cfg.UI.DirsFirst
	return opts
}

// CursorEntry returns the entry under the cursor, if any.
func (a *App) CursorEntry() (entry.Entry, bool) {
	return a.Entries.VisibleAt(a.Sel.Cursor)
}

func (a *App) setInfo(format string, args ...any) {
	a.Status = state.Info(fmt.Sprintf(format, args...))
}

func (a *App) setError(format string, args ...any) {
	a.Status = state.Error(fmt.Sprintf(format, args...))
}

// Tick expires the transient status message. The persistent worker-down
// state is re-asserted instead of dismissed.
func (a *App) Tick(now time.Time) {
	if a.WorkerDown {
		a.Status = state.Error("background worker stopped; loading and search are unavailable")
		return
	}
	if a.Status != nil && a.Status.Expired(now) {
		a.Status = nil
	}
}

// send enqueues a worker command, treating a full queue as "too busy"
// rather than blocking the dispatch path. Reports whether the command
// was actually queued.
func (a *App) send(cmd worker.Command) bool {
	if a.WorkerDown {
		return false
	}
	if !a.w.TrySend(cmd) {
		logger.Debugf("app: command queue full, dropping %T", cmd)
		return false
	}
	return true
}

// requestLoad enqueues loads for the current directory and its parent.
func (a *App) requestLoad() {
	cur := a.Nav.CurrentPath
	a.send(worker.LoadDirectory{Path: cur, ShowHidden: a.ShowHidden})
	if parent := filepath.Dir(cur); parent != cur {
		a.send(worker.LoadParent{Path: parent, ShowHidden: a.ShowHidden})
	} else {
		a.Entries.Parent = nil
	}
}

// Reload re-requests the current listing, e.g. after a filesystem
// change notification or a mutating operation.
func (a *App) Reload() {
	if ent, ok := a.CursorEntry(); ok {
		a.Nav.PendingSelection = ent.Path
	}
	a.requestLoad()
}

// MarkWorkerDown records that the worker terminated. Surfaced once as a
// persistent error; subsequent commands are dropped rather than queued.
func (a *App) MarkWorkerDown() {
	if a.WorkerDown {
		return
	}
	a.WorkerDown = true
	a.Status = state.Error("background worker stopped; loading and search are unavailable")
	logger.Errorf("app: worker result channel closed")
}

// Shutdown asks the worker to stop. The caller joins it before exit.
func (a *App) Shutdown() {
	a.w.Stop()
}

// ApplyResult reconciles one worker result into state. Directory and
// search results are guarded by identity: a result for a path or query
// the user has moved past is discarded, never applied.
func (a *App) ApplyResult(res worker.Result) {
	switch r := res.(type) {
	case worker.DirectoryLoaded:
		if r.Path != a.Nav.CurrentPath {
			logger.Debugf("app: discarding stale listing for %s (now at %s)", r.Path, a.Nav.CurrentPath)
			return
		}
		a.Entries.All = r.Entries
		a.Skipped = r.Skipped
		a.applyFilter()
		a.restoreCursor()
		if r.Skipped > 0 {
			a.setInfo("%d entries skipped (unreadable)", r.Skipped)
		}

	case worker.ParentLoaded:
		if r.Path != filepath.Dir(a.Nav.CurrentPath) {
			return
		}
		a.Entries.Parent = sorted(r.Entries, a.Sort)

	case worker.SearchProgress:
		if r.Query != a.LastQuery {
			return
		}
		a.FilesScanned = r.FilesSearched

	case worker.SearchCompleted:
		if r.Query != a.LastQuery || !a.SearchInProgress {
			logger.Debugf("app: discarding stale search result for %q", r.Query)
			return
		}
		a.SearchInProgress = false
		a.FilesScanned = r.FilesSearched
		a.Mode = state.SearchResults{Query: r.Query, Results: r.Results, Selected: 0}
		a.setInfo("search completed: %d files, %d skipped, %d matches",
			r.FilesSearched, r.FilesSkipped, len(r.Results))

	case worker.Error:
		if strings.HasPrefix(r.Context, "search") {
			a.SearchInProgress = false
		}
		a.setError("%s: %s", r.Context, r.Message)
	}
}

// restoreCursor picks the cursor for a fresh listing: a pending target
// takes precedence, then the per-directory memory, then the clamp.
func (a *App) restoreCursor() {
	if p := a.Nav.PendingSelection; p != "" {
		a.Nav.PendingSelection = ""
		if idx := a.Entries.IndexOf(p); idx >= 0 {
			a.Sel.Cursor = idx
			return
		}
	}
	if idx := a.Sel.Restore(a.Nav.CurrentPath); idx >= 0 {
		a.Sel.Cursor = idx
	}
	a.Sel.Validate(len(a.Entries.Visible))
}

// navigateTo pushes path onto history and requests its listing. The
// target is stat-checked synchronously first; navigation state is not
// mutated for a dead target.
func (a *App) navigateTo(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		a.setError("cannot open %s: not a directory", path)
		return
	}
	a.Sel.Save(a.Nav.CurrentPath)
	a.Nav.Push(path)
	a.FilterText = ""
	a.Entries.Clear()
	a.Sel.Cursor = -1
	a.requestLoad()
}

func (a *App) enterCursor() {
	ent, ok := a.CursorEntry()
	if !ok {
		return
	}
	if ent.IsDir {
		a.navigateTo(ent.Path)
		return
	}
	if err := open.Start(ent.Path); err != nil {
		a.setError("cannot open %s: %v", ent.Name, err)
	}
}

func (a *App) goParent() {
	cur := a.Nav.CurrentPath
	parent := filepath.Dir(cur)
	if parent == cur {
		return
	}
	// Keep the directory we came from focused in the new listing.
	a.Sel.Save(cur)
	a.Nav.Push(parent)
	a.Nav.PendingSelection = cur
	a.FilterText = ""
	a.Entries.Clear()
	a.Sel.Cursor = -1
	a.requestLoad()
}

func isLiveDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func (a *App) goBack() {
	a.Sel.Save(a.Nav.CurrentPath)
	if target := a.Nav.Back(isLiveDir); target != "" {
		a.FilterText = ""
		a.Entries.Clear()
		a.Sel.Cursor = -1
		a.requestLoad()
		return
	}
	a.setError("no earlier directory in history")
}

func (a *App) goForward() {
	a.Sel.Save(a.Nav.CurrentPath)
	if target := a.Nav.Forward(isLiveDir); target != "" {
		a.FilterText = ""
		a.Entries.Clear()
		a.Sel.Cursor = -1
		a.requestLoad()
		return
	}
	a.setError("no later directory in history")
}

// JumpToBookmark resolves the single-character bookmark key and
// navigates there.
func (a *App) JumpToBookmark(key string) {
	a.Mode = state.Normal{}
	path, ok := a.cfg.ResolveBookmark(key)
	if !ok {
		a.setError("no bookmark bound to %q", key)
		return
	}
	a.navigateTo(path)
}

// targetPaths returns what a clipboard or delete operation acts on: the
// multi-select set when non-empty, otherwise the cursor entry.
func (a *App) targetPaths() []string {
	if len(a.Sel.Multi) > 0 {
		return a.Sel.MultiPaths()
	}
	if ent, ok := a.CursorEntry(); ok {
		return []string{ent.Path}
	}
	return nil
}

func (a *App) yank(op state.ClipboardOp) {
	paths := a.targetPaths()
	if len(paths) == 0 {
		return
	}
	// Existence is checked at paste time, not here.
	a.Clip.Set(paths, op)
	if err := clipboard.WriteAll(strings.Join(paths, "\n")); err != nil {
		logger.Debugf("app: system clipboard unavailable: %v", err)
	}
	verb := "yanked"
	if op == state.OpCut {
		verb = "cut"
	}
	a.setInfo("%s %d item(s)", verb, len(paths))
	if _, ok := a.Mode.(state.Visual); ok {
		a.Mode = state.Normal{}
		a.Sel.ClearMulti()
	}
}

// paste retains only the clipboard paths that still exist, then stages
// a copy or move into the current directory. The filesystem work runs
// off the interactive goroutine; Lstat here is the fast metadata check
// that decides whether there is anything to do at all.
func (a *App) paste() {
	if a.Clip.IsEmpty() {
		a.setError("clipboard is empty")
		return
	}
	live := a.Clip.Paths[:0:0]
	for _, p := range a.Clip.Paths {
		if _, err := os.Lstat(p); err == nil {
			live = append(live, p)
		}
	}
	missing := len(a.Clip.Paths) - len(live)
	if len(live) == 0 {
		a.setError("paste aborted: all clipboard entries are gone")
		return
	}

	kind, verb := FileOpCopy, "copying"
	if a.Clip.Op == state.OpCut {
		kind, verb = FileOpMove, "moving"
	}
	a.pendingOp = &FileOp{Kind: kind, Paths: live, Dest: a.Nav.CurrentPath, Missing: missing}
	a.setInfo("%s %d item(s)…", verb, len(live))
}

func (a *App) confirmDelete() {
	if len(a.targetPaths()) == 0 {
		return
	}
	a.Mode = state.DeleteConfirm{}
}

// performDelete stages the delete for background execution.
func (a *App) performDelete() {
	a.Mode = state.Normal{}
	paths := a.targetPaths()
	if len(paths) == 0 {
		return
	}
	a.Sel.ClearMulti()
	// The cursor keeps its index and clamps when the fresh listing
	// arrives, landing on a neighbor of the removed entry.
	a.Nav.PendingSelection = ""
	a.pendingOp = &FileOp{Kind: FileOpDelete, Paths: paths}
	a.setInfo("deleting %d item(s)…", len(paths))
}

// StartRename enters rename mode for the cursor entry. The shell seeds
// its text buffer with the returned current name.
func (a *App) StartRename() (string, bool) {
	ent, ok := a.CursorEntry()
	if !ok {
		return "", false
	}
	a.Mode = state.Rename{TargetPath: ent.Path}
	return ent.Name, true
}

// SubmitRename applies the rename typed into the buffer.
func (a *App) SubmitRename(newName string) {
	mode, ok := a.Mode.(state.Rename)
	a.Mode = state.Normal{}
	if !ok {
		return
	}
	if err := fileops.Rename(mode.TargetPath, newName); err != nil {
		a.setError("rename failed: %v", err)
		return
	}
	a.Nav.PendingSelection = filepath.Join(filepath.Dir(mode.TargetPath), newName)
	a.setInfo("renamed to %s", newName)
	a.requestLoad()
}

// ExecuteCommand runs one colon command. Unknown commands surface an
// error, never crash.
func (a *App) ExecuteCommand(text string) {
	a.Mode = state.Normal{}
	fields := strings.Fields(strings.TrimSpace(text))
	if len(fields) == 0 {
		return
	}
	switch fields[0] {
	case "q", "quit":
		a.Quitting = true
	case "mkdir":
		if len(fields) < 2 {
			a.setError("usage: :mkdir <name>")
			return
		}
		name := strings.Join(fields[1:], " ")
		if err := fileops.CreateDir(a.Nav.CurrentPath, name); err != nil {
			a.setError("mkdir failed: %v", err)
			return
		}
		a.Nav.PendingSelection = filepath.Join(a.Nav.CurrentPath, name)
		a.setInfo("created directory %s", name)
		a.requestLoad()
	case "touch":
		if len(fields) < 2 {
			a.setError("usage: :touch <name>")
			return
		}
		name := strings.Join(fields[1:], " ")
		if err := fileops.CreateFile(a.Nav.CurrentPath, name); err != nil {
			a.setError("touch failed: %v", err)
			return
		}
		a.Nav.PendingSelection = filepath.Join(a.Nav.CurrentPath, name)
		a.setInfo("created file %s", name)
		a.requestLoad()
	default:
		a.setError("unknown command :%s", fields[0])
	}
}

// SubmitSearch dispatches a content search rooted at the current
// directory. A newer query supersedes any in-flight one; stale results
// are recognized by query identity and discarded.
func (a *App) SubmitSearch(query string) {
	a.Mode = state.Normal{}
	query = strings.TrimSpace(query)
	if query == "" {
		a.setError("empty search query")
		return
	}
	opts := state.DefaultSearchOptions()
	opts.IncludeHidden = a.ShowHidden
	opts.MaxResults = a.cfg.Search.MaxResults
	opts.MaxFileSize = a.cfg.Search.MaxFileSize

	// Progress state flips only once the command is actually queued; a
	// dropped send must not leave a spinner that nothing will clear.
	if !a.send(worker.SearchContent{
		Query:   query,
		Root:    a.Nav.CurrentPath,
		Options: opts,
	}) {
		a.setError("search not started: worker is busy")
		return
	}
	a.LastQuery = query
	a.SearchInProgress = true
	a.FilesScanned = 0
}

// openSearchResult jumps to the directory containing the selected match
// and focuses the file.
func (a *App) openSearchResult() {
	mode, ok := a.Mode.(state.SearchResults)
	if !ok || mode.Selected < 0 || mode.Selected >= len(mode.Results) {
		return
	}
	res := mode.Results[mode.Selected]
	a.Mode = state.Normal{}
	a.navigateTo(filepath.Dir(res.Path))
	a.Nav.PendingSelection = res.Path
}

func (a *App) toggleHidden() {
	a.ShowHidden = !a.ShowHidden
	// Hidden entries are excluded at read time, so this needs a reload.
	a.Reload()
}
