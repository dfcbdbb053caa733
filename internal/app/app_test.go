package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"marlin/internal/config"
	"marlin/internal/entry"
	"marlin/internal/logger"
	"marlin/internal/state"
	"marlin/internal/worker"
)

func TestMain(m *testing.M) {
	logger.Disable()
	os.Exit(m.Run())
}

type stubSearcher struct{}

func (stubSearcher) Search(root, query string, opts state.SearchOptions, progress func(int), stop func() bool) ([]state.SearchResult, int, int, error) {
	return nil, 0, 0, nil
}

// newTestApp builds an app rooted at a temp directory. The worker is
// never started; commands queue in its buffer and results are injected
// directly through ApplyResult.
func newTestApp(t *testing.T) (*App, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	return New(cfg, worker.New(stubSearcher{}), dir), dir
}

func listing(t *testing.T, dir string) []entry.Entry {
	t.Helper()
	entries, _, err := entry.ReadDirectory(dir, false)
	require.NoError(t, err)
	return entries
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestRaceGuardDiscardsStaleListing(t *testing.T) {
	a, dirA := newTestApp(t)
	writeFile(t, dirA, "a.txt", "a")

	dirB := t.TempDir()
	writeFile(t, dirB, "b.txt", "b")

	// A result for a directory we are not in is discarded outright.
	a.ApplyResult(worker.DirectoryLoaded{Path: dirB, Entries: listing(t, dirB)})
	require.Empty(t, a.Entries.All)

	// Navigate to B, then let B's listing land followed by a slow,
	// stale listing for A.
	a.navigateTo(dirB)
	a.ApplyResult(worker.DirectoryLoaded{Path: dirB, Entries: listing(t, dirB)})
	a.ApplyResult(worker.DirectoryLoaded{Path: dirA, Entries: listing(t, dirA)})

	require.Len(t, a.Entries.All, 1)
	require.Equal(t, "b.txt", a.Entries.All[0].Name)
}

func TestFilterEscapeRestoresSelection(t *testing.T) {
	a, dir := newTestApp(t)
	writeFile(t, dir, "a.txt", "")
	writeFile(t, dir, "b.txt", "")

	a.ApplyResult(worker.DirectoryLoaded{Path: dir, Entries: listing(t, dir)})
	require.Equal(t, 2, len(a.Entries.Visible))

	// Move the cursor to b.txt before filtering.
	a.Sel.Cursor = a.Entries.IndexOf(filepath.Join(dir, "b.txt"))
	require.NotEqual(t, -1, a.Sel.Cursor)

	a.StartFilter()
	a.SetFilterText("a")
	require.Len(t, a.Entries.Visible, 1)
	require.Equal(t, "a.txt", a.Entries.Visible[0].Name)
	require.Less(t, a.Sel.Cursor, len(a.Entries.Visible))

	a.CancelFilter()
	require.Len(t, a.Entries.Visible, 2)
	ent, ok := a.CursorEntry()
	require.True(t, ok)
	require.Equal(t, "b.txt", ent.Name)
	require.IsType(t, state.Normal{}, a.Mode)
}

func TestFilterIsIdempotent(t *testing.T) {
	a, dir := newTestApp(t)
	writeFile(t, dir, "alpha.txt", "")
	writeFile(t, dir, "beta.txt", "")
	writeFile(t, dir, "gamma.txt", "")
	a.ApplyResult(worker.DirectoryLoaded{Path: dir, Entries: listing(t, dir)})

	a.SetFilterText("al")
	once := append([]entry.Entry(nil), a.Entries.Visible...)
	a.SetFilterText("al")
	require.Equal(t, once, a.Entries.Visible)
}

func TestFilterAcceptKeepsProjection(t *testing.T) {
	a, dir := newTestApp(t)
	writeFile(t, dir, "a.txt", "")
	writeFile(t, dir, "b.txt", "")
	a.ApplyResult(worker.DirectoryLoaded{Path: dir, Entries: listing(t, dir)})

	a.StartFilter()
	a.SetFilterText("a")
	a.AcceptFilter()

	require.IsType(t, state.Normal{}, a.Mode)
	require.Len(t, a.Entries.Visible, 1)
	require.Equal(t, "a", a.FilterText)
}

func TestSelectionRevalidatedAfterListMutation(t *testing.T) {
	a, dir := newTestApp(t)
	for _, n := range []string{"a.txt", "b.txt", "c.txt"} {
		writeFile(t, dir, n, "")
	}
	a.ApplyResult(worker.DirectoryLoaded{Path: dir, Entries: listing(t, dir)})
	a.Sel.Cursor = 2

	// Shrink the listing; the cursor must clamp, never dangle.
	require.NoError(t, os.Remove(filepath.Join(dir, "c.txt")))
	a.ApplyResult(worker.DirectoryLoaded{Path: dir, Entries: listing(t, dir)})
	require.Equal(t, 1, a.Sel.Cursor)

	// Empty listing clears the cursor entirely.
	a.ApplyResult(worker.DirectoryLoaded{Path: dir, Entries: nil})
	require.Equal(t, -1, a.Sel.Cursor)
}

func TestStaleSearchResultDiscarded(t *testing.T) {
	a, _ := newTestApp(t)

	a.SubmitSearch("foo")
	a.SubmitSearch("bar")
	require.Equal(t, "bar", a.LastQuery)

	// The superseded query's completion must not take over the mode.
	a.ApplyResult(worker.SearchCompleted{Query: "foo", Results: []state.SearchResult{{Path: "/x"}}})
	require.IsType(t, state.Normal{}, a.Mode)
	require.True(t, a.SearchInProgress)

	a.ApplyResult(worker.SearchCompleted{Query: "bar"})
	mode, ok := a.Mode.(state.SearchResults)
	require.True(t, ok)
	require.Equal(t, "bar", mode.Query)
	require.False(t, a.SearchInProgress)
}

func TestSearchNotStartedWhenQueueFull(t *testing.T) {
	a, _ := newTestApp(t)

	// Fill the unstarted worker's command queue so the next send drops.
	for a.send(worker.LoadDirectory{Path: "/"}) {
	}

	a.SubmitSearch("needle")

	// A dropped dispatch must not leave a spinner nothing will clear.
	require.False(t, a.SearchInProgress)
	require.Empty(t, a.LastQuery)
	require.NotNil(t, a.Status)
	require.Equal(t, state.StatusError, a.Status.Kind)
}

func TestEmptySearchQueryRejected(t *testing.T) {
	a, _ := newTestApp(t)
	a.SubmitSearch("   ")
	require.False(t, a.SearchInProgress)
	require.NotNil(t, a.Status)
	require.Equal(t, state.StatusError, a.Status.Kind)
}

// runStagedOp executes the staged background operation inline, the way
// the shell does on its own goroutine.
func runStagedOp(t *testing.T, a *App) {
	t.Helper()
	op := a.TakePendingOp()
	require.NotNil(t, op)
	done, failed := op.Execute()
	a.FinishFileOp(*op, done, failed)
}

func TestPasteRetainsOnlyLivePaths(t *testing.T) {
	a, _ := newTestApp(t)
	src := t.TempDir()
	f1 := writeFile(t, src, "keep.txt", "keep")
	f2 := writeFile(t, src, "gone.txt", "gone")

	dest := t.TempDir()
	a.navigateTo(dest)

	a.Clip.Set([]string{f1, f2}, state.OpCopy)
	require.NoError(t, os.Remove(f2))

	a.paste()
	runStagedOp(t, a)

	if _, err := os.Stat(filepath.Join(dest, "keep.txt")); err != nil {
		t.Fatalf("surviving path was not pasted: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dest, "gone.txt")); err == nil {
		t.Fatal("missing path should have been skipped")
	}
	// Copy keeps the clipboard pasteable again.
	require.False(t, a.Clip.IsEmpty())
}

func TestPasteAbortsWhenAllPathsGone(t *testing.T) {
	a, _ := newTestApp(t)
	dest := t.TempDir()
	a.navigateTo(dest)

	a.Clip.Set([]string{filepath.Join(t.TempDir(), "nope")}, state.OpCopy)
	a.paste()

	require.Nil(t, a.TakePendingOp())
	require.NotNil(t, a.Status)
	require.Equal(t, state.StatusError, a.Status.Kind)

	dirents, err := os.ReadDir(dest)
	require.NoError(t, err)
	require.Empty(t, dirents)
}

func TestCutClearsClipboardAfterPaste(t *testing.T) {
	a, _ := newTestApp(t)
	src := t.TempDir()
	f := writeFile(t, src, "moved.txt", "payload")

	dest := t.TempDir()
	a.navigateTo(dest)
	a.Clip.Set([]string{f}, state.OpCut)
	a.paste()
	runStagedOp(t, a)

	if _, err := os.Stat(f); err == nil {
		t.Fatal("cut source should be gone after paste")
	}
	data, err := os.ReadFile(filepath.Join(dest, "moved.txt"))
	require.NoError(t, err)
	require.Equal(t, "payload", string(data))
	require.True(t, a.Clip.IsEmpty())
}

func TestPasteStagesInsteadOfBlocking(t *testing.T) {
	a, _ := newTestApp(t)
	src := t.TempDir()
	f := writeFile(t, src, "big.txt", "payload")

	dest := t.TempDir()
	a.navigateTo(dest)
	a.Clip.Set([]string{f}, state.OpCopy)

	// The key handler only stages the work; nothing is copied until
	// the shell runs the operation off the interactive goroutine.
	a.paste()
	if _, err := os.Stat(filepath.Join(dest, "big.txt")); err == nil {
		t.Fatal("paste copied inline instead of staging")
	}

	op := a.TakePendingOp()
	require.NotNil(t, op)
	require.Equal(t, FileOpCopy, op.Kind)
	require.Equal(t, []string{f}, op.Paths)
	require.Nil(t, a.TakePendingOp(), "staged op must be handed over once")

	done, failed := op.Execute()
	a.FinishFileOp(*op, done, failed)
	if _, err := os.Stat(filepath.Join(dest, "big.txt")); err != nil {
		t.Fatalf("executed op did not copy: %v", err)
	}
	require.Equal(t, state.StatusInfo, a.Status.Kind)
}

func TestDeleteConfirmFlow(t *testing.T) {
	a, dir := newTestApp(t)
	target := writeFile(t, dir, "victim.txt", "")
	a.ApplyResult(worker.DirectoryLoaded{Path: dir, Entries: listing(t, dir)})
	a.Sel.Cursor = 0

	// Declining keeps the file and returns to normal.
	a.HandleKey("d")
	require.IsType(t, state.DeleteConfirm{}, a.Mode)
	a.HandleKey("n")
	require.IsType(t, state.Normal{}, a.Mode)
	require.Nil(t, a.TakePendingOp())
	if _, err := os.Stat(target); err != nil {
		t.Fatal("declined delete must not remove the file")
	}

	// Confirming stages the delete; the file goes once the staged op
	// has run off the interactive goroutine.
	a.HandleKey("d")
	a.HandleKey("y")
	require.IsType(t, state.Normal{}, a.Mode)
	if _, err := os.Stat(target); err != nil {
		t.Fatal("file must survive until the staged delete runs")
	}
	runStagedOp(t, a)
	if _, err := os.Stat(target); err == nil {
		t.Fatal("confirmed delete should remove the file")
	}

	// The fresh listing clamps the cursor.
	a.ApplyResult(worker.DirectoryLoaded{Path: dir, Entries: listing(t, dir)})
	require.Equal(t, -1, a.Sel.Cursor)
}

func TestCommandGrammar(t *testing.T) {
	a, dir := newTestApp(t)

	a.ExecuteCommand("mkdir sub")
	info, err := os.Stat(filepath.Join(dir, "sub"))
	require.NoError(t, err)
	require.True(t, info.IsDir())

	a.ExecuteCommand("touch note.txt")
	if _, err := os.Stat(filepath.Join(dir, "note.txt")); err != nil {
		t.Fatalf("touch did not create the file: %v", err)
	}

	a.ExecuteCommand("q")
	require.True(t, a.Quitting)
}

func TestCommandRejectsTraversal(t *testing.T) {
	a, dir := newTestApp(t)

	a.ExecuteCommand("mkdir ../escape")
	require.NotNil(t, a.Status)
	require.Equal(t, state.StatusError, a.Status.Kind)
	if _, err := os.Stat(filepath.Join(filepath.Dir(dir), "escape")); err == nil {
		t.Fatal("traversal path must not be created")
	}
}

func TestUnknownCommandSurfacesError(t *testing.T) {
	a, _ := newTestApp(t)
	a.ExecuteCommand("frobnicate")
	require.NotNil(t, a.Status)
	require.Equal(t, state.StatusError, a.Status.Kind)
	require.IsType(t, state.Normal{}, a.Mode)
}

func TestBackExhaustedSurfacesError(t *testing.T) {
	a, _ := newTestApp(t)
	a.goBack()
	require.NotNil(t, a.Status)
	require.Equal(t, state.StatusError, a.Status.Kind)
}

func TestNavigateToFileFails(t *testing.T) {
	a, dir := newTestApp(t)
	f := writeFile(t, dir, "plain.txt", "")

	before := a.Nav.CurrentPath
	a.navigateTo(f)

	require.Equal(t, before, a.Nav.CurrentPath)
	require.NotNil(t, a.Status)
	require.Equal(t, state.StatusError, a.Status.Kind)
}

func TestBookmarkJump(t *testing.T) {
	a, _ := newTestApp(t)
	target := t.TempDir()
	a.cfg.Bookmark.Shortcuts["z"] = target

	a.HandleKey("'")
	require.IsType(t, state.BookmarkJump{}, a.Mode)
	a.HandleKey("z")
	require.Equal(t, target, a.Nav.CurrentPath)
	require.IsType(t, state.Normal{}, a.Mode)
}

func TestUnknownBookmarkSurfacesError(t *testing.T) {
	a, _ := newTestApp(t)
	before := a.Nav.CurrentPath

	a.HandleKey("'")
	a.HandleKey("9")

	require.Equal(t, before, a.Nav.CurrentPath)
	require.Equal(t, state.StatusError, a.Status.Kind)
}

func TestDoubleGJumpsToTop(t *testing.T) {
	a, dir := newTestApp(t)
	for _, n := range []string{"a.txt", "b.txt", "c.txt"} {
		writeFile(t, dir, n, "")
	}
	a.ApplyResult(worker.DirectoryLoaded{Path: dir, Entries: listing(t, dir)})

	a.HandleKey("G")
	require.Equal(t, 2, a.Sel.Cursor)

	// A lone g only arms the window.
	a.HandleKey("g")
	require.Equal(t, 2, a.Sel.Cursor)
	a.HandleKey("g")
	require.Equal(t, 0, a.Sel.Cursor)

	// An expired window starts over.
	a.HandleKey("G")
	a.Sel.LastGPress = time.Now().Add(-time.Second)
	a.HandleKey("g")
	require.Equal(t, 2, a.Sel.Cursor)
}

func TestVisualModeMarksAndClears(t *testing.T) {
	a, dir := newTestApp(t)
	writeFile(t, dir, "a.txt", "")
	writeFile(t, dir, "b.txt", "")
	a.ApplyResult(worker.DirectoryLoaded{Path: dir, Entries: listing(t, dir)})
	a.Sel.Cursor = 0

	a.HandleKey("v")
	require.IsType(t, state.Visual{}, a.Mode)
	require.Len(t, a.Sel.Multi, 1)

	a.HandleKey("j")
	require.Len(t, a.Sel.Multi, 2)

	// Leaving visual mode explicitly clears the marks.
	a.HandleKey("esc")
	require.IsType(t, state.Normal{}, a.Mode)
	require.Empty(t, a.Sel.Multi)
}

func TestRenameMovesSelection(t *testing.T) {
	a, dir := newTestApp(t)
	writeFile(t, dir, "old.txt", "body")
	a.ApplyResult(worker.DirectoryLoaded{Path: dir, Entries: listing(t, dir)})
	a.Sel.Cursor = 0

	name, ok := a.StartRename()
	require.True(t, ok)
	require.Equal(t, "old.txt", name)

	a.SubmitRename("new.txt")
	require.IsType(t, state.Normal{}, a.Mode)
	if _, err := os.Stat(filepath.Join(dir, "new.txt")); err != nil {
		t.Fatalf("rename did not produce new path: %v", err)
	}

	// The fresh listing focuses the renamed entry.
	a.ApplyResult(worker.DirectoryLoaded{Path: dir, Entries: listing(t, dir)})
	ent, ok := a.CursorEntry()
	require.True(t, ok)
	require.Equal(t, "new.txt", ent.Name)
}

func TestNewTabInheritsLocation(t *testing.T) {
	a, dir := newTestApp(t)
	a.HandleKey("t")

	idx, n := a.TabPosition()
	require.Equal(t, 2, idx)
	require.Equal(t, 2, n)
	require.Equal(t, dir, a.Nav.CurrentPath)
}

func TestTabsKeepIndependentState(t *testing.T) {
	a, dir := newTestApp(t)
	writeFile(t, dir, "a.txt", "")
	writeFile(t, dir, "b.txt", "")
	a.ApplyResult(worker.DirectoryLoaded{Path: dir, Entries: listing(t, dir)})
	a.Sel.Cursor = 1

	other := t.TempDir()
	a.HandleKey("t")
	a.navigateTo(other)
	a.ApplyResult(worker.DirectoryLoaded{Path: other})
	require.Equal(t, other, a.Nav.CurrentPath)
	require.Empty(t, a.Entries.Visible)

	// Cycling back restores the first tab's location, listing and
	// cursor; the second tab is untouched by it.
	a.HandleKey("tab")
	require.Equal(t, dir, a.Nav.CurrentPath)
	require.Len(t, a.Entries.Visible, 2)
	require.Equal(t, 1, a.Sel.Cursor)

	a.HandleKey("shift+tab")
	require.Equal(t, other, a.Nav.CurrentPath)
}

func TestCloseTabActivatesNeighbor(t *testing.T) {
	a, dir := newTestApp(t)
	a.HandleKey("t")
	a.navigateTo(t.TempDir())

	a.HandleKey("T")
	require.Equal(t, dir, a.Nav.CurrentPath)
	idx, n := a.TabPosition()
	require.Equal(t, 1, idx)
	require.Equal(t, 1, n)
}

func TestLastTabCannotBeClosed(t *testing.T) {
	a, _ := newTestApp(t)
	a.CloseTab()

	_, n := a.TabPosition()
	require.Equal(t, 1, n)
	require.Equal(t, state.StatusError, a.Status.Kind)
}

func TestStatusMessageExpires(t *testing.T) {
	a, _ := newTestApp(t)
	a.setInfo("hello")
	a.Tick(time.Now())
	require.NotNil(t, a.Status)

	a.Tick(time.Now().Add(state.MessageTimeout + time.Second))
	require.Nil(t, a.Status)
}

func TestWorkerDownIsPersistent(t *testing.T) {
	a, _ := newTestApp(t)
	a.MarkWorkerDown()
	require.NotNil(t, a.Status)

	// Unlike transient messages this one survives expiry ticks.
	a.Tick(time.Now().Add(time.Minute))
	require.NotNil(t, a.Status)
	require.Equal(t, state.StatusError, a.Status.Kind)
}
