package worker

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"marlin/internal/logger"
	"marlin/internal/state"
)

func TestMain(m *testing.M) {
	logger.Disable()
	os.Exit(m.Run())
}

type fakeSearcher struct {
	results []state.SearchResult
	delay   time.Duration
	err     error
}

func (f fakeSearcher) Search(root, query string, opts state.SearchOptions, progress func(int), stop func() bool) ([]state.SearchResult, int, int, error) {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return nil, 0, 0, f.err
	}
	progress(1)
	if stop() {
		return nil, 1, 0, nil
	}
	return f.results, 1, 0, nil
}

func drainUntil[T Result](t *testing.T, w *Worker) T {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case res, ok := <-w.Results():
			if !ok {
				t.Fatal("result channel closed while waiting")
			}
			if typed, match := res.(T); match {
				return typed
			}
		case <-deadline:
			t.Fatal("timed out waiting for result")
		}
	}
}

func TestLoadDirectoryDeliversTaggedResult(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "f.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	w := New(fakeSearcher{})
	w.Start()
	defer func() {
		w.TrySend(Shutdown{})
		w.Join()
	}()

	if !w.TrySend(LoadDirectory{Path: dir}) {
		t.Fatal("TrySend failed on empty queue")
	}

	res := drainUntil[DirectoryLoaded](t, w)
	if res.Path != dir {
		t.Errorf("result path = %q, want %q", res.Path, dir)
	}
	if len(res.Entries) != 1 || res.Entries[0].Name != "f.txt" {
		t.Errorf("unexpected entries: %+v", res.Entries)
	}
}

func TestLoadDirectoryErrorIsResult(t *testing.T) {
	w := New(fakeSearcher{})
	w.Start()
	defer func() {
		w.TrySend(Shutdown{})
		w.Join()
	}()

	w.TrySend(LoadDirectory{Path: "/definitely/not/a/real/path"})
	res := drainUntil[Error](t, w)
	if res.Message == "" {
		t.Error("error result should carry a message")
	}
}

func TestShutdownClosesResultChannel(t *testing.T) {
	w := New(fakeSearcher{})
	w.Start()

	w.TrySend(Shutdown{})
	w.Join()

	select {
	case _, ok := <-w.Results():
		if ok {
			t.Fatal("expected closed channel, got a result")
		}
	case <-time.After(time.Second):
		t.Fatal("result channel not closed after shutdown")
	}
}

func TestTrySendReportsFullQueue(t *testing.T) {
	// Not started, so nothing drains the command queue.
	w := New(fakeSearcher{})

	sent := 0
	for i := 0; i < 100; i++ {
		if !w.TrySend(LoadDirectory{Path: "/tmp"}) {
			break
		}
		sent++
	}
	if sent != commandQueueSize {
		t.Errorf("queue accepted %d commands, want %d", sent, commandQueueSize)
	}
}

func TestNewerSearchSupersedesOlder(t *testing.T) {
	w := New(fakeSearcher{
		results: []state.SearchResult{{Path: "/match"}},
		delay:   20 * time.Millisecond,
	})

	// Enqueue both searches before starting the worker so the second
	// submission is guaranteed to outdate the first's sequence number.
	w.TrySend(SearchContent{Query: "old"})
	w.TrySend(SearchContent{Query: "new"})
	w.Start()
	defer func() {
		w.TrySend(Shutdown{})
		w.Join()
	}()

	res := drainUntil[SearchCompleted](t, w)
	if res.Query != "new" {
		t.Errorf("completed query = %q, want the superseding one", res.Query)
	}
}

func TestSearchProgressCarriesQuery(t *testing.T) {
	w := New(fakeSearcher{results: nil})
	w.Start()
	defer func() {
		w.TrySend(Shutdown{})
		w.Join()
	}()

	w.TrySend(SearchContent{Query: "abc"})
	res := drainUntil[SearchCompleted](t, w)
	if res.Query != "abc" {
		t.Errorf("query = %q, want abc", res.Query)
	}
	if res.FilesSearched != 1 {
		t.Errorf("files searched = %d, want 1", res.FilesSearched)
	}
}
