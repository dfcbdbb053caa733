// Package worker serializes all blocking filesystem and search work off
// the interactive goroutine. Commands go in through a bounded queue,
// tagged results come back through a second bounded queue, and the
// receiver is responsible for discarding results that are no longer
// relevant (by path or query identity).
package worker

import (
	"fmt"
	"sync/atomic"

	"marlin/internal/entry"
	"marlin/internal/logger"
	"marlin/internal/state"
)

const (
	commandQueueSize = 16
	resultQueueSize  = 64
)

// Command is a request executed by the worker, one at a time.
type Command interface{ isCommand() }

type LoadDirectory struct {
	Path       string
	ShowHidden bool
}

type LoadParent struct {
	Path       string
	ShowHidden bool
}

type SearchContent struct {
	Query   string
	Root    string
	Options state.SearchOptions
	seq     uint64
}

type Shutdown struct{}

func (LoadDirectory) isCommand() {}
func (LoadParent) isCommand()    {}
func (SearchContent) isCommand() {}
func (Shutdown) isCommand()      {}

// Result is a tagged outcome. Directory results carry the path they were
// loaded for and search results carry their originating query, so stale
// ones can be recognized and dropped.
type Result interface{ isResult() }

type DirectoryLoaded struct {
	Path    string
	Entries []entry.Entry
	Skipped int
}

type ParentLoaded struct {
	Path    string
	Entries []entry.Entry
}

type SearchProgress struct {
	Query         string
	FilesSearched int
}

type SearchCompleted struct {
	Query         string
	Results       []state.SearchResult
	FilesSearched int
	FilesSkipped  int
}

type Error struct {
	Context string
	Message string
}

func (DirectoryLoaded) isResult() {}
func (ParentLoaded) isResult()    {}
func (SearchProgress) isResult()  {}
func (SearchCompleted) isResult() {}
func (Error) isResult()           {}

// Searcher runs one content search, reporting progress as it scans.
// stop is polled between files; returning true abandons the scan.
type Searcher interface {
	Search(root, query string, opts state.SearchOptions, progress func(filesSearched int), stop func() bool) ([]state.SearchResult, int, int, error)
}

// Worker owns no state beyond the in-flight command. It processes
// commands strictly one at a time until Shutdown, then closes its result
// channel so the interactive side can detect termination.
type Worker struct {
	cmds     chan Command
	results  chan Result
	searcher Searcher

	searchSeq uint64 // latest submitted search; running scans stop when outdated
	done      chan struct{}
}

func New(searcher Searcher) *Worker {
	return &Worker{
		cmds:     make(chan Command, commandQueueSize),
		results:  make(chan Result, resultQueueSize),
		searcher: searcher,
		done:     make(chan struct{}),
	}
}

// Results exposes the receive side of the result queue.
func (w *Worker) Results() <-chan Result { return w.results }

// TrySend enqueues cmd without blocking. A false return means the queue
// is full; rapid repeated triggers should coalesce rather than stall the
// dispatch path.
func (w *Worker) TrySend(cmd Command) bool {
	if sc, ok := cmd.(SearchContent); ok {
		sc.seq = atomic.AddUint64(&w.searchSeq, 1)
		cmd = sc
	}
	select {
	case w.cmds <- cmd:
		return true
	default:
		return false
	}
}

// Stop enqueues Shutdown, waiting for queue space if needed. Returns
// immediately when the loop has already exited.
func (w *Worker) Stop() {
	select {
	case w.cmds <- Shutdown{}:
	case <-w.done:
	}
}

// Start launches the worker loop on its own goroutine.
func (w *Worker) Start() {
	go w.run()
}

// Join blocks until the worker loop has exited.
func (w *Worker) Join() { <-w.done }

func (w *Worker) run() {
	defer close(w.done)
	defer close(w.results)
	// A panic ends the worker, not the process; the closed result
	// channel tells the interactive side loading is gone for good.
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("worker: panic: %v", r)
		}
	}()

	for cmd := range w.cmds {
		switch c := cmd.(type) {
		case Shutdown:
			return

		case LoadDirectory:
			entries, skipped, err := entry.ReadDirectory(c.Path, c.ShowHidden)
			if err != nil {
				w.results <- Error{Context: "load " + c.Path, Message: err.Error()}
				continue
			}
			w.results <- DirectoryLoaded{Path: c.Path, Entries: entries, Skipped: skipped}

		case LoadParent:
			// Parent pane is best effort: an unreadable parent just
			// leaves the pane empty.
			entries, _, err := entry.ReadDirectory(c.Path, c.ShowHidden)
			if err != nil {
				entries = nil
			}
			w.results <- ParentLoaded{Path: c.Path, Entries: entries}

		case SearchContent:
			w.runSearch(c)
		}
	}
}

func (w *Worker) runSearch(c SearchContent) {
	progress := func(files int) {
		// Progress is best effort; drop updates rather than block.
		select {
		case w.results <- SearchProgress{Query: c.Query, FilesSearched: files}:
		default:
		}
	}
	stop := func() bool {
		return atomic.LoadUint64(&w.searchSeq) != c.seq
	}

	results, searched, skipped, err := w.searcher.Search(c.Root, c.Query, c.Options, progress, stop)
	if err != nil {
		w.results <- Error{Context: fmt.Sprintf("search %q", c.Query), Message: err.Error()}
		return
	}
	if stop() {
		// Superseded by a newer query; the receiver would discard this
		// anyway, so save the channel traffic.
		logger.Debugf("worker: search %q superseded", c.Query)
		return
	}
	w.results <- SearchCompleted{
		Query:         c.Query,
		Results:       results,
		FilesSearched: searched,
		FilesSkipped:  skipped,
	}
}
