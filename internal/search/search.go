// Package search implements recursive, ignore-aware content search
// across plain text, ZIP archives and PDF documents. One search command
// walks the tree once and fans file scanning out to a small worker pool;
// match spans always come from the matcher itself.
package search

import (
	"bufio"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"unicode/utf8"

	"github.com/gobwas/glob"
	ignore "github.com/sabhiram/go-gitignore"

	"marlin/internal/entry"
	"marlin/internal/logger"
	"marlin/internal/state"
)

const (
	progressEvery = 10
	maxLineRunes  = 300
)

// textExtensions is the allowlist of extensions scanned as text without
// sniffing. Unknown extensions fall back to content sniffing.
var textExtensions = map[string]struct{}{
	"txt": {}, "md": {}, "markdown": {}, "log": {}, "csv": {}, "tsv": {},
	"go": {}, "rs": {}, "py": {}, "js": {}, "ts": {}, "jsx": {}, "tsx": {},
	"c": {}, "h": {}, "cpp": {}, "hpp": {}, "java": {}, "rb": {}, "php": {},
	"sh": {}, "bash": {}, "zsh": {}, "fish": {}, "lua": {}, "pl": {},
	"html": {}, "htm": {}, "css": {}, "scss": {}, "xml": {}, "svg": {},
	"json": {}, "yaml": {}, "yml": {}, "toml": {}, "ini": {}, "cfg": {},
	"conf": {}, "env": {}, "sql": {}, "proto": {}, "graphql": {},
}

// Engine walks directories and scans candidate files. Safe for reuse
// across commands; it holds no per-search state.
type Engine struct {
	skipDirs []glob.Glob
}

// NewEngine compiles the directory skip patterns. Invalid patterns are
// logged and dropped.
func NewEngine(skipPatterns []string) *Engine {
	e := &Engine{}
	for _, p := range skipPatterns {
		g, err := glob.Compile(p)
		if err != nil {
			logger.Warnf("search: bad skip pattern %q: %v", p, err)
			continue
		}
		e.skipDirs = append(e.skipDirs, g)
	}
	return e
}

// Search scans root for query. progress is called with a running count
// of files searched; stop is polled between files and abandons the scan
// when it returns true. Returns the results, the number of files
// searched, and the number skipped due to read errors.
func (e *Engine) Search(root, query string, opts state.SearchOptions, progress func(int), stop func() bool) ([]state.SearchResult, int, int, error) {
	if strings.TrimSpace(query) == "" {
		return nil, 0, 0, fmt.Errorf("empty query")
	}
	matcher, err := compileMatcher(query, opts)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("invalid pattern: %w", err)
	}

	var ign *ignore.GitIgnore
	if !opts.IncludeHidden {
		if gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore")); err == nil {
			ign = gi
		}
	}

	var (
		searched int64
		skipped  int64
		total    int64
		mu       sync.Mutex
		batches  []scanBatch
		full     atomic.Bool
	)

	// Results are collated per file and ordered by walk index at the
	// end, so the parallel scan never reorders files: the result set
	// always follows enumeration order regardless of which worker
	// finishes first.
	addBatch := func(idx int, rs []state.SearchResult) {
		if len(rs) == 0 {
			return
		}
		mu.Lock()
		batches = append(batches, scanBatch{idx: idx, results: rs})
		mu.Unlock()
		if atomic.AddInt64(&total, int64(len(rs))) >= int64(opts.MaxResults) {
			full.Store(true)
		}
	}

	tasks := make(chan scanTask, 64)
	var wg sync.WaitGroup
	workers := runtime.GOMAXPROCS(0)
	if workers > 8 {
		workers = 8
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range tasks {
				rs, err := func() (rs []state.SearchResult, err error) {
					defer func() {
						if r := recover(); r != nil {
							err = fmt.Errorf("panic scanning %s: %v", task.path, r)
						}
					}()
					return e.scanFile(task.path, query, matcher, opts)
				}()
				if err != nil {
					atomic.AddInt64(&skipped, 1)
				}
				addBatch(task.idx, rs)
				if n := atomic.AddInt64(&searched, 1); n%progressEvery == 0 && progress != nil {
					progress(int(n))
				}
			}
		}()
	}

	nextIdx := 0
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if stop != nil && stop() {
			return filepath.SkipAll
		}
		if full.Load() {
			return filepath.SkipAll
		}
		if err != nil {
			atomic.AddInt64(&skipped, 1)
			return nil
		}

		name := d.Name()
		if d.IsDir() {
			if path == root {
				return nil
			}
			if !opts.IncludeHidden && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			for _, g := range e.skipDirs {
				if g.Match(name) {
					return filepath.SkipDir
				}
			}
			return nil
		}

		if !opts.IncludeHidden && strings.HasPrefix(name, ".") {
			return nil
		}
		if ign != nil {
			if rel, err := filepath.Rel(root, path); err == nil && ign.MatchesPath(rel) {
				return nil
			}
		}
		tasks <- scanTask{idx: nextIdx, path: path}
		nextIdx++
		return nil
	})

	close(tasks)
	wg.Wait()

	if progress != nil {
		progress(int(atomic.LoadInt64(&searched)))
	}

	sort.Slice(batches, func(i, j int) bool { return batches[i].idx < batches[j].idx })
	var results []state.SearchResult
	for _, b := range batches {
		results = append(results, b.results...)
		if len(results) >= opts.MaxResults {
			results = results[:opts.MaxResults]
			break
		}
	}

	if walkErr != nil && walkErr != filepath.SkipAll {
		return results, int(searched), int(skipped), walkErr
	}
	return results, int(searched), int(skipped), nil
}

// scanTask carries a file's position in the walk so results can be
// reassembled in enumeration order.
type scanTask struct {
	idx  int
	path string
}

type scanBatch struct {
	idx     int
	results []state.SearchResult
}

func compileMatcher(query string, opts state.SearchOptions) (*regexp.Regexp, error) {
	pattern := query
	if !opts.Regex {
		pattern = regexp.QuoteMeta(query)
	}
	if !opts.CaseSensitive {
		pattern = "(?i)" + pattern
	}
	return regexp.Compile(pattern)
}

// scanFile dispatches on file type. Binary and unrecognized files are
// skipped without error.
func (e *Engine) scanFile(path, query string, matcher *regexp.Regexp, opts state.SearchOptions) ([]state.SearchResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > opts.MaxFileSize {
		return nil, nil
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch {
	case ext == "pdf":
		if !opts.SearchPDFs {
			return nil, nil
		}
		return scanPDF(path, matcher, opts.MaxResults)
	case ext == "zip":
		if !opts.SearchArchives {
			return nil, nil
		}
		return scanZip(path, matcher, opts)
	default:
		if _, ok := textExtensions[ext]; !ok && entry.IsLikelyBinary(path) {
			return nil, nil
		}
		return scanText(path, matcher, opts.MaxResults)
	}
}

func scanText(path string, matcher *regexp.Regexp, maxResults int) ([]state.SearchResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return scanLines(f, path, filepath.Base(path), matcher, maxResults), nil
}

// scanLines scans r line by line, recording the byte span of each line's
// first match as reported by the matcher.
func scanLines(r io.Reader, path, name string, matcher *regexp.Regexp, maxResults int) []state.SearchResult {
	var results []state.SearchResult
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		loc := matcher.FindStringIndex(line)
		if loc == nil {
			continue
		}
		display, start, end := clipLine(line, loc[0], loc[1])
		results = append(results, state.SearchResult{
			Path:       path,
			Name:       name,
			LineNumber: lineNo,
			Line:       display,
			MatchStart: start,
			MatchEnd:   end,
		})
		if len(results) >= maxResults {
			break
		}
	}
	return results
}

// clipLine truncates very long lines for display without ever cutting a
// multi-byte sequence or invalidating the match span.
func clipLine(line string, start, end int) (string, int, int) {
	line = strings.TrimRight(line, " \t\r")
	if end > len(line) {
		end = len(line)
	}
	if start > end {
		start = end
	}
	if utf8.RuneCountInString(line) <= maxLineRunes {
		return line, start, end
	}

	cut := len(line)
	runes := 0
	for i := range line {
		if runes == maxLineRunes {
			cut = i
			break
		}
		runes++
	}
	if cut < end {
		// Keep the whole match visible even on a pathological line.
		cut = end
		for cut < len(line) && !utf8.RuneStart(line[cut]) {
			cut++
		}
	}
	return line[:cut], start, end
}
