// Package preview implements pluggable, priority-ordered preview
// dispatch. Each handler decides whether it can render an entry and
// produces text content; a hex-dump fallback guarantees every entry gets
// some preview. Handlers are invoked off the redraw path and cache
// expensive parses keyed by (path, mtime).
package preview

import (
	"marlin/internal/entry"
)

// MaxPreviewSize is the default ceiling above which handlers refuse to
// read a file's full content.
const MaxPreviewSize = 10 << 20

// Content is the renderable result of a preview.
type Content struct {
	Text string
}

// Context carries the immutable bits of application state a handler may
// need. Handlers never receive a reference to the owning application.
type Context struct {
	Cache      *Cache
	DarkTheme  bool
	ShowHidden bool
	Width      int // wrap width for rendered output
	MaxSize    int64
	MaxLines   int
}

// Handler renders previews for the entries it recognizes.
type Handler interface {
	// Name identifies the handler for configuration and errors.
	Name() string
	// CanPreview reports whether this handler should render the entry.
	CanPreview(e entry.Entry) bool
	// Render produces the preview. Errors are descriptive and shown in
	// place of content; they are never fatal.
	Render(e entry.Entry, ctx *Context) (Content, error)
	// Priority orders handlers; lower values are tried first.
	Priority() int
	// EnabledByDefault reports whether the handler starts enabled.
	EnabledByDefault() bool
}
