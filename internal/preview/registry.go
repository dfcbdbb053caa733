package preview

import (
	"fmt"
	"sort"

	"marlin/internal/entry"
	"marlin/internal/logger"
)

// Registry holds handlers ordered ascending by priority and dispatches
// an entry to the first enabled handler that accepts it.
type Registry struct {
	handlers []Handler
	enabled  map[string]struct{}
}

func NewRegistry() *Registry {
	return &Registry{enabled: make(map[string]struct{})}
}

// Register adds a handler, keeping the list sorted by priority.
func (r *Registry) Register(h Handler) {
	if h.EnabledByDefault() {
		r.enabled[h.Name()] = struct{}{}
	}
	r.handlers = append(r.handlers, h)
	sort.SliceStable(r.handlers, func(i, j int) bool {
		return r.handlers[i].Priority() < r.handlers[j].Priority()
	})
}

// SetEnabled replaces the enabled set from configuration.
func (r *Registry) SetEnabled(names []string) {
	r.enabled = make(map[string]struct{}, len(names))
	for _, n := range names {
		r.enabled[n] = struct{}{}
	}
}

// IsEnabled reports whether the named handler is enabled.
func (r *Registry) IsEnabled(name string) bool {
	_, ok := r.enabled[name]
	return ok
}

// For returns the first enabled handler accepting e, or nil. With the
// fallback handler registered and enabled this never returns nil.
func (r *Registry) For(e entry.Entry) Handler {
	for _, h := range r.handlers {
		if !r.IsEnabled(h.Name()) {
			continue
		}
		if h.CanPreview(e) {
			return h
		}
	}
	return nil
}

// Render dispatches e and converts a handler failure into inline error
// text; a handler error is never fatal to the application.
func (r *Registry) Render(e entry.Entry, ctx *Context) Content {
	h := r.For(e)
	if h == nil {
		return Content{Text: "no preview handler available"}
	}
	content, err := h.Render(e, ctx)
	if err != nil {
		logger.Debugf("preview: %s failed on %s: %v", h.Name(), e.Path, err)
		return Content{Text: fmt.Sprintf("preview error (%s): %v", h.Name(), err)}
	}
	return content
}

// NewDefaultRegistry registers the standard handler set in priority order.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(DirectoryHandler{})
	r.Register(ImageHandler{})
	r.Register(MarkdownHandler{})
	r.Register(ArchiveHandler{})
	r.Register(PDFHandler{})
	r.Register(OfficeHandler{})
	r.Register(AudioHandler{})
	r.Register(TextHandler{})
	r.Register(BinaryHandler{})
	return r
}
