package preview

import (
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/dustin/go-humanize"

	"marlin/internal/entry"
)

// MarkdownHandler renders markdown through glamour. The rendered output
// is cached because styling a large document is not cheap.
type MarkdownHandler struct{}

func (MarkdownHandler) Name() string           { return "markdown" }
func (MarkdownHandler) Priority() int          { return 25 }
func (MarkdownHandler) EnabledByDefault() bool { return true }

func (MarkdownHandler) CanPreview(e entry.Entry) bool {
	return e.Ext == "md" || e.Ext == "markdown"
}

func (MarkdownHandler) Render(e entry.Entry, ctx *Context) (Content, error) {
	if e.Size > ctx.MaxSize {
		return Content{}, fmt.Errorf("file too large (%s)", humanize.Bytes(uint64(e.Size)))
	}
	if cached, ok := ctx.Cache.Get(e.Path, e.ModTime); ok {
		return Content{Text: cached}, nil
	}

	data, err := os.ReadFile(e.Path)
	if err != nil {
		return Content{}, fmt.Errorf("cannot read file: %w", err)
	}

	style := "light"
	if ctx.DarkTheme {
		style = "dark"
	}
	width := ctx.Width
	if width <= 0 {
		width = 80
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return Content{}, fmt.Errorf("renderer init: %w", err)
	}
	out, err := renderer.Render(string(data))
	if err != nil {
		return Content{}, fmt.Errorf("markdown render: %w", err)
	}

	ctx.Cache.Put(e.Path, e.ModTime, out)
	return Content{Text: out}, nil
}
