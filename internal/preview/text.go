package preview

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/dustin/go-humanize"

	"marlin/internal/entry"
)

const defaultMaxLines = 1000

// TextHandler syntax-highlights anything that sniffs as text. It sits
// near the bottom of the priority order so format-specific handlers get
// first refusal.
type TextHandler struct{}

func (TextHandler) Name() string           { return "text" }
func (TextHandler) Priority() int          { return 90 }
func (TextHandler) EnabledByDefault() bool { return true }

func (TextHandler) CanPreview(e entry.Entry) bool {
	if e.IsDir {
		return false
	}
	return !entry.IsLikelyBinary(e.Path)
}

func (TextHandler) Render(e entry.Entry, ctx *Context) (Content, error) {
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

	maxLines := ctx.MaxLines
	if maxLines <= 0 {
		maxLines = defaultMaxLines
	}
	text := string(data)
	truncated := false
	if lines := strings.SplitAfterN(text, "\n", maxLines+1); len(lines) > maxLines {
		text = strings.Join(lines[:maxLines], "")
		truncated = true
	}

	out := highlight(text, e.Path, ctx.DarkTheme)
	if truncated {
		out += fmt.Sprintf("\n… truncated at %d lines", maxLines)
	}

	ctx.Cache.Put(e.Path, e.ModTime, out)
	return Content{Text: out}, nil
}

// highlight colors source text with chroma, falling back to the raw text
// when lexing fails.
func highlight(text, path string, dark bool) string {
	lexer := lexers.Match(path)
	if lexer == nil {
		lexer = lexers.Analyse(text)
	}
	if lexer == nil {
		return text
	}

	styleName := "github"
	if dark {
		styleName = "monokai"
	}
	style := styles.Get(styleName)
	if style == nil {
		style = styles.Fallback
	}
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		return text
	}

	iterator, err := lexer.Tokenise(nil, text)
	if err != nil {
		return text
	}
	var b strings.Builder
	if err := formatter.Format(&b, style, iterator); err != nil {
		return text
	}
	return b.String()
}
