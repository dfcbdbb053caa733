package preview

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/ledongthuc/pdf"

	"marlin/internal/entry"
)

const pdfExcerptRunes = 2000

// PDFHandler reports page count and a plain-text excerpt. Extraction is
// cached; pdf parsing on every cursor move would stall the worker.
type PDFHandler struct{}

func (PDFHandler) Name() string                  { return "pdf" }
func (PDFHandler) Priority() int                 { return 40 }
func (PDFHandler) EnabledByDefault() bool        { return true }
func (PDFHandler) CanPreview(e entry.Entry) bool { return e.Ext == "pdf" }

func (PDFHandler) Render(e entry.Entry, ctx *Context) (Content, error) {
	if e.Size > ctx.MaxSize {
		return Content{}, fmt.Errorf("file too large (%s)", humanize.Bytes(uint64(e.Size)))
	}
	if cached, ok := ctx.Cache.Get(e.Path, e.ModTime); ok {
		return Content{Text: cached}, nil
	}

	f, reader, err := pdf.Open(e.Path)
	if err != nil {
		return Content{}, fmt.Errorf("cannot parse pdf: %w", err)
	}
	defer f.Close()

	var b strings.Builder
	fmt.Fprintf(&b, "PDF document, %d pages, %s\n\n",
		reader.NumPage(), humanize.Bytes(uint64(e.Size)))

	if excerpt := pdfExcerpt(reader); excerpt != "" {
		b.WriteString(excerpt)
	} else {
		b.WriteString("(no extractable text)")
	}

	text := b.String()
	ctx.Cache.Put(e.Path, e.ModTime, text)
	return Content{Text: text}, nil
}

// pdfExcerpt pulls the first couple thousand runes of plain text. The
// library panics on some malformed files, so extraction is fenced.
func pdfExcerpt(reader *pdf.Reader) (out string) {
	defer func() {
		if recover() != nil {
			out = ""
		}
	}()

	r, err := reader.GetPlainText()
	if err != nil {
		return ""
	}
	var buf bytes.Buffer
	if _, err := io.CopyN(&buf, r, pdfExcerptRunes*4); err != nil && err != io.EOF {
		return ""
	}

	runes := []rune(trimTornRune(buf.String()))
	if len(runes) > pdfExcerptRunes {
		return string(runes[:pdfExcerptRunes]) + "…"
	}
	return string(runes)
}

// trimTornRune drops a multi-byte rune the byte-bounded read cut in
// half; left in place it would decode as U+FFFD.
func trimTornRune(s string) string {
	for i := len(s) - 1; i >= 0 && i >= len(s)-utf8.UTFMax; i-- {
		if !utf8.RuneStart(s[i]) {
			continue
		}
		if r, size := utf8.DecodeRuneInString(s[i:]); r == utf8.RuneError && size == 1 {
			return s[:i]
		}
		break
	}
	return s
}
