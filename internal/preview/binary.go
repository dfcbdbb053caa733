package preview

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"

	"marlin/internal/entry"
)

const hexDumpBytes = 512

// BinaryHandler is the fallback. It accepts everything, so dispatch
// always resolves to a handler.
type BinaryHandler struct{}

func (BinaryHandler) Name() string                  { return "binary" }
func (BinaryHandler) Priority() int                 { return 100 }
func (BinaryHandler) EnabledByDefault() bool        { return true }
func (BinaryHandler) CanPreview(e entry.Entry) bool { return true }

func (BinaryHandler) Render(e entry.Entry, ctx *Context) (Content, error) {
	f, err := os.Open(e.Path)
	if err != nil {
		return Content{}, fmt.Errorf("cannot open file: %w", err)
	}
	defer f.Close()

	buf := make([]byte, hexDumpBytes)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return Content{}, fmt.Errorf("cannot read file: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Binary file, %s\n\n", humanize.Bytes(uint64(e.Size)))
	if n == 0 {
		b.WriteString("(empty)")
		return Content{Text: b.String()}, nil
	}
	b.WriteString(hex.Dump(buf[:n]))
	if e.Size > int64(n) {
		fmt.Fprintf(&b, "… first %d bytes shown", n)
	}
	return Content{Text: b.String()}, nil
}
