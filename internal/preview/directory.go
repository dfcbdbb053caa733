package preview

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"marlin/internal/entry"
)

const maxDirectoryItems = 50

// DirectoryHandler lists a directory's children.
type DirectoryHandler struct{}

func (DirectoryHandler) Name() string                  { return "directory" }
func (DirectoryHandler) Priority() int                 { return 10 }
func (DirectoryHandler) EnabledByDefault() bool        { return true }
func (DirectoryHandler) CanPreview(e entry.Entry) bool { return e.IsDir }

func (DirectoryHandler) Render(e entry.Entry, ctx *Context) (Content, error) {
	entries, skipped, err := entry.ReadDirectory(e.Path, ctx.ShowHidden)
	if err != nil {
		return Content{}, fmt.Errorf("cannot read directory: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d items\n\n", len(entries))
	for i, child := range entries {
		if i >= maxDirectoryItems {
			fmt.Fprintf(&b, "\n… and %d more", len(entries)-maxDirectoryItems)
			break
		}
		if child.IsDir {
			fmt.Fprintf(&b, "%s %s\n", child.Icon(), child.DisplayName())
		} else {
			fmt.Fprintf(&b, "%s %s  %s\n", child.Icon(), child.DisplayName(), humanize.Bytes(uint64(child.Size)))
		}
	}
	if skipped > 0 {
		fmt.Fprintf(&b, "\n%d unreadable entries skipped", skipped)
	}
	return Content{Text: b.String()}, nil
}
