package preview

import (
	"fmt"
	"os"
	"strings"

	"github.com/dhowden/tag"
	"github.com/dustin/go-humanize"

	"marlin/internal/entry"
)

var audioExtensions = map[string]struct{}{
	"mp3": {}, "flac": {}, "ogg": {}, "m4a": {}, "wav": {},
}

// AudioHandler reads embedded metadata tags.
type AudioHandler struct{}

func (AudioHandler) Name() string           { return "audio" }
func (AudioHandler) Priority() int          { return 60 }
func (AudioHandler) EnabledByDefault() bool { return true }

func (AudioHandler) CanPreview(e entry.Entry) bool {
	_, ok := audioExtensions[e.Ext]
	return ok
}

func (AudioHandler) Render(e entry.Entry, ctx *Context) (Content, error) {
	if cached, ok := ctx.Cache.Get(e.Path, e.ModTime); ok {
		return Content{Text: cached}, nil
	}

	f, err := os.Open(e.Path)
	if err != nil {
		return Content{}, fmt.Errorf("cannot open audio file: %w", err)
	}
	defer f.Close()

	var b strings.Builder
	fmt.Fprintf(&b, "Audio file (%s), %s\n",
		strings.ToUpper(e.Ext), humanize.Bytes(uint64(e.Size)))

	m, err := tag.ReadFrom(f)
	if err != nil {
		b.WriteString("\n(no readable tags)")
		ctx.Cache.Put(e.Path, e.ModTime, b.String())
		return Content{Text: b.String()}, nil
	}

	b.WriteString("\n")
	if v := m.Title(); v != "" {
		fmt.Fprintf(&b, "Title: %s\n", v)
	}
	if v := m.Artist(); v != "" {
		fmt.Fprintf(&b, "Artist: %s\n", v)
	}
	if v := m.Album(); v != "" {
		fmt.Fprintf(&b, "Album: %s\n", v)
	}
	if y := m.Year(); y != 0 {
		fmt.Fprintf(&b, "Year: %d\n", y)
	}
	if v := m.Genre(); v != "" {
		fmt.Fprintf(&b, "Genre: %s\n", v)
	}
	if n, total := m.Track(); n != 0 {
		if total != 0 {
			fmt.Fprintf(&b, "Track: %d/%d\n", n, total)
		} else {
			fmt.Fprintf(&b, "Track: %d\n", n)
		}
	}
	ctx.Cache.Put(e.Path, e.ModTime, b.String())
	return Content{Text: b.String()}, nil
}
