package preview

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/rwcarlsen/goexif/exif"

	"marlin/internal/entry"
)

var imageExtensions = map[string]struct{}{
	"png": {}, "jpg": {}, "jpeg": {}, "gif": {}, "bmp": {}, "webp": {},
}

// ImageHandler reports image dimensions and EXIF metadata. Pixel
// rendering belongs to the display layer; the core surfaces what it can
// decode cheaply from the header.
type ImageHandler struct{}

func (ImageHandler) Name() string           { return "image" }
func (ImageHandler) Priority() int          { return 20 }
func (ImageHandler) EnabledByDefault() bool { return true }

func (ImageHandler) CanPreview(e entry.Entry) bool {
	_, ok := imageExtensions[e.Ext]
	return ok
}

func (ImageHandler) Render(e entry.Entry, ctx *Context) (Content, error) {
	if e.Size > ctx.MaxSize {
		return Content{}, fmt.Errorf("file too large (%s)", humanize.Bytes(uint64(e.Size)))
	}
	if cached, ok := ctx.Cache.Get(e.Path, e.ModTime); ok {
		return Content{Text: cached}, nil
	}

	f, err := os.Open(e.Path)
	if err != nil {
		return Content{}, fmt.Errorf("cannot open image: %w", err)
	}
	defer f.Close()

	var b strings.Builder
	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		fmt.Fprintf(&b, "Format: %s (undecodable header)\n", strings.ToUpper(e.Ext))
	} else {
		fmt.Fprintf(&b, "Format: %s\nDimensions: %d × %d\n", strings.ToUpper(format), cfg.Width, cfg.Height)
	}
	fmt.Fprintf(&b, "Size: %s\n", humanize.Bytes(uint64(e.Size)))

	if e.Ext == "jpg" || e.Ext == "jpeg" {
		if _, err := f.Seek(0, 0); err == nil {
			if x, err := exif.Decode(f); err == nil {
				b.WriteString("\n")
				if t, err := x.DateTime(); err == nil {
					fmt.Fprintf(&b, "Taken: %s\n", t.Format("2006-01-02 15:04"))
				}
				if model, err := x.Get(exif.Model); err == nil {
					if s, err := model.StringVal(); err == nil {
						fmt.Fprintf(&b, "Camera: %s\n", s)
					}
				}
				if lat, long, err := x.LatLong(); err == nil {
					fmt.Fprintf(&b, "Location: %.5f, %.5f\n", lat, long)
				}
			}
		}
	}
	ctx.Cache.Put(e.Path, e.ModTime, b.String())
	return Content{Text: b.String()}, nil
}
