package preview

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"

	"marlin/internal/entry"
)

const maxArchiveItems = 100

var archiveExtensions = map[string]struct{}{
	"zip": {}, "jar": {}, "tar": {}, "gz": {}, "tgz": {},
}

// ArchiveHandler lists archive members without extracting anything to disk.
type ArchiveHandler struct{}

func (ArchiveHandler) Name() string           { return "archive" }
func (ArchiveHandler) Priority() int          { return 30 }
func (ArchiveHandler) EnabledByDefault() bool { return true }

func (ArchiveHandler) CanPreview(e entry.Entry) bool {
	_, ok := archiveExtensions[e.Ext]
	return ok
}

func (ArchiveHandler) Render(e entry.Entry, ctx *Context) (Content, error) {
	// Walking a central directory or a whole tarball on every redraw is
	// wasted work; the listing only changes with the file.
	if cached, ok := ctx.Cache.Get(e.Path, e.ModTime); ok {
		return Content{Text: cached}, nil
	}
	content, err := listArchive(e)
	if err != nil {
		return Content{}, err
	}
	ctx.Cache.Put(e.Path, e.ModTime, content.Text)
	return content, nil
}

func listArchive(e entry.Entry) (Content, error) {
	switch e.Ext {
	case "zip", "jar":
		return listZip(e)
	case "tar":
		f, err := os.Open(e.Path)
		if err != nil {
			return Content{}, fmt.Errorf("cannot open archive: %w", err)
		}
		defer f.Close()
		return listTar(tar.NewReader(f))
	case "gz", "tgz":
		return listGzip(e)
	}
	return Content{}, fmt.Errorf("unsupported archive type %q", e.Ext)
}

func listZip(e entry.Entry) (Content, error) {
	r, err := zip.OpenReader(e.Path)
	if err != nil {
		return Content{}, fmt.Errorf("cannot open archive: %w", err)
	}
	defer r.Close()

	var b strings.Builder
	fmt.Fprintf(&b, "%d entries\n\n", len(r.File))
	for i, f := range r.File {
		if i >= maxArchiveItems {
			fmt.Fprintf(&b, "\n… and %d more", len(r.File)-maxArchiveItems)
			break
		}
		if f.FileInfo().IsDir() {
			fmt.Fprintf(&b, "📁 %s\n", f.Name)
		} else {
			fmt.Fprintf(&b, "   %s  %s\n", f.Name, humanize.Bytes(f.UncompressedSize64))
		}
	}
	return Content{Text: b.String()}, nil
}

func listTar(tr *tar.Reader) (Content, error) {
	var b strings.Builder
	count := 0
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Content{}, fmt.Errorf("cannot read archive: %w", err)
		}
		count++
		if count > maxArchiveItems {
			continue
		}
		if hdr.Typeflag == tar.TypeDir {
			fmt.Fprintf(&b, "📁 %s\n", hdr.Name)
		} else {
			fmt.Fprintf(&b, "   %s  %s\n", hdr.Name, humanize.Bytes(uint64(hdr.Size)))
		}
	}
	header := fmt.Sprintf("%d entries\n\n", count)
	if count > maxArchiveItems {
		fmt.Fprintf(&b, "\n… and %d more", count-maxArchiveItems)
	}
	return Content{Text: header + b.String()}, nil
}

func listGzip(e entry.Entry) (Content, error) {
	f, err := os.Open(e.Path)
	if err != nil {
		return Content{}, fmt.Errorf("cannot open archive: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return Content{}, fmt.Errorf("cannot read gzip header: %w", err)
	}
	defer gz.Close()

	// .tar.gz and .tgz carry a tarball; a bare .gz wraps a single file.
	if e.Ext == "tgz" || strings.HasSuffix(strings.ToLower(e.Name), ".tar.gz") {
		return listTar(tar.NewReader(gz))
	}

	name := gz.Name
	if name == "" {
		name = strings.TrimSuffix(e.Name, ".gz")
	}
	text := fmt.Sprintf("gzip archive\n\nContains: %s\nCompressed: %s\n",
		name, humanize.Bytes(uint64(e.Size)))
	return Content{Text: text}, nil
}
