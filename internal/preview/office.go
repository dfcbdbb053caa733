package preview

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"

	"marlin/internal/entry"
)

const officeExcerptRunes = 2000

var officeExtensions = map[string]struct{}{
	"docx": {}, "xlsx": {},
}

// OfficeHandler extracts text from OOXML documents. Both formats are zip
// containers; docx keeps its body in word/document.xml, xlsx keeps shared
// cell text in xl/sharedStrings.xml.
type OfficeHandler struct{}

func (OfficeHandler) Name() string           { return "office" }
func (OfficeHandler) Priority() int          { return 50 }
func (OfficeHandler) EnabledByDefault() bool { return true }

func (OfficeHandler) CanPreview(e entry.Entry) bool {
	_, ok := officeExtensions[e.Ext]
	return ok
}

func (OfficeHandler) Render(e entry.Entry, ctx *Context) (Content, error) {
	if e.Size > ctx.MaxSize {
		return Content{}, fmt.Errorf("file too large (%s)", humanize.Bytes(uint64(e.Size)))
	}
	if cached, ok := ctx.Cache.Get(e.Path, e.ModTime); ok {
		return Content{Text: cached}, nil
	}

	r, err := zip.OpenReader(e.Path)
	if err != nil {
		return Content{}, fmt.Errorf("cannot open document: %w", err)
	}
	defer r.Close()

	var kind, member string
	switch e.Ext {
	case "docx":
		kind, member = "Word document", "word/document.xml"
	case "xlsx":
		kind, member = "Excel workbook", "xl/sharedStrings.xml"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s, %s\n\n", kind, humanize.Bytes(uint64(e.Size)))

	text, err := officeMemberText(&r.Reader, member)
	if err != nil {
		return Content{}, err
	}
	if text == "" {
		b.WriteString("(no extractable text)")
	} else {
		runes := []rune(text)
		if len(runes) > officeExcerptRunes {
			text = string(runes[:officeExcerptRunes]) + "…"
		}
		b.WriteString(text)
	}

	out := b.String()
	ctx.Cache.Put(e.Path, e.ModTime, out)
	return Content{Text: out}, nil
}

// officeMemberText concatenates the character data of the member's <t>
// elements, the text runs in both document.xml and sharedStrings.xml.
// Paragraph and row boundaries become newlines.
func officeMemberText(zr *zip.Reader, member string) (string, error) {
	var f *zip.File
	for _, candidate := range zr.File {
		if candidate.Name == member {
			f = candidate
			break
		}
	}
	if f == nil {
		return "", nil
	}

	rc, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("cannot read %s: %w", member, err)
	}
	defer rc.Close()

	dec := xml.NewDecoder(rc)
	var b strings.Builder
	inText := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("malformed %s: %w", member, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p", "si", "row":
				b.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}
	return strings.TrimSpace(b.String()), nil
}
