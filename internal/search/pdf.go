package search

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"

	"marlin/internal/state"
)

// scanPDF extracts the document's plain text and scans it line by line.
// Encrypted or malformed documents are reported as an error so the
// caller counts them as skipped.
func scanPDF(path string, matcher *regexp.Regexp, maxResults int) (results []state.SearchResult, err error) {
	// The pdf library panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			results, err = nil, fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	text, err := reader.GetPlainText()
	if err != nil {
		return nil, err
	}
	return scanLines(text, path, filepath.Base(path), matcher, maxResults), nil
}

func pathBase(path string) string {
	return filepath.Base(strings.TrimRight(path, "/"))
}
