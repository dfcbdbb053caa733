package search

import (
	"archive/zip"
	"io"
	"regexp"

	"marlin/internal/state"
)

// scanZip decompresses each archive member into memory, bounded by the
// per-member size cap, and scans it as text. Members that fail to open
// are skipped; the archive itself failing to open is an error.
func scanZip(path string, matcher *regexp.Regexp, opts state.SearchOptions) ([]state.SearchResult, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer archive.Close()

	var results []state.SearchResult
	for _, member := range archive.File {
		if member.FileInfo().IsDir() {
			continue
		}
		if int64(member.UncompressedSize64) > opts.MaxFileSize {
			continue
		}
		rc, err := member.Open()
		if err != nil {
			continue
		}
		reader := io.LimitReader(rc, opts.MaxFileSize)
		name := pathBase(path) + " -> " + member.Name
		memberResults := scanLines(reader, path, name, matcher, opts.MaxResults-len(results))
		rc.Close()

		results = append(results, memberResults...)
		if len(results) >= opts.MaxResults {
			break
		}
	}
	return results, nil
}
