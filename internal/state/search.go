package state

// SearchResult is one content match. MatchStart/MatchEnd are byte
// offsets of the actual match span within Line, taken from the matcher,
// never a fixed window.
type SearchResult struct {
	Path       string
	Name       string // display name; archive members carry "zip -> member"
	LineNumber int
	Line       string
	MatchStart int
	MatchEnd   int
}

// SearchOptions controls one content search command.
type SearchOptions struct {
	CaseSensitive  bool
	Regex          bool
	IncludeHidden  bool
	SearchPDFs     bool
	SearchArchives bool
	MaxResults     int
	MaxFileSize    int64
}

func DefaultSearchOptions() SearchOptions {
	return SearchOptions{
		SearchPDFs:     true,
		SearchArchives: true,
		MaxResults:     1000,
		MaxFileSize:    4 << 20,
	}
}
