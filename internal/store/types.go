package store

// EbookFilter selects records for List. Zero fields do not filter.
type EbookFilter struct {
	IDs          []string
	PathPrefix   string
	Category     string
	SubGenre     string
	Unclassified bool     // only records missing category or sub-genre
	ExcludeIDs   []string // applied after every other filter
	Offset       int
	Limit        int
}

// PathUpdate moves a record to a new stored path.
type PathUpdate struct {
	ID   string
	Path string
}

// ClassificationCounts summarises coverage under a path prefix.
type ClassificationCounts struct {
	Total      int
	Classified int
	ByCategory map[string]int
	BySubGenre map[string]int
}
