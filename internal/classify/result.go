// Package classify places ebooks into the taxonomy by running a fixed chain
// of heuristics, strongest evidence first.
package classify

import (
	"strings"

	"github.com/ghiridhars/ebook-organizer/internal/taxonomy"
)

// Source records which strategy produced a result.
type Source string

const (
	SourceEmbedded       Source = "embedded"
	SourceFolder         Source = "folder"
	SourceAPI            Source = "api"
	SourceTitle          Source = "title"
	SourceFilename       Source = "filename"
	SourceManualOverride Source = "manual_override"
	SourceExisting       Source = "existing"
	SourceUnknown        Source = "unknown"
)

const errorPrefix = "error: "

// ErrorSource tags a result that failed with detail.
func ErrorSource(detail string) Source {
	return Source(errorPrefix + detail)
}

// IsError reports whether s was produced by ErrorSource.
func (s Source) IsError() bool {
	return strings.HasPrefix(string(s), errorPrefix)
}

// Result is the outcome of classifying one book. Empty fields are absent.
type Result struct {
	Category string `json:"category,omitempty"`
	SubGenre string `json:"sub_genre,omitempty"`
	Author   string `json:"author,omitempty"`
	Source   Source `json:"source"`
}

// Classification returns the category pair.
func (r Result) Classification() taxonomy.Classification {
	return taxonomy.Classification{Category: r.Category, SubGenre: r.SubGenre}
}

// Complete reports whether both category and sub-genre are set.
func (r Result) Complete() bool {
	return r.Category != "" && r.SubGenre != ""
}

func (r *Result) adopt(c taxonomy.Classification, src Source) {
	r.Category = c.Category
	r.SubGenre = c.SubGenre
	if r.Source == SourceUnknown {
		r.Source = src
	}
}
