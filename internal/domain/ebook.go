package domain

import (
	"path/filepath"
	"strings"

	"github.com/ghiridhars/ebook-organizer/internal/taxonomy"
)

// Ebook is one file in the library.
type Ebook struct {
	Entity
	Title         string `json:"title"`
	Author        string `json:"author,omitempty"`
	Path          string `json:"path"`
	Format        string `json:"format"`
	Size          int64  `json:"size"`
	Category      string `json:"category,omitempty"`
	SubGenre      string `json:"sub_genre,omitempty"`
	EmbeddedGenre string `json:"embedded_genre,omitempty"` // first subject found in the file at import
	Publisher     string `json:"publisher,omitempty"`
	Language      string `json:"language,omitempty"`
	Description   string `json:"description,omitempty"`
	PublishedDate string `json:"published_date,omitempty"`
}

// IsClassified reports whether both category and sub-genre are set.
func (e *Ebook) IsClassified() bool {
	return strings.TrimSpace(e.Category) != "" && strings.TrimSpace(e.SubGenre) != ""
}

// Classification returns the stored category pair.
func (e *Ebook) Classification() taxonomy.Classification {
	return taxonomy.Classification{Category: e.Category, SubGenre: e.SubGenre}
}

// SetClassification stores c and touches the record.
func (e *Ebook) SetClassification(c taxonomy.Classification) {
	e.Category = c.Category
	e.SubGenre = c.SubGenre
	e.Touch()
}

// FileName returns the base name of the stored path.
func (e *Ebook) FileName() string {
	if e.Path == "" {
		return ""
	}
	return filepath.Base(e.Path)
}

// DisplayTitle is the title, falling back to the file name.
func (e *Ebook) DisplayTitle() string {
	if e.Title != "" {
		return e.Title
	}
	return e.FileName()
}

// Formats maps recognised file extensions to format names.
var Formats = map[string]string{
	".epub": "epub",
	".pdf":  "pdf",
	".mobi": "mobi",
	".azw":  "azw",
	".azw3": "azw3",
	".fb2":  "fb2",
}

// FormatOf returns the format of path by extension.
func FormatOf(path string) (string, bool) {
	f, ok := Formats[strings.ToLower(filepath.Ext(path))]
	return f, ok
}
