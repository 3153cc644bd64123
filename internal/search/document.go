// Package search provides full-text search over the ebook library using
// Bleve, with exact filtering by category, sub-genre, format and language.
package search

import (
	"github.com/ghiridhars/ebook-organizer/internal/domain"
	"github.com/ghiridhars/ebook-organizer/internal/taxonomy"
)

// Document is the indexed form of an ebook record. Field names match
// ebookFields.
//
// The classification is indexed twice: as exact keywords for filters and
// facets, and as slug paths ("/fiction", "/fiction/fantasy") so a prefix
// query selects a whole category.
type Document struct {
	ID          string   `json:"-"`
	Title       string   `json:"title"`
	Author      string   `json:"author,omitempty"`
	Description string   `json:"description,omitempty"`
	Publisher   string   `json:"publisher,omitempty"`
	Path        string   `json:"path"`
	Format      string   `json:"format,omitempty"`
	Language    string   `json:"language,omitempty"`
	Category    string   `json:"category,omitempty"`
	SubGenre    string   `json:"sub_genre,omitempty"`
	GenrePaths  []string `json:"genre_paths,omitempty"`
	Classified  bool     `json:"classified"`
	CreatedAt   int64    `json:"created_at"` // unix millis
}

// NewDocument converts a stored ebook.
func NewDocument(e *domain.Ebook) *Document {
	return &Document{
		ID:          e.ID,
		Title:       e.DisplayTitle(),
		Author:      e.Author,
		Description: e.Description,
		Publisher:   e.Publisher,
		Path:        e.Path,
		Format:      e.Format,
		Language:    e.Language,
		Category:    e.Category,
		SubGenre:    e.SubGenre,
		GenrePaths:  GenrePaths(e.Category, e.SubGenre),
		Classified:  e.IsClassified(),
		CreatedAt:   e.CreatedAt.UnixMilli(),
	}
}

// GenrePaths returns the slug paths of a classification, narrowest first:
// ["/fiction/fantasy", "/fiction"].
func GenrePaths(category, subGenre string) []string {
	if category == "" {
		return nil
	}
	root := GenrePath(category, "")
	if subGenre == "" {
		return []string{root}
	}
	return []string{GenrePath(category, subGenre), root}
}

// GenrePath returns the slug path for a category and optional sub-genre.
func GenrePath(category, subGenre string) string {
	p := "/" + taxonomy.Slugify(category)
	if subGenre != "" {
		p += "/" + taxonomy.Slugify(subGenre)
	}
	return p
}

// fields returns the document as the map Bleve indexes, leaving out empty
// strings so keyword facets never report a blank value.
func (d *Document) fields() map[string]any {
	m := map[string]any{
		"title":       d.Title,
		"author":      d.Author,
		"description": d.Description,
		"publisher":   d.Publisher,
		"path":        d.Path,
		"format":      d.Format,
		"language":    d.Language,
		"category":    d.Category,
		"sub_genre":   d.SubGenre,
		"classified":  d.Classified,
		"created_at":  d.CreatedAt,
	}
	for k, v := range m {
		if s, ok := v.(string); ok && s == "" {
			delete(m, k)
		}
	}
	if len(d.GenrePaths) > 0 {
		m["genre_paths"] = d.GenrePaths
	}
	return m
}
