package classify

import (
	"context"
	"log/slog"

	"github.com/ghiridhars/ebook-organizer/internal/author"
	"github.com/ghiridhars/ebook-organizer/internal/lookup"
	"github.com/ghiridhars/ebook-organizer/internal/taxonomy"
)

// Lookuper fetches external metadata for a file path or title. It reports
// false on any failure.
type Lookuper interface {
	Lookup(ctx context.Context, pathOrTitle, knownAuthor string) (lookup.Metadata, bool)
}

// Engine runs the classification chain.
type Engine struct {
	lookup Lookuper
	logger *slog.Logger
}

// NewEngine creates an engine. A nil lookuper skips the external lookup.
func NewEngine(l Lookuper, logger *slog.Logger) *Engine {
	return &Engine{lookup: l, logger: logger}
}

// ClassifyBook classifies the file at path using its embedded genre and
// author when present. It never fails; the result may be incomplete.
//
// Strategies run in order: embedded genre, folder names, external lookup,
// title keywords. The first complete match returns. An author found along
// the way is kept, and as a last resort one is pulled from the filename.
func (e *Engine) ClassifyBook(ctx context.Context, path, embeddedGenre, embeddedAuthor string) Result {
	res := Result{Source: SourceUnknown}

	if embeddedAuthor != "" {
		if a := author.Normalize(embeddedAuthor); a != "" {
			res.Author = a
			res.Source = SourceEmbedded
		}
	}

	if embeddedGenre != "" && author.IsPrintableText(embeddedGenre) {
		if c, ok := taxonomy.ClassifyGenre(embeddedGenre); ok {
			res.adopt(c, SourceEmbedded)
			return res
		}
	}

	if c, ok := taxonomy.ClassifyFromFolder(path); ok {
		res.adopt(c, SourceFolder)
		return res
	}

	if e.lookup != nil {
		if md, ok := e.lookup.Lookup(ctx, path, res.Author); ok {
			if c, ok := ClassifySubjects(md.Subjects); ok {
				res.Category = c.Category
				res.SubGenre = c.SubGenre
				if res.Author == "" && author.IsValid(md.Author) {
					res.Author = md.Author
				}
				res.Source = SourceAPI
				return res
			}
			e.logger.Debug("lookup subjects did not classify", "path", path, "subjects", len(md.Subjects))
		}
	}

	if c, ok := taxonomy.ClassifyFromTitle(author.Stem(path)); ok {
		res.adopt(c, SourceTitle)
		return res
	}

	if res.Author == "" {
		if a := author.ExtractFromFilename(path); a != "" {
			res.Author = a
			if res.Source == SourceUnknown {
				res.Source = SourceFilename
			}
		}
	}

	return res
}
