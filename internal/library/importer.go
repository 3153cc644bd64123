// Package library brings ebook files on disk into the store: a one-off
// import of a folder tree, and a follow mode fed by the file watcher.
package library

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ghiridhars/ebook-organizer/internal/author"
	"github.com/ghiridhars/ebook-organizer/internal/domain"
	"github.com/ghiridhars/ebook-organizer/internal/ebookmeta"
	"github.com/ghiridhars/ebook-organizer/internal/id"
	"github.com/ghiridhars/ebook-organizer/internal/normalize"
	"github.com/ghiridhars/ebook-organizer/internal/store"
	"github.com/ghiridhars/ebook-organizer/internal/watcher"
)

// MetadataReader reads embedded metadata from a file.
type MetadataReader interface {
	Read(ctx context.Context, path string) (*ebookmeta.Metadata, error)
}

// ImportResult summarises an import run.
type ImportResult struct {
	Scanned  int      `json:"scanned"`
	Imported int      `json:"imported"`
	Existing int      `json:"existing"`
	Failed   int      `json:"failed"`
	Errors   []string `json:"errors,omitempty"`
}

// Importer creates store records for ebook files.
type Importer struct {
	store   store.EbookStore
	meta    MetadataReader
	walker  *Walker
	indexer store.SearchIndexer
	logger  *slog.Logger
}

// NewImporter creates an importer.
func NewImporter(s store.EbookStore, meta MetadataReader, logger *slog.Logger) *Importer {
	return &Importer{
		store:   s,
		meta:    meta,
		walker:  NewWalker(logger),
		indexer: store.NewNoopSearchIndexer(),
		logger:  logger,
	}
}

// SetSearchIndexer sets the index that receives imported records.
func (i *Importer) SetSearchIndexer(indexer store.SearchIndexer) {
	i.indexer = indexer
}

// Import walks root and stores every ebook file not stored yet. A file that
// cannot be stored is counted and the walk continues.
func (i *Importer) Import(ctx context.Context, root string) (ImportResult, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return ImportResult{}, fmt.Errorf("resolve %s: %w", root, err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return ImportResult{}, fmt.Errorf("stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return ImportResult{}, fmt.Errorf("import %s: not a directory", root)
	}

	var (
		result  ImportResult
		created []*domain.Ebook
	)
	for f := range i.walker.Walk(ctx, root) {
		result.Scanned++
		e, isNew, err := i.importFile(ctx, f.Path, f.Format, f.Size)
		switch {
		case err != nil:
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", f.RelPath, err))
			i.logger.Warn("import failed", "path", f.Path, "error", err)
		case isNew:
			result.Imported++
			created = append(created, e)
		default:
			result.Existing++
		}
	}

	i.index(context.WithoutCancel(ctx), created...)

	i.logger.Info("import finished",
		"root", root,
		"scanned", result.Scanned,
		"imported", result.Imported,
		"existing", result.Existing,
		"failed", result.Failed,
	)
	return result, ctx.Err()
}

// ImportFile stores the ebook at path unless it is stored already. The bool
// reports whether a record was created.
func (i *Importer) ImportFile(ctx context.Context, path string) (*domain.Ebook, bool, error) {
	path, err := filepath.Abs(path)
	if err != nil {
		return nil, false, err
	}
	format, ok := domain.FormatOf(path)
	if !ok {
		return nil, false, fmt.Errorf("%s: not an ebook file", path)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, false, err
	}

	e, isNew, err := i.importFile(ctx, path, format, info.Size())
	if err == nil && isNew {
		i.index(ctx, e)
	}
	return e, isNew, err
}

func (i *Importer) importFile(ctx context.Context, path, format string, size int64) (*domain.Ebook, bool, error) {
	existing, err := i.store.GetEbookByPath(ctx, path)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, false, fmt.Errorf("look up path: %w", err)
	}

	ebookID, err := id.NewEbookID()
	if err != nil {
		return nil, false, err
	}
	e := &domain.Ebook{
		Entity: domain.Entity{ID: ebookID},
		Path:   path,
		Format: format,
		Size:   size,
	}
	e.InitTimestamps()
	i.applyMetadata(ctx, e)

	if err := i.store.CreateEbook(ctx, e); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			// Another importer got there first.
			existing, getErr := i.store.GetEbookByPath(ctx, path)
			if getErr == nil {
				return existing, false, nil
			}
		}
		return nil, false, fmt.Errorf("create record: %w", err)
	}

	i.logger.Debug("ebook imported", "ebook_id", e.ID, "path", path, "author", e.Author)
	return e, true, nil
}

// applyMetadata seeds title, author and embedded genre from the file,
// falling back to the file name.
func (i *Importer) applyMetadata(ctx context.Context, e *domain.Ebook) {
	md, err := i.meta.Read(ctx, e.Path)
	switch {
	case errors.Is(err, ebookmeta.ErrUnsupported):
	case err != nil:
		i.logger.Debug("embedded metadata unreadable", "path", e.Path, "error", err)
	default:
		if title := normalize.Text(md.Title); author.IsPrintableText(title) {
			e.Title = title
		}
		e.Author = author.Normalize(normalize.Text(md.Author))
		if g := normalize.Text(md.Genre()); author.IsPrintableText(g) {
			e.EmbeddedGenre = g
		}
		e.Description = md.Description
		e.Publisher = normalize.Text(md.Publisher)
		e.Language = normalize.LanguageCode(md.Language)
		e.PublishedDate = normalize.Text(md.Date)
	}

	if e.Title == "" {
		e.Title = author.TitleFromFilename(e.Path)
	}
	if e.Title == "" {
		e.Title = author.Stem(e.Path)
	}
	if e.Author == "" {
		e.Author = author.ExtractFromFilename(e.Path)
	}
}

// Follow imports files reported by the watcher until ctx is done.
// Removed files are logged only: a reorganize run moving files out of the
// folder must not lose their records.
func (i *Importer) Follow(ctx context.Context, events <-chan watcher.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-events:
			i.logger.Debug("library change", "event", ev)
			switch ev.Type {
			case watcher.EventAdded, watcher.EventModified:
				e, isNew, err := i.ImportFile(ctx, ev.Path)
				if err != nil {
					i.logger.Warn("import failed", "path", ev.Path, "error", err)
					continue
				}
				if isNew {
					i.logger.Info("ebook added", "ebook_id", e.ID, "path", ev.Path)
				}
			case watcher.EventRemoved:
				i.logger.Info("ebook file removed", "path", ev.Path)
			}
		}
	}
}

func (i *Importer) index(ctx context.Context, books ...*domain.Ebook) {
	if len(books) == 0 {
		return
	}
	if err := i.indexer.IndexEbooks(ctx, books...); err != nil {
		i.logger.Warn("search index update failed", "count", len(books), "error", err)
	}
}
