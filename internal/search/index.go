package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/blevesearch/bleve/v2"

	"github.com/ghiridhars/ebook-organizer/internal/domain"
	"github.com/ghiridhars/ebook-organizer/internal/store"
)

const (
	indexDirName = "ebooks.bleve"
	batchSize    = 500
)

// versionKey holds mappingVersion in the index's internal key space.
var versionKey = []byte("ebook_organizer.mapping_version")

// SearchIndex is a Bleve index of ebook records. Methods are safe for
// concurrent use; Rebuild excludes everything else while it runs.
type SearchIndex struct {
	mu     sync.RWMutex
	index  bleve.Index
	path   string
	logger *slog.Logger
}

// Options configures the search index.
type Options struct {
	DataPath string // directory holding the index
	Logger   *slog.Logger
}

var _ store.SearchIndexer = (*SearchIndex)(nil)

// Open opens the index under opts.DataPath, creating it if needed. An index
// built for another mapping version, or one that cannot be opened, is
// replaced by an empty one; callers refill it with Reindex.
func Open(opts Options) (*SearchIndex, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if err := os.MkdirAll(opts.DataPath, 0o755); err != nil {
		return nil, fmt.Errorf("create index directory: %w", err)
	}

	s := &SearchIndex{path: filepath.Join(opts.DataPath, indexDirName), logger: logger}

	idx, err := bleve.Open(s.path)
	switch {
	case errors.Is(err, bleve.ErrorIndexPathDoesNotExist):
		idx, err = s.create()
	case err != nil:
		logger.Warn("search index unreadable, recreating", "path", s.path, "error", err)
		idx, err = s.recreate()
	default:
		if v, _ := idx.GetInternal(versionKey); string(v) != mappingVersion {
			logger.Info("search index mapping changed, recreating",
				"old_version", string(v), "new_version", mappingVersion)
			_ = idx.Close()
			idx, err = s.recreate()
		}
	}
	if err != nil {
		return nil, err
	}

	s.index = idx
	return s, nil
}

func (s *SearchIndex) create() (bleve.Index, error) {
	idx, err := bleve.New(s.path, buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}
	if err := idx.SetInternal(versionKey, []byte(mappingVersion)); err != nil {
		_ = idx.Close()
		return nil, fmt.Errorf("record mapping version: %w", err)
	}
	s.logger.Debug("search index created", "path", s.path, "mapping_version", mappingVersion)
	return idx, nil
}

func (s *SearchIndex) recreate() (bleve.Index, error) {
	if err := os.RemoveAll(s.path); err != nil {
		return nil, fmt.Errorf("remove index: %w", err)
	}
	return s.create()
}

// Close releases the index.
func (s *SearchIndex) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}

// IndexEbooks adds or replaces records, committing in batches.
func (s *SearchIndex) IndexEbooks(ctx context.Context, books ...*domain.Ebook) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for start := 0; start < len(books); start += batchSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		b := s.index.NewBatch()
		for _, e := range books[start:min(start+batchSize, len(books))] {
			if err := b.Index(e.ID, NewDocument(e).fields()); err != nil {
				return fmt.Errorf("index %s: %w", e.ID, err)
			}
		}
		if err := s.index.Batch(b); err != nil {
			return fmt.Errorf("commit index batch: %w", err)
		}
	}
	return nil
}

// DeleteEbooks removes records by id. Unknown ids are ignored.
func (s *SearchIndex) DeleteEbooks(ctx context.Context, ids ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	b := s.index.NewBatch()
	for _, id := range ids {
		b.Delete(id)
	}
	return s.index.Batch(b)
}

// DocumentCount returns the number of indexed records.
func (s *SearchIndex) DocumentCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}

// Rebuild replaces the index with an empty one.
func (s *SearchIndex) Rebuild() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.index.Close(); err != nil {
		return fmt.Errorf("close index: %w", err)
	}
	idx, err := s.recreate()
	if err != nil {
		return err
	}
	s.index = idx
	s.logger.Info("search index emptied", "path", s.path)
	return nil
}

// Reindex empties the index and refills it from every record in src.
func (s *SearchIndex) Reindex(ctx context.Context, src store.EbookStore) (int, error) {
	if err := s.Rebuild(); err != nil {
		return 0, err
	}

	total := 0
	for {
		books, err := src.ListEbooks(ctx, store.EbookFilter{Offset: total, Limit: batchSize})
		if err != nil {
			return total, fmt.Errorf("list ebooks: %w", err)
		}
		if err := s.IndexEbooks(ctx, books...); err != nil {
			return total, err
		}
		total += len(books)
		if len(books) < batchSize {
			break
		}
	}

	s.logger.Info("search index refilled from store", "documents", total)
	return total, nil
}
