package store

import (
	"context"

	"github.com/ghiridhars/ebook-organizer/internal/domain"
)

// SearchIndexer keeps a search index in step with record changes. Services
// call it after their own writes succeed; index failures never undo them.
type SearchIndexer interface {
	IndexEbooks(ctx context.Context, books ...*domain.Ebook) error
	DeleteEbooks(ctx context.Context, ids ...string) error
}

// NoopSearchIndexer is used when search is disabled.
type NoopSearchIndexer struct{}

// IndexEbooks is a no-op.
func (NoopSearchIndexer) IndexEbooks(context.Context, ...*domain.Ebook) error { return nil }

// DeleteEbooks is a no-op.
func (NoopSearchIndexer) DeleteEbooks(context.Context, ...string) error { return nil }

// NewNoopSearchIndexer creates a no-op indexer.
func NewNoopSearchIndexer() SearchIndexer {
	return NoopSearchIndexer{}
}
