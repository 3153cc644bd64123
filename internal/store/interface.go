// Package store defines the persistence interface for the ebook library.
package store

import (
	"context"

	"github.com/ghiridhars/ebook-organizer/internal/domain"
)

// EbookStore persists ebook records.
type EbookStore interface {
	CreateEbook(ctx context.Context, e *domain.Ebook) error
	GetEbook(ctx context.Context, id string) (*domain.Ebook, error)
	GetEbookByPath(ctx context.Context, path string) (*domain.Ebook, error)
	ListEbooks(ctx context.Context, f EbookFilter) ([]*domain.Ebook, error)
	UpdateEbook(ctx context.Context, e *domain.Ebook) error
	DeleteEbook(ctx context.Context, id string) error
	CountClassifications(ctx context.Context, pathPrefix string) (*ClassificationCounts, error)
	// UpdatePaths applies every update in one transaction.
	UpdatePaths(ctx context.Context, updates []PathUpdate) error
}
