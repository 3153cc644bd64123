package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/ghiridhars/ebook-organizer/internal/config"
	"github.com/ghiridhars/ebook-organizer/internal/logger"
	"github.com/ghiridhars/ebook-organizer/internal/search"
	"github.com/ghiridhars/ebook-organizer/internal/store"
)

// SearchIndexHandle wraps the search index with shutdown capability.
// Index is nil when search is disabled.
type SearchIndexHandle struct {
	Index *search.SearchIndex
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	if h.Index == nil {
		return nil
	}
	return h.Index.Close()
}

// Indexer returns the index as a store.SearchIndexer, or a no-op when
// search is disabled.
func (h *SearchIndexHandle) Indexer() store.SearchIndexer {
	if h.Index == nil {
		return store.NewNoopSearchIndexer()
	}
	return h.Index
}

// ProvideSearchIndex provides the Bleve search index.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.Search.Enabled {
		return &SearchIndexHandle{}, nil
	}

	index, err := search.Open(search.Options{
		DataPath: cfg.Data.IndexPath(),
		Logger:   log.Logger,
	})
	if err != nil {
		return nil, err
	}

	docCount, _ := index.DocumentCount()
	log.Debug("search index initialized", "documents", docCount)

	return &SearchIndexHandle{Index: index}, nil
}

// ReindexIfEmpty fills an empty index from the store, which happens after
// the index was rebuilt for a new mapping.
func ReindexIfEmpty(ctx context.Context, i do.Injector) {
	handle := do.MustInvoke[*SearchIndexHandle](i)
	if handle.Index == nil {
		return
	}
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	docCount, err := handle.Index.DocumentCount()
	if err != nil || docCount > 0 {
		return
	}

	counts, err := storeHandle.CountClassifications(ctx, "")
	if err != nil || counts.Total == 0 {
		return
	}

	log.Info("search index is empty but ebooks exist, reindexing", "ebooks", counts.Total)
	n, err := handle.Index.Reindex(ctx, storeHandle.Store)
	if err != nil {
		log.Error("search reindex failed", "error", err)
		return
	}
	log.Info("search reindex completed", "documents", n)
}
