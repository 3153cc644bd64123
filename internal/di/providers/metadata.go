package providers

import (
	"io"

	"github.com/samber/do/v2"

	"github.com/ghiridhars/ebook-organizer/internal/classify"
	"github.com/ghiridhars/ebook-organizer/internal/config"
	"github.com/ghiridhars/ebook-organizer/internal/ebookmeta"
	"github.com/ghiridhars/ebook-organizer/internal/logger"
	"github.com/ghiridhars/ebook-organizer/internal/lookup"
	"github.com/ghiridhars/ebook-organizer/internal/metadata/openlibrary"
)

// LookupCacheHandle wraps the lookup cache with shutdown capability.
type LookupCacheHandle struct {
	lookup.Cache
	closer io.Closer
}

// Shutdown implements do.Shutdownable.
func (h *LookupCacheHandle) Shutdown() error {
	return h.closer.Close()
}

// ProvideLookupCache provides the memoization cache for external lookups.
func ProvideLookupCache(i do.Injector) (*LookupCacheHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Lookup.Cache == config.CacheBadger {
		c, err := lookup.OpenBadgerCache(cfg.Data.CachePath(), log.Logger)
		if err != nil {
			return nil, err
		}
		log.Debug("lookup cache opened", "backend", config.CacheBadger, "entries", c.Len())
		return &LookupCacheHandle{Cache: c, closer: c}, nil
	}

	c, err := lookup.NewMemoryCache(cfg.Lookup.CacheSize)
	if err != nil {
		return nil, err
	}
	return &LookupCacheHandle{Cache: c, closer: c}, nil
}

// ProvideOpenLibraryClient provides the Open Library HTTP client.
func ProvideOpenLibraryClient(i do.Injector) (*openlibrary.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return openlibrary.New(log.Logger, openlibrary.Options{
		BaseURL:  cfg.Lookup.BaseURL,
		Timeout:  cfg.Lookup.Timeout,
		Interval: cfg.Lookup.Interval,
	})
}

// ProvideLookupAdapter provides the memoizing lookup in front of the client.
func ProvideLookupAdapter(i do.Injector) (*lookup.Adapter, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	client := do.MustInvoke[*openlibrary.Client](i)
	cache := do.MustInvoke[*LookupCacheHandle](i)

	return lookup.New(client, cache.Cache, lookup.Options{TTL: cfg.Lookup.CacheTTL}, log.Logger), nil
}

// ProvideClassifier provides the classification engine. With lookups
// disabled the engine runs without the external step.
func ProvideClassifier(i do.Injector) (*classify.Engine, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.Lookup.Enabled {
		log.Debug("external lookup disabled")
		return classify.NewEngine(nil, log.Logger), nil
	}

	adapter := do.MustInvoke[*lookup.Adapter](i)
	return classify.NewEngine(adapter, log.Logger), nil
}

// ProvideMetadataReaders provides the embedded-metadata readers.
func ProvideMetadataReaders(_ do.Injector) (*ebookmeta.Registry, error) {
	return ebookmeta.Default(), nil
}
