// Package di provides dependency injection configuration for the organizer.
package di

import (
	"github.com/samber/do/v2"

	"github.com/ghiridhars/ebook-organizer/internal/config"
	"github.com/ghiridhars/ebook-organizer/internal/di/providers"
)

// NewContainer creates the DI container for cfg. Services are built lazily
// on first invoke, so a command only opens what it uses.
func NewContainer(cfg *config.Config) *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.ProvideValue(injector, cfg)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideValidator)

	// Database layer
	do.Provide(injector, providers.ProvideStore)

	// Search layer
	do.Provide(injector, providers.ProvideSearchIndex)

	// Metadata layer
	do.Provide(injector, providers.ProvideLookupCache)
	do.Provide(injector, providers.ProvideOpenLibraryClient)
	do.Provide(injector, providers.ProvideLookupAdapter)
	do.Provide(injector, providers.ProvideClassifier)
	do.Provide(injector, providers.ProvideMetadataReaders)

	// Business services
	do.Provide(injector, providers.ProvideOrganizationService)
	do.Provide(injector, providers.ProvideReorganizeService)
	do.Provide(injector, providers.ProvideImporter)

	// Workers
	do.Provide(injector, providers.ProvideFileWatcher)

	return injector
}
