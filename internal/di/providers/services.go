package providers

import (
	"github.com/samber/do/v2"

	"github.com/ghiridhars/ebook-organizer/internal/classify"
	"github.com/ghiridhars/ebook-organizer/internal/ebookmeta"
	"github.com/ghiridhars/ebook-organizer/internal/library"
	"github.com/ghiridhars/ebook-organizer/internal/logger"
	"github.com/ghiridhars/ebook-organizer/internal/service"
	"github.com/ghiridhars/ebook-organizer/internal/validation"
)

// ProvideOrganizationService provides the classification service.
func ProvideOrganizationService(i do.Injector) (*service.OrganizationService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	engine := do.MustInvoke[*classify.Engine](i)
	v := do.MustInvoke[*validation.Validator](i)
	searchHandle := do.MustInvoke[*SearchIndexHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	svc := service.NewOrganizationService(storeHandle.Store, engine, v, log.Logger)
	svc.SetSearchIndexer(searchHandle.Indexer())
	return svc, nil
}

// ProvideReorganizeService provides the folder reorganization service.
func ProvideReorganizeService(i do.Injector) (*service.ReorganizeService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	v := do.MustInvoke[*validation.Validator](i)
	searchHandle := do.MustInvoke[*SearchIndexHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	svc := service.NewReorganizeService(storeHandle.Store, v, log.Logger)
	svc.SetSearchIndexer(searchHandle.Indexer())
	return svc, nil
}

// ProvideImporter provides the library importer.
func ProvideImporter(i do.Injector) (*library.Importer, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	readers := do.MustInvoke[*ebookmeta.Registry](i)
	searchHandle := do.MustInvoke[*SearchIndexHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	imp := library.NewImporter(storeHandle.Store, readers, log.Logger)
	imp.SetSearchIndexer(searchHandle.Indexer())
	return imp, nil
}
