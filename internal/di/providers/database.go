package providers

import (
	"github.com/samber/do/v2"

	"github.com/ghiridhars/ebook-organizer/internal/config"
	"github.com/ghiridhars/ebook-organizer/internal/logger"
	"github.com/ghiridhars/ebook-organizer/internal/store/sqlite"
)

// StoreHandle closes the ebook database when the container shuts down.
type StoreHandle struct {
	*sqlite.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore opens the ebook database under the data directory.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	db, err := sqlite.Open(cfg.Data.DatabasePath(), log.With("component", "store"))
	if err != nil {
		return nil, err
	}
	return &StoreHandle{Store: db}, nil
}
