package providers

import (
	"context"
	"errors"
	"sync"

	"github.com/samber/do/v2"

	"github.com/ghiridhars/ebook-organizer/internal/config"
	"github.com/ghiridhars/ebook-organizer/internal/domain"
	"github.com/ghiridhars/ebook-organizer/internal/library"
	"github.com/ghiridhars/ebook-organizer/internal/logger"
	"github.com/ghiridhars/ebook-organizer/internal/watcher"
)

// ErrNoLibraryPath is returned when the watcher is requested without a
// configured library folder.
var ErrNoLibraryPath = errors.New("no library path configured")

// FileWatcherHandle wraps the file watcher and its follow loop with
// shutdown capability.
type FileWatcherHandle struct {
	*watcher.Watcher
	cancel context.CancelFunc
	wg     sync.WaitGroup
	log    *logger.Logger
}

// Shutdown implements do.Shutdownable.
func (h *FileWatcherHandle) Shutdown() error {
	h.cancel()
	err := h.Watcher.Stop()
	if !waitTimeout(&h.wg, shutdownTimeout) {
		h.log.Warn("file watcher did not drain before shutdown", "timeout", shutdownTimeout)
	}
	return err
}

// ProvideFileWatcher watches the library folder and imports ebooks as they
// settle.
func ProvideFileWatcher(i do.Injector) (*FileWatcherHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	importer := do.MustInvoke[*library.Importer](i)

	if cfg.Library.Path == "" {
		return nil, ErrNoLibraryPath
	}

	extensions := make([]string, 0, len(domain.Formats))
	for ext := range domain.Formats {
		extensions = append(extensions, ext)
	}

	w, err := watcher.New(log.Logger, watcher.Options{Extensions: extensions})
	if err != nil {
		return nil, err
	}
	if err := w.Watch(cfg.Library.Path); err != nil {
		_ = w.Stop()
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	h := &FileWatcherHandle{Watcher: w, cancel: cancel, log: log}

	h.wg.Add(3)
	go func() {
		defer h.wg.Done()
		if err := w.Start(ctx); err != nil {
			log.Error("file watcher error", "error", err)
		}
	}()
	go func() {
		defer h.wg.Done()
		importer.Follow(ctx, w.Events())
	}()
	go func() {
		defer h.wg.Done()
		for {
			select {
			case err := <-w.Errors():
				log.Warn("file watcher error", "error", err)
			case <-ctx.Done():
				return
			}
		}
	}()

	log.Info("watching library", "path", cfg.Library.Path)
	return h, nil
}
