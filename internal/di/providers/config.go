// Package providers contains dependency injection providers for the organizer.
package providers

import (
	"github.com/samber/do/v2"

	"github.com/ghiridhars/ebook-organizer/internal/config"
	"github.com/ghiridhars/ebook-organizer/internal/logger"
	"github.com/ghiridhars/ebook-organizer/internal/validation"
)

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		Format:      cfg.Logger.Format,
		AddSource:   cfg.App.Environment == "development" && cfg.Logger.Level == "debug",
		Environment: cfg.App.Environment,
	})

	log.Debug("configuration loaded",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"data_path", cfg.Data.BasePath,
		"library_path", cfg.Library.Path,
		"lookup_enabled", cfg.Lookup.Enabled,
		"lookup_cache", cfg.Lookup.Cache,
		"search_enabled", cfg.Search.Enabled,
	)

	return log, nil
}

// ProvideValidator provides the request validator shared by the services.
func ProvideValidator(_ do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}
