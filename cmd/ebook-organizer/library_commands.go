package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ghiridhars/ebook-organizer/internal/di/providers"
	domainerrors "github.com/ghiridhars/ebook-organizer/internal/errors"
	"github.com/ghiridhars/ebook-organizer/internal/library"
	"github.com/ghiridhars/ebook-organizer/internal/logger"
	"github.com/ghiridhars/ebook-organizer/internal/service"
	"github.com/ghiridhars/ebook-organizer/internal/taxonomy"
)

func newTaxonomyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "taxonomy",
		Short:       "List the categories and sub-genres",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return emit(cmd, ctx, taxonomy.Tree(), func(out io.Writer) {
				for _, c := range taxonomy.Categories() {
					fmt.Fprintln(out, c.Name)
					for _, sg := range c.SubGenres {
						fmt.Fprintf(out, "  %s\n", sg.Name)
					}
				}
			})
		},
	}
}

func newStatsCommand(ctx *commandContext) *cobra.Command {
	var source string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show classification coverage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := invoke[*service.OrganizationService](ctx)
			if err != nil {
				return err
			}
			stats, err := svc.Stats(cmd.Context(), source)
			if err != nil {
				return err
			}
			return emit(cmd, ctx, stats, func(out io.Writer) {
				fmt.Fprintf(out, "Total:        %d\n", stats.TotalBooks)
				fmt.Fprintf(out, "Classified:   %d\n", stats.ClassifiedBooks)
				fmt.Fprintf(out, "Unclassified: %d\n", stats.UnclassifiedBooks)
				fmt.Fprintf(out, "Coverage:     %.1f%%\n", stats.CoveragePercent)
				if len(stats.ByCategory) == 0 {
					return
				}
				fmt.Fprintln(out)
				rows := make([][]string, 0, len(stats.ByCategory))
				for _, name := range taxonomy.CategoryNames() {
					if n, ok := stats.ByCategory[name]; ok {
						rows = append(rows, []string{name, itoa(n)})
					}
				}
				renderTable(out, []string{"Category", "Books"}, rows, []columnAlignment{alignLeft, alignRight})
			})
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "Only count ebooks under this folder")
	return cmd
}

func newImportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "import [folder]",
		Short: "Add the ebook files in a folder to the catalog",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := libraryFolder(ctx, args)
			if err != nil {
				return err
			}
			imp, err := invoke[*library.Importer](ctx)
			if err != nil {
				return err
			}
			result, err := imp.Import(cmd.Context(), root)
			if err != nil {
				return err
			}
			return emit(cmd, ctx, result, func(out io.Writer) {
				fmt.Fprintf(out, "Scanned %d files: %d imported, %d already known, %d failed\n",
					result.Scanned, result.Imported, result.Existing, result.Failed)
				printErrors(out, result.Errors)
			})
		},
	}
}

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var skipImport bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Import ebooks as they appear in the library folder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := libraryFolder(ctx, nil)
			if err != nil {
				return err
			}
			log, err := invoke[*logger.Logger](ctx)
			if err != nil {
				return err
			}
			injector, err := ctx.container()
			if err != nil {
				return err
			}

			providers.ReindexIfEmpty(cmd.Context(), injector)

			if !skipImport {
				imp, err := invoke[*library.Importer](ctx)
				if err != nil {
					return err
				}
				if _, err := imp.Import(cmd.Context(), root); err != nil {
					return err
				}
			}

			if _, err := invoke[*providers.FileWatcherHandle](ctx); err != nil {
				return err
			}

			<-cmd.Context().Done()
			log.Info("stopping watcher")
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipImport, "no-initial-import", false, "Skip importing files already in the folder")
	return cmd
}

// libraryFolder is the folder argument, or the configured library path.
func libraryFolder(ctx *commandContext, args []string) (string, error) {
	if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
		return args[0], nil
	}
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return "", err
	}
	if cfg.Library.Path == "" {
		return "", domainerrors.Validation("no folder given and no library path configured")
	}
	return cfg.Library.Path, nil
}
