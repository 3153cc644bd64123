package main

import (
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	domainerrors "github.com/ghiridhars/ebook-organizer/internal/errors"
	"github.com/ghiridhars/ebook-organizer/internal/service"
)

type reorganizeFlags struct {
	destination         string
	source              string
	includeUnclassified bool
	copyFiles           bool
}

func (f *reorganizeFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.destination, "dest", "d", "", "Destination root (defaults to the configured destination)")
	fs.StringVar(&f.source, "source", "", "Only include ebooks under this folder")
	fs.BoolVar(&f.includeUnclassified, "include-unclassified", false, "Place unclassified ebooks under _Uncategorized")
	fs.BoolVar(&f.copyFiles, "copy", false, "Copy files instead of moving them")
}

func (f *reorganizeFlags) request(ctx *commandContext) (service.ReorganizeRequest, error) {
	dest := f.destination
	if dest == "" {
		cfg, err := ctx.ensureConfig()
		if err != nil {
			return service.ReorganizeRequest{}, err
		}
		dest = cfg.Library.DestinationPath
	}
	if dest == "" {
		return service.ReorganizeRequest{}, domainerrors.Validation("no --dest given and no destination path configured")
	}

	op := service.OperationMove
	if f.copyFiles {
		op = service.OperationCopy
	}
	return service.ReorganizeRequest{
		Destination:         dest,
		SourcePath:          f.source,
		IncludeUnclassified: f.includeUnclassified,
		Operation:           op,
	}, nil
}

func newPlanCommand(ctx *commandContext) *cobra.Command {
	var flags reorganizeFlags

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show where reorganize would put each file, without touching anything",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.request(ctx)
			if err != nil {
				return err
			}
			svc, err := invoke[*service.ReorganizeService](ctx)
			if err != nil {
				return err
			}
			plan, err := svc.Plan(cmd.Context(), req)
			if err != nil {
				return err
			}
			return emit(cmd, ctx, plan, func(out io.Writer) {
				fmt.Fprintf(out, "%s %d files into %s (%d classified, %d unclassified, %d renamed, %d already in place)\n\n",
					plan.Operation, plan.TotalFiles, plan.Destination,
					plan.ClassifiedFiles, plan.UnclassifiedFiles, plan.Collisions, plan.AlreadyInPlace)
				rows := make([][]string, 0, len(plan.Moves))
				for _, m := range plan.Moves {
					rows = append(rows, []string{m.Title, m.SourcePath, m.TargetPath})
				}
				renderTable(out, []string{"Title", "From", "To"}, rows, nil)
				for _, missing := range plan.MissingSources {
					fmt.Fprintf(out, "Source not found: %s\n", missing)
				}
			})
		},
	}

	flags.register(cmd)
	return cmd
}

func newReorganizeCommand(ctx *commandContext) *cobra.Command {
	var flags reorganizeFlags

	cmd := &cobra.Command{
		Use:   "reorganize",
		Short: "Move or copy ebooks into Category/SubGenre/Author folders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.request(ctx)
			if err != nil {
				return err
			}
			svc, err := invoke[*service.ReorganizeService](ctx)
			if err != nil {
				return err
			}
			result, err := svc.Execute(cmd.Context(), req)
			if result == nil {
				return err
			}
			emitErr := emit(cmd, ctx, result, func(out io.Writer) {
				fmt.Fprintf(out, "Run %s: %d processed, %d succeeded, %d skipped (%d already in place), %d failed\n",
					result.RunID, result.TotalProcessed, result.Succeeded, result.Skipped, result.AlreadyInPlace, result.Failed)
				if len(result.PathMappings) > 0 {
					fmt.Fprintln(out)
					rows := make([][]string, 0, len(result.PathMappings))
					for _, from := range slices.Sorted(maps.Keys(result.PathMappings)) {
						rows = append(rows, []string{from, result.PathMappings[from]})
					}
					renderTable(out, []string{"From", "To"}, rows, nil)
				}
				printErrors(out, result.Errors)
			})
			if err != nil {
				return err
			}
			return emitErr
		},
	}

	flags.register(cmd)
	return cmd
}
