package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ghiridhars/ebook-organizer/internal/classify"
	domainerrors "github.com/ghiridhars/ebook-organizer/internal/errors"
	"github.com/ghiridhars/ebook-organizer/internal/id"
	"github.com/ghiridhars/ebook-organizer/internal/service"
	"github.com/ghiridhars/ebook-organizer/internal/taxonomy"
)

func newClassifyCommand(ctx *commandContext) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "classify <ebook-id>",
		Short: "Classify one ebook",
		Args:  ebookIDArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := invoke[*service.OrganizationService](ctx)
			if err != nil {
				return err
			}
			res, updated, err := svc.ClassifyEbook(cmd.Context(), args[0], force)
			if err != nil {
				return err
			}

			payload := struct {
				classify.Result
				Updated bool `json:"updated"`
			}{res, updated}
			return emit(cmd, ctx, payload, func(out io.Writer) {
				if !res.Complete() {
					fmt.Fprintln(out, "No classification found")
					return
				}
				fmt.Fprintf(out, "%s / %s (%s)\n", res.Category, res.SubGenre, res.Source)
				if res.Author != "" {
					fmt.Fprintf(out, "Author: %s\n", res.Author)
				}
				if !updated {
					fmt.Fprintln(out, "Nothing changed")
				}
			})
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Reclassify even when a classification is stored")
	return cmd
}

func newBatchClassifyCommand(ctx *commandContext) *cobra.Command {
	var (
		req       service.BatchClassifyRequest
		overrides []string
	)

	cmd := &cobra.Command{
		Use:   "batch-classify",
		Short: "Classify many ebooks at once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := parseOverrides(overrides)
			if err != nil {
				return err
			}
			req.Overrides = parsed

			svc, err := invoke[*service.OrganizationService](ctx)
			if err != nil {
				return err
			}
			result, err := svc.BatchClassify(cmd.Context(), req)
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			// A cancelled batch still reports what it finished.
			if emitErr := emit(cmd, ctx, result, func(out io.Writer) { printBatch(out, result) }); err == nil {
				err = emitErr
			}
			return err
		},
	}

	f := cmd.Flags()
	f.StringSliceVar(&req.IDs, "ids", nil, "Only classify these ebook IDs")
	f.StringVar(&req.SourcePath, "source", "", "Only classify ebooks under this folder")
	f.BoolVar(&req.Force, "force", false, "Reclassify ebooks that already have a classification")
	f.IntVar(&req.Limit, "limit", 0, "Maximum number of ebooks to classify automatically")
	f.StringArrayVar(&overrides, "set", nil, "Manual classification as ID=Category/SubGenre (repeatable)")
	return cmd
}

// parseOverrides reads ID=Category/SubGenre pairs. The sub-genre may be
// omitted when the category alone is enough.
func parseOverrides(raw []string) (map[string]taxonomy.Classification, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(map[string]taxonomy.Classification, len(raw))
	for _, r := range raw {
		id, value, ok := strings.Cut(r, "=")
		id = strings.TrimSpace(id)
		if !ok || id == "" {
			return nil, domainerrors.Validationf("invalid --set %q: want ID=Category/SubGenre", r)
		}
		category, subGenre, _ := strings.Cut(value, "/")
		out[id] = taxonomy.Classification{
			Category: strings.TrimSpace(category),
			SubGenre: strings.TrimSpace(subGenre),
		}
	}
	return out, nil
}

func printBatch(out io.Writer, result service.BatchResult) {
	fmt.Fprintf(out, "Processed %d: %d newly classified, %d unchanged, %d failed\n",
		result.TotalProcessed, result.NewlyClassified, result.AlreadyClassified, result.Failed)

	if len(result.Classifications) > 0 {
		fmt.Fprintln(out)
		rows := make([][]string, 0, len(result.Classifications))
		for _, id := range sortedIDs(result.Classifications) {
			c := result.Classifications[id]
			rows = append(rows, []string{id, c.Category, c.SubGenre, string(result.Results[id].Source)})
		}
		renderTable(out, []string{"ID", "Category", "Sub-genre", "Source"}, rows, nil)
	}
	printErrors(out, result.Errors)
}

func newSetClassificationCommand(ctx *commandContext) *cobra.Command {
	var req service.UpdateClassificationRequest

	cmd := &cobra.Command{
		Use:   "set-classification <ebook-id>",
		Short: "Set an ebook's category and sub-genre by hand",
		Args:  ebookIDArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			req.ID = args[0]
			svc, err := invoke[*service.OrganizationService](ctx)
			if err != nil {
				return err
			}
			e, err := svc.UpdateClassification(cmd.Context(), req)
			if err != nil {
				return err
			}
			return emit(cmd, ctx, e, func(out io.Writer) {
				fmt.Fprintf(out, "%s: %s / %s\n", e.DisplayTitle(), e.Category, orDash(e.SubGenre))
			})
		},
	}

	cmd.Flags().StringVar(&req.Category, "category", "", "Category name")
	cmd.Flags().StringVar(&req.SubGenre, "sub-genre", "", "Sub-genre name; the category is inferred when omitted")
	return cmd
}

func newPreviewCommand(ctx *commandContext) *cobra.Command {
	var req service.PreviewRequest

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Show how unclassified ebooks would be classified",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := invoke[*service.OrganizationService](ctx)
			if err != nil {
				return err
			}
			preview, err := svc.Preview(cmd.Context(), req)
			if err != nil {
				return err
			}
			return emit(cmd, ctx, preview, func(out io.Writer) {
				fmt.Fprintf(out, "%d ebooks to classify\n\n", preview.TotalToClassify)
				rows := make([][]string, 0, len(preview.Books))
				for _, b := range preview.Books {
					rows = append(rows, []string{
						b.Title, orDash(b.Author), orDash(b.ProposedCategory), orDash(b.ProposedSubGenre), string(b.Source),
					})
				}
				renderTable(out, []string{"Title", "Author", "Category", "Sub-genre", "Source"}, rows, nil)
			})
		},
	}

	cmd.Flags().StringVar(&req.SourcePath, "source", "", "Only preview ebooks under this folder")
	cmd.Flags().IntVar(&req.Limit, "limit", 0, "Maximum number of ebooks to preview")
	return cmd
}

func newBooksCommand(ctx *commandContext) *cobra.Command {
	var req service.BooksByCategoryRequest

	cmd := &cobra.Command{
		Use:   "books",
		Short: "List ebooks by category and sub-genre",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := invoke[*service.OrganizationService](ctx)
			if err != nil {
				return err
			}
			books, err := svc.BooksByCategory(cmd.Context(), req)
			if err != nil {
				return err
			}
			return emit(cmd, ctx, books, func(out io.Writer) {
				rows := make([][]string, 0, len(books))
				for _, b := range books {
					rows = append(rows, []string{b.ID, b.DisplayTitle(), orDash(b.Author), orDash(b.Category), orDash(b.SubGenre)})
				}
				renderTable(out, []string{"ID", "Title", "Author", "Category", "Sub-genre"}, rows, nil)
			})
		},
	}

	f := cmd.Flags()
	f.StringVar(&req.Category, "category", "", "Category name")
	f.StringVar(&req.SubGenre, "sub-genre", "", "Sub-genre name")
	f.StringVar(&req.SourcePath, "source", "", "Only list ebooks under this folder")
	f.IntVar(&req.Offset, "offset", 0, "Skip this many ebooks")
	f.IntVar(&req.Limit, "limit", 50, "Maximum number of ebooks to list")
	return cmd
}

func sortedIDs[V any](m map[string]V) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// ebookIDArg requires exactly one argument shaped like an ebook id.
func ebookIDArg(cmd *cobra.Command, args []string) error {
	if err := cobra.ExactArgs(1)(cmd, args); err != nil {
		return domainerrors.Validation(err.Error())
	}
	if !id.IsEbookID(args[0]) {
		return domainerrors.Validationf("%q is not an ebook id", args[0])
	}
	return nil
}
