package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ghiridhars/ebook-organizer/internal/di/providers"
	domainerrors "github.com/ghiridhars/ebook-organizer/internal/errors"
	"github.com/ghiridhars/ebook-organizer/internal/search"
)

// searchIndex returns the open index, or a precondition error when search
// is disabled.
func searchIndex(ctx *commandContext) (*search.SearchIndex, error) {
	handle, err := invoke[*providers.SearchIndexHandle](ctx)
	if err != nil {
		return nil, err
	}
	if handle.Index == nil {
		return nil, domainerrors.Preconditionf("search is disabled; enable it with --search=true or SEARCH_ENABLED")
	}
	return handle.Index, nil
}

func newSearchCommand(ctx *commandContext) *cobra.Command {
	params := search.DefaultSearchParams()

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search the catalog by title, author and description",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				params.Query = args[0]
			}
			index, err := searchIndex(ctx)
			if err != nil {
				return err
			}
			result, err := index.Search(cmd.Context(), params)
			if err != nil {
				return err
			}
			return emit(cmd, ctx, result, func(out io.Writer) {
				fmt.Fprintf(out, "%d matches in %dms\n\n", result.Total, result.TookMs)
				rows := make([][]string, 0, len(result.Hits))
				for _, h := range result.Hits {
					rows = append(rows, []string{h.ID, h.Title, orDash(h.Author), orDash(h.Category), orDash(h.SubGenre), h.Format})
				}
				renderTable(out, []string{"ID", "Title", "Author", "Category", "Sub-genre", "Format"}, rows, nil)
			})
		},
	}

	f := cmd.Flags()
	f.StringVar(&params.Category, "category", "", "Only this category")
	f.StringVar(&params.SubGenre, "sub-genre", "", "Only this sub-genre")
	f.StringVar(&params.Format, "format", "", "Only this file format")
	f.IntVar(&params.Limit, "limit", params.Limit, "Maximum number of hits")
	f.IntVar(&params.Offset, "offset", 0, "Skip this many hits")
	f.StringVar(&params.Language, "language", "", "Only this language code")
	f.BoolVar(&params.Unclassified, "unclassified", false, "Only books without a complete classification")
	f.StringVar(&params.SortBy, "sort", params.SortBy, "Sort by relevance, title, author or recent")
	f.BoolVar(&params.Descending, "desc", false, "Reverse the sort order")
	return cmd
}

func newReindexCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the search index from the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := searchIndex(ctx)
			if err != nil {
				return err
			}
			storeHandle, err := invoke[*providers.StoreHandle](ctx)
			if err != nil {
				return err
			}
			n, err := index.Reindex(cmd.Context(), storeHandle.Store)
			if err != nil {
				return err
			}
			return emit(cmd, ctx, map[string]int{"indexed": n}, func(out io.Writer) {
				fmt.Fprintf(out, "Indexed %d ebooks\n", n)
			})
		},
	}
}
