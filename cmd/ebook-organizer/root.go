package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() (*cobra.Command, *commandContext) {
	ctx := newCommandContext()

	rootCmd := &cobra.Command{
		Use:           "ebook-organizer",
		Short:         "Classify and organize an ebook library",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&ctx.flags.ConfigFile, "config", "c", "", "Configuration file path (TOML)")
	flags.StringVar(&ctx.flags.EnvFile, "env-file", "", "Environment file (default .env)")
	flags.StringVar(&ctx.flags.DataPath, "data", "", "Directory for the catalog, cache and search index")
	flags.StringVar(&ctx.flags.LibraryPath, "library", "", "Ebook folder to import and watch")
	flags.StringVar(&ctx.flags.LogLevel, "log-level", "", "Log level: debug, info, warn or error")
	flags.StringVar(&ctx.flags.LogFormat, "log-format", "", "Log format: json or pretty")
	flags.StringVar(&ctx.flags.LookupEnabled, "lookup", "", "Enable the Open Library lookup (true/false)")
	flags.StringVar(&ctx.flags.LookupCache, "lookup-cache", "", "Lookup cache backend: memory or badger")
	flags.StringVar(&ctx.flags.SearchEnabled, "search", "", "Keep the search index up to date (true/false)")
	flags.BoolVar(&ctx.jsonOutput, "json", false, "Print results as JSON")

	rootCmd.AddCommand(newTaxonomyCommand(ctx))
	rootCmd.AddCommand(newStatsCommand(ctx))
	rootCmd.AddCommand(newImportCommand(ctx))
	rootCmd.AddCommand(newWatchCommand(ctx))
	rootCmd.AddCommand(newClassifyCommand(ctx))
	rootCmd.AddCommand(newBatchClassifyCommand(ctx))
	rootCmd.AddCommand(newSetClassificationCommand(ctx))
	rootCmd.AddCommand(newPreviewCommand(ctx))
	rootCmd.AddCommand(newBooksCommand(ctx))
	rootCmd.AddCommand(newPlanCommand(ctx))
	rootCmd.AddCommand(newReorganizeCommand(ctx))
	rootCmd.AddCommand(newSearchCommand(ctx))
	rootCmd.AddCommand(newReindexCommand(ctx))

	return rootCmd, ctx
}
