package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/recall/internal/datasync"
)

func newImportCommand() *cobra.Command {
	var dryRun bool
	var updateExisting bool

	cmd := &cobra.Command{
		Use:   "import <directory>",
		Short: "Import review files into the configured store",
		Long: `Import review files into the configured store.

*.json files may hold one review ({"problemId", "lastReviewed", "nextReview", "interval", ...})
or an array of database rows ({"problem_id", "last_reviewed", "interval_days", ...}).
*.yml files written by "recall export" are imported as well.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stores, _, err := openStores()
			if err != nil {
				return err
			}
			defer func() { _ = stores.Close() }()

			out := cmd.OutOrStdout()
			opts := datasync.ImportOptions{
				DryRun:         dryRun,
				UpdateExisting: updateExisting,
			}
			result, err := datasync.NewImporter(stores.Reviews, out).ImportDirectory(cmd.Context(), args[0], opts)
			if err != nil {
				return fmt.Errorf("import reviews: %w", err)
			}

			fmt.Fprintln(out, "\nImport Summary:")
			if opts.DryRun {
				fmt.Fprintln(out, "  (dry-run mode, no changes made)")
			}
			fmt.Fprintf(out, "  Reviews:  %d new, %d skipped, %d updated, %d warnings\n",
				result.New, result.Skipped, result.Updated, result.Warnings)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Preview changes without modifying the store")
	cmd.Flags().BoolVar(&updateExisting, "update-existing", false, "Overwrite reviews that already exist")
	return cmd
}

func newExportCommand() *cobra.Command {
	var outputDir string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all reviews to a YAML file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stores, _, err := openStores()
			if err != nil {
				return err
			}
			defer func() { _ = stores.Close() }()

			path, count, err := datasync.NewExporter(stores.Reviews, datasync.NewYAMLReviewSink(outputDir)).Export(cmd.Context())
			if err != nil {
				return fmt.Errorf("export reviews: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d reviews to %s\n", count, path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "./export", "Output directory for the YAML file")
	return cmd
}
