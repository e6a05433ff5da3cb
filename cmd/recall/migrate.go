package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/recall/internal/cli"
	"github.com/at-ishikawa/recall/internal/database"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations for the mysql and sqlite stores",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if !cfg.Store.IsSQL() {
				return fmt.Errorf("store driver %q has no database to migrate", cfg.Store.Driver)
			}

			db, err := database.Open(cfg.Store.Driver, cfg.Database)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer func() { _ = db.Close() }()

			version, err := database.Migrate(db)
			if err != nil {
				return fmt.Errorf("migrate database: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Database schema is at version %d\n", version)
			return nil
		},
	}
}

func newHistoryCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent review activity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 1 {
				return errors.New("--limit must be at least 1")
			}

			stores, cfg, err := openStores()
			if err != nil {
				return err
			}
			defer func() { _ = stores.Close() }()
			if stores.Activity == nil {
				return fmt.Errorf("store driver %q does not keep activity history", cfg.Store.Driver)
			}

			logs, err := stores.Activity.FindRecent(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("load activity: %w", err)
			}
			cli.NewReporter(cmd.OutOrStdout()).PrintHistory(logs)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of entries to show")
	return cmd
}
