package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Veraticus/settle-up/internal/cli"
	"github.com/Veraticus/settle-up/internal/config"
	"github.com/Veraticus/settle-up/internal/storage"
)

func migrateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Initialize or upgrade the ledger storage",
		Long: `Initialize or update the storage to the latest version.

For the sqlite backend this applies the schema migrations. For the json
backend it creates the data directory and empty record files.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			status, _ := cmd.Flags().GetBool("status")
			cfg := a.cfg.Storage

			slog.Info("Starting storage migration",
				"backend", cfg.Backend,
				"path", cfg.Path,
				"status_only", status)

			if status {
				if cfg.Backend != config.BackendSQLite {
					_, err := fmt.Fprintln(a.out, cli.FormatInfo("JSON storage has no schema version: "+cfg.Path))
					return err
				}

				store, err := storage.NewSQLiteStorage(cfg.Path)
				if err != nil {
					return fmt.Errorf("failed to open database: %w", err)
				}
				defer func() { _ = store.Close() }()

				current, err := store.SchemaVersion(ctx)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(a.out, cli.RenderBox("Database Migration Status", fmt.Sprintf(
					"Database: %s\nCurrent version: %d\nLatest version: %d",
					cfg.Path, current, storage.ExpectedSchemaVersion)))
				return err
			}

			store, err := openStore(ctx, cfg)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			if err := store.Close(); err != nil {
				return err
			}

			_, err = fmt.Fprintln(a.out, cli.FormatSuccess("Storage is up to date: "+cfg.Path))
			return err
		},
	}

	cmd.Flags().Bool("status", false, "show current migration status without applying changes")

	return cmd
}
