package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kestrelfin/kestrel/internal/cli"
	"github.com/kestrelfin/kestrel/internal/config"
	"github.com/kestrelfin/kestrel/internal/storage"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Initialize or update the database schema to the latest version.

Migrations also run automatically before every command that touches the
database; this command exists to apply them explicitly, for example
after restoring a database file from an old backup.`,
		RunE: runMigrate,
	}

	cmd.Flags().Bool("status", false, "Show current schema version without applying changes")

	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	status, _ := cmd.Flags().GetBool("status")

	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = config.DefaultDatabasePath()
	}
	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("failed to close storage", "error", closeErr)
		}
	}()

	ctx := cmd.Context()

	if status {
		version, versionErr := store.SchemaVersion(ctx)
		if versionErr != nil {
			return fmt.Errorf("failed to read schema version: %w", versionErr)
		}

		fmt.Println(cli.FormatTitle("Schema Status"))                                                        //nolint:forbidigo // User-facing output
		fmt.Printf("Database: %s\n", dbPath)                                                                 //nolint:forbidigo // User-facing output
		fmt.Printf("Current version: %d\n", version)                                                         //nolint:forbidigo // User-facing output
		fmt.Printf("Latest version: %d\n", storage.ExpectedSchemaVersion)                                    //nolint:forbidigo // User-facing output
		if version < storage.ExpectedSchemaVersion {
			fmt.Println(cli.FormatWarning("Migrations pending. Run 'kestrel migrate' to apply them.")) //nolint:forbidigo // User-facing output
		} else {
			fmt.Println(cli.FormatSuccess("Schema is up to date.")) //nolint:forbidigo // User-facing output
		}
		return nil
	}

	slog.Info("Running database migrations", "database", dbPath)

	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	fmt.Println(cli.FormatSuccess("Database migrations completed")) //nolint:forbidigo // User-facing output

	return nil
}
