package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kestrelfin/kestrel/internal/cli"
	"github.com/kestrelfin/kestrel/internal/common"
	"github.com/kestrelfin/kestrel/internal/service"
)

func exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <file.json>",
		Short: "Export all data to a JSON backup file",
		Long: `Write patterns, transactions, dissimilar pairs and the upload history
into one versioned JSON document. The file can be loaded on another
machine with 'kestrel import'.`,
		Args: cobra.ExactArgs(1),
		RunE: runExport,
	}
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	outputPath := args[0]

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer closeStorage(store)

	backup, err := store.ExportAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to export data: %w", err)
	}

	data, err := json.MarshalIndent(backup, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}
	if err := os.WriteFile(outputPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write backup file: %w", err)
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Exported %d patterns, %d transactions, %d pairs, %d uploads to %s",
		len(backup.Patterns), len(backup.TransactionRecords),
		len(backup.DissimilarPairs), len(backup.Uploads), outputPath))) //nolint:forbidigo // User-facing output

	return nil
}

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.json>",
		Short: "Import a JSON backup file",
		Long: `Load a backup produced by 'kestrel export'. The import is
all-or-nothing: a malformed document leaves the database untouched.
Patterns and transactions get fresh identifiers; dissimilar pair keys
are preserved as exported.`,
		Args: cobra.ExactArgs(1),
		RunE: runImport,
	}
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	inputPath := args[0]

	data, err := os.ReadFile(inputPath) //nolint:gosec // User-supplied backup path
	if err != nil {
		return fmt.Errorf("failed to read backup file: %w", err)
	}

	var backup service.Backup
	if err := json.Unmarshal(data, &backup); err != nil {
		return common.NewUserError("backup file is not a valid kestrel export", err)
	}

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer closeStorage(store)

	if err := store.ImportAll(ctx, &backup); err != nil {
		return fmt.Errorf("failed to import backup: %w", err)
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Imported %d patterns, %d transactions, %d pairs, %d uploads from %s",
		len(backup.Patterns), len(backup.TransactionRecords),
		len(backup.DissimilarPairs), len(backup.Uploads), inputPath))) //nolint:forbidigo // User-facing output

	return nil
}
