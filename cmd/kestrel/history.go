package main

import (
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kestrelfin/kestrel/internal/cli"
	"github.com/kestrelfin/kestrel/internal/model"
	"github.com/kestrelfin/kestrel/internal/service"
)

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect the upload history",
		Long: `Every ingested statement leaves a history entry with its file name,
size, transaction count and an income/expense summary. These commands
list, inspect and prune that log.`,
	}

	cmd.AddCommand(historyListCmd())
	cmd.AddCommand(historyShowCmd())
	cmd.AddCommand(historyDeleteCmd())
	cmd.AddCommand(historyClearCmd())
	cmd.AddCommand(historyStatsCmd())

	return cmd
}

func historyListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List processed statement files, newest first",
		Args:  cobra.NoArgs,
		RunE:  runHistoryList,
	}

	cmd.Flags().Int("limit", 0, "Maximum entries to show (default 50)")

	return cmd
}

func runHistoryList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	limit, _ := cmd.Flags().GetInt("limit")

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer closeStorage(store)

	uploads, err := store.ListUploads(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to list uploads: %w", err)
	}

	if len(uploads) == 0 {
		fmt.Println(cli.InfoStyle.Render("No uploads yet. Use 'kestrel ingest' to process a statement.")) //nolint:forbidigo // User-facing output
		return nil
	}

	fmt.Println(cli.FormatTitle("Upload History")) //nolint:forbidigo // User-facing output
	fmt.Println()                                  //nolint:forbidigo // User-facing output

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer func() {
		if flushErr := w.Flush(); flushErr != nil {
			slog.Error("failed to flush table writer", "error", flushErr)
		}
	}()

	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
		cli.TableHeaderStyle.Render("ID"),
		cli.TableHeaderStyle.Render("File"),
		cli.TableHeaderStyle.Render("Date"),
		cli.TableHeaderStyle.Render("Rows"),
		cli.TableHeaderStyle.Render("Income"),
		cli.TableHeaderStyle.Render("Expenses"))

	for _, upload := range uploads {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
			upload.ID,
			upload.FileName,
			upload.UploadDate.Format("2006-01-02 15:04"),
			upload.TransactionCount,
			formatAmount(upload.Summary.TotalIncome),
			formatAmount(upload.Summary.TotalExpenses))
	}

	return nil
}

func historyShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <upload-id>",
		Short: "Show one upload with its transactions",
		Args:  cobra.ExactArgs(1),
		RunE:  runHistoryShow,
	}

	cmd.Flags().Int("limit", 0, "Maximum transactions to show (0 shows all)")

	return cmd
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	limit, _ := cmd.Flags().GetInt("limit")

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer closeStorage(store)

	upload, err := store.GetUpload(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to get upload: %w", err)
	}

	content := fmt.Sprintf(
		"Uploaded:     %s\nSize:         %d bytes\nTransactions: %d\nIncome:       %s (%d)\nExpenses:     %s (%d)\nNet:          %s",
		upload.UploadDate.Format("2006-01-02 15:04:05"),
		upload.FileSize,
		upload.TransactionCount,
		formatAmount(upload.Summary.TotalIncome), upload.Summary.IncomeCount,
		formatAmount(upload.Summary.TotalExpenses), upload.Summary.ExpenseCount,
		formatAmount(upload.Summary.NetBalance))
	fmt.Println(cli.RenderBox(upload.FileName, content)) //nolint:forbidigo // User-facing output

	records, err := store.ListTransactionRecords(ctx, service.TransactionFilter{
		UploadID: upload.ID,
		Limit:    limit,
	})
	if err != nil {
		return fmt.Errorf("failed to list transactions: %w", err)
	}
	if len(records) == 0 {
		return nil
	}

	fmt.Println() //nolint:forbidigo // User-facing output

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer func() {
		if flushErr := w.Flush(); flushErr != nil {
			slog.Error("failed to flush table writer", "error", flushErr)
		}
	}()

	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
		cli.TableHeaderStyle.Render("Date"),
		cli.TableHeaderStyle.Render("Description"),
		cli.TableHeaderStyle.Render("Amount"),
		cli.TableHeaderStyle.Render("Category"),
		cli.TableHeaderStyle.Render("Source"))

	for _, record := range records {
		amount := formatAmount(record.Amount)
		if record.Direction == model.DirectionExpense {
			amount = "-" + amount
		}
		category := record.Category
		if category == "" {
			category = cli.StyleSubtle("(uncategorized)")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			record.Date.Format("2006-01-02"),
			record.Description,
			amount,
			category,
			record.CategorySource)
	}

	return nil
}

func historyDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <upload-id>",
		Short: "Delete one upload history entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer closeStorage(store)

			if err := store.DeleteUpload(ctx, args[0]); err != nil {
				return fmt.Errorf("failed to delete upload: %w", err)
			}

			fmt.Println(cli.FormatSuccess("Deleted upload " + args[0])) //nolint:forbidigo // User-facing output
			return nil
		},
	}
}

func historyClearCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete the entire upload history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			force, _ := cmd.Flags().GetBool("force")
			if !force {
				return fmt.Errorf("refusing to clear history without --force")
			}

			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer closeStorage(store)

			if err := store.ClearUploads(ctx); err != nil {
				return fmt.Errorf("failed to clear history: %w", err)
			}

			fmt.Println(cli.FormatSuccess("Upload history cleared")) //nolint:forbidigo // User-facing output
			return nil
		},
	}

	cmd.Flags().Bool("force", false, "Actually clear the history")

	return cmd
}

func historyStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show aggregate statistics over all uploads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer closeStorage(store)

			stats, err := store.ComputeUploadStats(ctx)
			if err != nil {
				return fmt.Errorf("failed to compute stats: %w", err)
			}

			if stats.TotalFiles == 0 {
				fmt.Println(cli.InfoStyle.Render("No uploads yet.")) //nolint:forbidigo // User-facing output
				return nil
			}

			content := fmt.Sprintf(
				"Files:             %d\nTransactions:      %d\nTotal size:        %d bytes\nAvg rows per file: %d\nOldest upload:     %s\nNewest upload:     %s",
				stats.TotalFiles,
				stats.TotalTransactions,
				stats.TotalSize,
				stats.AverageTransactionsPerFile,
				stats.OldestUpload.Format("2006-01-02"),
				stats.NewestUpload.Format("2006-01-02"))
			fmt.Println(cli.RenderBox(cli.ChartIcon+" Upload Stats", content)) //nolint:forbidigo // User-facing output

			return nil
		},
	}
}
