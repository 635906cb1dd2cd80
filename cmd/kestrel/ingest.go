package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/kestrelfin/kestrel/internal/cli"
	"github.com/kestrelfin/kestrel/internal/common"
	"github.com/kestrelfin/kestrel/internal/ingest"
	"github.com/kestrelfin/kestrel/internal/learn"
	"github.com/kestrelfin/kestrel/internal/model"
)

func ingestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest <file.csv>",
		Short: "Parse a statement CSV and categorize its transactions",
		Long: `Parse a bank statement CSV, suggest a category for every transaction,
and record the file in the upload history.

Learned patterns are consulted first; when none scores high enough the
static keyword rules are tried as a fallback. Rows neither source can
label are stored uncategorized.`,
		Args: cobra.ExactArgs(1),
		RunE: runIngest,
	}

	cmd.Flags().Int("year", 0, "Year to assume for dates written without one (e.g. 04/21)")

	return cmd
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	filePath := args[0]
	year, _ := cmd.Flags().GetInt("year")

	fileData, err := os.ReadFile(filePath) //nolint:gosec // User-supplied statement path
	if err != nil {
		return fmt.Errorf("failed to read statement file: %w", err)
	}

	statement, err := ingest.ParseCSV(bytes.NewReader(fileData), year)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", filepath.Base(filePath), err)
	}
	if len(statement.Rows) == 0 {
		fmt.Println(cli.FormatWarning("No transactions found in " + filepath.Base(filePath))) //nolint:forbidigo // User-facing output
		return nil
	}

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer closeStorage(store)

	engine := learn.NewEngineWithThreshold(store, suggestThreshold())

	bar := progressbar.NewOptions(len(statement.Rows),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Categorizing transactions...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(os.Stderr)
		}),
	)

	var learned, keyword int
	for i := range statement.Rows {
		row := &statement.Rows[i]

		suggestion, suggestErr := engine.SuggestCategory(ctx, row.Description)
		if suggestErr != nil {
			return fmt.Errorf("failed to categorize %q: %w", row.Description, suggestErr)
		}
		if suggestion == nil {
			suggestion = learn.SuggestKeyword(row.Description)
		}

		if suggestion != nil {
			row.Category = suggestion.Category
			row.CategorySource = suggestion.Source
			switch suggestion.Source {
			case model.SourceLearned:
				learned++
			case model.SourceKeyword:
				keyword++
			}
		} else {
			row.CategorySource = model.SourceNone
		}

		if barErr := bar.Add(1); barErr != nil {
			common.LogWarn("Failed to update progress bar", common.Fields{"error": barErr})
		}
	}

	record := &model.UploadRecord{
		FileName:         filepath.Base(filePath),
		FileData:         fileData,
		FileSize:         int64(len(fileData)),
		TransactionCount: len(statement.Rows),
		Year:             year,
		Summary:          statement.Summary,
	}
	uploadID, err := store.RecordUpload(ctx, record)
	if err != nil {
		return fmt.Errorf("failed to record upload: %w", err)
	}

	for i := range statement.Rows {
		statement.Rows[i].UploadID = uploadID
	}
	if err := store.SaveTransactionRecords(ctx, statement.Rows); err != nil {
		return fmt.Errorf("failed to save transactions: %w", err)
	}

	uncategorized := len(statement.Rows) - learned - keyword
	content := fmt.Sprintf(
		"Transactions:  %d\nIncome:        %s\nExpenses:      %s\nNet:           %s\n\nLearned:       %d\nKeyword:       %d\nUncategorized: %d",
		len(statement.Rows),
		formatAmount(statement.Summary.TotalIncome),
		formatAmount(statement.Summary.TotalExpenses),
		formatAmount(statement.Summary.NetBalance),
		learned, keyword, uncategorized)

	fmt.Println(cli.RenderBox(cli.BirdIcon+" "+filepath.Base(filePath), content)) //nolint:forbidigo // User-facing output
	fmt.Println(cli.FormatSuccess("Recorded upload " + uploadID))                 //nolint:forbidigo // User-facing output

	if uncategorized > 0 {
		fmt.Println(cli.FormatInfo(fmt.Sprintf("Teach kestrel with 'kestrel learn <description> <category>' to cover the remaining %d.", uncategorized))) //nolint:forbidigo // User-facing output
	}

	return nil
}

func formatAmount(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}
