package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kestrelfin/kestrel/internal/cli"
	"github.com/kestrelfin/kestrel/internal/learn"
	"github.com/kestrelfin/kestrel/internal/normalize"
)

func learnCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "learn <description> <category>",
		Short: "Teach kestrel that a description belongs to a category",
		Long: `Record one categorization. Repeating the same correction strengthens
the pattern: its usage count grows and its confidence climbs the step
table, so future suggestions for similar descriptions rank higher.`,
		Args: cobra.ExactArgs(2),
		RunE: runLearn,
	}

	cmd.Flags().Float64("amount", 0, "Transaction amount, kept with the pattern's examples")

	return cmd
}

func runLearn(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	description, category := args[0], args[1]
	amount, _ := cmd.Flags().GetFloat64("amount")

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer closeStorage(store)

	engine := learn.NewEngine(store)
	patternID, err := engine.RecordCategorization(ctx, description, category, amount)
	if err != nil {
		return fmt.Errorf("failed to record categorization: %w", err)
	}

	merchant := normalize.ExtractMerchant(description)
	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Learned %q → %s (merchant %q, pattern %s)",
		description, category, merchant, patternID))) //nolint:forbidigo // User-facing output

	return nil
}
