package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kestrelfin/kestrel/internal/cli"
	"github.com/kestrelfin/kestrel/internal/learn"
)

func suggestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "suggest <description>",
		Short: "Suggest a category for a transaction description",
		Long: `Ask the categorizer for its best guess. Learned patterns are consulted
first; the static keyword rules are the fallback. Prints "no match" when
neither source produces a category.`,
		Args: cobra.ExactArgs(1),
		RunE: runSuggest,
	}
}

func runSuggest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	description := args[0]

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer closeStorage(store)

	engine := learn.NewEngineWithThreshold(store, suggestThreshold())
	suggestion, err := engine.SuggestCategory(ctx, description)
	if err != nil {
		return fmt.Errorf("failed to suggest category: %w", err)
	}
	if suggestion == nil {
		suggestion = learn.SuggestKeyword(description)
	}

	if suggestion == nil {
		fmt.Println(cli.FormatWarning("no match")) //nolint:forbidigo // User-facing output
		return nil
	}

	fmt.Println(cli.FormatSuccess(suggestion.Category))                                          //nolint:forbidigo // User-facing output
	fmt.Println(cli.StyleSubtle(fmt.Sprintf("  source: %s", suggestion.Source)))                 //nolint:forbidigo // User-facing output
	fmt.Println(cli.StyleSubtle(fmt.Sprintf("  confidence: %.0f%%", suggestion.Confidence*100))) //nolint:forbidigo // User-facing output
	if suggestion.MerchantName != "" {
		fmt.Println(cli.StyleSubtle(fmt.Sprintf("  merchant: %s", suggestion.MerchantName))) //nolint:forbidigo // User-facing output
	}
	if suggestion.ExampleCount > 0 {
		fmt.Println(cli.StyleSubtle(fmt.Sprintf("  trained on %d example(s)", suggestion.ExampleCount))) //nolint:forbidigo // User-facing output
	}

	return nil
}
