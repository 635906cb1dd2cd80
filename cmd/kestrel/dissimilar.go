package main

import (
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kestrelfin/kestrel/internal/cli"
)

func dissimilarCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dissimilar",
		Short: "Manage description pairs marked as unrelated",
		Long: `Record and query pairs of transaction descriptions the user has declared
unrelated. The registry is consulted by review surfaces; it never changes
how suggestions are scored.`,
	}

	cmd.AddCommand(dissimilarMarkCmd())
	cmd.AddCommand(dissimilarCheckCmd())
	cmd.AddCommand(dissimilarListCmd())

	return cmd
}

func dissimilarMarkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mark <description-a> <description-b>",
		Short: "Mark two descriptions as unrelated",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer closeStorage(store)

			if err := store.MarkDissimilar(ctx, args[0], args[1]); err != nil {
				return fmt.Errorf("failed to mark pair: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Marked %q and %q as unrelated", args[0], args[1]))) //nolint:forbidigo // User-facing output
			return nil
		},
	}
}

func dissimilarCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <description-a> <description-b>",
		Short: "Check whether two descriptions are marked unrelated",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer closeStorage(store)

			dissimilar, err := store.AreDissimilar(ctx, args[0], args[1])
			if err != nil {
				return fmt.Errorf("failed to check pair: %w", err)
			}

			if dissimilar {
				fmt.Println(cli.FormatInfo("These descriptions are marked as unrelated.")) //nolint:forbidigo // User-facing output
			} else {
				fmt.Println(cli.StyleSubtle("No dissimilarity recorded for this pair.")) //nolint:forbidigo // User-facing output
			}
			return nil
		},
	}
}

func dissimilarListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all recorded dissimilar pairs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer closeStorage(store)

			pairs, err := store.ListDissimilarPairs(ctx)
			if err != nil {
				return fmt.Errorf("failed to list pairs: %w", err)
			}

			if len(pairs) == 0 {
				fmt.Println(cli.InfoStyle.Render("No dissimilar pairs recorded.")) //nolint:forbidigo // User-facing output
				return nil
			}

			fmt.Println(cli.FormatTitle("Dissimilar Pairs")) //nolint:forbidigo // User-facing output
			fmt.Println()                                    //nolint:forbidigo // User-facing output

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() {
				if flushErr := w.Flush(); flushErr != nil {
					slog.Error("failed to flush table writer", "error", flushErr)
				}
			}()

			fmt.Fprintf(w, "%s\t%s\t%s\n",
				cli.TableHeaderStyle.Render("Description A"),
				cli.TableHeaderStyle.Render("Description B"),
				cli.TableHeaderStyle.Render("Marked"))
			for _, pair := range pairs {
				fmt.Fprintf(w, "%s\t%s\t%s\n",
					pair.Description1, pair.Description2,
					pair.Timestamp.Format("2006-01-02 15:04"))
			}

			return nil
		},
	}
}
