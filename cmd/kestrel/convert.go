package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kestrelfin/kestrel/internal/cli"
	"github.com/kestrelfin/kestrel/internal/common"
	"github.com/kestrelfin/kestrel/internal/convert"
)

func convertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert <file.pdf>",
		Short: "Convert a PDF statement to CSV via the conversion API",
		Long: `Upload a PDF bank statement to the configured conversion endpoint and
write the returned CSV next to the input file.

The endpoint comes from the convert.url config key or the
KESTREL_CONVERT_URL environment variable. The converted file can then
be processed with 'kestrel ingest'.`,
		Args: cobra.ExactArgs(1),
		RunE: runConvert,
	}

	cmd.Flags().String("output", "", "Output CSV path (default: input path with .csv extension)")
	cmd.Flags().Duration("timeout", convert.DefaultTimeout, "Wall-clock limit for the conversion call")

	return cmd
}

func runConvert(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	inputPath := args[0]
	outputPath, _ := cmd.Flags().GetString("output")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	if !cmd.Flags().Changed("timeout") {
		if configured := viper.GetDuration("convert.timeout"); configured > 0 {
			timeout = configured
		}
	}

	endpoint := viper.GetString("convert.url")
	if endpoint == "" {
		return common.NewUserError(
			"conversion endpoint is not configured; set convert.url in the config file or KESTREL_CONVERT_URL",
			common.ErrMissingConfig)
	}

	pdf, err := os.ReadFile(inputPath) //nolint:gosec // User-supplied statement path
	if err != nil {
		return fmt.Errorf("failed to read input file: %w", err)
	}

	if outputPath == "" {
		outputPath = strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) + ".csv"
	}

	fmt.Println(cli.FormatInfo("Converting " + filepath.Base(inputPath) + "...")) //nolint:forbidigo // User-facing output

	started := time.Now()
	client := convert.NewClient(endpoint, timeout)
	csvData, err := client.ConvertPDF(ctx, filepath.Base(inputPath), pdf)
	if err != nil {
		return fmt.Errorf("conversion failed: %w", err)
	}

	if err := os.WriteFile(outputPath, csvData, 0o600); err != nil {
		return fmt.Errorf("failed to write converted file: %w", err)
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Wrote %s (%d bytes in %s)",
		outputPath, len(csvData), time.Since(started).Round(time.Millisecond)))) //nolint:forbidigo // User-facing output
	fmt.Println(cli.FormatInfo("Run 'kestrel ingest " + outputPath + "' to categorize it.")) //nolint:forbidigo // User-facing output

	return nil
}
