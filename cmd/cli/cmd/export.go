package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/accelbench/specbench/cmd/cli/format"
	"github.com/accelbench/specbench/internal/database"
)

var exportCmd = &cobra.Command{
	Use:       "export {accuracy|sd|loadtest}",
	Short:     "Export loaded results to JSON or CSV",
	ValidArgs: reportKinds,
	Long: `Export loaded results in JSON or CSV format.

By default exports JSON to stdout. Use --file to write to a file.

Examples:
  specbench export sd > sd.json
  specbench export loadtest -o csv --file load_tests.csv
  specbench export accuracy --model llama -o csv`,
	Args: cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: runExport,
}

var (
	exportModel string
	exportFile  string
)

const exportLimit = 1000

func init() {
	exportCmd.Flags().StringVar(&exportModel, "model", "", "Filter by (target) model name substring")
	exportCmd.Flags().StringVar(&exportFile, "file", "", "Output file path (default: stdout)")
	RootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	rep, err := fetchReport(ctx, store, args[0], database.ReportFilter{Model: exportModel, Limit: exportLimit})
	if err != nil {
		return err
	}

	if rep.len == 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), "No results to export.")
		return nil
	}

	var out io.Writer = cmd.OutOrStdout()
	if exportFile != "" {
		f, err := os.Create(exportFile)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	switch getFormat() {
	case format.FormatCSV:
		return format.CSV(out, rep.headers, rep.rows)
	default:
		// Default to JSON for export.
		return format.JSONTo(out, rep.data)
	}
}
