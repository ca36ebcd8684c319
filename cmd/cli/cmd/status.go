package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/accelbench/specbench/cmd/cli/format"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show row counts of the benchmark tables",
	Long: `Show how many rows each table of the store holds.

Examples:
  specbench status --db results.db
  specbench status --db-secret bench/store -o json`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

var statusSchemaFile string

func init() {
	statusCmd.Flags().StringVar(&statusSchemaFile, "schema", "", "YAML table specification (default: built-in schema)")
	RootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	specs, err := loadSpecs(store.Dialect(), statusSchemaFile)
	if err != nil {
		return err
	}
	counts, err := store.CountRows(ctx, specs)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if getFormat() == format.FormatJSON {
		return format.JSONTo(out, map[string]any{
			"location": store.Location(),
			"tables":   counts,
		})
	}

	fmt.Fprintf(out, "Store:  %s\n\n", store.Location())
	rows := make([][]string, len(counts))
	for i, c := range counts {
		rows[i] = []string{c.Table, strconv.Itoa(c.Rows)}
	}
	format.TableTo(out, []string{"Table", "Rows"}, rows)
	return nil
}
