package cmd

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/accelbench/specbench/cmd/cli/format"
	"github.com/accelbench/specbench/internal/etl"
)

var etlsCmd = &cobra.Command{
	Use:   "etls",
	Short: "List the registered loaders",
	Long: `List the loaders accepted by "specbench load --etl" together with the
inputs each one picks up from the data directory.`,
	Args: cobra.NoArgs,
	RunE: runETLs,
}

func init() {
	RootCmd.AddCommand(etlsCmd)
}

type etlInfo struct {
	Name        string `json:"name"`
	Pattern     string `json:"pattern"`
	AcceptsDirs bool   `json:"accepts_dirs"`
}

func runETLs(cmd *cobra.Command, _ []string) error {
	entries := etl.DefaultRegistry().Entries()
	infos := make([]etlInfo, len(entries))
	rows := make([][]string, len(entries))
	for i, e := range entries {
		infos[i] = etlInfo{Name: e.Name, Pattern: e.Pattern, AcceptsDirs: e.AcceptsDirs}
		rows[i] = []string{e.Name, e.Pattern, strconv.FormatBool(e.AcceptsDirs)}
	}

	out := cmd.OutOrStdout()
	switch getFormat() {
	case format.FormatJSON:
		return format.JSONTo(out, infos)
	case format.FormatCSV:
		return format.CSV(out, []string{"name", "pattern", "accepts_dirs"}, rows)
	default:
		format.TableTo(out, []string{"Name", "Pattern", "Dirs"}, rows)
		return nil
	}
}
