package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/accelbench/specbench/cmd/cli/format"
	"github.com/accelbench/specbench/internal/database"
)

var queryCmd = &cobra.Command{
	Use:       "query {accuracy|sd|loadtest}",
	Short:     "Query loaded benchmark results",
	ValidArgs: reportKinds,
	Long: `Query loaded results joined with their model, quantization and setup names.

Examples:
  specbench query accuracy --model llama
  specbench query sd --limit 20 -o json
  specbench query loadtest --model Llama-3.1-8B -o csv`,
	Args: cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: runQuery,
}

var (
	queryModel string
	queryLimit int
)

func init() {
	queryCmd.Flags().StringVar(&queryModel, "model", "", "Filter by (target) model name substring, case-insensitive")
	queryCmd.Flags().IntVar(&queryLimit, "limit", 0, "Max results to return (default 100)")
	RootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	rep, err := fetchReport(ctx, store, args[0], database.ReportFilter{Model: queryModel, Limit: queryLimit})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if rep.len == 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), "No results found.")
		return nil
	}

	switch getFormat() {
	case format.FormatJSON:
		return format.JSONTo(out, rep.data)
	case format.FormatCSV:
		return format.CSV(out, rep.headers, rep.rows)
	default:
		format.TableTo(out, rep.headers, rep.rows)
		fmt.Fprintf(cmd.ErrOrStderr(), "\n%d result(s)\n", rep.len)
		return nil
	}
}

const (
	reportAccuracy = "accuracy"
	reportSD       = "sd"
	reportLoadTest = "loadtest"
)

var reportKinds = []string{reportAccuracy, reportSD, reportLoadTest}

// report is one query result in both its typed and tabular forms.
type report struct {
	data    any
	len     int
	headers []string
	rows    [][]string
}

func fetchReport(ctx context.Context, store *database.Store, kind string, f database.ReportFilter) (report, error) {
	switch kind {
	case reportAccuracy:
		rows, err := store.ListAccuracy(ctx, f)
		if err != nil {
			return report{}, err
		}
		return report{data: rows, len: len(rows), headers: accuracyHeaders(), rows: accuracyRows(rows)}, nil
	case reportSD:
		rows, err := store.ListSDPerformances(ctx, f)
		if err != nil {
			return report{}, err
		}
		return report{data: rows, len: len(rows), headers: sdHeaders(), rows: sdRows(rows)}, nil
	case reportLoadTest:
		rows, err := store.ListLoadTests(ctx, f)
		if err != nil {
			return report{}, err
		}
		return report{data: rows, len: len(rows), headers: loadTestHeaders(), rows: loadTestRows(rows)}, nil
	default:
		return report{}, fmt.Errorf("unknown report %q (available: %v)", kind, reportKinds)
	}
}

func accuracyHeaders() []string {
	return []string{"model", "quantization", "gsm8k_score", "date"}
}

func accuracyRows(rows []database.AccuracyRow) [][]string {
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = []string{r.ModelName, r.QuantizationType, format.F64(r.GSM8KScore, 4), r.Date}
	}
	return out
}

func setupHeaders() []string {
	return []string{"target_model", "target_quant", "draft_model", "draft_quant", "dataset"}
}

func setupCells(s database.SetupNames) []string {
	return []string{s.TargetModel, s.TargetQuantization, s.DraftModel, s.DraftQuantization, s.DatasetType}
}

func sdHeaders() []string {
	return append(setupHeaders(), "date", "mean_accept_len", "time_taken",
		"rate@1", "rate@2", "rate@3", "rate@4", "rate@5")
}

func sdRows(rows []database.SDPerformanceRow) [][]string {
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = append(setupCells(r.SetupNames),
			r.Date,
			format.F64(r.MeanAcceptanceLength, 3),
			format.F64(r.TimeTaken, 2),
			format.F64(r.RateAt1, 3),
			format.F64(r.RateAt2, 3),
			format.F64(r.RateAt3, 3),
			format.F64(r.RateAt4, 3),
			format.F64(r.RateAt5, 3),
		)
	}
	return out
}

func loadTestHeaders() []string {
	return append(setupHeaders(), "date", "rps", "e2e_latency", "spec_tokens")
}

func loadTestRows(rows []database.LoadTestRow) [][]string {
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = append(setupCells(r.SetupNames),
			r.Date,
			strconv.Itoa(r.RPS),
			format.F64(r.EndToEndLatency, 3),
			strconv.Itoa(r.NumSpecTokens),
		)
	}
	return out
}
