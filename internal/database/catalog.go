package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

const (
	defaultReportLimit = 100
	maxReportLimit     = 1000
)

// setupNameColumns and setupJoins denormalize sd_setups for reports; the
// fact table must be aliased f.
const setupNameColumns = `
	tm.model_name AS target_model, tq.quantization_type AS target_quantization,
	dm.model_name AS draft_model, dq.quantization_type AS draft_quantization,
	d.dataset_type AS dataset_type`

const setupJoins = `
	JOIN sd_setups s ON f.sd_setup_id = s.sd_setup_id
	JOIN models tm ON s.target_model_id = tm.model_id
	JOIN quantizations tq ON s.target_quantization_id = tq.quantization_id
	JOIN models dm ON s.draft_model_id = dm.model_id
	JOIN quantizations dq ON s.draft_quantization_id = dq.quantization_id
	JOIN datasets d ON s.dataset_id = d.dataset_id`

func (f ReportFilter) limit() int {
	if f.Limit > 0 && f.Limit <= maxReportLimit {
		return f.Limit
	}
	return defaultReportLimit
}

// likeEscaper makes LIKE metacharacters in a filter match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// where returns the filter clause on the given model-name column. The model
// filter is a plain substring, not a pattern.
func (f ReportFilter) where(column string) (string, []any) {
	if f.Model == "" {
		return "", nil
	}
	pattern := "%" + likeEscaper.Replace(f.Model) + "%"
	return fmt.Sprintf(`WHERE LOWER(%s) LIKE LOWER(?) ESCAPE '\'`, column), []any{pattern}
}

// ListAccuracy returns accuracy facts joined with model and quantization.
func (s *Store) ListAccuracy(ctx context.Context, f ReportFilter) ([]AccuracyRow, error) {
	where, args := f.where("m.model_name")
	query := fmt.Sprintf(`
		SELECT m.model_name, q.quantization_type, f.gsm8k_score, f.date
		FROM accuracy f
		JOIN models m ON f.model_id = m.model_id
		JOIN quantizations q ON f.quantization_id = q.quantization_id
		%s
		ORDER BY f.date, f.accuracy_id
		LIMIT ?`, where)
	args = append(args, f.limit())

	var rows []AccuracyRow
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		return tx.SelectContext(ctx, &rows, tx.Rebind(query), args...)
	})
	if err != nil {
		return nil, fmt.Errorf("query accuracy: %w", err)
	}
	return rows, nil
}

// ListLoadTests returns load-test facts joined with their setups.
func (s *Store) ListLoadTests(ctx context.Context, f ReportFilter) ([]LoadTestRow, error) {
	where, args := f.where("tm.model_name")
	query := fmt.Sprintf(`
		SELECT %s,
			f.sd_setup_id, f.rps, f.end_to_end_latency, f.num_spec_tokens, f.date
		FROM ld_performances f
		%s
		%s
		ORDER BY f.date, f.rps, f.ld_performance_id
		LIMIT ?`, setupNameColumns, setupJoins, where)
	args = append(args, f.limit())

	var rows []LoadTestRow
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		return tx.SelectContext(ctx, &rows, tx.Rebind(query), args...)
	})
	if err != nil {
		return nil, fmt.Errorf("query load tests: %w", err)
	}
	return rows, nil
}

// ListSDPerformances returns speculative-decoding facts joined with their setups.
func (s *Store) ListSDPerformances(ctx context.Context, f ReportFilter) ([]SDPerformanceRow, error) {
	where, args := f.where("tm.model_name")
	query := fmt.Sprintf(`
		SELECT %s,
			f.sd_setup_id, f.date, f.mean_acceptance_length, f.time_taken,
			f.rate_at_1, f.rate_at_2, f.rate_at_3, f.rate_at_4, f.rate_at_5
		FROM sd_performances f
		%s
		%s
		ORDER BY f.date, f.sd_performance_id
		LIMIT ?`, setupNameColumns, setupJoins, where)
	args = append(args, f.limit())

	var rows []SDPerformanceRow
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		return tx.SelectContext(ctx, &rows, tx.Rebind(query), args...)
	})
	if err != nil {
		return nil, fmt.Errorf("query sd performances: %w", err)
	}
	return rows, nil
}

// TableCount is the number of rows in one table.
type TableCount struct {
	Table string `json:"table"`
	Rows  int    `json:"rows"`
}

// CountRows returns the row count of each table in specs, in declaration
// order.
func (s *Store) CountRows(ctx context.Context, specs TableSpecs) ([]TableCount, error) {
	if err := specs.Validate(); err != nil {
		return nil, err
	}
	counts := make([]TableCount, 0, len(specs))
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		for _, ts := range specs {
			var n int
			// Table names are checked by Validate.
			if err := tx.GetContext(ctx, &n, "SELECT COUNT(*) FROM "+ts.Name); err != nil {
				return fmt.Errorf("count %s: %w", ts.Name, err)
			}
			counts = append(counts, TableCount{Table: ts.Name, Rows: n})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return counts, nil
}
