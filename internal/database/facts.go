package database

import (
	"context"
	"fmt"
)

// InsertAccuracy appends an accuracy row.
func (s *Store) InsertAccuracy(ctx context.Context, f AccuracyFact) error {
	err := s.exec(ctx,
		`INSERT INTO accuracy (model_id, quantization_id, gsm8k_score, date)
		 VALUES (?, ?, ?, ?)`,
		f.ModelID, f.QuantizationID, f.GSM8KScore, f.Date,
	)
	if err != nil {
		return fmt.Errorf("insert accuracy: %w", err)
	}
	return nil
}

// InsertLoadTest appends an ld_performances row.
func (s *Store) InsertLoadTest(ctx context.Context, f LoadTestFact) error {
	err := s.exec(ctx,
		`INSERT INTO ld_performances (sd_setup_id, rps, end_to_end_latency, num_spec_tokens, date)
		 VALUES (?, ?, ?, ?, ?)`,
		f.SetupID, f.RPS, f.EndToEndLatency, f.NumSpecTokens, f.Date,
	)
	if err != nil {
		return fmt.Errorf("insert load test performance: %w", err)
	}
	return nil
}

// InsertSDPerformance appends an sd_performances row with the acceptance
// rates spread over rate_at_1..rate_at_5.
func (s *Store) InsertSDPerformance(ctx context.Context, f SDPerformanceFact) error {
	r := f.AcceptanceRates
	err := s.exec(ctx,
		`INSERT INTO sd_performances
		    (sd_setup_id, date, mean_acceptance_length, time_taken,
		     rate_at_1, rate_at_2, rate_at_3, rate_at_4, rate_at_5)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.SetupID, f.Date, f.MeanAcceptanceLength, f.TimeTaken,
		r[0], r[1], r[2], r[3], r[4],
	)
	if err != nil {
		return fmt.Errorf("insert sd performance: %w", err)
	}
	return nil
}
