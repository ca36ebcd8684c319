package etl

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/accelbench/specbench/internal/database"
	"github.com/accelbench/specbench/internal/naming"
)

// SDRecord is one speculative-decoding run ready to load.
type SDRecord struct {
	Setup                database.SetupNames
	TimeTaken            float64
	Date                 string
	MeanAcceptanceLength float64
	AcceptanceRates      [database.AcceptanceRateCount]float64
}

type sdReport struct {
	MainModel            string    `json:"main_model"`
	SpeculativeModel     *string   `json:"speculative_model"`
	DatasetType          string    `json:"dataset_type"`
	TimeTaken            float64   `json:"time_taken"`
	Timestamp            string    `json:"timestamp"`
	MeanAcceptanceLength *float64  `json:"mean_acceptance_length"`
	AcceptanceRates      []float64 `json:"acceptance_rates"`
}

// SDMetrics loads offline speculative-decoding result files.
type SDMetrics struct {
	repo database.Repo
	log  logrus.FieldLogger
}

// NewSDMetrics creates an SDMetrics loader.
func NewSDMetrics(d Deps) *SDMetrics {
	return &SDMetrics{repo: d.Repo, log: d.logger().WithField("etl", NameSDMetrics)}
}

// Run loads one result file.
func (s *SDMetrics) Run(ctx context.Context, source string) error {
	return Run[[]byte, SDRecord](ctx, s, source)
}

// Extract reads the result file.
func (s *SDMetrics) Extract(_ context.Context, source string) ([]byte, error) {
	data, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("read sd results: %w", err)
	}
	return data, nil
}

// Transform parses both model identifiers and normalizes the acceptance
// statistics. A run without a draft model gets "" for the draft model and
// quantization. A missing or empty rate list becomes five zeros; any other
// length than five fails with ErrAcceptanceRates.
func (s *SDMetrics) Transform(raw []byte) (SDRecord, error) {
	if err := validate(sdMetricsSchema, "sd results", raw); err != nil {
		return SDRecord{}, err
	}
	var rep sdReport
	if err := json.Unmarshal(raw, &rep); err != nil {
		return SDRecord{}, fmt.Errorf("%w: decode sd results: %v", ErrInvalidInput, err)
	}

	rec := SDRecord{
		TimeTaken: rep.TimeTaken,
		Date:      rep.Timestamp,
	}
	rec.Setup.TargetModel, rec.Setup.TargetQuantization = naming.ParseModelName(rep.MainModel)
	if rep.SpeculativeModel != nil && *rep.SpeculativeModel != "" {
		rec.Setup.DraftModel, rec.Setup.DraftQuantization = naming.ParseModelName(*rep.SpeculativeModel)
	}
	rec.Setup.DatasetType = rep.DatasetType

	if rep.MeanAcceptanceLength != nil {
		rec.MeanAcceptanceLength = *rep.MeanAcceptanceLength
	}

	switch n := len(rep.AcceptanceRates); n {
	case 0:
	case database.AcceptanceRateCount:
		copy(rec.AcceptanceRates[:], rep.AcceptanceRates)
	default:
		return SDRecord{}, fmt.Errorf("%w: got %d", ErrAcceptanceRates, n)
	}
	return rec, nil
}

// Load resolves the setup and inserts the performance row.
func (s *SDMetrics) Load(ctx context.Context, rec SDRecord) error {
	setupID, err := resolveSetup(ctx, s.repo, rec.Setup)
	if err != nil {
		return err
	}
	err = s.repo.InsertSDPerformance(ctx, database.SDPerformanceFact{
		SetupID:              setupID,
		Date:                 rec.Date,
		MeanAcceptanceLength: rec.MeanAcceptanceLength,
		TimeTaken:            rec.TimeTaken,
		AcceptanceRates:      rec.AcceptanceRates,
	})
	if err != nil {
		return err
	}
	s.log.WithField("sd_setup_id", setupID).Debug("sd performance row inserted")
	return nil
}
