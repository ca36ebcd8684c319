package etl

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/accelbench/specbench/internal/config"
	"github.com/accelbench/specbench/internal/database"
	"github.com/accelbench/specbench/internal/naming"
)

const (
	inputParamsFile = "input_params.json"
	metricsFile     = "metrics.json"
)

// LoadTestRaw is the content of one load-test results folder.
type LoadTestRaw struct {
	Folder      string
	InputParams []byte
	Metrics     []byte
}

// LoadTestRecord is one load-test data point ready to load.
type LoadTestRecord struct {
	Setup           database.SetupNames
	RPS             int
	EndToEndLatency float64
	NumSpecTokens   int
	Date            string
}

type loadTestParams struct {
	RPS              json.RawMessage `json:"rps"`
	RunID            string          `json:"run_id"`
	Model            string          `json:"model"`
	SpeculativeModel *string         `json:"speculative_model"`
	DatasetType      string          `json:"dataset_type"`
}

type loadTestMetrics struct {
	Metrics struct {
		EndToEndLatency struct {
			Med float64 `json:"med"`
		} `json:"end_to_end_latency"`
	} `json:"metrics"`
}

// LoadTest loads load-generator result folders.
type LoadTest struct {
	repo     database.Repo
	defaults config.LoadTestDefaults
	log      logrus.FieldLogger
}

// NewLoadTest creates a LoadTest loader. Setups that the input parameters do
// not describe are taken from d.LoadTest.
func NewLoadTest(d Deps) *LoadTest {
	return &LoadTest{
		repo:     d.Repo,
		defaults: d.LoadTest,
		log:      d.logger().WithField("etl", NameLoadTest),
	}
}

// Run loads one results folder.
func (l *LoadTest) Run(ctx context.Context, source string) error {
	return Run[LoadTestRaw, LoadTestRecord](ctx, l, source)
}

// Extract reads input_params.json and metrics.json from the folder.
func (l *LoadTest) Extract(_ context.Context, source string) (LoadTestRaw, error) {
	info, err := os.Stat(source)
	if err != nil {
		return LoadTestRaw{}, fmt.Errorf("stat results folder: %w", err)
	}
	if !info.IsDir() {
		return LoadTestRaw{}, fmt.Errorf("%s is not a directory", source)
	}

	params, err := os.ReadFile(filepath.Join(source, inputParamsFile))
	if err != nil {
		return LoadTestRaw{}, fmt.Errorf("read %s: %w", inputParamsFile, err)
	}
	metrics, err := os.ReadFile(filepath.Join(source, metricsFile))
	if err != nil {
		return LoadTestRaw{}, fmt.Errorf("read %s: %w", metricsFile, err)
	}
	return LoadTestRaw{
		Folder:      filepath.Base(source),
		InputParams: params,
		Metrics:     metrics,
	}, nil
}

// Transform derives the data point and its setup. The spec-token count and
// date come from the run id and folder name conventions; the draft model is
// dropped for single-model runs.
func (l *LoadTest) Transform(raw LoadTestRaw) (LoadTestRecord, error) {
	if err := validate(loadTestParamsSchema, inputParamsFile, raw.InputParams); err != nil {
		return LoadTestRecord{}, err
	}
	if err := validate(loadTestMetricsSchema, metricsFile, raw.Metrics); err != nil {
		return LoadTestRecord{}, err
	}

	var params loadTestParams
	if err := json.Unmarshal(raw.InputParams, &params); err != nil {
		return LoadTestRecord{}, fmt.Errorf("%w: decode %s: %v", ErrInvalidInput, inputParamsFile, err)
	}
	var metrics loadTestMetrics
	if err := json.Unmarshal(raw.Metrics, &metrics); err != nil {
		return LoadTestRecord{}, fmt.Errorf("%w: decode %s: %v", ErrInvalidInput, metricsFile, err)
	}

	rps, err := parseRPS(params.RPS)
	if err != nil {
		return LoadTestRecord{}, err
	}

	return LoadTestRecord{
		Setup:           l.setup(params),
		RPS:             rps,
		EndToEndLatency: metrics.Metrics.EndToEndLatency.Med,
		NumSpecTokens:   SpecTokens(params.RunID),
		Date:            RunDate(raw.Folder),
	}, nil
}

func (l *LoadTest) setup(p loadTestParams) database.SetupNames {
	n := database.SetupNames{
		TargetModel:        l.defaults.TargetModel,
		TargetQuantization: l.defaults.TargetQuantization,
		DraftModel:         l.defaults.DraftModel,
		DraftQuantization:  l.defaults.DraftQuantization,
		DatasetType:        l.defaults.DatasetType,
	}
	if p.Model != "" {
		n.TargetModel, n.TargetQuantization = naming.ParseModelName(p.Model)
	}
	if p.SpeculativeModel != nil && *p.SpeculativeModel != "" {
		n.DraftModel, n.DraftQuantization = naming.ParseModelName(*p.SpeculativeModel)
	}
	if p.DatasetType != "" {
		n.DatasetType = p.DatasetType
	}
	if IsSingleModel(p.RunID) {
		n.DraftModel, n.DraftQuantization = "", ""
	}
	return n
}

// Load resolves the setup and inserts the load-test row.
func (l *LoadTest) Load(ctx context.Context, rec LoadTestRecord) error {
	setupID, err := resolveSetup(ctx, l.repo, rec.Setup)
	if err != nil {
		return err
	}
	err = l.repo.InsertLoadTest(ctx, database.LoadTestFact{
		SetupID:         setupID,
		RPS:             rec.RPS,
		EndToEndLatency: rec.EndToEndLatency,
		NumSpecTokens:   rec.NumSpecTokens,
		Date:            rec.Date,
	})
	if err != nil {
		return err
	}
	l.log.WithFields(logrus.Fields{"sd_setup_id": setupID, "rps": rec.RPS}).Debug("load test row inserted")
	return nil
}
