package etl

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/accelbench/specbench/internal/database"
	"github.com/accelbench/specbench/internal/naming"
)

const (
	accuracyTask   = "gsm8k"
	accuracyMetric = "exact_match,flexible-extract"

	// AccuracyDateLayout is the UTC layout accuracy dates are stored in.
	AccuracyDateLayout = "2006-01-02 15:04:05"
)

// AccuracyRecord is one accuracy measurement ready to load.
type AccuracyRecord struct {
	ModelName        string
	QuantizationType string
	Score            float64
	Date             string
}

// evaluation results file; only the fields used are declared.
type accuracyReport struct {
	Results map[string]map[string]json.RawMessage `json:"results"`
	Configs map[string]struct {
		Metadata struct {
			Pretrained string `json:"pretrained"`
		} `json:"metadata"`
	} `json:"configs"`
	Date float64 `json:"date"`
}

// Accuracy loads evaluation results files.
type Accuracy struct {
	repo database.Repo
	log  logrus.FieldLogger
}

// NewAccuracy creates an Accuracy loader.
func NewAccuracy(d Deps) *Accuracy {
	return &Accuracy{repo: d.Repo, log: d.logger().WithField("etl", NameAccuracy)}
}

// Run loads one results file.
func (a *Accuracy) Run(ctx context.Context, source string) error {
	return Run[[]byte, AccuracyRecord](ctx, a, source)
}

// Extract reads the results file.
func (a *Accuracy) Extract(_ context.Context, source string) ([]byte, error) {
	data, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("read results: %w", err)
	}
	return data, nil
}

// Transform picks the flexible-extract score and splits the pretrained model
// path into model name and quantization.
func (a *Accuracy) Transform(raw []byte) (AccuracyRecord, error) {
	if err := validate(accuracySchema, "accuracy results", raw); err != nil {
		return AccuracyRecord{}, err
	}
	var rep accuracyReport
	if err := json.Unmarshal(raw, &rep); err != nil {
		return AccuracyRecord{}, fmt.Errorf("%w: decode accuracy results: %v", ErrInvalidInput, err)
	}

	var score float64
	if err := json.Unmarshal(rep.Results[accuracyTask][accuracyMetric], &score); err != nil {
		return AccuracyRecord{}, fmt.Errorf("%w: %s score: %v", ErrInvalidInput, accuracyTask, err)
	}

	model, quant := naming.ParseModelName(rep.Configs[accuracyTask].Metadata.Pretrained)
	return AccuracyRecord{
		ModelName:        model,
		QuantizationType: quant,
		Score:            score,
		Date:             FormatUnixDate(rep.Date),
	}, nil
}

// Load resolves the model and quantization and inserts the accuracy row.
func (a *Accuracy) Load(ctx context.Context, rec AccuracyRecord) error {
	modelID, err := resolveModel(ctx, a.repo, rec.ModelName)
	if err != nil {
		return err
	}
	quantID, err := resolveQuantization(ctx, a.repo, rec.QuantizationType)
	if err != nil {
		return err
	}
	err = a.repo.InsertAccuracy(ctx, database.AccuracyFact{
		ModelID:        modelID,
		QuantizationID: quantID,
		GSM8KScore:     rec.Score,
		Date:           rec.Date,
	})
	if err != nil {
		return err
	}
	a.log.WithFields(logrus.Fields{"model_id": modelID, "quantization_id": quantID}).Debug("accuracy row inserted")
	return nil
}

// FormatUnixDate renders Unix seconds, fractional or not, in
// AccuracyDateLayout. Fractions of a second are dropped.
func FormatUnixDate(sec float64) string {
	return time.Unix(int64(math.Floor(sec)), 0).UTC().Format(AccuracyDateLayout)
}
