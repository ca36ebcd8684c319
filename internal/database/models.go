package database

// Model is a bare model identifier, e.g. "Llama-3.1-8B-Instruct".
type Model struct {
	ID   int64  `db:"model_id" json:"model_id"`
	Name string `db:"model_name" json:"model_name"`
}

// Quantization is a compression scheme label; "FP16" means unquantized and ""
// means "no draft model".
type Quantization struct {
	ID   int64  `db:"quantization_id" json:"quantization_id"`
	Type string `db:"quantization_type" json:"quantization_type"`
}

// Dataset is a short evaluation dataset label such as "code" or "chat".
type Dataset struct {
	ID   int64  `db:"dataset_id" json:"dataset_id"`
	Type string `db:"dataset_type" json:"dataset_type"`
}

// Setup is one serving configuration. Its natural key is the full tuple of
// foreign keys; a run without a draft model references the empty-string
// Model and Quantization rows rather than NULL.
type Setup struct {
	ID                   int64 `db:"sd_setup_id" json:"sd_setup_id"`
	TargetModelID        int64 `db:"target_model_id" json:"target_model_id"`
	TargetQuantizationID int64 `db:"target_quantization_id" json:"target_quantization_id"`
	DraftModelID         int64 `db:"draft_model_id" json:"draft_model_id"`
	DraftQuantizationID  int64 `db:"draft_quantization_id" json:"draft_quantization_id"`
	DatasetID            int64 `db:"dataset_id" json:"dataset_id"`
}

// SetupKey is the natural key of a Setup.
type SetupKey struct {
	TargetModelID        int64
	TargetQuantizationID int64
	DraftModelID         int64
	DraftQuantizationID  int64
	DatasetID            int64
}

// AcceptanceRateCount is the fixed number of acceptance-rate positions stored
// per speculative-decoding run.
const AcceptanceRateCount = 5

// AccuracyFact is one accuracy measurement.
type AccuracyFact struct {
	ModelID        int64   `db:"model_id"`
	QuantizationID int64   `db:"quantization_id"`
	GSM8KScore     float64 `db:"gsm8k_score"`
	Date           string  `db:"date"`
}

// LoadTestFact is one load-test data point, one per requests-per-second level.
type LoadTestFact struct {
	SetupID         int64   `db:"sd_setup_id"`
	RPS             int     `db:"rps"`
	EndToEndLatency float64 `db:"end_to_end_latency"`
	NumSpecTokens   int     `db:"num_spec_tokens"`
	Date            string  `db:"date"`
}

// SDPerformanceFact holds the acceptance statistics of one speculative
// decoding run. AcceptanceRates is flattened into rate_at_1..rate_at_5.
type SDPerformanceFact struct {
	SetupID              int64
	Date                 string
	MeanAcceptanceLength float64
	TimeTaken            float64
	AcceptanceRates      [AcceptanceRateCount]float64
}

// SetupNames is the denormalized form of a Setup used in reports.
type SetupNames struct {
	TargetModel        string `db:"target_model" json:"target_model"`
	TargetQuantization string `db:"target_quantization" json:"target_quantization"`
	DraftModel         string `db:"draft_model" json:"draft_model"`
	DraftQuantization  string `db:"draft_quantization" json:"draft_quantization"`
	DatasetType        string `db:"dataset_type" json:"dataset_type"`
}

// AccuracyRow is an accuracy fact joined with its dimensions.
type AccuracyRow struct {
	ModelName        string  `db:"model_name" json:"model_name"`
	QuantizationType string  `db:"quantization_type" json:"quantization_type"`
	GSM8KScore       float64 `db:"gsm8k_score" json:"gsm8k_score"`
	Date             string  `db:"date" json:"date"`
}

// LoadTestRow is a load-test fact joined with its setup.
type LoadTestRow struct {
	SetupNames
	SetupID         int64   `db:"sd_setup_id" json:"sd_setup_id"`
	RPS             int     `db:"rps" json:"rps"`
	EndToEndLatency float64 `db:"end_to_end_latency" json:"end_to_end_latency"`
	NumSpecTokens   int     `db:"num_spec_tokens" json:"num_spec_tokens"`
	Date            string  `db:"date" json:"date"`
}

// SDPerformanceRow is a speculative-decoding fact joined with its setup.
type SDPerformanceRow struct {
	SetupNames
	SetupID              int64   `db:"sd_setup_id" json:"sd_setup_id"`
	Date                 string  `db:"date" json:"date"`
	MeanAcceptanceLength float64 `db:"mean_acceptance_length" json:"mean_acceptance_length"`
	TimeTaken            float64 `db:"time_taken" json:"time_taken"`
	RateAt1              float64 `db:"rate_at_1" json:"rate_at_1"`
	RateAt2              float64 `db:"rate_at_2" json:"rate_at_2"`
	RateAt3              float64 `db:"rate_at_3" json:"rate_at_3"`
	RateAt4              float64 `db:"rate_at_4" json:"rate_at_4"`
	RateAt5              float64 `db:"rate_at_5" json:"rate_at_5"`
}

// ReportFilter holds optional filters for report queries.
type ReportFilter struct {
	Model string // case-insensitive substring of the (target) model name
	Limit int    // max rows (0 = default 100)
}
