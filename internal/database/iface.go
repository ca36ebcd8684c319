package database

import "context"

// Repo defines the store operations used by the ETLs and the CLI.
// The concrete *Store satisfies this interface; MockRepo is an in-memory
// implementation for tests.
type Repo interface {
	InsertModel(ctx context.Context, modelName string) (int64, error)
	GetModelID(ctx context.Context, modelName string) (int64, bool, error)
	InsertQuantization(ctx context.Context, quantizationType string) (int64, error)
	GetQuantizationID(ctx context.Context, quantizationType string) (int64, bool, error)
	InsertDataset(ctx context.Context, datasetType string) (int64, error)
	GetDatasetID(ctx context.Context, datasetType string) (int64, bool, error)
	InsertSetup(ctx context.Context, k SetupKey) (int64, error)
	GetSetupID(ctx context.Context, k SetupKey) (int64, bool, error)
	InsertAccuracy(ctx context.Context, f AccuracyFact) error
	InsertLoadTest(ctx context.Context, f LoadTestFact) error
	InsertSDPerformance(ctx context.Context, f SDPerformanceFact) error
	ListAccuracy(ctx context.Context, f ReportFilter) ([]AccuracyRow, error)
	ListLoadTests(ctx context.Context, f ReportFilter) ([]LoadTestRow, error)
	ListSDPerformances(ctx context.Context, f ReportFilter) ([]SDPerformanceRow, error)
}

// Compile-time check that *Store implements Repo.
var _ Repo = (*Store)(nil)
