package etl

import (
	"context"
	"fmt"

	"github.com/accelbench/specbench/internal/database"
)

// getOrInsert returns the id of the row matching key, inserting it first
// when the lookup finds nothing.
func getOrInsert[K any](
	ctx context.Context,
	key K,
	get func(context.Context, K) (int64, bool, error),
	insert func(context.Context, K) (int64, error),
) (int64, error) {
	id, found, err := get(ctx, key)
	if err != nil {
		return 0, err
	}
	if found {
		return id, nil
	}
	return insert(ctx, key)
}

func resolveModel(ctx context.Context, repo database.Repo, name string) (int64, error) {
	id, err := getOrInsert(ctx, name, repo.GetModelID, repo.InsertModel)
	if err != nil {
		return 0, fmt.Errorf("resolve model %q: %w", name, err)
	}
	return id, nil
}

func resolveQuantization(ctx context.Context, repo database.Repo, quantizationType string) (int64, error) {
	id, err := getOrInsert(ctx, quantizationType, repo.GetQuantizationID, repo.InsertQuantization)
	if err != nil {
		return 0, fmt.Errorf("resolve quantization %q: %w", quantizationType, err)
	}
	return id, nil
}

func resolveDataset(ctx context.Context, repo database.Repo, datasetType string) (int64, error) {
	id, err := getOrInsert(ctx, datasetType, repo.GetDatasetID, repo.InsertDataset)
	if err != nil {
		return 0, fmt.Errorf("resolve dataset %q: %w", datasetType, err)
	}
	return id, nil
}

// resolveSetup resolves the five dimensions named in n and then the setup
// row for their ids.
func resolveSetup(ctx context.Context, repo database.Repo, n database.SetupNames) (int64, error) {
	var (
		k   database.SetupKey
		err error
	)
	if k.TargetModelID, err = resolveModel(ctx, repo, n.TargetModel); err != nil {
		return 0, err
	}
	if k.DraftModelID, err = resolveModel(ctx, repo, n.DraftModel); err != nil {
		return 0, err
	}
	if k.TargetQuantizationID, err = resolveQuantization(ctx, repo, n.TargetQuantization); err != nil {
		return 0, err
	}
	if k.DraftQuantizationID, err = resolveQuantization(ctx, repo, n.DraftQuantization); err != nil {
		return 0, err
	}
	if k.DatasetID, err = resolveDataset(ctx, repo, n.DatasetType); err != nil {
		return 0, err
	}

	id, err := getOrInsert(ctx, k, repo.GetSetupID, repo.InsertSetup)
	if err != nil {
		return 0, fmt.Errorf("resolve setup: %w", err)
	}
	return id, nil
}
