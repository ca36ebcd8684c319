package database

import (
	"context"
	"fmt"
)

// InsertModel inserts a models row and returns its id. It does not check for
// an existing row with the same name; callers pair it with GetModelID.
func (s *Store) InsertModel(ctx context.Context, modelName string) (int64, error) {
	id, err := s.insertReturningID(ctx,
		`INSERT INTO models (model_name) VALUES (?) RETURNING model_id`, modelName)
	if err != nil {
		return 0, fmt.Errorf("insert model %q: %w", modelName, err)
	}
	s.log.WithField("model_id", id).Debugf("inserted model %q", modelName)
	return id, nil
}

// GetModelID returns the id of the model with the given name.
func (s *Store) GetModelID(ctx context.Context, modelName string) (int64, bool, error) {
	id, ok, err := s.lookupID(ctx,
		`SELECT model_id FROM models WHERE model_name = ?`, modelName)
	if err != nil {
		return 0, false, fmt.Errorf("query model %q: %w", modelName, err)
	}
	return id, ok, nil
}

// InsertQuantization inserts a quantizations row and returns its id.
func (s *Store) InsertQuantization(ctx context.Context, quantizationType string) (int64, error) {
	id, err := s.insertReturningID(ctx,
		`INSERT INTO quantizations (quantization_type) VALUES (?) RETURNING quantization_id`, quantizationType)
	if err != nil {
		return 0, fmt.Errorf("insert quantization %q: %w", quantizationType, err)
	}
	s.log.WithField("quantization_id", id).Debugf("inserted quantization %q", quantizationType)
	return id, nil
}

// GetQuantizationID returns the id of the quantization with the given type.
func (s *Store) GetQuantizationID(ctx context.Context, quantizationType string) (int64, bool, error) {
	id, ok, err := s.lookupID(ctx,
		`SELECT quantization_id FROM quantizations WHERE quantization_type = ?`, quantizationType)
	if err != nil {
		return 0, false, fmt.Errorf("query quantization %q: %w", quantizationType, err)
	}
	return id, ok, nil
}

// InsertDataset inserts a datasets row and returns its id.
func (s *Store) InsertDataset(ctx context.Context, datasetType string) (int64, error) {
	id, err := s.insertReturningID(ctx,
		`INSERT INTO datasets (dataset_type) VALUES (?) RETURNING dataset_id`, datasetType)
	if err != nil {
		return 0, fmt.Errorf("insert dataset %q: %w", datasetType, err)
	}
	s.log.WithField("dataset_id", id).Debugf("inserted dataset %q", datasetType)
	return id, nil
}

// GetDatasetID returns the id of the dataset with the given type.
func (s *Store) GetDatasetID(ctx context.Context, datasetType string) (int64, bool, error) {
	id, ok, err := s.lookupID(ctx,
		`SELECT dataset_id FROM datasets WHERE dataset_type = ?`, datasetType)
	if err != nil {
		return 0, false, fmt.Errorf("query dataset %q: %w", datasetType, err)
	}
	return id, ok, nil
}

// InsertSetup inserts an sd_setups row and returns its id.
func (s *Store) InsertSetup(ctx context.Context, k SetupKey) (int64, error) {
	id, err := s.insertReturningID(ctx,
		`INSERT INTO sd_setups
		    (target_model_id, target_quantization_id, draft_model_id, draft_quantization_id, dataset_id)
		 VALUES (?, ?, ?, ?, ?)
		 RETURNING sd_setup_id`,
		k.TargetModelID, k.TargetQuantizationID, k.DraftModelID, k.DraftQuantizationID, k.DatasetID,
	)
	if err != nil {
		return 0, fmt.Errorf("insert setup: %w", err)
	}
	s.log.WithField("sd_setup_id", id).Debug("inserted setup")
	return id, nil
}

// GetSetupID returns the id of the setup matching all five foreign keys.
func (s *Store) GetSetupID(ctx context.Context, k SetupKey) (int64, bool, error) {
	id, ok, err := s.lookupID(ctx,
		`SELECT sd_setup_id FROM sd_setups
		 WHERE target_model_id = ? AND target_quantization_id = ?
		   AND draft_model_id = ? AND draft_quantization_id = ?
		   AND dataset_id = ?`,
		k.TargetModelID, k.TargetQuantizationID, k.DraftModelID, k.DraftQuantizationID, k.DatasetID,
	)
	if err != nil {
		return 0, false, fmt.Errorf("query setup: %w", err)
	}
	return id, ok, nil
}
