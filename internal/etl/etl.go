// Package etl loads benchmark result artifacts into the benchmark store.
//
// Every loader is a three-stage pipeline. Extract reads one unit of input
// without interpreting it. Transform is pure and maps the raw payload to a
// record. Load resolves the dimension rows the record refers to and inserts
// exactly one fact row.
package etl

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned when an input document does not have the
	// expected shape.
	ErrInvalidInput = errors.New("invalid input")

	// ErrAcceptanceRates is returned when a speculative-decoding report does
	// not carry exactly five acceptance rates.
	ErrAcceptanceRates = errors.New("acceptance rates must have 5 values")

	// ErrUnknownETL is returned when a registry lookup fails.
	ErrUnknownETL = errors.New("unknown etl")
)

// Stages are the three steps of one loader. R is the raw payload returned by
// Extract and T the record produced by Transform.
type Stages[R, T any] interface {
	Extract(ctx context.Context, source string) (R, error)
	Transform(raw R) (T, error)
	Load(ctx context.Context, rec T) error
}

// ETL runs a loader on one source.
type ETL interface {
	Run(ctx context.Context, source string) error
}

// Run executes Extract, Transform and Load in order and returns the first
// error, annotated with the stage that produced it.
func Run[R, T any](ctx context.Context, s Stages[R, T], source string) error {
	raw, err := s.Extract(ctx, source)
	if err != nil {
		return fmt.Errorf("extract: %w", err)
	}
	rec, err := s.Transform(raw)
	if err != nil {
		return fmt.Errorf("transform: %w", err)
	}
	if err := s.Load(ctx, rec); err != nil {
		return fmt.Errorf("load: %w", err)
	}
	return nil
}
