package etl

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/accelbench/specbench/internal/database"
)

const accuracyResults = `{
  "results": {
    "gsm8k": {
      "alias": "gsm8k",
      "exact_match,strict-match": 0.70,
      "exact_match,flexible-extract": 0.7854
    }
  },
  "configs": {
    "gsm8k": {"metadata": {"pretrained": "org/Llama-3.1-8B-Instruct-scheme-W8A8"}}
  },
  "date": 1705314600.789
}`

func TestFormatUnixDate(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "1970-01-01 00:00:00"},
		{1705314600, "2024-01-15 10:30:00"},
		{1705314600.999, "2024-01-15 10:30:00"},
	}
	for _, tt := range tests {
		if got := FormatUnixDate(tt.in); got != tt.want {
			t.Errorf("FormatUnixDate(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAccuracyTransform(t *testing.T) {
	a := NewAccuracy(mockDeps(database.NewMockRepo()))

	rec, err := a.Transform([]byte(accuracyResults))
	require.NoError(t, err)
	assert.Equal(t, AccuracyRecord{
		ModelName:        "Llama-3.1-8B-Instruct",
		QuantizationType: "W8A8",
		Score:            0.7854,
		Date:             "2024-01-15 10:30:00",
	}, rec)
}

func TestAccuracyTransform_InvalidInput(t *testing.T) {
	a := NewAccuracy(mockDeps(database.NewMockRepo()))
	tests := []struct {
		name string
		doc  string
	}{
		{"not json", `{"results":`},
		{"missing score", `{"results":{"gsm8k":{}},"configs":{"gsm8k":{"metadata":{"pretrained":"m"}}},"date":1}`},
		{"missing pretrained", `{"results":{"gsm8k":{"exact_match,flexible-extract":0.5}},"configs":{"gsm8k":{"metadata":{}}},"date":1}`},
		{"string date", `{"results":{"gsm8k":{"exact_match,flexible-extract":0.5}},"configs":{"gsm8k":{"metadata":{"pretrained":"m"}}},"date":"today"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.Transform([]byte(tt.doc))
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestAccuracyRun(t *testing.T) {
	repo := database.NewMockRepo()
	a := NewAccuracy(mockDeps(repo))
	dir := t.TempDir()
	path := writeFile(t, filepath.Join(dir, "run1", "results_2024.json"), accuracyResults)

	require.NoError(t, a.Run(context.Background(), path))
	require.NoError(t, a.Run(context.Background(), path))

	counts := repo.Counts()
	assert.Equal(t, 1, counts["models"])
	assert.Equal(t, 1, counts["quantizations"])
	assert.Equal(t, 2, counts["accuracy"])

	rows, err := repo.ListAccuracy(context.Background(), database.ReportFilter{})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Llama-3.1-8B-Instruct", rows[0].ModelName)
	assert.Equal(t, "W8A8", rows[0].QuantizationType)
}

func TestAccuracyRun_MissingFile(t *testing.T) {
	repo := database.NewMockRepo()
	err := NewAccuracy(mockDeps(repo)).Run(context.Background(), filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "extract: ")
	assert.Zero(t, repo.Calls())
}
