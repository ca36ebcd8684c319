package etl

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/accelbench/specbench/internal/config"
	"github.com/accelbench/specbench/internal/database"
)

// writeLoadTestRun creates a results folder with both input files.
func writeLoadTestRun(t *testing.T, parent, folder, params, metrics string) string {
	t.Helper()
	dir := filepath.Join(parent, folder)
	writeFile(t, filepath.Join(dir, inputParamsFile), params)
	writeFile(t, filepath.Join(dir, metricsFile), metrics)
	return dir
}

func TestLoadTestRun_EndToEnd(t *testing.T) {
	ctx := context.Background()
	for name, repo := range map[string]database.Repo{
		"mock":   database.NewMockRepo(),
		"sqlite": newSQLiteRepo(t),
	} {
		t.Run(name, func(t *testing.T) {
			l := NewLoadTest(mockDeps(repo))
			dir := writeLoadTestRun(t, t.TempDir(), "code_sd_4_2024-01-15_10:30:00",
				`{"rps": "5", "run_id": "code_sd_4"}`,
				`{"metrics": {"end_to_end_latency": {"med": 123.4}}}`)

			require.NoError(t, l.Run(ctx, dir))

			rows, err := repo.ListLoadTests(ctx, database.ReportFilter{})
			require.NoError(t, err)
			require.Len(t, rows, 1)
			row := rows[0]
			assert.Equal(t, 5, row.RPS)
			assert.Equal(t, 4, row.NumSpecTokens)
			assert.Equal(t, 123.4, row.EndToEndLatency)
			assert.Equal(t, "2024-01-15_10:30:00", row.Date)
			assert.Equal(t, database.SetupNames{
				TargetModel:        "meta-llama/Llama-3.1-8B-Instruct",
				TargetQuantization: "FP16",
				DraftModel:         "Llama-3.2-1B-Instruct",
				DraftQuantization:  "FP8",
				DatasetType:        "code",
			}, row.SetupNames)

			// A second run with the same setup reuses the setup row.
			dir2 := writeLoadTestRun(t, t.TempDir(), "code_sd_4_2024-01-15_11:00:00",
				`{"rps": "10", "run_id": "code_sd_4"}`,
				`{"metrics": {"end_to_end_latency": {"med": 150}}}`)
			require.NoError(t, l.Run(ctx, dir2))

			rows, err = repo.ListLoadTests(ctx, database.ReportFilter{})
			require.NoError(t, err)
			require.Len(t, rows, 2)
			assert.Equal(t, rows[0].SetupID, rows[1].SetupID)
		})
	}
}

func TestLoadTestTransform(t *testing.T) {
	l := NewLoadTest(mockDeps(database.NewMockRepo()))
	tests := []struct {
		name    string
		folder  string
		params  string
		metrics string
		want    LoadTestRecord
	}{
		{
			name:    "defaults",
			folder:  "baseline_2024-02-01_08:00:00",
			params:  `{}`,
			metrics: `{}`,
			want: LoadTestRecord{
				Setup: database.SetupNames{
					TargetModel:        "meta-llama/Llama-3.1-8B-Instruct",
					TargetQuantization: "FP16",
					DraftModel:         "Llama-3.2-1B-Instruct",
					DraftQuantization:  "FP8",
					DatasetType:        "code",
				},
				RPS:  1,
				Date: "2024-02-01_08:00:00",
			},
		},
		{
			name:    "single model",
			folder:  "single_model_sd_8_2024-01-15_10:30:00",
			params:  `{"rps": 3, "run_id": "single_model_sd_8"}`,
			metrics: `{"metrics": {"end_to_end_latency": {"med": 9.5}}}`,
			want: LoadTestRecord{
				Setup: database.SetupNames{
					TargetModel:        "meta-llama/Llama-3.1-8B-Instruct",
					TargetQuantization: "FP16",
					DatasetType:        "code",
				},
				RPS:             3,
				EndToEndLatency: 9.5,
				NumSpecTokens:   8,
				Date:            "2024-01-15_10:30:00",
			},
		},
		{
			name:   "setup from input params",
			folder: "chat_2024-03-01_12:00:00",
			params: `{"rps": " 7 ", "run_id": "chat_sd_2", "model": "org/Qwen2.5-7B-scheme-W4A16",
				"speculative_model": "org/Qwen2.5-0.5B", "dataset_type": "chat"}`,
			metrics: `{"metrics": {"end_to_end_latency": {"med": 42}}}`,
			want: LoadTestRecord{
				Setup: database.SetupNames{
					TargetModel:        "Qwen2.5-7B",
					TargetQuantization: "W4A16",
					DraftModel:         "Qwen2.5-0.5B",
					DraftQuantization:  "FP16",
					DatasetType:        "chat",
				},
				RPS:             7,
				EndToEndLatency: 42,
				NumSpecTokens:   2,
				Date:            "2024-03-01_12:00:00",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := l.Transform(LoadTestRaw{
				Folder:      tt.folder,
				InputParams: []byte(tt.params),
				Metrics:     []byte(tt.metrics),
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, rec)
		})
	}
}

func TestLoadTestTransform_ConfiguredDefaults(t *testing.T) {
	deps := mockDeps(database.NewMockRepo())
	deps.LoadTest = config.LoadTestDefaults{
		TargetModel:        "Mistral-7B",
		TargetQuantization: "W8A8",
		DraftModel:         "Mistral-tiny",
		DraftQuantization:  "FP16",
		DatasetType:        "math",
	}
	rec, err := NewLoadTest(deps).Transform(LoadTestRaw{
		Folder:      "x_2024-01-01_00:00:00",
		InputParams: []byte(`{"rps": "2"}`),
		Metrics:     []byte(`{}`),
	})
	require.NoError(t, err)
	assert.Equal(t, "Mistral-7B", rec.Setup.TargetModel)
	assert.Equal(t, "Mistral-tiny", rec.Setup.DraftModel)
	assert.Equal(t, "math", rec.Setup.DatasetType)
}

func TestLoadTestTransform_InvalidInput(t *testing.T) {
	l := NewLoadTest(mockDeps(database.NewMockRepo()))
	tests := []struct {
		name    string
		params  string
		metrics string
	}{
		{"rps not integer", `{"rps": "fast"}`, `{}`},
		{"rps wrong type", `{"rps": [1]}`, `{}`},
		{"params not json", `{`, `{}`},
		{"latency not number", `{}`, `{"metrics": {"end_to_end_latency": {"med": "slow"}}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.Transform(LoadTestRaw{Folder: "f", InputParams: []byte(tt.params), Metrics: []byte(tt.metrics)})
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestLoadTestExtract(t *testing.T) {
	l := NewLoadTest(mockDeps(database.NewMockRepo()))
	parent := t.TempDir()

	dir := writeLoadTestRun(t, parent, "run_2024-01-15_10:30:00", `{"rps":"1"}`, `{}`)
	raw, err := l.Extract(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, "run_2024-01-15_10:30:00", raw.Folder)
	assert.JSONEq(t, `{"rps":"1"}`, string(raw.InputParams))

	file := writeFile(t, filepath.Join(parent, "notes.txt"), "hi")
	_, err = l.Extract(context.Background(), file)
	assert.Error(t, err)

	partial := filepath.Join(parent, "partial")
	writeFile(t, filepath.Join(partial, inputParamsFile), `{}`)
	_, err = l.Extract(context.Background(), partial)
	assert.ErrorContains(t, err, metricsFile)
}

func TestParseRPS(t *testing.T) {
	tests := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{"", 1, false},
		{`"5"`, 5, false},
		{`" 12 "`, 12, false},
		{`8`, 8, false},
		{`2.9`, 2, false},
		{`"2.5"`, 0, true},
		{`"many"`, 0, true},
		{`true`, 0, true},
	}
	for _, tt := range tests {
		got, err := parseRPS(json.RawMessage(tt.raw))
		if (err != nil) != tt.wantErr {
			t.Errorf("parseRPS(%s) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseRPS(%s) = %d, want %d", tt.raw, got, tt.want)
		}
	}
}
