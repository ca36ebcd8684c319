package database

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// MockRepo is an in-memory implementation of Repo for testing. Like the real
// store it never deduplicates on insert and rejects facts that reference
// unknown ids.
type MockRepo struct {
	mu             sync.Mutex
	models         map[int64]string
	quantizations  map[int64]string
	datasets       map[int64]string
	setups         map[int64]SetupKey
	accuracy       []AccuracyFact
	loadTests      []LoadTestFact
	sdPerformances []SDPerformanceFact
	nextID         int64
	calls          int
}

// NewMockRepo creates a new MockRepo.
func NewMockRepo() *MockRepo {
	return &MockRepo{
		models:        make(map[int64]string),
		quantizations: make(map[int64]string),
		datasets:      make(map[int64]string),
		setups:        make(map[int64]SetupKey),
	}
}

// Calls returns how many Repo methods have been invoked.
func (m *MockRepo) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Counts returns the number of rows per table, keyed by table name.
func (m *MockRepo) Counts() map[string]int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return map[string]int{
		"models":          len(m.models),
		"quantizations":   len(m.quantizations),
		"datasets":        len(m.datasets),
		"sd_setups":       len(m.setups),
		"accuracy":        len(m.accuracy),
		"ld_performances": len(m.loadTests),
		"sd_performances": len(m.sdPerformances),
	}
}

// Setup returns the stored key of a setup id.
func (m *MockRepo) Setup(id int64) (SetupKey, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k, ok := m.setups[id]
	return k, ok
}

// AccuracyFacts returns a copy of the inserted accuracy rows.
func (m *MockRepo) AccuracyFacts() []AccuracyFact {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]AccuracyFact(nil), m.accuracy...)
}

// LoadTestFacts returns a copy of the inserted load-test rows.
func (m *MockRepo) LoadTestFacts() []LoadTestFact {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]LoadTestFact(nil), m.loadTests...)
}

// SDPerformanceFacts returns a copy of the inserted sd performance rows.
func (m *MockRepo) SDPerformanceFacts() []SDPerformanceFact {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SDPerformanceFact(nil), m.sdPerformances...)
}

func (m *MockRepo) insert(table map[int64]string, value string) int64 {
	m.calls++
	m.nextID++
	table[m.nextID] = value
	return m.nextID
}

func (m *MockRepo) lookup(table map[int64]string, value string) (int64, bool) {
	m.calls++
	// Lowest id wins, matching the first row a SELECT would see.
	var ids []int64
	for id, v := range table {
		if v == value {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return 0, false
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids[0], true
}

func (m *MockRepo) InsertModel(_ context.Context, modelName string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insert(m.models, modelName), nil
}

func (m *MockRepo) GetModelID(_ context.Context, modelName string) (int64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.lookup(m.models, modelName)
	return id, ok, nil
}

func (m *MockRepo) InsertQuantization(_ context.Context, quantizationType string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insert(m.quantizations, quantizationType), nil
}

func (m *MockRepo) GetQuantizationID(_ context.Context, quantizationType string) (int64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.lookup(m.quantizations, quantizationType)
	return id, ok, nil
}

func (m *MockRepo) InsertDataset(_ context.Context, datasetType string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insert(m.datasets, datasetType), nil
}

func (m *MockRepo) GetDatasetID(_ context.Context, datasetType string) (int64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.lookup(m.datasets, datasetType)
	return id, ok, nil
}

func (m *MockRepo) InsertSetup(_ context.Context, k SetupKey) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if err := m.checkSetupKey(k); err != nil {
		return 0, err
	}
	m.nextID++
	m.setups[m.nextID] = k
	return m.nextID, nil
}

func (m *MockRepo) GetSetupID(_ context.Context, k SetupKey) (int64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	var best int64
	for id, sk := range m.setups {
		if sk == k && (best == 0 || id < best) {
			best = id
		}
	}
	return best, best != 0, nil
}

func (m *MockRepo) checkSetupKey(k SetupKey) error {
	for _, ref := range []struct {
		table map[int64]string
		id    int64
		name  string
	}{
		{m.models, k.TargetModelID, "target model"},
		{m.quantizations, k.TargetQuantizationID, "target quantization"},
		{m.models, k.DraftModelID, "draft model"},
		{m.quantizations, k.DraftQuantizationID, "draft quantization"},
		{m.datasets, k.DatasetID, "dataset"},
	} {
		if _, ok := ref.table[ref.id]; !ok {
			return fmt.Errorf("insert setup: FOREIGN KEY constraint failed: %s %d", ref.name, ref.id)
		}
	}
	return nil
}

func (m *MockRepo) InsertAccuracy(_ context.Context, f AccuracyFact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if _, ok := m.models[f.ModelID]; !ok {
		return fmt.Errorf("insert accuracy: FOREIGN KEY constraint failed: model %d", f.ModelID)
	}
	if _, ok := m.quantizations[f.QuantizationID]; !ok {
		return fmt.Errorf("insert accuracy: FOREIGN KEY constraint failed: quantization %d", f.QuantizationID)
	}
	m.accuracy = append(m.accuracy, f)
	return nil
}

func (m *MockRepo) InsertLoadTest(_ context.Context, f LoadTestFact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if _, ok := m.setups[f.SetupID]; !ok {
		return fmt.Errorf("insert load test performance: FOREIGN KEY constraint failed: setup %d", f.SetupID)
	}
	m.loadTests = append(m.loadTests, f)
	return nil
}

func (m *MockRepo) InsertSDPerformance(_ context.Context, f SDPerformanceFact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if _, ok := m.setups[f.SetupID]; !ok {
		return fmt.Errorf("insert sd performance: FOREIGN KEY constraint failed: setup %d", f.SetupID)
	}
	m.sdPerformances = append(m.sdPerformances, f)
	return nil
}

func (m *MockRepo) setupNames(id int64) SetupNames {
	k := m.setups[id]
	return SetupNames{
		TargetModel:        m.models[k.TargetModelID],
		TargetQuantization: m.quantizations[k.TargetQuantizationID],
		DraftModel:         m.models[k.DraftModelID],
		DraftQuantization:  m.quantizations[k.DraftQuantizationID],
		DatasetType:        m.datasets[k.DatasetID],
	}
}

func matchesModel(f ReportFilter, name string) bool {
	return f.Model == "" || strings.Contains(strings.ToLower(name), strings.ToLower(f.Model))
}

func truncate[T any](rows []T, f ReportFilter) []T {
	if n := f.limit(); len(rows) > n {
		return rows[:n]
	}
	return rows
}

func (m *MockRepo) ListAccuracy(_ context.Context, f ReportFilter) ([]AccuracyRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	var rows []AccuracyRow
	for _, a := range m.accuracy {
		name := m.models[a.ModelID]
		if !matchesModel(f, name) {
			continue
		}
		rows = append(rows, AccuracyRow{
			ModelName:        name,
			QuantizationType: m.quantizations[a.QuantizationID],
			GSM8KScore:       a.GSM8KScore,
			Date:             a.Date,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Date < rows[j].Date })
	return truncate(rows, f), nil
}

func (m *MockRepo) ListLoadTests(_ context.Context, f ReportFilter) ([]LoadTestRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	var rows []LoadTestRow
	for _, lt := range m.loadTests {
		names := m.setupNames(lt.SetupID)
		if !matchesModel(f, names.TargetModel) {
			continue
		}
		rows = append(rows, LoadTestRow{
			SetupNames:      names,
			SetupID:         lt.SetupID,
			RPS:             lt.RPS,
			EndToEndLatency: lt.EndToEndLatency,
			NumSpecTokens:   lt.NumSpecTokens,
			Date:            lt.Date,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Date != rows[j].Date {
			return rows[i].Date < rows[j].Date
		}
		return rows[i].RPS < rows[j].RPS
	})
	return truncate(rows, f), nil
}

func (m *MockRepo) ListSDPerformances(_ context.Context, f ReportFilter) ([]SDPerformanceRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	var rows []SDPerformanceRow
	for _, p := range m.sdPerformances {
		names := m.setupNames(p.SetupID)
		if !matchesModel(f, names.TargetModel) {
			continue
		}
		r := p.AcceptanceRates
		rows = append(rows, SDPerformanceRow{
			SetupNames:           names,
			SetupID:              p.SetupID,
			Date:                 p.Date,
			MeanAcceptanceLength: p.MeanAcceptanceLength,
			TimeTaken:            p.TimeTaken,
			RateAt1:              r[0],
			RateAt2:              r[1],
			RateAt3:              r[2],
			RateAt4:              r[3],
			RateAt5:              r[4],
		})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Date < rows[j].Date })
	return truncate(rows, f), nil
}

var _ Repo = (*MockRepo)(nil)
