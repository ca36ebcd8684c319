package database

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoTables = `
database_tables:
  parents:
    columns:
      parent_id: INTEGER PRIMARY KEY AUTOINCREMENT
      label: TEXT NOT NULL
  children:
    columns:
      child_id: INTEGER PRIMARY KEY AUTOINCREMENT
      parent_id: INTEGER NOT NULL
      weight: REAL
    dependent_columns:
      parent_id: parents
`

func TestLoadTableSpecs_PreservesOrder(t *testing.T) {
	specs, err := LoadTableSpecs(strings.NewReader(twoTables))
	require.NoError(t, err)
	require.Len(t, specs, 2)

	assert.Equal(t, "parents", specs[0].Name)
	assert.Equal(t, "children", specs[1].Name)
	assert.Equal(t, []Column{
		{Name: "child_id", Type: "INTEGER PRIMARY KEY AUTOINCREMENT"},
		{Name: "parent_id", Type: "INTEGER NOT NULL"},
		{Name: "weight", Type: "REAL"},
	}, specs[1].Columns)
	assert.Equal(t, []ForeignKey{{Column: "parent_id", References: "parents"}}, specs[1].DependentColumns)
	assert.Empty(t, specs[0].DependentColumns)
}

func TestLoadTableSpecs_NullDependentColumns(t *testing.T) {
	doc := `
database_tables:
  lone:
    columns:
      lone_id: INTEGER PRIMARY KEY
    dependent_columns:
`
	specs, err := LoadTableSpecs(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, specs, 1)
	assert.Empty(t, specs[0].DependentColumns)
}

func TestLoadTableSpecs_Malformed(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not yaml", "database_tables: [unclosed"},
		{"empty", ""},
		{"missing root key", "tables:\n  a:\n    columns:\n      id: INTEGER\n"},
		{"tables not a mapping", "database_tables:\n  - a\n  - b\n"},
		{"missing columns", "database_tables:\n  a:\n    dependent_columns:\n      x: b\n"},
		{"no columns", "database_tables:\n  a:\n    columns: {}\n"},
		{"empty type", "database_tables:\n  a:\n    columns:\n      id: \"\"\n"},
		{"bad table name", "database_tables:\n  \"a; DROP\":\n    columns:\n      id: INTEGER\n"},
		{"bad column name", "database_tables:\n  a:\n    columns:\n      \"id id\": INTEGER\n"},
		{"undeclared dependent column", "database_tables:\n  a:\n    columns:\n      id: INTEGER\n    dependent_columns:\n      other_id: a\n"},
		{"unknown referenced table", "database_tables:\n  a:\n    columns:\n      id: INTEGER\n      b_id: INTEGER\n    dependent_columns:\n      b_id: b\n"},
		{"list column", "database_tables:\n  a:\n    columns:\n      id: [INTEGER]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadTableSpecs(strings.NewReader(tt.doc))
			assert.ErrorIs(t, err, ErrMalformedSchema)
		})
	}
}

func TestDefaultTableSpecs(t *testing.T) {
	want := []string{"models", "quantizations", "datasets", "sd_setups", "accuracy", "ld_performances", "sd_performances"}
	for _, d := range []Dialect{SQLite, Postgres} {
		specs, err := DefaultTableSpecs(d)
		require.NoError(t, err, d)
		var names []string
		for _, ts := range specs {
			names = append(names, ts.Name)
		}
		assert.Equal(t, want, names, d)
	}
}

func TestTableSpecDDL(t *testing.T) {
	specs, err := LoadTableSpecs(strings.NewReader(twoTables))
	require.NoError(t, err)

	want := "CREATE TABLE IF NOT EXISTS children (\n" +
		"    child_id INTEGER PRIMARY KEY AUTOINCREMENT,\n" +
		"    parent_id INTEGER NOT NULL,\n" +
		"    weight REAL,\n" +
		"    FOREIGN KEY (parent_id) REFERENCES parents\n" +
		")"
	assert.Equal(t, want, specs[1].DDL())
}

func TestCreateSchema_Idempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.InsertModel(ctx, "kept")
	require.NoError(t, err)

	specs, err := DefaultTableSpecs(s.Dialect())
	require.NoError(t, err)
	require.NoError(t, s.CreateSchema(ctx, specs))

	assert.Equal(t, 1, countRows(t, s, "models"), "second CreateSchema must not drop data")
}

func TestCreateSchema_RejectsMalformedBeforeExecuting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bench.db")
	s, err := New(path, nil)
	require.NoError(t, err)

	err = s.CreateSchema(context.Background(), TableSpecs{{Name: "empty"}})
	assert.ErrorIs(t, err, ErrMalformedSchema)
	assert.NoFileExists(t, path)
}

func TestCreateSchema_ContinuesPastFailedTable(t *testing.T) {
	logger, hook := test.NewNullLogger()
	s, err := New(filepath.Join(t.TempDir(), "bench.db"), logger)
	require.NoError(t, err)

	specs := TableSpecs{
		{Name: "broken", Columns: []Column{
			{Name: "a", Type: "INTEGER PRIMARY KEY"},
			{Name: "b", Type: "INTEGER PRIMARY KEY"},
		}},
		{Name: "fine", Columns: []Column{{Name: "id", Type: "INTEGER PRIMARY KEY"}}},
	}
	require.NoError(t, s.CreateSchema(context.Background(), specs))

	assert.Equal(t, 0, countRows(t, s, "fine"))

	var failed []string
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.ErrorLevel {
			failed = append(failed, e.Data["table"].(string))
		}
	}
	assert.Equal(t, []string{"broken"}, failed)
}
