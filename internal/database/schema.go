package database

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed tables/*.yaml
var tablesFS embed.FS

// ErrMalformedSchema is returned when a table specification cannot be turned
// into valid DDL.
var ErrMalformedSchema = errors.New("malformed schema definition")

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Column is one column definition; Type is emitted verbatim.
type Column struct {
	Name string
	Type string
}

// ForeignKey ties a column to the primary key of another table.
type ForeignKey struct {
	Column     string
	References string
}

// TableSpec declares one table.
type TableSpec struct {
	Name             string
	Columns          []Column
	DependentColumns []ForeignKey
}

// TableSpecs is an ordered set of table declarations.
type TableSpecs []TableSpec

// LoadTableSpecs parses a YAML table specification of the form
//
//	database_tables:
//	  models:
//	    columns:
//	      model_id: INTEGER PRIMARY KEY AUTOINCREMENT
//	      model_name: TEXT NOT NULL
//	    dependent_columns:
//	      some_id: other_table
//
// Declaration order of tables and columns is preserved.
func LoadTableSpecs(r io.Reader) (TableSpecs, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: decode yaml: %v", ErrMalformedSchema, err)
	}
	if len(doc.Content) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrMalformedSchema)
	}
	root := doc.Content[0]
	tablesNode, err := lookupKey(root, "database_tables")
	if err != nil {
		return nil, err
	}

	pairs, err := mappingPairs(tablesNode, "database_tables")
	if err != nil {
		return nil, err
	}
	specs := make(TableSpecs, 0, len(pairs))
	for _, p := range pairs {
		ts := TableSpec{Name: p.key}

		colsNode, err := lookupKey(p.value, "columns")
		if err != nil {
			return nil, fmt.Errorf("table %s: %w", p.key, err)
		}
		cols, err := mappingPairs(colsNode, p.key+".columns")
		if err != nil {
			return nil, err
		}
		for _, c := range cols {
			ts.Columns = append(ts.Columns, Column{Name: c.key, Type: c.value.Value})
		}

		if depNode, err := lookupKey(p.value, "dependent_columns"); err == nil && depNode.Tag != "!!null" {
			deps, err := mappingPairs(depNode, p.key+".dependent_columns")
			if err != nil {
				return nil, err
			}
			for _, d := range deps {
				ts.DependentColumns = append(ts.DependentColumns, ForeignKey{Column: d.key, References: d.value.Value})
			}
		}
		specs = append(specs, ts)
	}
	return specs, specs.Validate()
}

// DefaultTableSpecs returns the embedded table specification for a dialect.
func DefaultTableSpecs(d Dialect) (TableSpecs, error) {
	name := "tables/sqlite.yaml"
	if d == Postgres {
		name = "tables/postgres.yaml"
	}
	data, err := tablesFS.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("read embedded schema: %w", err)
	}
	return LoadTableSpecs(bytes.NewReader(data))
}

// Validate checks that every table can be rendered into DDL.
func (specs TableSpecs) Validate() error {
	if len(specs) == 0 {
		return fmt.Errorf("%w: no tables declared", ErrMalformedSchema)
	}
	tables := make(map[string]bool, len(specs))
	for _, ts := range specs {
		tables[ts.Name] = true
	}
	for _, ts := range specs {
		if !identRe.MatchString(ts.Name) {
			return fmt.Errorf("%w: invalid table name %q", ErrMalformedSchema, ts.Name)
		}
		if len(ts.Columns) == 0 {
			return fmt.Errorf("%w: table %s has no columns", ErrMalformedSchema, ts.Name)
		}
		cols := make(map[string]bool, len(ts.Columns))
		for _, c := range ts.Columns {
			if !identRe.MatchString(c.Name) {
				return fmt.Errorf("%w: table %s: invalid column name %q", ErrMalformedSchema, ts.Name, c.Name)
			}
			if strings.TrimSpace(c.Type) == "" {
				return fmt.Errorf("%w: table %s: column %s has no type", ErrMalformedSchema, ts.Name, c.Name)
			}
			cols[c.Name] = true
		}
		for _, fk := range ts.DependentColumns {
			if !cols[fk.Column] {
				return fmt.Errorf("%w: table %s: dependent column %s is not declared", ErrMalformedSchema, ts.Name, fk.Column)
			}
			if !tables[fk.References] {
				return fmt.Errorf("%w: table %s: column %s references unknown table %q", ErrMalformedSchema, ts.Name, fk.Column, fk.References)
			}
		}
	}
	return nil
}

// DDL renders the CREATE TABLE statement for the table.
func (ts TableSpec) DDL() string {
	defs := make([]string, 0, len(ts.Columns)+len(ts.DependentColumns))
	for _, c := range ts.Columns {
		defs = append(defs, c.Name+" "+c.Type)
	}
	for _, fk := range ts.DependentColumns {
		defs = append(defs, fmt.Sprintf("FOREIGN KEY (%s) REFERENCES %s", fk.Column, fk.References))
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n    %s\n)", ts.Name, strings.Join(defs, ",\n    "))
}

// CreateSchema creates every table in specs that does not exist yet.
//
// A malformed specification fails before anything is executed. Each CREATE
// is issued on its own; a table that fails is logged and the remaining
// tables are still attempted.
func (s *Store) CreateSchema(ctx context.Context, specs TableSpecs) error {
	if err := specs.Validate(); err != nil {
		return err
	}
	db, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	for _, ts := range specs {
		if _, err := db.ExecContext(ctx, ts.DDL()); err != nil {
			s.log.WithError(err).WithField("table", ts.Name).Error("create table failed")
			continue
		}
		s.log.WithField("table", ts.Name).Debug("table ready")
	}
	return nil
}

type yamlPair struct {
	key   string
	value *yaml.Node
}

func lookupKey(n *yaml.Node, key string) (*yaml.Node, error) {
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: expected mapping around %q (line %d)", ErrMalformedSchema, key, n.Line)
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1], nil
		}
	}
	return nil, fmt.Errorf("%w: missing key %q", ErrMalformedSchema, key)
}

func mappingPairs(n *yaml.Node, path string) ([]yamlPair, error) {
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: %s must be a mapping (line %d)", ErrMalformedSchema, path, n.Line)
	}
	pairs := make([]yamlPair, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if v.Kind == yaml.ScalarNode || v.Kind == yaml.MappingNode {
			pairs = append(pairs, yamlPair{key: k.Value, value: v})
			continue
		}
		return nil, fmt.Errorf("%w: %s.%s has unexpected shape (line %d)", ErrMalformedSchema, path, k.Value, v.Line)
	}
	return pairs, nil
}
