package etl

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/accelbench/specbench/internal/config"
	"github.com/accelbench/specbench/internal/database"
)

// Registered loader names.
const (
	NameAccuracy  = "accuracy"
	NameSDMetrics = "sd_metrics"
	NameLoadTest  = "load_test_metrics"
)

// Deps are the collaborators handed to every loader.
type Deps struct {
	Repo     database.Repo
	Log      logrus.FieldLogger
	LoadTest config.LoadTestDefaults
}

func (d Deps) logger() logrus.FieldLogger {
	if d.Log == nil {
		return logrus.StandardLogger().WithField("component", "etl")
	}
	return d.Log.WithField("component", "etl")
}

// Entry describes one registered loader.
type Entry struct {
	Name string
	// Pattern is a filepath.Match pattern relative to the data directory.
	Pattern string
	// AcceptsDirs reports whether matched directories are loaded too.
	AcceptsDirs bool
	New         func(Deps) ETL
}

// Registry maps loader names to entries.
type Registry struct {
	entries map[string]Entry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Entry)}
}

// DefaultRegistry returns a registry with the accuracy, sd_metrics and
// load_test_metrics loaders.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(Entry{
		Name:    NameAccuracy,
		Pattern: "*/results_*.json",
		New:     func(d Deps) ETL { return NewAccuracy(d) },
	})
	r.Register(Entry{
		Name:    NameSDMetrics,
		Pattern: "sd_results_*.json",
		New:     func(d Deps) ETL { return NewSDMetrics(d) },
	})
	r.Register(Entry{
		Name:        NameLoadTest,
		Pattern:     "*",
		AcceptsDirs: true,
		New:         func(d Deps) ETL { return NewLoadTest(d) },
	})
	return r
}

// Register adds or replaces an entry.
func (r *Registry) Register(e Entry) {
	r.entries[e.Name] = e
}

// Lookup returns the entry registered under name.
func (r *Registry) Lookup(name string) (Entry, error) {
	e, ok := r.entries[name]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s (available: %s)", ErrUnknownETL, name, strings.Join(r.Names(), ", "))
	}
	return e, nil
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.entries))
	for n := range r.entries {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Entries returns the registered entries sorted by name.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, 0, len(r.entries))
	for _, n := range r.Names() {
		out = append(out, r.entries[n])
	}
	return out
}
