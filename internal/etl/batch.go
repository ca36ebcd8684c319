package etl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Summary counts the outcome of one batch.
type Summary struct {
	Processed int `json:"processed"`
	Failed    int `json:"failed"`
}

// Batch runs a registered loader over every matching input of a directory.
type Batch struct {
	registry *Registry
	deps     Deps
	log      logrus.FieldLogger
}

// NewBatch creates a Batch.
func NewBatch(registry *Registry, deps Deps) *Batch {
	log := deps.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Batch{registry: registry, deps: deps, log: log.WithField("component", "batch")}
}

// Process runs the loader registered as name on each input under dataDir that
// matches its pattern, in lexical order. A failing input is logged and
// counted; it never stops the batch. The returned error covers only setup
// problems and cancellation.
func (b *Batch) Process(ctx context.Context, name, dataDir string) (Summary, error) {
	var sum Summary

	entry, err := b.registry.Lookup(name)
	if err != nil {
		return sum, err
	}
	info, err := os.Stat(dataDir)
	if err != nil {
		return sum, fmt.Errorf("data directory: %w", err)
	}
	if !info.IsDir() {
		return sum, fmt.Errorf("data directory %s is not a directory", dataDir)
	}

	// Glob sorts its matches.
	matches, err := filepath.Glob(filepath.Join(dataDir, entry.Pattern))
	if err != nil {
		return sum, fmt.Errorf("match %q: %w", entry.Pattern, err)
	}

	log := b.log.WithFields(logrus.Fields{"etl": name, "batch_id": uuid.NewString()})
	loader := entry.New(b.deps)
	log.WithField("candidates", len(matches)).Info("batch started")

	for _, path := range matches {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		fi, err := os.Stat(path)
		if err != nil || (fi.IsDir() && !entry.AcceptsDirs) {
			continue
		}

		ulog := log.WithField("source", path)
		if err := loader.Run(ctx, path); err != nil {
			sum.Failed++
			ulog.WithError(err).Errorf("error processing %s", path)
			continue
		}
		sum.Processed++
		ulog.Infof("successfully processed %s", path)
	}

	log.WithFields(logrus.Fields{"processed": sum.Processed, "failed": sum.Failed}).Info("batch finished")
	return sum, nil
}
