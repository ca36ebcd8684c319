package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/accelbench/specbench/cmd/cli/format"
	"github.com/accelbench/specbench/internal/database"
	"github.com/accelbench/specbench/internal/etl"
	"github.com/accelbench/specbench/internal/remote"
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load benchmark result files into the store",
	Long: `Run one registered loader over every matching input of a data directory.

A SQLite store that does not exist yet is created first. The data directory
may be an s3://bucket/prefix URL; its objects are downloaded to a temporary
directory before loading. A file that fails to load is logged and skipped.

Examples:
  specbench load --etl accuracy --data-dir ./eval_results --db results.db
  specbench load --etl sd_metrics --data-dir s3://bench-artifacts/sd --db results.db
  specbench load --etl load_test_metrics --data-dir ./load_tests`,
	Args: cobra.NoArgs,
	RunE: runLoad,
}

var loadETL string

func init() {
	loadCmd.Flags().StringVar(&loadETL, "etl", "", "Loader to run: accuracy, sd_metrics, load_test_metrics (required)")
	loadCmd.Flags().String("data-dir", "", "Directory or s3:// URL holding the inputs (required)")
	loadCmd.Flags().Int("s3-concurrency", 8, "Parallel S3 downloads")
	_ = loadCmd.MarkFlagRequired("etl")
	mustBind(loadCmd.Flags())
	RootCmd.AddCommand(loadCmd)
}

func runLoad(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if cfg.DataDir == "" {
		return errors.New("--data-dir is required")
	}
	registry := etl.DefaultRegistry()
	if _, err := registry.Lookup(loadETL); err != nil {
		return err
	}

	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	if err := ensureSQLiteStore(ctx, store); err != nil {
		return err
	}

	dataDir, cleanup, err := stageDataDir(ctx, cfg.DataDir)
	if err != nil {
		return err
	}
	defer cleanup()

	batch := etl.NewBatch(registry, etl.Deps{Repo: store, Log: log, LoadTest: cfg.LoadTest})
	sum, err := batch.Process(ctx, loadETL, dataDir)
	if err != nil {
		return err
	}
	if getFormat() == format.FormatJSON {
		return format.JSONTo(cmd.OutOrStdout(), sum)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Processed %d, failed %d\n", sum.Processed, sum.Failed)
	return nil
}

// ensureSQLiteStore creates any missing table of a SQLite store. The file may
// already exist without tables, e.g. after a read command opened it first.
func ensureSQLiteStore(ctx context.Context, store *database.Store) error {
	if store.Dialect() != database.SQLite {
		return nil
	}
	_, err := os.Stat(store.Location())
	switch {
	case errors.Is(err, fs.ErrNotExist):
		log.Infof("Creating new database: %s", store.Location())
	case err != nil:
		return err
	}
	specs, err := database.DefaultTableSpecs(store.Dialect())
	if err != nil {
		return err
	}
	return store.CreateSchema(ctx, specs)
}

// stageDataDir returns a local directory for dataDir, downloading it first
// when it is an S3 URL. cleanup removes anything that was downloaded.
func stageDataDir(ctx context.Context, dataDir string) (string, func(), error) {
	if !remote.IsS3URL(dataDir) {
		return dataDir, func() {}, nil
	}
	client, err := newS3Client(ctx, cfg.AWSRegion)
	if err != nil {
		return "", nil, err
	}
	tmp, err := os.MkdirTemp("", "specbench-*")
	if err != nil {
		return "", nil, fmt.Errorf("create staging dir: %w", err)
	}
	cleanup := func() { os.RemoveAll(tmp) }

	if _, err := remote.NewStager(client, cfg.S3Concurrency, log).Stage(ctx, dataDir, tmp); err != nil {
		cleanup()
		return "", nil, err
	}
	return tmp, cleanup, nil
}
