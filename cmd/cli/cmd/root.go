package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/accelbench/specbench/cmd/cli/format"
	"github.com/accelbench/specbench/internal/config"
	"github.com/accelbench/specbench/internal/database"
	"github.com/accelbench/specbench/internal/remote"
)

var (
	cfgFile      string
	outputFormat string

	v   = config.New()
	cfg *config.Config
	log *logrus.Logger
)

// AWS clients are created lazily; tests replace these.
var (
	newS3Client = func(ctx context.Context, region string) (remote.S3API, error) {
		return remote.NewS3Client(ctx, region)
	}
	newSecretsClient = func(ctx context.Context, region string) (remote.SecretsAPI, error) {
		return remote.NewSecretsClient(ctx, region)
	}
)

// RootCmd is the top-level CLI command.
var RootCmd = &cobra.Command{
	Use:   "specbench",
	Short: "specbench loads quantization and speculative decoding benchmark results",
	Long: `specbench loads the JSON artifacts of accuracy evaluations, offline
speculative decoding runs and load tests into a relational store, and
queries what has been loaded.

Settings come from flags, SPECBENCH_* environment variables and an optional
YAML file given with --config.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	pf := RootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "YAML config file")
	pf.String("db", "specbench.db", "Store location: SQLite file path or postgres:// URL")
	pf.String("db-secret", "", "AWS Secrets Manager id holding the store location")
	pf.String("aws-region", "", "AWS region for S3 and Secrets Manager")
	pf.String("log-level", "info", "Log level: debug, info, warn, error")
	pf.String("log-format", "text", "Log format: text or json")
	pf.StringVarP(&outputFormat, "output", "o", "table", "Output format: table, json, csv")
	mustBind(pf)
}

// mustBind binds flags to the config keys of the same name.
func mustBind(flags *pflag.FlagSet) {
	if err := config.BindFlags(v, flags); err != nil {
		panic(err)
	}
}

func setup(cmd *cobra.Command, _ []string) error {
	c, err := config.Load(v, cfgFile)
	if err != nil {
		return err
	}
	logger, err := newLogger(c.LogLevel, c.LogFormat, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	cfg, log = c, logger
	return nil
}

func newLogger(level, logFormat string, w io.Writer) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(lvl)
	if logFormat == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return l, nil
}

// storeLocation returns --db, or the location held by --db-secret when set.
func storeLocation(ctx context.Context) (string, error) {
	if cfg.DBSecret == "" {
		return cfg.DB, nil
	}
	client, err := newSecretsClient(ctx, cfg.AWSRegion)
	if err != nil {
		return "", err
	}
	loc, err := remote.ResolveLocation(ctx, client, cfg.DBSecret)
	if err != nil {
		return "", err
	}
	log.WithField("secret", cfg.DBSecret).Debug("store location read from secret")
	return loc, nil
}

func openStore(ctx context.Context) (*database.Store, error) {
	loc, err := storeLocation(ctx)
	if err != nil {
		return nil, err
	}
	return database.New(loc, log)
}

func getFormat() format.OutputFormat {
	switch outputFormat {
	case "json":
		return format.FormatJSON
	case "csv":
		return format.FormatCSV
	default:
		return format.FormatTable
	}
}
