// Package config loads specbench settings from defaults, an optional YAML
// file, SPECBENCH_* environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. SPECBENCH_DB.
const EnvPrefix = "SPECBENCH"

// LoadTestDefaults fills the setup of load-test runs whose input parameters
// do not name the models or dataset they were run against.
type LoadTestDefaults struct {
	TargetModel        string `mapstructure:"target_model"`
	TargetQuantization string `mapstructure:"target_quantization"`
	DraftModel         string `mapstructure:"draft_model"`
	DraftQuantization  string `mapstructure:"draft_quantization"`
	DatasetType        string `mapstructure:"dataset_type"`
}

// DefaultLoadTestDefaults returns the setup the load-test runners have used so
// far. The target is stored as given, without name parsing.
func DefaultLoadTestDefaults() LoadTestDefaults {
	return LoadTestDefaults{
		TargetModel:        "meta-llama/Llama-3.1-8B-Instruct",
		TargetQuantization: "FP16",
		DraftModel:         "Llama-3.2-1B-Instruct",
		DraftQuantization:  "FP8",
		DatasetType:        "code",
	}
}

// Config is the resolved CLI configuration.
type Config struct {
	DB            string           `mapstructure:"db"`
	DBSecret      string           `mapstructure:"db_secret"`
	DataDir       string           `mapstructure:"data_dir"`
	LogLevel      string           `mapstructure:"log_level"`
	LogFormat     string           `mapstructure:"log_format"`
	AWSRegion     string           `mapstructure:"aws_region"`
	S3Concurrency int              `mapstructure:"s3_concurrency"`
	LoadTest      LoadTestDefaults `mapstructure:"load_test"`
}

// New returns a viper instance with defaults and environment binding set up.
// Each call returns an independent instance; nothing is registered globally.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	lt := DefaultLoadTestDefaults()
	v.SetDefault("db", "specbench.db")
	v.SetDefault("db_secret", "")
	v.SetDefault("data_dir", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("aws_region", "")
	v.SetDefault("s3_concurrency", 8)
	v.SetDefault("load_test.target_model", lt.TargetModel)
	v.SetDefault("load_test.target_quantization", lt.TargetQuantization)
	v.SetDefault("load_test.draft_model", lt.DraftModel)
	v.SetDefault("load_test.draft_quantization", lt.DraftQuantization)
	v.SetDefault("load_test.dataset_type", lt.DatasetType)
	return v
}

// BindFlags binds each flag to the config key of the same name, with dashes
// mapped to underscores ("data-dir" -> "data_dir").
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	var errs []error
	flags.VisitAll(func(f *pflag.Flag) {
		key := strings.ReplaceAll(f.Name, "-", "_")
		if err := v.BindPFlag(key, f); err != nil {
			errs = append(errs, fmt.Errorf("bind flag %s: %w", f.Name, err))
		}
	})
	return errors.Join(errs...)
}

// Load reads the optional config file and decodes the merged settings.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports settings that cannot be used.
func (c *Config) Validate() error {
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q: want text or json", c.LogFormat)
	}
	if c.S3Concurrency < 1 {
		return fmt.Errorf("invalid s3 concurrency %d: must be at least 1", c.S3Concurrency)
	}
	return nil
}
