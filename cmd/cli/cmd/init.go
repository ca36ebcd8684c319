package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/accelbench/specbench/internal/database"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the benchmark tables",
	Long: `Create every table of the benchmark schema that does not exist yet.

The built-in schema matches the store dialect. --schema loads a YAML table
specification instead.

Examples:
  specbench init --db results.db
  specbench init --db postgres://bench@localhost/specbench
  specbench init --db results.db --schema tables.yaml`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

var initSchemaFile string

func init() {
	initCmd.Flags().StringVar(&initSchemaFile, "schema", "", "YAML table specification (default: built-in schema)")
	RootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	store, err := openStore(ctx)
	if err != nil {
		return err
	}

	specs, err := loadSpecs(store.Dialect(), initSchemaFile)
	if err != nil {
		return err
	}
	if err := store.CreateSchema(ctx, specs); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Schema ready: %d table(s) at %s\n", len(specs), store.Location())
	return nil
}

// loadSpecs reads a table specification file, or the built-in one for d when
// path is empty.
func loadSpecs(d database.Dialect, path string) (database.TableSpecs, error) {
	if path == "" {
		return database.DefaultTableSpecs(d)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open schema file: %w", err)
	}
	defer f.Close()
	return database.LoadTableSpecs(f)
}
