// Command lemur loads CSV files into lemurdb relations and runs simple queries over them.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"mit.edu/dsg/lemurdb"
	"mit.edu/dsg/lemurdb/config"
	"mit.edu/dsg/lemurdb/logging"
)

var (
	configPath string
	dataDir    string

	cfg *config.Config
	db  *lemurdb.LemurDB
)

var rootCmd = &cobra.Command{
	Use:           "lemur",
	Short:         "lemurdb command line",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(config.EnvPrefix, configPath)
		if err != nil {
			return err
		}
		if dataDir != "" {
			cfg.DataDir = dataDir
		}
		logging.Init(cfg.Logging())
		db, err = lemurdb.Open(cfg.DataDir)
		return err
	},
}

// execute runs the root command and closes the database. Cobra skips post-run hooks when a command fails.
func execute() error {
	err := rootCmd.Execute()
	if db != nil {
		err = errors.Join(err, db.Close())
		db = nil
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a config file (yaml, json or toml)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "directory holding the catalog and relation files")

	rootCmd.AddCommand(importCmd(), tablesCmd(), dropCmd(), scanCmd(), countCmd(), joinCmd())
}

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
