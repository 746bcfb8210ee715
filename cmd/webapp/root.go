package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Alp4ka/cursorpaging/internal/webapp/config"
	"github.com/Alp4ka/cursorpaging/internal/webapp/logging"
)

var (
	cfgFile string
	verbose bool
	cfg     config.Config
	logger  *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "webapp",
	Short: "Data record API with cursor based paging",
	Long: `webapp serves data records page by page. Every page links to the
following one with an opaque, encrypted cursor.

Example usage:
  webapp seed --count 200      # Insert 200 records
  webapp serve                 # Serve the API on :8080
  curl 'localhost:8080/api/v1/datarecord?pageSize=5'`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "YAML config file, CURSORPAGING_* variables override it")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging (CURSORPAGING_LOGGING_VERBOSE)")
}

func initConfig() error {
	var err error

	// The verbose flag is bound to logging.verbose.
	cfg, err = config.Load(cfgFile, rootCmd.PersistentFlags())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger = logging.Setup(cfg.Logging.Format, cfg.Logging.Level, cfg.Logging.Verbose, os.Stderr)
	logger.Debug("configuration loaded",
		slog.String("driver", cfg.Database.Driver),
		slog.String("address", cfg.Server.Address),
		slog.Int("default_page_size", cfg.Paging.DefaultPageSize),
		slog.Int("max_page_size", cfg.Paging.MaxPageSize),
	)

	return nil
}
