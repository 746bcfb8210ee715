package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Alp4ka/cursorpaging/internal/webapp/store"
)

var seedCount int

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert generated data records",
	Long: `Insert generated data records. Names cycle through the NATO alphabet,
record n is created n days after 1999-01-02T10:15:30Z.`,
	Args: cobra.NoArgs,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().IntVar(&seedCount, "count", 100, "number of records to insert")
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	db, err := store.Open(cfg.Database, logger)
	if err != nil {
		return err
	}

	if err = store.Migrate(ctx, db); err != nil {
		return err
	}

	records, err := store.Seed(ctx, db, seedCount)
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "records seeded", slog.Int("count", len(records)))

	return nil
}
