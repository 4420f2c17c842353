package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sumire/tracker/internal/storage"
)

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	db, err := storage.Open(cmd.Context(), cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	if err := storage.Migrate(cmd.Context(), db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	logger.Info("migrations up to date", "driver", cfg.DatabaseDriver)
	return nil
}
