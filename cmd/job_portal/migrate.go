package main

import (
	"github.com/cockroachdb/errors"
	"github.com/jonathan/job-portal/internal/config"
	"github.com/jonathan/job-portal/internal/db"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadRuntime(false)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	if cfg.Store != config.StorePostgres {
		return errors.Newf("migrate requires the postgres store, got %q", cfg.Store)
	}

	database, err := db.Connect(cmd.Context(), cfg.Database.URL, db.DefaultPoolConfig(), logger)
	if err != nil {
		return err
	}
	defer func() { _ = database.Close() }()

	applied, err := db.Migrate(cmd.Context(), database.SQL(), logger)
	if err != nil {
		return err
	}
	cmd.Printf("Applied %d migration(s)\n", applied)
	return nil
}
