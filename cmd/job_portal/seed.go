package main

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/jonathan/job-portal/internal/accounts"
	"github.com/jonathan/job-portal/internal/catalog"
	"github.com/jonathan/job-portal/internal/config"
	"github.com/spf13/cobra"
)

var (
	seedFile          string
	seedAdminEmail    string
	seedAdminPassword string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load reference data and create the administrator account",
	Long: `Seed upserts statuses, skills and categories from a JSON document validated
against the bundled schema, then creates an administrator when --admin-email is given.`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringVar(&seedFile, "file", "schemas/reference_data.json", "Reference data document")
	seedCmd.Flags().StringVar(&seedAdminEmail, "admin-email", os.Getenv("ADMIN_EMAIL"), "Administrator email")
	seedCmd.Flags().StringVar(&seedAdminPassword, "admin-password", os.Getenv("ADMIN_PASSWORD"), "Administrator password")
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadRuntime(false)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	if cfg.Store == config.StoreMemory {
		return errors.New("seeding the in-memory store has no lasting effect")
	}

	doc, err := os.ReadFile(seedFile)
	if err != nil {
		return errors.Wrapf(err, "failed to read %s", seedFile)
	}
	data, err := catalog.ParseReferenceData(doc)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	st, err := openStore(ctx, cfg, true, logger)
	if err != nil {
		return err
	}
	defer func() { _ = st.close(ctx) }()

	res, err := catalog.NewService(st, logger).Seed(ctx, data)
	if err != nil {
		return err
	}
	cmd.Printf("Seeded %d status(es), %d skill(s), %d categor(ies)\n", res.Statuses, res.Skills, res.Categories)

	if seedAdminEmail == "" {
		return nil
	}
	created, err := accounts.NewService(st, &cfg.Password, nil, logger).EnsureAdmin(ctx, seedAdminEmail, seedAdminPassword)
	if err != nil {
		return err
	}
	if created {
		cmd.Printf("Created administrator %s\n", seedAdminEmail)
	} else {
		cmd.Printf("Administrator %s already exists\n", seedAdminEmail)
	}
	return nil
}
