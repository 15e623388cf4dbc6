package app

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/rentfleet/fleet-sync/database"
)

func newMigrateUpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		Long: `Apply every pending migration to bring the document store schema up to date.

Example:
  fleet-sync migrate up --config config.yaml --yes`,
		RunE: runMigrateUp,
	}
}

func runMigrateUp(cmd *cobra.Command, _ []string) error {
	dbCfg, m, err := openMigrator(cmd)
	if err != nil {
		return err
	}
	defer closeMigrator(m)

	ok, err := confirmed(cmd, fmt.Sprintf("About to apply migrations to %s@%s:%d/%s. Continue?",
		dbCfg.User, dbCfg.Host, dbCfg.Port, dbCfg.Database))
	if err != nil {
		return err
	}
	if !ok {
		slog.Info("Migration cancelled by user")
		return nil
	}

	slog.Info("Applying database migrations...")
	version, err := database.MigrateUp(m)
	if err != nil {
		return err
	}

	slog.Info("Migrations applied successfully", "version", version)
	return nil
}
