package app

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/rentfleet/fleet-sync/database"
)

func newMigrateDownCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "down",
		Short: "Revert migrations",
		Long: `Revert migrations of the document store schema.
WARNING: This operation can result in data loss. Use with caution.

Examples:
  # Migrate down by 1 step
  fleet-sync migrate down --config config.yaml --num-steps 1 --yes

  # Migrate down all the way (WARNING: drops the documents table)
  fleet-sync migrate down --config config.yaml --yes`,
		RunE: runMigrateDown,
	}
}

func runMigrateDown(cmd *cobra.Command, _ []string) error {
	numSteps, err := cmd.Flags().GetUint("num-steps")
	if err != nil {
		return fmt.Errorf("failed to get num-steps flag: %w", err)
	}

	_, m, err := openMigrator(cmd)
	if err != nil {
		return err
	}
	defer closeMigrator(m)

	prompt := "WARNING: This will migrate down ALL steps and drop every synced document. Continue?"
	if numSteps > 0 {
		prompt = fmt.Sprintf("WARNING: This will migrate down %d step(s) and may result in data loss. Continue?", numSteps)
	}
	ok, err := confirmed(cmd, prompt)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("migration cancelled by user")
	}

	version, err := database.MigrateDown(m, numSteps)
	if err != nil {
		return err
	}

	slog.Info("Migration completed successfully", "version", version)
	return nil
}
