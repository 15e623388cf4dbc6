package app

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rentfleet/fleet-sync/database"
	"github.com/rentfleet/fleet-sync/internal/config"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Document store migration tool",
		Long: `Manage the schema of the PostgreSQL document store. Use with 'up' or 'down'.
The target is sink.postgres, or the source database when it is not set.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Usage()
		},
	}

	cmd.PersistentFlags().BoolP("yes", "y", false, "Answer yes to all questions")
	cmd.PersistentFlags().UintP("num-steps", "n", 0, "Number of steps to migrate (0 = all)")
	addConfigFlag(cmd, true)

	cmd.AddCommand(newMigrateUpCmd())
	cmd.AddCommand(newMigrateDownCmd())

	return cmd
}

// openMigrator loads the configuration and opens a migrator on the document store
func openMigrator(cmd *cobra.Command) (*config.DatabaseConfig, database.Migrator, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	if cfg.GetSinkType() != config.SinkTypePostgres {
		return nil, nil, fmt.Errorf("migrations only apply to the %s sink, configured sink is %s",
			config.SinkTypePostgres, cfg.GetSinkType())
	}

	dbCfg := cfg.GetSinkDatabase()
	if dbCfg == nil {
		return nil, nil, fmt.Errorf("database configuration is required")
	}

	connString, err := dbCfg.GetConnectionString()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build connection string: %w", err)
	}

	m, err := database.NewFromConnectionString(connString)
	if err != nil {
		return nil, nil, err
	}
	return dbCfg, m, nil
}

func closeMigrator(m database.Migrator) {
	srcErr, dbErr := m.Close()
	if srcErr != nil {
		slog.Warn("Failed to close migration source", "error", srcErr)
	}
	if dbErr != nil {
		slog.Warn("Failed to close migration database", "error", dbErr)
	}
}

// confirm asks prompt on out and reads a yes/no answer from in
func confirm(in io.Reader, out io.Writer, prompt string) bool {
	_, _ = fmt.Fprintf(out, "%s (yes/no): ", prompt)
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "yes" || answer == "y"
}

// confirmed reports whether the user passed --yes or agreed to prompt
func confirmed(cmd *cobra.Command, prompt string) (bool, error) {
	yes, err := cmd.Flags().GetBool("yes")
	if err != nil {
		return false, fmt.Errorf("failed to get yes flag: %w", err)
	}
	if yes {
		return true, nil
	}
	return confirm(cmd.InOrStdin(), cmd.OutOrStdout(), prompt), nil
}
