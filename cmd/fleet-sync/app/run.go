package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	syncapp "github.com/rentfleet/fleet-sync/internal/app"
	"github.com/rentfleet/fleet-sync/internal/sync/jobs"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <job>",
		Short: "Run one sync job and exit",
		Long: fmt.Sprintf(`Run one sync job to completion and print its summary as JSON.

Jobs: %s. The work-orders job syncs one service company and
requires --tenant.

Examples:
  fleet-sync run users --config config.yaml
  fleet-sync run work-orders --tenant 42 --config config.yaml
  fleet-sync run assets --dry-run --config config.yaml`, strings.Join(jobs.Names(), ", ")),
		Args:      cobra.ExactArgs(1),
		ValidArgs: jobs.Names(),
		RunE:      runJob,
	}

	addConfigFlag(cmd, false)
	cmd.Flags().String("tenant", "", "Service company id (work-orders only)")
	cmd.Flags().Bool("dry-run", false, "Read and map rows but keep documents in memory")

	return cmd
}

func runJob(cmd *cobra.Command, args []string) error {
	job := args[0]

	tenantID, err := cmd.Flags().GetString("tenant")
	if err != nil {
		return fmt.Errorf("failed to get tenant flag: %w", err)
	}
	dryRun, err := cmd.Flags().GetBool("dry-run")
	if err != nil {
		return fmt.Errorf("failed to get dry-run flag: %w", err)
	}
	if tenantID != "" && job != jobs.JobWorkOrders {
		return fmt.Errorf("--tenant only applies to %s", jobs.JobWorkOrders)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	components, err := syncapp.NewComponents(ctx,
		syncapp.WithConfig(cfg),
		syncapp.WithDryRun(dryRun),
	)
	if err != nil {
		return err
	}
	defer func() {
		if err := components.Close(context.WithoutCancel(ctx)); err != nil {
			slog.Error("Failed to release components", "error", err)
		}
	}()

	summary, err := components.Runner.RunJob(ctx, job, jobs.Args{TenantID: tenantID})
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to format summary: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return err
}
