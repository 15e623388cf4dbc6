package app

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	syncapp "github.com/rentfleet/fleet-sync/internal/app"
)

const defaultGracefulTimeout = 30 * time.Second

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the job scheduler and the HTTP API",
		Long: `Run the global jobs on their configured intervals and serve the HTTP API:

  GET  /health, /readiness, /version
  GET  /v1/jobs                                  status of every job
  POST /v1/jobs/{job}                            run a global job now
  POST /v1/tenants/{tenantID}/work-orders/sync   sync one tenant's work orders

See examples/ for sample configurations.`,
		RunE: runServe,
	}

	addConfigFlag(cmd, false)
	cmd.Flags().String("address", ":8080", "Address to listen on")
	cmd.Flags().String("status-dir", "", "Directory where job status is persisted (in memory when empty)")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	address, err := cmd.Flags().GetString("address")
	if err != nil {
		return fmt.Errorf("failed to get address flag: %w", err)
	}
	statusDir, err := cmd.Flags().GetString("status-dir")
	if err != nil {
		return fmt.Errorf("failed to get status-dir flag: %w", err)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	app, err := syncapp.NewSyncApp(cmd.Context(),
		syncapp.WithConfig(cfg),
		syncapp.WithAddress(address),
		syncapp.WithStatusDirectory(statusDir),
	)
	if err != nil {
		return fmt.Errorf("failed to build application: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if stopErr := app.Stop(defaultGracefulTimeout); stopErr != nil {
			slog.Error("Failed to stop application", "error", stopErr)
		}
		return err
	case <-quit:
	}

	return app.Stop(defaultGracefulTimeout)
}
