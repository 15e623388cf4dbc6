package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rentfleet/fleet-sync/internal/db"
	"github.com/rentfleet/fleet-sync/internal/source"
	"github.com/rentfleet/fleet-sync/internal/status"
	"github.com/rentfleet/fleet-sync/internal/store"
	"github.com/rentfleet/fleet-sync/internal/sync"
	"github.com/rentfleet/fleet-sync/internal/sync/coordinator"
	"github.com/rentfleet/fleet-sync/internal/sync/jobs"
	"github.com/rentfleet/fleet-sync/internal/telemetry"
)

// AppComponents groups the sync components shared by the run and serve commands
//
//nolint:revive // This name is fine
type AppComponents struct {
	// Runner runs the entity jobs
	Runner *jobs.Runner

	// Registry holds the status of every job run
	Registry *status.Registry

	// Coordinator schedules the global jobs and serves on-demand triggers
	Coordinator coordinator.Coordinator

	// Telemetry owns the tracer and meter providers
	Telemetry *telemetry.Telemetry

	// Sink is the document store the jobs write to
	Sink sync.Sink

	readiness func(ctx context.Context) error
	closers   []func(ctx context.Context) error
}

// NewComponents builds the sync components described by opts. The caller
// must call Close.
func NewComponents(ctx context.Context, opts ...Option) (*AppComponents, error) {
	b, err := baseConfig(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build base configuration: %w", err)
	}
	if b.config == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	return buildComponents(ctx, b)
}

func buildComponents(ctx context.Context, b *appConfig) (_ *AppComponents, retErr error) {
	c := &AppComponents{}
	defer func() {
		if retErr != nil {
			_ = c.Close(ctx)
		}
	}()

	tel, err := telemetry.New(ctx, b.config.Telemetry)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	c.Telemetry = tel
	c.closers = append(c.closers, tel.Shutdown)

	metrics, err := telemetry.NewSyncMetrics(tel.MeterProvider())
	if err != nil {
		return nil, fmt.Errorf("failed to create sync metrics: %w", err)
	}
	tracer := tel.Tracer()

	exec := b.executor
	if exec == nil {
		pool, err := db.NewPool(ctx, b.config.Source)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to source database: %w", err)
		}
		c.closers = append(c.closers, func(context.Context) error {
			pool.Close()
			return nil
		})
		c.readiness = pool.Ping
		exec = jobs.NewPostgresExecutor(pool, source.WithTracer(tracer))
	}

	switch {
	case b.sink != nil:
		c.Sink = b.sink
	case b.dryRun:
		slog.Info("Dry run: documents are kept in memory")
		c.Sink = store.NewMemory()
	default:
		s, err := store.New(ctx, b.config, tracer)
		if err != nil {
			return nil, fmt.Errorf("failed to create document store: %w", err)
		}
		c.Sink = s
		c.closers = append(c.closers, func(context.Context) error { return s.Close() })
	}

	c.Runner, err = jobs.NewRunner(exec, c.Sink, b.config.Jobs,
		jobs.WithTracer(tracer),
		jobs.WithMetrics(metrics),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create job runner: %w", err)
	}

	var persistence status.StatusPersistence
	if b.statusDir != "" {
		persistence = status.NewFileStatusPersistence(b.statusDir)
	}
	c.Registry = status.NewRegistry(persistence)
	if err := c.Registry.Load(ctx); err != nil {
		return nil, fmt.Errorf("failed to load job status: %w", err)
	}

	c.Coordinator = coordinator.New(c.Runner, c.Registry, coordinator.SchedulesFromConfig(b.config.Jobs))

	slog.Info("Sync components initialized",
		"sink", b.config.GetSinkType(),
		"dry_run", b.dryRun,
		"status_dir", b.statusDir)
	return c, nil
}

// CheckReadiness pings the source database when one is connected
func (c *AppComponents) CheckReadiness(ctx context.Context) error {
	if c.readiness == nil {
		return nil
	}
	return c.readiness(ctx)
}

// Close releases the components in reverse order of creation
func (c *AppComponents) Close(ctx context.Context) error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}
