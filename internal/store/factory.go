package store

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/trace"

	"github.com/rentfleet/fleet-sync/internal/config"
	"github.com/rentfleet/fleet-sync/internal/db"
)

// New creates the store selected by cfg.Sink. The returned store must be
// closed by the caller.
func New(ctx context.Context, cfg *config.Config, tracer trace.Tracer) (Store, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	switch cfg.GetSinkType() {
	case config.SinkTypePostgres:
		pool, err := db.NewPool(ctx, cfg.GetSinkDatabase())
		if err != nil {
			return nil, fmt.Errorf("failed to connect to document store: %w", err)
		}
		return NewPostgres(pool, WithPostgresTracer(tracer))
	case config.SinkTypeSQLite:
		if cfg.Sink.SQLite == nil {
			return nil, fmt.Errorf("sqlite sink configuration is required")
		}
		return NewSQLite(ctx, cfg.Sink.SQLite.Path)
	case config.SinkTypeMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown sink type: %s", cfg.GetSinkType())
	}
}
