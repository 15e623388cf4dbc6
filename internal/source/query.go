// Package source reads paginated rows from the relational database.
package source

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/trace"

	"github.com/rentfleet/fleet-sync/internal/otel"
	"github.com/rentfleet/fleet-sync/internal/sync"
)

// Parameter names reserved for pagination. Query text refers to them as
// @limit and @offset.
const (
	ParamLimit  = "limit"
	ParamOffset = "offset"
)

// Querier runs a SQL query. *pgxpool.Pool, *pgx.Conn and pgx.Tx satisfy it.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Query is a named-parameter SQL query whose rows are scanned into R by
// column name. The SQL must end with LIMIT @limit OFFSET @offset and order
// its rows by a unique key.
type Query[R any] struct {
	querier Querier
	name    string
	sql     string
	tracer  trace.Tracer
}

var _ sync.Query[struct{}] = (*Query[struct{}])(nil)

// Option configures a Query
type Option func(*options)

type options struct {
	tracer trace.Tracer
}

// WithTracer wraps every fetch in a span
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) {
		o.tracer = tracer
	}
}

// NewQuery prepares a query named name for logging and tracing.
func NewQuery[R any](querier Querier, name, sql string, opts ...Option) *Query[R] {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	return &Query[R]{querier: querier, name: name, sql: sql, tracer: o.tracer}
}

// Args builds the named arguments for one page.
func Args(params sync.Params, page sync.Page) pgx.NamedArgs {
	args := make(pgx.NamedArgs, len(params)+2)
	for k, v := range params {
		args[k] = v
	}
	args[ParamLimit] = page.Limit
	args[ParamOffset] = page.Offset
	return args
}

// Fetch implements sync.Query.
func (q *Query[R]) Fetch(ctx context.Context, params sync.Params, page sync.Page) ([]R, error) {
	ctx, span := otel.StartSpan(ctx, q.tracer, "source.fetch",
		trace.WithAttributes(
			otel.AttrSyncName.String(q.name),
			otel.AttrPageSize.Int(page.Limit),
		),
	)
	defer span.End()

	rows, err := q.querier.Query(ctx, q.sql, Args(params, page))
	if err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to query %s: %w", q.name, err)
	}

	out, err := pgx.CollectRows(rows, pgx.RowToStructByName[R])
	if err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to scan %s rows: %w", q.name, err)
	}

	span.SetAttributes(otel.AttrResultCount.Int(len(out)))
	return out, nil
}
