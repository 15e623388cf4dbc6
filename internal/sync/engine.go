package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/rentfleet/fleet-sync/internal/document"
	"github.com/rentfleet/fleet-sync/internal/otel"
	"github.com/rentfleet/fleet-sync/internal/telemetry"
)

// ErrInvalidConfig is returned when a sync is started with an unusable
// configuration.
var ErrInvalidConfig = errors.New("invalid sync configuration")

// Config describes one paginated sync of a query into a sink.
type Config[R any] struct {
	// Name labels logs, spans and metrics (usually the job name).
	Name string

	// Query is the paginated row source.
	Query Query[R]

	// Params are passed to every page fetch.
	Params Params

	// BatchSize is the page size, at least 1.
	BatchSize int

	// Map turns a row into the documents to write.
	Map MapFunc[R]
}

// Result summarizes a completed sync.
type Result struct {
	Pages     int
	Rows      int
	Documents int
	Duration  time.Duration
}

// Add accumulates other into r.
func (r *Result) Add(other *Result) {
	if other == nil {
		return
	}
	r.Pages += other.Pages
	r.Rows += other.Rows
	r.Documents += other.Documents
	r.Duration += other.Duration
}

// Option configures a sync run
type Option func(*options)

type options struct {
	tracer  trace.Tracer
	metrics *telemetry.SyncMetrics
}

// WithTracer wraps every page in a span
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) {
		o.tracer = tracer
	}
}

// WithMetrics records row and document counters
func WithMetrics(metrics *telemetry.SyncMetrics) Option {
	return func(o *options) {
		o.metrics = metrics
	}
}

func (c *Config[R]) validate(sink Sink) error {
	switch {
	case c.Query == nil:
		return fmt.Errorf("%w: query is required", ErrInvalidConfig)
	case c.Map == nil:
		return fmt.Errorf("%w: map function is required", ErrInvalidConfig)
	case sink == nil:
		return fmt.Errorf("%w: sink is required", ErrInvalidConfig)
	case c.BatchSize < 1:
		return fmt.Errorf("%w: batch size must be at least 1, got %d", ErrInvalidConfig, c.BatchSize)
	}
	return nil
}

// Sync pages through cfg.Query and upserts the mapped documents into sink.
//
// Each page of BatchSize rows is fetched with cfg.Params, every row is
// mapped, and the flattened documents are upserted before the next page is
// requested, so at most one page is in flight. The loop ends on the first
// page holding fewer than BatchSize rows. Rows that map to no documents are
// skipped. Any fetch or upsert error aborts the sync and is returned; the
// context is checked between pages. Because document IDs are deterministic
// and writes are full overwrites, re-running an aborted sync from the start
// is safe.
func Sync[R any](ctx context.Context, sink Sink, cfg Config[R], opts ...Option) (*Result, error) {
	if err := cfg.validate(sink); err != nil {
		return nil, err
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	start := time.Now()
	result := &Result{}
	offset := 0

	for {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("sync %s cancelled at offset %d: %w", cfg.Name, offset, err)
		}

		n, written, err := syncPage(ctx, sink, &cfg, o, offset)
		if err != nil {
			result.Duration = time.Since(start)
			return result, err
		}

		result.Pages++
		result.Rows += n
		result.Documents += written

		if n < cfg.BatchSize {
			break
		}
		offset += cfg.BatchSize
	}

	result.Duration = time.Since(start)
	slog.DebugContext(ctx, "Sync finished",
		"sync", cfg.Name,
		"pages", result.Pages,
		"rows", result.Rows,
		"documents", result.Documents,
		"duration", result.Duration)

	return result, nil
}

// syncPage fetches, maps and writes the page starting at offset. It returns
// the number of rows read and documents written.
func syncPage[R any](
	ctx context.Context,
	sink Sink,
	cfg *Config[R],
	o *options,
	offset int,
) (int, int, error) {
	ctx, span := otel.StartSpan(ctx, o.tracer, "sync.page",
		trace.WithAttributes(
			otel.AttrSyncName.String(cfg.Name),
			attribute.Int("pagination.offset", offset),
			otel.AttrPageSize.Int(cfg.BatchSize),
		),
	)
	defer span.End()

	rows, err := cfg.Query.Fetch(ctx, cfg.Params, Page{Offset: offset, Limit: cfg.BatchSize})
	if err != nil {
		otel.RecordError(span, err)
		return 0, 0, fmt.Errorf("failed to fetch %s page at offset %d: %w", cfg.Name, offset, err)
	}
	o.metrics.RecordRowsRead(ctx, cfg.Name, int64(len(rows)))

	docs := make([]document.Document, 0, len(rows))
	for _, row := range rows {
		docs = append(docs, cfg.Map(row)...)
	}
	span.SetAttributes(otel.AttrResultCount.Int(len(docs)))

	if len(docs) == 0 {
		return len(rows), 0, nil
	}

	if err := sink.Upsert(ctx, docs); err != nil {
		otel.RecordError(span, err)
		return len(rows), 0, fmt.Errorf("failed to upsert %d %s documents at offset %d: %w",
			len(docs), cfg.Name, offset, err)
	}
	o.metrics.RecordDocumentsWritten(ctx, cfg.Name, int64(len(docs)))

	return len(rows), len(docs), nil
}
