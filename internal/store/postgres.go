package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/trace"

	"github.com/rentfleet/fleet-sync/internal/document"
	"github.com/rentfleet/fleet-sync/internal/otel"
)

const postgresUpsertSQL = `
INSERT INTO documents (id, type, tenant_id, created_at, created_by, updated_at, updated_by, data)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (id) DO UPDATE SET
    type       = EXCLUDED.type,
    tenant_id  = EXCLUDED.tenant_id,
    created_at = EXCLUDED.created_at,
    created_by = EXCLUDED.created_by,
    updated_at = EXCLUDED.updated_at,
    updated_by = EXCLUDED.updated_by,
    data       = EXCLUDED.data`

const postgresGetSQL = `
SELECT id, type, tenant_id, created_at, created_by, updated_at, updated_by, data
FROM documents WHERE id = $1`

// Postgres stores documents in the documents table of a PostgreSQL database.
type Postgres struct {
	pool   *pgxpool.Pool
	tracer trace.Tracer
}

var _ Store = (*Postgres)(nil)

// PostgresOption configures a Postgres store
type PostgresOption func(*Postgres)

// WithPostgresTracer wraps every upsert in a span
func WithPostgresTracer(tracer trace.Tracer) PostgresOption {
	return func(p *Postgres) {
		p.tracer = tracer
	}
}

// NewPostgres creates a store backed by pool. The caller owns the pool
// unless Close is called, which closes it.
func NewPostgres(pool *pgxpool.Pool, opts ...PostgresOption) (*Postgres, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgx pool is required")
	}
	p := &Postgres{pool: pool}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Upsert writes docs in one transaction using a single pgx batch.
func (p *Postgres) Upsert(ctx context.Context, docs []document.Document) (retErr error) {
	if len(docs) == 0 {
		return nil
	}

	ctx, span := otel.StartSpan(ctx, p.tracer, "store.upsert",
		trace.WithAttributes(
			otel.AttrSinkType.String("postgres"),
			otel.AttrResultCount.Int(len(docs)),
		),
	)
	defer func() {
		otel.RecordError(span, retErr)
		span.End()
	}()

	batch := &pgx.Batch{}
	for _, d := range docs {
		data, err := d.MarshalData()
		if err != nil {
			return err
		}
		batch.Queue(postgresUpsertSQL,
			d.ID, string(d.Type), d.TenantID,
			d.CreatedAt, d.CreatedBy, d.UpdatedAt, d.UpdatedBy,
			data)
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			slog.WarnContext(ctx, "Failed to roll back document upsert", "error", rbErr)
		}
	}()

	results := tx.SendBatch(ctx, batch)
	for i := range docs {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return fmt.Errorf("failed to upsert document %s: %w", docs[i].ID, err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("failed to close batch results: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Get implements Store.
func (p *Postgres) Get(ctx context.Context, id string) (document.Document, error) {
	var (
		d       document.Document
		docType string
		data    []byte
	)
	err := p.pool.QueryRow(ctx, postgresGetSQL, id).Scan(
		&d.ID, &docType, &d.TenantID,
		&d.CreatedAt, &d.CreatedBy, &d.UpdatedAt, &d.UpdatedBy,
		&data,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return document.Document{}, ErrNotFound
	}
	if err != nil {
		return document.Document{}, fmt.Errorf("failed to get document %s: %w", id, err)
	}

	d.Type = document.Type(docType)
	if d.Data, err = document.DecodePayload(d.Type, data); err != nil {
		return document.Document{}, err
	}
	return d, nil
}

// Close closes the underlying pool.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}
