package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver

	"github.com/rentfleet/fleet-sync/internal/document"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS documents (
    id         TEXT PRIMARY KEY,
    type       TEXT NOT NULL,
    tenant_id  TEXT NOT NULL,
    created_at TEXT NOT NULL,
    created_by TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    updated_by TEXT NOT NULL,
    data       TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS documents_tenant_type_idx ON documents (tenant_id, type);`

const sqliteUpsertSQL = `
INSERT INTO documents (id, type, tenant_id, created_at, created_by, updated_at, updated_by, data)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    type       = excluded.type,
    tenant_id  = excluded.tenant_id,
    created_at = excluded.created_at,
    created_by = excluded.created_by,
    updated_at = excluded.updated_at,
    updated_by = excluded.updated_by,
    data       = excluded.data`

const sqliteGetSQL = `
SELECT id, type, tenant_id, created_at, created_by, updated_at, updated_by, data
FROM documents WHERE id = ?`

// SQLite stores documents in an embedded SQLite database file.
type SQLite struct {
	db *sql.DB
}

var _ Store = (*SQLite)(nil)

// NewSQLite opens (creating if needed) the database at path and ensures
// the documents table exists.
func NewSQLite(ctx context.Context, path string) (*SQLite, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// SQLite allows a single writer; one connection also keeps ":memory:"
	// databases alive for the lifetime of the store.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create documents table: %w", err)
	}

	slog.Info("SQLite document store opened", "path", path)
	return &SQLite{db: db}, nil
}

// Upsert writes docs in one transaction.
func (s *SQLite) Upsert(ctx context.Context, docs []document.Document) error {
	if len(docs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			slog.WarnContext(ctx, "Failed to roll back document upsert", "error", rbErr)
		}
	}()

	stmt, err := tx.PrepareContext(ctx, sqliteUpsertSQL)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, d := range docs {
		data, err := d.MarshalData()
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx,
			d.ID, string(d.Type), d.TenantID,
			formatTime(d.CreatedAt), d.CreatedBy,
			formatTime(d.UpdatedAt), d.UpdatedBy,
			string(data),
		); err != nil {
			return fmt.Errorf("failed to upsert document %s: %w", d.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Get implements Store.
func (s *SQLite) Get(ctx context.Context, id string) (document.Document, error) {
	var (
		d                    document.Document
		docType, data        string
		createdAt, updatedAt string
	)
	err := s.db.QueryRowContext(ctx, sqliteGetSQL, id).Scan(
		&d.ID, &docType, &d.TenantID,
		&createdAt, &d.CreatedBy, &updatedAt, &d.UpdatedBy,
		&data,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return document.Document{}, ErrNotFound
	}
	if err != nil {
		return document.Document{}, fmt.Errorf("failed to get document %s: %w", id, err)
	}

	if d.CreatedAt, err = parseTime(createdAt); err != nil {
		return document.Document{}, err
	}
	if d.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return document.Document{}, err
	}
	d.Type = document.Type(docType)
	if d.Data, err = document.DecodePayload(d.Type, []byte(data)); err != nil {
		return document.Document{}, err
	}
	return d, nil
}

// Count returns the number of stored documents.
func (s *SQLite) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return n, nil
}

// Close implements Store.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp %q: %w", s, err)
	}
	return t, nil
}
