// Package store contains the document sinks the sync engine writes to.
//
// Every implementation upserts by document ID with full-overwrite
// semantics: all columns of an existing document are replaced, nothing is
// merged. Documents are never deleted by the sync pipeline.
package store

import (
	"context"
	"errors"

	"github.com/rentfleet/fleet-sync/internal/document"
)

// ErrNotFound is returned by Get when no document has the requested ID.
var ErrNotFound = errors.New("document not found")

// Store is a document sink that can also read documents back.
type Store interface {
	// Upsert writes docs keyed by ID. Later documents in the slice win
	// over earlier ones with the same ID.
	Upsert(ctx context.Context, docs []document.Document) error

	// Get returns the document with the given ID or ErrNotFound.
	Get(ctx context.Context, id string) (document.Document, error)

	// Close releases the resources held by the store.
	Close() error
}
