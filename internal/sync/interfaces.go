package sync

import (
	"context"

	"github.com/rentfleet/fleet-sync/internal/document"
)

//go:generate mockgen -destination=mocks/mock_sink.go -package=mocks -source=interfaces.go Sink

// Params are the named parameters of a source query.
type Params map[string]any

// Merge returns a new Params holding p overlaid with other.
func (p Params) Merge(other map[string]any) Params {
	merged := make(Params, len(p)+len(other))
	for k, v := range p {
		merged[k] = v
	}
	for k, v := range other {
		merged[k] = v
	}
	return merged
}

// Page selects a window of a query's ordered result.
type Page struct {
	Offset int
	Limit  int
}

// Query is a prepared, parameterized query that returns typed rows one page
// at a time. Rows must come back in a stable order so that consecutive pages
// neither skip nor repeat rows.
type Query[R any] interface {
	Fetch(ctx context.Context, params Params, page Page) ([]R, error)
}

// QueryFunc adapts a function to the Query interface.
type QueryFunc[R any] func(ctx context.Context, params Params, page Page) ([]R, error)

// Fetch implements Query.
func (f QueryFunc[R]) Fetch(ctx context.Context, params Params, page Page) ([]R, error) {
	return f(ctx, params, page)
}

// Sink persists documents. Upsert writes every document keyed by its ID,
// fully replacing any stored document with the same ID.
type Sink interface {
	Upsert(ctx context.Context, docs []document.Document) error
}

// MapFunc turns one source row into zero or more documents.
type MapFunc[R any] func(row R) []document.Document
