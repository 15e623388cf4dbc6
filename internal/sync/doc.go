// Package sync implements the paginated query-to-document-store engine used
// by every fleet-sync job.
//
// # Engine
//
// Sync walks a Query one page at a time using LIMIT/OFFSET windows of
// Config.BatchSize rows. Each row is turned into zero or more documents by
// Config.Map and the page's documents are written to a Sink in one Upsert
// call before the next page is requested. The loop stops after the first
// page that returns fewer rows than requested.
//
// # Interfaces
//
//   - Query: a typed, parameterized, paginated row source
//   - Sink: a document store with upsert-by-ID semantics
//   - MapFunc: the row to documents transformation of a job
//
// # Subpackages
//
// The sync/jobs subpackage defines the concrete jobs (assets, users,
// companies, work orders) and the sync/coordinator subpackage schedules
// them when fleet-sync runs as a long-lived service.
//
// # Failure Handling
//
// A fetch or upsert error aborts the sync. Writes are idempotent because
// document IDs are derived from the row's natural key, so a failed sync is
// recovered by running it again.
package sync
