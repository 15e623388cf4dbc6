package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	// SyncMetricsMeterName is the name used for the sync metrics meter
	SyncMetricsMeterName = "github.com/rentfleet/fleet-sync/sync"
)

// SyncMetrics holds the OpenTelemetry instruments for sync jobs.
// A nil *SyncMetrics is valid and records nothing.
type SyncMetrics struct {
	jobDuration      metric.Float64Histogram
	rowsRead         metric.Int64Counter
	documentsWritten metric.Int64Counter
}

// NewSyncMetrics creates a new SyncMetrics instance with the given meter provider.
// If provider is nil, it returns nil (no-op metrics).
func NewSyncMetrics(provider metric.MeterProvider) (*SyncMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(SyncMetricsMeterName)

	jobDuration, err := meter.Float64Histogram(
		"fleet_sync_job_duration_seconds",
		metric.WithDescription("Duration of sync jobs in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 900, 1800),
	)
	if err != nil {
		return nil, err
	}

	rowsRead, err := meter.Int64Counter(
		"fleet_sync_rows_read_total",
		metric.WithDescription("Number of source rows read by sync jobs"),
		metric.WithUnit("{row}"),
	)
	if err != nil {
		return nil, err
	}

	documentsWritten, err := meter.Int64Counter(
		"fleet_sync_documents_written_total",
		metric.WithDescription("Number of documents upserted into the document store"),
		metric.WithUnit("{document}"),
	)
	if err != nil {
		return nil, err
	}

	return &SyncMetrics{
		jobDuration:      jobDuration,
		rowsRead:         rowsRead,
		documentsWritten: documentsWritten,
	}, nil
}

// RecordJobDuration records the duration of a sync job run
func (m *SyncMetrics) RecordJobDuration(ctx context.Context, job string, duration time.Duration, success bool) {
	if m == nil || m.jobDuration == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("job", job),
		attribute.Bool("success", success),
	}

	m.jobDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordRowsRead adds n rows read from the source for a job
func (m *SyncMetrics) RecordRowsRead(ctx context.Context, job string, n int64) {
	if m == nil || m.rowsRead == nil || n == 0 {
		return
	}
	m.rowsRead.Add(ctx, n, metric.WithAttributes(attribute.String("job", job)))
}

// RecordDocumentsWritten adds n documents written to the sink for a job
func (m *SyncMetrics) RecordDocumentsWritten(ctx context.Context, job string, n int64) {
	if m == nil || m.documentsWritten == nil || n == 0 {
		return
	}
	m.documentsWritten.Add(ctx, n, metric.WithAttributes(attribute.String("job", job)))
}
