// Package jobs defines the entity sync jobs: the source query of each
// entity, the mapping from its rows to documents, and the Runner that
// drives them through the sharder and the sync engine.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/rentfleet/fleet-sync/internal/config"
	"github.com/rentfleet/fleet-sync/internal/otel"
	"github.com/rentfleet/fleet-sync/internal/shard"
	"github.com/rentfleet/fleet-sync/internal/sync"
	"github.com/rentfleet/fleet-sync/internal/telemetry"
)

// Job names accepted by RunJob.
const (
	JobAssets     = "assets"
	JobUsers      = "users"
	JobCompanies  = "companies"
	JobWorkOrders = "work-orders"
)

var (
	// ErrUnknownJob is returned by RunJob for a name it does not know.
	ErrUnknownJob = errors.New("unknown job")

	// ErrTenantRequired is returned when a per-tenant job is run without a tenant.
	ErrTenantRequired = errors.New("tenant id is required")

	// ErrInvalidTenant is returned for a tenant id that is not a company id.
	ErrInvalidTenant = errors.New("invalid tenant id")
)

// GlobalJobs are the jobs that sync a whole table and can be scheduled.
func GlobalJobs() []string {
	return []string{JobAssets, JobUsers, JobCompanies}
}

// Names lists every job RunJob accepts.
func Names() []string {
	return append(GlobalJobs(), JobWorkOrders)
}

// Args carries the per-run arguments of a job.
type Args struct {
	// TenantID selects the service company for work-orders.
	TenantID string
}

// Summary describes a finished job run.
type Summary struct {
	Job       string        `json:"job"`
	RunID     string        `json:"run_id"`
	TenantID  string        `json:"tenant_id,omitempty"`
	Shards    int           `json:"shards"`
	Pages     int           `json:"pages"`
	Rows      int           `json:"rows"`
	Documents int           `json:"documents"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
}

type runIDKey struct{}

// WithRunID returns a context whose job run uses id as its run id instead
// of a generated one.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey{}, id)
}

func runIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(runIDKey{}).(string); ok && id != "" {
		return id
	}
	return uuid.NewString()
}

// Runner runs the entity jobs against one executor and one sink.
type Runner struct {
	exec          Executor
	sink          sync.Sink
	jobs          config.JobsConfig
	now           func() time.Time
	tracer        trace.Tracer
	metrics       *telemetry.SyncMetrics
	retryInterval time.Duration
}

// Option configures a Runner
type Option func(*Runner)

// WithClock sets the clock used for document timestamps
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		r.now = now
	}
}

// WithTracer enables tracing of job runs and pages
func WithTracer(tracer trace.Tracer) Option {
	return func(r *Runner) {
		r.tracer = tracer
	}
}

// WithMetrics enables job metrics
func WithMetrics(metrics *telemetry.SyncMetrics) Option {
	return func(r *Runner) {
		r.metrics = metrics
	}
}

// WithRetryInterval sets the first backoff delay between shard retries
func WithRetryInterval(d time.Duration) Option {
	return func(r *Runner) {
		r.retryInterval = d
	}
}

// NewRunner creates a Runner.
func NewRunner(exec Executor, sink sync.Sink, jobs config.JobsConfig, opts ...Option) (*Runner, error) {
	if exec == nil {
		return nil, fmt.Errorf("executor is required")
	}
	if sink == nil {
		return nil, fmt.Errorf("sink is required")
	}

	r := &Runner{
		exec: exec,
		sink: sink,
		jobs: jobs,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// RunJob runs the job called name.
func (r *Runner) RunJob(ctx context.Context, name string, args Args) (*Summary, error) {
	switch name {
	case JobAssets:
		return r.SyncAssets(ctx)
	case JobUsers:
		return r.SyncUsers(ctx)
	case JobCompanies:
		return r.SyncCompanies(ctx)
	case JobWorkOrders:
		return r.SyncWorkOrders(ctx, args.TenantID)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownJob, name)
	}
}

// runSpec is the per-job wiring handed to runSharded.
type runSpec[R any] struct {
	job         string
	tenantID    string
	params      sync.Params
	shards      int
	concurrency int
	retries     int
	batchSize   int
	query       sync.Query[R]

	// mapper builds the row mapping for a run; now is fixed for the run so
	// that every document of the run carries the same timestamps.
	mapper func(now time.Time) sync.MapFunc[R]
}

func runSharded[R any](ctx context.Context, r *Runner, rs runSpec[R]) (_ *Summary, retErr error) {
	if rs.shards < 1 {
		return nil, fmt.Errorf("%s: %w", rs.job, shard.ErrInvalidShardCount)
	}

	summary := &Summary{
		Job:       rs.job,
		RunID:     runIDFrom(ctx),
		TenantID:  rs.tenantID,
		Shards:    rs.shards,
		StartedAt: r.now(),
	}
	logger := slog.With("job", rs.job, "run_id", summary.RunID)
	if rs.tenantID != "" {
		logger = logger.With("tenant_id", rs.tenantID)
	}

	ctx, span := otel.StartSpan(ctx, r.tracer, "job.run",
		trace.WithAttributes(
			otel.AttrJobName.String(rs.job),
			otel.AttrRunID.String(summary.RunID),
			otel.AttrShardCount.Int(rs.shards),
			otel.AttrTenantID.String(rs.tenantID),
		),
	)
	start := time.Now()
	defer func() {
		r.metrics.RecordJobDuration(ctx, rs.job, time.Since(start), retErr == nil)
		otel.RecordError(span, retErr)
		span.End()
	}()

	logger.InfoContext(ctx, "Starting sync job",
		"shards", rs.shards,
		"concurrency", rs.concurrency,
		"batch_size", rs.batchSize)

	mapFn := rs.mapper(summary.StartedAt)
	engineOpts := []sync.Option{sync.WithTracer(r.tracer), sync.WithMetrics(r.metrics)}

	// One slot per shard; each shard only writes its own index.
	results := make([]*sync.Result, rs.shards)
	err := shard.Run(ctx, shard.Config{
		NumberOfShards:       rs.shards,
		Concurrency:          rs.concurrency,
		Retries:              rs.retries,
		RetryInitialInterval: r.retryInterval,
	}, func(ctx context.Context, d shard.Descriptor) error {
		ctx, span := otel.StartSpan(ctx, r.tracer, "job.shard",
			trace.WithAttributes(
				otel.AttrJobName.String(rs.job),
				otel.AttrShard.Int(d.CurrentShard),
				otel.AttrShardCount.Int(d.NumberOfShards),
			),
		)
		defer span.End()

		res, err := sync.Sync(ctx, r.sink, sync.Config[R]{
			Name:      rs.job,
			Query:     rs.query,
			Params:    sync.Params(d.Params()).Merge(rs.params),
			BatchSize: rs.batchSize,
			Map:       mapFn,
		}, engineOpts...)
		results[d.CurrentShard] = res
		if err != nil {
			otel.RecordError(span, err)
			return err
		}

		logger.DebugContext(ctx, "Shard finished",
			"shard", d.String(),
			"rows", res.Rows,
			"documents", res.Documents)
		return nil
	})

	total := &sync.Result{}
	for _, res := range results {
		total.Add(res)
	}
	summary.Pages = total.Pages
	summary.Rows = total.Rows
	summary.Documents = total.Documents
	summary.Duration = time.Since(start)

	if err != nil {
		logger.ErrorContext(ctx, "Sync job failed", "error", err, "documents", summary.Documents)
		return summary, fmt.Errorf("%s sync failed: %w", rs.job, err)
	}

	logger.InfoContext(ctx, "Sync job completed",
		"pages", summary.Pages,
		"rows", summary.Rows,
		"documents", summary.Documents,
		"duration", summary.Duration)
	return summary, nil
}
