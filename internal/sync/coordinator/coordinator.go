package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rentfleet/fleet-sync/internal/status"
	"github.com/rentfleet/fleet-sync/internal/sync/jobs"
)

//go:generate mockgen -destination=mocks/mock_job_runner.go -package=mocks -source=coordinator.go JobRunner,Coordinator

const (
	// basePollingInterval is the base interval at which the coordinator checks for due jobs
	basePollingInterval = time.Minute
	// pollingJitter is the maximum random offset (±15 seconds) applied to the polling interval
	pollingJitter = 15 * time.Second
)

// ErrAlreadyRunning is returned by Trigger when a run of the same job is in progress
var ErrAlreadyRunning = errors.New("job is already running")

// JobRunner runs a named sync job
type JobRunner interface {
	RunJob(ctx context.Context, name string, args jobs.Args) (*jobs.Summary, error)
}

// Coordinator schedules the global jobs and runs jobs on demand
type Coordinator interface {
	// Start runs the scheduling loop.
	// Blocks until the context is cancelled or Stop is called
	Start(ctx context.Context) error

	// Stop gracefully stops the scheduling loop
	Stop() error

	// Trigger runs a job now and waits for it to finish
	Trigger(ctx context.Context, job string, args jobs.Args) (*jobs.Summary, error)

	// Statuses returns the status of every known job
	Statuses() []status.JobStatus
}

type defaultCoordinator struct {
	runner    JobRunner
	registry  *status.Registry
	schedules []Schedule
	now       func() time.Time

	pollingInterval func() time.Duration

	// Lifecycle management
	mu         sync.Mutex
	cancelFunc context.CancelFunc
	done       chan struct{}
}

// Option is a function that configures the coordinator
type Option func(*defaultCoordinator)

// WithClock sets the clock used to decide which jobs are due
func WithClock(now func() time.Time) Option {
	return func(c *defaultCoordinator) {
		c.now = now
	}
}

// WithPollingInterval replaces the jittered polling interval
func WithPollingInterval(d time.Duration) Option {
	return func(c *defaultCoordinator) {
		c.pollingInterval = func() time.Duration { return d }
	}
}

// New creates a new coordinator. Every scheduled job is registered with
// the status registry.
func New(runner JobRunner, registry *status.Registry, schedules []Schedule, opts ...Option) Coordinator {
	c := &defaultCoordinator{
		runner:          runner,
		registry:        registry,
		schedules:       schedules,
		now:             time.Now,
		pollingInterval: calculatePollingInterval,
		done:            make(chan struct{}),
	}

	for _, opt := range opts {
		opt(c)
	}

	for _, s := range schedules {
		registry.Register(s.Job, s.Interval.String())
	}

	return c
}

// calculatePollingInterval returns the base polling interval with a random jitter applied.
func calculatePollingInterval() time.Duration {
	//nolint:gosec // G404: Non-cryptographic randomness is sufficient for polling jitter
	jitterOffset := time.Duration(rand.Int64N(int64(2*pollingJitter))) - pollingJitter
	return basePollingInterval + jitterOffset
}

// Start begins background scheduling of the global jobs
func (c *defaultCoordinator) Start(ctx context.Context) error {
	slog.Info("Starting background sync coordinator", "job_count", len(c.schedules))

	coordCtx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.cancelFunc = cancel
	c.mu.Unlock()
	defer func() {
		close(c.done)
		slog.Info("Background sync coordinator shutting down")
	}()

	if len(c.schedules) == 0 {
		slog.Info("No scheduled jobs, coordinator idle")
		<-coordCtx.Done()
		return nil
	}

	pollingInterval := c.pollingInterval()
	slog.Info("Configured coordinator polling interval",
		"base_interval", basePollingInterval,
		"actual_interval", pollingInterval)

	ticker := time.NewTicker(pollingInterval)
	defer ticker.Stop()

	c.runDueJobs(coordCtx)

	for {
		select {
		case <-ticker.C:
			c.runDueJobs(coordCtx)
			ticker.Reset(c.pollingInterval())
		case <-coordCtx.Done():
			slog.Info("Sync coordinator stopping")
			return nil
		}
	}
}

// Stop gracefully stops the coordinator
func (c *defaultCoordinator) Stop() error {
	c.mu.Lock()
	cancel := c.cancelFunc
	c.mu.Unlock()

	if cancel != nil {
		slog.Info("Stopping sync coordinator")
		cancel()
		<-c.done
	}
	return nil
}

// Statuses returns the status of every known job
func (c *defaultCoordinator) Statuses() []status.JobStatus {
	return c.registry.List()
}

// Trigger runs job now. It fails with ErrAlreadyRunning when the job (for
// the same tenant) is already in progress.
func (c *defaultCoordinator) Trigger(ctx context.Context, job string, args jobs.Args) (*jobs.Summary, error) {
	// Reject bad requests before they leave a status entry behind.
	if !slices.Contains(jobs.Names(), job) {
		return nil, fmt.Errorf("%w: %q", jobs.ErrUnknownJob, job)
	}
	if job == jobs.JobWorkOrders {
		if _, err := jobs.ParseTenantID(args.TenantID); err != nil {
			return nil, err
		}
	}
	return c.runJob(ctx, job, args)
}

// runDueJobs runs, in order, every scheduled job whose interval has elapsed
func (c *defaultCoordinator) runDueJobs(ctx context.Context) {
	for _, s := range c.schedules {
		if ctx.Err() != nil {
			return
		}
		if !c.isDue(s) {
			continue
		}

		_, err := c.runJob(ctx, s.Job, jobs.Args{})
		if errors.Is(err, ErrAlreadyRunning) {
			slog.Debug("Job already running, skipping", "job", s.Job)
		}
	}
}

func (c *defaultCoordinator) isDue(s Schedule) bool {
	st, ok := c.registry.Get(s.Job)
	if !ok || st.LastAttempt == nil {
		return true
	}
	if st.Phase == status.SyncPhaseSyncing {
		return false
	}
	return !c.now().Before(st.LastAttempt.Add(s.Interval))
}

// runJob executes one job run and records its outcome in the registry
func (c *defaultCoordinator) runJob(ctx context.Context, job string, args jobs.Args) (*jobs.Summary, error) {
	key := status.Key(job, args.TenantID)
	runID := uuid.NewString()
	if !c.registry.TryStart(ctx, key, runID, c.now()) {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyRunning, key)
	}

	startTime := time.Now()

	// The run is recorded as failed unless it returns normally, so a panic
	// in the runner never leaves the job stuck in the syncing phase.
	finished := false
	defer func() {
		if !finished {
			c.registry.Fail(ctx, key, fmt.Errorf("unexpected failure while running job %s", key), time.Since(startTime))
		}
	}()

	summary, err := c.runner.RunJob(jobs.WithRunID(ctx, runID), job, args)
	finished = true

	if err != nil {
		c.registry.Fail(ctx, key, err, time.Since(startTime))
		slog.Error("Job failed", "job", key, "run_id", runID, "error", err)
		return summary, err
	}

	outcome := status.Outcome{Duration: time.Since(startTime)}
	if summary != nil {
		outcome.Rows = summary.Rows
		outcome.Documents = summary.Documents
	}
	c.registry.Complete(ctx, key, outcome, c.now())
	return summary, nil
}
