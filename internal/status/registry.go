package status

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"
)

// Key returns the status key of a job run, qualified by tenant for
// per-tenant jobs.
func Key(job, tenantID string) string {
	if tenantID == "" {
		return job
	}
	return job + "/" + tenantID
}

// Registry holds the status of every job in memory and optionally
// persists it after each change.
type Registry struct {
	mu          sync.RWMutex
	statuses    map[string]*JobStatus
	persistence StatusPersistence

	// persistMu serializes writes to persistence
	persistMu sync.Mutex
}

// NewRegistry creates an empty registry. persistence may be nil.
func NewRegistry(persistence StatusPersistence) *Registry {
	return &Registry{
		statuses:    make(map[string]*JobStatus),
		persistence: persistence,
	}
}

// Load restores persisted statuses. A run that was in progress when the
// process stopped is recorded as failed.
func (r *Registry) Load(ctx context.Context) error {
	if r.persistence == nil {
		return nil
	}

	loaded, err := r.persistence.LoadAll(ctx)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for key, st := range loaded {
		if st == nil {
			continue
		}
		if st.Phase == SyncPhaseSyncing {
			st.Phase = SyncPhaseFailed
			st.Message = "interrupted by restart"
		}
		st.Job = key
		r.statuses[key] = st
	}
	return nil
}

// Register makes a job visible with the given schedule without changing
// its run state.
func (r *Registry) Register(key, schedule string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	st := r.getOrCreate(key)
	st.Schedule = schedule
}

// TryStart marks key as syncing. It returns false when a run of key is
// already in progress.
func (r *Registry) TryStart(ctx context.Context, key, runID string, now time.Time) bool {
	r.mu.Lock()
	st := r.getOrCreate(key)
	if st.Phase == SyncPhaseSyncing {
		r.mu.Unlock()
		return false
	}
	st.Phase = SyncPhaseSyncing
	st.Message = ""
	st.RunID = runID
	st.LastAttempt = &now
	st.AttemptCount++
	r.mu.Unlock()

	r.persist(ctx)
	return true
}

// Complete records a successful run of key.
func (r *Registry) Complete(ctx context.Context, key string, outcome Outcome, now time.Time) {
	r.mu.Lock()
	st := r.getOrCreate(key)
	st.Phase = SyncPhaseComplete
	st.Message = ""
	st.AttemptCount = 0
	st.LastSyncTime = &now
	st.Rows = outcome.Rows
	st.Documents = outcome.Documents
	st.Duration = outcome.Duration.String()
	r.mu.Unlock()

	r.persist(ctx)
}

// Fail records a failed run of key.
func (r *Registry) Fail(ctx context.Context, key string, err error, duration time.Duration) {
	r.mu.Lock()
	st := r.getOrCreate(key)
	st.Phase = SyncPhaseFailed
	if err != nil {
		st.Message = err.Error()
	}
	st.Duration = duration.String()
	r.mu.Unlock()

	r.persist(ctx)
}

// Get returns a copy of the status of key.
func (r *Registry) Get(key string) (JobStatus, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	st, ok := r.statuses[key]
	if !ok {
		return JobStatus{}, false
	}
	return *st, true
}

// List returns copies of every status ordered by key.
func (r *Registry) List() []JobStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := slices.Sorted(maps.Keys(r.statuses))
	out := make([]JobStatus, 0, len(keys))
	for _, k := range keys {
		out = append(out, *r.statuses[k])
	}
	return out
}

// getOrCreate must be called with mu held.
func (r *Registry) getOrCreate(key string) *JobStatus {
	st, ok := r.statuses[key]
	if !ok {
		st = &JobStatus{Job: key, Phase: SyncPhaseIdle}
		r.statuses[key] = st
	}
	return st
}

func (r *Registry) persist(ctx context.Context) {
	if r.persistence == nil {
		return
	}

	r.persistMu.Lock()
	defer r.persistMu.Unlock()

	r.mu.RLock()
	snapshot := make(map[string]*JobStatus, len(r.statuses))
	for k, st := range r.statuses {
		c := *st
		snapshot[k] = &c
	}
	r.mu.RUnlock()

	if err := r.persistence.SaveAll(ctx, snapshot); err != nil {
		slog.WarnContext(ctx, "Failed to persist job status", "error", err)
	}
}
