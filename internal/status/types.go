package status

import "time"

// SyncPhase represents the current phase of a job
type SyncPhase string

const (
	// SyncPhaseIdle means the job has not run since it was registered
	SyncPhaseIdle SyncPhase = "Idle"

	// SyncPhaseSyncing means the job is currently running
	SyncPhaseSyncing SyncPhase = "Syncing"

	// SyncPhaseComplete means the last run completed successfully
	SyncPhaseComplete SyncPhase = "Complete"

	// SyncPhaseFailed means the last run failed
	SyncPhaseFailed SyncPhase = "Failed"
)

// JobStatus is the run state of one job, or of one tenant of a
// per-tenant job.
type JobStatus struct {
	// Job is the status key: the job name, or "job/tenant" for per-tenant jobs
	Job string `json:"job"`

	Phase SyncPhase `json:"phase"`

	// Message holds the error of a failed run
	Message string `json:"message,omitempty"`

	// RunID identifies the current or last run
	RunID string `json:"runId,omitempty"`

	// LastAttempt is when the last run started
	LastAttempt *time.Time `json:"lastAttempt,omitempty"`

	// AttemptCount is the number of runs since the last success
	AttemptCount int `json:"attemptCount,omitempty"`

	// LastSyncTime is when the last successful run finished
	LastSyncTime *time.Time `json:"lastSyncTime,omitempty"`

	// Rows and Documents are the counts of the last successful run
	Rows      int `json:"rows,omitempty"`
	Documents int `json:"documents,omitempty"`

	// Duration is the wall time of the last finished run
	Duration string `json:"duration,omitempty"`

	// Schedule is the coordinator interval (e.g. "1h"); empty when the job
	// only runs on demand
	Schedule string `json:"schedule,omitempty"`
}

// Outcome is what a successful run reports to the registry.
type Outcome struct {
	Rows      int
	Documents int
	Duration  time.Duration
}
