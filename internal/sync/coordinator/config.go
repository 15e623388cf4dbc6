package coordinator

import (
	"log/slog"
	"time"

	"github.com/rentfleet/fleet-sync/internal/config"
	"github.com/rentfleet/fleet-sync/internal/sync/jobs"
)

// Schedule is the polling interval of one global job
type Schedule struct {
	Job      string
	Interval time.Duration
}

// SchedulesFromConfig returns the schedules of the global jobs. A job with
// a zero interval only runs on demand and is left out.
func SchedulesFromConfig(cfg config.JobsConfig) []Schedule {
	intervals := map[string]*config.JobConfig{
		jobs.JobAssets:    cfg.AssetsJob(),
		jobs.JobUsers:     cfg.Users,
		jobs.JobCompanies: cfg.CompaniesJob(),
	}

	var schedules []Schedule
	for _, job := range jobs.GlobalJobs() {
		interval := getJobInterval(job, intervals[job])
		if interval == 0 {
			slog.Debug("Job scheduling disabled", "job", job)
			continue
		}
		schedules = append(schedules, Schedule{Job: job, Interval: interval})
	}
	return schedules
}

// getJobInterval extracts the interval from the job configuration
func getJobInterval(job string, jc *config.JobConfig) time.Duration {
	interval, err := jc.GetInterval()
	if err != nil {
		slog.Warn("Invalid job interval, using default",
			"job", job,
			"interval", jc.Interval,
			"default", config.DefaultInterval)
		return config.DefaultInterval
	}
	return interval
}
