// Package coordinator runs the global sync jobs in the background and
// tracks the status of every job run.
//
// The coordinator polls on a jittered interval so that several replicas do
// not hit the source database at the same moment. On each poll it runs,
// one after the other, every scheduled job whose interval has elapsed since
// its last attempt. Jobs that have never run are due immediately.
//
// Runs triggered on demand go through Trigger, which shares the status
// registry with the scheduler: a job never has two runs in flight, whoever
// started the first one.
//
// # Usage
//
//	coord := coordinator.New(runner, registry, coordinator.SchedulesFromConfig(cfg.Jobs))
//	go func() {
//	    if err := coord.Start(ctx); err != nil {
//	        slog.Error("coordinator failed", "error", err)
//	    }
//	}()
//	defer coord.Stop()
package coordinator
