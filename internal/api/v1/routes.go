// Package v1 provides the job status and trigger handlers.
package v1

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rentfleet/fleet-sync/internal/api/common"
	"github.com/rentfleet/fleet-sync/internal/status"
	"github.com/rentfleet/fleet-sync/internal/sync/coordinator"
	"github.com/rentfleet/fleet-sync/internal/sync/jobs"
)

// JobService runs jobs and reports their status
type JobService interface {
	Trigger(ctx context.Context, job string, args jobs.Args) (*jobs.Summary, error)
	Statuses() []status.JobStatus
}

// JobListResponse is the body of GET /v1/jobs
type JobListResponse struct {
	Jobs []status.JobStatus `json:"jobs"`
}

// Routes holds the handlers of the v1 API
type Routes struct {
	service JobService
}

// Router creates the v1 router
func Router(svc JobService) http.Handler {
	routes := &Routes{service: svc}

	r := chi.NewRouter()
	r.Get("/jobs", routes.listJobs)
	r.Post("/jobs/{job}", routes.triggerJob)
	r.Post("/tenants/{tenantID}/work-orders/sync", routes.syncWorkOrders)

	return r
}

// listJobs handles GET /v1/jobs
func (rr *Routes) listJobs(w http.ResponseWriter, _ *http.Request) {
	statuses := rr.service.Statuses()
	if statuses == nil {
		statuses = []status.JobStatus{}
	}
	common.WriteJSONResponse(w, JobListResponse{Jobs: statuses}, http.StatusOK)
}

// triggerJob handles POST /v1/jobs/{job}. Only global jobs can be run here;
// work orders have their own per-tenant route.
func (rr *Routes) triggerJob(w http.ResponseWriter, r *http.Request) {
	job, err := common.PathParam(r, "job")
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}
	if job == jobs.JobWorkOrders {
		common.WriteErrorResponse(w, "work-orders is synced per tenant: POST /v1/tenants/{tenantID}/work-orders/sync",
			http.StatusBadRequest)
		return
	}

	rr.run(w, r, job, jobs.Args{})
}

// syncWorkOrders handles POST /v1/tenants/{tenantID}/work-orders/sync
func (rr *Routes) syncWorkOrders(w http.ResponseWriter, r *http.Request) {
	tenantID, err := common.PathParam(r, "tenantID")
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	rr.run(w, r, jobs.JobWorkOrders, jobs.Args{TenantID: tenantID})
}

func (rr *Routes) run(w http.ResponseWriter, r *http.Request, job string, args jobs.Args) {
	summary, err := rr.service.Trigger(r.Context(), job, args)
	if err != nil {
		code := statusCodeFor(err)
		if code == http.StatusInternalServerError {
			slog.ErrorContext(r.Context(), "Triggered job failed", "job", job, "tenant_id", args.TenantID, "error", err)
		}
		common.WriteErrorResponse(w, err.Error(), code)
		return
	}

	common.WriteJSONResponse(w, summary, http.StatusOK)
}

func statusCodeFor(err error) int {
	switch {
	case errors.Is(err, jobs.ErrUnknownJob):
		return http.StatusNotFound
	case errors.Is(err, jobs.ErrTenantRequired), errors.Is(err, jobs.ErrInvalidTenant):
		return http.StatusBadRequest
	case errors.Is(err, coordinator.ErrAlreadyRunning):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
