package jobs

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rentfleet/fleet-sync/internal/document"
	"github.com/rentfleet/fleet-sync/internal/sync"
)

// ParamTenantID is the query parameter naming the service company.
const ParamTenantID = "tenant_id"

// MapWorkOrder returns one work order document when the row belongs to
// tenantID. The query already filters on the tenant; rows of any other
// service company map to nothing.
func MapWorkOrder(row WorkOrderRow, now time.Time, tenantID int64) []document.Document {
	if row.ServiceCompanyID != tenantID {
		return nil
	}

	return []document.Document{
		document.New(
			document.TypeWorkOrder,
			strconv.FormatInt(tenantID, 10),
			strconv.FormatInt(row.ID, 10),
			now,
			document.WorkOrderData{
				WorkOrderID:      row.ID,
				ServiceCompanyID: row.ServiceCompanyID,
				AssetID:          row.AssetID,
				AssetName:        deref(row.AssetName),
				Description:      deref(row.Description),
				Status:           row.Status,
				Urgency:          deref(row.Urgency),
				DueDate:          row.DueDate,
				DateCompleted:    row.DateCompleted,
			},
		),
	}
}

// ParseTenantID validates a tenant id given on the command line or in a
// request path. Tenants are company ids.
func ParseTenantID(tenantID string) (int64, error) {
	tenantID = strings.TrimSpace(tenantID)
	if tenantID == "" {
		return 0, ErrTenantRequired
	}
	id, err := strconv.ParseInt(tenantID, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTenant, tenantID)
	}
	return id, nil
}

// SyncWorkOrders syncs the work orders of one service company.
func (r *Runner) SyncWorkOrders(ctx context.Context, tenantID string) (*Summary, error) {
	tenant, err := ParseTenantID(tenantID)
	if err != nil {
		return nil, err
	}
	jc := r.jobs.WorkOrders

	return runSharded(ctx, r, runSpec[WorkOrderRow]{
		job:         JobWorkOrders,
		tenantID:    strconv.FormatInt(tenant, 10),
		params:      sync.Params{ParamTenantID: tenant},
		shards:      jc.GetShards(),
		concurrency: jc.GetConcurrency(),
		retries:     jc.GetRetries(),
		batchSize:   jc.GetBatchSize(),
		query:       sync.QueryFunc[WorkOrderRow](r.exec.FetchWorkOrders),
		mapper: func(now time.Time) sync.MapFunc[WorkOrderRow] {
			return func(row WorkOrderRow) []document.Document {
				return MapWorkOrder(row, now, tenant)
			}
		},
	})
}
