package jobs

import (
	"context"
	"strconv"
	"time"

	"github.com/rentfleet/fleet-sync/internal/document"
	"github.com/rentfleet/fleet-sync/internal/sync"
)

// MapCompany returns one company document under tenantID.
func MapCompany(row CompanyRow, now time.Time, tenantID string) []document.Document {
	return []document.Document{
		document.New(
			document.TypeCompany,
			tenantID,
			strconv.FormatInt(row.ID, 10),
			now,
			document.CompanyData{
				CompanyID:   row.ID,
				Name:        row.Name,
				EmailDomain: deref(row.EmailDomain),
			},
		),
	}
}

// SyncCompanies syncs every company under the configured platform tenant.
// The table is small, so it always runs as a single shard.
func (r *Runner) SyncCompanies(ctx context.Context) (*Summary, error) {
	jc := r.jobs.CompaniesJob()
	tenantID := r.jobs.GetCompaniesTenantID()

	return runSharded(ctx, r, runSpec[CompanyRow]{
		job:         JobCompanies,
		shards:      1,
		concurrency: 1,
		retries:     jc.GetRetries(),
		batchSize:   jc.GetBatchSize(),
		query:       sync.QueryFunc[CompanyRow](r.exec.FetchCompanies),
		mapper: func(now time.Time) sync.MapFunc[CompanyRow] {
			return func(row CompanyRow) []document.Document {
				return MapCompany(row, now, tenantID)
			}
		},
	})
}
