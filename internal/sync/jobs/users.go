package jobs

import (
	"context"
	"strconv"
	"time"

	"github.com/rentfleet/fleet-sync/internal/document"
	"github.com/rentfleet/fleet-sync/internal/sync"
)

// MapUser returns one user document under the user's company, or nothing
// when the user has no company.
func MapUser(row UserRow, now time.Time) []document.Document {
	if row.CompanyID == nil || *row.CompanyID == 0 {
		return nil
	}

	return []document.Document{
		document.New(
			document.TypeUser,
			strconv.FormatInt(*row.CompanyID, 10),
			strconv.FormatInt(row.ID, 10),
			now,
			document.UserData{
				UserID:    row.ID,
				CompanyID: *row.CompanyID,
				FirstName: deref(row.FirstName),
				LastName:  deref(row.LastName),
				Email:     deref(row.Email),
				Phone:     deref(row.Phone),
			},
		),
	}
}

// SyncUsers syncs every user that belongs to a company.
func (r *Runner) SyncUsers(ctx context.Context) (*Summary, error) {
	jc := r.jobs.Users

	return runSharded(ctx, r, runSpec[UserRow]{
		job:         JobUsers,
		shards:      jc.GetShards(),
		concurrency: jc.GetConcurrency(),
		retries:     jc.GetRetries(),
		batchSize:   jc.GetBatchSize(),
		query:       sync.QueryFunc[UserRow](r.exec.FetchUsers),
		mapper: func(now time.Time) sync.MapFunc[UserRow] {
			return func(row UserRow) []document.Document {
				return MapUser(row, now)
			}
		},
	})
}
