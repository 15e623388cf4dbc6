package jobs

import (
	"context"
	"strconv"
	"time"

	"github.com/rentfleet/fleet-sync/internal/document"
	"github.com/rentfleet/fleet-sync/internal/sync"
)

// MapAsset returns the asset document under the owning company followed by
// one rental document per distinct renting company, in first-seen order.
// NULL and zero company ids are ignored.
func MapAsset(row AssetRow, now time.Time, photoBaseURL string) []document.Document {
	payload := assetPayload(row, photoBaseURL)
	naturalID := strconv.FormatInt(row.ID, 10)

	docs := make([]document.Document, 0, 1+len(row.RentedToCompanyID))
	docs = append(docs, document.New(
		document.TypeAsset, strconv.FormatInt(row.CompanyID, 10), naturalID, now, payload,
	))

	for _, companyID := range rentingCompanies(row.RentedToCompanyID) {
		docs = append(docs, document.New(
			document.TypeRental, strconv.FormatInt(companyID, 10), naturalID, now,
			document.RentalData{AssetData: payload},
		))
	}
	return docs
}

func rentingCompanies(ids []*int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id == nil || *id == 0 {
			continue
		}
		if _, dup := seen[*id]; dup {
			continue
		}
		seen[*id] = struct{}{}
		out = append(out, *id)
	}
	return out
}

func assetPayload(row AssetRow, photoBaseURL string) document.AssetData {
	data := document.AssetData{
		AssetID:      row.ID,
		CompanyID:    row.CompanyID,
		Name:         row.Name,
		CategoryName: deref(row.CategoryName),
		ClassName:    deref(row.ClassName),
		MakeName:     deref(row.MakeName),
		ModelName:    deref(row.ModelName),
	}
	if row.Lat != nil && row.Lng != nil {
		data.Location = &document.Location{Lat: *row.Lat, Lng: *row.Lng}
	}
	if filename := deref(row.PhotoFilename); filename != "" {
		data.PhotoURL = photoBaseURL + filename
	}
	return data
}

// SyncAssets syncs every asset and its active rentals.
func (r *Runner) SyncAssets(ctx context.Context) (*Summary, error) {
	jc := r.jobs.AssetsJob()
	photoBaseURL := r.jobs.GetPhotoBaseURL()

	return runSharded(ctx, r, runSpec[AssetRow]{
		job:         JobAssets,
		shards:      jc.GetShards(),
		concurrency: jc.GetConcurrency(),
		retries:     jc.GetRetries(),
		batchSize:   jc.GetBatchSize(),
		query:       sync.QueryFunc[AssetRow](r.exec.FetchAssets),
		mapper: func(now time.Time) sync.MapFunc[AssetRow] {
			return func(row AssetRow) []document.Document {
				return MapAsset(row, now, photoBaseURL)
			}
		},
	})
}
