package jobs

import (
	"context"

	"github.com/rentfleet/fleet-sync/internal/source"
	"github.com/rentfleet/fleet-sync/internal/sync"
)

//go:generate mockgen -destination=mocks/mock_executor.go -package=mocks -source=queries.go Executor

// Every query filters on the shard predicate and pages with a stable
// ORDER BY on the primary key.

const assetsSQL = `
SELECT
    a.id,
    a.company_id,
    a.name,
    a.latitude  AS lat,
    a.longitude AS lng,
    cat.name    AS category_name,
    cls.name    AS class_name,
    mk.name     AS make_name,
    md.name     AS model_name,
    ph.filename AS photo_filename,
    ARRAY(
        SELECT r.company_id
        FROM rentals r
        WHERE r.asset_id = a.id
          AND r.start_date <= now()
          AND (r.end_date IS NULL OR r.end_date >= now())
        ORDER BY r.start_date, r.id
    )::bigint[] AS rented_to_company_id
FROM assets a
LEFT JOIN asset_categories cat ON cat.id = a.category_id
LEFT JOIN asset_classes    cls ON cls.id = a.class_id
LEFT JOIN asset_makes      mk  ON mk.id  = a.make_id
LEFT JOIN asset_models     md  ON md.id  = a.model_id
LEFT JOIN photos           ph  ON ph.id  = a.main_photo_id
WHERE a.deleted_at IS NULL
  AND a.id % @num_shards = @current_shard
ORDER BY a.id
LIMIT @limit OFFSET @offset`

const usersSQL = `
SELECT
    u.id,
    u.company_id,
    u.first_name,
    u.last_name,
    u.email,
    u.phone
FROM users u
WHERE u.deleted_at IS NULL
  AND u.id % @num_shards = @current_shard
ORDER BY u.id
LIMIT @limit OFFSET @offset`

const companiesSQL = `
SELECT
    c.id,
    c.name,
    (
        SELECT lower(split_part(u.email, '@', 2))
        FROM users u
        WHERE u.company_id = c.id
          AND u.email LIKE '%@%'
        GROUP BY 1
        ORDER BY count(*) DESC, 1
        LIMIT 1
    ) AS email_domain
FROM companies c
WHERE c.id % @num_shards = @current_shard
ORDER BY c.id
LIMIT @limit OFFSET @offset`

const workOrdersSQL = `
SELECT
    wo.id,
    wo.service_company_id,
    wo.asset_id,
    a.name AS asset_name,
    wo.description,
    wo.status,
    wo.urgency,
    wo.due_date,
    wo.date_completed
FROM work_orders wo
LEFT JOIN assets a ON a.id = wo.asset_id
WHERE wo.service_company_id = @tenant_id
  AND wo.id % @num_shards = @current_shard
ORDER BY wo.id
LIMIT @limit OFFSET @offset`

// Executor runs the source queries of the jobs, one page at a time.
type Executor interface {
	FetchAssets(ctx context.Context, params sync.Params, page sync.Page) ([]AssetRow, error)
	FetchUsers(ctx context.Context, params sync.Params, page sync.Page) ([]UserRow, error)
	FetchCompanies(ctx context.Context, params sync.Params, page sync.Page) ([]CompanyRow, error)
	FetchWorkOrders(ctx context.Context, params sync.Params, page sync.Page) ([]WorkOrderRow, error)
}

type postgresExecutor struct {
	assets     *source.Query[AssetRow]
	users      *source.Query[UserRow]
	companies  *source.Query[CompanyRow]
	workOrders *source.Query[WorkOrderRow]
}

// NewPostgresExecutor returns an Executor that runs the jobs' SQL through
// querier, usually a *pgxpool.Pool.
func NewPostgresExecutor(querier source.Querier, opts ...source.Option) Executor {
	return &postgresExecutor{
		assets:     source.NewQuery[AssetRow](querier, JobAssets, assetsSQL, opts...),
		users:      source.NewQuery[UserRow](querier, JobUsers, usersSQL, opts...),
		companies:  source.NewQuery[CompanyRow](querier, JobCompanies, companiesSQL, opts...),
		workOrders: source.NewQuery[WorkOrderRow](querier, JobWorkOrders, workOrdersSQL, opts...),
	}
}

func (e *postgresExecutor) FetchAssets(ctx context.Context, params sync.Params, page sync.Page) ([]AssetRow, error) {
	return e.assets.Fetch(ctx, params, page)
}

func (e *postgresExecutor) FetchUsers(ctx context.Context, params sync.Params, page sync.Page) ([]UserRow, error) {
	return e.users.Fetch(ctx, params, page)
}

func (e *postgresExecutor) FetchCompanies(
	ctx context.Context, params sync.Params, page sync.Page,
) ([]CompanyRow, error) {
	return e.companies.Fetch(ctx, params, page)
}

func (e *postgresExecutor) FetchWorkOrders(
	ctx context.Context, params sync.Params, page sync.Page,
) ([]WorkOrderRow, error) {
	return e.workOrders.Fetch(ctx, params, page)
}
