package jobs

import "time"

// AssetRow is one asset with its denormalized names and the companies
// currently renting it.
type AssetRow struct {
	ID            int64    `db:"id"`
	CompanyID     int64    `db:"company_id"`
	Name          string   `db:"name"`
	Lat           *float64 `db:"lat"`
	Lng           *float64 `db:"lng"`
	CategoryName  *string  `db:"category_name"`
	ClassName     *string  `db:"class_name"`
	MakeName      *string  `db:"make_name"`
	ModelName     *string  `db:"model_name"`
	PhotoFilename *string  `db:"photo_filename"`

	// RentedToCompanyID lists the renting company of every active rental.
	// It may contain duplicates and NULLs.
	RentedToCompanyID []*int64 `db:"rented_to_company_id"`
}

// UserRow is one platform user.
type UserRow struct {
	ID        int64   `db:"id"`
	CompanyID *int64  `db:"company_id"`
	FirstName *string `db:"first_name"`
	LastName  *string `db:"last_name"`
	Email     *string `db:"email"`
	Phone     *string `db:"phone"`
}

// CompanyRow is one company with the most common email domain of its users.
type CompanyRow struct {
	ID          int64   `db:"id"`
	Name        string  `db:"name"`
	EmailDomain *string `db:"email_domain"`
}

// WorkOrderRow is one work order of a service company.
type WorkOrderRow struct {
	ID               int64      `db:"id"`
	ServiceCompanyID int64      `db:"service_company_id"`
	AssetID          *int64     `db:"asset_id"`
	AssetName        *string    `db:"asset_name"`
	Description      *string    `db:"description"`
	Status           string     `db:"status"`
	Urgency          *string    `db:"urgency"`
	DueDate          *time.Time `db:"due_date"`
	DateCompleted    *time.Time `db:"date_completed"`
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
