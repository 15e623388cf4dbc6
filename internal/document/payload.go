package document

import "time"

// Location is a point on the map.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// AssetData is the payload of an asset document.
type AssetData struct {
	AssetID      int64     `json:"asset_id"`
	CompanyID    int64     `json:"company_id"`
	Name         string    `json:"name"`
	Location     *Location `json:"location,omitempty"`
	CategoryName string    `json:"category_name,omitempty"`
	ClassName    string    `json:"class_name,omitempty"`
	MakeName     string    `json:"make_name,omitempty"`
	ModelName    string    `json:"model_name,omitempty"`
	PhotoURL     string    `json:"photo_url,omitempty"`
}

// DocumentType implements Payload.
func (AssetData) DocumentType() Type { return TypeAsset }

// RentalData is the payload of a rental document. It carries the same
// fields as the asset it describes.
type RentalData struct {
	AssetData
}

// DocumentType implements Payload.
func (RentalData) DocumentType() Type { return TypeRental }

// UserData is the payload of a user document.
type UserData struct {
	UserID    int64  `json:"user_id"`
	CompanyID int64  `json:"company_id"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// DocumentType implements Payload.
func (UserData) DocumentType() Type { return TypeUser }

// CompanyData is the payload of a company document.
type CompanyData struct {
	CompanyID   int64  `json:"company_id"`
	Name        string `json:"name"`
	EmailDomain string `json:"email_domain,omitempty"`
}

// DocumentType implements Payload.
func (CompanyData) DocumentType() Type { return TypeCompany }

// WorkOrderData is the payload of a work order document.
type WorkOrderData struct {
	WorkOrderID      int64      `json:"work_order_id"`
	ServiceCompanyID int64      `json:"service_company_id"`
	AssetID          *int64     `json:"asset_id,omitempty"`
	AssetName        string     `json:"asset_name,omitempty"`
	Description      string     `json:"description,omitempty"`
	Status           string     `json:"status,omitempty"`
	Urgency          string     `json:"urgency,omitempty"`
	DueDate          *time.Time `json:"due_date,omitempty"`
	DateCompleted    *time.Time `json:"date_completed,omitempty"`
}

// DocumentType implements Payload.
func (WorkOrderData) DocumentType() Type { return TypeWorkOrder }
