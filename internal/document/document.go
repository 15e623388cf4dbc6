// Package document defines the denormalized documents written to the
// document store.
//
// A Document is a tagged union: Type discriminates the variant and Data holds
// the matching payload. Documents are always built through New so that the
// identifier is derived from (tenant, type, natural id) and never set by hand.
package document

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/rentfleet/fleet-sync/internal/docid"
)

// Type discriminates the document variants.
type Type string

const (
	// TypeAsset is an asset under its owning company
	TypeAsset Type = "asset"
	// TypeRental is an asset as seen by a company currently renting it
	TypeRental Type = "rental"
	// TypeUser is a user under their company
	TypeUser Type = "user"
	// TypeCompany is a company under the platform tenant
	TypeCompany Type = "company"
	// TypeWorkOrder is a work order under its service company
	TypeWorkOrder Type = "work_order"
)

// SystemActor is recorded as creator and updater of every synced document.
const SystemActor = "system"

// Payload is the entity-specific part of a document.
type Payload interface {
	// DocumentType reports the variant the payload belongs to.
	DocumentType() Type
}

// Document is the unit persisted by the document store.
type Document struct {
	ID        string    `json:"_id"`
	Type      Type      `json:"type"`
	TenantID  string    `json:"tenant_id"`
	CreatedAt time.Time `json:"created_at"`
	CreatedBy string    `json:"created_by"`
	UpdatedAt time.Time `json:"updated_at"`
	UpdatedBy string    `json:"updated_by"`
	Data      Payload   `json:"data"`
}

// New builds a document of the given type for a tenant. The identifier is
// docid.Encode(tenantID, docType, naturalID); neither tenantID nor naturalID
// may contain docid.Delimiter. Both audit timestamps are set to now.
func New(docType Type, tenantID, naturalID string, now time.Time, data Payload) Document {
	return Document{
		ID:        docid.Encode(tenantID, string(docType), naturalID),
		Type:      docType,
		TenantID:  tenantID,
		CreatedAt: now,
		CreatedBy: SystemActor,
		UpdatedAt: now,
		UpdatedBy: SystemActor,
		Data:      data,
	}
}

// MarshalData returns the JSON encoding of the payload.
func (d Document) MarshalData() ([]byte, error) {
	data, err := json.Marshal(d.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload for %s: %w", d.Type, d.ID, err)
	}
	return data, nil
}

// UnmarshalJSON decodes a document, choosing the payload variant from the
// type field.
func (d *Document) UnmarshalJSON(b []byte) error {
	type plain Document
	var raw struct {
		plain
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	payload, err := DecodePayload(raw.Type, raw.Data)
	if err != nil {
		return err
	}

	*d = Document(raw.plain)
	d.Data = payload
	return nil
}

// DecodePayload decodes a JSON payload into the variant for docType.
func DecodePayload(docType Type, data []byte) (Payload, error) {
	switch docType {
	case TypeAsset:
		return decodeAs[AssetData](docType, data)
	case TypeRental:
		return decodeAs[RentalData](docType, data)
	case TypeUser:
		return decodeAs[UserData](docType, data)
	case TypeCompany:
		return decodeAs[CompanyData](docType, data)
	case TypeWorkOrder:
		return decodeAs[WorkOrderData](docType, data)
	default:
		return nil, fmt.Errorf("unknown document type %q", docType)
	}
}

func decodeAs[T Payload](docType Type, data []byte) (Payload, error) {
	var v T
	if len(data) == 0 || string(data) == "null" {
		return v, nil
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("failed to decode %s payload: %w", docType, err)
	}
	return v, nil
}
