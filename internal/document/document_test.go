package document

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentfleet/fleet-sync/internal/docid"
)

var testNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func TestNew(t *testing.T) {
	t.Parallel()

	doc := New(TypeCompany, "1854", "42", testNow, CompanyData{CompanyID: 42, Name: "Acme"})

	assert.Equal(t, docid.Encode("1854", "company", "42"), doc.ID)
	assert.Equal(t, TypeCompany, doc.Type)
	assert.Equal(t, "1854", doc.TenantID)
	assert.Equal(t, SystemActor, doc.CreatedBy)
	assert.Equal(t, SystemActor, doc.UpdatedBy)
	assert.Equal(t, testNow, doc.CreatedAt)
	assert.Equal(t, testNow, doc.UpdatedAt)

	parts, err := docid.Decode(doc.ID)
	require.NoError(t, err)
	assert.Equal(t, docid.Parts{Tenant: "1854", Type: "company", NaturalID: "42"}, parts)
}

func TestNew_SameInputsSameID(t *testing.T) {
	t.Parallel()

	a := New(TypeAsset, "5", "10", testNow, AssetData{AssetID: 10})
	b := New(TypeAsset, "5", "10", testNow.Add(time.Hour), AssetData{AssetID: 10, Name: "renamed"})
	assert.Equal(t, a.ID, b.ID)

	rental := New(TypeRental, "5", "10", testNow, RentalData{AssetData: AssetData{AssetID: 10}})
	assert.NotEqual(t, a.ID, rental.ID)
}

func TestPayload_DocumentType(t *testing.T) {
	t.Parallel()

	assert.Equal(t, TypeAsset, AssetData{}.DocumentType())
	assert.Equal(t, TypeRental, RentalData{}.DocumentType())
	assert.Equal(t, TypeUser, UserData{}.DocumentType())
	assert.Equal(t, TypeCompany, CompanyData{}.DocumentType())
	assert.Equal(t, TypeWorkOrder, WorkOrderData{}.DocumentType())
}

func TestDocument_JSONShape(t *testing.T) {
	t.Parallel()

	doc := New(TypeRental, "7", "3", testNow, RentalData{AssetData: AssetData{
		AssetID:  3,
		Name:     "Excavator",
		Location: &Location{Lat: 30.1, Lng: -97.7},
		PhotoURL: "https://cdn.example.com/photos/a.jpg",
	}})

	raw, err := json.Marshal(doc)
	require.NoError(t, err)

	var generic map[string]any
	require.NoError(t, json.Unmarshal(raw, &generic))
	for _, key := range []string{"_id", "type", "tenant_id", "created_at", "created_by", "updated_at", "updated_by", "data"} {
		assert.Contains(t, generic, key)
	}

	data, ok := generic["data"].(map[string]any)
	require.True(t, ok)
	// Rental payloads are flattened asset fields.
	assert.Equal(t, "Excavator", data["name"])
	assert.Equal(t, "https://cdn.example.com/photos/a.jpg", data["photo_url"])
}

func TestDocument_UnmarshalJSON_SelectsVariant(t *testing.T) {
	t.Parallel()

	due := testNow.Add(48 * time.Hour)
	assetID := int64(9)
	docs := []Document{
		New(TypeAsset, "1", "9", testNow, AssetData{AssetID: 9, CompanyID: 1, Name: "Lift"}),
		New(TypeRental, "2", "9", testNow, RentalData{AssetData: AssetData{AssetID: 9, CompanyID: 1}}),
		New(TypeUser, "1", "4", testNow, UserData{UserID: 4, CompanyID: 1, Email: "a@b.com"}),
		New(TypeCompany, "1854", "1", testNow, CompanyData{CompanyID: 1, Name: "Acme", EmailDomain: "acme.com"}),
		New(TypeWorkOrder, "1", "77", testNow, WorkOrderData{WorkOrderID: 77, ServiceCompanyID: 1, AssetID: &assetID, DueDate: &due}),
	}

	for _, doc := range docs {
		raw, err := json.Marshal(doc)
		require.NoError(t, err)

		var decoded Document
		require.NoError(t, json.Unmarshal(raw, &decoded))
		assert.Equal(t, doc.ID, decoded.ID)
		assert.Equal(t, doc.Type, decoded.Type)
		assert.Equal(t, doc.Data, decoded.Data)
		assert.True(t, doc.UpdatedAt.Equal(decoded.UpdatedAt))
	}
}

func TestDecodePayload_UnknownType(t *testing.T) {
	t.Parallel()

	_, err := DecodePayload(Type("invoice"), []byte(`{}`))
	assert.Error(t, err)
}

func TestDecodePayload_EmptyData(t *testing.T) {
	t.Parallel()

	p, err := DecodePayload(TypeUser, nil)
	require.NoError(t, err)
	assert.Equal(t, UserData{}, p)
}
