package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentfleet/fleet-sync/database"
	"github.com/rentfleet/fleet-sync/internal/config"
	"github.com/rentfleet/fleet-sync/internal/document"
)

var (
	earlier = time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	later   = time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC)
)

func company(tenant, id, name string, at time.Time) document.Document {
	return document.New(document.TypeCompany, tenant, id, at, document.CompanyData{
		CompanyID:   42,
		Name:        name,
		EmailDomain: "example.com",
	})
}

func asset(tenant string, at time.Time) document.Document {
	return document.New(document.TypeAsset, tenant, "7", at, document.AssetData{
		AssetID:      7,
		CompanyID:    5,
		Name:         "Excavator",
		Location:     &document.Location{Lat: 49.28, Lng: -123.12},
		CategoryName: "Earthmoving",
		PhotoURL:     "https://cdn.example.com/photos/7.jpg",
	})
}

// exerciseStore runs the behaviour every Store implementation shares.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Upsert(ctx, nil))

	first := company("1854", "42", "Acme Rentals", earlier)
	rental := asset("5", earlier)
	require.NoError(t, s.Upsert(ctx, []document.Document{first, rental}))

	got, err := s.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, document.TypeCompany, got.Type)
	assert.Equal(t, "1854", got.TenantID)
	assert.Equal(t, document.SystemActor, got.CreatedBy)
	assert.True(t, earlier.Equal(got.CreatedAt))
	assert.Equal(t, first.Data, got.Data)

	gotAsset, err := s.Get(ctx, rental.ID)
	require.NoError(t, err)
	assert.Equal(t, rental.Data, gotAsset.Data)

	// Full overwrite: every field is replaced by the newer document.
	second := company("1854", "42", "Acme Rentals Ltd", later)
	require.Equal(t, first.ID, second.ID)
	require.NoError(t, s.Upsert(ctx, []document.Document{second}))

	got, err = s.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme Rentals Ltd", got.Data.(document.CompanyData).Name)
	assert.True(t, later.Equal(got.UpdatedAt))
	assert.True(t, later.Equal(got.CreatedAt))

	// Duplicates inside one batch: the last one wins.
	a := company("1854", "43", "First", earlier)
	b := company("1854", "43", "Second", earlier)
	require.NoError(t, s.Upsert(ctx, []document.Document{a, b}))
	got, err = s.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Second", got.Data.(document.CompanyData).Name)
}

func TestMemory(t *testing.T) {
	t.Parallel()

	m := NewMemory()
	exerciseStore(t, m)
	assert.Equal(t, 3, m.Len())

	all := m.All()
	require.Len(t, all, 3)
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].ID, all[i].ID)
	}
	assert.NoError(t, m.Close())
}

func TestMemory_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := NewMemory()
	err := m.Upsert(ctx, []document.Document{company("1854", "1", "x", earlier)})
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, m.Len())
}

func TestSQLite(t *testing.T) {
	t.Parallel()

	s, err := NewSQLite(context.Background(), filepath.Join(t.TempDir(), "documents.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	exerciseStore(t, s)

	n, err := s.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestSQLite_RequiresPath(t *testing.T) {
	t.Parallel()

	_, err := NewSQLite(context.Background(), "")
	require.Error(t, err)
}

func TestNewPostgres_RequiresPool(t *testing.T) {
	t.Parallel()

	_, err := NewPostgres(nil)
	require.Error(t, err)
}

func TestPostgres(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container-backed store test in short mode")
	}
	t.Parallel()

	pool, _, cleanup := database.SetupTestDB(t)
	t.Cleanup(cleanup)

	s, err := NewPostgres(pool)
	require.NoError(t, err)

	exerciseStore(t, s)
}

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     *config.Config
		check   func(t *testing.T, s Store)
		wantErr bool
	}{
		{
			name: "memory",
			cfg:  &config.Config{Sink: config.SinkConfig{Type: config.SinkTypeMemory}},
			check: func(t *testing.T, s Store) {
				t.Helper()
				assert.IsType(t, &Memory{}, s)
			},
		},
		{
			name: "sqlite",
			cfg: &config.Config{Sink: config.SinkConfig{
				Type:   config.SinkTypeSQLite,
				SQLite: &config.SQLiteConfig{Path: ":memory:"},
			}},
			check: func(t *testing.T, s Store) {
				t.Helper()
				assert.IsType(t, &SQLite{}, s)
			},
		},
		{
			name:    "sqlite without settings",
			cfg:     &config.Config{Sink: config.SinkConfig{Type: config.SinkTypeSQLite}},
			wantErr: true,
		},
		{
			name:    "unknown",
			cfg:     &config.Config{Sink: config.SinkConfig{Type: "mongo"}},
			wantErr: true,
		},
		{
			name:    "nil config",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s, err := New(context.Background(), tt.cfg, nil)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			t.Cleanup(func() { _ = s.Close() })
			tt.check(t, s)
		})
	}
}
