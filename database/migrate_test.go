package database

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToMigrateURL(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"postgres://u:p@db:5432/docs?sslmode=disable":   "pgx5://u:p@db:5432/docs?sslmode=disable",
		"postgresql://u:p@db:5432/docs?sslmode=disable": "pgx5://u:p@db:5432/docs?sslmode=disable",
		"pgx5://u:p@db/docs":                            "pgx5://u:p@db/docs",
	}
	for in, want := range tests {
		assert.Equal(t, want, ToMigrateURL(in))
	}
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	t.Parallel()

	ups, err := fs.Glob(migrationsFS, "migrations/*.up.sql")
	require.NoError(t, err)
	downs, err := fs.Glob(migrationsFS, "migrations/*.down.sql")
	require.NoError(t, err)

	require.NotEmpty(t, ups)
	assert.Len(t, downs, len(ups))
}

// fakeMigrator records calls made by MigrateUp and MigrateDown.
type fakeMigrator struct {
	upErr    error
	downErr  error
	steps    []int
	version  uint
	dirty    bool
	verErr   error
	downDone bool
}

func (f *fakeMigrator) Up() error                    { return f.upErr }
func (f *fakeMigrator) Down() error                  { f.downDone = true; return f.downErr }
func (f *fakeMigrator) Steps(n int) error            { f.steps = append(f.steps, n); return nil }
func (f *fakeMigrator) Version() (uint, bool, error) { return f.version, f.dirty, f.verErr }
func (*fakeMigrator) Close() (error, error)          { return nil, nil }

func TestMigrateUp(t *testing.T) {
	t.Parallel()

	version, err := MigrateUp(&fakeMigrator{upErr: migrate.ErrNoChange, version: 1})
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)

	_, err = MigrateUp(&fakeMigrator{upErr: errors.New("boom")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to apply migrations")

	version, err = MigrateUp(&fakeMigrator{verErr: migrate.ErrNilVersion})
	require.NoError(t, err)
	assert.Zero(t, version)
}

func TestMigrateDown(t *testing.T) {
	t.Parallel()

	all := &fakeMigrator{verErr: migrate.ErrNilVersion}
	_, err := MigrateDown(all, 0)
	require.NoError(t, err)
	assert.True(t, all.downDone)

	stepped := &fakeMigrator{version: 1}
	_, err = MigrateDown(stepped, 2)
	require.NoError(t, err)
	assert.Equal(t, []int{-2}, stepped.steps)
	assert.False(t, stepped.downDone)
}

func TestMigrations(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container-backed migration test in short mode")
	}
	t.Parallel()

	_, connStr, cleanup := SetupTestDB(t)
	t.Cleanup(cleanup)

	m, err := NewFromConnectionString(connStr)
	require.NoError(t, err)
	t.Cleanup(func() { _, _ = m.Close() })

	ups, err := fs.Glob(migrationsFS, "migrations/*.up.sql")
	require.NoError(t, err)

	// Already migrated by SetupTestDB: step down and back up.
	require.NoError(t, m.Steps(-len(ups)))
	require.NoError(t, m.Steps(len(ups)))

	version, dirty, err := m.Version()
	require.NoError(t, err)
	assert.False(t, dirty)
	assert.Equal(t, uint(len(ups)), version)
}
