package database

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/golang-migrate/migrate/v4"
)

// MigrateUp applies every pending migration and returns the resulting version.
func MigrateUp(m Migrator) (uint, error) {
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("failed to apply migrations: %w", err)
	}
	return currentVersion(m)
}

// MigrateDown reverts steps migrations, or all of them when steps is 0.
func MigrateDown(m Migrator, steps uint) (uint, error) {
	var err error
	if steps == 0 {
		err = m.Down()
	} else {
		if steps > math.MaxInt32 {
			return 0, fmt.Errorf("too many steps: %d", steps)
		}
		err = m.Steps(-int(steps))
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("failed to revert migrations: %w", err)
	}
	return currentVersion(m)
}

func currentVersion(m Migrator) (uint, error) {
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read migration version: %w", err)
	}
	if dirty {
		slog.Warn("Database is in a dirty migration state", "version", version)
	}
	return version, nil
}
