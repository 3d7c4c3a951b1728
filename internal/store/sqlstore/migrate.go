package sqlstore

import (
	"errors"
	"fmt"
	"strings"

	migrate "github.com/golang-migrate/migrate/v4"
	// Register the postgres driver and the file source for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// RunSQLMigrations applies the versioned migrations found in dir to a
// PostgreSQL database.
func RunSQLMigrations(dir, dsn string) error {
	source := "file://" + strings.TrimPrefix(dir, "file://")
	m, err := migrate.New(source, ToURLDSN(NormalizeDSN(dsn)))
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}
