package db

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/pressly/goose/v3"
	"github.com/pressly/goose/v3/database"
)

// newProvider builds a goose provider over the embedded schema for the
// given sql driver name. Providers hold no package state, so parallel test
// databases can migrate side by side.
func newProvider(db *sql.DB, driver string) (*goose.Provider, error) {
	var dialect database.Dialect
	switch driver {
	case "sqlite":
		dialect = database.DialectSQLite3
	case "pgx":
		dialect = database.DialectPostgres
	default:
		return nil, fmt.Errorf("no migration dialect for driver %q", driver)
	}

	schema, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded schema: %w", err)
	}

	provider, err := goose.NewProvider(dialect, db, schema)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration provider: %w", err)
	}
	return provider, nil
}

// RunMigrations applies every pending schema change.
func RunMigrations(ctx context.Context, db *sql.DB, driver string) error {
	provider, err := newProvider(db, driver)
	if err != nil {
		return err
	}

	applied, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("failed to apply schema changes: %w", err)
	}

	version, err := provider.GetDBVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	slog.Info("schema up to date", "version", version, "applied", len(applied))
	return nil
}

// MigrateDown reverts the most recent schema change.
func MigrateDown(ctx context.Context, db *sql.DB, driver string) error {
	provider, err := newProvider(db, driver)
	if err != nil {
		return err
	}

	result, err := provider.Down(ctx)
	if err != nil {
		return fmt.Errorf("failed to revert schema change: %w", err)
	}

	slog.Info("schema change reverted", "version", result.Source.Version, "file", result.Source.Path)
	return nil
}
