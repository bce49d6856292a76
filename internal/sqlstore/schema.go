package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrSchemaMismatch indicates the database schema version doesn't match the expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// Schema describes one store's embedded DDL.
type Schema struct {
	// Name appears in mismatch errors, e.g. "queue".
	Name    string
	SQL     string
	Version int
	// TableExistsQuery returns a count for the schema_version table; it
	// defaults to the sqlite_master lookup.
	TableExistsQuery string
	// Rebind converts ? placeholders for the target driver.
	Rebind func(string) string
}

const sqliteTableExists = "SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'"

// EnsureSchema creates the schema on an empty database or verifies the
// recorded version on an existing one.
func EnsureSchema(ctx context.Context, db *sql.DB, schema Schema) error {
	ctx = EnsureContext(ctx)
	existsQuery := schema.TableExistsQuery
	if existsQuery == "" {
		existsQuery = sqliteTableExists
	}
	rebind := schema.Rebind
	if rebind == nil {
		rebind = func(q string) string { return q }
	}

	var tableExists int
	if err := db.QueryRowContext(ctx, existsQuery).Scan(&tableExists); err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}
	if tableExists == 0 {
		return createSchema(ctx, db, schema, rebind)
	}

	var version int
	if err := db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schema.Version {
		return fmt.Errorf("%w: %s database has version %d, expected %d (delete the database to recreate it)",
			ErrSchemaMismatch, schema.Name, version, schema.Version)
	}
	return nil
}

func createSchema(ctx context.Context, db *sql.DB, schema Schema, rebind func(string) string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schema.SQL); err != nil {
		return fmt.Errorf("create %s schema: %w", schema.Name, err)
	}
	if _, err := tx.ExecContext(ctx, rebind("INSERT INTO schema_version (version) VALUES (?)"), schema.Version); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}
