package records

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"wpp/internal/config"
	"wpp/internal/services"
	"wpp/internal/sqlstore"
)

var (
	//go:embed schema_sqlite.sql
	sqliteSchemaSQL string
	//go:embed schema_postgres.sql
	postgresSchemaSQL string
)

// schemaVersion is the current schema version for both dialects.
const schemaVersion = 1

const postgresTableExists = `SELECT COUNT(1) FROM information_schema.tables
WHERE table_schema = current_schema() AND table_name = 'schema_version'`

// Store persists normalized submissions.
type Store struct {
	db      *sql.DB
	driver  string
	timeout time.Duration
}

// Open connects to the configured records backend and ensures its schema.
func Open(ctx context.Context, cfg *config.Config) (*Store, error) {
	return OpenDriver(ctx, cfg.Records.Driver, cfg.RecordsDSN(), cfg.StatementTimeout())
}

// OpenDriver connects using an explicit driver and DSN. timeout bounds each
// Persist call; zero disables the bound.
func OpenDriver(ctx context.Context, driver, dsn string, timeout time.Duration) (*Store, error) {
	ctx = sqlstore.EnsureContext(ctx)
	var (
		db     *sql.DB
		err    error
		schema sqlstore.Schema
	)
	switch driver {
	case config.DriverSQLite:
		db, err = sqlstore.OpenSQLite(dsn)
		if err != nil {
			return nil, services.Wrap(ErrPersistence, "records", "open", "sqlite", err)
		}
		schema = sqlstore.Schema{Name: "records", SQL: sqliteSchemaSQL, Version: schemaVersion}
	case config.DriverPostgres:
		db, err = sql.Open("postgres", dsn)
		if err != nil {
			return nil, services.Wrap(ErrPersistence, "records", "open", "postgres", err)
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, services.Wrap(ErrPersistence, "records", "open", "ping postgres", err)
		}
		schema = sqlstore.Schema{
			Name:             "records",
			SQL:              postgresSchemaSQL,
			Version:          schemaVersion,
			TableExistsQuery: postgresTableExists,
			Rebind:           rebindDollar,
		}
	default:
		return nil, services.Wrap(services.ErrConfiguration, "records", "open", fmt.Sprintf("unsupported driver %q", driver), nil)
	}

	if err := sqlstore.EnsureSchema(ctx, db, schema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db, driver: driver, timeout: timeout}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Driver reports the backend in use.
func (s *Store) Driver() string {
	return s.driver
}

// Ping checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := sqlstore.Ping(ctx, s.db); err != nil {
		return services.Wrap(ErrPersistence, "records", "ping", "", err)
	}
	return nil
}

// rebind converts ? placeholders for the active driver.
func (s *Store) rebind(query string) string {
	if s.driver == config.DriverPostgres {
		return rebindDollar(query)
	}
	return query
}

// timeArg adapts a timestamp to the column type of the active driver.
func (s *Store) timeArg(t time.Time) any {
	if s.driver == config.DriverPostgres {
		return t.UTC()
	}
	return sqlstore.Timestamp(t)
}

func rebindDollar(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// timeValue scans TEXT (SQLite) or TIMESTAMPTZ (Postgres) columns.
type timeValue struct {
	t time.Time
}

func (v *timeValue) Scan(src any) error {
	switch val := src.(type) {
	case nil:
		v.t = time.Time{}
	case time.Time:
		v.t = val
	case string:
		v.t = sqlstore.ParseTimestamp(val)
	case []byte:
		v.t = sqlstore.ParseTimestamp(string(val))
	default:
		return fmt.Errorf("unsupported time value %T", src)
	}
	return nil
}
