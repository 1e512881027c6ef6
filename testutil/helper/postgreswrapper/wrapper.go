package postgreswrapper

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver
	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/outcome-streams-datalayer-go/datalayer/postgresengine"
	"github.com/AntonStoeckl/outcome-streams-datalayer-go/example/shared/shell/config"
)

// Engine type constants
const (
	typePGXPool = "pgx.pool"
	typeSQLDB   = "sql.db"
	typeSQLXDB  = "sqlx.db"
)

const (
	cacheTableName = "cache_entries"

	createCacheTableDDL = `
		CREATE TABLE IF NOT EXISTS cache_entries (
			cache_key TEXT PRIMARY KEY,
			data      JSONB NOT NULL,
			cached_at TIMESTAMPTZ NOT NULL
		)`

	reachabilityTimeout = 2 * time.Second
)

// Wrapper interface to abstract over different engine types
type Wrapper interface {
	GetCacheStore() *postgresengine.CacheStore
	Close()
}

// PGXPoolWrapper wraps pgxpool-based testing
type PGXPoolWrapper struct {
	pool *pgxpool.Pool
	cs   *postgresengine.CacheStore
}

func (w *PGXPoolWrapper) GetCacheStore() *postgresengine.CacheStore {
	return w.cs
}

func (w *PGXPoolWrapper) Close() {
	w.pool.Close()
}

// SQLDBWrapper wraps sql.DB-based testing
type SQLDBWrapper struct {
	db *sql.DB
	cs *postgresengine.CacheStore
}

func (w *SQLDBWrapper) GetCacheStore() *postgresengine.CacheStore {
	return w.cs
}

func (w *SQLDBWrapper) Close() {
	_ = w.db.Close() // ignore error
}

// SQLXWrapper wraps sqlx.DB-based testing
type SQLXWrapper struct {
	db *sqlx.DB
	cs *postgresengine.CacheStore
}

func (w *SQLXWrapper) GetCacheStore() *postgresengine.CacheStore {
	return w.cs
}

func (w *SQLXWrapper) Close() {
	_ = w.db.Close() // ignore error
}

// SkipUnlessPostgresIsReachable skips the calling test when the test
// database does not answer a ping within a short timeout.
func SkipUnlessPostgresIsReachable(t testing.TB) {
	t.Helper()

	db, err := sql.Open("postgres", config.PostgresTestDSN())
	if err != nil {
		t.Skipf("postgres is not available: %v", err)
	}

	defer func(db *sql.DB) {
		_ = db.Close() // makes no sense to handle this
	}(db)

	ctx, cancel := context.WithTimeout(context.Background(), reachabilityTimeout)
	defer cancel()

	if pingErr := db.PingContext(ctx); pingErr != nil {
		t.Skipf("postgres is not reachable at %s: %v", config.PostgresTestDSN(), pingErr)
	}
}

// CreateWrapperWithTestConfig creates the appropriate wrapper based on the
// ADAPTER_TYPE environment variable. It skips the calling test when the test
// database is not reachable and makes sure the cache table exists.
func CreateWrapperWithTestConfig(t testing.TB, options ...postgresengine.Option) Wrapper {
	t.Helper()

	prepareDatabase(t)

	engineTypeFromEnv := strings.ToLower(os.Getenv("ADAPTER_TYPE"))

	switch engineTypeFromEnv {
	case typePGXPool, "":
		connPool, err := pgxpool.NewWithConfig(context.Background(), config.PostgresPGXPoolTestConfig())
		assert.NoError(t, err, "error connecting to DB pool in test setup")

		cs, err := postgresengine.NewCacheStoreFromPGXPool(connPool, options...)
		assert.NoError(t, err, "error creating cache store")

		return &PGXPoolWrapper{pool: connPool, cs: cs}

	case typeSQLDB:
		db := config.PostgresSQLDBTestConfig()

		cs, err := postgresengine.NewCacheStoreFromSQLDB(db, options...)
		assert.NoError(t, err, "error creating cache store")

		return &SQLDBWrapper{db: db, cs: cs}

	case typeSQLXDB:
		db := config.PostgresSQLXTestConfig()

		cs, err := postgresengine.NewCacheStoreFromSQLX(db, options...)
		assert.NoError(t, err, "error creating cache store")

		return &SQLXWrapper{db: db, cs: cs}

	default: // neither one of the known types nor empty
		panic(fmt.Sprintf("unsupported wrapper type from env: %s", engineTypeFromEnv))
	}
}

// prepareDatabase skips the test when the database is unreachable and
// creates the cache table when it is missing.
func prepareDatabase(t testing.TB) {
	t.Helper()

	SkipUnlessPostgresIsReachable(t)

	db, err := sql.Open("postgres", config.PostgresTestDSN())
	assert.NoError(t, err, "error opening DB connection in test setup")

	defer func(db *sql.DB) {
		_ = db.Close() // makes no sense to handle this
	}(db)

	_, err = db.Exec(createCacheTableDDL)
	assert.NoError(t, err, "error creating the cache table in test setup")
}

// CleanUp truncates the cache table for the given wrapper
func CleanUp(t testing.TB, wrapper Wrapper) {
	switch w := wrapper.(type) {
	case *PGXPoolWrapper:
		_, err := w.pool.Exec(context.Background(), "TRUNCATE TABLE "+cacheTableName)
		assert.NoError(t, err, "error cleaning up the cache table")

	case *SQLDBWrapper:
		_, err := w.db.Exec("TRUNCATE TABLE " + cacheTableName)
		assert.NoError(t, err, "error cleaning up the cache table")

	case *SQLXWrapper:
		_, err := w.db.Exec("TRUNCATE TABLE " + cacheTableName)
		assert.NoError(t, err, "error cleaning up the cache table")

	default:
		panic(fmt.Sprintf("unsupported wrapper type: %T", w))
	}
}

// CountEntries returns the number of rows in the cache table for the given wrapper
func CountEntries(t testing.TB, wrapper Wrapper) int {
	var cnt int
	var err error

	switch w := wrapper.(type) {
	case *PGXPoolWrapper:
		row := w.pool.QueryRow(context.Background(), `SELECT count(*) FROM `+cacheTableName)
		err = row.Scan(&cnt)

	case *SQLDBWrapper:
		row := w.db.QueryRow(`SELECT count(*) FROM ` + cacheTableName)
		err = row.Scan(&cnt)

	case *SQLXWrapper:
		row := w.db.QueryRow(`SELECT count(*) FROM ` + cacheTableName)
		err = row.Scan(&cnt)

	default:
		panic(fmt.Sprintf("unsupported wrapper type: %T", w))
	}

	assert.NoError(t, err, "error counting cache entries")

	return cnt
}
