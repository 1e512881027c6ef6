package postgresengine

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // driver import
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/AntonStoeckl/outcome-streams-datalayer-go/datalayer"
	"github.com/AntonStoeckl/outcome-streams-datalayer-go/datalayer/postgresengine/internal/adapters"
)

const (
	defaultCacheTableName        = "cache_entries"
	logMsgBuildSelectQueryFailed = "failed to build select query"
	logMsgBuildUpsertQueryFailed = "failed to build upsert query"
	logMsgBuildDeleteQueryFailed = "failed to build delete query"
	logMsgDBQueryFailed          = "database query execution failed"
	logMsgDBExecFailed           = "database execution failed"
	logMsgCloseRowsFailed        = "failed to close database rows"
	logMsgScanRowFailed          = "failed to scan database row"
	logMsgRowsAffectedFailed     = "failed to get rows affected count"
	logMsgEntryRead              = "cache entry read"
	logMsgEntryWritten           = "cache entry written"
	logMsgEntryRemoved           = "cache entry removed"
	logMsgNoEntryForKey          = "no entry for key"
	logMsgSQLExecuted            = "executed sql for: "
	logMsgOperation              = "cache store operation: "
	colCacheKey                  = "cache_key"
	colData                      = "data"
	colCachedAt                  = "cached_at"
	dialectPostgres              = "postgres"
	operationRead                = "read"
	operationWrite               = "write"
	operationRemove              = "remove"
)

type sqlQueryString = string

// CacheStore persists cache entries in a PostgreSQL key-value table,
// one row per query key, overwritten on every write.
// It leverages a database adapter and supports customizable logging,
// metrics, tracing, and cache table configuration.
type CacheStore struct {
	db               adapters.DBAdapter
	cacheTableName   string
	logger           datalayer.Logger
	contextualLogger datalayer.ContextualLogger
	metricsCollector datalayer.MetricsCollector
	tracingCollector datalayer.TracingCollector
}

var _ datalayer.CacheStore = (*CacheStore)(nil)

// NewCacheStoreFromPGXPool creates a new CacheStore using a pgx Pool with optional configuration.
func NewCacheStoreFromPGXPool(db *pgxpool.Pool, options ...Option) (*CacheStore, error) {
	if db == nil {
		return nil, datalayer.ErrNilDatabaseConnection
	}

	cs := &CacheStore{
		db:             adapters.NewPGXAdapter(db),
		cacheTableName: defaultCacheTableName,
	}

	for _, option := range options {
		if err := option(cs); err != nil {
			return nil, err
		}
	}

	return cs, nil
}

// NewCacheStoreFromPGXPoolWithReplica creates a new CacheStore using a primary pgx Pool
// for writes and a replica pool for reads, with optional configuration.
// Reads served from the replica may briefly lag behind the most recent write,
// which cache semantics tolerate.
func NewCacheStoreFromPGXPoolWithReplica(db *pgxpool.Pool, replica *pgxpool.Pool, options ...Option) (*CacheStore, error) {
	if db == nil || replica == nil {
		return nil, datalayer.ErrNilDatabaseConnection
	}

	cs := &CacheStore{
		db:             adapters.NewPGXAdapterWithReplica(db, replica),
		cacheTableName: defaultCacheTableName,
	}

	for _, option := range options {
		if err := option(cs); err != nil {
			return nil, err
		}
	}

	return cs, nil
}

// NewCacheStoreFromSQLDB creates a new CacheStore using a sql.DB with optional configuration.
func NewCacheStoreFromSQLDB(db *sql.DB, options ...Option) (*CacheStore, error) {
	if db == nil {
		return nil, datalayer.ErrNilDatabaseConnection
	}

	cs := &CacheStore{
		db:             adapters.NewSQLAdapter(db),
		cacheTableName: defaultCacheTableName,
	}

	for _, option := range options {
		if err := option(cs); err != nil {
			return nil, err
		}
	}

	return cs, nil
}

// NewCacheStoreFromSQLX creates a new CacheStore using a sqlx.DB with optional configuration.
func NewCacheStoreFromSQLX(db *sqlx.DB, options ...Option) (*CacheStore, error) {
	if db == nil {
		return nil, datalayer.ErrNilDatabaseConnection
	}

	cs := &CacheStore{
		db:             adapters.NewSQLXAdapter(db),
		cacheTableName: defaultCacheTableName,
	}

	for _, option := range options {
		if err := option(cs); err != nil {
			return nil, err
		}
	}

	return cs, nil
}

// Read retrieves the cache entry stored under the given key
// and returns datalayer.ErrCacheMiss when the table holds no row for it.
func (cs *CacheStore) Read(ctx context.Context, key datalayer.QueryKey) (datalayer.CacheEntry, error) {
	var empty datalayer.CacheEntry

	if key.IsEmpty() {
		return empty, datalayer.ErrEmptyQueryKey
	}

	ctx, span := datalayer.StartCacheStoreSpan(ctx, cs.tracingCollector, operationRead)
	start := time.Now()

	sqlQuery, buildQueryErr := cs.buildSelectQuery(key)
	if buildQueryErr != nil {
		cs.logError(ctx, logMsgBuildSelectQueryFailed, buildQueryErr, datalayer.LogAttrQueryKey, key.String())
		cs.finishOperation(ctx, span, operationRead, datalayer.StatusError, start, buildQueryErr)

		return empty, buildQueryErr
	}

	rows, queryErr := cs.db.Query(ctx, sqlQuery)
	cs.logSQLWithDuration(ctx, sqlQuery, operationRead, time.Since(start))

	if queryErr != nil {
		cs.logError(ctx, logMsgDBQueryFailed, queryErr, datalayer.LogAttrQuery, sqlQuery)
		joinedErr := errors.Join(datalayer.ErrCacheReadFailed, queryErr)
		cs.finishOperation(ctx, span, operationRead, datalayer.StatusError, start, joinedErr)

		return empty, joinedErr
	}
	defer cs.closeRows(ctx, rows)

	if !rows.Next() {
		cs.logOperation(ctx, logMsgNoEntryForKey, datalayer.LogAttrQueryKey, key.String())
		cs.finishOperation(ctx, span, operationRead, datalayer.StatusCacheMiss, start, nil)

		return empty, datalayer.ErrCacheMiss
	}

	var data []byte
	var cachedAt time.Time

	if scanErr := rows.Scan(&data, &cachedAt); scanErr != nil {
		cs.logError(ctx, logMsgScanRowFailed, scanErr, datalayer.LogAttrQueryKey, key.String())
		joinedErr := errors.Join(datalayer.ErrCacheReadFailed, scanErr)
		cs.finishOperation(ctx, span, operationRead, datalayer.StatusError, start, joinedErr)

		return empty, joinedErr
	}

	entry := datalayer.CacheEntry{
		QueryKey: key,
		Data:     data,
		CachedAt: cachedAt,
	}

	cs.logOperation(
		ctx,
		logMsgEntryRead,
		datalayer.LogAttrQueryKey, key.String(),
		datalayer.LogAttrDurationMS, datalayer.ToMilliseconds(time.Since(start)),
	)
	cs.finishOperation(ctx, span, operationRead, datalayer.StatusCacheHit, start, nil)

	return entry, nil
}

// Write stores the cache entry under its key, replacing any previous entry
// via INSERT ... ON CONFLICT DO UPDATE so the most recent write always wins.
func (cs *CacheStore) Write(ctx context.Context, entry datalayer.CacheEntry) error {
	if validateErr := entry.Validate(); validateErr != nil {
		return validateErr
	}

	ctx, span := datalayer.StartCacheStoreSpan(ctx, cs.tracingCollector, operationWrite)
	start := time.Now()

	sqlQuery, buildQueryErr := cs.buildUpsertQuery(entry)
	if buildQueryErr != nil {
		cs.logError(ctx, logMsgBuildUpsertQueryFailed, buildQueryErr, datalayer.LogAttrQueryKey, entry.QueryKey.String())
		cs.finishOperation(ctx, span, operationWrite, datalayer.StatusError, start, buildQueryErr)

		return buildQueryErr
	}

	result, execErr := cs.db.Exec(ctx, sqlQuery)
	cs.logSQLWithDuration(ctx, sqlQuery, operationWrite, time.Since(start))

	if execErr != nil {
		cs.logError(ctx, logMsgDBExecFailed, execErr, datalayer.LogAttrQuery, sqlQuery)
		joinedErr := errors.Join(datalayer.ErrCacheWriteFailed, execErr)
		cs.finishOperation(ctx, span, operationWrite, datalayer.StatusError, start, joinedErr)

		return joinedErr
	}

	if _, rowsAffectedErr := result.RowsAffected(); rowsAffectedErr != nil {
		cs.logError(ctx, logMsgRowsAffectedFailed, rowsAffectedErr)
		joinedErr := errors.Join(datalayer.ErrCacheWriteFailed, rowsAffectedErr)
		cs.finishOperation(ctx, span, operationWrite, datalayer.StatusError, start, joinedErr)

		return joinedErr
	}

	cs.logOperation(
		ctx,
		logMsgEntryWritten,
		datalayer.LogAttrQueryKey, entry.QueryKey.String(),
		datalayer.LogAttrDurationMS, datalayer.ToMilliseconds(time.Since(start)),
	)
	cs.finishOperation(ctx, span, operationWrite, datalayer.StatusSuccess, start, nil)

	return nil
}

// Remove deletes the cache entry stored under the given key.
// Removing an absent key is not an error.
func (cs *CacheStore) Remove(ctx context.Context, key datalayer.QueryKey) error {
	if key.IsEmpty() {
		return datalayer.ErrEmptyQueryKey
	}

	ctx, span := datalayer.StartCacheStoreSpan(ctx, cs.tracingCollector, operationRemove)
	start := time.Now()

	sqlQuery, buildQueryErr := cs.buildDeleteQuery(key)
	if buildQueryErr != nil {
		cs.logError(ctx, logMsgBuildDeleteQueryFailed, buildQueryErr, datalayer.LogAttrQueryKey, key.String())
		cs.finishOperation(ctx, span, operationRemove, datalayer.StatusError, start, buildQueryErr)

		return buildQueryErr
	}

	result, execErr := cs.db.Exec(ctx, sqlQuery)
	cs.logSQLWithDuration(ctx, sqlQuery, operationRemove, time.Since(start))

	if execErr != nil {
		cs.logError(ctx, logMsgDBExecFailed, execErr, datalayer.LogAttrQuery, sqlQuery)
		joinedErr := errors.Join(datalayer.ErrCacheRemoveFailed, execErr)
		cs.finishOperation(ctx, span, operationRemove, datalayer.StatusError, start, joinedErr)

		return joinedErr
	}

	rowsAffected, rowsAffectedErr := result.RowsAffected()
	if rowsAffectedErr != nil {
		cs.logError(ctx, logMsgRowsAffectedFailed, rowsAffectedErr)
		joinedErr := errors.Join(datalayer.ErrCacheRemoveFailed, rowsAffectedErr)
		cs.finishOperation(ctx, span, operationRemove, datalayer.StatusError, start, joinedErr)

		return joinedErr
	}

	cs.logOperation(
		ctx,
		logMsgEntryRemoved,
		datalayer.LogAttrQueryKey, key.String(),
		"rows_affected", rowsAffected,
		datalayer.LogAttrDurationMS, datalayer.ToMilliseconds(time.Since(start)),
	)
	cs.finishOperation(ctx, span, operationRemove, datalayer.StatusSuccess, start, nil)

	return nil
}

// closeRows safely closes database rows and logs any errors.
func (cs *CacheStore) closeRows(ctx context.Context, rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		cs.logWarn(ctx, logMsgCloseRowsFailed, datalayer.LogAttrError, closeErr.Error())
	}
}

func (cs *CacheStore) buildSelectQuery(key datalayer.QueryKey) (sqlQueryString, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(cs.cacheTableName).
		Select(colData, colCachedAt).
		Where(goqu.Ex{colCacheKey: key.String()})

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(datalayer.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func (cs *CacheStore) buildUpsertQuery(entry datalayer.CacheEntry) (sqlQueryString, error) {
	insertStmt := goqu.Dialect(dialectPostgres).
		Insert(cs.cacheTableName).
		Cols(colCacheKey, colData, colCachedAt).
		Vals(goqu.Vals{entry.QueryKey.String(), entry.Data, entry.CachedAt}).
		OnConflict(goqu.DoUpdate(colCacheKey, goqu.Record{
			colData:     entry.Data,
			colCachedAt: entry.CachedAt,
		}))

	sqlQuery, _, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(datalayer.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func (cs *CacheStore) buildDeleteQuery(key datalayer.QueryKey) (sqlQueryString, error) {
	deleteStmt := goqu.Dialect(dialectPostgres).
		Delete(cs.cacheTableName).
		Where(goqu.Ex{colCacheKey: key.String()})

	sqlQuery, _, toSQLErr := deleteStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(datalayer.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}
