package postgresengine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect import
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/librarium/library-service-go/library"
	"github.com/librarium/library-service-go/library/postgresengine/internal/adapters"
)

const (
	defaultBookTableName   = "book"
	defaultCardTableName   = "card"
	defaultBorrowTableName = "borrow"

	dialectPostgres = "postgres"

	colBookID      = "book_id"
	colCategory    = "category"
	colTitle       = "title"
	colPress       = "press"
	colPublishYear = "publish_year"
	colAuthor      = "author"
	colPrice       = "price"
	colStock       = "stock"
	colCardID      = "card_id"
	colName        = "name"
	colDepartment  = "department"
	colType        = "type"
	colBorrowTime  = "borrow_time"
	colReturnTime  = "return_time"

	logMsgBuildQueryFailed  = "failed to build sql statement"
	logMsgDBQueryFailed     = "database query execution failed"
	logMsgDBExecFailed      = "database execution failed"
	logMsgCloseRowsFailed   = "failed to close database rows"
	logMsgScanRowFailed     = "failed to scan database row"
	logMsgBeginTxFailed     = "failed to begin transaction"
	logMsgCommitFailed      = "failed to commit transaction"
	logMsgRollbackFailed    = "failed to roll back transaction"
	logMsgRowsAffectedFail  = "failed to get rows affected count"
	logMsgOperation         = "library operation: "
	logMsgSQLExecuted       = "executed sql for: "
	logAttrError            = "error"
	logAttrQuery            = "query"
	logAttrOperation        = "operation"
	logAttrDurationMS       = "duration_ms"
	metricOperationDuration = "library_operation_duration"
	metricRollbacksTotal    = "library_rollbacks_total"
	labelOperation          = "operation"
)

type sqlStatement interface {
	ToSQL() (string, []interface{}, error)
}

// dbSession is the common surface of a pooled connection and a transaction,
// so validation reads can run in either.
type dbSession interface {
	Query(ctx context.Context, query string) (adapters.DBRows, error)
	Exec(ctx context.Context, query string) (adapters.DBResult, error)
}

// Library is the transactional domain-logic layer for the catalog, the card
// registry and the borrow ledger, backed by a single PostgreSQL store.
// It leverages a database adapter and supports customizable logging, metrics
// and table configuration.
//
// Every operation that performs more than one mutation, or a mutation
// conditioned on a prior read, runs inside one transaction: begin, validate,
// mutate, commit, with rollback on any failure path. No partial effects are
// observable outside a successful commit.
type Library struct {
	db               adapters.DBAdapter
	bookTable        string
	cardTable        string
	borrowTable      string
	logger           library.Logger
	contextualLogger library.ContextualLogger
	metricsCollector library.MetricsCollector
}

// NewLibraryFromPGXPool creates a new Library using a pgx pool with optional configuration.
func NewLibraryFromPGXPool(db *pgxpool.Pool, options ...Option) (Library, error) {
	if db == nil {
		return Library{}, library.ErrNilDatabaseConnection
	}

	return newLibrary(adapters.NewPGXAdapter(db), options...)
}

// NewLibraryFromSQLDB creates a new Library using a sql.DB with optional configuration.
func NewLibraryFromSQLDB(db *sql.DB, options ...Option) (Library, error) {
	if db == nil {
		return Library{}, library.ErrNilDatabaseConnection
	}

	return newLibrary(adapters.NewSQLAdapter(db), options...)
}

// NewLibraryFromSQLX creates a new Library using a sqlx.DB with optional configuration.
func NewLibraryFromSQLX(db *sqlx.DB, options ...Option) (Library, error) {
	if db == nil {
		return Library{}, library.ErrNilDatabaseConnection
	}

	return newLibrary(adapters.NewSQLXAdapter(db), options...)
}

func newLibrary(db adapters.DBAdapter, options ...Option) (Library, error) {
	lib := Library{
		db:          db,
		bookTable:   defaultBookTableName,
		cardTable:   defaultCardTableName,
		borrowTable: defaultBorrowTableName,
	}

	for _, option := range options {
		if err := option(&lib); err != nil {
			return Library{}, err
		}
	}

	return lib, nil
}

func (l Library) builder() goqu.DialectWrapper {
	return goqu.Dialect(dialectPostgres)
}

// withinTransaction runs fn inside one transactional session: begin, fn,
// commit; any failure triggers rollback before the error is surfaced.
// A rollback failure is logged but never masks the original error.
func (l Library) withinTransaction(ctx context.Context, operation string, fn func(tx adapters.DBTx) error) error {
	start := time.Now()

	tx, beginErr := l.db.BeginTx(ctx)
	if beginErr != nil {
		l.logError(ctx, logMsgBeginTxFailed, logAttrError, beginErr.Error(), logAttrOperation, operation)
		return errors.Join(library.ErrStoreFailure, beginErr)
	}

	if opErr := fn(tx); opErr != nil {
		l.rollback(ctx, tx, operation)
		return opErr
	}

	if commitErr := tx.Commit(ctx); commitErr != nil {
		l.logError(ctx, logMsgCommitFailed, logAttrError, commitErr.Error(), logAttrOperation, operation)
		l.rollback(ctx, tx, operation)

		return errors.Join(library.ErrStoreFailure, commitErr)
	}

	l.logOperation(ctx, operation, logAttrDurationMS, l.durationToMilliseconds(time.Since(start)))
	l.recordDuration(operation, time.Since(start))

	return nil
}

func (l Library) rollback(ctx context.Context, tx adapters.DBTx, operation string) {
	if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
		l.logWarn(ctx, logMsgRollbackFailed, logAttrError, rollbackErr.Error(), logAttrOperation, operation)
	}

	if l.metricsCollector != nil {
		l.metricsCollector.IncrementCounter(metricRollbacksTotal, map[string]string{labelOperation: operation})
	}
}

// runQuery builds the statement, executes it on the given session and returns
// the rows. The caller owns closing them.
func (l Library) runQuery(ctx context.Context, session dbSession, operation string, stmt sqlStatement) (adapters.DBRows, error) {
	sqlQuery, toSQLErr := l.toSQL(ctx, stmt)
	if toSQLErr != nil {
		return nil, toSQLErr
	}

	start := time.Now()
	rows, queryErr := session.Query(ctx, sqlQuery)
	l.logQueryWithDuration(ctx, sqlQuery, operation, time.Since(start))

	if queryErr != nil {
		l.logError(ctx, logMsgDBQueryFailed, logAttrError, queryErr.Error(), logAttrQuery, sqlQuery)
		return nil, errors.Join(library.ErrStoreFailure, queryErr)
	}

	return rows, nil
}

// runExec builds the statement, executes it on the given session and returns
// the number of affected rows.
func (l Library) runExec(ctx context.Context, session dbSession, operation string, stmt sqlStatement) (int64, error) {
	sqlQuery, toSQLErr := l.toSQL(ctx, stmt)
	if toSQLErr != nil {
		return 0, toSQLErr
	}

	start := time.Now()
	result, execErr := session.Exec(ctx, sqlQuery)
	l.logQueryWithDuration(ctx, sqlQuery, operation, time.Since(start))

	if execErr != nil {
		l.logError(ctx, logMsgDBExecFailed, logAttrError, execErr.Error(), logAttrQuery, sqlQuery)
		return 0, errors.Join(library.ErrStoreFailure, execErr)
	}

	rowsAffected, rowsAffectedErr := result.RowsAffected()
	if rowsAffectedErr != nil {
		l.logError(ctx, logMsgRowsAffectedFail, logAttrError, rowsAffectedErr.Error())
		return 0, errors.Join(library.ErrStoreFailure, rowsAffectedErr)
	}

	return rowsAffected, nil
}

// rowExists runs the statement and reports whether it returned at least one row.
func (l Library) rowExists(ctx context.Context, session dbSession, operation string, stmt sqlStatement) (bool, error) {
	rows, err := l.runQuery(ctx, session, operation, stmt)
	if err != nil {
		return false, err
	}
	defer l.closeRows(ctx, rows)

	return rows.Next(), nil
}

// insertReturningID runs an insert statement carrying a RETURNING clause and
// scans the store-assigned identity from its single result row.
func (l Library) insertReturningID(ctx context.Context, session dbSession, operation string, stmt sqlStatement) (int64, error) {
	rows, err := l.runQuery(ctx, session, operation, stmt)
	if err != nil {
		return 0, err
	}
	defer l.closeRows(ctx, rows)

	if !rows.Next() {
		return 0, fmt.Errorf("%w: insert did not return an identity", library.ErrStoreFailure)
	}

	var id int64
	if scanErr := rows.Scan(&id); scanErr != nil {
		l.logError(ctx, logMsgScanRowFailed, logAttrError, scanErr.Error())
		return 0, errors.Join(library.ErrStoreFailure, scanErr)
	}

	return id, nil
}

func (l Library) toSQL(ctx context.Context, stmt sqlStatement) (string, error) {
	sqlQuery, _, toSQLErr := stmt.ToSQL()
	if toSQLErr != nil {
		l.logError(ctx, logMsgBuildQueryFailed, logAttrError, toSQLErr.Error())
		return "", errors.Join(library.ErrStoreFailure, toSQLErr)
	}

	return sqlQuery, nil
}

// closeRows safely closes database rows and logs any errors.
func (l Library) closeRows(ctx context.Context, rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		l.logWarn(ctx, logMsgCloseRowsFailed, logAttrError, closeErr.Error())
	}
}

func (l Library) logDebug(ctx context.Context, msg string, args ...any) {
	if l.contextualLogger != nil {
		l.contextualLogger.DebugContext(ctx, msg, args...)
		return
	}

	if l.logger != nil {
		l.logger.Debug(msg, args...)
	}
}

func (l Library) logWarn(ctx context.Context, msg string, args ...any) {
	if l.contextualLogger != nil {
		l.contextualLogger.WarnContext(ctx, msg, args...)
		return
	}

	if l.logger != nil {
		l.logger.Warn(msg, args...)
	}
}

func (l Library) logError(ctx context.Context, msg string, args ...any) {
	if l.contextualLogger != nil {
		l.contextualLogger.ErrorContext(ctx, msg, args...)
		return
	}

	if l.logger != nil {
		l.logger.Error(msg, args...)
	}
}

// logOperation logs operational information at info level if a logger is configured.
func (l Library) logOperation(ctx context.Context, operation string, args ...any) {
	if l.contextualLogger != nil {
		l.contextualLogger.InfoContext(ctx, logMsgOperation+operation, args...)
		return
	}

	if l.logger != nil {
		l.logger.Info(logMsgOperation+operation, args...)
	}
}

// logQueryWithDuration logs SQL statements with execution time at debug level.
func (l Library) logQueryWithDuration(ctx context.Context, sqlQuery string, operation string, duration time.Duration) {
	l.logDebug(ctx, logMsgSQLExecuted+operation, logAttrDurationMS, l.durationToMilliseconds(duration), logAttrQuery, sqlQuery)
}

func (l Library) recordDuration(operation string, duration time.Duration) {
	if l.metricsCollector != nil {
		l.metricsCollector.RecordDuration(metricOperationDuration, duration, map[string]string{labelOperation: operation})
	}
}

// durationToMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func (l Library) durationToMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}
