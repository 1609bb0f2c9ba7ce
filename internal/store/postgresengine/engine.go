package postgresengine

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect import
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/booklend/rental-service/internal/store"
	"github.com/booklend/rental-service/internal/store/postgresengine/internal/adapters"
)

const (
	logMsgBuildSelectQueryFailed = "failed to build select query"
	logMsgBuildStmtFailed        = "failed to build sql statement"
	logMsgDBQueryFailed          = "database query execution failed"
	logMsgDBExecFailed           = "database execution failed"
	logMsgCloseRowsFailed        = "failed to close database rows"
	logMsgScanRowFailed          = "failed to scan database row"
	logMsgRowsAffectedFailed     = "failed to get rows affected count"
	logMsgSQLExecuted            = "executed sql for: "
	logMsgOperation              = "store operation: "
	logAttrError                 = "error"
	logAttrQuery                 = "query"
	logAttrTable                 = "table"
	logAttrDurationMS            = "duration_ms"
	logActionSelect              = "select"
	logActionExec                = "exec"
	dialectPostgres              = "postgres"
)

// Engine executes generic relational queries against PostgreSQL through a
// database adapter. It builds parameterized SELECT statements over one
// aliased table, optionally LEFT JOINing one related aliased table, and
// streams result rows lazily. It also exposes the generic insert, update,
// delete, exists and count primitives used by the entity repositories.
type Engine struct {
	db     adapters.DBAdapter
	logger store.Logger
}

// NewEngineFromPGXPool creates a new Engine using a pgx pool with optional configuration.
func NewEngineFromPGXPool(pool *pgxpool.Pool, options ...Option) (Engine, error) {
	if pool == nil {
		return Engine{}, store.ErrNilDatabaseConnection
	}

	return newEngine(adapters.NewPGXAdapter(pool), options...)
}

// NewEngineFromSQLDB creates a new Engine using a sql.DB with optional configuration.
func NewEngineFromSQLDB(db *sql.DB, options ...Option) (Engine, error) {
	if db == nil {
		return Engine{}, store.ErrNilDatabaseConnection
	}

	return newEngine(adapters.NewSQLAdapter(db), options...)
}

// NewEngineFromSQLX creates a new Engine using a sqlx.DB with optional configuration.
func NewEngineFromSQLX(db *sqlx.DB, options ...Option) (Engine, error) {
	if db == nil {
		return Engine{}, store.ErrNilDatabaseConnection
	}

	return newEngine(adapters.NewSQLXAdapter(db), options...)
}

func newEngine(db adapters.DBAdapter, options ...Option) (Engine, error) {
	engine := Engine{db: db}

	for _, option := range options {
		if err := option(&engine); err != nil {
			return Engine{}, err
		}
	}

	return engine, nil
}

// join describes the optional LEFT OUTER JOIN of a select: the related
// aliased table and the equality predicate joining it to the primary table.
type join struct {
	table         TableSpec
	alias         string
	prefix        string
	localColumn   string // column on the primary table
	foreignColumn string // column on the joined table
}

// selectSpec describes one select over a primary aliased table with an
// optional join, where clause and pagination.
type selectSpec struct {
	table    TableSpec
	alias    string
	prefix   string
	joined   *join
	where    []goqu.Expression
	pageable *store.Pageable
}

// buildSelectQuery assembles the parameterized SELECT for the given spec and
// returns the SQL, its arguments and the ordered output column aliases.
func (e Engine) buildSelectQuery(spec selectSpec) (string, []any, []string, error) {
	columns := spec.table.SelectColumns(spec.alias, spec.prefix)
	aliases := spec.table.OutputAliases(spec.prefix)

	selectStmt := goqu.Dialect(dialectPostgres).
		From(goqu.T(spec.table.Name).As(spec.alias)).
		Prepared(true)

	if spec.joined != nil {
		columns = append(columns, spec.joined.table.SelectColumns(spec.joined.alias, spec.joined.prefix)...)
		aliases = append(aliases, spec.joined.table.OutputAliases(spec.joined.prefix)...)

		selectStmt = selectStmt.LeftOuterJoin(
			goqu.T(spec.joined.table.Name).As(spec.joined.alias),
			goqu.On(goqu.I(spec.alias+"."+spec.joined.localColumn).Eq(goqu.I(spec.joined.alias+"."+spec.joined.foreignColumn))),
		)
	}

	selectStmt = selectStmt.Select(columns...)

	if len(spec.where) > 0 {
		selectStmt = selectStmt.Where(spec.where...)
	}

	selectStmt = e.applyPageable(spec, selectStmt)

	sqlQuery, args, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return "", nil, nil, errors.Join(store.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, args, aliases, nil
}

// applyPageable derives ORDER BY, LIMIT and OFFSET from the selectSpec's pageable.
// Without a pageable the select is a full unordered scan.
func (e Engine) applyPageable(spec selectSpec, selectStmt *goqu.SelectDataset) *goqu.SelectDataset {
	pageable := spec.pageable
	if pageable == nil {
		return selectStmt
	}

	if len(pageable.Sort) > 0 {
		ordered := make([]exp.OrderedExpression, 0, len(pageable.Sort))
		for _, order := range pageable.Sort {
			column := goqu.I(spec.alias + "." + order.Property)
			if order.Descending {
				ordered = append(ordered, column.Desc())
			} else {
				ordered = append(ordered, column.Asc())
			}
		}
		selectStmt = selectStmt.Order(ordered...)
	}

	return selectStmt.
		Limit(uint(pageable.Size)).
		Offset(uint(pageable.Offset()))
}

// executeSelect runs the select described by the selectSpec and returns a lazy
// row cursor. The caller owns the cursor and must close it; Close is safe on
// every exit path including early abandonment.
func (e Engine) executeSelect(ctx context.Context, spec selectSpec) (*Rows, error) {
	sqlQuery, args, aliases, buildErr := e.buildSelectQuery(spec)
	if buildErr != nil {
		if e.logger != nil {
			e.logger.Error(logMsgBuildSelectQueryFailed, logAttrError, buildErr.Error())
		}
		return nil, buildErr
	}

	start := time.Now()
	rows, queryErr := e.db.Query(ctx, sqlQuery, args...)
	duration := time.Since(start)
	e.logQueryWithDuration(sqlQuery, logActionSelect, duration)

	if queryErr != nil {
		if e.logger != nil {
			e.logger.Error(logMsgDBQueryFailed, logAttrError, queryErr.Error(), logAttrQuery, sqlQuery)
		}

		return nil, errors.Join(store.ErrQueryFailed, queryErr)
	}

	return &Rows{rows: rows, aliases: aliases, logger: e.logger}, nil
}

// selectOneRow runs the select and returns the single matching row, or
// store.ErrNoRows when the result set is empty. At most one row is consumed.
func (e Engine) selectOneRow(ctx context.Context, spec selectSpec) (Row, error) {
	rows, err := e.executeSelect(ctx, spec)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if rowsErr := rows.Err(); rowsErr != nil {
			return nil, rowsErr
		}
		return nil, store.ErrNoRows
	}

	return rows.Row(), nil
}

// execute runs a non-select statement and returns the number of affected rows.
func (e Engine) execute(ctx context.Context, sqlQuery string, args []any) (int64, error) {
	start := time.Now()
	result, execErr := e.db.Exec(ctx, sqlQuery, args...)
	duration := time.Since(start)
	e.logQueryWithDuration(sqlQuery, logActionExec, duration)

	if execErr != nil {
		if e.logger != nil {
			e.logger.Error(logMsgDBExecFailed, logAttrError, execErr.Error(), logAttrQuery, sqlQuery)
		}

		return 0, errors.Join(store.ErrExecFailed, execErr)
	}

	rowsAffected, rowsAffectedErr := result.RowsAffected()
	if rowsAffectedErr != nil {
		if e.logger != nil {
			e.logger.Error(logMsgRowsAffectedFailed, logAttrError, rowsAffectedErr.Error())
		}

		return 0, errors.Join(store.ErrRowsAffectedFailed, rowsAffectedErr)
	}

	return rowsAffected, nil
}

// insertReturningID inserts one record and returns the server-assigned id.
func (e Engine) insertReturningID(ctx context.Context, table string, record goqu.Record) (int64, error) {
	sqlQuery, args, toSQLErr := goqu.Dialect(dialectPostgres).
		Insert(table).
		Prepared(true).
		Rows(record).
		Returning(colID).
		ToSQL()
	if toSQLErr != nil {
		if e.logger != nil {
			e.logger.Error(logMsgBuildStmtFailed, logAttrError, toSQLErr.Error(), logAttrTable, table)
		}
		return 0, errors.Join(store.ErrBuildingQueryFailed, toSQLErr)
	}

	start := time.Now()
	rows, queryErr := e.db.Query(ctx, sqlQuery, args...)
	duration := time.Since(start)
	e.logQueryWithDuration(sqlQuery, logActionExec, duration)

	if queryErr != nil {
		if e.logger != nil {
			e.logger.Error(logMsgDBExecFailed, logAttrError, queryErr.Error(), logAttrQuery, sqlQuery)
		}
		return 0, errors.Join(store.ErrExecFailed, queryErr)
	}
	defer e.closeRows(rows)

	if !rows.Next() {
		return 0, store.ErrMissingReturnedID
	}

	var value any
	if scanErr := rows.Scan(&value); scanErr != nil {
		return 0, errors.Join(store.ErrScanningRowFailed, scanErr)
	}

	id, convErr := ColumnConverter{}.Int64(Row{colID: value}, colID)
	if convErr != nil {
		return 0, convErr
	}

	return id, nil
}

// updateWhere performs a full update of the record's columns for all rows
// matching the condition.
func (e Engine) updateWhere(ctx context.Context, table string, record goqu.Record, where ...goqu.Expression) (int64, error) {
	sqlQuery, args, toSQLErr := goqu.Dialect(dialectPostgres).
		Update(table).
		Prepared(true).
		Set(record).
		Where(where...).
		ToSQL()
	if toSQLErr != nil {
		if e.logger != nil {
			e.logger.Error(logMsgBuildStmtFailed, logAttrError, toSQLErr.Error(), logAttrTable, table)
		}
		return 0, errors.Join(store.ErrBuildingQueryFailed, toSQLErr)
	}

	return e.execute(ctx, sqlQuery, args)
}

// deleteWhere deletes all rows matching the condition and reports how many
// were removed. Deleting rows that are already gone is not an error.
func (e Engine) deleteWhere(ctx context.Context, table string, where ...goqu.Expression) (int64, error) {
	sqlQuery, args, toSQLErr := goqu.Dialect(dialectPostgres).
		Delete(table).
		Prepared(true).
		Where(where...).
		ToSQL()
	if toSQLErr != nil {
		if e.logger != nil {
			e.logger.Error(logMsgBuildStmtFailed, logAttrError, toSQLErr.Error(), logAttrTable, table)
		}
		return 0, errors.Join(store.ErrBuildingQueryFailed, toSQLErr)
	}

	return e.execute(ctx, sqlQuery, args)
}

// countWhere counts the rows matching the condition.
func (e Engine) countWhere(ctx context.Context, table string, where ...goqu.Expression) (int64, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(table).
		Prepared(true).
		Select(goqu.COUNT(goqu.Star()))

	if len(where) > 0 {
		selectStmt = selectStmt.Where(where...)
	}

	sqlQuery, args, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		if e.logger != nil {
			e.logger.Error(logMsgBuildStmtFailed, logAttrError, toSQLErr.Error(), logAttrTable, table)
		}
		return 0, errors.Join(store.ErrBuildingQueryFailed, toSQLErr)
	}

	start := time.Now()
	rows, queryErr := e.db.Query(ctx, sqlQuery, args...)
	duration := time.Since(start)
	e.logQueryWithDuration(sqlQuery, logActionSelect, duration)

	if queryErr != nil {
		if e.logger != nil {
			e.logger.Error(logMsgDBQueryFailed, logAttrError, queryErr.Error(), logAttrQuery, sqlQuery)
		}
		return 0, errors.Join(store.ErrQueryFailed, queryErr)
	}
	defer e.closeRows(rows)

	if !rows.Next() {
		return 0, store.ErrNoRows
	}

	var value any
	if scanErr := rows.Scan(&value); scanErr != nil {
		return 0, errors.Join(store.ErrScanningRowFailed, scanErr)
	}

	return ColumnConverter{}.Int64(Row{"count": value}, "count")
}

// existsWhere reports whether at least one row matches the condition.
func (e Engine) existsWhere(ctx context.Context, table string, where ...goqu.Expression) (bool, error) {
	count, err := e.countWhere(ctx, table, where...)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// closeRows safely closes database rows and logs any errors.
func (e Engine) closeRows(rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		if e.logger != nil {
			e.logger.Warn(logMsgCloseRowsFailed, logAttrError, closeErr.Error())
		}
	}
}

// logQueryWithDuration logs SQL with execution time at debug level if the logger is configured.
func (e Engine) logQueryWithDuration(sqlQuery string, action string, duration time.Duration) {
	if e.logger != nil {
		e.logger.Debug(logMsgSQLExecuted+action, logAttrDurationMS, durationToMilliseconds(duration), logAttrQuery, sqlQuery)
	}
}

// logOperation logs operational information at info level if the logger is configured.
func (e Engine) logOperation(action string, args ...any) {
	if e.logger != nil {
		e.logger.Info(logMsgOperation+action, args...)
	}
}

// durationToMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func durationToMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}
