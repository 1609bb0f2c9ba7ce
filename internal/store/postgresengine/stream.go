package postgresengine

import (
	"errors"

	"github.com/booklend/rental-service/internal/store"
	"github.com/booklend/rental-service/internal/store/postgresengine/internal/adapters"
)

// Rows is a lazy, single-pass, finite cursor over fetched result rows.
// Each Next advances the underlying driver cursor and materializes one Row
// keyed by output column alias. The underlying connection resources are
// released when the cursor is exhausted, fails, or is closed early;
// abandoning a stream mid-way must still end with Close.
type Rows struct {
	rows    adapters.DBRows
	aliases []string
	logger  store.Logger
	current Row
	err     error
	closed  bool
}

// Next advances to the next row, reporting false when the cursor is
// exhausted or a failure aborted the stream. A failure is surfaced by Err.
func (r *Rows) Next() bool {
	if r.closed || r.err != nil {
		return false
	}

	if !r.rows.Next() {
		if rowsErr := r.rows.Err(); rowsErr != nil {
			r.err = errors.Join(store.ErrRowsFailed, rowsErr)
		}
		r.Close()
		return false
	}

	destinations := make([]any, len(r.aliases))
	for i := range destinations {
		var value any
		destinations[i] = &value
	}

	if scanErr := r.rows.Scan(destinations...); scanErr != nil {
		r.err = errors.Join(store.ErrScanningRowFailed, scanErr)
		if r.logger != nil {
			r.logger.Error(logMsgScanRowFailed, logAttrError, scanErr.Error())
		}
		r.Close()
		return false
	}

	row := make(Row, len(r.aliases))
	for i, alias := range r.aliases {
		row[alias] = *(destinations[i].(*any))
	}
	r.current = row

	return true
}

// Row returns the row materialized by the last successful Next.
func (r *Rows) Row() Row {
	return r.current
}

// Err returns the failure that aborted the stream, if any.
func (r *Rows) Err() error {
	return r.err
}

// Close releases the underlying connection resources. It is idempotent and
// safe to call on every exit path.
func (r *Rows) Close() {
	if r.closed {
		return
	}
	r.closed = true

	if closeErr := r.rows.Close(); closeErr != nil {
		if r.logger != nil {
			r.logger.Warn(logMsgCloseRowsFailed, logAttrError, closeErr.Error())
		}
	}
}

// mapRows drains a cursor through a row-mapping function, closing it on
// every exit path. A mapping failure aborts the in-flight sequence and is
// propagated as the query's failure.
func mapRows[T any](rows *Rows, mapFn func(Row) (T, error)) ([]T, error) {
	defer rows.Close()

	entities := make([]T, 0)

	for rows.Next() {
		entity, mapErr := mapFn(rows.Row())
		if mapErr != nil {
			return nil, mapErr
		}

		entities = append(entities, entity)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entities, nil
}
