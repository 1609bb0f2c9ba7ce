package postgresengine

import (
	"context"
	"errors"

	"github.com/doug-martin/goqu/v9"

	"github.com/booklend/rental-service/internal/domain"
	"github.com/booklend/rental-service/internal/store"
)

// ReturnedItemRepository persists and loads the immutable return history.
type ReturnedItemRepository struct {
	engine Engine
	mapper ReturnedItemRowMapper
}

// NewReturnedItemRepository creates a returned-item repository on top of the engine.
func NewReturnedItemRepository(engine Engine) *ReturnedItemRepository {
	return &ReturnedItemRepository{engine: engine}
}

func (r *ReturnedItemRepository) spec(where []goqu.Expression, pageable *store.Pageable) selectSpec {
	return selectSpec{
		table:    returnedItemTable,
		alias:    entityAlias,
		prefix:   entityAlias,
		where:    where,
		pageable: pageable,
	}
}

// Save inserts the returned item when it has no identifier yet. Returned
// items are immutable history, so an already-persisted item is left as is.
func (r *ReturnedItemRepository) Save(ctx context.Context, item *domain.ReturnedItem) error {
	if item.ID != 0 {
		return nil
	}

	record := goqu.Record{
		colBookID:       item.BookID,
		colBookTitle:    item.BookTitle,
		colReturnedDate: item.ReturnedDate,
		colRentalID:     item.RentalID,
	}

	id, err := r.engine.insertReturningID(ctx, returnedItemTable.Name, record)
	if err != nil {
		return err
	}
	item.ID = id

	return nil
}

// FindByID loads one returned item. Absence is surfaced as a nil item.
func (r *ReturnedItemRepository) FindByID(ctx context.Context, id int64) (*domain.ReturnedItem, error) {
	where := []goqu.Expression{goqu.Ex{entityAlias + "." + colID: id}}

	row, err := r.engine.selectOneRow(ctx, r.spec(where, nil))
	if errors.Is(err, store.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	item, mapErr := r.mapper.Map(row, entityAlias)
	if mapErr != nil {
		return nil, mapErr
	}

	return &item, nil
}

// FindAllBy returns one page of returned items. A nil pageable means a full
// unordered scan.
func (r *ReturnedItemRepository) FindAllBy(ctx context.Context, pageable *store.Pageable) ([]domain.ReturnedItem, error) {
	rows, err := r.engine.executeSelect(ctx, r.spec(nil, pageable))
	if err != nil {
		return nil, err
	}

	return mapRows(rows, func(row Row) (domain.ReturnedItem, error) {
		return r.mapper.Map(row, entityAlias)
	})
}

// FindByRental returns the return history of one rental.
func (r *ReturnedItemRepository) FindByRental(ctx context.Context, rentalID int64) ([]domain.ReturnedItem, error) {
	where := []goqu.Expression{goqu.Ex{entityAlias + "." + colRentalID: rentalID}}

	rows, err := r.engine.executeSelect(ctx, r.spec(where, nil))
	if err != nil {
		return nil, err
	}

	return mapRows(rows, func(row Row) (domain.ReturnedItem, error) {
		return r.mapper.Map(row, entityAlias)
	})
}

// DeleteByID removes one returned item. Deleting an absent id completes silently.
func (r *ReturnedItemRepository) DeleteByID(ctx context.Context, id int64) error {
	_, err := r.engine.deleteWhere(ctx, returnedItemTable.Name, goqu.Ex{colID: id})
	return err
}

// Count returns the number of stored returned items.
func (r *ReturnedItemRepository) Count(ctx context.Context) (int64, error) {
	return r.engine.countWhere(ctx, returnedItemTable.Name)
}
