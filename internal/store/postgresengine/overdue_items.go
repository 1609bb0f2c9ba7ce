package postgresengine

import (
	"context"
	"errors"

	"github.com/doug-martin/goqu/v9"

	"github.com/booklend/rental-service/internal/domain"
	"github.com/booklend/rental-service/internal/store"
)

// OverdueItemRepository persists and loads overdue records produced by the
// overdue-detection job. Lookups join the owning rental like rented items do.
type OverdueItemRepository struct {
	engine       Engine
	mapper       OverdueItemRowMapper
	rentalMapper RentalRowMapper
}

// NewOverdueItemRepository creates an overdue-item repository on top of the engine.
func NewOverdueItemRepository(engine Engine) *OverdueItemRepository {
	return &OverdueItemRepository{engine: engine}
}

func (r *OverdueItemRepository) spec(where []goqu.Expression, pageable *store.Pageable) selectSpec {
	return selectSpec{
		table:  overdueItemTable,
		alias:  entityAlias,
		prefix: entityAlias,
		joined: &join{
			table:         rentalTable,
			alias:         rentalAlias,
			prefix:        rentalAlias,
			localColumn:   colRentalID,
			foreignColumn: colID,
		},
		where:    where,
		pageable: pageable,
	}
}

func (r *OverdueItemRepository) process(row Row) (domain.OverdueItem, error) {
	item, err := r.mapper.Map(row, entityAlias)
	if err != nil {
		return domain.OverdueItem{}, err
	}

	rental, err := r.rentalMapper.Map(row, rentalAlias)
	if err != nil {
		return domain.OverdueItem{}, err
	}

	if rental.ID != 0 {
		item.Rental = &rental
	}

	return item, nil
}

// Save inserts the overdue item when it has no identifier yet and performs
// a full update otherwise.
func (r *OverdueItemRepository) Save(ctx context.Context, item *domain.OverdueItem) error {
	record := goqu.Record{
		colBookID:    item.BookID,
		colBookTitle: item.BookTitle,
		colDueDate:   item.DueDate,
		colRentalID:  item.RentalID,
	}

	if item.ID == 0 {
		id, err := r.engine.insertReturningID(ctx, overdueItemTable.Name, record)
		if err != nil {
			return err
		}
		item.ID = id
		return nil
	}

	_, err := r.engine.updateWhere(ctx, overdueItemTable.Name, record, goqu.Ex{colID: item.ID})

	return err
}

// FindByID loads one overdue item with its owning rental joined in.
// Absence is surfaced as a nil item, not an error.
func (r *OverdueItemRepository) FindByID(ctx context.Context, id int64) (*domain.OverdueItem, error) {
	where := []goqu.Expression{goqu.Ex{entityAlias + "." + colID: id}}

	row, err := r.engine.selectOneRow(ctx, r.spec(where, nil))
	if errors.Is(err, store.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	item, mapErr := r.process(row)
	if mapErr != nil {
		return nil, mapErr
	}

	return &item, nil
}

// FindAllBy returns one page of overdue items. A nil pageable means a full
// unordered scan.
func (r *OverdueItemRepository) FindAllBy(ctx context.Context, pageable *store.Pageable) ([]domain.OverdueItem, error) {
	rows, err := r.engine.executeSelect(ctx, r.spec(nil, pageable))
	if err != nil {
		return nil, err
	}

	return mapRows(rows, r.process)
}

// ExistsFor reports whether an overdue record already exists for the given
// rental and book, keeping the detection job idempotent.
func (r *OverdueItemRepository) ExistsFor(ctx context.Context, rentalID int64, bookID int64) (bool, error) {
	return r.engine.existsWhere(ctx, overdueItemTable.Name,
		goqu.Ex{colRentalID: rentalID, colBookID: bookID})
}

// DeleteByID removes one overdue item. Deleting an absent id completes silently.
func (r *OverdueItemRepository) DeleteByID(ctx context.Context, id int64) error {
	_, err := r.engine.deleteWhere(ctx, overdueItemTable.Name, goqu.Ex{colID: id})
	return err
}

// Count returns the number of stored overdue items.
func (r *OverdueItemRepository) Count(ctx context.Context) (int64, error) {
	return r.engine.countWhere(ctx, overdueItemTable.Name)
}
