package postgresengine

import (
	"context"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/booklend/rental-service/internal/domain"
	"github.com/booklend/rental-service/internal/store"
)

// RentedItemRepository persists and loads RentedItems. Lookups fetch the
// owning rental through a LEFT OUTER JOIN and attach it as an in-memory
// association; a join miss leaves the association absent.
type RentedItemRepository struct {
	engine       Engine
	mapper       RentedItemRowMapper
	rentalMapper RentalRowMapper
}

// NewRentedItemRepository creates a rented-item repository on top of the engine.
func NewRentedItemRepository(engine Engine) *RentedItemRepository {
	return &RentedItemRepository{engine: engine}
}

func (r *RentedItemRepository) spec(where []goqu.Expression, pageable *store.Pageable) selectSpec {
	return selectSpec{
		table:  rentedItemTable,
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

// process maps one composite row: the item under the entity prefix, the
// joined rental under the rental prefix. An outer-join miss yields all-NULL
// rental columns and therefore no association.
func (r *RentedItemRepository) process(row Row) (domain.RentedItem, error) {
	item, err := r.mapper.Map(row, entityAlias)
	if err != nil {
		return domain.RentedItem{}, err
	}

	rental, err := r.rentalMapper.Map(row, rentalAlias)
	if err != nil {
		return domain.RentedItem{}, err
	}

	if rental.ID != 0 {
		item.Rental = &rental
	}

	return item, nil
}

// Save inserts the item when it has no identifier yet and performs a full
// update otherwise.
func (r *RentedItemRepository) Save(ctx context.Context, item *domain.RentedItem) error {
	record := goqu.Record{
		colBookID:     item.BookID,
		colBookTitle:  item.BookTitle,
		colRentedDate: item.RentedDate,
		colDueDate:    item.DueDate,
		colRentalID:   item.RentalID,
	}

	if item.ID == 0 {
		id, err := r.engine.insertReturningID(ctx, rentedItemTable.Name, record)
		if err != nil {
			return err
		}
		item.ID = id
		return nil
	}

	_, err := r.engine.updateWhere(ctx, rentedItemTable.Name, record, goqu.Ex{colID: item.ID})

	return err
}

// FindByID loads one rented item with its owning rental joined in.
// Absence is surfaced as a nil item, not an error.
func (r *RentedItemRepository) FindByID(ctx context.Context, id int64) (*domain.RentedItem, error) {
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

// FindAll returns all rented items as a full unordered scan.
func (r *RentedItemRepository) FindAll(ctx context.Context) ([]domain.RentedItem, error) {
	return r.FindAllBy(ctx, nil)
}

// FindAllBy returns one page of rented items per the pageable's page
// number, size and sort order. A nil pageable means a full unordered scan.
func (r *RentedItemRepository) FindAllBy(ctx context.Context, pageable *store.Pageable) ([]domain.RentedItem, error) {
	rows, err := r.engine.executeSelect(ctx, r.spec(nil, pageable))
	if err != nil {
		return nil, err
	}

	return mapRows(rows, r.process)
}

// FindByRental returns the items currently checked out under one rental.
func (r *RentedItemRepository) FindByRental(ctx context.Context, rentalID int64) ([]domain.RentedItem, error) {
	where := []goqu.Expression{goqu.Ex{entityAlias + "." + colRentalID: rentalID}}

	rows, err := r.engine.executeSelect(ctx, r.spec(where, nil))
	if err != nil {
		return nil, err
	}

	return mapRows(rows, r.process)
}

// FindAllWhereRentalIsNull returns orphaned items without an owning rental.
func (r *RentedItemRepository) FindAllWhereRentalIsNull(ctx context.Context) ([]domain.RentedItem, error) {
	where := []goqu.Expression{goqu.I(entityAlias + "." + colRentalID).IsNull()}

	rows, err := r.engine.executeSelect(ctx, r.spec(where, nil))
	if err != nil {
		return nil, err
	}

	return mapRows(rows, r.process)
}

// FindAllDueBefore returns the items whose due date has passed at the given
// date, for the overdue-detection job.
func (r *RentedItemRepository) FindAllDueBefore(ctx context.Context, date time.Time) ([]domain.RentedItem, error) {
	where := []goqu.Expression{goqu.I(entityAlias + "." + colDueDate).Lt(date)}

	rows, err := r.engine.executeSelect(ctx, r.spec(where, nil))
	if err != nil {
		return nil, err
	}

	return mapRows(rows, r.process)
}

// DeleteByID removes one rented item. Deleting an absent id completes silently.
func (r *RentedItemRepository) DeleteByID(ctx context.Context, id int64) error {
	_, err := r.engine.deleteWhere(ctx, rentedItemTable.Name, goqu.Ex{colID: id})
	return err
}

// Count returns the number of stored rented items.
func (r *RentedItemRepository) Count(ctx context.Context) (int64, error) {
	return r.engine.countWhere(ctx, rentedItemTable.Name)
}
