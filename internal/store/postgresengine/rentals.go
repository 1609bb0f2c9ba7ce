package postgresengine

import (
	"context"
	"errors"

	"github.com/doug-martin/goqu/v9"

	"github.com/booklend/rental-service/internal/domain"
	"github.com/booklend/rental-service/internal/store"
)

const (
	logMsgChildCleanupFailed = "failed to clean up child rows, will be removed by a later pass"
	logMsgRentalSaved        = "rental saved"
	logMsgRentalDeleted      = "rental deleted"
	logAttrRentalID          = "rental_id"
)

// RentalRepository persists and loads Rental aggregates. Save reconciles the
// aggregate's child rows; FindByID and FindByUserID hydrate the child
// collections, while the list operations return the rental rows only.
type RentalRepository struct {
	engine         Engine
	mapper         RentalRowMapper
	itemMapper     RentedItemRowMapper
	returnedMapper ReturnedItemRowMapper
}

// NewRentalRepository creates a rental repository on top of the engine.
func NewRentalRepository(engine Engine) *RentalRepository {
	return &RentalRepository{engine: engine}
}

func (r *RentalRepository) spec(where []goqu.Expression, pageable *store.Pageable) selectSpec {
	return selectSpec{
		table:    rentalTable,
		alias:    entityAlias,
		prefix:   entityAlias,
		where:    where,
		pageable: pageable,
	}
}

// Save inserts the rental when it has no identifier yet (assigning the
// server-generated one) and performs a full update otherwise. The child
// collections are reconciled against the stored rows: rented items are
// inserted, updated or removed to match the aggregate, returned items are
// append-only history.
func (r *RentalRepository) Save(ctx context.Context, rental *domain.Rental) error {
	record := goqu.Record{
		colUserID:       rental.UserID,
		colRentalStatus: string(rental.RentalStatus),
		colLateFee:      rental.LateFee,
	}

	if rental.ID == 0 {
		id, err := r.engine.insertReturningID(ctx, rentalTable.Name, record)
		if err != nil {
			return err
		}
		rental.ID = id
	} else {
		if _, err := r.engine.updateWhere(ctx, rentalTable.Name, record, goqu.Ex{colID: rental.ID}); err != nil {
			return err
		}
	}

	if err := r.saveRentedItems(ctx, rental); err != nil {
		return err
	}

	if err := r.saveReturnedItems(ctx, rental); err != nil {
		return err
	}

	r.engine.logOperation(logMsgRentalSaved, logAttrRentalID, rental.ID)

	return nil
}

func (r *RentalRepository) saveRentedItems(ctx context.Context, rental *domain.Rental) error {
	keptIDs := make([]int64, 0, len(rental.RentedItems))

	for i := range rental.RentedItems {
		item := &rental.RentedItems[i]
		item.RentalID = &rental.ID

		record := goqu.Record{
			colBookID:     item.BookID,
			colBookTitle:  item.BookTitle,
			colRentedDate: item.RentedDate,
			colDueDate:    item.DueDate,
			colRentalID:   rental.ID,
		}

		if item.ID == 0 {
			id, err := r.engine.insertReturningID(ctx, rentedItemTable.Name, record)
			if err != nil {
				return err
			}
			item.ID = id
		} else {
			if _, err := r.engine.updateWhere(ctx, rentedItemTable.Name, record, goqu.Ex{colID: item.ID}); err != nil {
				return err
			}
		}

		keptIDs = append(keptIDs, item.ID)
	}

	where := []goqu.Expression{goqu.Ex{colRentalID: rental.ID}}
	if len(keptIDs) > 0 {
		where = append(where, goqu.C(colID).NotIn(keptIDs))
	}

	if _, err := r.engine.deleteWhere(ctx, rentedItemTable.Name, where...); err != nil {
		return err
	}

	return nil
}

func (r *RentalRepository) saveReturnedItems(ctx context.Context, rental *domain.Rental) error {
	for i := range rental.ReturnedItems {
		item := &rental.ReturnedItems[i]
		if item.ID != 0 {
			continue // returned items are immutable history
		}

		item.RentalID = &rental.ID

		record := goqu.Record{
			colBookID:       item.BookID,
			colBookTitle:    item.BookTitle,
			colReturnedDate: item.ReturnedDate,
			colRentalID:     rental.ID,
		}

		id, err := r.engine.insertReturningID(ctx, returnedItemTable.Name, record)
		if err != nil {
			return err
		}
		item.ID = id
	}

	return nil
}

// FindByID loads one rental with its child collections hydrated.
// Absence is surfaced as a nil rental, not an error.
func (r *RentalRepository) FindByID(ctx context.Context, id int64) (*domain.Rental, error) {
	return r.findOne(ctx, goqu.Ex{entityAlias + "." + colID: id})
}

// FindByUserID loads the rental account of one user with its child
// collections hydrated. Absence is surfaced as a nil rental, not an error.
func (r *RentalRepository) FindByUserID(ctx context.Context, userID int64) (*domain.Rental, error) {
	return r.findOne(ctx, goqu.Ex{entityAlias + "." + colUserID: userID})
}

func (r *RentalRepository) findOne(ctx context.Context, where goqu.Expression) (*domain.Rental, error) {
	row, err := r.engine.selectOneRow(ctx, r.spec([]goqu.Expression{where}, nil))
	if errors.Is(err, store.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rental, mapErr := r.mapper.Map(row, entityAlias)
	if mapErr != nil {
		return nil, mapErr
	}

	if err = r.loadChildren(ctx, &rental); err != nil {
		return nil, err
	}

	return &rental, nil
}

func (r *RentalRepository) loadChildren(ctx context.Context, rental *domain.Rental) error {
	itemRows, err := r.engine.executeSelect(ctx, selectSpec{
		table:  rentedItemTable,
		alias:  entityAlias,
		prefix: entityAlias,
		where:  []goqu.Expression{goqu.Ex{entityAlias + "." + colRentalID: rental.ID}},
	})
	if err != nil {
		return err
	}

	rental.RentedItems, err = mapRows(itemRows, func(row Row) (domain.RentedItem, error) {
		return r.itemMapper.Map(row, entityAlias)
	})
	if err != nil {
		return err
	}

	returnedRows, err := r.engine.executeSelect(ctx, selectSpec{
		table:  returnedItemTable,
		alias:  entityAlias,
		prefix: entityAlias,
		where:  []goqu.Expression{goqu.Ex{entityAlias + "." + colRentalID: rental.ID}},
	})
	if err != nil {
		return err
	}

	rental.ReturnedItems, err = mapRows(returnedRows, func(row Row) (domain.ReturnedItem, error) {
		return r.returnedMapper.Map(row, entityAlias)
	})

	return err
}

// FindAll returns all rentals as a full unordered scan, without child
// collections.
func (r *RentalRepository) FindAll(ctx context.Context) ([]domain.Rental, error) {
	return r.FindAllBy(ctx, nil)
}

// FindAllBy returns one page of rentals per the pageable's page number,
// size and sort order, without child collections. A nil pageable means a
// full unordered scan.
func (r *RentalRepository) FindAllBy(ctx context.Context, pageable *store.Pageable) ([]domain.Rental, error) {
	rows, err := r.engine.executeSelect(ctx, r.spec(nil, pageable))
	if err != nil {
		return nil, err
	}

	return mapRows(rows, func(row Row) (domain.Rental, error) {
		return r.mapper.Map(row, entityAlias)
	})
}

// DeleteByID removes the rental and its child rows. Child cleanup is
// best-effort: a failing child delete is logged and swallowed since the
// rows will be removed by a later pass. Deleting an absent id completes
// silently.
func (r *RentalRepository) DeleteByID(ctx context.Context, id int64) error {
	for _, childTable := range []string{rentedItemTable.Name, returnedItemTable.Name, overdueItemTable.Name} {
		if _, err := r.engine.deleteWhere(ctx, childTable, goqu.Ex{colRentalID: id}); err != nil {
			if r.engine.logger != nil {
				r.engine.logger.Warn(logMsgChildCleanupFailed, logAttrTable, childTable, logAttrError, err.Error())
			}
		}
	}

	if _, err := r.engine.deleteWhere(ctx, rentalTable.Name, goqu.Ex{colID: id}); err != nil {
		return err
	}

	r.engine.logOperation(logMsgRentalDeleted, logAttrRentalID, id)

	return nil
}

// Count returns the number of stored rentals.
func (r *RentalRepository) Count(ctx context.Context) (int64, error) {
	return r.engine.countWhere(ctx, rentalTable.Name)
}
