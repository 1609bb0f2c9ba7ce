package postgresengine_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/booklend/rental-service/internal/domain"
	"github.com/booklend/rental-service/internal/store"
	"github.com/booklend/rental-service/internal/store/postgresengine"
)

func newMockedEngine(t *testing.T) (postgresengine.Engine, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	engine, err := postgresengine.NewEngineFromSQLDB(db)
	require.NoError(t, err)

	return engine, mock
}

func rentalColumns() []string {
	return []string{"e_id", "e_user_id", "e_rental_status", "e_late_fee"}
}

func rentedItemColumns() []string {
	return []string{"e_id", "e_book_id", "e_book_title", "e_rented_date", "e_due_date", "e_rental_id"}
}

func returnedItemColumns() []string {
	return []string{"e_id", "e_book_id", "e_book_title", "e_returned_date", "e_rental_id"}
}

func Test_EngineConstructors_RejectNilConnections(t *testing.T) {
	_, err := postgresengine.NewEngineFromSQLDB(nil)
	assert.ErrorIs(t, err, store.ErrNilDatabaseConnection)

	_, err = postgresengine.NewEngineFromPGXPool(nil)
	assert.ErrorIs(t, err, store.ErrNilDatabaseConnection)

	_, err = postgresengine.NewEngineFromSQLX(nil)
	assert.ErrorIs(t, err, store.ErrNilDatabaseConnection)
}

func Test_RentalRepository_FindByID_HydratesChildren(t *testing.T) {
	engine, mock := newMockedEngine(t)
	repo := postgresengine.NewRentalRepository(engine)

	rented := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT .+ FROM "rental" AS "e" WHERE \("e"\."id" = \$1\)`).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows(rentalColumns()).
			AddRow(int64(1), int64(42), "RENT_AVAILABLE", int64(0)))

	mock.ExpectQuery(`SELECT .+ FROM "rented_item" AS "e" WHERE \("e"\."rental_id" = \$1\)`).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows(rentedItemColumns()).
			AddRow(int64(10), int64(7), "The Go Programming Language", rented, rented.AddDate(0, 0, 14), int64(1)))

	mock.ExpectQuery(`SELECT .+ FROM "returned_item" AS "e" WHERE \("e"\."rental_id" = \$1\)`).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows(returnedItemColumns()))

	rental, err := repo.FindByID(context.Background(), 1)

	require.NoError(t, err)
	require.NotNil(t, rental)
	assert.Equal(t, int64(42), rental.UserID)
	assert.Equal(t, domain.RentAvailable, rental.RentalStatus)
	require.Len(t, rental.RentedItems, 1)
	assert.Equal(t, "The Go Programming Language", rental.RentedItems[0].BookTitle)
	assert.Empty(t, rental.ReturnedItems)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_RentalRepository_FindByID_AbsenceIsNilNotError(t *testing.T) {
	engine, mock := newMockedEngine(t)
	repo := postgresengine.NewRentalRepository(engine)

	mock.ExpectQuery(`SELECT .+ FROM "rental" AS "e" WHERE \("e"\."id" = \$1\)`).
		WithArgs(99).
		WillReturnRows(sqlmock.NewRows(rentalColumns()))

	rental, err := repo.FindByID(context.Background(), 99)

	require.NoError(t, err)
	assert.Nil(t, rental)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_RentalRepository_FindAllBy_PaginatesAndOrders(t *testing.T) {
	engine, mock := newMockedEngine(t)
	repo := postgresengine.NewRentalRepository(engine)

	mock.ExpectQuery(`SELECT .+ FROM "rental" AS "e" ORDER BY "e"\."id" DESC LIMIT \$1 OFFSET \$2`).
		WillReturnRows(sqlmock.NewRows(rentalColumns()).
			AddRow(int64(2), int64(43), "RENT_AVAILABLE", int64(0)).
			AddRow(int64(1), int64(42), "RENT_UNAVAILABLE", int64(30)))

	rentals, err := repo.FindAllBy(context.Background(), store.PageRequest(1, 2, store.Desc("id")))

	require.NoError(t, err)
	require.Len(t, rentals, 2)
	assert.Equal(t, int64(2), rentals[0].ID, "row order is preserved")
	assert.Equal(t, int64(1), rentals[1].ID)
	assert.Empty(t, rentals[0].RentedItems, "list operations skip child hydration")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_RentalRepository_Save_InsertAssignsGeneratedID(t *testing.T) {
	engine, mock := newMockedEngine(t)
	repo := postgresengine.NewRentalRepository(engine)

	mock.ExpectQuery(`INSERT INTO "rental" .+ RETURNING "id"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))
	mock.ExpectExec(`DELETE FROM "rented_item" WHERE \("rental_id" = \$1\)`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	rental := domain.NewRental(42)
	err := repo.Save(context.Background(), rental)

	require.NoError(t, err)
	assert.Equal(t, int64(7), rental.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_RentalRepository_Save_ReconcilesRentedItems(t *testing.T) {
	engine, mock := newMockedEngine(t)
	repo := postgresengine.NewRentalRepository(engine)

	rental := domain.NewRental(42)
	rental.ID = 7
	require.NoError(t, rental.RentBook(3, "New Book"))

	mock.ExpectExec(`UPDATE "rental" SET .+ WHERE \("id" = \$\d\)`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO "rented_item" .+ RETURNING "id"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(11)))
	mock.ExpectExec(`DELETE FROM "rented_item" WHERE \(\("rental_id" = \$1\) AND \("id" NOT IN \(\$2\)\)\)`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Save(context.Background(), rental)

	require.NoError(t, err)
	assert.Equal(t, int64(11), rental.RentedItems[0].ID)
	require.NotNil(t, rental.RentedItems[0].RentalID)
	assert.Equal(t, int64(7), *rental.RentedItems[0].RentalID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_RentalRepository_DeleteByID_IsIdempotent(t *testing.T) {
	engine, mock := newMockedEngine(t)
	repo := postgresengine.NewRentalRepository(engine)

	mock.ExpectExec(`DELETE FROM "rented_item"`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM "returned_item"`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM "overdue_item"`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM "rental"`).WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DeleteByID(context.Background(), 99)

	assert.NoError(t, err, "deleting an absent id completes silently")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_RentalRepository_Count(t *testing.T) {
	engine, mock := newMockedEngine(t)
	repo := postgresengine.NewRentalRepository(engine)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM "rental"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(3)))

	count, err := repo.Count(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func Test_RentalRepository_FindByID_ConversionFailureAborts(t *testing.T) {
	engine, mock := newMockedEngine(t)
	repo := postgresengine.NewRentalRepository(engine)

	mock.ExpectQuery(`SELECT .+ FROM "rental" AS "e"`).
		WillReturnRows(sqlmock.NewRows(rentalColumns()).
			AddRow(int64(1), int64(42), "BOGUS_STATUS", int64(0)))

	rental, err := repo.FindByID(context.Background(), 1)

	assert.ErrorIs(t, err, store.ErrColumnConversion)
	assert.Nil(t, rental)
}

func Test_RentedItemRepository_FindByID_JoinsOwningRental(t *testing.T) {
	engine, mock := newMockedEngine(t)
	repo := postgresengine.NewRentedItemRepository(engine)

	rented := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	columns := append(rentedItemColumns(),
		"rental_id", "rental_user_id", "rental_rental_status", "rental_late_fee")

	mock.ExpectQuery(`SELECT .+ FROM "rented_item" AS "e" LEFT OUTER JOIN "rental" AS "rental"`).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(int64(10), int64(7), "Joined Book", rented, rented.AddDate(0, 0, 14), int64(1),
				int64(1), int64(42), "RENT_AVAILABLE", int64(0)))

	item, err := repo.FindByID(context.Background(), 10)

	require.NoError(t, err)
	require.NotNil(t, item)
	require.NotNil(t, item.Rental, "join hydrates the owning rental")
	assert.Equal(t, int64(42), item.Rental.UserID)
}

func Test_RentedItemRepository_FindByID_NullJoinLeavesRentalNil(t *testing.T) {
	engine, mock := newMockedEngine(t)
	repo := postgresengine.NewRentedItemRepository(engine)

	columns := append(rentedItemColumns(),
		"rental_id", "rental_user_id", "rental_rental_status", "rental_late_fee")

	mock.ExpectQuery(`SELECT .+ FROM "rented_item" AS "e" LEFT OUTER JOIN "rental" AS "rental"`).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(int64(10), int64(7), "Orphaned Book", nil, nil, nil,
				nil, nil, nil, nil))

	item, err := repo.FindByID(context.Background(), 10)

	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Nil(t, item.Rental, "a NULL join yields no association")
	assert.Nil(t, item.RentalID)
}

func Test_ReturnedItemRepository_Save_OnlyInsertsNewItems(t *testing.T) {
	engine, mock := newMockedEngine(t)
	repo := postgresengine.NewReturnedItemRepository(engine)

	mock.ExpectQuery(`INSERT INTO "returned_item" .+ RETURNING "id"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(5)))

	fresh := &domain.ReturnedItem{BookID: 7, BookTitle: "Some Book", ReturnedDate: time.Now()}
	require.NoError(t, repo.Save(context.Background(), fresh))
	assert.Equal(t, int64(5), fresh.ID)

	persisted := &domain.ReturnedItem{ID: 5, BookID: 7}
	assert.NoError(t, repo.Save(context.Background(), persisted), "already-persisted history is left untouched")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_OverdueItemRepository_ExistsFor(t *testing.T) {
	engine, mock := newMockedEngine(t)
	repo := postgresengine.NewOverdueItemRepository(engine)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM "overdue_item"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(1)))

	exists, err := repo.ExistsFor(context.Background(), 1, 7)

	require.NoError(t, err)
	assert.True(t, exists)
}

func Test_RentedItemRepository_FindAllDueBefore(t *testing.T) {
	engine, mock := newMockedEngine(t)
	repo := postgresengine.NewRentedItemRepository(engine)

	rented := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	columns := append(rentedItemColumns(),
		"rental_id", "rental_user_id", "rental_rental_status", "rental_late_fee")

	mock.ExpectQuery(`SELECT .+ FROM "rented_item" AS "e" LEFT OUTER JOIN "rental" AS "rental" ON .+ WHERE \("e"\."due_date" < \$1\)`).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(int64(10), int64(7), "Late Book", rented, rented.AddDate(0, 0, 14), int64(1),
				int64(1), int64(42), "RENT_AVAILABLE", int64(0)))

	items, err := repo.FindAllDueBefore(context.Background(), time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC))

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Late Book", items[0].BookTitle)
}
