package postgresengine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/booklend/rental-service/internal/domain"
	"github.com/booklend/rental-service/internal/store"
)

func Test_ColumnConverter_Int64(t *testing.T) {
	conv := ColumnConverter{}

	value, err := conv.Int64(Row{"n": int64(42)}, "n")
	require.NoError(t, err)
	assert.Equal(t, int64(42), value)

	value, err = conv.Int64(Row{"n": int32(7)}, "n")
	require.NoError(t, err)
	assert.Equal(t, int64(7), value)

	value, err = conv.Int64(Row{"n": nil}, "n")
	require.NoError(t, err)
	assert.Zero(t, value, "NULL yields the zero value, never an error")

	_, err = conv.Int64(Row{"n": "not a number"}, "n")
	assert.ErrorIs(t, err, store.ErrColumnConversion)
}

func Test_ColumnConverter_Int64Ptr(t *testing.T) {
	conv := ColumnConverter{}

	value, err := conv.Int64Ptr(Row{"n": int64(42)}, "n")
	require.NoError(t, err)
	require.NotNil(t, value)
	assert.Equal(t, int64(42), *value)

	value, err = conv.Int64Ptr(Row{"n": nil}, "n")
	require.NoError(t, err)
	assert.Nil(t, value, "NULL yields nil, never an error")
}

func Test_ColumnConverter_String(t *testing.T) {
	conv := ColumnConverter{}

	value, err := conv.String(Row{"s": "hello"}, "s")
	require.NoError(t, err)
	assert.Equal(t, "hello", value)

	value, err = conv.String(Row{"s": []byte("bytes")}, "s")
	require.NoError(t, err)
	assert.Equal(t, "bytes", value)

	value, err = conv.String(Row{"s": nil}, "s")
	require.NoError(t, err)
	assert.Empty(t, value)

	_, err = conv.String(Row{"s": 42}, "s")
	assert.ErrorIs(t, err, store.ErrColumnConversion)
}

func Test_ColumnConverter_Date(t *testing.T) {
	conv := ColumnConverter{}
	expected := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)

	value, err := conv.Date(Row{"d": expected}, "d")
	require.NoError(t, err)
	assert.Equal(t, expected, value)

	value, err = conv.Date(Row{"d": "2025-03-14"}, "d")
	require.NoError(t, err)
	assert.Equal(t, expected, value)

	value, err = conv.Date(Row{"d": []byte("2025-03-14")}, "d")
	require.NoError(t, err)
	assert.Equal(t, expected, value)

	value, err = conv.Date(Row{"d": nil}, "d")
	require.NoError(t, err)
	assert.True(t, value.IsZero())

	_, err = conv.Date(Row{"d": "14.03.2025"}, "d")
	assert.ErrorIs(t, err, store.ErrColumnConversion)
}

func Test_ColumnConverter_Status(t *testing.T) {
	conv := ColumnConverter{}

	status, err := conv.Status(Row{"s": "RENT_AVAILABLE"}, "s")
	require.NoError(t, err)
	assert.Equal(t, domain.RentAvailable, status)

	status, err = conv.Status(Row{"s": nil}, "s")
	require.NoError(t, err)
	assert.Empty(t, status)

	_, err = conv.Status(Row{"s": "SOMETHING_ELSE"}, "s")
	assert.ErrorIs(t, err, store.ErrColumnConversion)
}

func Test_RentalRowMapper_ReadsPrefixedColumns(t *testing.T) {
	row := Row{
		"e_id":            int64(1),
		"e_user_id":       int64(42),
		"e_rental_status": "RENT_UNAVAILABLE",
		"e_late_fee":      int64(30),
	}

	rental, err := RentalRowMapper{}.Map(row, "e")

	require.NoError(t, err)
	assert.Equal(t, int64(1), rental.ID)
	assert.Equal(t, int64(42), rental.UserID)
	assert.Equal(t, domain.RentUnavailable, rental.RentalStatus)
	assert.Equal(t, int64(30), rental.LateFee)
}

func Test_RentedItemRowMapper_ReadsPrefixedColumns(t *testing.T) {
	rented := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	due := rented.AddDate(0, 0, 14)
	row := Row{
		"e_id":          int64(9),
		"e_book_id":     int64(7),
		"e_book_title":  "The Go Programming Language",
		"e_rented_date": rented,
		"e_due_date":    due,
		"e_rental_id":   int64(1),
	}

	item, err := RentedItemRowMapper{}.Map(row, "e")

	require.NoError(t, err)
	assert.Equal(t, int64(9), item.ID)
	assert.Equal(t, int64(7), item.BookID)
	assert.Equal(t, "The Go Programming Language", item.BookTitle)
	assert.Equal(t, rented, item.RentedDate)
	assert.Equal(t, due, item.DueDate)
	require.NotNil(t, item.RentalID)
	assert.Equal(t, int64(1), *item.RentalID)
}

func Test_RentedItemRowMapper_NullForeignKey(t *testing.T) {
	row := Row{
		"e_id":          int64(9),
		"e_book_id":     int64(7),
		"e_book_title":  "Orphaned",
		"e_rented_date": nil,
		"e_due_date":    nil,
		"e_rental_id":   nil,
	}

	item, err := RentedItemRowMapper{}.Map(row, "e")

	require.NoError(t, err)
	assert.Nil(t, item.RentalID)
	assert.True(t, item.RentedDate.IsZero())
}

func Test_Mappers_SamePrefixConventionAcrossEntities(t *testing.T) {
	row := Row{
		"rental_id":            int64(3),
		"rental_user_id":       int64(42),
		"rental_rental_status": "RENT_AVAILABLE",
		"rental_late_fee":      int64(0),
	}

	rental, err := RentalRowMapper{}.Map(row, "rental")

	require.NoError(t, err)
	assert.Equal(t, int64(3), rental.ID)
	assert.Equal(t, int64(42), rental.UserID)
}
