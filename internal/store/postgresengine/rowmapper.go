package postgresengine

import (
	"errors"
	"fmt"
	"time"

	"github.com/booklend/rental-service/internal/domain"
	"github.com/booklend/rental-service/internal/store"
)

const dateLayout = "2006-01-02"

// Row is one fetched result row, keyed by output column alias.
type Row map[string]any

// ColumnConverter converts a raw row value into a typed scalar.
// A SQL NULL always yields the absent value (zero value or nil pointer),
// never an error; a value that cannot be coerced to the target type is a
// conversion failure that aborts the in-flight row stream.
type ColumnConverter struct{}

// Int64 extracts a non-nullable integer column; NULL yields 0.
func (ColumnConverter) Int64(row Row, name string) (int64, error) {
	value, ok := row[name]
	if !ok || value == nil {
		return 0, nil
	}

	switch v := value.(type) {
	case int64:
		return v, nil
	case int32:
		return int64(v), nil
	case int:
		return int64(v), nil
	default:
		return 0, conversionError(name, value, "int64")
	}
}

// Int64Ptr extracts a nullable integer column; NULL yields nil.
func (c ColumnConverter) Int64Ptr(row Row, name string) (*int64, error) {
	value, ok := row[name]
	if !ok || value == nil {
		return nil, nil
	}

	parsed, err := c.Int64(row, name)
	if err != nil {
		return nil, err
	}

	return &parsed, nil
}

// String extracts a text column; NULL yields the empty string.
func (ColumnConverter) String(row Row, name string) (string, error) {
	value, ok := row[name]
	if !ok || value == nil {
		return "", nil
	}

	switch v := value.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		return "", conversionError(name, value, "string")
	}
}

// Date extracts a date column; NULL yields the zero time.
// The standard library driver may deliver dates as text, pgx delivers
// time.Time values.
func (ColumnConverter) Date(row Row, name string) (time.Time, error) {
	value, ok := row[name]
	if !ok || value == nil {
		return time.Time{}, nil
	}

	switch v := value.(type) {
	case time.Time:
		return v, nil
	case string:
		parsed, parseErr := time.Parse(dateLayout, v)
		if parseErr != nil {
			return time.Time{}, conversionError(name, value, "date")
		}
		return parsed, nil
	case []byte:
		parsed, parseErr := time.Parse(dateLayout, string(v))
		if parseErr != nil {
			return time.Time{}, conversionError(name, value, "date")
		}
		return parsed, nil
	default:
		return time.Time{}, conversionError(name, value, "date")
	}
}

// Status extracts a rental-status enum column; NULL yields the empty status.
func (c ColumnConverter) Status(row Row, name string) (domain.RentalStatus, error) {
	raw, err := c.String(row, name)
	if err != nil {
		return "", err
	}

	if raw == "" {
		return "", nil
	}

	status := domain.RentalStatus(raw)
	if !status.IsValid() {
		return "", conversionError(name, raw, "rental status")
	}

	return status, nil
}

func conversionError(name string, value any, target string) error {
	return errors.Join(
		store.ErrColumnConversion,
		fmt.Errorf("column %q: cannot convert %T to %s", name, value, target),
	)
}

// RentalRowMapper reconstitutes a Rental from one fetched row under a
// column-alias prefix. Child collections are hydrated separately by the
// repository; a row only carries the rental's own columns.
type RentalRowMapper struct {
	conv ColumnConverter
}

// Map extracts all rental fields prefixed with "<prefix>_" from the row.
func (m RentalRowMapper) Map(row Row, prefix string) (domain.Rental, error) {
	var entity domain.Rental
	var err error

	if entity.ID, err = m.conv.Int64(row, prefix+"_"+colID); err != nil {
		return domain.Rental{}, err
	}
	if entity.UserID, err = m.conv.Int64(row, prefix+"_"+colUserID); err != nil {
		return domain.Rental{}, err
	}
	if entity.RentalStatus, err = m.conv.Status(row, prefix+"_"+colRentalStatus); err != nil {
		return domain.Rental{}, err
	}
	if entity.LateFee, err = m.conv.Int64(row, prefix+"_"+colLateFee); err != nil {
		return domain.Rental{}, err
	}

	return entity, nil
}

// RentedItemRowMapper reconstitutes a RentedItem from one fetched row under
// a column-alias prefix.
type RentedItemRowMapper struct {
	conv ColumnConverter
}

// Map extracts all rented-item fields prefixed with "<prefix>_" from the row.
func (m RentedItemRowMapper) Map(row Row, prefix string) (domain.RentedItem, error) {
	var entity domain.RentedItem
	var err error

	if entity.ID, err = m.conv.Int64(row, prefix+"_"+colID); err != nil {
		return domain.RentedItem{}, err
	}
	if entity.BookID, err = m.conv.Int64(row, prefix+"_"+colBookID); err != nil {
		return domain.RentedItem{}, err
	}
	if entity.BookTitle, err = m.conv.String(row, prefix+"_"+colBookTitle); err != nil {
		return domain.RentedItem{}, err
	}
	if entity.RentedDate, err = m.conv.Date(row, prefix+"_"+colRentedDate); err != nil {
		return domain.RentedItem{}, err
	}
	if entity.DueDate, err = m.conv.Date(row, prefix+"_"+colDueDate); err != nil {
		return domain.RentedItem{}, err
	}
	if entity.RentalID, err = m.conv.Int64Ptr(row, prefix+"_"+colRentalID); err != nil {
		return domain.RentedItem{}, err
	}

	return entity, nil
}

// ReturnedItemRowMapper reconstitutes a ReturnedItem from one fetched row
// under a column-alias prefix.
type ReturnedItemRowMapper struct {
	conv ColumnConverter
}

// Map extracts all returned-item fields prefixed with "<prefix>_" from the row.
func (m ReturnedItemRowMapper) Map(row Row, prefix string) (domain.ReturnedItem, error) {
	var entity domain.ReturnedItem
	var err error

	if entity.ID, err = m.conv.Int64(row, prefix+"_"+colID); err != nil {
		return domain.ReturnedItem{}, err
	}
	if entity.BookID, err = m.conv.Int64(row, prefix+"_"+colBookID); err != nil {
		return domain.ReturnedItem{}, err
	}
	if entity.BookTitle, err = m.conv.String(row, prefix+"_"+colBookTitle); err != nil {
		return domain.ReturnedItem{}, err
	}
	if entity.ReturnedDate, err = m.conv.Date(row, prefix+"_"+colReturnedDate); err != nil {
		return domain.ReturnedItem{}, err
	}
	if entity.RentalID, err = m.conv.Int64Ptr(row, prefix+"_"+colRentalID); err != nil {
		return domain.ReturnedItem{}, err
	}

	return entity, nil
}

// OverdueItemRowMapper reconstitutes an OverdueItem from one fetched row
// under a column-alias prefix.
type OverdueItemRowMapper struct {
	conv ColumnConverter
}

// Map extracts all overdue-item fields prefixed with "<prefix>_" from the row.
func (m OverdueItemRowMapper) Map(row Row, prefix string) (domain.OverdueItem, error) {
	var entity domain.OverdueItem
	var err error

	if entity.ID, err = m.conv.Int64(row, prefix+"_"+colID); err != nil {
		return domain.OverdueItem{}, err
	}
	if entity.BookID, err = m.conv.Int64(row, prefix+"_"+colBookID); err != nil {
		return domain.OverdueItem{}, err
	}
	if entity.BookTitle, err = m.conv.String(row, prefix+"_"+colBookTitle); err != nil {
		return domain.OverdueItem{}, err
	}
	if entity.DueDate, err = m.conv.Date(row, prefix+"_"+colDueDate); err != nil {
		return domain.OverdueItem{}, err
	}
	if entity.RentalID, err = m.conv.Int64Ptr(row, prefix+"_"+colRentalID); err != nil {
		return domain.OverdueItem{}, err
	}

	return entity, nil
}
