package postgresengine

import (
	"github.com/doug-martin/goqu/v9"
)

// Column names follow the persisted schema exactly; any schema evolution
// requires updating these fixed per-entity lists.
const (
	colID           = "id"
	colUserID       = "user_id"
	colRentalStatus = "rental_status"
	colLateFee      = "late_fee"
	colBookID       = "book_id"
	colBookTitle    = "book_title"
	colRentedDate   = "rented_date"
	colDueDate      = "due_date"
	colReturnedDate = "returned_date"
	colRentalID     = "rental_id"
)

// entityAlias is the table alias and column-alias prefix of the primary
// entity in every select; joined rental columns use rentalAlias.
const (
	entityAlias = "e"
	rentalAlias = "rental"
)

// TableSpec is the fixed, hand-written schema description of one entity
// kind: its table name and the ordered list of its columns.
type TableSpec struct {
	Name    string
	Columns []string
}

var (
	rentalTable = TableSpec{
		Name:    "rental",
		Columns: []string{colID, colUserID, colRentalStatus, colLateFee},
	}

	rentedItemTable = TableSpec{
		Name:    "rented_item",
		Columns: []string{colID, colBookID, colBookTitle, colRentedDate, colDueDate, colRentalID},
	}

	returnedItemTable = TableSpec{
		Name:    "returned_item",
		Columns: []string{colID, colBookID, colBookTitle, colReturnedDate, colRentalID},
	}

	overdueItemTable = TableSpec{
		Name:    "overdue_item",
		Columns: []string{colID, colBookID, colBookTitle, colDueDate, colRentalID},
	}
)

// SelectColumns produces the deterministic list of aliased select
// expressions for this entity: each column is emitted as
// "<tableAlias>.<column> AS <prefix>_<column>". The prefixed aliases keep
// column names unique when two entities' columns are combined into one
// result row.
func (t TableSpec) SelectColumns(tableAlias string, prefix string) []any {
	columns := make([]any, 0, len(t.Columns))
	for _, column := range t.Columns {
		columns = append(columns, goqu.I(tableAlias+"."+column).As(prefix+"_"+column))
	}

	return columns
}

// OutputAliases is the ordered list of output column aliases produced by
// SelectColumns for the given prefix. The engine scans fetched rows in this
// order.
func (t TableSpec) OutputAliases(prefix string) []string {
	aliases := make([]string, 0, len(t.Columns))
	for _, column := range t.Columns {
		aliases = append(aliases, prefix+"_"+column)
	}

	return aliases
}
