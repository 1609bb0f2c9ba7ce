package domain

import "time"

// ReturnedItem is the historical record of one completed return.
// It is immutable after creation.
type ReturnedItem struct {
	ID           int64
	BookID       int64
	BookTitle    string
	ReturnedDate time.Time
	RentalID     *int64
}

func newReturnedItem(bookID int64, bookTitle string, returnedDate time.Time) ReturnedItem {
	return ReturnedItem{
		BookID:       bookID,
		BookTitle:    bookTitle,
		ReturnedDate: returnedDate,
	}
}

// Equals implements identity-based equality.
func (i ReturnedItem) Equals(other ReturnedItem) bool {
	return i.ID != 0 && other.ID != 0 && i.ID == other.ID
}
