package domain

import "time"

// RentedItem is a single book currently checked out under a Rental.
// The Rental owns its RentedItems; the item only keeps the owning rental's
// identifier as a lookup, plus an optional in-memory association populated
// by join-based fetches.
type RentedItem struct {
	ID         int64
	BookID     int64
	BookTitle  string
	RentedDate time.Time
	DueDate    time.Time
	RentalID   *int64
	Rental     *Rental // populated by composite fetches only, never persisted
}

func newRentedItem(bookID int64, bookTitle string, rentedDate time.Time) RentedItem {
	return RentedItem{
		BookID:     bookID,
		BookTitle:  bookTitle,
		RentedDate: rentedDate,
		DueDate:    rentedDate.AddDate(0, 0, RentalPeriodDays),
	}
}

// Overdue reports whether the item's due date has passed at the given date.
func (i RentedItem) Overdue(at time.Time) bool {
	return !i.DueDate.IsZero() && i.DueDate.Before(at)
}

// Equals implements identity-based equality.
func (i RentedItem) Equals(other RentedItem) bool {
	return i.ID != 0 && other.ID != 0 && i.ID == other.ID
}
