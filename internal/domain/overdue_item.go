package domain

import "time"

// OverdueItem records a RentedItem whose due date has passed without a
// return. It is produced by the scheduled overdue-detection job, not by the
// Rental aggregate itself.
type OverdueItem struct {
	ID        int64
	BookID    int64
	BookTitle string
	DueDate   time.Time
	RentalID  *int64
	Rental    *Rental // populated by composite fetches only, never persisted
}

// NewOverdueItem records the given rented item as overdue under its rental.
func NewOverdueItem(item RentedItem, rentalID int64) *OverdueItem {
	return &OverdueItem{
		BookID:    item.BookID,
		BookTitle: item.BookTitle,
		DueDate:   item.DueDate,
		RentalID:  &rentalID,
	}
}

// Equals implements identity-based equality.
func (i *OverdueItem) Equals(other *OverdueItem) bool {
	if other == nil {
		return false
	}

	return i.ID != 0 && other.ID != 0 && i.ID == other.ID
}
