package domain

import (
	"errors"
	"time"
)

// ErrRentalUnavailable is returned when a rental cannot originate a new rent.
// It is a domain failure, not a transient one: callers must not retry without
// an external state change (items returned, fees cleared).
var ErrRentalUnavailable = errors.New("rent is unavailable")

// ErrBookNotRented is returned by ReturnBook when the rental does not
// currently hold the given book.
var ErrBookNotRented = errors.New("book is not rented by this rental")

// MaxRentedItems is the number of books a rental may hold concurrently.
const MaxRentedItems = 5

// RentalPeriodDays is added to the rented date to compute the due date.
const RentalPeriodDays = 14

// RentalStatus signals whether a rental may originate new rents.
type RentalStatus string

const (
	RentAvailable   RentalStatus = "RENT_AVAILABLE"
	RentUnavailable RentalStatus = "RENT_UNAVAILABLE"
)

// IsValid reports whether s is one of the known status values.
func (s RentalStatus) IsValid() bool {
	return s == RentAvailable || s == RentUnavailable
}

// Rental is one user's rental account: the aggregate root owning the
// currently rented items and the historical returned items.
//
// All mutation happens through the aggregate's methods; child collections
// must never be modified from outside.
type Rental struct {
	ID            int64
	UserID        int64
	RentalStatus  RentalStatus
	LateFee       int64 // currency minor units, never negative
	RentedItems   []RentedItem
	ReturnedItems []ReturnedItem
}

// NewRental creates a rental account for the given user,
// available for renting and without any late fee.
func NewRental(userID int64) *Rental {
	return &Rental{
		UserID:       userID,
		RentalStatus: RentAvailable,
		LateFee:      0,
	}
}

// Equals implements identity-based equality: two rentals with equal,
// assigned identifiers are the same entity.
func (r *Rental) Equals(other *Rental) bool {
	if other == nil {
		return false
	}

	return r.ID != 0 && other.ID != 0 && r.ID == other.ID
}

// CheckRentalAvailable validates that this rental may originate a new rent.
// It fails with ErrRentalUnavailable when the status is RENT_UNAVAILABLE,
// the late fee is not settled, or the rental already holds MaxRentedItems.
// Pure validation, no mutation.
func (r *Rental) CheckRentalAvailable() error {
	if r.RentalStatus == RentUnavailable || r.LateFee != 0 {
		return ErrRentalUnavailable
	}

	if len(r.RentedItems) >= MaxRentedItems {
		return ErrRentalUnavailable
	}

	return nil
}

// RentBook checks out the given book under this rental. The new item's due
// date is the rented date plus RentalPeriodDays, fixed at creation.
// Validation happens strictly before any mutation.
func (r *Rental) RentBook(bookID int64, bookTitle string) error {
	if err := r.CheckRentalAvailable(); err != nil {
		return err
	}

	r.RentedItems = append(r.RentedItems, newRentedItem(bookID, bookTitle, today()))

	return nil
}

// ReturnBook completes the return of the given book: it records a
// ReturnedItem carrying the item's book metadata and today's date, and
// removes the item from the rented collection.
// It fails with ErrBookNotRented when the rental does not hold the book.
func (r *Rental) ReturnBook(bookID int64) error {
	idx := -1
	for i, item := range r.RentedItems {
		if item.BookID == bookID {
			idx = i
			break
		}
	}

	if idx == -1 {
		return ErrBookNotRented
	}

	item := r.RentedItems[idx]
	r.ReturnedItems = append(r.ReturnedItems, newReturnedItem(item.BookID, item.BookTitle, today()))
	r.RentedItems = append(r.RentedItems[:idx], r.RentedItems[idx+1:]...)

	return nil
}

// today returns the current date truncated to midnight UTC.
// Rental date arithmetic works on whole days.
func today() time.Time {
	return time.Now().UTC().Truncate(24 * time.Hour)
}
